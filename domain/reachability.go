package domain

// ReachabilityState is written only by the reachability engine and the
// build-tool seeder, and read only by finders (§3). It is created empty per
// analysis and discarded, together with ImportedSymbols and UsedImports,
// once finders have run (§5 Memory discipline).
type ReachabilityState struct {
	ReachableFiles map[string]struct{}

	ReachableExports   map[string]map[string]struct{}
	ReachableFunctions map[string]map[string]struct{}
	ReachableVariables map[string]map[string]struct{}

	// UsedImports are the specifiers that actually resolved, or were
	// treated as asset/style imports, keyed by importing file.
	UsedImports map[string]map[string]struct{}

	// ImportedSymbols are the names brought into a file's own scope by its
	// named imports, keyed by that file.
	ImportedSymbols map[string]map[string]struct{}

	UsedTypes map[string]map[string]struct{}

	UsedPackages   map[string]struct{}
	UsedCSSClasses map[string]struct{}
	UsedAssets     map[string]struct{}
}

// NewReachabilityState returns an empty, fully-initialized state.
func NewReachabilityState() *ReachabilityState {
	return &ReachabilityState{
		ReachableFiles:     make(map[string]struct{}),
		ReachableExports:   make(map[string]map[string]struct{}),
		ReachableFunctions: make(map[string]map[string]struct{}),
		ReachableVariables: make(map[string]map[string]struct{}),
		UsedImports:        make(map[string]map[string]struct{}),
		ImportedSymbols:    make(map[string]map[string]struct{}),
		UsedTypes:          make(map[string]map[string]struct{}),
		UsedPackages:       make(map[string]struct{}),
		UsedCSSClasses:     make(map[string]struct{}),
		UsedAssets:         make(map[string]struct{}),
	}
}

func ensureSet(m map[string]map[string]struct{}, key string) map[string]struct{} {
	s, ok := m[key]
	if !ok {
		s = make(map[string]struct{})
		m[key] = s
	}
	return s
}

// MarkFileReachable adds file to ReachableFiles, returning false if it was
// already present (the §4.7 markReachable idempotence check).
func (rs *ReachabilityState) MarkFileReachable(file string) (added bool) {
	if _, ok := rs.ReachableFiles[file]; ok {
		return false
	}
	rs.ReachableFiles[file] = struct{}{}
	return true
}

func (rs *ReachabilityState) AddReachableExport(file, name string) {
	ensureSet(rs.ReachableExports, file)[name] = struct{}{}
}

func (rs *ReachabilityState) AddReachableFunction(file, name string) {
	ensureSet(rs.ReachableFunctions, file)[name] = struct{}{}
}

func (rs *ReachabilityState) AddReachableVariable(file, name string) {
	ensureSet(rs.ReachableVariables, file)[name] = struct{}{}
}

func (rs *ReachabilityState) AddUsedType(file, name string) {
	ensureSet(rs.UsedTypes, file)[name] = struct{}{}
}

func (rs *ReachabilityState) AddUsedImport(file, specifier string) {
	ensureSet(rs.UsedImports, file)[specifier] = struct{}{}
}

func (rs *ReachabilityState) AddImportedSymbol(file, name string) {
	ensureSet(rs.ImportedSymbols, file)[name] = struct{}{}
}

func (rs *ReachabilityState) IsFileReachable(file string) bool {
	_, ok := rs.ReachableFiles[file]
	return ok
}

func (rs *ReachabilityState) HasReachableExport(file, name string) bool {
	s, ok := rs.ReachableExports[file]
	if !ok {
		return false
	}
	_, ok = s[name]
	return ok
}

func (rs *ReachabilityState) HasReachableFunction(file, name string) bool {
	s, ok := rs.ReachableFunctions[file]
	if !ok {
		return false
	}
	_, ok = s[name]
	return ok
}

func (rs *ReachabilityState) HasReachableVariable(file, name string) bool {
	s, ok := rs.ReachableVariables[file]
	if !ok {
		return false
	}
	_, ok = s[name]
	return ok
}

func (rs *ReachabilityState) HasUsedType(file, name string) bool {
	s, ok := rs.UsedTypes[file]
	if !ok {
		return false
	}
	_, ok = s[name]
	return ok
}

// Release drops ImportedSymbols and UsedImports to free memory once finders
// have finished reading them (§5 Memory discipline).
func (rs *ReachabilityState) Release() {
	rs.ImportedSymbols = nil
	rs.UsedImports = nil
}
