package domain

import "sync"

// ResolvedModule is the outcome of resolving one (fromFile, specifier) pair.
// Ok is false when the specifier could not be resolved to an in-project file
// (e.g. a bare package specifier, or a relative specifier with no match).
type ResolvedModule struct {
	Path string
	Ok   bool
}

type resolveKey struct {
	fromFile  string
	specifier string
}

// DependencyGraph holds one FileSummary per in-project file, the CSS class
// sets contributed by style files, and the import resolution memo (§3).
// It exclusively owns every FileSummary; callers downstream only borrow
// read-only views (§3 Ownership).
type DependencyGraph struct {
	mu sync.RWMutex

	// Files maps a canonical absolute path to its FileSummary.
	Files map[string]*FileSummary

	// StyleClasses maps a canonical absolute style-file path to the set of
	// class selectors it defines (§3, §4.2).
	StyleClasses map[string]map[string]struct{}

	resolveCache map[resolveKey]ResolvedModule
}

// NewDependencyGraph returns an empty graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		Files:        make(map[string]*FileSummary),
		StyleClasses: make(map[string]map[string]struct{}),
		resolveCache: make(map[resolveKey]ResolvedModule),
	}
}

// AddFile registers (or replaces) a file's summary.
func (g *DependencyGraph) AddFile(summary *FileSummary) {
	if summary == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Files[summary.Path] = summary
}

// RemoveFile drops a file's summary (used for deleted entries, §4.5 step 4).
func (g *DependencyGraph) RemoveFile(path string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.Files, path)
}

// Get returns the FileSummary for path, or nil.
func (g *DependencyGraph) Get(path string) *FileSummary {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.Files[path]
}

// Has reports whether path has a registered FileSummary.
func (g *DependencyGraph) Has(path string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.Files[path]
	return ok
}

// SetStyleClasses records the class selectors defined by a style file.
func (g *DependencyGraph) SetStyleClasses(path string, classes map[string]struct{}) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.StyleClasses[path] = classes
}

// CacheResolution memoizes the outcome of resolving specifier from fromFile
// (§4.5: "All results are memoized in the resolution cache").
func (g *DependencyGraph) CacheResolution(fromFile, specifier string, result ResolvedModule) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resolveCache[resolveKey{fromFile, specifier}] = result
}

// LookupResolution returns a previously memoized resolution, if any.
func (g *DependencyGraph) LookupResolution(fromFile, specifier string) (ResolvedModule, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	r, ok := g.resolveCache[resolveKey{fromFile, specifier}]
	return r, ok
}

// MarkEntryPoint sets IsEntryPoint = true on the file at path, if present.
func (g *DependencyGraph) MarkEntryPoint(path string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if f, ok := g.Files[path]; ok {
		f.IsEntryPoint = true
	}
}

// FileCount returns the number of files registered in the graph.
func (g *DependencyGraph) FileCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.Files)
}

// ReleaseResolutionCache drops the resolution memo to free memory once the
// graph is fully built and no further resolution calls are expected
// (§5 Memory discipline: "the graph must release ... its resolution caches").
func (g *DependencyGraph) ReleaseResolutionCache() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resolveCache = nil
}
