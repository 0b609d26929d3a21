// Package manifest provides package.json / tsconfig.json parsing and the
// unused-configuration-key taxonomy of §6. It backs C6 (entry-point field
// walking), C7 (script scanning) and C9's UnusedConfigs finder. Grounded
// on the teacher's "read package.json, recurse into nested values" idiom
// in app/file_helper.go; the taxonomy table itself has no teacher
// precedent (jscan never inspects package.json/tsconfig.json contents) and
// is implemented directly from §6 of the original spec.
package manifest

import (
	"encoding/json"
	"os"
)

// Package is a loosely-typed view over package.json: the fields §4.6/§4.8
// name explicitly are surfaced as typed accessors, everything else is kept
// in Raw for the generic nested-field walks C6/C9 need.
type Package struct {
	Raw map[string]any
}

// LoadPackage reads and parses path as a package.json. A missing or
// malformed file returns (nil, err); callers treat this as absent.
func LoadPackage(path string) (*Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return &Package{Raw: raw}, nil
}

func (p *Package) stringMap(key string) map[string]string {
	result := make(map[string]string)
	if p == nil {
		return result
	}
	obj, _ := p.Raw[key].(map[string]any)
	for k, v := range obj {
		if s, ok := v.(string); ok {
			result[k] = s
		}
	}
	return result
}

// Dependencies returns the dependencies object (name -> version range).
func (p *Package) Dependencies() map[string]string { return p.stringMap("dependencies") }

// DevDependencies returns the devDependencies object.
func (p *Package) DevDependencies() map[string]string { return p.stringMap("devDependencies") }

// PeerDependencies returns the peerDependencies object.
func (p *Package) PeerDependencies() map[string]string { return p.stringMap("peerDependencies") }

// Scripts returns the scripts object (name -> command).
func (p *Package) Scripts() map[string]string { return p.stringMap("scripts") }

// AllDependencyNames returns the union of dependencies, devDependencies
// and peerDependencies keys (§4.8 UnusedPackages).
func (p *Package) AllDependencyNames() map[string]struct{} {
	out := make(map[string]struct{})
	for name := range p.Dependencies() {
		out[name] = struct{}{}
	}
	for name := range p.DevDependencies() {
		out[name] = struct{}{}
	}
	for name := range p.PeerDependencies() {
		out[name] = struct{}{}
	}
	return out
}

// BinNames returns the basenames of every `bin` entry, whether `bin` is a
// string (package-name-as-bin) or an object of name -> path (§4.8
// UnusedScripts: "the basename of a bin entry").
func (p *Package) BinNames() []string {
	if p == nil {
		return nil
	}
	switch v := p.Raw["bin"].(type) {
	case string:
		if name, _ := p.Raw["name"].(string); name != "" {
			return []string{name}
		}
	case map[string]any:
		names := make([]string, 0, len(v))
		for name := range v {
			names = append(names, name)
		}
		return names
	}
	return nil
}

// entryPointFields is the set of top-level package.json keys C6 walks
// for entry-point candidate string values (§4.6 step 2).
var entryPointFields = []string{"bin", "main", "module", "browser", "exports", "types", "typings"}

// EntryPointStrings recurses into entryPointFields, collecting every
// string value found at any depth within objects and arrays (§4.6).
func (p *Package) EntryPointStrings() []string {
	if p == nil {
		return nil
	}
	var out []string
	for _, field := range entryPointFields {
		v, ok := p.Raw[field]
		if !ok {
			continue
		}
		collectStrings(v, &out)
	}
	return out
}

func collectStrings(v any, out *[]string) {
	switch t := v.(type) {
	case string:
		*out = append(*out, t)
	case map[string]any:
		for _, sub := range t {
			collectStrings(sub, out)
		}
	case []any:
		for _, sub := range t {
			collectStrings(sub, out)
		}
	}
}

// IsPublished reports whether the manifest declares publishConfig or
// repository (§6 metadata-field taxonomy: "used if published").
func (p *Package) IsPublished() bool {
	if p == nil {
		return false
	}
	_, hasPublishConfig := p.Raw["publishConfig"]
	_, hasRepository := p.Raw["repository"]
	return hasPublishConfig || hasRepository
}

func (p *Package) isNonEmptyValue(key string) bool {
	v, ok := p.Raw[key]
	if !ok {
		return false
	}
	switch t := v.(type) {
	case string:
		return t != ""
	case map[string]any:
		return len(t) > 0
	case []any:
		return len(t) > 0
	case bool:
		return t
	default:
		return v != nil
	}
}

// alwaysUsedFields is §6's "Always used" package.json field set.
var alwaysUsedFields = map[string]struct{}{
	"name": {}, "version": {}, "type": {}, "main": {}, "types": {}, "bin": {},
	"scripts": {}, "dependencies": {}, "devDependencies": {}, "peerDependencies": {},
}

// metadataFields is §6's metadata field set.
var metadataFields = map[string]struct{}{
	"description": {}, "keywords": {}, "author": {}, "license": {},
	"repository": {}, "homepage": {}, "bugs": {}, "funding": {},
}

// standardNpmFields is §6's "always used" standard npm field set.
var standardNpmFields = map[string]struct{}{
	"publishConfig": {}, "preferGlobal": {}, "bundleDependencies": {},
	"bundledDependencies": {}, "optionalDependencies": {}, "peerDependenciesMeta": {},
	"overrides": {}, "resolutions": {},
}

// UnusedKeys reports the package.json top-level keys the §6 taxonomy
// classifies as unused.
func (p *Package) UnusedKeys() []string {
	if p == nil {
		return nil
	}
	var unused []string
	published := p.IsPublished()

	for key := range p.Raw {
		switch {
		case inSet(alwaysUsedFields, key):
			continue
		case key == "private":
			continue
		case inSet(standardNpmFields, key):
			continue
		case inSet(metadataFields, key):
			if !published && !p.isNonEmptyValue(key) {
				unused = append(unused, key)
			}
		case key == "exports":
			typ, _ := p.Raw["type"].(string)
			if typ != "module" && !p.isNonEmptyValue("exports") {
				unused = append(unused, key)
			}
		case key == "files":
			if !published && !p.isNonEmptyValue("files") {
				unused = append(unused, key)
			}
		case key == "engines", key == "os", key == "cpu":
			if !p.isNonEmptyValue(key) {
				unused = append(unused, key)
			}
		case key == "workspaces", key == "workspace":
			if !p.isNonEmptyValue(key) {
				unused = append(unused, key)
			}
		default:
			unused = append(unused, key)
		}
	}
	return unused
}

func inSet(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}

// TSConfig is a loosely-typed view over tsconfig.json.
type TSConfig struct {
	Raw             map[string]any
	CompilerOptions map[string]any
	Include         []string
	Exclude         []string
	Files           []string
}

// LoadTSConfig reads and parses path as a tsconfig.json.
func LoadTSConfig(path string) (*TSConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	tc := &TSConfig{Raw: raw}
	if co, ok := raw["compilerOptions"].(map[string]any); ok {
		tc.CompilerOptions = co
	}
	tc.Include = stringSlice(raw["include"])
	tc.Exclude = stringSlice(raw["exclude"])
	tc.Files = stringSlice(raw["files"])
	return tc, nil
}

func stringSlice(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// alwaysUsedCompilerOptions is §6's always-used compilerOptions set.
var alwaysUsedCompilerOptions = map[string]struct{}{
	"target": {}, "module": {}, "lib": {}, "moduleResolution": {}, "strict": {},
	"esModuleInterop": {}, "skipLibCheck": {}, "forceConsistentCasingInFileNames": {},
	"outDir": {}, "rootDir": {}, "declaration": {}, "declarationMap": {},
	"sourceMap": {}, "jsx": {}, "jsxFactory": {}, "jsxFragmentFactory": {},
}

// UnusedCompilerOptions reports the compilerOptions keys the §6 taxonomy
// classifies as unused. hasDecoratorUsage reports whether any reachable
// source file contains a decorator occurrence (the regex check of §6),
// needed to resolve experimentalDecorators/emitDecoratorMetadata.
func (tc *TSConfig) UnusedCompilerOptions(hasDecoratorUsage bool) []string {
	if tc == nil || tc.CompilerOptions == nil {
		return nil
	}
	var unused []string
	for key, v := range tc.CompilerOptions {
		switch {
		case inSet(alwaysUsedCompilerOptions, key):
			continue
		case key == "baseUrl":
			if s, _ := v.(string); s == "" {
				unused = append(unused, key)
			}
		case key == "paths":
			if m, _ := v.(map[string]any); len(m) == 0 {
				unused = append(unused, key)
			}
		case key == "types":
			switch t := v.(type) {
			case []any:
				if len(t) == 0 {
					unused = append(unused, key)
				}
			case string:
				if t == "" {
					unused = append(unused, key)
				}
			}
		case key == "typeRoots":
			if a, _ := v.([]any); len(a) == 0 {
				unused = append(unused, key)
			}
		case key == "experimentalDecorators", key == "emitDecoratorMetadata":
			if enabled, _ := v.(bool); enabled && !hasDecoratorUsage {
				unused = append(unused, key)
			}
		}
	}
	return unused
}

// TopLevelUnusedKeys reports unused `include`/`exclude` per §6: include is
// unused iff empty or exactly ["**/*"]; exclude is unused iff it contains
// only the default "node_modules".
func (tc *TSConfig) TopLevelUnusedKeys() []string {
	if tc == nil {
		return nil
	}
	var unused []string
	if _, ok := tc.Raw["include"]; ok {
		if len(tc.Include) == 0 || (len(tc.Include) == 1 && tc.Include[0] == "**/*") {
			unused = append(unused, "include")
		}
	}
	if _, ok := tc.Raw["exclude"]; ok {
		if len(tc.Exclude) == 1 && tc.Exclude[0] == "node_modules" {
			unused = append(unused, "exclude")
		}
	}
	return unused
}
