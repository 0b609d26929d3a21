// Package scanner implements the File Scanner component (§4.1): it
// enumerates candidate source and style-sheet files under a project root,
// honoring ignore patterns and detected build directories. Grounded on
// the teacher's app/file_helper.go (FileHelper.CollectJSFiles, isExcluded,
// loadGitIgnore), generalized from a single extension-set walk into the
// two-extension-family, build-directory-aware walk the spec names.
package scanner

import (
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/kiron0/unreach/domain"
)

// sourceExtensions are the extensions C1 collects as candidate source files (§4.1).
var sourceExtensions = map[string]struct{}{
	".ts": {}, ".tsx": {}, ".js": {}, ".jsx": {},
}

// styleExtensions are the extensions C1 collects as candidate style-sheet files (§4.1).
var styleExtensions = map[string]struct{}{
	".css": {}, ".scss": {}, ".sass": {}, ".less": {}, ".styl": {},
}

// fixedIgnoreDirs are always excluded regardless of configuration (§4.1).
var fixedIgnoreDirs = map[string]struct{}{
	"node_modules": {}, ".git": {}, ".svn": {}, ".hg": {},
}

// buildDirNames is the fixed candidate set for build-directory detection (§4.1).
var buildDirNames = map[string]struct{}{
	"dist": {}, "build": {}, "out": {}, "output": {}, ".next": {}, ".nuxt": {},
	".output": {}, "bundle": {}, "compiled": {}, "coverage": {}, "reports": {},
}

// Result is the pair of file lists C1 produces.
type Result struct {
	SourceFiles []string
	StyleFiles  []string
}

// DetectBuildDirectories returns the absolute paths of the project root's
// immediate child directories whose names appear in the fixed build-dir
// name set (§4.1).
func DetectBuildDirectories(root string) []string {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil
	}
	var dirs []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, ok := buildDirNames[e.Name()]; ok {
			dirs = append(dirs, filepath.Join(root, e.Name()))
		}
	}
	return dirs
}

// Scan walks root and returns the candidate source and style-sheet file
// lists, applying the fixed ignore dirs, detected build directories, user
// excludePatterns and (when enabled) the configured test-file patterns.
// Symlinks are not followed (§4.1).
func Scan(root string, cfg *domain.Config) (*Result, error) {
	buildDirs := DetectBuildDirectories(root)
	gi := loadGitIgnore(root)

	testEnabled := false
	var testPatterns []string
	if cfg != nil {
		testEnabled = domain.BoolOr(cfg.TestFileDetection.Enabled, false)
		testPatterns = cfg.TestFileDetection.Patterns
	}
	var excludePatterns []string
	if cfg != nil {
		excludePatterns = cfg.ExcludePatterns
	}

	res := &Result{}

	walkErr := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}

		if info.Mode()&os.ModeSymlink != 0 {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			name := info.Name()
			if _, ok := fixedIgnoreDirs[name]; ok {
				return filepath.SkipDir
			}
			if isBuildDir(path, buildDirs) {
				return filepath.SkipDir
			}
			if gi != nil {
				if rel, relErr := filepath.Rel(root, path); relErr == nil && gi.MatchesPath(rel) {
					return filepath.SkipDir
				}
			}
			return nil
		}

		if gi != nil {
			if rel, relErr := filepath.Rel(root, path); relErr == nil && gi.MatchesPath(rel) {
				return nil
			}
		}
		if matchesAny(path, excludePatterns) {
			return nil
		}
		if testEnabled && matchesAny(path, testPatterns) {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if _, ok := sourceExtensions[ext]; ok {
			res.SourceFiles = append(res.SourceFiles, path)
			return nil
		}
		if _, ok := styleExtensions[ext]; ok {
			res.StyleFiles = append(res.StyleFiles, path)
			return nil
		}
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return res, nil
}

func isBuildDir(path string, buildDirs []string) bool {
	for _, d := range buildDirs {
		if path == d {
			return true
		}
	}
	return false
}

// matchesAny reports whether path matches any glob pattern, either against
// its base name or as a substring of the full path — mirroring the
// teacher's isExcluded (base-name glob, or substring containment for
// directory-style patterns).
func matchesAny(path string, patterns []string) bool {
	base := filepath.Base(path)
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		if matched, err := filepath.Match(pattern, base); err == nil && matched {
			return true
		}
		if strings.Contains(path, pattern) {
			return true
		}
	}
	return false
}

// loadGitIgnore loads root/.gitignore, returning nil if absent or unreadable.
func loadGitIgnore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}
