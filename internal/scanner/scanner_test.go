package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kiron0/unreach/domain"
)

func writeStub(t *testing.T, root, rel string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll(%q) error = %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte("// stub\n"), 0o644); err != nil {
		t.Fatalf("WriteFile(%q) error = %v", path, err)
	}
}

func contains(list []string, suffix string) bool {
	for _, p := range list {
		if filepath.ToSlash(p) == filepath.ToSlash(suffix) || filepath.Base(p) == filepath.Base(suffix) {
			return true
		}
	}
	return false
}

func TestScan_CollectsSourceAndStyleFiles(t *testing.T) {
	root := t.TempDir()
	writeStub(t, root, "src/index.ts")
	writeStub(t, root, "src/app.jsx")
	writeStub(t, root, "src/styles.css")
	writeStub(t, root, "README.md")

	res, err := Scan(root, domain.DefaultConfig())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if !contains(res.SourceFiles, "index.ts") || !contains(res.SourceFiles, "app.jsx") {
		t.Errorf("Scan().SourceFiles = %v", res.SourceFiles)
	}
	if !contains(res.StyleFiles, "styles.css") {
		t.Errorf("Scan().StyleFiles = %v", res.StyleFiles)
	}
	if contains(res.SourceFiles, "README.md") {
		t.Errorf("Scan() should not treat README.md as a source file")
	}
}

func TestScan_SkipsFixedIgnoreDirs(t *testing.T) {
	root := t.TempDir()
	writeStub(t, root, "node_modules/pkg/index.js")
	writeStub(t, root, ".git/hooks/pre-commit.js")
	writeStub(t, root, "src/index.ts")

	res, err := Scan(root, domain.DefaultConfig())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(res.SourceFiles) != 1 {
		t.Errorf("Scan().SourceFiles = %v, want only src/index.ts", res.SourceFiles)
	}
}

func TestScan_SkipsDetectedBuildDirectories(t *testing.T) {
	root := t.TempDir()
	writeStub(t, root, "dist/bundle.js")
	writeStub(t, root, "src/index.ts")

	res, err := Scan(root, domain.DefaultConfig())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if contains(res.SourceFiles, "bundle.js") {
		t.Errorf("Scan() should skip the dist/ build directory, got %v", res.SourceFiles)
	}
}

func TestScan_HonorsExcludePatterns(t *testing.T) {
	root := t.TempDir()
	writeStub(t, root, "generated/types.ts")
	writeStub(t, root, "src/index.ts")

	cfg := domain.DefaultConfig()
	cfg.ExcludePatterns = []string{"generated"}

	res, err := Scan(root, cfg)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if contains(res.SourceFiles, "types.ts") {
		t.Errorf("Scan() should honor excludePatterns, got %v", res.SourceFiles)
	}
}

func TestScan_SkipsTestFilesWhenEnabled(t *testing.T) {
	root := t.TempDir()
	writeStub(t, root, "src/index.test.ts")
	writeStub(t, root, "src/index.ts")

	cfg := domain.DefaultConfig()
	enabled := true
	cfg.TestFileDetection.Enabled = &enabled
	cfg.TestFileDetection.Patterns = []string{"index.test.ts"}

	res, err := Scan(root, cfg)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if contains(res.SourceFiles, "index.test.ts") {
		t.Errorf("Scan() should skip test files when detection is enabled, got %v", res.SourceFiles)
	}
}

func TestScan_HonorsGitignore(t *testing.T) {
	root := t.TempDir()
	writeStub(t, root, "ignored/secret.ts")
	writeStub(t, root, "src/index.ts")
	if err := os.WriteFile(filepath.Join(root, ".gitignore"), []byte("ignored/\n"), 0o644); err != nil {
		t.Fatalf("WriteFile(.gitignore) error = %v", err)
	}

	res, err := Scan(root, domain.DefaultConfig())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if contains(res.SourceFiles, "secret.ts") {
		t.Errorf("Scan() should honor .gitignore, got %v", res.SourceFiles)
	}
}

func TestDetectBuildDirectories(t *testing.T) {
	root := t.TempDir()
	writeStub(t, root, "dist/bundle.js")
	writeStub(t, root, "build/out.js")
	writeStub(t, root, "src/index.ts")

	dirs := DetectBuildDirectories(root)
	if len(dirs) != 2 {
		t.Fatalf("DetectBuildDirectories() = %v, want 2 entries", dirs)
	}
}
