package entrypoint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kiron0/unreach/domain"
	"github.com/kiron0/unreach/internal/manifest"
)

func touch(t *testing.T, root, rel string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll(%q) error = %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte("// stub\n"), 0o644); err != nil {
		t.Fatalf("WriteFile(%q) error = %v", path, err)
	}
}

func TestDetect_ExplicitEntriesWin(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "custom.ts")

	got, err := Detect(root, domain.DefaultConfig(), []string{"custom.ts"})
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if len(got) != 1 || filepath.Base(got[0]) != "custom.ts" {
		t.Fatalf("Detect() = %v, want [custom.ts]", got)
	}
}

func TestDetect_PackageJSONMainField(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "dist/index.js")
	if err := os.WriteFile(filepath.Join(root, "package.json"), []byte(`{"main": "dist/index.js"}`), 0o644); err != nil {
		t.Fatalf("failed to write package.json: %v", err)
	}

	got, err := Detect(root, domain.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	found := false
	for _, p := range got {
		if filepath.Clean(p) == filepath.Join(root, "dist/index.js") {
			found = true
		}
	}
	if !found {
		t.Errorf("Detect() = %v, expected dist/index.js from package.json main", got)
	}
}

func TestDetect_CommonPatternSrcIndex(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "src/index.ts")

	got, err := Detect(root, domain.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	found := false
	for _, p := range got {
		if filepath.Clean(p) == filepath.Join(root, "src/index.ts") {
			found = true
		}
	}
	if !found {
		t.Errorf("Detect() = %v, expected src/index.ts via the common-pattern scan", got)
	}
}

func TestDetect_NoEntriesReturnsEmpty(t *testing.T) {
	root := t.TempDir()

	got, err := Detect(root, domain.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Detect() = %v, want empty", got)
	}
}

func TestSeedFromScripts_RecognizesToolInvocation(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "vite.config.ts")
	pkg := &manifest.Package{Raw: map[string]any{
		"scripts": map[string]any{
			"build": "vite build",
			"test":  "vitest run",
		},
	}}

	result := SeedFromScripts(root, pkg)

	if _, ok := result.UsedPackages["vite"]; !ok {
		t.Errorf("expected vite recognized as used")
	}
	if _, ok := result.UsedPackages["vitest"]; !ok {
		t.Errorf("expected vitest recognized as used")
	}

	foundConfig := false
	for _, c := range result.ReachableConfigs {
		if c == "vite.config.ts" {
			foundConfig = true
		}
	}
	if !foundConfig {
		t.Errorf("expected vite.config.ts marked reachable, got %v", result.ReachableConfigs)
	}
}

func TestSeedFromScripts_NoScriptsIsEmpty(t *testing.T) {
	result := SeedFromScripts(t.TempDir(), &manifest.Package{Raw: map[string]any{}})
	if len(result.UsedPackages) != 0 {
		t.Errorf("expected no used packages, got %v", result.UsedPackages)
	}
}

func TestMentionsRecognizedTool(t *testing.T) {
	tests := []struct {
		command string
		want    bool
	}{
		{"eslint . --fix", true},
		{"tsc --noEmit", true},
		{"node scripts/deploy.js", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := MentionsRecognizedTool(tt.command); got != tt.want {
			t.Errorf("MentionsRecognizedTool(%q) = %v, want %v", tt.command, got, tt.want)
		}
	}
}
