package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kiron0/unreach/domain"
)

func writeProjectFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll(%q) error = %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%q) error = %v", path, err)
	}
}

// TestAnalyze_SmallProject builds a minimal real project on disk and runs
// the whole analyze() pipeline against it (§6), exercising scan -> graph ->
// reachability -> finders -> ignore end to end rather than any one
// component in isolation.
func TestAnalyze_SmallProject(t *testing.T) {
	root := t.TempDir()

	writeProjectFile(t, root, "package.json", `{
		"name": "demo",
		"main": "src/index.ts",
		"dependencies": {"left-pad": "^1.0.0", "unused-dep": "^1.0.0"},
		"scripts": {"build": "tsc"}
	}`)
	writeProjectFile(t, root, "src/index.ts", `
import { pad } from "left-pad";
import { helper } from "./util";

export function main() {
	return pad(helper());
}
`)
	writeProjectFile(t, root, "src/util.ts", `
export function helper() {
	return "hi";
}

export function deadExport() {
	return "never called";
}

function deadPrivate() {
	return 0;
}
`)
	writeProjectFile(t, root, "src/orphan.ts", `
export function neverImported() {
	return "nobody imports this file";
}
`)

	opts := &domain.AnalyzeOptions{ProjectRoot: root}
	result, err := Analyze(context.Background(), opts, false)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	foundUnusedDep := false
	for _, p := range result.UnusedPackages {
		if p.Name == "unused-dep" {
			foundUnusedDep = true
		}
		if p.Name == "left-pad" {
			t.Errorf("left-pad is imported from src/index.ts, should not be reported unused")
		}
	}
	if !foundUnusedDep {
		t.Errorf("UnusedPackages = %v, want unused-dep reported", result.UnusedPackages)
	}

	foundOrphan := false
	for _, f := range result.UnusedFiles {
		if filepath.Base(f.Path) == "orphan.ts" {
			foundOrphan = true
		}
	}
	if !foundOrphan {
		t.Errorf("UnusedFiles = %v, want src/orphan.ts reported", result.UnusedFiles)
	}

	foundDeadExport := false
	for _, e := range result.UnusedExports {
		if e.ExportName == "deadExport" {
			foundDeadExport = true
		}
	}
	if !foundDeadExport {
		t.Errorf("UnusedExports = %v, want deadExport reported", result.UnusedExports)
	}
}

func TestAnalyze_MissingProjectRootIsFatal(t *testing.T) {
	opts := &domain.AnalyzeOptions{ProjectRoot: filepath.Join(t.TempDir(), "does-not-exist")}
	_, err := Analyze(context.Background(), opts, false)
	if err == nil {
		t.Fatalf("expected an error for a missing project root")
	}
	var analysisErr *domain.AnalysisError
	if ae, ok := err.(*domain.AnalysisError); ok {
		analysisErr = ae
	}
	if analysisErr == nil || analysisErr.Kind != domain.ErrDirectoryNotFound {
		t.Errorf("Analyze() error = %v, want an ErrDirectoryNotFound AnalysisError", err)
	}
}

func TestAnalyze_NoEntryPointsIsFatal(t *testing.T) {
	root := t.TempDir()
	opts := &domain.AnalyzeOptions{ProjectRoot: root}
	_, err := Analyze(context.Background(), opts, false)
	if err == nil {
		t.Fatalf("expected an error for a project with no detectable entry points")
	}
	var analysisErr *domain.AnalysisError
	if ae, ok := err.(*domain.AnalysisError); ok {
		analysisErr = ae
	}
	if analysisErr == nil || analysisErr.Kind != domain.ErrEntryPointMissing {
		t.Errorf("Analyze() error = %v, want an ErrEntryPointMissing AnalysisError", err)
	}
}

func TestAnalyze_CLIEntryMissingIsFatal(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "src/index.ts", `export function main() {}`)

	opts := &domain.AnalyzeOptions{ProjectRoot: root, CLIEntries: []string{"src/does-not-exist.ts"}}
	_, err := Analyze(context.Background(), opts, false)
	if err == nil {
		t.Fatalf("expected an error for a CLI entry point that does not exist on disk")
	}
	var analysisErr *domain.AnalysisError
	if ae, ok := err.(*domain.AnalysisError); ok {
		analysisErr = ae
	}
	if analysisErr == nil || analysisErr.Kind != domain.ErrEntryPointMissing {
		t.Errorf("Analyze() error = %v, want an ErrEntryPointMissing AnalysisError, not a silently empty result", err)
	}
}
