package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kiron0/unreach/app"
	"github.com/kiron0/unreach/domain"
	"github.com/kiron0/unreach/internal/config"
	"github.com/kiron0/unreach/service"
)

var (
	noConfig    bool
	jsonOutput  bool
	verbose     bool
	cliEntries  []string
	incremental bool
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [path]",
		Short: "Find unused packages, exports, functions, variables, files and more",
		Long: `Analyze a JavaScript/TypeScript project for dead code: unused
dependencies, imports, exports, functions, variables, files, types, CSS
classes, static assets, package.json/tsconfig.json keys and npm scripts.

Examples:
  unreach analyze .                   # analyze the current project
  unreach analyze --no-config .       # ignore unreach.config.js
  unreach analyze --json . > out.json # machine-readable output`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAnalyze,
	}

	cmd.Flags().BoolVar(&noConfig, "no-config", false, "Ignore unreach.config.js/.ts entirely")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the scan result as JSON")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print per-file progress and warnings")
	cmd.Flags().StringSliceVar(&cliEntries, "entry", nil, "Explicit entry point(s), overriding auto-detection")
	cmd.Flags().BoolVar(&incremental, "incremental", true, "Reuse the on-disk AST cache for unchanged files")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	settings, err := config.LoadSettings(root)
	if err != nil {
		return fmt.Errorf("failed to load .unreach.yaml: %w", err)
	}

	pm := service.NewProgressManager(!jsonOutput && domain.BoolOr(settings.Interactive, true))
	defer pm.Close()

	var task domain.TaskProgress
	if pm.IsInteractive() {
		task = pm.StartTask("Analyzing", 0)
	}

	opts := &domain.AnalyzeOptions{
		ProjectRoot:   root,
		NoConfig:      noConfig,
		CLIEntries:    cliEntries,
		MaxGoroutines: settings.Performance.MaxGoroutines,
		OnProgress: func(event, path string, ferr error) {
			if task != nil {
				task.Increment(0)
				task.Describe(path)
			}
			if verbose && !jsonOutput {
				if ferr != nil {
					fmt.Fprintf(os.Stderr, "%s %s: %v\n", event, path, ferr)
				} else if event == "file-finished" {
					fmt.Fprintf(os.Stderr, "%s %s\n", event, path)
				}
			}
		},
		OnWarning: func(warning string) {
			if !jsonOutput {
				fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
			}
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(settings.Performance.TimeoutSeconds)*time.Second)
	defer cancel()

	start := time.Now()
	result, err := app.Analyze(ctx, opts, incremental)
	if task != nil {
		task.Complete()
	}
	if err != nil {
		return err
	}
	duration := time.Since(start)

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printSummary(result, duration)
	return nil
}

func printSummary(r *domain.ScanResult, duration time.Duration) {
	fmt.Printf("unused packages:    %d\n", len(r.UnusedPackages))
	fmt.Printf("unused imports:     %d\n", len(r.UnusedImports))
	fmt.Printf("unused exports:     %d\n", len(r.UnusedExports))
	fmt.Printf("unused functions:   %d\n", len(r.UnusedFunctions))
	fmt.Printf("unused variables:   %d\n", len(r.UnusedVariables))
	fmt.Printf("unused files:       %d\n", len(r.UnusedFiles))
	fmt.Printf("unused types:       %d\n", len(r.UnusedTypes))
	fmt.Printf("unused CSS classes: %d\n", len(r.UnusedCSSClasses))
	fmt.Printf("unused assets:      %d\n", len(r.UnusedAssets))
	fmt.Printf("unused configs:     %d\n", len(r.UnusedConfigs))
	fmt.Printf("unused scripts:     %d\n", len(r.UnusedScripts))
	if len(r.Warnings) > 0 {
		fmt.Printf("warnings:           %d\n", len(r.Warnings))
	}
	fmt.Printf("done in %s\n", duration.Round(time.Millisecond))
}
