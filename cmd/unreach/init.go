package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/kiron0/unreach/internal/jsconfig"
)

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate an unreach.config.js file",
		Long: `Generate a documented unreach.config.js with every option set to its
default value.

Examples:
  unreach init                   # create unreach.config.js here
  unreach init --config rules.js # custom output path
  unreach init --force           # overwrite an existing file`,
		RunE: runInit,
	}

	cmd.Flags().StringP("config", "c", jsconfig.DefaultFileName, "Output path for the config file")
	cmd.Flags().BoolP("force", "f", false, "Overwrite an existing config file without asking")

	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	force, _ := cmd.Flags().GetBool("force")

	if _, err := os.Stat(path); err == nil && !force {
		confirm := promptui.Prompt{
			Label:     fmt.Sprintf("%s already exists. Overwrite", path),
			IsConfirm: true,
		}
		if _, err := confirm.Run(); err != nil {
			return fmt.Errorf("%s already exists; pass --force to overwrite", path)
		}
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s", dir)
		}
	}

	if err := os.WriteFile(path, []byte(jsconfig.Template()), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	displayPath := path
	if abs, err := filepath.Abs(path); err == nil {
		displayPath = abs
	}
	fmt.Printf("Created %s\n", displayPath)
	fmt.Println("\nRun 'unreach analyze .' to analyze your project.")
	return nil
}
