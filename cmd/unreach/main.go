package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kiron0/unreach/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "unreach",
		Short:   "unreach - whole-project dead code and reachability analyzer",
		Long:    `unreach finds packages, imports, exports, functions, variables, files, types, CSS classes and assets that nothing in your JavaScript/TypeScript project reaches.`,
		Version: version.GetVersion(),
	}

	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				fmt.Println(version.GetFullVersion())
			} else {
				fmt.Printf("unreach version %s\n", version.GetVersion())
			}
		},
	}

	cmd.Flags().BoolP("verbose", "v", false, "Show detailed version information")
	return cmd
}
