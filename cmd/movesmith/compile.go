package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oxhq/movesmith/internal/runner"
)

var compileCmd = &cobra.Command{
	Use:   "compile FILE",
	Short: "Compile a Move source file under the V2 compiler only, surfacing a bare compiler error",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	path := args[0]
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("compile: %w", err)
	}

	h := defaultHarness()
	cfg := runner.TestRunConfig{Kind: runner.V2Only, LanguageVersion: runner.LanguageVersionV2_0}
	if err := h.Run(path, cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println("Compiled successfully.")
	return nil
}
