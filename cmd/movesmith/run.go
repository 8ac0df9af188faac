package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/oxhq/movesmith/internal/runner"
)

var runCmd = &cobra.Command{
	Use:   "run FILE",
	Short: "Run a Move source file through the V1/V2 comparison harness",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunFile,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRunFile(cmd *cobra.Command, args []string) error {
	path := args[0]
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("run: %w", err)
	}

	h := defaultHarness()
	cfg := runner.TestRunConfig{Kind: runner.ComparisonV1V2, LanguageVersion: runner.LanguageVersionV2_0}

	start := time.Now()
	runErr := h.Run(path, cfg)
	result := runner.ClassifyRun(path, time.Since(start), runErr)

	if result.Passed() {
		fmt.Println("Test passed.")
		return nil
	}
	fmt.Print(result.Err.String())
	os.Exit(1)
	return nil
}
