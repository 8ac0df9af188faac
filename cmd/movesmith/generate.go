package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/oxhq/movesmith/internal/config"
	"github.com/oxhq/movesmith/internal/generator"
	"github.com/oxhq/movesmith/internal/runner"
	"github.com/oxhq/movesmith/internal/selection"
	"github.com/oxhq/movesmith/internal/telemetry"
)

var (
	genSeed      int64
	genPackage   bool
	genOutputDir string
	genSkipRun   bool
)

var generateCmd = &cobra.Command{
	Use:   "generate N",
	Short: "Generate N random Move programs from a seeded byte stream",
	Args:  cobra.ExactArgs(1),
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().Int64Var(&genSeed, "seed", 1, "base seed; program i derives its byte stream from seed+i")
	generateCmd.Flags().BoolVar(&genPackage, "package", false, "write a Move.toml alongside each generated program")
	generateCmd.Flags().StringVarP(&genOutputDir, "output-dir", "o", ".", "directory to write generated programs into")
	generateCmd.Flags().BoolVar(&genSkipRun, "skip-run", false, "only generate sources, skip running them through the harness")
	rootCmd.AddCommand(generateCmd)
}

// generateSource runs one byte buffer through the generator, wrapping
// the selection package's recoverable ErrNotEnoughData the way
// internal/core/pipeline.go wraps per-stage errors, so callers can
// still errors.Is through to it.
func generateSource(cfg *config.Config, data []byte) (string, error) {
	source, err := generator.Generate(cfg.ToGeneratorConfig(), data)
	if err != nil {
		if errors.Is(err, selection.ErrNotEnoughData) {
			return "", fmt.Errorf("generate: exhausted input bytes: %w", err)
		}
		return "", fmt.Errorf("generate: %w", err)
	}
	return source, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	var n int
	if _, err := fmt.Sscanf(args[0], "%d", &n); err != nil || n <= 0 {
		fatalf("generate: N must be a positive integer, got %q", args[0])
		return nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(genOutputDir, 0o755); err != nil {
		return fmt.Errorf("generate: create output dir: %w", err)
	}

	written := 0
	for i := 0; i < n; i++ {
		data := seedBytes(genSeed+int64(i), 4096)
		source, err := generateSource(cfg, data)
		if err != nil {
			telemetry.Progress(i+1, n, "skipped: %v", err)
			continue
		}

		name := fmt.Sprintf("generated_%04d.move", i)
		path := filepath.Join(genOutputDir, name)
		if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
			return fmt.Errorf("generate: write %s: %w", path, err)
		}
		if genPackage {
			if err := writeMoveToml(genOutputDir); err != nil {
				return err
			}
		}
		telemetry.Progress(i+1, n, "wrote %s", path)
		written++
	}

	telemetry.Infof("generated %d/%d programs into %s", written, n, genOutputDir)
	if genSkipRun {
		return nil
	}

	h := defaultHarness()
	runCfg := runner.TestRunConfig{Kind: runner.ComparisonV1V2, LanguageVersion: runner.LanguageVersionV2_0}
	entries, err := os.ReadDir(genOutputDir)
	if err != nil {
		return fmt.Errorf("generate: list output dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".move" {
			continue
		}
		path := filepath.Join(genOutputDir, entry.Name())
		start := time.Now()
		runErr := h.Run(path, runCfg)
		result := runner.ClassifyRun(path, time.Since(start), runErr)
		if result.Passed() {
			telemetry.Infof("%s: passed", path)
		} else {
			telemetry.Warnf("%s: %s", path, result.Err)
		}
	}
	return nil
}

func writeMoveToml(dir string) error {
	path := filepath.Join(dir, "Move.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	const tmpl = `[package]
name = "movesmith_corpus"
version = "0.0.1"

[addresses]
CAFE = "0xCAFE"
BEEF = "0xBEEF"
`
	return os.WriteFile(path, []byte(tmpl), 0o644)
}
