package main

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/oxhq/movesmith/internal/config"
	"github.com/oxhq/movesmith/internal/corpusdb"
	"github.com/oxhq/movesmith/internal/runner"
	"github.com/oxhq/movesmith/internal/telemetry"
)

var (
	checkOutputDir   string
	checkFormat      string
	checkIgnoreGlobs []string
	checkRegenerate  bool
	checkRerun       bool
)

var checkCmd = &cobra.Command{
	Use:   "check CORPUS_DIR",
	Short: "Sweep a corpus of Move files through the harness and report new compiler disagreements",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().StringVarP(&checkOutputDir, "output-dir", "o", ".", "directory for the report and run-history database")
	checkCmd.Flags().StringVar(&checkFormat, "format", "text", "report format: text|markdown|html|json")
	checkCmd.Flags().StringArrayVar(&checkIgnoreGlobs, "ignore", nil, "glob pattern(s) of corpus paths to skip")
	checkCmd.Flags().BoolVar(&checkRegenerate, "regenerate", false, "rebuild known_errors.toml from fuzz.known_error_dir before checking")
	checkCmd.Flags().BoolVar(&checkRerun, "rerun", false, "skip files whose content previously passed, per the run-history database")
	rootCmd.AddCommand(checkCmd)
}

type checkEntry struct {
	Path     string
	Passed   bool
	Skipped  bool
	ErrorLog string
	Duration time.Duration
}

func runCheck(cmd *cobra.Command, args []string) error {
	corpusDir := args[0]
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(checkOutputDir, 0o755); err != nil {
		return fmt.Errorf("check: create output dir: %w", err)
	}

	pool := runner.NewErrorPool(cfg.Fuzz.IgnoreStrs)
	knownErrorsPath := filepath.Join(checkOutputDir, "known_errors.toml")
	h := defaultHarness()
	runCfg := runner.TestRunConfig{Kind: runner.ComparisonV1V2, LanguageVersion: runner.LanguageVersionV2_0}

	if checkRegenerate && cfg.Fuzz.KnownErrorDir != "" {
		telemetry.Infof("regenerating known errors from %s", cfg.Fuzz.KnownErrorDir)
		if err := runner.ProcessKnownErrorsDir(h, runCfg, cfg.Fuzz.KnownErrorDir, knownErrorsPath); err != nil {
			return fmt.Errorf("check: regenerate known errors: %w", err)
		}
	}
	if _, err := os.Stat(knownErrorsPath); err == nil {
		if err := pool.LoadKnownErrors(knownErrorsPath); err != nil {
			return fmt.Errorf("check: %w", err)
		}
	}

	pattern := filepath.ToSlash(filepath.Join(corpusDir, "**", "*.move"))
	files, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return fmt.Errorf("check: glob corpus dir: %w", err)
	}

	db, err := corpusdb.Connect(filepath.Join(checkOutputDir, "history.sqlite"), false)
	if err != nil {
		return fmt.Errorf("check: %w", err)
	}
	invocationID := fmt.Sprintf("check-%d", time.Now().UnixNano())

	var entries []checkEntry
	for i, file := range files {
		if matchesAnyIgnore(file, checkIgnoreGlobs) {
			continue
		}

		content, err := os.ReadFile(file)
		if err != nil {
			telemetry.Warnf("%s: %v", file, err)
			continue
		}
		hash := sha256.Sum256(content)
		contentHash := hex.EncodeToString(hash[:])

		if checkRerun {
			prev, err := corpusdb.PreviousResult(db, file)
			if err == nil && prev != nil && prev.Passed && prev.ContentHash == contentHash {
				telemetry.Progress(i+1, len(files), "%s: unchanged since last pass, skipping", file)
				entries = append(entries, checkEntry{Path: file, Passed: true, Skipped: true})
				continue
			}
		}

		start := time.Now()
		runErr := h.Run(file, runCfg)
		result := runner.ClassifyRun(file, time.Since(start), runErr)
		skip := pool.ShouldSkipResult(result)

		errSummary := ""
		if !result.Passed() {
			errSummary = result.Err.String()
		}
		if err := corpusdb.Record(db, invocationID, file, contentHash, result.Passed() || skip, errSummary, result.Duration); err != nil {
			telemetry.Warnf("record history for %s: %v", file, err)
		}

		entries = append(entries, checkEntry{
			Path: file, Passed: result.Passed() || skip, ErrorLog: errSummary, Duration: result.Duration,
		})
		telemetry.Progress(i+1, len(files), "%s: %s", file, passLabel(result.Passed() || skip))
	}

	return writeCheckReport(entries)
}

func passLabel(passed bool) string {
	if passed {
		return "ok"
	}
	return "DISAGREEMENT"
}

func matchesAnyIgnore(path string, globs []string) bool {
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, filepath.ToSlash(path)); ok {
			return true
		}
	}
	return false
}

func writeCheckReport(entries []checkEntry) error {
	var failing []checkEntry
	for _, e := range entries {
		if !e.Passed {
			failing = append(failing, e)
		}
	}

	var body string
	switch checkFormat {
	case "json":
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		body = string(data)
	case "markdown":
		var b strings.Builder
		fmt.Fprintf(&b, "# Check report\n\n%d/%d passed\n\n", len(entries)-len(failing), len(entries))
		for _, e := range failing {
			fmt.Fprintf(&b, "## %s\n\n```\n%s\n```\n\n", e.Path, diffAgainstEmpty(e.ErrorLog))
		}
		body = b.String()
	case "html":
		var b strings.Builder
		fmt.Fprintf(&b, "<h1>Check report</h1><p>%d/%d passed</p>", len(entries)-len(failing), len(entries))
		for _, e := range failing {
			fmt.Fprintf(&b, "<h2>%s</h2><pre>%s</pre>", e.Path, e.ErrorLog)
		}
		body = b.String()
	default: // text
		var b strings.Builder
		fmt.Fprintf(&b, "%d/%d passed\n", len(entries)-len(failing), len(entries))
		for _, e := range failing {
			fmt.Fprintf(&b, "--- %s ---\n%s\n", e.Path, e.ErrorLog)
		}
		body = b.String()
	}

	ext := map[string]string{"json": "json", "markdown": "md", "html": "html", "text": "txt"}[checkFormat]
	reportPath := filepath.Join(checkOutputDir, "report."+ext)
	if err := os.WriteFile(reportPath, []byte(body), 0o644); err != nil {
		return fmt.Errorf("check: write report: %w", err)
	}
	telemetry.Infof("wrote report to %s (%d/%d passed)", reportPath, len(entries)-len(failing), len(entries))
	if len(failing) > 0 {
		os.Exit(1)
	}
	return nil
}

// diffAgainstEmpty renders a unified diff against an empty baseline so
// a multi-line error log reads as an additive diff block in the
// markdown report, the same shape go-difflib produces for morfx's
// file diffs.
func diffAgainstEmpty(errLog string) string {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(""),
		B:        difflib.SplitLines(errLog),
		FromFile: "expected (no diff)",
		ToFile:   "actual",
		Context:  3,
	}
	text, _ := difflib.GetUnifiedDiffString(diff)
	return text
}
