package runner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
)

// Harness is the thing that actually runs a Move source file under a
// TestRunConfig. It lives outside this package: running the real V1/V2
// Aptos Move compilers is an external-collaborator concern (spec.md
// §2 item 9), this package only defines the contract and classifies
// whatever comes back.
type Harness interface {
	Run(sourcePath string, cfg TestRunConfig) error
}

// Errors is the TOML-serializable known-error set: an ordered,
// deduplicated collection of ClassifiedErrors, mirroring the original
// Errors{errors: BTreeSet<TransactionalTestError>}.
type Errors struct {
	Errors []ClassifiedError `toml:"errors"`
}

func (e *Errors) contains(err ClassifiedError) bool {
	for _, known := range e.Errors {
		if known.Equal(err) {
			return true
		}
	}
	return false
}

func (e *Errors) insert(err ClassifiedError) {
	if e.contains(err) {
		return
	}
	e.Errors = append(e.Errors, err)
	sort.Slice(e.Errors, func(i, j int) bool {
		return fmt.Sprint(e.Errors[i].V1Errors) < fmt.Sprint(e.Errors[j].V1Errors)
	})
}

// ErrorPool tracks which compiler disagreements are already known
// (loaded from a TOML file) or explicitly ignored by substring, so a
// corpus re-run only flags genuinely new behavior.
type ErrorPool struct {
	known      Errors
	ignoreStrs []string
}

// NewErrorPool builds an empty pool with the given ignore substrings
// (fuzz.ignore_strs from the configuration schema).
func NewErrorPool(ignoreStrs []string) *ErrorPool {
	return &ErrorPool{ignoreStrs: append([]string(nil), ignoreStrs...)}
}

// LoadKnownErrors reads a previously saved known_errors.toml.
func (p *ErrorPool) LoadKnownErrors(tomlPath string) error {
	data, err := os.ReadFile(tomlPath)
	if err != nil {
		return fmt.Errorf("read known errors: %w", err)
	}
	var errs Errors
	if err := toml.Unmarshal(data, &errs); err != nil {
		return fmt.Errorf("parse known errors: %w", err)
	}
	p.known = errs
	return nil
}

// SaveKnownErrors persists the pool's current known-error set.
func (p *ErrorPool) SaveKnownErrors(tomlPath string) error {
	data, err := toml.Marshal(p.known)
	if err != nil {
		return fmt.Errorf("encode known errors: %w", err)
	}
	return os.WriteFile(tomlPath, data, 0o644)
}

// AddKnownError records a freshly observed disagreement as known,
// deduplicating against the existing set.
func (p *ErrorPool) AddKnownError(err ClassifiedError) {
	p.known.insert(err)
}

// ShouldSkipResult reports whether r should be treated as
// uninteresting: it passed, it matches a known error, or (absent a
// hash-diff convergence signal) its log matches an ignore substring.
// Mirrors ErrorPool::should_skip_result / should_skip_error.
func (p *ErrorPool) ShouldSkipResult(r Result) bool {
	if r.Passed() {
		return true
	}
	return p.ShouldSkipError(*r.Err)
}

func (p *ErrorPool) ShouldSkipError(err ClassifiedError) bool {
	if p.known.contains(err) {
		return true
	}
	if len(err.HashDiff) != 0 {
		return false
	}
	for _, ignore := range p.ignoreStrs {
		if strings.Contains(err.FullLog, ignore) {
			return true
		}
	}
	return false
}

// ProcessKnownErrorsDir runs every *.move file under knownDir through
// h and writes the resulting classified-error set to tomlPath,
// bootstrapping a fresh known_errors.toml (check --regenerate).
// Mirrors ErrorPool::process_known_errors_dir, using doublestar for
// the recursive glob the original did with the Rust `glob` crate.
func ProcessKnownErrorsDir(h Harness, cfg TestRunConfig, knownDir, tomlPath string) error {
	pattern := filepath.ToSlash(filepath.Join(knownDir, "**", "*.move"))
	files, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return fmt.Errorf("glob known errors dir: %w", err)
	}

	var collected Errors
	for _, file := range files {
		start := time.Now()
		runErr := h.Run(file, cfg)
		result := ClassifyRun(file, time.Since(start), runErr)
		if !result.Passed() {
			collected.insert(*result.Err)
		}
	}

	data, err := toml.Marshal(collected)
	if err != nil {
		return fmt.Errorf("encode known errors: %w", err)
	}
	return os.WriteFile(tomlPath, data, 0o644)
}
