package runner

import (
	"sort"
	"strings"
	"time"
)

// LanguageVersion names the Move compiler language edition a V2-only
// or comparison run targets.
type LanguageVersion string

const LanguageVersionV2_0 LanguageVersion = "2.0"

// ConfigKind tags which variant of TestRunConfig a run uses.
type ConfigKind int

const (
	V1Only ConfigKind = iota
	V2Only
	ComparisonV1V2
)

// TestRunConfig mirrors the harness contract's tagged union: a V1-only
// run, a V2-only run pinned to a language version and experiment set,
// or a comparison run that exercises both compilers against the same
// source and diffs their outputs.
type TestRunConfig struct {
	Kind            ConfigKind
	LanguageVersion LanguageVersion
	V2Experiments   map[string]bool
}

// ClassifiedError is a diagnosed compiler disagreement: the raw log
// plus the canonicalized, order-independent V1/V2 error-line sets used
// for known-error deduplication. Two ClassifiedErrors compare equal
// when their canonicalized line sets match, regardless of full_log
// text — mirroring the original's PartialEq override.
type ClassifiedError struct {
	FullLog  string      `toml:"-"`
	HashDiff []ErrorLine `toml:"-"`
	V1Errors []ErrorLine `toml:"v1_errors"`
	V2Errors []ErrorLine `toml:"v2_errors"`
}

// Equal compares two classified errors by their canonicalized line
// sets only, matching the original's hand-rolled PartialEq.
func (e ClassifiedError) Equal(other ClassifiedError) bool {
	return sortedEqual(e.V1Errors, other.V1Errors) && sortedEqual(e.V2Errors, other.V2Errors)
}

func sortedEqual(a, b []ErrorLine) bool {
	if len(a) != len(b) {
		return false
	}
	as, bs := sortedCopy(a), sortedCopy(b)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func sortedCopy(lines []ErrorLine) []ErrorLine {
	out := append([]ErrorLine(nil), lines...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// String renders the same "V1 errors:\n...\nV2 errors:\n..." shape as
// the original's Display impl.
func (e ClassifiedError) String() string {
	var b strings.Builder
	b.WriteString("V1 errors:\n")
	for _, l := range sortedCopy(e.V1Errors) {
		b.WriteString(string(l))
		b.WriteByte('\n')
	}
	b.WriteString("V2 errors:\n")
	for _, l := range sortedCopy(e.V2Errors) {
		b.WriteString(string(l))
		b.WriteByte('\n')
	}
	return b.String()
}

// Stats records the coarse per-run counters the original carries
// alongside a classified result. ClassifyRun sets the two compiler-error
// flags; the two runtime-error counters are never set and stay zero.
type Stats struct {
	V1CompilerError bool
	V2CompilerError bool
	V1RuntimeErrors int
	V2RuntimeErrors int
}

// Result is one harness invocation's outcome: either "no diff found"
// (Err is nil) or a ClassifiedError describing the compiler
// disagreement, plus timing and the description that names which
// corpus file or experiment set produced it.
type Result struct {
	Description string
	NoDiffLog   string
	Err         *ClassifiedError
	Stats       Stats
	Duration    time.Duration
}

// Passed reports whether this invocation found no classifiable
// disagreement (matching should_skip_result's "result is Ok" branch).
func (r Result) Passed() bool { return r.Err == nil }

// Log returns the raw diagnostic text backing this result, whichever
// branch produced it.
func (r Result) Log() string {
	if r.Err != nil {
		return r.Err.FullLog
	}
	return r.NoDiffLog
}

const sameResultsMarker = "Compiler v2 delivered same results"

// ClassifyRun builds a Result from one harness invocation's raw output,
// mirroring TransactionalResult::from_run_result: a nil runErr means
// the run found no diff; a non-nil runErr carries the raw log text to
// split into V1/V2 sections (everything before the "V2 Result:" marker
// line is V1's log) and classify.
func ClassifyRun(description string, duration time.Duration, runErr error) Result {
	if runErr == nil {
		return Result{Description: description, NoDiffLog: "No diff found", Duration: duration}
	}

	msg := runErr.Error()
	if strings.Contains(msg, sameResultsMarker) {
		return Result{Description: description, NoDiffLog: msg, Duration: duration}
	}

	var v1Log, v2Log []string
	startV2 := false
	for _, line := range strings.Split(msg, "\n") {
		line = strings.TrimSpace(line)
		if line == "V2 Result:" {
			startV2 = true
		}
		if startV2 {
			v2Log = append(v2Log, line)
		} else {
			v1Log = append(v1Log, line)
		}
	}

	classified := classifyLog(msg, v1Log, v2Log)
	if classified == nil {
		return Result{Description: description, NoDiffLog: msg, Duration: duration}
	}
	return Result{
		Description: description,
		Err:         classified,
		Stats:       Stats{V1CompilerError: len(classified.V1Errors) > 0, V2CompilerError: len(classified.V2Errors) > 0},
		Duration:    duration,
	}
}

// classifyLog mirrors TransactionalTestError::from_log: scan both logs
// for error lines (canonicalized) and an "acc:" hash line; when both
// sides carry the same hash, it is folded into both error sets as the
// HashDiff convergence signal instead of being reported as two
// independent, unrelated diagnostics.
func classifyLog(fullLog string, v1Log, v2Log []string) *ClassifiedError {
	var v1Errors, v2Errors []ErrorLine
	var v1Hash, v2Hash ErrorLine

	for _, line := range v1Log {
		if isErrorLine(line) {
			v1Errors = appendUnique(v1Errors, fromLogLine(line))
		}
		if isHashLine(line) {
			v1Hash = fromHashLine(line)
		}
	}
	for _, line := range v2Log {
		if isErrorLine(line) {
			v2Errors = appendUnique(v2Errors, fromLogLine(line))
		}
		if isHashLine(line) {
			v2Hash = fromHashLine(line)
		}
	}

	var hashDiff []ErrorLine
	if v1Hash != "" && v2Hash != "" && v1Hash == v2Hash {
		v1Errors = appendUnique(v1Errors, v1Hash)
		v2Errors = appendUnique(v2Errors, v2Hash)
		hashDiff = append(hashDiff, v1Hash, v2Hash)
	}

	if len(v1Errors) == 0 && len(v2Errors) == 0 {
		return nil
	}
	return &ClassifiedError{FullLog: fullLog, HashDiff: hashDiff, V1Errors: v1Errors, V2Errors: v2Errors}
}

func appendUnique(set []ErrorLine, l ErrorLine) []ErrorLine {
	for _, existing := range set {
		if existing == l {
			return set
		}
	}
	return append(set, l)
}
