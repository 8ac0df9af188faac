// Package runner defines the harness contract (a source file plus a
// TestRunConfig goes in, a classified pass/fail result comes out) and
// the known-error pool that lets the check subcommand skip diagnostics
// it has already catalogued. Ported from the original Rust runner's
// ErrorPool/ErrorLine/TransactionalTestError machinery.
package runner

import (
	"regexp"
	"strings"
)

// ErrorLine is one canonicalized diagnostic line: enough to compare
// two runs for "the same kind of failure" without being sensitive to
// the specific local/type/module names a random program happens to
// generate.
type ErrorLine string

var canonicalizeRE = regexp.MustCompile("(local `[^`]+`|module '[^']+')|type `[^`]+`|Some\\([^)]+\\)")

// fromLogLine canonicalizes a single diagnostic line the same way the
// original's ErrorLine::from_log_line does: special-case the two most
// common acquires/inference messages, then strip any local/type/module
// name or Some(...) payload so two runs that fail for the same reason
// on different generated names still compare equal.
func fromLogLine(line string) ErrorLine {
	if strings.Contains(line, "cannot extract resource") || strings.Contains(line, "function acquires global") {
		return "...cannot acquire..."
	}
	if strings.Contains(line, "cannot infer type") || strings.Contains(line, "unable to infer instantiation of type") {
		return "...cannot infer type..."
	}
	replaced := canonicalizeRE.ReplaceAllStringFunc(line, func(m string) string {
		switch {
		case strings.HasPrefix(m, "local"):
			return "variable"
		case strings.HasPrefix(m, "type"):
			return "type"
		case strings.HasPrefix(m, "module"):
			return "module"
		case strings.HasPrefix(m, "Some"):
			return "Some(value)"
		default:
			return m
		}
	})
	return ErrorLine(replaced)
}

func isErrorLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "Error: compilation errors:":
		return false
	case strings.HasPrefix(trimmed, "error with experiment:"):
		return false
	case strings.HasPrefix(trimmed, "Expected errors differ from actual errors:"):
		return false
	}
	return strings.Contains(line, "error") || strings.Contains(line, "Error") ||
		strings.Contains(line, "ERROR") || strings.Contains(line, "bug:") || strings.Contains(line, "panic")
}

func isHashLine(line string) bool {
	return strings.Contains(line, "acc:")
}

func fromHashLine(line string) ErrorLine {
	parts := strings.Split(line, "acc:")
	return ErrorLine(strings.TrimSpace(parts[len(parts)-1]))
}
