package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/oxhq/movesmith/internal/runner"
)

// CommandHarness shells out to an external Move transactional-test
// runner binary. The compiler/VM under test is explicitly out of
// scope (spec.md §2 item 9: "the compiler/VM under test... whose only
// contract is 'given a source file, return a structured result'") —
// this is that contract's thinnest possible satisfaction, not a
// reimplementation of the Move toolchain.
type CommandHarness struct {
	// Bin is the executable to invoke, e.g. an aptos-move-transactional-
	// test-runner build. Looked up on PATH if not absolute.
	Bin string
}

func (h CommandHarness) Run(sourcePath string, cfg runner.TestRunConfig) error {
	if h.Bin == "" {
		return fmt.Errorf("harness: no test-runner binary configured (set MOVESMITH_HARNESS_BIN)")
	}
	args := []string{sourcePath}
	switch cfg.Kind {
	case runner.V2Only:
		args = append(args, "--language-version", string(cfg.LanguageVersion))
	case runner.ComparisonV1V2:
		args = append(args, "--compare-v1-v2")
	}
	cmd := exec.Command(h.Bin, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s", out)
	}
	return nil
}

// defaultHarness resolves the configured binary from the environment,
// mirroring the teacher's env-var-with-default config pattern.
func defaultHarness() CommandHarness {
	bin := os.Getenv("MOVESMITH_HARNESS_BIN")
	return CommandHarness{Bin: bin}
}
