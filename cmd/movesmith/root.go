// Command movesmith is the CLI surface over the generator/runner
// packages: generate corpus files, convert raw fuzzer input to Move
// source, run or compile a single file through the harness, and sweep
// a corpus for catalogued compiler disagreements. Rooted with cobra
// the way SPEC_FULL.md's ambient-stack section directs, one
// cobra.Command per subcommand with RunE handlers and pflag-bound
// flags set up in each command's init.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/oxhq/movesmith/internal/telemetry"
)

var (
	configPath string
	debugLog   bool
)

var rootCmd = &cobra.Command{
	Use:   "movesmith",
	Short: "Structure-aware random Move program generator for differential compiler testing",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.Default.SetDebug(debugLog)
	},
}

func init() {
	_ = godotenv.Load()
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML file overriding the embedded defaults")
	rootCmd.PersistentFlags().BoolVar(&debugLog, "debug", false, "enable debug-level logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		telemetry.Default.Errorf("%v", err)
		os.Exit(1)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", fmt.Sprintf(format, args...))
	os.Exit(1)
}
