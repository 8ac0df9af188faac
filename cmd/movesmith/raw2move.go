package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/oxhq/movesmith/internal/config"
)

var (
	raw2movePackage string
	raw2moveStdin   bool
)

var raw2moveCmd = &cobra.Command{
	Use:   "raw2move [FILE]",
	Short: "Run a raw fuzzer byte buffer through the generator and print the resulting Move source",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRaw2Move,
}

func init() {
	raw2moveCmd.Flags().StringVarP(&raw2movePackage, "package", "p", "", "package name annotation (informational; movesmith always publishes under 0xCAFE)")
	raw2moveCmd.Flags().BoolVar(&raw2moveStdin, "stdin", false, "read the raw byte buffer from stdin")
	rootCmd.AddCommand(raw2moveCmd)
}

func runRaw2Move(cmd *cobra.Command, args []string) error {
	var data []byte
	var err error

	switch {
	case raw2moveStdin:
		data, err = io.ReadAll(os.Stdin)
	case len(args) == 1:
		data, err = os.ReadFile(args[0])
	default:
		fatalf("raw2move: pass a FILE argument or --stdin")
		return nil
	}
	if err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	source, err := generateSource(cfg, data)
	if err != nil {
		return err
	}
	_, err = os.Stdout.WriteString(source)
	return err
}
