// Package config loads movesmith's configuration: an embedded default
// TOML document (mirroring the original Rust config.rs's
// include_str!) overridable by a user-supplied TOML file named with the
// --config flag; no CLI flag overrides individual values (the teacher
// layers env-then-flags in internal/config/config.go and
// internal/config/cli.go).
package config

import (
	_ "embed"
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/oxhq/movesmith/internal/generator"
	"github.com/oxhq/movesmith/internal/selection"
)

//go:embed movesmith.default.toml
var defaultTOML []byte

// GenerationConfig mirrors spec §6.1's generation section directly in
// terms of generator.Config's own field types: selection.RandomNumber
// already carries `toml:"min/target/max"` tags, so no separate
// TOML-facing shape is needed.
type GenerationConfig struct {
	NumModules                    selection.RandomNumber `toml:"num_modules"`
	NumFunctionsInModule          selection.RandomNumber `toml:"num_functions_in_module"`
	NumStructsInModule            selection.RandomNumber `toml:"num_structs_in_module"`
	NumFieldsInStruct             selection.RandomNumber `toml:"num_fields_in_struct"`
	NumFieldsOfStructType         selection.RandomNumber `toml:"num_fields_of_struct_type"`
	NumStmtsInFunc                selection.RandomNumber `toml:"num_stmts_in_func"`
	NumAdditionalOperationsInFunc selection.RandomNumber `toml:"num_additional_operations_in_func"`
	NumParamsInFunc               selection.RandomNumber `toml:"num_params_in_func"`
	NumStmtsInBlock               selection.RandomNumber `toml:"num_stmts_in_block"`
	NumCallsInScript              selection.RandomNumber `toml:"num_calls_in_script"`
	NumRunsPerFunc                selection.RandomNumber `toml:"num_runs_per_func"`
	NumInlineFuncs                selection.RandomNumber `toml:"num_inline_funcs"`
	NumTypeParamsInFunc           selection.RandomNumber `toml:"num_type_params_in_func"`
	NumTypeParamsInStruct         selection.RandomNumber `toml:"num_type_params_in_struct"`
	ExprDepth                     selection.RandomNumber `toml:"expr_depth"`
	TypeDepth                     selection.RandomNumber `toml:"type_depth"`
	HexByteStrSize                selection.RandomNumber `toml:"hex_byte_str_size"`

	GenerationTimeoutSec   int     `toml:"generation_timeout_sec"`
	AllowRecursiveCalls    bool    `toml:"allow_recursive_calls"`
	ReturnAbortPossibility float64 `toml:"return_abort_possibility"`
}

// CompilerSetting names one named group of V2 compiler experiments to
// enable/disable, matching fuzz.compiler_settings's map-of-struct shape.
type CompilerSetting struct {
	Enable  []string `toml:"enable"`
	Disable []string `toml:"disable"`
}

// FuzzConfig mirrors spec §6.1's fuzz section: the runner/ErrorPool
// inputs that the distilled spec.md defines but leaves unconsumed, and
// which internal/runner.ErrorPool is the consumer of.
type FuzzConfig struct {
	IgnoreStrs              []string                    `toml:"ignore_strs"`
	KnownErrorDir           string                       `toml:"known_error_dir"`
	CompilerSettings        map[string]CompilerSetting   `toml:"compiler_settings"`
	Runs                    []string                     `toml:"runs"`
	TransactionalTimeoutSec int                          `toml:"transactional_timeout_sec"`
}

// Config is the full, decoded configuration document.
type Config struct {
	Generation GenerationConfig `toml:"generation"`
	Fuzz       FuzzConfig       `toml:"fuzz"`
}

// Load decodes the embedded defaults, then (if overridePath is
// nonempty) overlays a user-supplied TOML file on top of them —
// table/slice keys present in the override replace the corresponding
// default ones, anything absent keeps its default.
func Load(overridePath string) (*Config, error) {
	var cfg Config
	if _, err := toml.Decode(string(defaultTOML), &cfg); err != nil {
		return nil, fmt.Errorf("config: decode embedded defaults: %w", err)
	}
	if overridePath == "" {
		return &cfg, nil
	}
	if _, err := toml.DecodeFile(overridePath, &cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", overridePath, err)
	}
	return &cfg, nil
}

// ToGeneratorConfig converts the TOML-facing schema into
// internal/generator.Config. NumCallsInScript is decoded but not
// forwarded: the generator has no separate "script" notion distinct
// from a module's runner wrappers (see DESIGN.md).
func (c *Config) ToGeneratorConfig() generator.Config {
	g := c.Generation
	return generator.Config{
		NumModules:                    g.NumModules,
		NumFunctionsInModule:          g.NumFunctionsInModule,
		NumStructsInModule:            g.NumStructsInModule,
		NumFieldsInStruct:             g.NumFieldsInStruct,
		NumFieldsOfStructType:         g.NumFieldsOfStructType,
		NumStmtsInFunc:                g.NumStmtsInFunc,
		NumAdditionalOperationsInFunc: g.NumAdditionalOperationsInFunc,
		NumParamsInFunc:               g.NumParamsInFunc,
		NumStmtsInBlock:               g.NumStmtsInBlock,
		NumRunsPerFunc:                g.NumRunsPerFunc,
		NumInlineFuncs:                g.NumInlineFuncs,
		NumTypeParamsInFunc:           g.NumTypeParamsInFunc,
		NumTypeParamsInStruct:         g.NumTypeParamsInStruct,
		ExprDepth:                     g.ExprDepth,
		TypeDepth:                     g.TypeDepth,
		HexByteStrSize:                g.HexByteStrSize,
		GenerationTimeoutSec:          g.GenerationTimeoutSec,
		AllowRecursiveCalls:           g.AllowRecursiveCalls,
		ReturnAbortPossibility:        g.ReturnAbortPossibility,
	}
}
