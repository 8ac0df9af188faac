// Package generator implements the top-down, two-phase program
// builder: module/struct/function skeletons first (so names and
// signatures are referenceable), then fill-in of struct fields and
// function bodies, followed by post-processing and runner synthesis.
// This package contains essentially all of the invariant-preserving
// logic the rest of the module exists to support.
package generator

import (
	"fmt"
	"time"

	"github.com/oxhq/movesmith/internal/ast"
	"github.com/oxhq/movesmith/internal/codegen"
	"github.com/oxhq/movesmith/internal/env"
	"github.com/oxhq/movesmith/internal/selection"
	"github.com/oxhq/movesmith/internal/types"
)

// Config mirrors the generation section of the configuration schema:
// one RandomNumber per quantity being drawn, plus the scalar knobs
// that aren't ranged draws.
type Config struct {
	NumModules                    selection.RandomNumber
	NumFunctionsInModule          selection.RandomNumber
	NumStructsInModule            selection.RandomNumber
	NumFieldsInStruct             selection.RandomNumber
	NumFieldsOfStructType         selection.RandomNumber
	NumStmtsInFunc                selection.RandomNumber
	NumAdditionalOperationsInFunc selection.RandomNumber
	NumParamsInFunc               selection.RandomNumber
	NumStmtsInBlock               selection.RandomNumber
	NumRunsPerFunc                selection.RandomNumber
	NumInlineFuncs                selection.RandomNumber
	NumTypeParamsInFunc           selection.RandomNumber
	NumTypeParamsInStruct         selection.RandomNumber
	ExprDepth                     selection.RandomNumber
	TypeDepth                     selection.RandomNumber
	HexByteStrSize                selection.RandomNumber

	GenerationTimeoutSec   int
	AllowRecursiveCalls    bool
	ReturnAbortPossibility float64
}

// scopeCtx is a convenience pair threaded through generation: the
// current user-visible scope path and its ancestor chain, used for
// every visibility and live-variable query. fnName/fnInline/
// fnReturnType identify the function whose body is currently being
// filled (empty/zero outside of one), the basis for the call-site
// acyclicity check and the return/abort escape hatch in §4.10.
type scopeCtx struct {
	scope        string
	ancestors    []string
	fnName       string
	fnInline     bool
	fnReturnType types.Type
}

func (s scopeCtx) child(path string) scopeCtx {
	return scopeCtx{
		scope:        path,
		ancestors:    append(append([]string{}, s.ancestors...), s.scope),
		fnName:       s.fnName,
		fnInline:     s.fnInline,
		fnReturnType: s.fnReturnType,
	}
}

// MoveSmith holds all the state a single Generate call needs: the byte
// source, the environment, the identifier and type pools, and the
// compile unit under construction.
type MoveSmith struct {
	cfg Config
	src *selection.Source
	env *env.Env
	tp  *types.Pool

	unit *ast.CompileUnit

	// inlineFuncBudget is one draw from config.NumInlineFuncs, made once.
	inlineFuncBudget int

	// structDefs indexes every struct definition by name for
	// reachability checks and field lookups during the fill phase.
	structDefs map[string]*ast.StructDefinition
	// structModule records which module owns a struct, since the
	// nested-field branch is restricted to same-module candidates.
	structModule map[string]*ast.Module
	// structOrder is declaration order: selection among struct
	// candidates must not depend on Go's randomized map iteration
	// order, or the same input bytes could produce different output
	// across runs (breaking determinism).
	structOrder []string
}

// Generate is the generator's single entry point: byte stream in,
// well-typed Move source text out (or a recoverable NotEnoughData /
// deadline error, in which case the partial AST is discarded).
func Generate(cfg Config, data []byte) (string, error) {
	src := selection.NewSource(data)

	inlineBudget, err := cfg.NumInlineFuncs.Select(src)
	if err != nil {
		return "", fmt.Errorf("generate: draw inline func budget: %w", err)
	}
	fieldOfStructBudget, err := cfg.NumFieldsOfStructType.Select(src)
	if err != nil {
		return "", fmt.Errorf("generate: draw struct-field budget: %w", err)
	}

	e, err := env.New(src, cfg.ExprDepth, cfg.TypeDepth, secondsToDuration(cfg.GenerationTimeoutSec), inlineBudget, fieldOfStructBudget)
	if err != nil {
		return "", fmt.Errorf("generate: init env: %w", err)
	}

	ms := &MoveSmith{
		cfg:              cfg,
		src:              src,
		env:              e,
		tp:               types.NewPool(),
		unit:             &ast.CompileUnit{},
		inlineFuncBudget: inlineBudget,
		structDefs:       make(map[string]*ast.StructDefinition),
		structModule:     make(map[string]*ast.Module),
	}
	ms.registerPrimitiveTypes()

	numModules, err := cfg.NumModules.Select(src)
	if err != nil {
		return "", fmt.Errorf("generate: draw num_modules: %w", err)
	}
	if numModules < 1 {
		numModules = 1
	}

	for i := 0; i < numModules; i++ {
		mod, err := ms.generateModuleSkeleton()
		if err != nil {
			return "", fmt.Errorf("generate module %d skeleton: %w", i, err)
		}
		ms.unit.Modules = append(ms.unit.Modules, mod)
	}

	for _, mod := range ms.unit.Modules {
		if err := ms.fillModule(mod); err != nil {
			return "", fmt.Errorf("fill module %s: %w", mod.Name, err)
		}
	}

	if err := ms.addRunners(); err != nil {
		return "", fmt.Errorf("add runners: %w", err)
	}

	ms.postProcess()

	if !ms.tp.AllConcretizationsEmpty() {
		panic("generator: concretization stack not empty at quiescence")
	}

	return codegen.Emit(ms.unit), nil
}

func (ms *MoveSmith) registerPrimitiveTypes() {
	for _, t := range []types.Type{
		types.U8(), types.U16(), types.U32(), types.U64(), types.U128(), types.U256(),
		types.Bool(), types.Address(), types.Signer(),
	} {
		ms.tp.RegisterType(t)
	}
}

func secondsToDuration(seconds int) time.Duration {
	if seconds <= 0 {
		seconds = 30
	}
	return time.Duration(seconds) * time.Second
}
