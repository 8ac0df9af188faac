package generator

import (
	"fmt"

	"github.com/oxhq/movesmith/internal/ast"
	"github.com/oxhq/movesmith/internal/ident"
	"github.com/oxhq/movesmith/internal/types"
)

// addRunners generates, for every user-declared function, num_runs_per_func
// zero-type-parameter wrapper functions that each concretize the
// target's type parameters once and invoke it with generated ground
// arguments — the harness only ever needs a `//# run` target with no
// type arguments of its own to supply.
func (ms *MoveSmith) addRunners() error {
	for _, mod := range ms.unit.Modules {
		targets := append([]*ast.Function{}, mod.Functions...)
		for _, fn := range targets {
			n, err := ms.cfg.NumRunsPerFunc.Select(ms.src)
			if err != nil {
				return err
			}
			for i := 0; i < n; i++ {
				runner, err := ms.generateRunner(mod, fn)
				if err != nil {
					return fmt.Errorf("runner %d for %s: %w", i, fn.Signature.Name, err)
				}
				mod.Functions = append(mod.Functions, runner)
				ms.unit.RunTargets = append(ms.unit.RunTargets, ms.env.Idents.FlattenAccess(ident.Identifier{Name: runner.Signature.Name, Kind: ident.KindFunction}))
			}
		}
	}
	return nil
}

// generateRunner builds one wrapper: a public, non-inline, zero-
// type-parameter function taking only the harness signer, whose body
// concretizes target's type parameters and calls it with freshly
// generated ground arguments. Expression depth is pinned to 0 for the
// duration so argument generation stays to literals and in-scope
// references rather than building out a second expression tree.
func (ms *MoveSmith) generateRunner(mod *ast.Module, target *ast.Function) (*ast.Function, error) {
	id, bodyScope := ms.env.Idents.Allocate(ident.KindFunction, mod.Name, true, false, "")
	scope := scopeCtx{
		scope:        bodyScope,
		ancestors:    []string{ident.Root, mod.Name},
		fnName:       id.Name,
		fnReturnType: types.Tuple(),
	}

	sig := ast.FunctionSignature{
		Name:   id.Name,
		Params: []ast.Param{{Name: types.SignerVarName, Type: types.Ref(types.Signer())}},
	}
	signerID := ident.Identifier{Name: types.SignerVarName, Kind: ident.KindVariable}
	ms.env.Live.MarkAlive(bodyScope, signerID)

	ms.env.ExprDepth.PushOverride(0)
	defer ms.env.ExprDepth.PopOverride()

	var typeArgs []types.Type
	var releases []func()
	defer func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}()
	for _, tp := range target.Signature.TypeParameters {
		concrete, release, ok := ms.concretizeTypeParameter(tp, scope)
		if !ok {
			return nil, fmt.Errorf("cannot concretize type parameter %s", tp.Name)
		}
		releases = append(releases, release)
		typeArgs = append(typeArgs, concrete)
	}

	mapping := map[string]types.Type{}
	for i, tp := range target.Signature.TypeParameters {
		if i < len(typeArgs) {
			mapping[tp.Name] = typeArgs[i]
		}
	}

	var args []ast.Expression
	for _, p := range target.Signature.Params {
		if p.Name == types.SignerVarName {
			args = append(args, ast.VariableAccess{Name: types.SignerVarName, Type: types.Ref(types.Signer())})
			continue
		}
		pt := substituteTypeParams(p.Type, mapping)
		v, err := ms.generateExpressionOfType(pt, scope)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	call := ast.FunctionCall{Name: target.Signature.Name, TypeArgs: typeArgs, Args: args, Type: types.Tuple()}
	body := &ast.Block{Name: bodyScope, Statements: []ast.Statement{ast.ExprStatement{Value: call}}}

	return &ast.Function{
		Visibility: ast.VisibilityPublic,
		Signature:  sig,
		Body:       body,
		IsRunner:   true,
	}, nil
}
