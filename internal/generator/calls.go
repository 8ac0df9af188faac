package generator

import (
	"strconv"
	"strings"

	"github.com/oxhq/movesmith/internal/ast"
	"github.com/oxhq/movesmith/internal/ident"
	"github.com/oxhq/movesmith/internal/types"
)

// callableFunctions lists every function in the unit (across all
// modules, since every module shares the one harness address) whose
// declared return type matches want, is visible from the caller's own
// scope, and — unless allow_recursive_calls is set — sits strictly
// later in declaration order than the caller, so the call graph stays
// a DAG and no function can reach itself through its own body.
func (ms *MoveSmith) callableFunctions(want types.Type, scope scopeCtx) []*ast.Function {
	callerSuffix, hasCaller := functionSuffix(scope.fnName)

	var out []*ast.Function
	for _, mod := range ms.unit.Modules {
		for _, fn := range mod.Functions {
			if fn.IsRunner || fn.Signature.ReturnType == nil {
				continue
			}
			if !fn.Signature.ReturnType.Equal(want) {
				continue
			}
			if fn.Signature.Name == scope.fnName && !ms.cfg.AllowRecursiveCalls {
				continue
			}
			id := ident.Identifier{Name: fn.Signature.Name, Kind: ident.KindFunction}
			if !ms.env.Idents.IsIDInScope(id, scope.scope) {
				continue
			}
			if !ms.cfg.AllowRecursiveCalls && hasCaller {
				calleeSuffix, ok := functionSuffix(fn.Signature.Name)
				if !ok || calleeSuffix <= callerSuffix {
					continue
				}
			}
			out = append(out, fn)
		}
	}
	return out
}

// functionSuffix extracts the numeric counter ident.Pool encodes into
// every generated function name ("function0", "function1", ...): the
// basis for the declaration-order acyclicity check above.
func functionSuffix(name string) (int, bool) {
	const prefix = "function"
	if !strings.HasPrefix(name, prefix) {
		return 0, false
	}
	n, err := strconv.Atoi(name[len(prefix):])
	if err != nil {
		return 0, false
	}
	return n, true
}

// tryGenerateFunctionCall picks a callable function returning want,
// concretizes its type parameters for the duration of argument
// generation (I4), and recursively builds each argument.
func (ms *MoveSmith) tryGenerateFunctionCall(want types.Type, scope scopeCtx) (ast.Expression, bool, error) {
	candidates := ms.callableFunctions(want, scope)
	if len(candidates) == 0 {
		return nil, false, nil
	}
	idx, err := ms.src.BoundedInt(0, len(candidates)-1)
	if err != nil {
		return nil, false, err
	}
	fn := candidates[idx]

	var typeArgs []types.Type
	var releases []func()
	defer func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}()

	for _, tp := range fn.Signature.TypeParameters {
		concrete, release, ok := ms.concretizeTypeParameter(tp, scope)
		if !ok {
			return nil, false, nil
		}
		releases = append(releases, release)
		typeArgs = append(typeArgs, concrete)
	}

	mapping := map[string]types.Type{}
	for i, tp := range fn.Signature.TypeParameters {
		if i < len(typeArgs) {
			mapping[tp.Name] = typeArgs[i]
		}
	}

	var args []ast.Expression
	for _, p := range fn.Signature.Params {
		if p.Name == types.SignerVarName {
			args = append(args, ast.VariableAccess{Name: types.SignerVarName, Type: types.Ref(types.Signer())})
			continue
		}
		pt := substituteTypeParams(p.Type, mapping)
		v, err := ms.generateExpressionOfType(pt, scope)
		if err != nil {
			return nil, false, err
		}
		args = append(args, v)
	}

	return ast.FunctionCall{Name: fn.Signature.Name, TypeArgs: typeArgs, Args: args, Type: want}, true, nil
}
