package generator

import (
	"fmt"

	"github.com/oxhq/movesmith/internal/ast"
	"github.com/oxhq/movesmith/internal/ident"
	"github.com/oxhq/movesmith/internal/types"
)

// generateModuleSkeleton allocates a module name under the root scope,
// generates every struct skeleton (names and abilities only, plus a
// mandatory all-abilities sentinel so a nonempty candidate pool is
// always available), and every function signature with no body yet.
func (ms *MoveSmith) generateModuleSkeleton() (*ast.Module, error) {
	modID, modScope := ms.env.Idents.Allocate(ident.KindModule, ident.Root, true, false, "")
	root := scopeCtx{scope: modScope, ancestors: []string{ident.Root}}

	mod := &ast.Module{
		Name: modID.Name,
		Uses: []ast.Use{{Path: "0x1::vector"}},
	}
	addrConst, _ := ms.env.Idents.Allocate(ident.KindConstant, modScope, false, false, "ADDR")
	mod.Constants = append(mod.Constants, &ast.Constant{
		Name: addrConst.Name, Type: types.Address(), Value: "@0xCAFE",
	})

	numStructs, err := ms.cfg.NumStructsInModule.Select(ms.src)
	if err != nil {
		return nil, err
	}
	for i := 0; i < numStructs; i++ {
		sd, err := ms.generateStructSkeleton(root)
		if err != nil {
			return nil, fmt.Errorf("struct %d: %w", i, err)
		}
		mod.Structs = append(mod.Structs, sd)
		ms.structDefs[sd.Name] = sd
		ms.structModule[sd.Name] = mod
		ms.structOrder = append(ms.structOrder, sd.Name)
	}
	sentinel := ms.allAbilitiesSentinel(root)
	mod.Structs = append(mod.Structs, sentinel)
	ms.structDefs[sentinel.Name] = sentinel
	ms.structModule[sentinel.Name] = mod
	ms.structOrder = append(ms.structOrder, sentinel.Name)

	numFuncs, err := ms.cfg.NumFunctionsInModule.Select(ms.src)
	if err != nil {
		return nil, err
	}
	if numFuncs < 1 {
		numFuncs = 1
	}
	for i := 0; i < numFuncs; i++ {
		fn, err := ms.generateFunctionSkeleton(root, mod)
		if err != nil {
			return nil, fmt.Errorf("function %d: %w", i, err)
		}
		mod.Functions = append(mod.Functions, fn)
	}

	return mod, nil
}

// allAbilitiesSentinel is a synthetic struct with every ability and no
// fields, guaranteeing a candidate exists whenever generation needs
// "some type with these abilities" and nothing else qualifies yet.
func (ms *MoveSmith) allAbilitiesSentinel(scope scopeCtx) *ast.StructDefinition {
	id, _ := ms.env.Idents.Allocate(ident.KindStruct, scope.scope, false, false, "")
	sd := &ast.StructDefinition{
		Name:      id.Name,
		Abilities: types.All(),
	}
	ms.tp.RegisterStructAbilities(sd.Name, sd.Abilities)
	ms.tp.RegisterType(types.StructRef(sd.Name, nil))
	return sd
}

// generateStructSkeleton allocates a struct name, draws type
// parameters (required {copy,drop}, excluded {key}: the global
// no-storage-typed-type-parameters policy), draws the struct's own
// ability subset of {store,key} (current policy forces {copy,drop}
// present), and registers the struct type. Fields are filled later.
func (ms *MoveSmith) generateStructSkeleton(scope scopeCtx) (*ast.StructDefinition, error) {
	id, structScope := ms.env.Idents.Allocate(ident.KindStruct, scope.scope, true, false, "")

	numTP, err := ms.cfg.NumTypeParamsInStruct.Select(ms.src)
	if err != nil {
		return nil, err
	}
	var typeParams []types.Type
	for i := 0; i < numTP; i++ {
		tpID, _ := ms.env.Idents.Allocate(ident.KindTypeParameter, structScope, false, false, "")
		tp := types.TypeParameter(tpID.Name, types.NewAbilitySet(types.AbilityCopy, types.AbilityDrop), false)
		typeParams = append(typeParams, tp)
	}

	abilities := types.NewAbilitySet(types.AbilityCopy, types.AbilityDrop)
	if hasStore, err := ms.src.Bool(); err == nil && hasStore {
		abilities[types.AbilityStore] = struct{}{}
		if hasKey, err := ms.src.Bool(); err == nil && hasKey {
			abilities[types.AbilityKey] = struct{}{}
		}
	} else if err != nil {
		return nil, err
	}

	sd := &ast.StructDefinition{
		Name:           id.Name,
		Abilities:      abilities,
		TypeParameters: typeParams,
	}
	ms.tp.RegisterStructAbilities(sd.Name, abilities)

	tpNames := make([]string, len(typeParams))
	for i, tp := range typeParams {
		tpNames[i] = tp.Name
	}
	ms.tp.RegisterType(types.StructRef(sd.Name, tpNames))

	return sd, nil
}

// generateFunctionSkeleton allocates a function name and a full
// signature, leaving the body nil until the fill phase.
func (ms *MoveSmith) generateFunctionSkeleton(scope scopeCtx, mod *ast.Module) (*ast.Function, error) {
	id, funcScope := ms.env.Idents.Allocate(ident.KindFunction, scope.scope, true, false, "")
	fnScope := scope.child(funcScope)

	sig, err := ms.generateFunctionSignature(fnScope, id.Name)
	if err != nil {
		return nil, err
	}

	inline := false
	if !ms.env.ReachedInlineFunctionLimit() {
		if draw, err := ms.src.Bool(); err != nil {
			return nil, err
		} else if draw {
			inline = true
			ms.env.IncInlineFuncCounter()
		}
	}
	sig.Inline = inline

	return &ast.Function{
		Visibility: ast.VisibilityPublic,
		Signature:  sig,
	}, nil
}

// generateFunctionSignature draws type parameters first (so they can
// appear in parameter/return types), a mandatory leading `sref:
// &signer` parameter, the user parameter list, and an optional return
// type — with an invariant fix-up appending a fresh parameter when the
// return type is a type parameter not already bound by one.
func (ms *MoveSmith) generateFunctionSignature(scope scopeCtx, fnName string) (ast.FunctionSignature, error) {
	sig := ast.FunctionSignature{Name: fnName}

	numTP, err := ms.cfg.NumTypeParamsInFunc.Select(ms.src)
	if err != nil {
		return sig, err
	}
	for i := 0; i < numTP; i++ {
		tpID, _ := ms.env.Idents.Allocate(ident.KindTypeParameter, scope.scope, false, false, "")
		tp := types.TypeParameter(tpID.Name, types.NewAbilitySet(types.AbilityCopy, types.AbilityDrop), false)
		sig.TypeParameters = append(sig.TypeParameters, tp)
	}

	sig.Params = append(sig.Params, ast.Param{Name: types.SignerVarName, Type: types.GetSignerRefVar()})

	numParams, err := ms.cfg.NumParamsInFunc.Select(ms.src)
	if err != nil {
		return sig, err
	}
	for i := 0; i < numParams; i++ {
		pt, err := ms.getRandomType(scope, typeDrawOptions{
			allowBool: true, allowStruct: false, allowTypeParam: true,
			onlyInstantiatable: false, allowReference: true,
		}, sig.TypeParameters)
		if err != nil {
			return sig, err
		}
		pid, _ := ms.env.Idents.Allocate(ident.KindVariable, scope.scope, false, false, "")
		sig.Params = append(sig.Params, ast.Param{Name: pid.Name, Type: pt})
		ms.tp.InsertMapping(pid, pt)
	}

	hasReturn, err := ms.src.Ratio(80, 100)
	if err != nil {
		return sig, err
	}
	if hasReturn {
		rt, err := ms.getRandomType(scope, typeDrawOptions{
			allowBool: true, allowStruct: false, allowTypeParam: true,
			onlyInstantiatable: true, allowReference: true,
		}, sig.TypeParameters)
		if err != nil {
			return sig, err
		}
		sig.ReturnType = &rt

		if referent := dereferenceTP(rt); referent != nil && !hasParamOfExactType(sig.Params, *referent) {
			fresh, _ := ms.env.Idents.Allocate(ident.KindVariable, scope.scope, false, false, "")
			sig.Params = append(sig.Params, ast.Param{Name: fresh.Name, Type: *referent})
			ms.tp.InsertMapping(fresh, *referent)
		}
	}

	return sig, nil
}

// dereferenceTP returns t itself (or its referent, if t is a
// reference) when that type is a type parameter; nil otherwise. Used
// by the return-instantiability fix-up (invariant I3 / property P5).
func dereferenceTP(t types.Type) *types.Type {
	switch t.Kind {
	case types.KTypeParameter:
		return &t
	case types.KRef, types.KMutRef:
		if t.Inner != nil && t.Inner.Kind == types.KTypeParameter {
			return t.Inner
		}
	}
	return nil
}

func hasParamOfExactType(params []ast.Param, t types.Type) bool {
	for _, p := range params {
		if p.Type.Equal(t) {
			return true
		}
	}
	return false
}
