package generator

import (
	"github.com/oxhq/movesmith/internal/ast"
	"github.com/oxhq/movesmith/internal/types"
)

// concretizeStructType resolves every one of a generic struct
// reference's type parameters (looked up by name in structDefs, since
// the bare Type carries only the parameter names, not their ability
// bounds) to ground candidates, per I4/the struct-field concretization
// rule applied at expression-generation time.
func (ms *MoveSmith) concretizeStructType(t types.Type, scope scopeCtx) (types.Type, bool) {
	return ms.concretizeStructTypeAt(t, scope, 0)
}

func (ms *MoveSmith) concretizeStructTypeAt(t types.Type, scope scopeCtx, depth int) (types.Type, bool) {
	sd, ok := ms.structDefs[t.Name]
	if !ok || len(sd.TypeParameters) == 0 {
		return t, true
	}
	args := make([]types.Type, len(sd.TypeParameters))
	for i, tp := range sd.TypeParameters {
		concrete, ok := ms.concretizeTypeAt(tp, scope, types.None(), nil, depth)
		if !ok {
			return types.Type{}, false
		}
		args[i] = concrete
	}
	return types.StructConcrete(t.Name, args), true
}

// substituteTypeParams replaces every type-parameter leaf named in
// mapping with its bound concrete type, recursing through the
// composite type constructors.
func substituteTypeParams(t types.Type, mapping map[string]types.Type) types.Type {
	switch t.Kind {
	case types.KTypeParameter:
		if c, ok := mapping[t.Name]; ok {
			return c
		}
		return t
	case types.KVector:
		inner := substituteTypeParams(*t.Inner, mapping)
		return types.Vector(inner)
	case types.KRef:
		inner := substituteTypeParams(*t.Inner, mapping)
		return types.Ref(inner)
	case types.KMutRef:
		inner := substituteTypeParams(*t.Inner, mapping)
		return types.MutRef(inner)
	case types.KTuple:
		elems := make([]types.Type, len(t.Tuple))
		for i, e := range t.Tuple {
			elems[i] = substituteTypeParams(e, mapping)
		}
		return types.Tuple(elems...)
	case types.KStructConcrete:
		args := make([]types.Type, len(t.TypeArgs))
		for i, a := range t.TypeArgs {
			args[i] = substituteTypeParams(a, mapping)
		}
		return types.StructConcrete(t.Name, args)
	default:
		return t
	}
}

// generateStructValue builds a struct-pack expression: every declared
// field gets a recursively generated value of its (type-parameter
// substituted) field type.
func (ms *MoveSmith) generateStructValue(t types.Type, scope scopeCtx) (ast.Expression, error) {
	name := structNameOf(t)
	sd, ok := ms.structDefs[name]
	if !ok {
		return ms.generateLeaf(types.Bool(), scope)
	}

	mapping := map[string]types.Type{}
	if t.Kind == types.KStructConcrete {
		for i, tp := range sd.TypeParameters {
			if i < len(t.TypeArgs) {
				mapping[tp.Name] = t.TypeArgs[i]
			}
		}
	}

	var fields []ast.FieldInit
	for _, f := range sd.Fields {
		ft := substituteTypeParams(f.Type, mapping)
		v, err := ms.generateExpressionOfType(ft, scope)
		if err != nil {
			return nil, err
		}
		fields = append(fields, ast.FieldInit{Name: f.Name, Value: v})
	}

	var typeArgs []types.Type
	if t.Kind == types.KStructConcrete {
		typeArgs = t.TypeArgs
	}
	return ast.StructPack{Name: name, TypeArgs: typeArgs, Fields: fields, Type: t}, nil
}

func addrLeaf() ast.Expression {
	return ast.VariableAccess{Name: types.AddressVarName, Type: types.Address()}
}

// tryBorrowGlobal builds a borrow_global[_mut] expression when t's
// referent is a key-ability struct; used as the reference-production
// fallback when no live variable of the referent type exists.
func (ms *MoveSmith) tryBorrowGlobal(t types.Type) (ast.Expression, bool, error) {
	inner := *t.Inner
	name := structNameOf(inner)
	if name == "" {
		return nil, false, nil
	}
	sd, ok := ms.structDefs[name]
	if !ok || !sd.Abilities.Has(types.AbilityKey) || len(sd.TypeParameters) > 0 {
		return nil, false, nil
	}

	kind := ast.ResBorrowGlobal
	if t.Kind == types.KMutRef {
		kind = ast.ResBorrowGlobalMut
	}
	return ast.ResourceOperation{Kind: kind, StructType: inner, Address: addrLeaf(), ResultType: t}, true, nil
}

// keyAbilityStructs lists every non-generic struct definition carrying
// the key ability: candidates for any of the five global-storage
// operations. Generic resources are excluded to keep type-argument
// inference out of the resource-operation path.
func (ms *MoveSmith) keyAbilityStructs() []*ast.StructDefinition {
	var out []*ast.StructDefinition
	for _, name := range ms.structOrder {
		sd := ms.structDefs[name]
		if sd.Abilities.Has(types.AbilityKey) && len(sd.TypeParameters) == 0 {
			out = append(out, sd)
		}
	}
	return out
}

// tryGenerateResourceOperation emits one of move_to/move_from/
// borrow_global[_mut]/exists over a randomly chosen key-ability
// struct, reporting false when no such struct exists yet.
func (ms *MoveSmith) tryGenerateResourceOperation(scope scopeCtx) (ast.Expression, bool, error) {
	candidates := ms.keyAbilityStructs()
	if len(candidates) == 0 {
		return nil, false, nil
	}
	idx, err := ms.src.BoundedInt(0, len(candidates)-1)
	if err != nil {
		return nil, false, err
	}
	sd := candidates[idx]
	structType := types.StructRef(sd.Name, nil)

	kindIdx, err := ms.src.BoundedInt(0, 4)
	if err != nil {
		return nil, false, err
	}

	switch kindIdx {
	case 0: // move_to
		value, err := ms.generateStructValue(structType, scope)
		if err != nil {
			return nil, false, err
		}
		signerRef := ast.VariableAccess{Name: types.SignerVarName, Type: types.Ref(types.Signer())}
		return ast.ResourceOperation{Kind: ast.ResMoveTo, StructType: structType, Address: signerRef, Value: value, ResultType: types.Tuple()}, true, nil
	case 1:
		return ast.ResourceOperation{Kind: ast.ResMoveFrom, StructType: structType, Address: addrLeaf(), ResultType: structType}, true, nil
	case 2:
		return ast.ResourceOperation{Kind: ast.ResBorrowGlobal, StructType: structType, Address: addrLeaf(), ResultType: types.Ref(structType)}, true, nil
	case 3:
		return ast.ResourceOperation{Kind: ast.ResBorrowGlobalMut, StructType: structType, Address: addrLeaf(), ResultType: types.MutRef(structType)}, true, nil
	default:
		return ast.ResourceOperation{Kind: ast.ResExists, StructType: structType, Address: addrLeaf(), ResultType: types.Bool()}, true, nil
	}
}
