package generator

import "github.com/oxhq/movesmith/internal/types"

// concretizeType picks a ground candidate for a type parameter at a
// struct-field or type-argument call site: one already-registered type
// whose derived abilities satisfy both tp's own bound and any
// additionally required abilities, and which (when it names a struct)
// does not reach back to avoidStruct through its own fields — the
// acyclicity check (I2) applied one level up from checkStructReachable.
//
// This is the "fixed-for-the-lifetime-of-the-declaration" flavor used
// by struct fields. Call-site concretization, which pushes onto the
// type pool's stack for the duration of a single expression, is a
// distinct operation (see the generic function-call path).
func (ms *MoveSmith) concretizeType(tp types.Type, scope scopeCtx, required types.AbilitySet, avoidStruct *string) (types.Type, bool) {
	return ms.concretizeTypeAt(tp, scope, required, avoidStruct, 0)
}

// maxConcretizeDepth guards concretizeType/concretizeStructType's
// mutual recursion: a generic struct candidate's own type parameters
// can themselves draw another generic struct, and without a limit a
// pathological mutually-referential set of generic structs would
// recurse forever. At the limit only already-ground candidates remain
// eligible, so the recursion always bottoms out.
const maxConcretizeDepth = 4

func (ms *MoveSmith) concretizeTypeAt(tp types.Type, scope scopeCtx, required types.AbilitySet, avoidStruct *string, depth int) (types.Type, bool) {
	needed := tp.Abilities.Union(required)
	candidates := ms.filterInstantiatableTypes(scope, ms.getTypesWithAbilities(needed))

	var filtered []types.Type
	for _, c := range candidates {
		if depth >= maxConcretizeDepth && c.Kind == types.KStruct && len(c.TypeParamNames) > 0 {
			continue
		}
		if avoidStruct == nil {
			filtered = append(filtered, c)
			continue
		}
		name := structNameOf(c)
		if name == "" {
			filtered = append(filtered, c)
			continue
		}
		if name == *avoidStruct || ms.checkStructReachable(name, *avoidStruct, map[string]bool{}) {
			continue
		}
		filtered = append(filtered, c)
	}
	if len(filtered) == 0 {
		return types.Type{}, false
	}
	idx, err := ms.src.BoundedInt(0, len(filtered)-1)
	if err != nil {
		return types.Type{}, false
	}
	chosen := filtered[idx]

	// A generic struct candidate still carries unbound type parameters
	// of its own (TypeParamNames set, no TypeArgs) — recurse to bind
	// them before returning, or the bare Type flows into a field/arg
	// position with no way to emit valid Move.
	if chosen.Kind == types.KStruct && len(chosen.TypeParamNames) > 0 {
		return ms.concretizeStructTypeAt(chosen, scope, depth+1)
	}
	return chosen, true
}

// concretizeTypeParameter resolves a ground type for tp scoped to a
// single call site: the pool records the binding for the duration of
// the returned release func, so nested generation of the call's
// arguments can resolve tp back to the same concrete type (I4).
func (ms *MoveSmith) concretizeTypeParameter(tp types.Type, scope scopeCtx) (types.Type, func(), bool) {
	concrete, ok := ms.concretizeType(tp, scope, types.None(), nil)
	if !ok {
		return types.Type{}, nil, false
	}
	ms.tp.RegisterConcreteType(tp.Name, concrete)
	return concrete, func() { ms.tp.UnregisterConcreteType(tp.Name) }, true
}
