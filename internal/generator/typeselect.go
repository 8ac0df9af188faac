package generator

import (
	"github.com/oxhq/movesmith/internal/types"
)

// typeDrawOptions mirrors the (allow_bool, allow_struct, allow_type_param,
// only_instantiatable, allow_reference) tuple used throughout §4.8/§4.9.
type typeDrawOptions struct {
	allowBool          bool
	allowStruct        bool
	allowTypeParam     bool
	onlyInstantiatable bool
	allowReference     bool
}

// candidateNumerics is the fixed numeric draw pool; every numeric type
// carries the primitive ability baseline regardless of width.
var candidateNumerics = []types.Type{
	types.U8(), types.U16(), types.U32(), types.U64(), types.U128(), types.U256(),
}

// getRandomType draws a type honoring opts, restricted to the type
// parameters currently in scope (scopeTPs) for the type-parameter
// branch. A depth-bounded reference wrapper is applied when
// allowReference is set and the draw says so.
func (ms *MoveSmith) getRandomType(scope scopeCtx, opts typeDrawOptions, scopeTPs []types.Type) (types.Type, error) {
	candidates := append([]types.Type{}, candidateNumerics...)
	if opts.allowBool {
		candidates = append(candidates, types.Bool())
	}
	if opts.allowStruct {
		for _, sd := range ms.usableStructTypes(scope) {
			if opts.onlyInstantiatable && !ms.isTypeConcretizable(sd, scope) {
				continue
			}
			candidates = append(candidates, sd)
		}
	}
	if opts.allowTypeParam {
		for _, tp := range scopeTPs {
			candidates = append(candidates, tp)
		}
	}

	idx, err := ms.src.BoundedInt(0, len(candidates)-1)
	if err != nil {
		return types.Type{}, err
	}
	chosen := candidates[idx]

	if opts.allowReference {
		if wantsRef, err := ms.src.Ratio(30, 100); err != nil {
			return types.Type{}, err
		} else if wantsRef {
			if mut, err := ms.src.Bool(); err != nil {
				return types.Type{}, err
			} else if mut {
				return types.MutRef(chosen), nil
			}
			return types.Ref(chosen), nil
		}
	}
	return chosen, nil
}

// usableStructTypes returns every struct reference registered so far
// as a bare (possibly generic) struct Type.
func (ms *MoveSmith) usableStructTypes(scope scopeCtx) []types.Type {
	var out []types.Type
	for _, t := range ms.tp.GetAllTypes() {
		if t.Kind == types.KStruct {
			out = append(out, t)
		}
	}
	return out
}

// isTypeConcretizable reports whether t can be fully concretized to a
// ground type given what's currently in scope: non-generic structs and
// non-struct types are trivially concretizable; a generic struct counts
// as concretizable whenever the type pool holds at least one type. The
// abilities each type parameter requires are not checked here.
func (ms *MoveSmith) isTypeConcretizable(t types.Type, scope scopeCtx) bool {
	if t.Kind != types.KStruct || len(t.TypeParamNames) == 0 {
		return true
	}
	for range t.TypeParamNames {
		if len(ms.tp.GetAllTypes()) == 0 {
			return false
		}
	}
	return true
}

// getTypesWithAbilities returns every registered type whose derived
// ability set is a superset of required.
func (ms *MoveSmith) getTypesWithAbilities(required types.AbilitySet) []types.Type {
	var out []types.Type
	for _, t := range ms.tp.GetAllTypes() {
		derived := types.DeriveAbilitiesOfType(t, ms.tp.StructAbilities)
		if derived.Superset(required) {
			out = append(out, t)
		}
	}
	return out
}

// filterInstantiatableTypes keeps only types that are already ground
// (no free type parameters) or are concretizable generic structs.
func (ms *MoveSmith) filterInstantiatableTypes(scope scopeCtx, candidates []types.Type) []types.Type {
	var out []types.Type
	for _, t := range candidates {
		if t.Kind == types.KStruct && len(t.TypeParamNames) > 0 && !ms.isTypeConcretizable(t, scope) {
			continue
		}
		out = append(out, t)
	}
	return out
}
