package generator

import (
	"fmt"

	"github.com/oxhq/movesmith/internal/ast"
	"github.com/oxhq/movesmith/internal/selection"
	"github.com/oxhq/movesmith/internal/types"
)

// fillModule fills every struct's fields, then every function's body
// in reverse declaration order (so an earlier-declared function can call
// a later one that is already fully filled, per the "callable
// function" heuristic in §4.10).
func (ms *MoveSmith) fillModule(mod *ast.Module) error {
	for _, sd := range mod.Structs {
		if err := ms.fillStruct(mod, sd); err != nil {
			return fmt.Errorf("struct %s: %w", sd.Name, err)
		}
	}
	for i := len(mod.Functions) - 1; i >= 0; i-- {
		fn := mod.Functions[i]
		if err := ms.fillFunction(mod, fn); err != nil {
			return fmt.Errorf("function %s: %w", fn.Signature.Name, err)
		}
	}
	return nil
}

// fillStruct draws each field as either a basic type (weight 2) or a
// nested-struct reference (weight 1), honoring ability, acyclicity
// (I2) and the per-module struct-field budget.
func (ms *MoveSmith) fillStruct(mod *ast.Module, sd *ast.StructDefinition) error {
	scope := scopeCtx{scope: mod.Name, ancestors: []string{"0xCAFE"}}
	numFields, err := ms.cfg.NumFieldsInStruct.Select(ms.src)
	if err != nil {
		return err
	}

	for i := 0; i < numFields; i++ {
		idx, err := selection.ChooseIdxWeighted(ms.src, []int{2, 1})
		if err != nil {
			return err
		}
		useNested := idx == 1 && !ms.env.ReachedStructTypeFieldLimit(mod.Name)

		var ft types.Type
		if useNested {
			cand, ok := ms.pickNestedStructField(mod, sd)
			if ok {
				ft = cand
				ms.env.IncStructTypeFieldCounter(mod.Name)
			} else {
				useNested = false
			}
		}
		if !useNested {
			t, err := ms.getRandomType(scope, typeDrawOptions{allowBool: true}, sd.TypeParameters)
			if err != nil {
				return err
			}
			ft = t
		}

		sd.Fields = append(sd.Fields, ast.Field{Name: fmt.Sprintf("field%d", i), Type: ft})
	}
	return nil
}

// pickNestedStructField restricts candidates to same-module structs
// whose ability set is a superset of parent's declared abilities
// (plus store, if parent has key), rejects any whose reachable-struct
// closure contains parent (I2), and concretizes generic candidates
// under the same constraints.
func (ms *MoveSmith) pickNestedStructField(mod *ast.Module, parent *ast.StructDefinition) (types.Type, bool) {
	required := parent.Abilities
	if parent.Abilities.Has(types.AbilityKey) {
		required = required.Union(types.NewAbilitySet(types.AbilityStore))
	}

	var candidates []*ast.StructDefinition
	for _, sd := range mod.Structs {
		if sd.Name == parent.Name {
			continue
		}
		if !sd.Abilities.Superset(required) {
			continue
		}
		if ms.checkStructReachable(sd.Name, parent.Name, map[string]bool{}) {
			continue
		}
		candidates = append(candidates, sd)
	}
	if len(candidates) == 0 {
		return types.Type{}, false
	}

	idx, err := ms.src.BoundedInt(0, len(candidates)-1)
	if err != nil {
		return types.Type{}, false
	}
	chosen := candidates[idx]

	if len(chosen.TypeParameters) == 0 {
		return types.StructRef(chosen.Name, nil), true
	}

	args := make([]types.Type, len(chosen.TypeParameters))
	for i, tp := range chosen.TypeParameters {
		concrete, ok := ms.concretizeType(tp, scopeCtx{scope: mod.Name}, required, &parent.Name)
		if !ok {
			return types.Type{}, false
		}
		args[i] = concrete
	}
	return types.StructConcrete(chosen.Name, args), true
}

// checkStructReachable reports whether target is reachable from
// start's field types, following nested struct fields.
func (ms *MoveSmith) checkStructReachable(start, target string, visited map[string]bool) bool {
	if start == target {
		return true
	}
	if visited[start] {
		return false
	}
	visited[start] = true

	sd, ok := ms.structDefs[start]
	if !ok {
		return false
	}
	for _, f := range sd.Fields {
		name := structNameOf(f.Type)
		if name == "" {
			continue
		}
		if ms.checkStructReachable(name, target, visited) {
			return true
		}
	}
	return false
}

func structNameOf(t types.Type) string {
	switch t.Kind {
	case types.KStruct, types.KStructConcrete:
		return t.Name
	default:
		return ""
	}
}
