package generator

import (
	"sort"

	"github.com/oxhq/movesmith/internal/ast"
	"github.com/oxhq/movesmith/internal/types"
)

// postProcess runs the three passes that depend on a
// fully-built AST rather than the top-down generation order: phantom
// type-parameter inference, the acquires transitive closure over the
// call graph, and disabling inline on any function that calls itself.
func (ms *MoveSmith) postProcess() {
	ms.inferPhantomTypeParameters()
	ms.computeAcquires()
	ms.disableSelfRecursiveInline()
}

// inferPhantomTypeParameters marks a struct's type parameter phantom
// whenever it never occurs in any field's type: Move requires the
// annotation on any parameter not used in field position, so this is
// a structural fact read off the finished field list, not a draw.
func (ms *MoveSmith) inferPhantomTypeParameters() {
	for _, mod := range ms.unit.Modules {
		for _, sd := range mod.Structs {
			for i, tp := range sd.TypeParameters {
				used := false
				for _, f := range sd.Fields {
					if containsTypeParam(f.Type, tp.Name) {
						used = true
						break
					}
				}
				sd.TypeParameters[i].IsPhantom = !used
			}
		}
	}
}

func containsTypeParam(t types.Type, name string) bool {
	switch t.Kind {
	case types.KTypeParameter:
		return t.Name == name
	case types.KVector, types.KRef, types.KMutRef:
		return containsTypeParam(*t.Inner, name)
	case types.KTuple:
		for _, e := range t.Tuple {
			if containsTypeParam(e, name) {
				return true
			}
		}
		return false
	case types.KStructConcrete:
		for _, a := range t.TypeArgs {
			if containsTypeParam(a, name) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// computeAcquires fills in every function's Acquires list: the direct
// move_from/borrow_global[_mut] targets in its own body, plus the
// union of whatever every function it calls (transitively) acquires —
// Move's acquires checking is a whole-call-stack borrow safety
// property, not a per-function one.
func (ms *MoveSmith) computeAcquires() {
	allFns := map[string]*ast.Function{}
	calls := map[string][]string{}
	direct := map[string]map[string]struct{}{}

	for _, mod := range ms.unit.Modules {
		for _, fn := range mod.Functions {
			allFns[fn.Signature.Name] = fn
			directSet := map[string]struct{}{}
			for _, e := range ast.AllExprs(fn, nil) {
				switch v := e.(type) {
				case ast.ResourceOperation:
					if v.Kind == ast.ResMoveFrom || v.Kind == ast.ResBorrowGlobal || v.Kind == ast.ResBorrowGlobalMut {
						if n := structNameOf(v.StructType); n != "" {
							directSet[n] = struct{}{}
						}
					}
				case ast.FunctionCall:
					calls[fn.Signature.Name] = append(calls[fn.Signature.Name], v.Name)
				}
			}
			direct[fn.Signature.Name] = directSet
		}
	}

	acquires := map[string]map[string]struct{}{}
	for name, set := range direct {
		acquires[name] = map[string]struct{}{}
		for s := range set {
			acquires[name][s] = struct{}{}
		}
	}

	for changed := true; changed; {
		changed = false
		for name, callees := range calls {
			for _, callee := range callees {
				for s := range acquires[callee] {
					if _, ok := acquires[name][s]; !ok {
						acquires[name][s] = struct{}{}
						changed = true
					}
				}
			}
		}
	}

	for name, fn := range allFns {
		var list []string
		for s := range acquires[name] {
			list = append(list, s)
		}
		sort.Strings(list)
		fn.Signature.Acquires = list
	}
}

// disableSelfRecursiveInline turns off the inline flag on any function
// whose body calls itself: Move rejects recursive inline functions
// outright, so the flag drawn at skeleton time must be corrected once
// the body exists to check.
func (ms *MoveSmith) disableSelfRecursiveInline() {
	for _, mod := range ms.unit.Modules {
		for _, fn := range mod.Functions {
			if !fn.Signature.Inline {
				continue
			}
			for _, e := range ast.AllExprs(fn, nil) {
				if call, ok := e.(ast.FunctionCall); ok && call.Name == fn.Signature.Name {
					fn.Signature.Inline = false
					break
				}
			}
		}
	}
}
