// Package types implements the type algebra, ability discipline, and
// the type registry the generator draws candidates from and tracks
// active type-parameter concretizations on.
package types

import (
	"fmt"
	"strings"

	"github.com/oxhq/movesmith/internal/ident"
)

// Ability is one of the four capability tags the language attaches to
// types.
type Ability int

const (
	AbilityCopy Ability = iota
	AbilityDrop
	AbilityStore
	AbilityKey
)

func (a Ability) String() string {
	switch a {
	case AbilityCopy:
		return "copy"
	case AbilityDrop:
		return "drop"
	case AbilityStore:
		return "store"
	case AbilityKey:
		return "key"
	default:
		return "?"
	}
}

// AbilitySet is an unordered set of abilities.
type AbilitySet map[Ability]struct{}

// NewAbilitySet builds a set from the given abilities.
func NewAbilitySet(abilities ...Ability) AbilitySet {
	s := make(AbilitySet, len(abilities))
	for _, a := range abilities {
		s[a] = struct{}{}
	}
	return s
}

// All is the full {copy,drop,store,key} set.
func All() AbilitySet { return NewAbilitySet(AbilityCopy, AbilityDrop, AbilityStore, AbilityKey) }

// None is the empty ability set.
func None() AbilitySet { return AbilitySet{} }

// Primitives is the baseline ability set for numerics and bool.
func Primitives() AbilitySet { return NewAbilitySet(AbilityCopy, AbilityDrop, AbilityStore) }

// RefAbilities is the ability set carried by references.
func RefAbilities() AbilitySet { return NewAbilitySet(AbilityCopy, AbilityDrop) }

func (s AbilitySet) Has(a Ability) bool {
	_, ok := s[a]
	return ok
}

// Superset reports whether s contains every ability in other.
func (s AbilitySet) Superset(other AbilitySet) bool {
	for a := range other {
		if !s.Has(a) {
			return false
		}
	}
	return true
}

// Union returns a new set containing every ability in s or other.
func (s AbilitySet) Union(other AbilitySet) AbilitySet {
	out := make(AbilitySet, len(s)+len(other))
	for a := range s {
		out[a] = struct{}{}
	}
	for a := range other {
		out[a] = struct{}{}
	}
	return out
}

// Valid reports the key-requires-store invariant.
func (s AbilitySet) Valid() bool {
	return !s.Has(AbilityKey) || s.Has(AbilityStore)
}

// Kind discriminates the Type sum.
type Kind int

const (
	KU8 Kind = iota
	KU16
	KU32
	KU64
	KU128
	KU256
	KBool
	KAddress
	KSigner
	KVector
	KRef
	KMutRef
	KTuple
	KStruct         // generic struct reference: name + type parameter list
	KStructConcrete // struct reference with type arguments bound
	KTypeParameter
	KFunction
)

// Type is a structurally-equal sum type over every Move type the
// generator can produce.
type Type struct {
	Kind Kind

	// KVector, KRef, KMutRef: element/referent type.
	Inner *Type

	// KTuple: element types.
	Tuple []Type

	// KStruct, KStructConcrete, KTypeParameter, KFunction: declared name.
	Name string

	// KStruct: the struct's own type parameter names (unbound).
	TypeParamNames []string

	// KStructConcrete: the type arguments bound to the struct's
	// parameters, parallel to the struct definition's parameter list.
	TypeArgs []Type

	// KTypeParameter: the parameter's declared abilities and phantom
	// flag.
	Abilities AbilitySet
	IsPhantom bool
}

func U8() Type { return Type{Kind: KU8} }
func U16() Type { return Type{Kind: KU16} }
func U32() Type { return Type{Kind: KU32} }
func U64() Type { return Type{Kind: KU64} }
func U128() Type { return Type{Kind: KU128} }
func U256() Type { return Type{Kind: KU256} }
func Bool() Type { return Type{Kind: KBool} }
func Address() Type { return Type{Kind: KAddress} }
func Signer() Type { return Type{Kind: KSigner} }
func Vector(e Type) Type { return Type{Kind: KVector, Inner: &e} }
func Ref(e Type) Type { return Type{Kind: KRef, Inner: &e} }
func MutRef(e Type) Type { return Type{Kind: KMutRef, Inner: &e} }
func Tuple(elems ...Type) Type { return Type{Kind: KTuple, Tuple: elems} }
func StructRef(name string, typeParamNames []string) Type {
	return Type{Kind: KStruct, Name: name, TypeParamNames: typeParamNames}
}
func StructConcrete(name string, args []Type) Type {
	return Type{Kind: KStructConcrete, Name: name, TypeArgs: args}
}
func TypeParameter(name string, abilities AbilitySet, phantom bool) Type {
	return Type{Kind: KTypeParameter, Name: name, Abilities: abilities, IsPhantom: phantom}
}
func Function(name string) Type { return Type{Kind: KFunction, Name: name} }

// IsNumeric reports whether t is one of the unsigned integer kinds.
func (t Type) IsNumeric() bool {
	switch t.Kind {
	case KU8, KU16, KU32, KU64, KU128, KU256:
		return true
	default:
		return false
	}
}

func (t Type) IsReference() bool { return t.Kind == KRef || t.Kind == KMutRef }

// Equal is structural equality, recursing through composite kinds.
func (t Type) Equal(o Type) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case KVector, KRef, KMutRef:
		return t.Inner.Equal(*o.Inner)
	case KTuple:
		if len(t.Tuple) != len(o.Tuple) {
			return false
		}
		for i := range t.Tuple {
			if !t.Tuple[i].Equal(o.Tuple[i]) {
				return false
			}
		}
		return true
	case KStruct:
		return t.Name == o.Name
	case KStructConcrete:
		if t.Name != o.Name || len(t.TypeArgs) != len(o.TypeArgs) {
			return false
		}
		for i := range t.TypeArgs {
			if !t.TypeArgs[i].Equal(o.TypeArgs[i]) {
				return false
			}
		}
		return true
	case KTypeParameter, KFunction:
		return t.Name == o.Name
	default:
		return true
	}
}

// GetName yields the canonical identifier used as a TypePool key.
func (t Type) GetName() string {
	switch t.Kind {
	case KU8:
		return "u8"
	case KU16:
		return "u16"
	case KU32:
		return "u32"
	case KU64:
		return "u64"
	case KU128:
		return "u128"
	case KU256:
		return "u256"
	case KBool:
		return "bool"
	case KAddress:
		return "address"
	case KSigner:
		return "signer"
	case KVector:
		return "vector<" + t.Inner.GetName() + ">"
	case KRef:
		return "&" + t.Inner.GetName()
	case KMutRef:
		return "&mut " + t.Inner.GetName()
	case KTuple:
		parts := make([]string, len(t.Tuple))
		for i, e := range t.Tuple {
			parts[i] = e.GetName()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KStruct:
		return t.Name
	case KStructConcrete:
		parts := make([]string, len(t.TypeArgs))
		for i, a := range t.TypeArgs {
			parts[i] = a.GetName()
		}
		return fmt.Sprintf("%s<%s>", t.Name, strings.Join(parts, ", "))
	case KTypeParameter, KFunction:
		return t.Name
	default:
		return "?"
	}
}

// DeriveAbilitiesOfType implements the declared ability-derivation
// rule (an upper bound for structs: the precise set would intersect
// with fields, but that is already enforced at generation time, so the
// declared set is a valid over-approximation for selection purposes).
func DeriveAbilitiesOfType(t Type, structAbilities func(name string) AbilitySet) AbilitySet {
	switch t.Kind {
	case KU8, KU16, KU32, KU64, KU128, KU256, KBool:
		return Primitives()
	case KStruct, KStructConcrete:
		if structAbilities != nil {
			return structAbilities(t.Name)
		}
		return None()
	case KTypeParameter:
		return t.Abilities
	case KRef, KMutRef:
		return RefAbilities()
	default:
		return None()
	}
}

// TypeParameters and TypeArgs are parallel ordered lists: the type
// parameter at index i is concretized by the type argument at index i.
type TypeParameters []Type
type TypeArgs []Type

// Pool maps identifiers to their declared types, tracks the set of
// registered types usable as a random draw, and holds a per-type-
// parameter stack of active concretizations.
type Pool struct {
	mapping       map[string]Type
	allTypes      []Type
	concretize    map[string][]Type // type-parameter name -> concretization stack
	structAbility map[string]AbilitySet
}

// NewPool creates an empty type pool.
func NewPool() *Pool {
	return &Pool{
		mapping:       make(map[string]Type),
		concretize:    make(map[string][]Type),
		structAbility: make(map[string]AbilitySet),
	}
}

// InsertMapping records id's declared type.
func (p *Pool) InsertMapping(id ident.Identifier, t Type) {
	p.mapping[id.Name] = t
}

// GetType looks up a declared type by identifier.
func (p *Pool) GetType(id ident.Identifier) (Type, bool) {
	t, ok := p.mapping[id.Name]
	return t, ok
}

// RegisterType adds t as a candidate in the global draw pool.
func (p *Pool) RegisterType(t Type) {
	p.allTypes = append(p.allTypes, t)
	if t.Kind == KStruct {
		// struct abilities are registered separately via
		// RegisterStructAbilities once the struct's ability set is
		// decided; this just makes the bare reference drawable.
	}
}

// RegisterStructAbilities records the declared ability set for a
// struct name so DeriveAbilitiesOfType can resolve struct references.
func (p *Pool) RegisterStructAbilities(name string, abilities AbilitySet) {
	p.structAbility[name] = abilities
}

// StructAbilities resolves the declared ability set of a struct by
// name, used as the structAbilities callback for DeriveAbilitiesOfType.
func (p *Pool) StructAbilities(name string) AbilitySet {
	return p.structAbility[name]
}

// GetAllTypes returns every registered candidate type.
func (p *Pool) GetAllTypes() []Type {
	return p.allTypes
}

// FilterIdentifierWithType returns every mapped identifier whose
// declared type equals t, restricted to those satisfying pred (e.g. a
// scope-visibility check), in insertion order for determinism.
func (p *Pool) FilterIdentifierWithType(t Type, names []string, pred func(name string) bool) []string {
	var out []string
	for _, n := range names {
		mapped, ok := p.mapping[n]
		if !ok || !mapped.Equal(t) {
			continue
		}
		if pred != nil && !pred(n) {
			continue
		}
		out = append(out, n)
	}
	return out
}

// RegisterConcreteType pushes a concretization for a type parameter,
// active until the matching UnregisterConcreteType call.
func (p *Pool) RegisterConcreteType(tpName string, concrete Type) {
	p.concretize[tpName] = append(p.concretize[tpName], concrete)
}

// UnregisterConcreteType pops the most recent concretization for a
// type parameter. It panics if none is active: the stack must always
// be balanced by construction, and an unmatched pop is an internal
// contract violation, not a recoverable error.
func (p *Pool) UnregisterConcreteType(tpName string) {
	stack := p.concretize[tpName]
	if len(stack) == 0 {
		panic(fmt.Sprintf("types: unregister_concrete_type: no active concretization for %q", tpName))
	}
	p.concretize[tpName] = stack[:len(stack)-1]
}

// GetConcreteType peeks at the currently active concretization for a
// type parameter, if any.
func (p *Pool) GetConcreteType(tpName string) (Type, bool) {
	stack := p.concretize[tpName]
	if len(stack) == 0 {
		return Type{}, false
	}
	return stack[len(stack)-1], true
}

// AllConcretizationsEmpty reports whether every concretization stack is
// balanced (the quiescence invariant: true between generations, and
// must be true again once generation of a single program completes).
func (p *Pool) AllConcretizationsEmpty() bool {
	for _, stack := range p.concretize {
		if len(stack) != 0 {
			return false
		}
	}
	return true
}

// Helper accessors for the pre-allocated harness variables every
// function signature's leading &signer parameter, and the module's
// ADDR constant, resolve to.
const (
	SignerVarName    = "sref"
	AddressVarName   = "ADDR"
)

func GetSignerVar() Type    { return Ref(Signer()) }
func GetSignerRefVar() Type { return Ref(Signer()) }
func GetAddressVar() Type   { return Address() }
