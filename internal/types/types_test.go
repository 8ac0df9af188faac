package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/movesmith/internal/ident"
)

func TestAbilitySet_KeyRequiresStore(t *testing.T) {
	assert.False(t, NewAbilitySet(AbilityKey).Valid())
	assert.True(t, NewAbilitySet(AbilityKey, AbilityStore).Valid())
}

func TestType_StructuralEquality(t *testing.T) {
	a := Vector(U8())
	b := Vector(U8())
	c := Vector(U64())
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestType_GetName_CanonicalForm(t *testing.T) {
	assert.Equal(t, "u8", U8().GetName())
	assert.Equal(t, "vector<u8>", Vector(U8()).GetName())
	assert.Equal(t, "&u64", Ref(U64()).GetName())
	assert.Equal(t, "Foo<u8, bool>", StructConcrete("Foo", []Type{U8(), Bool()}).GetName())
}

func TestDeriveAbilitiesOfType_Rules(t *testing.T) {
	assert.Equal(t, Primitives(), DeriveAbilitiesOfType(U8(), nil))
	assert.Equal(t, Primitives(), DeriveAbilitiesOfType(Bool(), nil))
	assert.Equal(t, RefAbilities(), DeriveAbilitiesOfType(Ref(U8()), nil))
	assert.Equal(t, RefAbilities(), DeriveAbilitiesOfType(MutRef(U8()), nil))
	assert.Equal(t, None(), DeriveAbilitiesOfType(Address(), nil))

	tp := TypeParameter("T", NewAbilitySet(AbilityCopy), false)
	assert.Equal(t, NewAbilitySet(AbilityCopy), DeriveAbilitiesOfType(tp, nil))

	structs := func(name string) AbilitySet { return NewAbilitySet(AbilityStore, AbilityKey) }
	assert.Equal(t, NewAbilitySet(AbilityStore, AbilityKey), DeriveAbilitiesOfType(StructRef("S", nil), structs))
}

func TestPool_ConcretizationStackIsLastInFirstOut(t *testing.T) {
	p := NewPool()
	p.RegisterConcreteType("T", U8())
	p.RegisterConcreteType("T", Bool())

	got, ok := p.GetConcreteType("T")
	require.True(t, ok)
	assert.True(t, got.Equal(Bool()))

	p.UnregisterConcreteType("T")
	got, ok = p.GetConcreteType("T")
	require.True(t, ok)
	assert.True(t, got.Equal(U8()))

	p.UnregisterConcreteType("T")
	_, ok = p.GetConcreteType("T")
	assert.False(t, ok)
	assert.True(t, p.AllConcretizationsEmpty())
}

func TestPool_UnregisterWithoutRegisterPanics(t *testing.T) {
	p := NewPool()
	assert.Panics(t, func() {
		p.UnregisterConcreteType("T")
	})
}

func TestPool_InsertAndGetMapping(t *testing.T) {
	p := NewPool()
	id := ident.Identifier{Name: "var0", Kind: ident.KindVariable}
	p.InsertMapping(id, U64())

	got, ok := p.GetType(id)
	require.True(t, ok)
	assert.True(t, got.Equal(U64()))
}

func TestPool_FilterIdentifierWithType(t *testing.T) {
	p := NewPool()
	p.InsertMapping(ident.Identifier{Name: "a", Kind: ident.KindVariable}, U8())
	p.InsertMapping(ident.Identifier{Name: "b", Kind: ident.KindVariable}, U64())
	p.InsertMapping(ident.Identifier{Name: "c", Kind: ident.KindVariable}, U8())

	matches := p.FilterIdentifierWithType(U8(), []string{"a", "b", "c"}, nil)
	assert.ElementsMatch(t, []string{"a", "c"}, matches)
}
