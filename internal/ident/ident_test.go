package ident

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllocate_NamesAreUniquePerKind(t *testing.T) {
	p := New()
	a, _ := p.Allocate(KindStruct, Root, false, false, "")
	b, _ := p.Allocate(KindStruct, Root, false, false, "")
	assert.NotEqual(t, a.Name, b.Name)
}

func TestAllocate_FixedNameOverridesCounter(t *testing.T) {
	p := New()
	id, _ := p.Allocate(KindConstant, Root, false, false, "ADDR")
	assert.Equal(t, "ADDR", id.Name)
}

func TestIsIDInScope_VisibleFromDescendantScope(t *testing.T) {
	p := New()
	modID, modScope := p.Allocate(KindModule, Root, true, false, "")
	_, funcScope := p.Allocate(KindFunction, modScope, true, false, "")
	varID, _ := p.Allocate(KindVariable, funcScope, false, false, "")

	assert.True(t, p.IsIDInScope(varID, funcScope))
	assert.True(t, p.IsIDInScope(modID, funcScope), "module should be visible from a nested function scope")
}

func TestIsIDInScope_NotVisibleFromSiblingScope(t *testing.T) {
	p := New()
	_, modScope := p.Allocate(KindModule, Root, true, false, "")
	_, funcAScope := p.Allocate(KindFunction, modScope, true, false, "")
	_, funcBScope := p.Allocate(KindFunction, modScope, true, false, "")
	localVar, _ := p.Allocate(KindVariable, funcAScope, false, false, "")

	assert.False(t, p.IsIDInScope(localVar, funcBScope))
}

func TestHiddenScope_StripsToEnclosingVisibleScope(t *testing.T) {
	p := New()
	_, modScope := p.Allocate(KindModule, Root, true, false, "")
	_, funcScope := p.Allocate(KindFunction, modScope, true, false, "")
	_, blockScope := p.Allocate(KindBlock, funcScope, true, true, "")

	assert.Equal(t, funcScope, p.visibleScopeOf(blockScope))
}

func TestFlattenAccess_ProducesQualifiedName(t *testing.T) {
	p := New()
	_, modScope := p.Allocate(KindModule, Root, true, false, "")
	fnID, _ := p.Allocate(KindFunction, modScope, true, false, "")

	flat := p.FlattenAccess(fnID)
	assert.Contains(t, flat, fnID.Name)
	assert.Contains(t, flat, modScope)
}

func TestEnumerateByKind_PreservesAllocationOrder(t *testing.T) {
	p := New()
	first, _ := p.Allocate(KindStruct, Root, false, false, "")
	second, _ := p.Allocate(KindStruct, Root, false, false, "")

	got := p.EnumerateByKind(KindStruct)
	assert.Equal(t, []Identifier{first, second}, got)
}
