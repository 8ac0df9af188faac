package env

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/movesmith/internal/ident"
	"github.com/oxhq/movesmith/internal/selection"
)

func TestDepthRing_ReachedLimitAndRotation(t *testing.T) {
	src := selection.NewSource(make([]byte, 4096))
	spec := selection.NewRandomNumber(1, 2, 4)
	ring, err := NewDepthRing("expr", src, spec)
	require.NoError(t, err)

	assert.False(t, ring.ReachedLimit())
	for i := 0; i < 100 && !ring.ReachedLimit(); i++ {
		ring.Descend()
	}
	assert.True(t, ring.ReachedLimit())

	for ring.Current() > 0 {
		ring.Ascend()
	}
	assert.Equal(t, 0, ring.Current())
}

func TestDepthRing_ManualOverrideDoesNotAdvanceRobin(t *testing.T) {
	src := selection.NewSource(make([]byte, 4096))
	spec := selection.NewRandomNumber(0, 0, 0)
	ring, err := NewDepthRing("type", src, spec)
	require.NoError(t, err)

	ring.PushOverride(5)
	ring.Descend()
	ring.Ascend()
	assert.False(t, ring.ReachedLimit(), "override of 5 should not be reached after one descend/ascend")
	ring.PopOverride()
}

func TestLiveVarPool_MoveRemovesFromAncestors(t *testing.T) {
	pool := NewLiveVarPool()
	v := ident.Identifier{Name: "var0", Kind: ident.KindVariable}

	pool.MarkAlive("outer", v)
	assert.True(t, pool.IsLive("inner", []string{"outer"}, v))

	pool.MarkMoved("inner", []string{"outer"}, v)
	assert.False(t, pool.IsLive("inner", []string{"outer"}, v))
	assert.False(t, pool.IsLive("outer", nil, v))
}

func TestLiveVarPool_ReassignmentResurrects(t *testing.T) {
	pool := NewLiveVarPool()
	v := ident.Identifier{Name: "var0", Kind: ident.KindVariable}

	pool.MarkAlive("s", v)
	pool.MarkMoved("s", nil, v)
	assert.False(t, pool.IsLive("s", nil, v))

	pool.MarkAlive("s", v)
	assert.True(t, pool.IsLive("s", nil, v))
}

func TestEnv_DeadlineExceeded(t *testing.T) {
	src := selection.NewSource(make([]byte, 4096))
	spec := selection.NewRandomNumber(1, 1, 1)
	e, err := New(src, spec, spec, -1*time.Second, 10, 10)
	require.NoError(t, err)

	assert.ErrorIs(t, e.CheckTimeout(), ErrDeadlineExceeded)
}

func TestEnv_InlineBudget(t *testing.T) {
	src := selection.NewSource(make([]byte, 4096))
	spec := selection.NewRandomNumber(1, 1, 1)
	e, err := New(src, spec, spec, time.Minute, 2, 10)
	require.NoError(t, err)

	assert.False(t, e.ReachedInlineFunctionLimit())
	e.IncInlineFuncCounter()
	e.IncInlineFuncCounter()
	assert.True(t, e.ReachedInlineFunctionLimit())
}
