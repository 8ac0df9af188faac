// Package env composes the identifier/type machinery with the
// generator's runtime state: live-variable sets per scope, expression-
// and type-depth ring buffers, and the soft budgets (inline-function
// count, struct-field-of-struct-type count) and hard deadline that
// steer generation toward termination.
package env

import (
	"time"

	"github.com/oxhq/movesmith/internal/ident"
	"github.com/oxhq/movesmith/internal/selection"
)

// ringSize is K from the design notes: the number of max-depths drawn
// up front before the ring starts round-robining.
const ringSize = 10

// DepthRing tracks a bounded nesting depth (expression or type
// instantiation) against a small pre-drawn set of candidate maximums,
// with a manual-override stack for "generate something tiny here"
// call sites that should not disturb the round-robin.
type DepthRing struct {
	name        string
	maxDepths   []int
	robinIndex  int
	current     int
	overrides   []int
}

// NewDepthRing seeds a ring with ringSize draws from spec.
func NewDepthRing(name string, src *selection.Source, spec selection.RandomNumber) (*DepthRing, error) {
	r := &DepthRing{name: name, maxDepths: make([]int, ringSize)}
	for i := range r.maxDepths {
		v, err := spec.Select(src)
		if err != nil {
			return nil, err
		}
		r.maxDepths[i] = v
	}
	return r, nil
}

// activeMax is the manual-override top of stack if present, else the
// current round-robin slot.
func (r *DepthRing) activeMax() int {
	if len(r.overrides) > 0 {
		return r.overrides[len(r.overrides)-1]
	}
	return r.maxDepths[r.robinIndex]
}

// ReachedLimit reports whether the current depth has reached the
// active maximum.
func (r *DepthRing) ReachedLimit() bool {
	return r.current >= r.activeMax()
}

// Descend increments the current depth, called on entering a nested
// expression or type instantiation.
func (r *DepthRing) Descend() {
	r.current++
}

// Ascend decrements the current depth on exit. When it returns to 0
// with no manual override active, the ring rotates to its next
// candidate maximum.
func (r *DepthRing) Ascend() {
	if r.current > 0 {
		r.current--
	}
	if r.current == 0 && len(r.overrides) == 0 {
		r.robinIndex = (r.robinIndex + 1) % len(r.maxDepths)
	}
}

// PushOverride installs a manual maximum (e.g. "keep this vector
// element expression tiny") without advancing the round-robin.
func (r *DepthRing) PushOverride(max int) {
	r.overrides = append(r.overrides, max)
}

// PopOverride removes the most recently pushed manual maximum.
func (r *DepthRing) PopOverride() {
	if len(r.overrides) > 0 {
		r.overrides = r.overrides[:len(r.overrides)-1]
	}
}

func (r *DepthRing) Current() int { return r.current }

// LiveVarPool maintains, per scope, the set of identifiers currently
// live there. A variable is live iff it was marked alive in some
// ancestor scope and has not since been marked moved in any descendant
// of that ancestor.
type LiveVarPool struct {
	alive map[string]map[string]struct{} // scope -> set of identifier names
}

// NewLiveVarPool creates an empty pool.
func NewLiveVarPool() *LiveVarPool {
	return &LiveVarPool{alive: make(map[string]map[string]struct{})}
}

// MarkAlive inserts id into scope's live set (re-assignment resurrects
// a previously-moved variable by calling this again).
func (l *LiveVarPool) MarkAlive(scope string, id ident.Identifier) {
	set, ok := l.alive[scope]
	if !ok {
		set = make(map[string]struct{})
		l.alive[scope] = set
	}
	set[id.Name] = struct{}{}
}

// MarkMoved removes id from scope's live set and from every ancestor
// scope's live set: a move may consume a binding introduced further
// out.
func (l *LiveVarPool) MarkMoved(scope string, ancestors []string, id ident.Identifier) {
	if set, ok := l.alive[scope]; ok {
		delete(set, id.Name)
	}
	for _, anc := range ancestors {
		if set, ok := l.alive[anc]; ok {
			delete(set, id.Name)
		}
	}
}

// IsLive reports whether id is alive as seen from scope: true iff any
// of scope or its ancestors has id in its live set.
func (l *LiveVarPool) IsLive(scope string, ancestors []string, id ident.Identifier) bool {
	if set, ok := l.alive[scope]; ok {
		if _, alive := set[id.Name]; alive {
			return true
		}
	}
	for _, anc := range ancestors {
		if set, ok := l.alive[anc]; ok {
			if _, alive := set[id.Name]; alive {
				return true
			}
		}
	}
	return false
}

// FilterLiveVars selects, from candidates, those live as seen from
// scope.
func (l *LiveVarPool) FilterLiveVars(scope string, ancestors []string, candidates []ident.Identifier) []ident.Identifier {
	var out []ident.Identifier
	for _, c := range candidates {
		if l.IsLive(scope, ancestors, c) {
			out = append(out, c)
		}
	}
	return out
}

// ErrDeadlineExceeded is returned once the per-generation wall-clock
// budget has elapsed. It is treated the same as byte exhaustion: a
// non-bug, abort-and-discard signal.
var ErrDeadlineExceeded = selection.ErrNotEnoughData

// Env composes the identifier pool, type pool, live-variable tracking,
// depth rings, and the soft/hard budgets a single generate() call
// needs. Each generation run gets its own Env; there is no shared
// mutable state across runs.
type Env struct {
	Idents *ident.Pool

	ExprDepth *DepthRing
	TypeDepth *DepthRing

	Live *LiveVarPool

	deadline time.Time

	inlineFuncCount  int
	inlineFuncBudget int

	structFieldOfStructCount  map[string]int // per-module counter
	structFieldOfStructBudget int
}

// New builds an Env with its depth rings seeded from the given specs
// and its deadline set generationTimeout in the future.
func New(src *selection.Source, exprDepthSpec, typeDepthSpec selection.RandomNumber, generationTimeout time.Duration, inlineFuncBudget, structFieldOfStructBudget int) (*Env, error) {
	exprRing, err := NewDepthRing("expr", src, exprDepthSpec)
	if err != nil {
		return nil, err
	}
	typeRing, err := NewDepthRing("type", src, typeDepthSpec)
	if err != nil {
		return nil, err
	}
	return &Env{
		Idents:                    ident.New(),
		ExprDepth:                 exprRing,
		TypeDepth:                 typeRing,
		Live:                      NewLiveVarPool(),
		deadline:                  time.Now().Add(generationTimeout),
		inlineFuncBudget:          inlineFuncBudget,
		structFieldOfStructBudget: structFieldOfStructBudget,
		structFieldOfStructCount:  make(map[string]int),
	}, nil
}

// CheckTimeout is called at every descent into expression generation;
// once the deadline has passed it reports the error the caller should
// abort generation with.
func (e *Env) CheckTimeout() error {
	if time.Now().After(e.deadline) {
		return ErrDeadlineExceeded
	}
	return nil
}

// IncInlineFuncCounter records one more inline function;
// ReachedInlineFunctionLimit reports whether the budget is exhausted.
func (e *Env) IncInlineFuncCounter() {
	e.inlineFuncCount++
}

// ReachedInlineFunctionLimit reports whether the inline-function budget
// has been exhausted.
func (e *Env) ReachedInlineFunctionLimit() bool {
	return e.inlineFuncCount >= e.inlineFuncBudget
}

// IncStructTypeFieldCounter records one more struct-typed field in the
// given module.
func (e *Env) IncStructTypeFieldCounter(module string) {
	e.structFieldOfStructCount[module]++
}

// ReachedStructTypeFieldLimit reports whether module has exhausted its
// struct-typed-field budget.
func (e *Env) ReachedStructTypeFieldLimit(module string) bool {
	return e.structFieldOfStructCount[module] >= e.structFieldOfStructBudget
}
