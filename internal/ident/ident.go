// Package ident implements the identifier pool and scope tree: globally
// unique, kind-tagged names organized into a lexical scope hierarchy
// that supports visibility queries and qualified-name flattening.
package ident

import "fmt"

// Kind tags an identifier with the pool it belongs to. Names are unique
// across all kinds, but each kind has its own counter and prefix.
type Kind int

const (
	KindModule Kind = iota
	KindStruct
	KindFunction
	KindTypeParameter
	KindVariable
	KindBlock
	KindConstant
	KindType
)

func (k Kind) prefix() string {
	switch k {
	case KindModule:
		return "module"
	case KindStruct:
		return "struct"
	case KindFunction:
		return "function"
	case KindTypeParameter:
		return "T"
	case KindVariable:
		return "var"
	case KindBlock:
		return "block"
	case KindConstant:
		return "const"
	case KindType:
		return "type"
	default:
		return "id"
	}
}

// Identifier is an immutable (name, kind) pair. Once allocated it never
// changes; the pool is the only thing that creates them.
type Identifier struct {
	Name string
	Kind Kind
}

func (id Identifier) String() string { return id.Name }

// Root is the distinguished root scope every ancestor chain terminates
// at.
const Root = "0xCAFE"

// Scope is a path string identifying a lexical region. Ancestors are
// listed root-first; Hidden marks scopes (such as block bodies) that
// should not be visible as the "enclosing user-visible scope" for
// naming and live-variable purposes.
type Scope struct {
	Path      string
	Ancestors []string
	Hidden    bool
}

// VisibleScope strips hidden layers from the end of the ancestor chain
// (including the scope itself) to return the nearest enclosing
// user-visible scope path.
func (s Scope) VisibleScope(pool *Pool) string {
	if !s.Hidden {
		return s.Path
	}
	for i := len(s.Ancestors) - 1; i >= 0; i-- {
		anc := s.Ancestors[i]
		if sc, ok := pool.scopes[anc]; ok && !sc.Hidden {
			return anc
		}
	}
	return Root
}

// record is what the pool keeps per allocated identifier: which scope
// declared it, and the child scope it opens (if any).
type record struct {
	parentScope string
	childScope  string
	kind        Kind
}

// Pool allocates globally-unique identifiers and maintains the scope
// tree they live in.
type Pool struct {
	counters map[Kind]int
	records  map[string]record
	byKind   map[Kind][]string
	scopes   map[string]Scope
}

// New creates a pool seeded with the distinguished root scope.
func New() *Pool {
	p := &Pool{
		counters: make(map[Kind]int),
		records:  make(map[string]record),
		byKind:   make(map[Kind][]string),
		scopes:   make(map[string]Scope),
	}
	p.scopes[Root] = Scope{Path: Root}
	return p
}

func (p *Pool) next(kind Kind) string {
	n := p.counters[kind]
	p.counters[kind] = n + 1
	return fmt.Sprintf("%s%d", kind.prefix(), n)
}

// Allocate creates a new identifier of the given kind under
// parentScope. If opensScope is true, a fresh child scope is created
// and registered (hidden controls whether that child scope is a hidden
// lexical region, e.g. a block). fixedName overrides the generated
// name for hardcoded helpers (the per-module ADDR constant); pass "" to
// draw the next counter value.
//
// Returns the new identifier and the scope new declarations inside it
// should use: the child scope if one was opened, else parentScope.
func (p *Pool) Allocate(kind Kind, parentScope string, opensScope, hidden bool, fixedName string) (Identifier, string) {
	name := fixedName
	if name == "" {
		name = p.next(kind)
	}
	id := Identifier{Name: name, Kind: kind}

	childScope := parentScope
	if opensScope {
		childScope = name
		parent := p.scopes[parentScope]
		ancestors := append(append([]string{}, parent.Ancestors...), parentScope)
		p.scopes[childScope] = Scope{Path: childScope, Ancestors: ancestors, Hidden: hidden}
	}

	p.records[name] = record{parentScope: parentScope, childScope: childScope, kind: kind}
	p.byKind[kind] = append(p.byKind[kind], name)

	return id, childScope
}

// DeclaringScope returns the scope an identifier was declared in.
func (p *Pool) DeclaringScope(id Identifier) string {
	return p.records[id.Name].parentScope
}

// ChildScope returns the scope an identifier opens, or its own
// declaring scope if it did not open one.
func (p *Pool) ChildScope(id Identifier) string {
	return p.records[id.Name].childScope
}

// EnumerateByKind lists every identifier allocated under the given
// kind, in allocation order.
func (p *Pool) EnumerateByKind(kind Kind) []Identifier {
	names := p.byKind[kind]
	out := make([]Identifier, len(names))
	for i, n := range names {
		out[i] = Identifier{Name: n, Kind: kind}
	}
	return out
}

// isAncestorOf reports whether candidate is query or one of its
// ancestors.
func (p *Pool) isAncestorOf(candidate, query string) bool {
	if candidate == query {
		return true
	}
	sc, ok := p.scopes[query]
	if !ok {
		return false
	}
	for _, a := range sc.Ancestors {
		if a == candidate {
			return true
		}
	}
	return false
}

// IsIDInScope reports whether id is visible from queryScope: its
// declaring scope must be an ancestor of (or equal to) queryScope
// after hidden layers are stripped from both sides.
func (p *Pool) IsIDInScope(id Identifier, queryScope string) bool {
	rec, ok := p.records[id.Name]
	if !ok {
		return false
	}
	declVisible := p.visibleScopeOf(rec.parentScope)
	queryVisible := p.visibleScopeOf(queryScope)
	return p.isAncestorOf(declVisible, queryVisible)
}

func (p *Pool) visibleScopeOf(path string) string {
	sc, ok := p.scopes[path]
	if !ok {
		return path
	}
	return sc.VisibleScope(p)
}

// FlattenAccess walks the declaring-scope chain of id to produce a
// fully qualified, "::"-joined name (e.g. 0xCAFE::module0::function3)
// suitable for cross-module reference.
func (p *Pool) FlattenAccess(id Identifier) string {
	rec, ok := p.records[id.Name]
	if !ok {
		return id.Name
	}
	sc, ok := p.scopes[rec.parentScope]
	if !ok || rec.parentScope == Root {
		return id.Name
	}
	parts := make([]string, 0, len(sc.Ancestors)+2)
	for _, a := range sc.Ancestors {
		parts = append(parts, a)
	}
	if rec.parentScope != Root {
		parts = append(parts, rec.parentScope)
	}
	parts = append(parts, id.Name)
	out := parts[0]
	for _, p := range parts[1:] {
		out += "::" + p
	}
	return out
}
