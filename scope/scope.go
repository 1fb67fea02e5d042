// Package scope implements the generator's lexical name environment: a
// stack of frames mapping identifier to DataType, searched top-down, with
// uniform random selection among the bindings visible at a given point.
package scope

import (
	"fmt"

	"github.com/gogpu/wgslsmith/typelattice"
)

// Binding is one visible (name, type) pair.
type Binding struct {
	Name string
	Type typelattice.DataType
}

// frame is one lexical layer. Names are tracked both in a map (for O(1)
// lookup) and in an ordered slice (so iteration order never depends on Go's
// randomized map iteration — the generator's determinism discipline
// requires that any random choice over scope contents first materializes a
// stable candidate order).
type frame struct {
	order []string
	types map[string]typelattice.DataType
}

// Scope is a stack-disciplined name environment. The zero value is an
// empty scope with no frames; Push must be called before Insert.
type Scope struct {
	frames []*frame
}

// New returns a Scope with a single empty top-level frame.
func New() *Scope {
	s := &Scope{}
	s.Push()
	return s
}

// Push opens a new, empty frame on top of the stack.
func (s *Scope) Push() {
	s.frames = append(s.frames, &frame{types: make(map[string]typelattice.DataType)})
}

// Pop discards the top frame. Popping an empty Scope is a programming error.
func (s *Scope) Pop() {
	if len(s.frames) == 0 {
		panic("scope: Pop called on empty Scope")
	}
	s.frames = s.frames[:len(s.frames)-1]
}

// Insert adds name to the top frame. Redeclaring a name already present in
// the top frame is a programming error and panics — shadowing across
// frames is fine, but the generator must never emit two bindings of the
// same name in one block.
func (s *Scope) Insert(name string, t typelattice.DataType) {
	if len(s.frames) == 0 {
		panic("scope: Insert called on empty Scope")
	}
	top := s.frames[len(s.frames)-1]
	if _, exists := top.types[name]; exists {
		panic(fmt.Sprintf("scope: redeclaration of %q in the same frame", name))
	}
	top.types[name] = t
	top.order = append(top.order, name)
}

// Lookup searches frames top-down and returns the first binding found.
func (s *Scope) Lookup(name string) (typelattice.DataType, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if t, ok := s.frames[i].types[name]; ok {
			return t, true
		}
	}
	return typelattice.DataType{}, false
}

// Iter enumerates every visible binding, outermost frame first and
// innermost last, in a stable per-frame insertion order.
func (s *Scope) Iter() []Binding {
	var out []Binding
	for _, f := range s.frames {
		for _, name := range f.order {
			out = append(out, Binding{Name: name, Type: f.types[name]})
		}
	}
	return out
}

// Intersects reports whether any visible binding's type is admitted by
// constraints.
func (s *Scope) Intersects(constraints typelattice.TypeConstraints) bool {
	for _, f := range s.frames {
		for _, name := range f.order {
			if constraints.Has(f.types[name]) {
				return true
			}
		}
	}
	return false
}

// RNG is the minimal random source ChooseMatching needs.
type RNG interface {
	IntN(n int) int
}

// ChooseMatching returns one binding, chosen with uniform probability,
// among the visible bindings whose type is admitted by constraints. The
// caller must first establish non-emptiness via Intersects; calling this
// with no matching binding is a programming error.
func (s *Scope) ChooseMatching(rng RNG, constraints typelattice.TypeConstraints) Binding {
	var matches []Binding
	for _, b := range s.Iter() {
		if constraints.Has(b.Type) {
			matches = append(matches, b)
		}
	}
	if len(matches) == 0 {
		panic("scope: ChooseMatching found no visible binding for the given constraints")
	}
	return matches[rng.IntN(len(matches))]
}
