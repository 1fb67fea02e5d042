package scope

import (
	"math/rand/v2"
	"testing"

	"github.com/gogpu/wgslsmith/typelattice"
)

func TestInsertLookup(t *testing.T) {
	s := New()
	s.Insert("x", typelattice.NewScalar(typelattice.I32))

	got, ok := s.Lookup("x")
	if !ok || got != typelattice.NewScalar(typelattice.I32) {
		t.Fatalf("Lookup(x) = %v, %v", got, ok)
	}
	if _, ok := s.Lookup("y"); ok {
		t.Fatal("Lookup(y) should fail on empty binding")
	}
}

func TestRedeclarationPanics(t *testing.T) {
	s := New()
	s.Insert("x", typelattice.NewScalar(typelattice.Bool))

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on redeclaration in the same frame")
		}
	}()
	s.Insert("x", typelattice.NewScalar(typelattice.I32))
}

func TestPushPopShadowing(t *testing.T) {
	s := New()
	s.Insert("x", typelattice.NewScalar(typelattice.I32))

	s.Push()
	s.Insert("x", typelattice.NewScalar(typelattice.Bool))
	got, _ := s.Lookup("x")
	if got != typelattice.NewScalar(typelattice.Bool) {
		t.Fatalf("inner x should shadow outer, got %v", got)
	}
	s.Pop()

	got, _ = s.Lookup("x")
	if got != typelattice.NewScalar(typelattice.I32) {
		t.Fatalf("outer x should be restored after Pop, got %v", got)
	}
}

func TestIterOrderInnermostLast(t *testing.T) {
	s := New()
	s.Insert("a", typelattice.NewScalar(typelattice.I32))
	s.Push()
	s.Insert("b", typelattice.NewScalar(typelattice.Bool))

	names := []string{}
	for _, b := range s.Iter() {
		names = append(names, b.Name)
	}
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("Iter order = %v, want [a b]", names)
	}
}

func TestIntersectsAndChooseMatching(t *testing.T) {
	s := New()
	s.Insert("a", typelattice.NewScalar(typelattice.I32))
	s.Insert("b", typelattice.NewScalar(typelattice.Bool))

	if !s.Intersects(typelattice.BoolConstraint) {
		t.Fatal("expected Bool constraint to intersect scope")
	}
	if s.Intersects(typelattice.VecInt) {
		t.Fatal("did not expect VecInt to intersect scope")
	}

	rng := rand.New(rand.NewPCG(1, 2))
	got := s.ChooseMatching(rng, typelattice.BoolConstraint)
	if got.Name != "b" {
		t.Fatalf("ChooseMatching(Bool) = %q, want b", got.Name)
	}
}

func TestChooseMatchingPanicsWhenEmpty(t *testing.T) {
	s := New()
	s.Insert("a", typelattice.NewScalar(typelattice.I32))

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic when no binding matches")
		}
	}()
	s.ChooseMatching(rand.New(rand.NewPCG(0, 0)), typelattice.BoolConstraint)
}

func TestPopEmptyPanics(t *testing.T) {
	s := &Scope{}
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic popping an empty Scope")
		}
	}()
	s.Pop()
}
