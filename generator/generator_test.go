package generator

import (
	"strings"
	"testing"

	"github.com/gogpu/wgslsmith/ast"
	"github.com/gogpu/wgslsmith/scope"
	"github.com/gogpu/wgslsmith/typelattice"
	"github.com/gogpu/wgslsmith/writer"
)

func seeded(seed uint64) Options {
	return Options{Seed: &seed}
}

// TestGenModuleDeterministic is the determinism invariant: two generators
// built from the same seed must produce byte-identical writer output.
func TestGenModuleDeterministic(t *testing.T) {
	g1, _ := New(seeded(0))
	g2, _ := New(seeded(0))

	out1 := writer.Write(g1.GenModule())
	out2 := writer.Write(g2.GenModule())

	if out1 != out2 {
		t.Fatalf("same seed produced different output:\n%s\n---\n%s", out1, out2)
	}
}

// TestGenModuleShapeSeedZero is scenario S1.
func TestGenModuleShapeSeedZero(t *testing.T) {
	g, seed := New(seeded(0))
	if seed != 0 {
		t.Fatalf("resolveSeed changed an explicit seed: got %d", seed)
	}

	out := writer.Write(g.GenModule())
	if !strings.Contains(out, "fn main() {") {
		t.Fatalf("expected output to contain `fn main() {`, got:\n%s", out)
	}
	if !strings.Contains(out, "let ") {
		t.Fatalf("expected at least one let statement, got:\n%s", out)
	}
	if !strings.Contains(out, "return") {
		t.Fatalf("expected at least one return statement, got:\n%s", out)
	}
}

// TestGenExprBoolShape is scenario S2: gen_expr(Bool, depth=0) with seed 42
// must return one of Lit(Bool), UnOp(Not), BinOp(LogAnd|LogOr), or Var, and
// the result type must be exactly Scalar(Bool).
func TestGenExprBoolShape(t *testing.T) {
	g, _ := New(seeded(42))
	sc := scope.New()
	sc.Insert("b0", typelattice.NewScalar(typelattice.Bool))

	n := g.GenExpr(sc, typelattice.BoolConstraint)

	if n.Type != typelattice.NewScalar(typelattice.Bool) {
		t.Fatalf("expected Scalar(Bool), got %v", n.Type)
	}

	switch e := n.Expr.(type) {
	case *ast.LitExpr:
		if _, ok := e.Lit.(*ast.BoolLit); !ok {
			t.Fatalf("Lit production did not produce a BoolLit: %T", e.Lit)
		}
	case *ast.UnOpExpr:
		if e.Op != ast.Not {
			t.Fatalf("UnOp production under Bool constraints chose %v, want Not", e.Op)
		}
	case *ast.BinOpExpr:
		if e.Op != ast.LogAnd && e.Op != ast.LogOr {
			t.Fatalf("BinOp production under Bool constraints chose %v, want LogAnd/LogOr", e.Op)
		}
	case *ast.VarExpr:
		if e.Name != "b0" {
			t.Fatalf("Var production chose %q, want the only visible Bool binding b0", e.Name)
		}
	default:
		t.Fatalf("unexpected expression production %T for Bool constraints", e)
	}
}

// TestGenExprVecI32Shape is scenario S3: gen_expr(VecI32, depth=0) with seed
// 7 and an empty scope must return TypeCons(vecN<I32>, args), each arg
// typed Scalar(I32). Lit cannot fire (VecI32 admits no scalar) and Var
// cannot fire (empty scope); TypeCons, UnOp and BinOp are all admitted at
// depth 0, so the production is whichever of the three seed 7's draw picks.
func TestGenExprVecI32Shape(t *testing.T) {
	g, _ := New(seeded(7))
	sc := scope.New()

	n := g.GenExpr(sc, typelattice.VecI32)

	cons, ok := n.Expr.(*ast.TypeConsExpr)
	if !ok {
		t.Fatalf("expected a TypeConsExpr, got %T", n.Expr)
	}
	if cons.Type.N() < 2 || cons.Type.N() > 4 {
		t.Fatalf("unexpected vector arity %d", cons.Type.N())
	}
	if cons.Type.Scalar() != typelattice.I32 {
		t.Fatalf("expected element scalar I32, got %v", cons.Type.Scalar())
	}
	for i, a := range cons.Args {
		if a.Type != typelattice.NewScalar(typelattice.I32) {
			t.Fatalf("arg %d has type %v, want Scalar(I32)", i, a.Type)
		}
	}
}

// TestGenExprRespectsDepthBound checks the depth bookkeeping invariant 5
// rests on: after every top-level GenExpr call, exprDepth is back at zero,
// so no call leaks depth into the next one.
func TestGenExprRespectsDepthBound(t *testing.T) {
	g, _ := New(seeded(123))
	sc := scope.New()

	for i := 0; i < 500; i++ {
		g.GenExpr(sc, typelattice.Unconstrained)
		if g.exprDepth != 0 {
			t.Fatalf("exprDepth leaked to %d after a top-level GenExpr call", g.exprDepth)
		}
	}
}

// TestGenModuleManySeedsParse is a light-weight stand-in for invariant 2
// (round-trip): every module this package can produce is, at minimum,
// non-empty and begins with a function declaration the Writer can render
// without panicking.
func TestGenModuleManySeedsParse(t *testing.T) {
	for seed := uint64(0); seed < 50; seed++ {
		g, _ := New(seeded(seed))
		out := writer.Write(g.GenModule())
		if !strings.HasPrefix(out, "fn ") {
			t.Fatalf("seed %d: output does not start with a function declaration:\n%s", seed, out)
		}
	}
}

// TestUnOpAndBinOpUniformity is a cheap proxy for invariant 9: over many
// independent draws from a fixed admitted set, no single production should
// dominate or vanish.
func TestUnOpAndBinOpUniformity(t *testing.T) {
	counts := map[string]int{}
	const trials = 20000

	for i := uint64(0); i < trials; i++ {
		g, _ := New(seeded(i))
		sc := scope.New()
		n := g.GenExpr(sc, typelattice.Int)
		switch n.Expr.(type) {
		case *ast.LitExpr:
			counts["lit"]++
		case *ast.UnOpExpr:
			counts["unop"]++
		case *ast.BinOpExpr:
			counts["binop"]++
		case *ast.VarExpr:
			counts["var"]++
		case *ast.TypeConsExpr:
			counts["typecons"]++
		}
	}

	// Var can never fire (empty scope) and TypeCons can never fire (Int
	// admits no vector), so only three productions should appear, each
	// landing somewhere well short of dominating the distribution.
	for _, k := range []string{"lit", "unop", "binop"} {
		frac := float64(counts[k]) / float64(trials)
		if frac < 0.15 || frac > 0.55 {
			t.Fatalf("production %q landed at fraction %.3f (counts=%v), expected roughly uniform over 3 choices", k, frac, counts)
		}
	}
	if counts["var"] != 0 || counts["typecons"] != 0 {
		t.Fatalf("unexpected productions fired for an Int-only constraint with empty scope: %v", counts)
	}
}
