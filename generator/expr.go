package generator

import (
	"github.com/sirupsen/logrus"

	"github.com/gogpu/wgslsmith/ast"
	"github.com/gogpu/wgslsmith/scope"
	"github.com/gogpu/wgslsmith/typelattice"
)

// exprProduction names one of gen_expr's five candidate productions.
type exprProduction int

const (
	prodLit exprProduction = iota
	prodTypeCons
	prodUnOp
	prodBinOp
	prodVar
)

// GenExpr produces a well-typed expression admitted by constraints at the
// current depth, choosing uniformly among whichever of Lit, TypeCons, UnOp,
// BinOp, and Var the admission table allows. If depth has exhausted every
// recursive production and neither Lit nor TypeCons applies either, it
// widens to the full Scalar domain and emits a literal — the only escape
// hatch, and one that every call site reachable from this package keeps
// unreachable by construction (constraints here are always a subset of
// Scalar ∪ Vec).
func (g *Generator) GenExpr(sc *scope.Scope, constraints typelattice.TypeConstraints) *ast.ExprNode {
	var candidates []exprProduction

	if constraints.Intersects(typelattice.Scalar) {
		candidates = append(candidates, prodLit)
	}
	if constraints.Intersects(typelattice.Vec) {
		candidates = append(candidates, prodTypeCons)
	}
	if g.exprDepth < g.opts.MaxExprDepth {
		candidates = append(candidates, prodUnOp)
		if constraints.Intersects(typelattice.Scalar.Union(typelattice.VecInt)) {
			candidates = append(candidates, prodBinOp)
		}
		if sc.Intersects(constraints) {
			candidates = append(candidates, prodVar)
		}
	}

	if len(candidates) == 0 {
		g.debugf(logrus.Fields{"depth": g.exprDepth}, "admission set empty, widening to Scalar for a literal fallback")
		return g.genLitExpr(typelattice.Scalar)
	}

	switch candidates[g.rng.IntN(len(candidates))] {
	case prodLit:
		return g.genLitExpr(constraints)
	case prodTypeCons:
		return g.genTypeConsExpr(sc, constraints)
	case prodUnOp:
		return g.genUnOpExpr(sc, constraints)
	case prodBinOp:
		return g.genBinOpExpr(sc, constraints)
	case prodVar:
		return g.genVarExpr(sc, constraints)
	default:
		panic("generator: unreachable expression production")
	}
}

// genLitExpr selects a concrete scalar type from constraints ∩ Scalar and
// produces a uniformly random literal of that type.
func (g *Generator) genLitExpr(constraints typelattice.TypeConstraints) *ast.ExprNode {
	t := constraints.Intersection(typelattice.Scalar).Select(g.rng)
	return g.genLitOfType(t)
}

// genLitOfType produces a literal of the given scalar DataType: a uniform
// coin flip for bool, and a full-range uniform bit pattern for i32/u32.
func (g *Generator) genLitOfType(t typelattice.DataType) *ast.ExprNode {
	var lit ast.Lit
	switch t.Scalar() {
	case typelattice.Bool:
		lit = &ast.BoolLit{Value: g.rng.IntN(2) == 1}
	case typelattice.I32:
		lit = &ast.IntLit{Value: int32(g.rng.Uint32())}
	case typelattice.U32:
		lit = &ast.UIntLit{Value: g.rng.Uint32()}
	default:
		panic("generator: genLitOfType called with a vector DataType")
	}
	return &ast.ExprNode{Type: t, Expr: &ast.LitExpr{Lit: lit}}
}

// genTypeConsExpr selects a concrete vecN<T> from constraints ∩ Vec and
// recursively generates its N elements under constraint {Scalar(T)}. Per
// the source material this recursion does not count against expression
// depth: a type constructor's arguments are no more "nested" than a
// literal's bit pattern is.
func (g *Generator) genTypeConsExpr(sc *scope.Scope, constraints typelattice.TypeConstraints) *ast.ExprNode {
	t := constraints.Intersection(typelattice.Vec).Select(g.rng)
	elemConstraint := typelattice.FromDataType(typelattice.NewScalar(t.Scalar()))

	args := make([]*ast.ExprNode, t.N())
	for i := range args {
		args[i] = g.GenExpr(sc, elemConstraint)
	}

	return &ast.ExprNode{Type: t, Expr: &ast.TypeConsExpr{Type: t, Args: args}}
}

type unOpInfo struct {
	op     ast.UnOp
	domain typelattice.TypeConstraints
}

func unOpTable() []unOpInfo {
	return []unOpInfo{
		{ast.Neg, typelattice.I32Constraint.Union(typelattice.VecI32)},
		{ast.Not, typelattice.BoolConstraint.Union(typelattice.VecBool)},
		{ast.BitNot, typelattice.Int.Union(typelattice.VecInt)},
	}
}

// genUnOpExpr selects uniformly among the unary operators whose result
// domain intersects constraints, then recurses on the operand with the
// narrowed constraint constraints ∩ domain(op). Result type equals operand
// type.
func (g *Generator) genUnOpExpr(sc *scope.Scope, constraints typelattice.TypeConstraints) *ast.ExprNode {
	var admitted []unOpInfo
	for _, o := range unOpTable() {
		if o.domain.Intersects(constraints) {
			admitted = append(admitted, o)
		}
	}
	chosen := admitted[g.rng.IntN(len(admitted))]

	g.exprDepth++
	defer func() { g.exprDepth-- }()

	operand := g.GenExpr(sc, constraints.Intersection(chosen.domain))
	return &ast.ExprNode{Type: operand.Type, Expr: &ast.UnOpExpr{Op: chosen.op, Expr: operand}}
}

type binOpInfo struct {
	op     ast.BinOp
	domain typelattice.TypeConstraints
}

// binOpTable returns the twelve binary operators paired with their
// admission domain. allowBooleanBitwise widens BitAnd/BitOr to also accept
// boolean operands — off by default per the conservative exclusion this
// package's Options document.
func binOpTable(allowBooleanBitwise bool) []binOpInfo {
	intDomain := typelattice.Int.Union(typelattice.VecInt)
	bitwiseDomain := intDomain
	if allowBooleanBitwise {
		bitwiseDomain = bitwiseDomain.Union(typelattice.BoolConstraint).Union(typelattice.VecBool)
	}

	return []binOpInfo{
		{ast.Plus, intDomain},
		{ast.Minus, intDomain},
		{ast.Times, intDomain},
		{ast.Divide, intDomain},
		{ast.Mod, intDomain},
		{ast.BitAnd, bitwiseDomain},
		{ast.BitOr, bitwiseDomain},
		{ast.BitXor, intDomain},
		{ast.LShift, intDomain},
		{ast.RShift, intDomain},
		{ast.LogAnd, typelattice.BoolConstraint},
		{ast.LogOr, typelattice.BoolConstraint},
	}
}

// genBinOpExpr selects uniformly among the binary operators admitted by
// constraints, generates the left operand under the narrowed domain, then
// generates the right operand under the operator-specific rule: shifts take
// a U32 (or vecN<U32>, matching the left operand's arity) right-hand side,
// every other operator requires an identical DataType on both sides. Result
// type equals the left operand's type.
func (g *Generator) genBinOpExpr(sc *scope.Scope, constraints typelattice.TypeConstraints) *ast.ExprNode {
	var admitted []binOpInfo
	for _, o := range binOpTable(g.opts.AllowBooleanBitwiseOps) {
		if o.domain.Intersects(constraints) {
			admitted = append(admitted, o)
		}
	}
	chosen := admitted[g.rng.IntN(len(admitted))]

	g.exprDepth++
	defer func() { g.exprDepth-- }()

	left := g.GenExpr(sc, constraints.Intersection(chosen.domain))

	var right *ast.ExprNode
	switch chosen.op {
	case ast.LShift, ast.RShift:
		if left.Type.IsVector() {
			right = g.GenExpr(sc, typelattice.FromDataType(typelattice.NewVector(left.Type.N(), typelattice.U32)))
		} else {
			right = g.GenExpr(sc, typelattice.U32Constraint)
		}
	default:
		right = g.GenExpr(sc, typelattice.FromDataType(left.Type))
	}

	return &ast.ExprNode{Type: left.Type, Expr: &ast.BinOpExpr{Op: chosen.op, Left: left, Right: right}}
}

// genVarExpr samples uniformly among the visible bindings admitted by
// constraints.
func (g *Generator) genVarExpr(sc *scope.Scope, constraints typelattice.TypeConstraints) *ast.ExprNode {
	b := sc.ChooseMatching(g.rng, constraints)
	return &ast.ExprNode{Type: b.Type, Expr: &ast.VarExpr{Name: b.Name}}
}
