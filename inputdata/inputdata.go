// Package inputdata synthesizes one concrete literal value per entry-point
// parameter, the small input-data descriptor a harness needs to invoke a
// generated module's entry function without inventing its own literals.
//
// This supplements the distilled core: the original generator's driver
// always paired a generated module with a buffer of literal inputs for its
// entry point, and a module with a non-empty parameter list otherwise has
// no way to be invoked at all.
package inputdata

import (
	"math/rand/v2"

	"github.com/gogpu/wgslsmith/ast"
	"github.com/gogpu/wgslsmith/typelattice"
)

// Value is one synthesized input: the entry-point parameter it is for, and
// the literal expression bound to it.
type Value struct {
	ParamName string
	Type      typelattice.DataType
	Literal   *ast.ExprNode
}

// Generate returns one Value per parameter of m's entry function, in
// parameter order. It panics if m has no entry function — the same
// programming-error-as-panic discipline the rest of this module uses,
// since a driver should never reach this call without having generated (or
// been handed) a module that has one.
func Generate(rng *rand.Rand, m *ast.Module) []Value {
	entry := m.EntryFunction()
	if entry == nil {
		panic("inputdata: module has no entry function")
	}

	out := make([]Value, len(entry.Params))
	for i, p := range entry.Params {
		out[i] = Value{ParamName: p.Name, Type: p.Type, Literal: literalFor(rng, p.Type)}
	}
	return out
}

// literalFor produces one literal expression of t: a uniform random
// scalar, or a vector built from N independently sampled scalar literals.
func literalFor(rng *rand.Rand, t typelattice.DataType) *ast.ExprNode {
	if !t.IsVector() {
		return scalarLiteral(rng, t)
	}

	elemT := typelattice.NewScalar(t.Scalar())
	args := make([]*ast.ExprNode, t.N())
	for i := range args {
		args[i] = scalarLiteral(rng, elemT)
	}
	return &ast.ExprNode{Type: t, Expr: &ast.TypeConsExpr{Type: t, Args: args}}
}

func scalarLiteral(rng *rand.Rand, t typelattice.DataType) *ast.ExprNode {
	var lit ast.Lit
	switch t.Scalar() {
	case typelattice.Bool:
		lit = &ast.BoolLit{Value: rng.IntN(2) == 1}
	case typelattice.I32:
		lit = &ast.IntLit{Value: int32(rng.Uint32())}
	case typelattice.U32:
		lit = &ast.UIntLit{Value: rng.Uint32()}
	default:
		panic("inputdata: scalarLiteral called with a vector DataType")
	}
	return &ast.ExprNode{Type: t, Expr: &ast.LitExpr{Lit: lit}}
}
