package recondition

import (
	"github.com/gogpu/wgslsmith/ast"
	"github.com/gogpu/wgslsmith/typelattice"
)

// intMin is i32's minimum value; dividing or modding it by -1 overflows.
const intMin int32 = -1 << 31

func varExpr(t typelattice.DataType, name string) *ast.ExprNode {
	return &ast.ExprNode{Type: t, Expr: &ast.VarExpr{Name: name}}
}

func eq(l, r *ast.ExprNode) *ast.ExprNode {
	return &ast.ExprNode{Type: typelattice.NewScalar(typelattice.Bool), Expr: &ast.BinOpExpr{Op: ast.Eq, Left: l, Right: r}}
}

func and(l, r *ast.ExprNode) *ast.ExprNode {
	return &ast.ExprNode{Type: typelattice.NewScalar(typelattice.Bool), Expr: &ast.BinOpExpr{Op: ast.LogAnd, Left: l, Right: r}}
}

func intLit(v int32) *ast.ExprNode {
	return &ast.ExprNode{Type: typelattice.NewScalar(typelattice.I32), Expr: &ast.LitExpr{Lit: &ast.IntLit{Value: v}}}
}

func uintLit(v uint32) *ast.ExprNode {
	return &ast.ExprNode{Type: typelattice.NewScalar(typelattice.U32), Expr: &ast.LitExpr{Lit: &ast.UIntLit{Value: v}}}
}

func guard(cond *ast.ExprNode, result *ast.ExprNode) ast.Statement {
	return &ast.IfStmt{
		Condition: cond,
		Body:      []ast.Statement{&ast.ReturnStmt{Value: result}},
	}
}

// helperFnDecl builds the canonical definition of one of the four fixed
// safe-arithmetic helpers. Bodies are hand-built rather than produced by
// the generator: they are trusted primitives the rewrite rules call into,
// not samples from the admission table.
func helperFnDecl(name string) *ast.FnDecl {
	switch name {
	case "SAFE_DIV_I32":
		t := typelattice.NewScalar(typelattice.I32)
		a, b := varExpr(t, "a"), varExpr(t, "b")
		return &ast.FnDecl{
			Name:       name,
			Params:     []ast.Param{{Name: "a", Type: t}, {Name: "b", Type: t}},
			HasResult:  true,
			ResultType: t,
			Body: []ast.Statement{
				guard(eq(b, intLit(0)), a),
				guard(and(eq(a, intLit(intMin)), eq(b, intLit(-1))), a),
				&ast.ReturnStmt{Value: &ast.ExprNode{Type: t, Expr: &ast.BinOpExpr{Op: ast.Divide, Left: a, Right: b}}},
			},
		}
	case "SAFE_DIV_U32":
		t := typelattice.NewScalar(typelattice.U32)
		a, b := varExpr(t, "a"), varExpr(t, "b")
		return &ast.FnDecl{
			Name:       name,
			Params:     []ast.Param{{Name: "a", Type: t}, {Name: "b", Type: t}},
			HasResult:  true,
			ResultType: t,
			Body: []ast.Statement{
				guard(eq(b, uintLit(0)), a),
				&ast.ReturnStmt{Value: &ast.ExprNode{Type: t, Expr: &ast.BinOpExpr{Op: ast.Divide, Left: a, Right: b}}},
			},
		}
	case "SAFE_MOD_I32":
		t := typelattice.NewScalar(typelattice.I32)
		a, b := varExpr(t, "a"), varExpr(t, "b")
		return &ast.FnDecl{
			Name:       name,
			Params:     []ast.Param{{Name: "a", Type: t}, {Name: "b", Type: t}},
			HasResult:  true,
			ResultType: t,
			Body: []ast.Statement{
				guard(eq(b, intLit(0)), intLit(0)),
				guard(and(eq(a, intLit(intMin)), eq(b, intLit(-1))), intLit(0)),
				&ast.ReturnStmt{Value: &ast.ExprNode{Type: t, Expr: &ast.BinOpExpr{Op: ast.Mod, Left: a, Right: b}}},
			},
		}
	case "SAFE_MOD_U32":
		t := typelattice.NewScalar(typelattice.U32)
		a, b := varExpr(t, "a"), varExpr(t, "b")
		return &ast.FnDecl{
			Name:       name,
			Params:     []ast.Param{{Name: "a", Type: t}, {Name: "b", Type: t}},
			HasResult:  true,
			ResultType: t,
			Body: []ast.Statement{
				guard(eq(b, uintLit(0)), uintLit(0)),
				&ast.ReturnStmt{Value: &ast.ExprNode{Type: t, Expr: &ast.BinOpExpr{Op: ast.Mod, Left: a, Right: b}}},
			},
		}
	default:
		panic("recondition: unknown helper name " + name)
	}
}
