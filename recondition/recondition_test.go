package recondition

import (
	"strings"
	"testing"

	"github.com/gogpu/wgslsmith/ast"
	"github.com/gogpu/wgslsmith/typelattice"
	"github.com/gogpu/wgslsmith/writer"
)

func i32(v int32) *ast.ExprNode {
	return &ast.ExprNode{Type: typelattice.NewScalar(typelattice.I32), Expr: &ast.LitExpr{Lit: &ast.IntLit{Value: v}}}
}

func u32(v uint32) *ast.ExprNode {
	return &ast.ExprNode{Type: typelattice.NewScalar(typelattice.U32), Expr: &ast.LitExpr{Lit: &ast.UIntLit{Value: v}}}
}

func moduleWithMainLet(name string, init *ast.ExprNode) *ast.Module {
	return &ast.Module{Functions: []*ast.FnDecl{
		{Name: "main", Body: []ast.Statement{
			&ast.LetDeclStmt{Name: name, Init: init},
			&ast.ReturnStmt{},
		}},
	}}
}

// TestDivisionByZeroRewritten is scenario S4's shape: `let a = 1 / 0;`
// becomes a call to SAFE_DIV_I32(1, 0), and the helper is emitted ahead of
// main.
func TestDivisionByZeroRewritten(t *testing.T) {
	div := &ast.ExprNode{Type: typelattice.NewScalar(typelattice.I32), Expr: &ast.BinOpExpr{Op: ast.Divide, Left: i32(1), Right: i32(0)}}
	m := moduleWithMainLet("a", div)

	out := Recondition(m)

	if len(out.Functions) != 2 || out.Functions[0].Name != "SAFE_DIV_I32" || out.Functions[1].Name != "main" {
		t.Fatalf("expected [SAFE_DIV_I32, main], got %v", fnNames(out))
	}

	letStmt := out.Functions[1].Body[0].(*ast.LetDeclStmt)
	call, ok := letStmt.Init.Expr.(*ast.FnCallExpr)
	if !ok || call.Name != "SAFE_DIV_I32" {
		t.Fatalf("expected a SAFE_DIV_I32 call, got %#v", letStmt.Init.Expr)
	}
	if len(call.Args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(call.Args))
	}
}

// TestShiftAmountMasked is scenario S5: `x << 33u` has its right operand
// rewritten to `33u & 31u`.
func TestShiftAmountMasked(t *testing.T) {
	xType := typelattice.NewScalar(typelattice.I32)
	x := &ast.ExprNode{Type: xType, Expr: &ast.VarExpr{Name: "x"}}
	shift := &ast.ExprNode{Type: xType, Expr: &ast.BinOpExpr{Op: ast.LShift, Left: x, Right: u32(33)}}
	m := moduleWithMainLet("s", shift)

	out := Recondition(m)
	letStmt := out.Functions[0].Body[0].(*ast.LetDeclStmt)
	bin := letStmt.Init.Expr.(*ast.BinOpExpr)

	rightBin, ok := bin.Right.Expr.(*ast.BinOpExpr)
	if !ok || rightBin.Op != ast.BitAnd {
		t.Fatalf("expected shift amount rewritten to a BitAnd, got %#v", bin.Right.Expr)
	}
	maskLit := rightBin.Right.Expr.(*ast.LitExpr).Lit.(*ast.UIntLit)
	if maskLit.Value != 31 {
		t.Fatalf("expected mask literal 31u, got %du", maskLit.Value)
	}
	origLit := rightBin.Left.Expr.(*ast.LitExpr).Lit.(*ast.UIntLit)
	if origLit.Value != 33 {
		t.Fatalf("expected original shift amount 33u preserved, got %du", origLit.Value)
	}
}

// TestReconditionIdempotent is invariant 7: reconditioning an already
// reconditioned module is a no-op at the source-text level.
func TestReconditionIdempotent(t *testing.T) {
	i32T := typelattice.NewScalar(typelattice.I32)
	x := &ast.ExprNode{Type: i32T, Expr: &ast.VarExpr{Name: "x"}}

	div := &ast.ExprNode{Type: i32T, Expr: &ast.BinOpExpr{Op: ast.Divide, Left: x, Right: i32(3)}}
	modE := &ast.ExprNode{Type: i32T, Expr: &ast.BinOpExpr{Op: ast.Mod, Left: x, Right: i32(3)}}
	add := &ast.ExprNode{Type: i32T, Expr: &ast.BinOpExpr{Op: ast.Plus, Left: x, Right: i32(7)}}
	neg := &ast.ExprNode{Type: i32T, Expr: &ast.UnOpExpr{Op: ast.Neg, Expr: x}}
	shift := &ast.ExprNode{Type: i32T, Expr: &ast.BinOpExpr{Op: ast.LShift, Left: x, Right: u32(40)}}

	m := &ast.Module{Functions: []*ast.FnDecl{
		{Name: "main", Params: []ast.Param{{Name: "x", Type: i32T}}, Body: []ast.Statement{
			&ast.LetDeclStmt{Name: "d", Init: div},
			&ast.LetDeclStmt{Name: "m", Init: modE},
			&ast.LetDeclStmt{Name: "a", Init: add},
			&ast.LetDeclStmt{Name: "n", Init: neg},
			&ast.LetDeclStmt{Name: "s", Init: shift},
			&ast.ReturnStmt{},
		}},
	}}

	once := Recondition(m)
	twice := Recondition(once)

	onceSrc := writer.Write(once)
	twiceSrc := writer.Write(twice)
	if onceSrc != twiceSrc {
		t.Fatalf("reconditioning twice is not idempotent:\nonce:\n%s\ntwice:\n%s", onceSrc, twiceSrc)
	}
}

// TestRemoveAccessedVars is scenario S6.
func TestRemoveAccessedVars(t *testing.T) {
	boolT := typelattice.NewScalar(typelattice.Bool)
	i32T := typelattice.NewScalar(typelattice.I32)

	readX := &ast.ExprNode{Type: boolT, Expr: &ast.VarExpr{Name: "x"}}
	readY := &ast.ExprNode{Type: i32T, Expr: &ast.VarExpr{Name: "y"}}

	m := &ast.Module{Functions: []*ast.FnDecl{
		{Name: "main", Body: []ast.Statement{
			&ast.IfStmt{Condition: readX, Body: []ast.Statement{&ast.BreakStmt{}}},
			&ast.SwitchStmt{
				Selector: i32(0),
				Cases: []ast.SwitchCase{
					{Selectors: []*ast.ExprNode{i32(1)}, Body: []ast.Statement{&ast.LetDeclStmt{Name: "t", Init: readY}}},
				},
				Default: []ast.Statement{&ast.ReturnStmt{}},
			},
			&ast.ReturnStmt{},
		}},
	}}

	got := RemoveAccessedVars([]string{"x", "y", "z"}, m)
	if len(got) != 1 || got[0] != "z" {
		t.Fatalf("RemoveAccessedVars = %v, want [z]", got)
	}
}

// TestAssignmentLhsIsNotARead checks the spec's explicit exception: writing
// to a name does not count as reading it.
func TestAssignmentLhsIsNotARead(t *testing.T) {
	m := &ast.Module{Functions: []*ast.FnDecl{
		{Name: "main", Body: []ast.Statement{
			&ast.AssignmentStmt{
				Lhs: &ast.ExprLhs{Expr: ast.LhsExpr{Name: "x"}},
				Rhs: i32(5),
			},
			&ast.ReturnStmt{},
		}},
	}}

	got := RemoveAccessedVars([]string{"x"}, m)
	if len(got) != 1 || got[0] != "x" {
		t.Fatalf("expected x to remain a candidate (assignment LHS is not a read), got %v", got)
	}
}

// TestArrayIndexOnLhsIsARead checks the spec's exception to the exception:
// an index expression on an assignment target is still a read.
func TestArrayIndexOnLhsIsARead(t *testing.T) {
	i32T := typelattice.NewScalar(typelattice.I32)
	idx := &ast.ExprNode{Type: i32T, Expr: &ast.VarExpr{Name: "i"}}
	m := &ast.Module{Functions: []*ast.FnDecl{
		{Name: "main", Body: []ast.Statement{
			&ast.AssignmentStmt{
				Lhs: &ast.ExprLhs{Expr: ast.LhsExpr{Name: "arr", Postfixes: []ast.Postfix{&ast.ArrayIndexPostfix{Index: idx}}}},
				Rhs: i32(5),
			},
			&ast.ReturnStmt{},
		}},
	}}

	got := RemoveAccessedVars([]string{"arr", "i"}, m)
	if len(got) != 1 || got[0] != "arr" {
		t.Fatalf("expected only arr to remain (i is read via the index), got %v", got)
	}
}

func fnNames(m *ast.Module) []string {
	names := make([]string, len(m.Functions))
	for i, f := range m.Functions {
		names[i] = f.Name
	}
	return names
}

func TestHelperBodyRendersValidSource(t *testing.T) {
	for _, name := range helperOrder {
		fn := helperFnDecl(name)
		out := writer.Write(&ast.Module{Functions: []*ast.FnDecl{fn}})
		if !strings.HasPrefix(out, "fn "+name+"(") {
			t.Fatalf("helper %s did not render its own name: %s", name, out)
		}
	}
}
