package writer

import (
	"strings"
	"testing"

	"github.com/gogpu/wgslsmith/ast"
	"github.com/gogpu/wgslsmith/typelattice"
)

func lit(v int32) *ast.ExprNode {
	return &ast.ExprNode{Type: typelattice.NewScalar(typelattice.I32), Expr: &ast.LitExpr{Lit: &ast.IntLit{Value: v}}}
}

func TestWriteMinimalMain(t *testing.T) {
	m := &ast.Module{Functions: []*ast.FnDecl{
		{
			Name: "main",
			Body: []ast.Statement{
				&ast.LetDeclStmt{Name: "x0", Init: lit(1)},
				&ast.ReturnStmt{},
			},
		},
	}}

	got := Write(m)
	if !strings.HasPrefix(got, "fn main() {\n") {
		t.Fatalf("expected output to start with `fn main() {`, got %q", got)
	}
	if !strings.Contains(got, "let x0 = 1i;") {
		t.Fatalf("missing let statement, got %q", got)
	}
	if !strings.Contains(got, "return;") {
		t.Fatalf("missing return statement, got %q", got)
	}
	if !strings.HasSuffix(got, "}\n") {
		t.Fatalf("expected a single trailing newline, got %q", got)
	}
	if strings.Contains(got, " \n") {
		t.Fatalf("output has trailing whitespace on a line: %q", got)
	}
}

func TestWriteFunctionWithParamsAndResult(t *testing.T) {
	m := &ast.Module{Functions: []*ast.FnDecl{
		{
			Name:       "f",
			Params:     []ast.Param{{Name: "a", Type: typelattice.NewScalar(typelattice.I32)}},
			HasResult:  true,
			ResultType: typelattice.NewScalar(typelattice.I32),
			Body: []ast.Statement{
				&ast.ReturnStmt{Value: &ast.ExprNode{
					Type: typelattice.NewScalar(typelattice.I32),
					Expr: &ast.VarExpr{Name: "a"},
				}},
			},
		},
	}}

	got := Write(m)
	want := "fn f(a: i32) -> i32 {\n    return a;\n}\n"
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestWriteBinOpFullyParenthesized(t *testing.T) {
	bin := &ast.ExprNode{
		Type: typelattice.NewScalar(typelattice.I32),
		Expr: &ast.BinOpExpr{Op: ast.Plus, Left: lit(1), Right: lit(2)},
	}
	m := &ast.Module{Functions: []*ast.FnDecl{
		{Name: "main", Body: []ast.Statement{&ast.LetDeclStmt{Name: "x0", Init: bin}}},
	}}

	got := Write(m)
	if !strings.Contains(got, "let x0 = (1i + 2i);") {
		t.Fatalf("expected fully parenthesized binop, got %q", got)
	}
}

func TestWriteIfElseIfElseChain(t *testing.T) {
	cond := func() *ast.ExprNode {
		return &ast.ExprNode{Type: typelattice.NewScalar(typelattice.Bool), Expr: &ast.LitExpr{Lit: &ast.BoolLit{Value: true}}}
	}
	inner := &ast.IfStmt{
		Condition: cond(),
		Body:      []ast.Statement{&ast.BreakStmt{}},
		Else:      &ast.ElseBlock{Body: []ast.Statement{&ast.BreakStmt{}}},
	}
	outer := &ast.IfStmt{
		Condition: cond(),
		Body:      []ast.Statement{&ast.BreakStmt{}},
		Else:      &ast.ElseIf{If: inner},
	}
	m := &ast.Module{Functions: []*ast.FnDecl{
		{Name: "main", Body: []ast.Statement{&ast.LoopStmt{Body: []ast.Statement{outer}}}},
	}}

	got := Write(m)
	want := "fn main() {\n" +
		"    loop {\n" +
		"        if (true) {\n" +
		"            break;\n" +
		"        } else if (true) {\n" +
		"            break;\n" +
		"        } else {\n" +
		"            break;\n" +
		"        }\n" +
		"    }\n" +
		"}\n"
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestWriteVecTypeCons(t *testing.T) {
	cons := &ast.ExprNode{
		Type: typelattice.NewVector(3, typelattice.I32),
		Expr: &ast.TypeConsExpr{Type: typelattice.NewVector(3, typelattice.I32), Args: []*ast.ExprNode{lit(1), lit(2), lit(3)}},
	}
	m := &ast.Module{Functions: []*ast.FnDecl{
		{Name: "main", Body: []ast.Statement{&ast.LetDeclStmt{Name: "v", Init: cons}}},
	}}

	got := Write(m)
	if !strings.Contains(got, "let v = vec3<i32>(1i, 2i, 3i);") {
		t.Fatalf("got %q", got)
	}
}

func TestWriteBitcast(t *testing.T) {
	bc := &ast.ExprNode{
		Type: typelattice.NewScalar(typelattice.U32),
		Expr: &ast.BitcastExpr{Target: typelattice.NewScalar(typelattice.U32), Expr: lit(1)},
	}
	m := &ast.Module{Functions: []*ast.FnDecl{
		{Name: "main", Body: []ast.Statement{&ast.LetDeclStmt{Name: "u", Init: bc}}},
	}}

	got := Write(m)
	if !strings.Contains(got, "let u = bitcast<u32>(1i);") {
		t.Fatalf("got %q", got)
	}
}

func TestWriteMultipleFunctionsSeparatedByBlankLine(t *testing.T) {
	m := &ast.Module{Functions: []*ast.FnDecl{
		{Name: "helper", Body: []ast.Statement{&ast.ReturnStmt{}}},
		{Name: "main", Body: []ast.Statement{&ast.ReturnStmt{}}},
	}}

	got := Write(m)
	want := "fn helper() {\n    return;\n}\n\nfn main() {\n    return;\n}\n"
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}
