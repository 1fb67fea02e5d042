// Package writer serializes a generator AST Module into deterministic
// WGSL-family source text.
//
// Every binary and unary operator expression is written fully parenthesized
// ("(a + b)", "-(a)"): the generator never needs to reason about operator
// precedence when re-reading its own output, and the paired parser (see
// package parser) can therefore stay a plain recursive-descent grammar with
// no precedence-climbing table. Indentation uses one 4-space increment per
// nested block, matching the style of this module's sibling backends.
// Output always ends with exactly one trailing newline and no trailing
// whitespace on any line.
package writer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/wgslsmith/ast"
)

// Writer accumulates WGSL-family source text for a single Module.
type Writer struct {
	out    strings.Builder
	indent int
}

// Write renders m to source text.
func Write(m *ast.Module) string {
	w := &Writer{}
	w.writeModule(m)
	return w.out.String()
}

func (w *Writer) writeModule(m *ast.Module) {
	for i, fn := range m.Functions {
		if i > 0 {
			w.out.WriteByte('\n')
		}
		w.writeFunction(fn)
	}
}

func (w *Writer) writeIndent() {
	for i := 0; i < w.indent; i++ {
		w.out.WriteString("    ")
	}
}

func (w *Writer) writeLine(format string, args ...any) {
	w.writeIndent()
	if len(args) == 0 {
		w.out.WriteString(format)
	} else {
		fmt.Fprintf(&w.out, format, args...)
	}
	w.out.WriteByte('\n')
}

func (w *Writer) pushIndent() { w.indent++ }

func (w *Writer) popIndent() {
	if w.indent > 0 {
		w.indent--
	}
}

func (w *Writer) writeFunction(fn *ast.FnDecl) {
	var sig strings.Builder
	sig.WriteString("fn ")
	sig.WriteString(fn.Name)
	sig.WriteByte('(')
	for i, p := range fn.Params {
		if i > 0 {
			sig.WriteString(", ")
		}
		sig.WriteString(p.Name)
		sig.WriteString(": ")
		sig.WriteString(p.Type.String())
	}
	sig.WriteByte(')')
	if fn.HasResult {
		sig.WriteString(" -> ")
		sig.WriteString(fn.ResultType.String())
	}
	sig.WriteString(" {")
	w.writeLine("%s", sig.String())

	w.pushIndent()
	for _, s := range fn.Body {
		w.writeStmt(s)
	}
	w.popIndent()

	w.writeLine("}")
}

func (w *Writer) writeBlock(body []ast.Statement) {
	w.pushIndent()
	for _, s := range body {
		w.writeStmt(s)
	}
	w.popIndent()
}

func (w *Writer) writeStmt(s ast.Statement) {
	switch s := s.(type) {
	case *ast.LetDeclStmt:
		w.writeLine("let %s = %s;", s.Name, w.expr(s.Init))
	case *ast.VarDeclStmt:
		w.writeLine("var %s = %s;", s.Name, w.expr(s.Init))
	case *ast.AssignmentStmt:
		w.writeLine("%s = %s;", w.lhs(s.Lhs), w.expr(s.Rhs))
	case *ast.CompoundStmt:
		w.writeLine("{")
		w.writeBlock(s.Statements)
		w.writeLine("}")
	case *ast.IfStmt:
		w.writeIf(s)
	case *ast.ReturnStmt:
		if s.Value != nil {
			w.writeLine("return %s;", w.expr(s.Value))
		} else {
			w.writeLine("return;")
		}
	case *ast.LoopStmt:
		w.writeLine("loop {")
		w.writeBlock(s.Body)
		w.writeLine("}")
	case *ast.BreakStmt:
		w.writeLine("break;")
	case *ast.SwitchStmt:
		w.writeSwitch(s)
	case *ast.ForLoopStmt:
		w.writeFor(s)
	default:
		panic(fmt.Sprintf("writer: unhandled statement type %T", s))
	}
}

// writeIf writes the `if (cond) { ... }` form, followed by a chained
// `else if`/`else` on the same closing brace line, per spec §4.3.
func (w *Writer) writeIf(s *ast.IfStmt) {
	w.writeLine("if (%s) {", w.expr(s.Condition))
	w.writeBlock(s.Body)

	switch e := s.Else.(type) {
	case nil:
		w.writeLine("}")
	case *ast.ElseBlock:
		w.writeLine("} else {")
		w.writeBlock(e.Body)
		w.writeLine("}")
	case *ast.ElseIf:
		w.writeIndent()
		w.out.WriteString("} else ")
		w.writeInlineIf(e.If)
	default:
		panic(fmt.Sprintf("writer: unhandled else type %T", e))
	}
}

// writeInlineIf writes an `if (...) { ... }` chain that continues an
// existing line (used for else-if chaining).
func (w *Writer) writeInlineIf(s *ast.IfStmt) {
	fmt.Fprintf(&w.out, "if (%s) {\n", w.expr(s.Condition))
	w.writeBlock(s.Body)

	switch e := s.Else.(type) {
	case nil:
		w.writeLine("}")
	case *ast.ElseBlock:
		w.writeLine("} else {")
		w.writeBlock(e.Body)
		w.writeLine("}")
	case *ast.ElseIf:
		w.writeIndent()
		w.out.WriteString("} else ")
		w.writeInlineIf(e.If)
	default:
		panic(fmt.Sprintf("writer: unhandled else type %T", e))
	}
}

func (w *Writer) writeSwitch(s *ast.SwitchStmt) {
	w.writeLine("switch (%s) {", w.expr(s.Selector))
	w.pushIndent()
	for _, c := range s.Cases {
		selectors := make([]string, len(c.Selectors))
		for i, sel := range c.Selectors {
			selectors[i] = w.expr(sel)
		}
		w.writeLine("case %s: {", strings.Join(selectors, ", "))
		w.writeBlock(c.Body)
		w.writeLine("}")
	}
	w.writeLine("default: {")
	w.writeBlock(s.Default)
	w.writeLine("}")
	w.popIndent()
	w.writeLine("}")
}

func (w *Writer) writeFor(s *ast.ForLoopStmt) {
	var header strings.Builder
	header.WriteString("for (")
	if s.Header.Init != nil {
		fmt.Fprintf(&header, "var %s = %s", s.Header.Init.Name, w.expr(s.Header.Init.Init))
	}
	header.WriteString("; ")
	if s.Header.Condition != nil {
		header.WriteString(w.expr(s.Header.Condition))
	}
	header.WriteString("; ")
	if s.Header.Update != nil {
		fmt.Fprintf(&header, "%s = %s", w.lhs(s.Header.Update.Lhs), w.expr(s.Header.Update.Rhs))
	}
	header.WriteString(") {")
	w.writeLine("%s", header.String())
	w.writeBlock(s.Body)
	w.writeLine("}")
}

func (w *Writer) lhs(l ast.Lhs) string {
	switch l := l.(type) {
	case *ast.PhonyLhs:
		return "_"
	case *ast.ExprLhs:
		var sb strings.Builder
		sb.WriteString(l.Expr.Name)
		for _, p := range l.Expr.Postfixes {
			sb.WriteString(w.postfix(p))
		}
		return sb.String()
	default:
		panic(fmt.Sprintf("writer: unhandled lhs type %T", l))
	}
}

func (w *Writer) postfix(p ast.Postfix) string {
	switch p := p.(type) {
	case *ast.ArrayIndexPostfix:
		return "[" + w.expr(p.Index) + "]"
	case *ast.MemberPostfix:
		return "." + p.Name
	default:
		panic(fmt.Sprintf("writer: unhandled postfix type %T", p))
	}
}

func (w *Writer) expr(n *ast.ExprNode) string {
	switch e := n.Expr.(type) {
	case *ast.LitExpr:
		return w.lit(e.Lit)
	case *ast.TypeConsExpr:
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			args[i] = w.expr(a)
		}
		return e.Type.String() + "(" + strings.Join(args, ", ") + ")"
	case *ast.VarExpr:
		return e.Name
	case *ast.PostfixExpr:
		return w.expr(e.Expr) + w.postfix(e.Postfix)
	case *ast.UnOpExpr:
		return unOpSymbol(e.Op) + "(" + w.expr(e.Expr) + ")"
	case *ast.BinOpExpr:
		return "(" + w.expr(e.Left) + " " + binOpSymbol(e.Op) + " " + w.expr(e.Right) + ")"
	case *ast.FnCallExpr:
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			args[i] = w.expr(a)
		}
		return e.Name + "(" + strings.Join(args, ", ") + ")"
	case *ast.BitcastExpr:
		return "bitcast<" + e.Target.String() + ">(" + w.expr(e.Expr) + ")"
	default:
		panic(fmt.Sprintf("writer: unhandled expr type %T", e))
	}
}

func (w *Writer) lit(l ast.Lit) string {
	switch l := l.(type) {
	case *ast.BoolLit:
		return strconv.FormatBool(l.Value)
	case *ast.IntLit:
		return strconv.FormatInt(int64(l.Value), 10) + "i"
	case *ast.UIntLit:
		return strconv.FormatUint(uint64(l.Value), 10) + "u"
	default:
		panic(fmt.Sprintf("writer: unhandled lit type %T", l))
	}
}

func unOpSymbol(op ast.UnOp) string {
	switch op {
	case ast.Neg:
		return "-"
	case ast.Not:
		return "!"
	case ast.BitNot:
		return "~"
	default:
		panic(fmt.Sprintf("writer: unhandled UnOp %d", op))
	}
}

func binOpSymbol(op ast.BinOp) string {
	switch op {
	case ast.Plus:
		return "+"
	case ast.Minus:
		return "-"
	case ast.Times:
		return "*"
	case ast.Divide:
		return "/"
	case ast.Mod:
		return "%"
	case ast.BitAnd:
		return "&"
	case ast.BitOr:
		return "|"
	case ast.BitXor:
		return "^"
	case ast.LShift:
		return "<<"
	case ast.RShift:
		return ">>"
	case ast.LogAnd:
		return "&&"
	case ast.LogOr:
		return "||"
	case ast.Eq:
		return "=="
	case ast.Neq:
		return "!="
	case ast.Lt:
		return "<"
	case ast.Le:
		return "<="
	case ast.Gt:
		return ">"
	case ast.Ge:
		return ">="
	default:
		panic(fmt.Sprintf("writer: unhandled BinOp %d", op))
	}
}
