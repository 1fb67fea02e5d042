// Package recondition rewrites a generated module so that no operator in
// it can invoke undefined behavior: integer division and modulo by zero
// (and the signed INT_MIN/-1 overflow case) are routed through injected
// SAFE_DIV_*/SAFE_MOD_* helper functions, shift amounts are masked to the
// operand's bit width, and signed add/subtract/multiply/negate are
// performed in the unsigned domain and bitcast back, which is exactly
// two's-complement wraparound.
//
// Recondition is a pure, immutable rewrite: it builds a fresh Module and
// never mutates its input, matching the ownership discipline documented on
// package ast. Running it twice produces byte-identical output to running
// it once — every rewrite rule is gated on a property (an operator's
// signedness, a shift amount's having already been masked) that the
// rewrite's own output no longer has.
package recondition

import (
	"github.com/sirupsen/logrus"

	"github.com/gogpu/wgslsmith/ast"
	"github.com/gogpu/wgslsmith/typelattice"
)

// helperOrder is the fixed emission order for injected helpers: every
// helper a rewritten function calls must appear ahead of it in the module.
var helperOrder = []string{"SAFE_DIV_I32", "SAFE_DIV_U32", "SAFE_MOD_I32", "SAFE_MOD_U32"}

func isHelperName(name string) bool {
	for _, h := range helperOrder {
		if h == name {
			return true
		}
	}
	return false
}

type reconditioner struct {
	used map[string]bool
	log  *logrus.Entry // nil when no Logger was configured
}

// Recondition returns a rewritten copy of m. Any of the four fixed helper
// functions a rewrite needs are injected once, ahead of every other
// function. If m already carries one of those helpers (e.g. it is itself
// the output of a prior Recondition call), its body is replaced by the
// canonical definition rather than duplicated, which is what keeps the
// rewrite idempotent at the module level too.
func Recondition(m *ast.Module) *ast.Module {
	return ReconditionWithLogger(m, nil)
}

// ReconditionWithLogger behaves exactly like Recondition, but additionally
// traces each rewrite firing at Debug level through logger. A nil logger
// disables tracing entirely, so ReconditionWithLogger(m, nil) and
// Recondition(m) do identical work.
func ReconditionWithLogger(m *ast.Module, logger *logrus.Logger) *ast.Module {
	r := &reconditioner{used: map[string]bool{}}
	if logger != nil {
		r.log = logger.WithField("component", "recondition")
	}

	rewritten := make([]*ast.FnDecl, 0, len(m.Functions))
	for _, fn := range m.Functions {
		if isHelperName(fn.Name) {
			r.used[fn.Name] = true
			continue
		}
		rewritten = append(rewritten, r.reconditionFn(fn))
	}

	out := make([]*ast.FnDecl, 0, len(rewritten)+len(helperOrder))
	for _, name := range helperOrder {
		if r.used[name] {
			r.debugf(logrus.Fields{"helper": name}, "injecting safe-arithmetic helper")
			out = append(out, helperFnDecl(name))
		}
	}
	out = append(out, rewritten...)

	return &ast.Module{Functions: out}
}

// debugf logs msg at Debug level with fields, a no-op when no Logger was
// configured so call sites never need their own nil check.
func (r *reconditioner) debugf(fields logrus.Fields, msg string) {
	if r.log == nil {
		return
	}
	r.log.WithFields(fields).Debug(msg)
}

func (r *reconditioner) reconditionFn(fn *ast.FnDecl) *ast.FnDecl {
	return &ast.FnDecl{
		Name:       fn.Name,
		Params:     fn.Params,
		HasResult:  fn.HasResult,
		ResultType: fn.ResultType,
		Body:       r.stmts(fn.Body),
	}
}

func (r *reconditioner) stmts(in []ast.Statement) []ast.Statement {
	out := make([]ast.Statement, len(in))
	for i, s := range in {
		out[i] = r.stmt(s)
	}
	return out
}

func (r *reconditioner) stmt(s ast.Statement) ast.Statement {
	switch s := s.(type) {
	case *ast.LetDeclStmt:
		return &ast.LetDeclStmt{Name: s.Name, Init: r.expr(s.Init)}
	case *ast.VarDeclStmt:
		return &ast.VarDeclStmt{Name: s.Name, Init: r.expr(s.Init)}
	case *ast.AssignmentStmt:
		return &ast.AssignmentStmt{Lhs: r.lhs(s.Lhs), Rhs: r.expr(s.Rhs)}
	case *ast.CompoundStmt:
		return &ast.CompoundStmt{Statements: r.stmts(s.Statements)}
	case *ast.IfStmt:
		return &ast.IfStmt{Condition: r.expr(s.Condition), Body: r.stmts(s.Body), Else: r.elseClause(s.Else)}
	case *ast.ReturnStmt:
		if s.Value == nil {
			return &ast.ReturnStmt{}
		}
		return &ast.ReturnStmt{Value: r.expr(s.Value)}
	case *ast.LoopStmt:
		return &ast.LoopStmt{Body: r.stmts(s.Body)}
	case *ast.BreakStmt:
		return s
	case *ast.SwitchStmt:
		cases := make([]ast.SwitchCase, len(s.Cases))
		for i, c := range s.Cases {
			selectors := make([]*ast.ExprNode, len(c.Selectors))
			for j, sel := range c.Selectors {
				selectors[j] = r.expr(sel)
			}
			cases[i] = ast.SwitchCase{Selectors: selectors, Body: r.stmts(c.Body)}
		}
		return &ast.SwitchStmt{Selector: r.expr(s.Selector), Cases: cases, Default: r.stmts(s.Default)}
	case *ast.ForLoopStmt:
		header := ast.ForLoopHeader{}
		if s.Header.Init != nil {
			header.Init = r.stmt(s.Header.Init).(*ast.VarDeclStmt)
		}
		if s.Header.Condition != nil {
			header.Condition = r.expr(s.Header.Condition)
		}
		if s.Header.Update != nil {
			header.Update = r.stmt(s.Header.Update).(*ast.AssignmentStmt)
		}
		return &ast.ForLoopStmt{Header: header, Body: r.stmts(s.Body)}
	default:
		panic("recondition: unhandled statement type")
	}
}

func (r *reconditioner) elseClause(e ast.Else) ast.Else {
	switch e := e.(type) {
	case nil:
		return nil
	case *ast.ElseBlock:
		return &ast.ElseBlock{Body: r.stmts(e.Body)}
	case *ast.ElseIf:
		return &ast.ElseIf{If: r.stmt(e.If).(*ast.IfStmt)}
	default:
		panic("recondition: unhandled else type")
	}
}

func (r *reconditioner) lhs(l ast.Lhs) ast.Lhs {
	switch l := l.(type) {
	case *ast.PhonyLhs:
		return l
	case *ast.ExprLhs:
		postfixes := make([]ast.Postfix, len(l.Expr.Postfixes))
		for i, p := range l.Expr.Postfixes {
			postfixes[i] = r.postfix(p)
		}
		return &ast.ExprLhs{Expr: ast.LhsExpr{Name: l.Expr.Name, Postfixes: postfixes}}
	default:
		panic("recondition: unhandled lhs type")
	}
}

func (r *reconditioner) postfix(p ast.Postfix) ast.Postfix {
	switch p := p.(type) {
	case *ast.ArrayIndexPostfix:
		return &ast.ArrayIndexPostfix{Index: r.expr(p.Index)}
	case *ast.MemberPostfix:
		return p
	default:
		panic("recondition: unhandled postfix type")
	}
}

// expr rewrites n in post-order: children are reconditioned first, then
// the resulting node itself is checked against the rewrite table.
func (r *reconditioner) expr(n *ast.ExprNode) *ast.ExprNode {
	switch e := n.Expr.(type) {
	case *ast.LitExpr:
		return n
	case *ast.VarExpr:
		return n
	case *ast.TypeConsExpr:
		args := make([]*ast.ExprNode, len(e.Args))
		for i, a := range e.Args {
			args[i] = r.expr(a)
		}
		return &ast.ExprNode{Type: n.Type, Expr: &ast.TypeConsExpr{Type: e.Type, Args: args}}
	case *ast.PostfixExpr:
		return &ast.ExprNode{Type: n.Type, Expr: &ast.PostfixExpr{Expr: r.expr(e.Expr), Postfix: r.postfix(e.Postfix)}}
	case *ast.FnCallExpr:
		args := make([]*ast.ExprNode, len(e.Args))
		for i, a := range e.Args {
			args[i] = r.expr(a)
		}
		return &ast.ExprNode{Type: n.Type, Expr: &ast.FnCallExpr{Name: e.Name, Args: args}}
	case *ast.BitcastExpr:
		return &ast.ExprNode{Type: n.Type, Expr: &ast.BitcastExpr{Target: e.Target, Expr: r.expr(e.Expr)}}
	case *ast.UnOpExpr:
		operand := r.expr(e.Expr)
		if e.Op == ast.Neg {
			return r.rewriteNeg(operand)
		}
		return &ast.ExprNode{Type: n.Type, Expr: &ast.UnOpExpr{Op: e.Op, Expr: operand}}
	case *ast.BinOpExpr:
		left := r.expr(e.Left)
		right := r.expr(e.Right)
		switch e.Op {
		case ast.Divide:
			return r.rewriteDivMod(left, right, true)
		case ast.Mod:
			return r.rewriteDivMod(left, right, false)
		case ast.Plus, ast.Minus, ast.Times:
			return r.rewriteArith(e.Op, left, right)
		case ast.LShift, ast.RShift:
			r.debugf(logrus.Fields{"op": e.Op}, "masking shift amount")
			return &ast.ExprNode{Type: left.Type, Expr: &ast.BinOpExpr{Op: e.Op, Left: left, Right: maskShiftAmount(right)}}
		default:
			return &ast.ExprNode{Type: n.Type, Expr: &ast.BinOpExpr{Op: e.Op, Left: left, Right: right}}
		}
	default:
		panic("recondition: unhandled expr type")
	}
}

func componentNames(n uint8) []string {
	return []string{"x", "y", "z", "w"}[:n]
}

func unsignedCounterpart(t typelattice.DataType) typelattice.DataType {
	if t.IsVector() {
		return typelattice.NewVector(t.N(), typelattice.U32)
	}
	return typelattice.NewScalar(typelattice.U32)
}

// uintLiteral builds a UIntLit of value, broadcast across t's arity if t is
// a vector.
func uintLiteral(t typelattice.DataType, value uint32) *ast.ExprNode {
	if !t.IsVector() {
		return &ast.ExprNode{Type: t, Expr: &ast.LitExpr{Lit: &ast.UIntLit{Value: value}}}
	}
	scalarT := typelattice.NewScalar(typelattice.U32)
	args := make([]*ast.ExprNode, t.N())
	for i := range args {
		args[i] = &ast.ExprNode{Type: scalarT, Expr: &ast.LitExpr{Lit: &ast.UIntLit{Value: value}}}
	}
	return &ast.ExprNode{Type: t, Expr: &ast.TypeConsExpr{Type: t, Args: args}}
}

// isUintLiteral reports whether n is exactly the broadcast literal
// uintLiteral(n.Type, value) would build, so maskShiftAmount can recognize
// an already-masked shift amount and leave it alone.
func isUintLiteral(n *ast.ExprNode, value uint32) bool {
	if !n.Type.IsVector() {
		lit, ok := n.Expr.(*ast.LitExpr)
		if !ok {
			return false
		}
		u, ok := lit.Lit.(*ast.UIntLit)
		return ok && u.Value == value
	}
	cons, ok := n.Expr.(*ast.TypeConsExpr)
	if !ok || len(cons.Args) != int(n.Type.N()) {
		return false
	}
	for _, a := range cons.Args {
		lit, ok := a.Expr.(*ast.LitExpr)
		if !ok {
			return false
		}
		u, ok := lit.Lit.(*ast.UIntLit)
		if !ok || u.Value != value {
			return false
		}
	}
	return true
}

// shiftMask is bitwidth(u32) - 1: masking a shift amount with it caps the
// amount to [0, 31], which is exactly the domain where a shift is defined.
const shiftMask = 31

// maskShiftAmount rewrites a shift's right operand to `right & 31u` (or the
// broadcast vector form), unless it already has that exact shape.
func maskShiftAmount(right *ast.ExprNode) *ast.ExprNode {
	if bin, ok := right.Expr.(*ast.BinOpExpr); ok && bin.Op == ast.BitAnd && isUintLiteral(bin.Right, shiftMask) {
		return right
	}
	mask := uintLiteral(right.Type, shiftMask)
	return &ast.ExprNode{Type: right.Type, Expr: &ast.BinOpExpr{Op: ast.BitAnd, Left: right, Right: mask}}
}

// rewriteArith performs a signed +, -, or * in the unsigned domain and
// bitcasts the result back, which two's-complement arithmetic defines as
// wraparound on overflow. Unsigned operands have no such rule and pass
// through unchanged — which is also why a second Recondition pass never
// re-triggers this rule: the rewritten form's inner BinOp operates on
// unsigned operands.
func (r *reconditioner) rewriteArith(op ast.BinOp, left, right *ast.ExprNode) *ast.ExprNode {
	if left.Type.Scalar() != typelattice.I32 {
		return &ast.ExprNode{Type: left.Type, Expr: &ast.BinOpExpr{Op: op, Left: left, Right: right}}
	}
	r.debugf(logrus.Fields{"op": op}, "rewriting signed arithmetic through the unsigned domain")

	uType := unsignedCounterpart(left.Type)
	uLeft := &ast.ExprNode{Type: uType, Expr: &ast.BitcastExpr{Target: uType, Expr: left}}
	uRight := &ast.ExprNode{Type: uType, Expr: &ast.BitcastExpr{Target: uType, Expr: right}}
	uResult := &ast.ExprNode{Type: uType, Expr: &ast.BinOpExpr{Op: op, Left: uLeft, Right: uRight}}
	return &ast.ExprNode{Type: left.Type, Expr: &ast.BitcastExpr{Target: left.Type, Expr: uResult}}
}

// rewriteNeg performs unary negation as `0u - bitcast<u32>(a)`, bitcast back
// to the signed type: WGSL has no unary minus over u32, so subtraction from
// zero stands in for it, and is the same two's-complement identity.
func (r *reconditioner) rewriteNeg(operand *ast.ExprNode) *ast.ExprNode {
	if operand.Type.Scalar() != typelattice.I32 {
		return &ast.ExprNode{Type: operand.Type, Expr: &ast.UnOpExpr{Op: ast.Neg, Expr: operand}}
	}
	r.debugf(nil, "rewriting signed negation through the unsigned domain")

	uType := unsignedCounterpart(operand.Type)
	zero := uintLiteral(uType, 0)
	uOperand := &ast.ExprNode{Type: uType, Expr: &ast.BitcastExpr{Target: uType, Expr: operand}}
	uResult := &ast.ExprNode{Type: uType, Expr: &ast.BinOpExpr{Op: ast.Minus, Left: zero, Right: uOperand}}
	return &ast.ExprNode{Type: operand.Type, Expr: &ast.BitcastExpr{Target: operand.Type, Expr: uResult}}
}

func helperName(kind typelattice.ScalarType, isDiv bool) string {
	switch {
	case isDiv && kind == typelattice.I32:
		return "SAFE_DIV_I32"
	case isDiv && kind == typelattice.U32:
		return "SAFE_DIV_U32"
	case !isDiv && kind == typelattice.I32:
		return "SAFE_MOD_I32"
	default:
		return "SAFE_MOD_U32"
	}
}

// rewriteDivMod replaces a/b or a%b with a call to the fixed-name safe
// helper, dispatching elementwise through per-component calls reassembled
// via a type constructor when the operands are vectors.
func (r *reconditioner) rewriteDivMod(left, right *ast.ExprNode, isDiv bool) *ast.ExprNode {
	name := helperName(left.Type.Scalar(), isDiv)
	r.used[name] = true
	r.debugf(logrus.Fields{"helper": name}, "rewriting division/modulo through a safe helper")

	if !left.Type.IsVector() {
		return &ast.ExprNode{Type: left.Type, Expr: &ast.FnCallExpr{Name: name, Args: []*ast.ExprNode{left, right}}}
	}

	scalarType := typelattice.NewScalar(left.Type.Scalar())
	args := make([]*ast.ExprNode, left.Type.N())
	for i, comp := range componentNames(left.Type.N()) {
		l := &ast.ExprNode{Type: scalarType, Expr: &ast.PostfixExpr{Expr: left, Postfix: &ast.MemberPostfix{Name: comp}}}
		rr := &ast.ExprNode{Type: scalarType, Expr: &ast.PostfixExpr{Expr: right, Postfix: &ast.MemberPostfix{Name: comp}}}
		args[i] = &ast.ExprNode{Type: scalarType, Expr: &ast.FnCallExpr{Name: name, Args: []*ast.ExprNode{l, rr}}}
	}
	return &ast.ExprNode{Type: left.Type, Expr: &ast.TypeConsExpr{Type: left.Type, Args: args}}
}
