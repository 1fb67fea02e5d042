package recondition

import "github.com/gogpu/wgslsmith/ast"

// RemoveAccessedVars returns the subset of candidates never read by any
// expression in m. It is named for its result, not its mechanism: nothing
// here removes anything from m — it is a pure scan that starts from the
// full candidate set and discards a name the moment a read of it is found.
//
// A read is any VarExpr naming a candidate. Every expression position is
// visited: both branches of every if/else-if/else chain, every loop body,
// every for-loop header clause (init, condition, update), and every switch
// case's selectors and body plus the default arm. An AssignmentStmt's own
// LHS name is not a read — assigning to x does not count as using x — but
// an index expression inside an ArrayIndexPostfix on that LHS is, since
// evaluating the index reads whatever variables appear in it.
func RemoveAccessedVars(candidates []string, m *ast.Module) []string {
	remaining := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		remaining[c] = true
	}

	s := &scanner{remaining: remaining}
	for _, fn := range m.Functions {
		s.stmts(fn.Body)
	}

	out := make([]string, 0, len(remaining))
	for _, c := range candidates {
		if remaining[c] {
			out = append(out, c)
		}
	}
	return out
}

type scanner struct {
	remaining map[string]bool
}

func (s *scanner) stmts(body []ast.Statement) {
	for _, st := range body {
		s.stmt(st)
	}
}

func (s *scanner) stmt(st ast.Statement) {
	switch st := st.(type) {
	case *ast.LetDeclStmt:
		s.expr(st.Init)
	case *ast.VarDeclStmt:
		s.expr(st.Init)
	case *ast.AssignmentStmt:
		s.lhs(st.Lhs)
		s.expr(st.Rhs)
	case *ast.CompoundStmt:
		s.stmts(st.Statements)
	case *ast.IfStmt:
		s.expr(st.Condition)
		s.stmts(st.Body)
		s.elseClause(st.Else)
	case *ast.ReturnStmt:
		if st.Value != nil {
			s.expr(st.Value)
		}
	case *ast.LoopStmt:
		s.stmts(st.Body)
	case *ast.BreakStmt:
	case *ast.SwitchStmt:
		s.expr(st.Selector)
		for _, c := range st.Cases {
			for _, sel := range c.Selectors {
				s.expr(sel)
			}
			s.stmts(c.Body)
		}
		s.stmts(st.Default)
	case *ast.ForLoopStmt:
		if st.Header.Init != nil {
			s.stmt(st.Header.Init)
		}
		if st.Header.Condition != nil {
			s.expr(st.Header.Condition)
		}
		if st.Header.Update != nil {
			s.stmt(st.Header.Update)
		}
		s.stmts(st.Body)
	default:
		panic("recondition: unhandled statement type during variable scan")
	}
}

func (s *scanner) elseClause(e ast.Else) {
	switch e := e.(type) {
	case nil:
	case *ast.ElseBlock:
		s.stmts(e.Body)
	case *ast.ElseIf:
		s.stmt(e.If)
	default:
		panic("recondition: unhandled else type during variable scan")
	}
}

// lhs visits only the parts of an assignment target that are reads: an
// array index expression, but never the bare name being assigned to.
func (s *scanner) lhs(l ast.Lhs) {
	exprLhs, ok := l.(*ast.ExprLhs)
	if !ok {
		return
	}
	for _, p := range exprLhs.Expr.Postfixes {
		if idx, ok := p.(*ast.ArrayIndexPostfix); ok {
			s.expr(idx.Index)
		}
	}
}

func (s *scanner) expr(n *ast.ExprNode) {
	switch e := n.Expr.(type) {
	case *ast.LitExpr:
	case *ast.VarExpr:
		delete(s.remaining, e.Name)
	case *ast.TypeConsExpr:
		for _, a := range e.Args {
			s.expr(a)
		}
	case *ast.PostfixExpr:
		s.expr(e.Expr)
		if idx, ok := e.Postfix.(*ast.ArrayIndexPostfix); ok {
			s.expr(idx.Index)
		}
	case *ast.UnOpExpr:
		s.expr(e.Expr)
	case *ast.BinOpExpr:
		s.expr(e.Left)
		s.expr(e.Right)
	case *ast.FnCallExpr:
		for _, a := range e.Args {
			s.expr(a)
		}
	case *ast.BitcastExpr:
		s.expr(e.Expr)
	default:
		panic("recondition: unhandled expr type during variable scan")
	}
}
