package generator

import (
	"github.com/gogpu/wgslsmith/ast"
	"github.com/gogpu/wgslsmith/scope"
	"github.com/gogpu/wgslsmith/typelattice"
)

// maxElseChain bounds how many links an if/else-if/else-if/... chain may
// grow, so the geometric process choosing between "stop", "else", and
// "else if" at each link stays bounded instead of merely improbable.
const maxElseChain = 2

// GenBlock produces one brace-delimited list of statements in a fresh
// scope frame, looping gen_stmt until a per-block random budget is spent.
func (g *Generator) GenBlock(sc *scope.Scope) []ast.Statement {
	sc.Push()
	defer sc.Pop()

	budget := g.rng.IntN(g.opts.MaxStmtsPerBlock) + 1
	stmts := make([]ast.Statement, 0, budget)
	for i := 0; i < budget; i++ {
		stmts = append(stmts, g.GenStmt(sc))
	}
	return stmts
}

// stmtCandidate pairs a weight with the thunk that builds the statement, so
// GenStmt can assemble a pool whose membership depends on the generator's
// current state (remaining variable budget, remaining block depth, whether
// a loop/switch encloses the current position) and still choose among it
// with a single weighted draw.
type stmtCandidate struct {
	weight int
	build  func() ast.Statement
}

// GenStmt selects among LetDecl, VarDecl, Assignment, If, Loop, Compound,
// Switch, ForLoop, and (inside a loop or switch) Break, weighted to favor
// Assignment and the two declaration forms. When none of these is admitted
// (no variable budget, no visible binding, no block depth left, and no
// enclosing loop or switch), it returns an empty Compound. Return never
// appears here: a function's only Return is placed deterministically at its
// tail by genFunctionBody.
func (g *Generator) GenStmt(sc *scope.Scope) ast.Statement {
	var cands []stmtCandidate
	add := func(w int, b func() ast.Statement) { cands = append(cands, stmtCandidate{w, b}) }

	if g.varCount < g.opts.MaxVarsPerFn {
		add(4, func() ast.Statement { return g.genLetDecl(sc) })
		add(3, func() ast.Statement { return g.genVarDecl(sc) })
	}
	if sc.Intersects(typelattice.Unconstrained) {
		add(4, func() ast.Statement { return g.genAssignment(sc) })
	}
	if g.stmtDepth < g.opts.MaxStmtDepth {
		add(2, func() ast.Statement { return g.genIf(sc) })
		add(1, func() ast.Statement { return g.genLoop(sc) })
		add(1, func() ast.Statement { return g.genCompound(sc) })
		add(1, func() ast.Statement { return g.genSwitch(sc) })
		if g.varCount < g.opts.MaxVarsPerFn {
			add(1, func() ast.Statement { return g.genForLoop(sc) })
		}
	}
	if g.loopDepth > 0 {
		add(1, func() ast.Statement { return &ast.BreakStmt{} })
	}

	total := 0
	for _, c := range cands {
		total += c.weight
	}
	if total == 0 {
		return &ast.CompoundStmt{}
	}
	target := g.rng.IntN(total)
	for _, c := range cands {
		if target < c.weight {
			return c.build()
		}
		target -= c.weight
	}
	panic("generator: genStmt candidate selection fell through")
}

func (g *Generator) genLetDecl(sc *scope.Scope) ast.Statement {
	t := typelattice.Unconstrained.Select(g.rng)
	init := g.GenExpr(sc, typelattice.FromDataType(t))
	name := g.names.next("x")
	sc.Insert(name, t)
	g.varCount++
	return &ast.LetDeclStmt{Name: name, Init: init}
}

func (g *Generator) genVarDecl(sc *scope.Scope) ast.Statement {
	t := typelattice.Unconstrained.Select(g.rng)
	init := g.GenExpr(sc, typelattice.FromDataType(t))
	name := g.names.next("v")
	sc.Insert(name, t)
	g.varCount++
	return &ast.VarDeclStmt{Name: name, Init: init}
}

func (g *Generator) genAssignment(sc *scope.Scope) ast.Statement {
	b := sc.ChooseMatching(g.rng, typelattice.Unconstrained)
	rhs := g.GenExpr(sc, typelattice.FromDataType(b.Type))
	return &ast.AssignmentStmt{
		Lhs: &ast.ExprLhs{Expr: ast.LhsExpr{Name: b.Name}},
		Rhs: rhs,
	}
}

func (g *Generator) genIf(sc *scope.Scope) ast.Statement {
	return g.genIfChain(sc, 0)
}

// genIfChain builds one if statement and, while chainDepth allows, may
// follow it with a plain else block or recurse into another else-if link.
func (g *Generator) genIfChain(sc *scope.Scope, chainDepth int) *ast.IfStmt {
	cond := g.GenExpr(sc, typelattice.BoolConstraint)

	g.stmtDepth++
	body := g.GenBlock(sc)
	g.stmtDepth--

	var elseClause ast.Else
	if chainDepth < maxElseChain {
		switch g.rng.IntN(3) {
		case 1:
			g.stmtDepth++
			elseClause = &ast.ElseBlock{Body: g.GenBlock(sc)}
			g.stmtDepth--
		case 2:
			elseClause = &ast.ElseIf{If: g.genIfChain(sc, chainDepth+1)}
		}
	}

	return &ast.IfStmt{Condition: cond, Body: body, Else: elseClause}
}

func (g *Generator) genLoop(sc *scope.Scope) ast.Statement {
	g.stmtDepth++
	g.loopDepth++
	body := g.GenBlock(sc)
	g.loopDepth--
	g.stmtDepth--
	return &ast.LoopStmt{Body: body}
}

func (g *Generator) genCompound(sc *scope.Scope) ast.Statement {
	g.stmtDepth++
	body := g.GenBlock(sc)
	g.stmtDepth--
	return &ast.CompoundStmt{Statements: body}
}

// genSwitch generates an integer selector, one to three cases each guarded
// by one or two literal selectors, and a default arm. Break is valid inside
// every arm, so loopDepth is raised across each arm's block the same way it
// is for Loop.
func (g *Generator) genSwitch(sc *scope.Scope) ast.Statement {
	selType := typelattice.Int.Select(g.rng)
	selector := g.GenExpr(sc, typelattice.FromDataType(selType))

	g.stmtDepth++
	numCases := g.rng.IntN(3) + 1
	cases := make([]ast.SwitchCase, numCases)
	for i := range cases {
		numSelectors := g.rng.IntN(2) + 1
		selectors := make([]*ast.ExprNode, numSelectors)
		for j := range selectors {
			selectors[j] = g.genLitOfType(selType)
		}

		g.loopDepth++
		body := g.GenBlock(sc)
		g.loopDepth--

		cases[i] = ast.SwitchCase{Selectors: selectors, Body: body}
	}

	g.loopDepth++
	def := g.GenBlock(sc)
	g.loopDepth--
	g.stmtDepth--

	return &ast.SwitchStmt{Selector: selector, Cases: cases, Default: def}
}

// genForLoop generates a C-style loop: a fresh counter declared in the
// header's own frame, a boolean condition, and an update assignment back to
// the counter, matching the header struct's (init, condition, update) shape.
func (g *Generator) genForLoop(sc *scope.Scope) ast.Statement {
	sc.Push()
	defer sc.Pop()

	counterType := typelattice.Int.Select(g.rng)
	counterName := g.names.next("c")
	initExpr := g.GenExpr(sc, typelattice.FromDataType(counterType))
	sc.Insert(counterName, counterType)
	g.varCount++

	init := &ast.VarDeclStmt{Name: counterName, Init: initExpr}
	cond := g.GenExpr(sc, typelattice.BoolConstraint)
	update := &ast.AssignmentStmt{
		Lhs: &ast.ExprLhs{Expr: ast.LhsExpr{Name: counterName}},
		Rhs: g.GenExpr(sc, typelattice.FromDataType(counterType)),
	}

	g.stmtDepth++
	g.loopDepth++
	body := g.GenBlock(sc)
	g.loopDepth--
	g.stmtDepth--

	return &ast.ForLoopStmt{
		Header: ast.ForLoopHeader{Init: init, Condition: cond, Update: update},
		Body:   body,
	}
}
