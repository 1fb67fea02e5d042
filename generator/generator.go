// Package generator synthesizes random, well-typed shader modules under a
// seeded RNG: gen_module assembles functions from gen_stmt/gen_expr, which
// together implement the admission table that picks uniformly among the
// expression and statement productions legal at a given type constraint and
// recursion depth.
//
// Generation is a pure function of (seed, Options): the RNG is the only
// source of nondeterminism, and every random choice over a collection first
// materializes that collection into a stable order (see package scope)
// before sampling from it.
package generator

import (
	"math/rand/v2"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/gogpu/wgslsmith/ast"
	"github.com/gogpu/wgslsmith/scope"
	"github.com/gogpu/wgslsmith/typelattice"
)

// Generator holds the mutable state of one gen_module call: the RNG, the
// configured limits, the current recursion depths, and per-function naming.
// A Generator is single-use — call New for each module you want to produce.
type Generator struct {
	rng  *rand.Rand
	opts Options
	log  *logrus.Entry // nil when opts.Logger is nil; every use goes through debugf

	names     *namer
	fnCounter int

	exprDepth int
	stmtDepth int
	loopDepth int
	varCount  int
}

// New constructs a Generator and returns the seed it resolved — drawn from
// system entropy when opts.Seed is nil, otherwise opts.Seed's value
// unchanged. The caller (typically a CLI driver) is responsible for
// reporting that seed so the run can be reproduced.
func New(opts Options) (*Generator, uint64) {
	opts.setDefaults()
	seed := opts.resolveSeed()

	g := &Generator{
		rng:   rand.New(rand.NewPCG(seed, seed^goldenGamma)),
		opts:  opts,
		names: newNamer(),
	}
	if opts.Logger != nil {
		g.log = opts.Logger.WithField("component", "generator")
	}
	return g, seed
}

// debugf logs msg at Debug level with fields, a no-op when no Logger was
// configured so call sites never need their own nil check.
func (g *Generator) debugf(fields logrus.Fields, msg string) {
	if g.log == nil {
		return
	}
	g.log.WithFields(fields).Debug(msg)
}

// GenModule synthesizes a complete module: zero or more helper functions
// followed by a mandatory main entry point.
func (g *Generator) GenModule() *ast.Module {
	n := g.rng.IntN(g.opts.MaxFnCount)
	g.debugf(logrus.Fields{"helper_fns": n}, "generating module")

	fns := make([]*ast.FnDecl, 0, n+1)
	for i := 0; i < n; i++ {
		fns = append(fns, g.genHelperFunction())
	}
	fns = append(fns, g.genMainFunction())

	return &ast.Module{Functions: fns}
}

// genHelperFunction synthesizes one non-entry function with a random
// signature: zero to three scalar parameters, and a coin-flip result type.
func (g *Generator) genHelperFunction() *ast.FnDecl {
	name := "fn" + strconv.Itoa(g.fnCounter)
	g.fnCounter++

	sc := scope.New()
	numParams := g.rng.IntN(4)
	params := make([]ast.Param, numParams)
	for i := range params {
		t := typelattice.Scalar.Select(g.rng)
		pname := "p" + strconv.Itoa(i)
		params[i] = ast.Param{Name: pname, Type: t}
		sc.Insert(pname, t)
	}

	hasResult := g.rng.IntN(2) == 1
	var resultType typelattice.DataType
	if hasResult {
		resultType = typelattice.Scalar.Select(g.rng)
	}

	return g.genFunctionBody(name, params, hasResult, resultType, sc)
}

// genMainFunction synthesizes the designated entry point: no parameters, no
// result, matching the compute-entry shape scenario S1 checks for.
func (g *Generator) genMainFunction() *ast.FnDecl {
	return g.genFunctionBody("main", nil, false, typelattice.DataType{}, scope.New())
}

// genFunctionBody resets per-function state (the identifier counter, the
// variable budget, and every depth counter), generates a body, and appends
// the function's single tail Return — gen_stmt's candidate pool never
// produces Return itself; its placement is deterministic.
func (g *Generator) genFunctionBody(name string, params []ast.Param, hasResult bool, resultType typelattice.DataType, sc *scope.Scope) *ast.FnDecl {
	g.names.reset()
	g.varCount = 0
	g.stmtDepth = 0
	g.loopDepth = 0
	g.exprDepth = 0

	body := g.GenBlock(sc)

	if hasResult {
		body = append(body, &ast.ReturnStmt{Value: g.GenExpr(sc, typelattice.FromDataType(resultType))})
	} else {
		body = append(body, &ast.ReturnStmt{})
	}

	return &ast.FnDecl{
		Name:       name,
		Params:     params,
		HasResult:  hasResult,
		ResultType: resultType,
		Body:       body,
	}
}
