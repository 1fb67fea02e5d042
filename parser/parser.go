package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/wgslsmith/ast"
	"github.com/gogpu/wgslsmith/scope"
	"github.com/gogpu/wgslsmith/typelattice"
)

// ParseError reports a lexical or grammatical failure with its source
// position. Parsing in this package is not error-recovering: the first
// failure aborts the parse and is returned verbatim to the caller, per the
// error-handling design this module follows — a parser failure is a
// caller concern, never something this package retries.
type ParseError struct {
	Message string
	Token   Token
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Token.Line, e.Token.Column, e.Message)
}

// fnSig is what parseIdentExpr needs to know about a previously parsed
// function declaration to type a call to it.
type fnSig struct {
	hasResult  bool
	resultType typelattice.DataType
}

// Parser consumes a token stream and reconstructs a Module. Var reference
// types are resolved via the same Scope structure package generator uses
// to generate them, pushed and popped in exact step with block nesting;
// a called function's result type is resolved from fnResults, populated as
// each function's signature is parsed — always before any later function's
// body, since a generated module's helper functions precede their callers.
type Parser struct {
	tokens    []Token
	current   int
	fnResults map[string]fnSig
}

// Parse lexes and parses source, a complete module as package writer would
// have rendered it.
func Parse(source string) (*ast.Module, error) {
	tokens, err := NewLexer(source).Tokenize()
	if err != nil {
		return nil, err
	}
	p := &Parser{tokens: tokens, fnResults: map[string]fnSig{}}
	return p.parseModule()
}

func (p *Parser) parseModule() (*ast.Module, error) {
	var fns []*ast.FnDecl
	for !p.check(TokenEOF) {
		fn, err := p.parseFunction()
		if err != nil {
			return nil, err
		}
		fns = append(fns, fn)
	}
	return &ast.Module{Functions: fns}, nil
}

func (p *Parser) parseFunction() (*ast.FnDecl, error) {
	if _, err := p.expect(TokenFn); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	name := nameTok.Lexeme

	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	sc := scope.New()
	var params []ast.Param
	if !p.check(TokenRParen) {
		for {
			pTok, err := p.expect(TokenIdent)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokenColon); err != nil {
				return nil, err
			}
			pt, err := p.parseType()
			if err != nil {
				return nil, err
			}
			params = append(params, ast.Param{Name: pTok.Lexeme, Type: pt})
			sc.Insert(pTok.Lexeme, pt)
			if !p.match(TokenComma) {
				break
			}
		}
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}

	hasResult := false
	var resultType typelattice.DataType
	if p.match(TokenArrow) {
		hasResult = true
		rt, err := p.parseType()
		if err != nil {
			return nil, err
		}
		resultType = rt
	}
	p.fnResults[name] = fnSig{hasResult: hasResult, resultType: resultType}

	body, err := p.parseBlock(sc)
	if err != nil {
		return nil, err
	}

	return &ast.FnDecl{Name: name, Params: params, HasResult: hasResult, ResultType: resultType, Body: body}, nil
}

func vecArity(kind TokenKind) uint8 {
	switch kind {
	case TokenVec2:
		return 2
	case TokenVec3:
		return 3
	case TokenVec4:
		return 4
	default:
		return 0
	}
}

func (p *Parser) parseType() (typelattice.DataType, error) {
	switch {
	case p.match(TokenBool):
		return typelattice.NewScalar(typelattice.Bool), nil
	case p.match(TokenI32):
		return typelattice.NewScalar(typelattice.I32), nil
	case p.match(TokenU32):
		return typelattice.NewScalar(typelattice.U32), nil
	case p.check(TokenVec2), p.check(TokenVec3), p.check(TokenVec4):
		n := vecArity(p.advance().Kind)
		if _, err := p.expect(TokenLess); err != nil {
			return typelattice.DataType{}, err
		}
		elem, err := p.parseType()
		if err != nil {
			return typelattice.DataType{}, err
		}
		// A vector type nested in another angle-bracketed type, as in
		// "bitcast<vec2<u32>>(...)", ends in a single ">>" token; consume
		// only its first ">" and leave the second for the enclosing type.
		if p.check(TokenGreaterGreater) {
			p.tokens[p.current].Kind = TokenGreater
			p.tokens[p.current].Lexeme = ">"
			return typelattice.NewVector(n, elem.Scalar()), nil
		}
		if _, err := p.expect(TokenGreater); err != nil {
			return typelattice.DataType{}, err
		}
		return typelattice.NewVector(n, elem.Scalar()), nil
	default:
		return typelattice.DataType{}, p.errorf("expected a type, got %q", p.peek().Lexeme)
	}
}

func (p *Parser) parseBlock(sc *scope.Scope) ([]ast.Statement, error) {
	if _, err := p.expect(TokenLBrace); err != nil {
		return nil, err
	}
	sc.Push()
	defer sc.Pop()

	var stmts []ast.Statement
	for !p.check(TokenRBrace) {
		s, err := p.parseStmt(sc)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	if _, err := p.expect(TokenRBrace); err != nil {
		return nil, err
	}
	return stmts, nil
}

func (p *Parser) parseStmt(sc *scope.Scope) (ast.Statement, error) {
	switch p.peek().Kind {
	case TokenLet:
		return p.parseLetDecl(sc)
	case TokenVar:
		return p.parseVarDecl(sc)
	case TokenLBrace:
		body, err := p.parseBlock(sc)
		if err != nil {
			return nil, err
		}
		return &ast.CompoundStmt{Statements: body}, nil
	case TokenIf:
		return p.parseIfChain(sc)
	case TokenReturn:
		return p.parseReturn(sc)
	case TokenLoop:
		return p.parseLoop(sc)
	case TokenBreak:
		p.advance()
		if _, err := p.expect(TokenSemicolon); err != nil {
			return nil, err
		}
		return &ast.BreakStmt{}, nil
	case TokenSwitch:
		return p.parseSwitch(sc)
	case TokenFor:
		return p.parseFor(sc)
	default:
		return p.parseAssignment(sc)
	}
}

func (p *Parser) parseLetDecl(sc *scope.Scope) (ast.Statement, error) {
	if _, err := p.expect(TokenLet); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenEqual); err != nil {
		return nil, err
	}
	init, err := p.parseExprNode(sc)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenSemicolon); err != nil {
		return nil, err
	}
	sc.Insert(nameTok.Lexeme, init.Type)
	return &ast.LetDeclStmt{Name: nameTok.Lexeme, Init: init}, nil
}

func (p *Parser) parseVarDecl(sc *scope.Scope) (ast.Statement, error) {
	if _, err := p.expect(TokenVar); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenEqual); err != nil {
		return nil, err
	}
	init, err := p.parseExprNode(sc)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenSemicolon); err != nil {
		return nil, err
	}
	sc.Insert(nameTok.Lexeme, init.Type)
	return &ast.VarDeclStmt{Name: nameTok.Lexeme, Init: init}, nil
}

func (p *Parser) parseAssignment(sc *scope.Scope) (ast.Statement, error) {
	lhs, err := p.parseLhs(sc)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenEqual); err != nil {
		return nil, err
	}
	rhs, err := p.parseExprNode(sc)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenSemicolon); err != nil {
		return nil, err
	}
	return &ast.AssignmentStmt{Lhs: lhs, Rhs: rhs}, nil
}

func (p *Parser) parseLhs(sc *scope.Scope) (ast.Lhs, error) {
	tok, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	if tok.Lexeme == "_" {
		return &ast.PhonyLhs{}, nil
	}
	postfixes, err := p.parsePostfixes(sc)
	if err != nil {
		return nil, err
	}
	return &ast.ExprLhs{Expr: ast.LhsExpr{Name: tok.Lexeme, Postfixes: postfixes}}, nil
}

func (p *Parser) parsePostfixes(sc *scope.Scope) ([]ast.Postfix, error) {
	var out []ast.Postfix
	for {
		if p.match(TokenDot) {
			nameTok, err := p.expect(TokenIdent)
			if err != nil {
				return nil, err
			}
			out = append(out, &ast.MemberPostfix{Name: nameTok.Lexeme})
			continue
		}
		if p.match(TokenLBracket) {
			idx, err := p.parseExprNode(sc)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokenRBracket); err != nil {
				return nil, err
			}
			out = append(out, &ast.ArrayIndexPostfix{Index: idx})
			continue
		}
		return out, nil
	}
}

func (p *Parser) parseReturn(sc *scope.Scope) (ast.Statement, error) {
	if _, err := p.expect(TokenReturn); err != nil {
		return nil, err
	}
	if p.match(TokenSemicolon) {
		return &ast.ReturnStmt{}, nil
	}
	val, err := p.parseExprNode(sc)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenSemicolon); err != nil {
		return nil, err
	}
	return &ast.ReturnStmt{Value: val}, nil
}

func (p *Parser) parseLoop(sc *scope.Scope) (ast.Statement, error) {
	if _, err := p.expect(TokenLoop); err != nil {
		return nil, err
	}
	body, err := p.parseBlock(sc)
	if err != nil {
		return nil, err
	}
	return &ast.LoopStmt{Body: body}, nil
}

// parseIfChain handles one if and, recursively, any else-if/else links
// that follow it, per writer's chained "} else if (...) {" rendering.
func (p *Parser) parseIfChain(sc *scope.Scope) (*ast.IfStmt, error) {
	if _, err := p.expect(TokenIf); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	cond, err := p.parseExprNode(sc)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	body, err := p.parseBlock(sc)
	if err != nil {
		return nil, err
	}

	var elseClause ast.Else
	if p.match(TokenElse) {
		if p.check(TokenIf) {
			inner, err := p.parseIfChain(sc)
			if err != nil {
				return nil, err
			}
			elseClause = &ast.ElseIf{If: inner}
		} else {
			elseBody, err := p.parseBlock(sc)
			if err != nil {
				return nil, err
			}
			elseClause = &ast.ElseBlock{Body: elseBody}
		}
	}
	return &ast.IfStmt{Condition: cond, Body: body, Else: elseClause}, nil
}

func (p *Parser) parseSwitch(sc *scope.Scope) (ast.Statement, error) {
	if _, err := p.expect(TokenSwitch); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	selector, err := p.parseExprNode(sc)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenLBrace); err != nil {
		return nil, err
	}

	var cases []ast.SwitchCase
	for p.match(TokenCase) {
		var selectors []*ast.ExprNode
		for {
			sel, err := p.parseExprNode(sc)
			if err != nil {
				return nil, err
			}
			selectors = append(selectors, sel)
			if !p.match(TokenComma) {
				break
			}
		}
		if _, err := p.expect(TokenColon); err != nil {
			return nil, err
		}
		body, err := p.parseBlock(sc)
		if err != nil {
			return nil, err
		}
		cases = append(cases, ast.SwitchCase{Selectors: selectors, Body: body})
	}
	if _, err := p.expect(TokenDefault); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenColon); err != nil {
		return nil, err
	}
	def, err := p.parseBlock(sc)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenRBrace); err != nil {
		return nil, err
	}

	return &ast.SwitchStmt{Selector: selector, Cases: cases, Default: def}, nil
}

func (p *Parser) parseFor(sc *scope.Scope) (ast.Statement, error) {
	if _, err := p.expect(TokenFor); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}

	sc.Push()
	defer sc.Pop()

	var header ast.ForLoopHeader
	if !p.check(TokenSemicolon) {
		if _, err := p.expect(TokenVar); err != nil {
			return nil, err
		}
		nameTok, err := p.expect(TokenIdent)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenEqual); err != nil {
			return nil, err
		}
		init, err := p.parseExprNode(sc)
		if err != nil {
			return nil, err
		}
		sc.Insert(nameTok.Lexeme, init.Type)
		header.Init = &ast.VarDeclStmt{Name: nameTok.Lexeme, Init: init}
	}
	if _, err := p.expect(TokenSemicolon); err != nil {
		return nil, err
	}

	if !p.check(TokenSemicolon) {
		cond, err := p.parseExprNode(sc)
		if err != nil {
			return nil, err
		}
		header.Condition = cond
	}
	if _, err := p.expect(TokenSemicolon); err != nil {
		return nil, err
	}

	if !p.check(TokenRParen) {
		lhs, err := p.parseLhs(sc)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenEqual); err != nil {
			return nil, err
		}
		rhs, err := p.parseExprNode(sc)
		if err != nil {
			return nil, err
		}
		header.Update = &ast.AssignmentStmt{Lhs: lhs, Rhs: rhs}
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}

	body, err := p.parseBlock(sc)
	if err != nil {
		return nil, err
	}
	return &ast.ForLoopStmt{Header: header, Body: body}, nil
}

// parseExprNode parses one primary expression and then any postfix chain
// (member access, array index) that follows it.
func (p *Parser) parseExprNode(sc *scope.Scope) (*ast.ExprNode, error) {
	base, err := p.parsePrimaryExprNode(sc)
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.match(TokenDot):
			nameTok, err := p.expect(TokenIdent)
			if err != nil {
				return nil, err
			}
			// Member access can narrow a vector to its element scalar
			// type, but this package's generator never emits
			// MemberPostfix, so no call site depends on getting that
			// narrowing exactly right; the base type is kept as a
			// conservative placeholder.
			base = &ast.ExprNode{Type: base.Type, Expr: &ast.PostfixExpr{Expr: base, Postfix: &ast.MemberPostfix{Name: nameTok.Lexeme}}}
		case p.match(TokenLBracket):
			idx, err := p.parseExprNode(sc)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokenRBracket); err != nil {
				return nil, err
			}
			base = &ast.ExprNode{Type: base.Type, Expr: &ast.PostfixExpr{Expr: base, Postfix: &ast.ArrayIndexPostfix{Index: idx}}}
		default:
			return base, nil
		}
	}
}

func (p *Parser) parsePrimaryExprNode(sc *scope.Scope) (*ast.ExprNode, error) {
	tok := p.peek()
	switch tok.Kind {
	case TokenIntLiteral:
		p.advance()
		v, err := strconv.ParseInt(strings.TrimSuffix(tok.Lexeme, "i"), 10, 32)
		if err != nil {
			return nil, p.errorfAt(tok, "invalid int literal %q", tok.Lexeme)
		}
		return &ast.ExprNode{Type: typelattice.NewScalar(typelattice.I32), Expr: &ast.LitExpr{Lit: &ast.IntLit{Value: int32(v)}}}, nil
	case TokenUIntLiteral:
		p.advance()
		v, err := strconv.ParseUint(strings.TrimSuffix(tok.Lexeme, "u"), 10, 32)
		if err != nil {
			return nil, p.errorfAt(tok, "invalid uint literal %q", tok.Lexeme)
		}
		return &ast.ExprNode{Type: typelattice.NewScalar(typelattice.U32), Expr: &ast.LitExpr{Lit: &ast.UIntLit{Value: uint32(v)}}}, nil
	case TokenTrue, TokenFalse:
		p.advance()
		return &ast.ExprNode{Type: typelattice.NewScalar(typelattice.Bool), Expr: &ast.LitExpr{Lit: &ast.BoolLit{Value: tok.Kind == TokenTrue}}}, nil
	case TokenMinus:
		return p.parseUnOp(sc, ast.Neg)
	case TokenBang:
		return p.parseUnOp(sc, ast.Not)
	case TokenTilde:
		return p.parseUnOp(sc, ast.BitNot)
	case TokenLParen:
		return p.parseParenBinOp(sc)
	case TokenVec2, TokenVec3, TokenVec4:
		return p.parseTypeCons(sc)
	case TokenBitcast:
		return p.parseBitcast(sc)
	case TokenIdent:
		return p.parseIdentExpr(sc)
	default:
		return nil, p.errorf("unexpected token %q while parsing an expression", tok.Lexeme)
	}
}

func (p *Parser) parseUnOp(sc *scope.Scope, op ast.UnOp) (*ast.ExprNode, error) {
	p.advance()
	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	operand, err := p.parseExprNode(sc)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	return &ast.ExprNode{Type: operand.Type, Expr: &ast.UnOpExpr{Op: op, Expr: operand}}, nil
}

func (p *Parser) parseParenBinOp(sc *scope.Scope) (*ast.ExprNode, error) {
	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	left, err := p.parseExprNode(sc)
	if err != nil {
		return nil, err
	}
	op, err := p.parseBinOpToken()
	if err != nil {
		return nil, err
	}
	right, err := p.parseExprNode(sc)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	return &ast.ExprNode{Type: left.Type, Expr: &ast.BinOpExpr{Op: op, Left: left, Right: right}}, nil
}

func (p *Parser) parseBinOpToken() (ast.BinOp, error) {
	tok := p.advance()
	switch tok.Kind {
	case TokenPlus:
		return ast.Plus, nil
	case TokenMinus:
		return ast.Minus, nil
	case TokenStar:
		return ast.Times, nil
	case TokenSlash:
		return ast.Divide, nil
	case TokenPercent:
		return ast.Mod, nil
	case TokenAmp:
		return ast.BitAnd, nil
	case TokenPipe:
		return ast.BitOr, nil
	case TokenCaret:
		return ast.BitXor, nil
	case TokenLessLess:
		return ast.LShift, nil
	case TokenGreaterGreater:
		return ast.RShift, nil
	case TokenAmpAmp:
		return ast.LogAnd, nil
	case TokenPipePipe:
		return ast.LogOr, nil
	case TokenEqualEq:
		return ast.Eq, nil
	case TokenBangEq:
		return ast.Neq, nil
	case TokenLess:
		return ast.Lt, nil
	case TokenLessEq:
		return ast.Le, nil
	case TokenGreater:
		return ast.Gt, nil
	case TokenGreaterEq:
		return ast.Ge, nil
	default:
		return 0, p.errorfAt(tok, "expected a binary operator, got %q", tok.Lexeme)
	}
}

func (p *Parser) parseTypeCons(sc *scope.Scope) (*ast.ExprNode, error) {
	n := vecArity(p.advance().Kind)
	if _, err := p.expect(TokenLess); err != nil {
		return nil, err
	}
	elem, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenGreater); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}

	t := typelattice.NewVector(n, elem.Scalar())
	var args []*ast.ExprNode
	if !p.check(TokenRParen) {
		for {
			a, err := p.parseExprNode(sc)
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if !p.match(TokenComma) {
				break
			}
		}
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	return &ast.ExprNode{Type: t, Expr: &ast.TypeConsExpr{Type: t, Args: args}}, nil
}

func (p *Parser) parseBitcast(sc *scope.Scope) (*ast.ExprNode, error) {
	if _, err := p.expect(TokenBitcast); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenLess); err != nil {
		return nil, err
	}
	target, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenGreater); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	inner, err := p.parseExprNode(sc)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	return &ast.ExprNode{Type: target, Expr: &ast.BitcastExpr{Target: target, Expr: inner}}, nil
}

// parseIdentExpr parses either a Var reference or a call to a user or
// helper function, distinguished by whether "(" follows the identifier.
func (p *Parser) parseIdentExpr(sc *scope.Scope) (*ast.ExprNode, error) {
	tok := p.advance()

	if p.check(TokenLParen) {
		p.advance()
		var args []*ast.ExprNode
		if !p.check(TokenRParen) {
			for {
				a, err := p.parseExprNode(sc)
				if err != nil {
					return nil, err
				}
				args = append(args, a)
				if !p.match(TokenComma) {
					break
				}
			}
		}
		if _, err := p.expect(TokenRParen); err != nil {
			return nil, err
		}

		sig, known := p.fnResults[tok.Lexeme]
		var t typelattice.DataType
		switch {
		case known && sig.hasResult:
			t = sig.resultType
		case len(args) > 0:
			t = args[0].Type
		default:
			return nil, p.errorfAt(tok, "call to %q has no declared result and no argument to infer one from", tok.Lexeme)
		}
		return &ast.ExprNode{Type: t, Expr: &ast.FnCallExpr{Name: tok.Lexeme, Args: args}}, nil
	}

	t, ok := sc.Lookup(tok.Lexeme)
	if !ok {
		return nil, p.errorfAt(tok, "reference to undeclared name %q", tok.Lexeme)
	}
	return &ast.ExprNode{Type: t, Expr: &ast.VarExpr{Name: tok.Lexeme}}, nil
}

func (p *Parser) peek() Token { return p.tokens[p.current] }

func (p *Parser) advance() Token {
	tok := p.tokens[p.current]
	if p.current < len(p.tokens)-1 {
		p.current++
	}
	return tok
}

func (p *Parser) check(kind TokenKind) bool { return p.peek().Kind == kind }

func (p *Parser) match(kind TokenKind) bool {
	if !p.check(kind) {
		return false
	}
	p.advance()
	return true
}

func (p *Parser) expect(kind TokenKind) (Token, error) {
	if !p.check(kind) {
		return Token{}, p.errorf("expected a different token, got %q", p.peek().Lexeme)
	}
	return p.advance(), nil
}

func (p *Parser) errorf(format string, args ...any) error {
	return p.errorfAt(p.peek(), format, args...)
}

func (p *Parser) errorfAt(tok Token, format string, args ...any) error {
	return &ParseError{Message: fmt.Sprintf(format, args...), Token: tok}
}
