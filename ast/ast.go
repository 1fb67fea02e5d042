// Package ast defines the generator's abstract syntax tree: literals,
// expressions, statements, function declarations, and modules.
//
// Every node is built bottom-up and is immutable once constructed — rewrites
// (e.g. the reconditioner) build fresh nodes rather than mutating existing
// ones. Expression children are uniquely owned; there are no shared
// subtrees. Every ExprNode carries its own resolved DataType so that a
// consumer never needs a side table or a scope reference to type-check a
// subtree in isolation.
//
// All node variants implement their sum-type interface (Expr, Statement,
// Lit, Postfix, Lhs, Else) via a pointer receiver, and are always held as
// pointers — a nil *IfStmt, for instance, is never a meaningful Statement.
package ast

import "github.com/gogpu/wgslsmith/typelattice"

// Lit is the sum type of literal values.
type Lit interface{ litNode() }

// BoolLit is a boolean literal.
type BoolLit struct{ Value bool }

// IntLit is a signed 32-bit integer literal.
type IntLit struct{ Value int32 }

// UIntLit is an unsigned 32-bit integer literal.
type UIntLit struct{ Value uint32 }

func (*BoolLit) litNode() {}
func (*IntLit) litNode()  {}
func (*UIntLit) litNode() {}

// Postfix is the sum type of postfix operations applied to an expression.
type Postfix interface{ postfixNode() }

// ArrayIndexPostfix is expr[Index].
type ArrayIndexPostfix struct{ Index *ExprNode }

// MemberPostfix is expr.Name.
type MemberPostfix struct{ Name string }

func (*ArrayIndexPostfix) postfixNode() {}
func (*MemberPostfix) postfixNode()     {}

// UnOp enumerates unary operators.
type UnOp uint8

const (
	Neg    UnOp = iota // -a, signed integer only
	Not                // !a, boolean only
	BitNot             // ~a, any integer
)

// BinOp enumerates binary operators. Eq..Ge exist for hand-built trees
// (the reconditioner's injected helper bodies); the expression generator's
// admission table never selects them.
type BinOp uint8

const (
	Plus   BinOp = iota // +
	Minus               // -
	Times               // *
	Divide              // /
	Mod                 // %
	BitAnd              // &
	BitOr               // |
	BitXor              // ^
	LShift              // <<
	RShift              // >>
	LogAnd              // &&
	LogOr               // ||
	Eq                  // ==
	Neq                 // !=
	Lt                  // <
	Le                  // <=
	Gt                  // >
	Ge                  // >=
)

// Expr is the sum type of expression forms. Every variant appears wrapped
// in an ExprNode, which attaches the resolved DataType.
type Expr interface{ exprNode() }

// LitExpr is a scalar literal.
type LitExpr struct{ Lit Lit }

// TypeConsExpr is a vector (or scalar) type constructor, e.g. vec3<i32>(a, b, c).
type TypeConsExpr struct {
	Type typelattice.DataType
	Args []*ExprNode
}

// VarExpr is a reference to a bound name.
type VarExpr struct{ Name string }

// PostfixExpr applies a Postfix to a base expression.
type PostfixExpr struct {
	Expr    *ExprNode
	Postfix Postfix
}

// UnOpExpr applies a unary operator.
type UnOpExpr struct {
	Op   UnOp
	Expr *ExprNode
}

// BinOpExpr applies a binary operator.
type BinOpExpr struct {
	Op          BinOp
	Left, Right *ExprNode
}

// FnCallExpr calls a named function (user-defined or built-in). The
// generator never produces this directly; it exists for the reconditioner's
// injected SAFE_DIV_*/SAFE_MOD_* helper calls.
type FnCallExpr struct {
	Name string
	Args []*ExprNode
}

// BitcastExpr reinterprets Expr's bit pattern as Target without changing
// any bit. The reconditioner uses this to perform signed arithmetic in the
// unsigned domain and reinterpret the wrapped result back, matching the
// language's own bitcast<T>(e) primitive.
type BitcastExpr struct {
	Target typelattice.DataType
	Expr   *ExprNode
}

func (*LitExpr) exprNode()      {}
func (*TypeConsExpr) exprNode() {}
func (*VarExpr) exprNode()      {}
func (*PostfixExpr) exprNode()  {}
func (*UnOpExpr) exprNode()     {}
func (*BinOpExpr) exprNode()    {}
func (*FnCallExpr) exprNode()   {}
func (*BitcastExpr) exprNode()  {}

// ExprNode pairs an expression with its resolved type. It is the only way
// an Expr appears in the tree.
type ExprNode struct {
	Type typelattice.DataType
	Expr Expr
}

// LhsExpr is an assignable path: a bound name followed by zero or more
// postfix accessors (array index or member).
type LhsExpr struct {
	Name      string
	Postfixes []Postfix
}

// Lhs is the sum type of assignment targets.
type Lhs interface{ lhsNode() }

// PhonyLhs is the `_` discard target.
type PhonyLhs struct{}

// ExprLhs assigns through an assignable path.
type ExprLhs struct{ Expr LhsExpr }

func (*PhonyLhs) lhsNode() {}
func (*ExprLhs) lhsNode()  {}

// Statement is the sum type of statement forms.
type Statement interface{ stmtNode() }

// LetDeclStmt introduces an immutable binding.
type LetDeclStmt struct {
	Name string
	Init *ExprNode
}

// VarDeclStmt introduces a mutable binding with an initializer.
type VarDeclStmt struct {
	Name string
	Init *ExprNode
}

// AssignmentStmt assigns Rhs to Lhs.
type AssignmentStmt struct {
	Lhs Lhs
	Rhs *ExprNode
}

// CompoundStmt is a brace-delimited list of statements.
type CompoundStmt struct{ Statements []Statement }

// Else is the sum type of an if-statement's else clause.
type Else interface{ elseNode() }

// ElseIf chains to another condition.
type ElseIf struct{ If *IfStmt }

// ElseBlock is a plain else block.
type ElseBlock struct{ Body []Statement }

func (*ElseIf) elseNode()    {}
func (*ElseBlock) elseNode() {}

// IfStmt is a conditional, with an optional else-if/else chain.
type IfStmt struct {
	Condition *ExprNode
	Body      []Statement
	Else      Else // nil if absent
}

// ReturnStmt returns from the enclosing function. Value is nil for a
// value-less return.
type ReturnStmt struct{ Value *ExprNode }

// LoopStmt is an unconditional loop, exited only via Break.
type LoopStmt struct{ Body []Statement }

// BreakStmt exits the innermost enclosing loop or switch.
type BreakStmt struct{}

// SwitchCase is one non-default arm of a SwitchStmt.
type SwitchCase struct {
	Selectors []*ExprNode // literal expressions
	Body      []Statement
}

// SwitchStmt dispatches on Selector to the matching case, or Default.
type SwitchStmt struct {
	Selector *ExprNode
	Cases    []SwitchCase
	Default  []Statement
}

// ForLoopHeader holds the three (each optional) clauses of a for-loop.
type ForLoopHeader struct {
	Init      *VarDeclStmt
	Condition *ExprNode
	Update    *AssignmentStmt
}

// ForLoopStmt is a C-style for loop.
type ForLoopStmt struct {
	Header ForLoopHeader
	Body   []Statement
}

func (*LetDeclStmt) stmtNode()    {}
func (*VarDeclStmt) stmtNode()    {}
func (*AssignmentStmt) stmtNode() {}
func (*CompoundStmt) stmtNode()   {}
func (*IfStmt) stmtNode()         {}
func (*ReturnStmt) stmtNode()     {}
func (*LoopStmt) stmtNode()       {}
func (*BreakStmt) stmtNode()      {}
func (*SwitchStmt) stmtNode()     {}
func (*ForLoopStmt) stmtNode()    {}

// Param is one function parameter.
type Param struct {
	Name string
	Type typelattice.DataType
}

// FnDecl is a function declaration: a name, parameter list, an optional
// result type, and a body. The designated entry function (see
// Module.EntryFunction) has no parameters and no result type, matching a
// WGSL compute entry point.
type FnDecl struct {
	Name       string
	Params     []Param
	HasResult  bool
	ResultType typelattice.DataType
	Body       []Statement
}

// Module is the top-level program unit: an ordered list of function
// declarations.
type Module struct {
	Functions []*FnDecl
}

// EntryFunction returns the module's designated entry point, i.e. the
// function named "main", or nil if the module has none.
func (m *Module) EntryFunction() *FnDecl {
	for _, f := range m.Functions {
		if f.Name == "main" {
			return f
		}
	}
	return nil
}
