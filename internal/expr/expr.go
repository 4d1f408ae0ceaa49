// Package expr builds predicate and value expressions over records.
package expr

import (
	"fmt"
	"strings"
)

// ExprType represents the type of expression
type ExprType int

const (
	ExprColumn ExprType = iota
	ExprLiteral
	ExprBinary
	ExprUnary
	ExprFunction
)

// Expr is an expression evaluated against one record at a time.
type Expr interface {
	Type() ExprType
	String() string
}

// ColumnExpr reads a key, or a path of keys through nested records.
type ColumnExpr struct {
	path []string
}

func (c *ColumnExpr) Type() ExprType {
	return ExprColumn
}

func (c *ColumnExpr) String() string {
	return fmt.Sprintf("col(%s)", strings.Join(c.path, "."))
}

// Name returns the outermost key.
func (c *ColumnExpr) Name() string {
	return c.path[0]
}

// Path returns the keys walked from the record to the value.
func (c *ColumnExpr) Path() []string {
	return append([]string(nil), c.path...)
}

// LiteralExpr represents a literal value
type LiteralExpr struct {
	value any
}

func (l *LiteralExpr) Type() ExprType {
	return ExprLiteral
}

func (l *LiteralExpr) String() string {
	if s, ok := l.value.(string); ok {
		return fmt.Sprintf("lit(%q)", s)
	}
	return fmt.Sprintf("lit(%v)", l.value)
}

func (l *LiteralExpr) Value() any {
	return l.value
}

// BinaryOp represents binary operations
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
)

var binaryOpSymbols = map[BinaryOp]string{
	OpAdd: "+",
	OpSub: "-",
	OpMul: "*",
	OpDiv: "/",
	OpEq:  "==",
	OpNe:  "!=",
	OpLt:  "<",
	OpLe:  "<=",
	OpGt:  ">",
	OpGe:  ">=",
	OpAnd: "&&",
	OpOr:  "||",
}

func (op BinaryOp) String() string {
	return binaryOpSymbols[op]
}

// BinaryExpr represents a binary operation
type BinaryExpr struct {
	left  Expr
	op    BinaryOp
	right Expr
}

func (b *BinaryExpr) Type() ExprType {
	return ExprBinary
}

func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", b.left.String(), b.op, b.right.String())
}

func (b *BinaryExpr) Left() Expr {
	return b.left
}

func (b *BinaryExpr) Op() BinaryOp {
	return b.op
}

func (b *BinaryExpr) Right() Expr {
	return b.right
}

// UnaryOp represents unary operations
type UnaryOp int

const (
	UnaryNeg UnaryOp = iota
	UnaryNot
)

// UnaryExpr represents a unary operation
type UnaryExpr struct {
	op      UnaryOp
	operand Expr
}

func (u *UnaryExpr) Type() ExprType {
	return ExprUnary
}

func (u *UnaryExpr) String() string {
	opStr := "-"
	if u.op == UnaryNot {
		opStr = "!"
	}
	return fmt.Sprintf("(%s%s)", opStr, u.operand.String())
}

func (u *UnaryExpr) Op() UnaryOp {
	return u.op
}

func (u *UnaryExpr) Operand() Expr {
	return u.operand
}

// FunctionExpr applies a named builtin to its arguments.
type FunctionExpr struct {
	name string
	args []Expr
}

func (f *FunctionExpr) Type() ExprType {
	return ExprFunction
}

func (f *FunctionExpr) String() string {
	args := make([]string, len(f.args))
	for i, a := range f.args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", f.name, strings.Join(args, ", "))
}

func (f *FunctionExpr) Name() string {
	return f.name
}

func (f *FunctionExpr) Args() []Expr {
	return f.args
}

// Constructor functions

// Col creates a column expression. Several names walk nested records.
func Col(name string, nested ...string) *ColumnExpr {
	return &ColumnExpr{path: append([]string{name}, nested...)}
}

// Lit creates a literal expression
func Lit(value any) *LiteralExpr {
	return &LiteralExpr{value: value}
}

// Has is true when the column's path exists on the record.
func Has(c *ColumnExpr) *FunctionExpr {
	return &FunctionExpr{name: "has", args: []Expr{c}}
}

// And combines expressions; all must be true.
func And(first Expr, rest ...Expr) Expr {
	out := first
	for _, e := range rest {
		out = &BinaryExpr{left: out, op: OpAnd, right: e}
	}
	return out
}

// Or combines expressions; one must be true.
func Or(first Expr, rest ...Expr) Expr {
	out := first
	for _, e := range rest {
		out = &BinaryExpr{left: out, op: OpOr, right: e}
	}
	return out
}

// Not negates a boolean expression.
func Not(e Expr) *UnaryExpr {
	return &UnaryExpr{op: UnaryNot, operand: e}
}

// Neg negates a numeric expression.
func Neg(e Expr) *UnaryExpr {
	return &UnaryExpr{op: UnaryNeg, operand: e}
}

func binary(left Expr, op BinaryOp, right any) *BinaryExpr {
	return &BinaryExpr{left: left, op: op, right: operand(right)}
}

// operand lifts plain Go values to literals.
func operand(v any) Expr {
	if e, ok := v.(Expr); ok {
		return e
	}
	return Lit(v)
}

// Column builders. Arguments may be expressions or plain values.

func (c *ColumnExpr) Add(other any) *BinaryExpr { return binary(c, OpAdd, other) }
func (c *ColumnExpr) Sub(other any) *BinaryExpr { return binary(c, OpSub, other) }
func (c *ColumnExpr) Mul(other any) *BinaryExpr { return binary(c, OpMul, other) }
func (c *ColumnExpr) Div(other any) *BinaryExpr { return binary(c, OpDiv, other) }
func (c *ColumnExpr) Eq(other any) *BinaryExpr  { return binary(c, OpEq, other) }
func (c *ColumnExpr) Ne(other any) *BinaryExpr  { return binary(c, OpNe, other) }
func (c *ColumnExpr) Lt(other any) *BinaryExpr  { return binary(c, OpLt, other) }
func (c *ColumnExpr) Le(other any) *BinaryExpr  { return binary(c, OpLe, other) }
func (c *ColumnExpr) Gt(other any) *BinaryExpr  { return binary(c, OpGt, other) }
func (c *ColumnExpr) Ge(other any) *BinaryExpr  { return binary(c, OpGe, other) }

// Lower lowercases a string column.
func (c *ColumnExpr) Lower() *FunctionExpr {
	return &FunctionExpr{name: "lower", args: []Expr{c}}
}

// Upper uppercases a string column.
func (c *ColumnExpr) Upper() *FunctionExpr {
	return &FunctionExpr{name: "upper", args: []Expr{c}}
}

// Len is the length of a string or list column.
func (c *ColumnExpr) Len() *FunctionExpr {
	return &FunctionExpr{name: "len", args: []Expr{c}}
}

// Abs is the absolute value of a numeric column.
func (c *ColumnExpr) Abs() *FunctionExpr {
	return &FunctionExpr{name: "abs", args: []Expr{c}}
}

// Binary builders, for chaining arithmetic and logic.

func (b *BinaryExpr) Add(other any) *BinaryExpr { return binary(b, OpAdd, other) }
func (b *BinaryExpr) Sub(other any) *BinaryExpr { return binary(b, OpSub, other) }
func (b *BinaryExpr) Mul(other any) *BinaryExpr { return binary(b, OpMul, other) }
func (b *BinaryExpr) Div(other any) *BinaryExpr { return binary(b, OpDiv, other) }
func (b *BinaryExpr) Eq(other any) *BinaryExpr  { return binary(b, OpEq, other) }
func (b *BinaryExpr) Lt(other any) *BinaryExpr  { return binary(b, OpLt, other) }
func (b *BinaryExpr) Gt(other any) *BinaryExpr  { return binary(b, OpGt, other) }
func (b *BinaryExpr) And(other Expr) *BinaryExpr {
	return &BinaryExpr{left: b, op: OpAnd, right: other}
}
func (b *BinaryExpr) Or(other Expr) *BinaryExpr {
	return &BinaryExpr{left: b, op: OpOr, right: other}
}

// Function builders.

func (f *FunctionExpr) Eq(other any) *BinaryExpr { return binary(f, OpEq, other) }
func (f *FunctionExpr) Gt(other any) *BinaryExpr { return binary(f, OpGt, other) }
func (f *FunctionExpr) Lt(other any) *BinaryExpr { return binary(f, OpLt, other) }
