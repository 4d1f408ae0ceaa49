package expr

import (
	"fmt"
	"math"
	"strings"

	"github.com/paveg/clump/internal/errors"
	"github.com/paveg/clump/internal/record"
)

const evalOp = "Evaluate"

// Evaluate computes e against r. A column missing from r is a key error.
func Evaluate(e Expr, r record.Record) (any, error) {
	switch ex := e.(type) {
	case *ColumnExpr:
		return evaluateColumn(ex, r)
	case *LiteralExpr:
		return ex.value, nil
	case *BinaryExpr:
		return evaluateBinary(ex, r)
	case *UnaryExpr:
		return evaluateUnary(ex, r)
	case *FunctionExpr:
		return evaluateFunction(ex, r)
	case nil:
		return nil, errors.NewArgumentError(evalOp, "nil expression")
	default:
		return nil, errors.NewArgumentError(evalOp, fmt.Sprintf("unsupported expression type: %T", e))
	}
}

// EvaluateBoolean evaluates e and requires a bool result.
func EvaluateBoolean(e Expr, r record.Record) (bool, error) {
	v, err := Evaluate(e, r)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, errors.NewArgumentError(evalOp, fmt.Sprintf("%s is not boolean, got %v (%T)", e, v, v))
	}
	return b, nil
}

// Predicate adapts e for Keep.
func Predicate(e Expr) record.Predicate {
	return func(r record.Record) (bool, error) {
		return EvaluateBoolean(e, r)
	}
}

// Mapper adapts e for Mutate. The mapper is stateless.
func Mapper(e Expr) record.Mapper {
	return record.MapperFunc(func(r record.Record) (any, error) {
		return Evaluate(e, r)
	})
}

func lookup(c *ColumnExpr, r record.Record) (any, bool) {
	var current any = r
	for _, key := range c.path {
		inner, ok := record.AsRecord(current)
		if !ok {
			return nil, false
		}
		current, ok = inner[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func evaluateColumn(c *ColumnExpr, r record.Record) (any, error) {
	v, ok := lookup(c, r)
	if !ok {
		return nil, errors.NewKeyError(evalOp, strings.Join(c.path, "."), "key does not exist on record")
	}
	return v, nil
}

func evaluateBinary(b *BinaryExpr, r record.Record) (any, error) {
	if b.op == OpAnd || b.op == OpOr {
		return evaluateLogical(b, r)
	}

	left, err := Evaluate(b.left, r)
	if err != nil {
		return nil, err
	}
	right, err := Evaluate(b.right, r)
	if err != nil {
		return nil, err
	}

	switch b.op {
	case OpEq:
		return record.Equal(left, right), nil
	case OpNe:
		return !record.Equal(left, right), nil
	case OpLt, OpLe, OpGt, OpGe:
		return evaluateComparison(b.op, left, right)
	default:
		return evaluateArithmetic(b.op, left, right)
	}
}

func evaluateLogical(b *BinaryExpr, r record.Record) (any, error) {
	left, err := EvaluateBoolean(b.left, r)
	if err != nil {
		return nil, err
	}
	if b.op == OpAnd && !left {
		return false, nil
	}
	if b.op == OpOr && left {
		return true, nil
	}
	return EvaluateBoolean(b.right, r)
}

func evaluateComparison(op BinaryOp, left, right any) (any, error) {
	if !record.Comparable(left, right) {
		return nil, errors.NewArgumentError(evalOp,
			fmt.Sprintf("cannot compare %v (%T) %s %v (%T)", left, left, op, right, right))
	}
	c := record.Compare(left, right)
	switch op {
	case OpLt:
		return c < 0, nil
	case OpLe:
		return c <= 0, nil
	case OpGt:
		return c > 0, nil
	default:
		return c >= 0, nil
	}
}

// evaluateArithmetic keeps integer results for integer operands, except for
// division which always yields a float.
func evaluateArithmetic(op BinaryOp, left, right any) (any, error) {
	if ls, ok := left.(string); ok && op == OpAdd {
		if rs, ok := right.(string); ok {
			return ls + rs, nil
		}
	}

	li, lInt := record.ToInt(left)
	ri, rInt := record.ToInt(right)
	if lInt && rInt && op != OpDiv {
		switch op {
		case OpAdd:
			return li + ri, nil
		case OpSub:
			return li - ri, nil
		case OpMul:
			return li * ri, nil
		}
	}

	lf, lok := record.ToFloat(left)
	rf, rok := record.ToFloat(right)
	if !lok || !rok {
		return nil, errors.NewArgumentError(evalOp,
			fmt.Sprintf("cannot apply %s to %v (%T) and %v (%T)", op, left, left, right, right))
	}
	switch op {
	case OpAdd:
		return lf + rf, nil
	case OpSub:
		return lf - rf, nil
	case OpMul:
		return lf * rf, nil
	default:
		if rf == 0 {
			return nil, errors.NewArgumentError(evalOp, "division by zero")
		}
		return lf / rf, nil
	}
}

func evaluateUnary(u *UnaryExpr, r record.Record) (any, error) {
	if u.op == UnaryNot {
		b, err := EvaluateBoolean(u.operand, r)
		if err != nil {
			return nil, err
		}
		return !b, nil
	}

	v, err := Evaluate(u.operand, r)
	if err != nil {
		return nil, err
	}
	if i, ok := record.ToInt(v); ok {
		return -i, nil
	}
	if f, ok := record.ToFloat(v); ok {
		return -f, nil
	}
	return nil, errors.NewArgumentError(evalOp, fmt.Sprintf("cannot negate %v (%T)", v, v))
}

func evaluateFunction(f *FunctionExpr, r record.Record) (any, error) {
	if len(f.args) != 1 {
		return nil, errors.NewArgumentError(evalOp, fmt.Sprintf("%s takes one argument, got %d", f.name, len(f.args)))
	}

	if f.name == "has" {
		c, ok := f.args[0].(*ColumnExpr)
		if !ok {
			return nil, errors.NewArgumentError(evalOp, "has needs a column")
		}
		_, found := lookup(c, r)
		return found, nil
	}

	v, err := Evaluate(f.args[0], r)
	if err != nil {
		return nil, err
	}

	switch f.name {
	case "lower", "upper":
		s, ok := v.(string)
		if !ok {
			return nil, errors.NewArgumentError(evalOp, fmt.Sprintf("%s needs a string, got %T", f.name, v))
		}
		if f.name == "lower" {
			return strings.ToLower(s), nil
		}
		return strings.ToUpper(s), nil
	case "len":
		if s, ok := v.(string); ok {
			return int64(len([]rune(s))), nil
		}
		if list, ok := record.AsList(v); ok {
			return int64(len(list)), nil
		}
		if rec, ok := record.AsRecord(v); ok {
			return int64(len(rec)), nil
		}
		return nil, errors.NewArgumentError(evalOp, fmt.Sprintf("len needs a string, list or record, got %T", v))
	case "abs":
		if i, ok := record.ToInt(v); ok {
			if i < 0 {
				return -i, nil
			}
			return i, nil
		}
		if fl, ok := record.ToFloat(v); ok {
			return math.Abs(fl), nil
		}
		return nil, errors.NewArgumentError(evalOp, fmt.Sprintf("abs needs a number, got %T", v))
	default:
		return nil, errors.NewArgumentError(evalOp, fmt.Sprintf("unknown function %q", f.name))
	}
}
