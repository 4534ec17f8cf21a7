// Package expr implements the expression tree that every physical
// operator evaluates per tuple: literals, column references, binary
// arithmetic/comparison, and logical negation.
//
// Grounded on the teacher's internal/query.Expression/Constant/Term
// (Evaluate(scan)/AppliesTo(schema) shape), generalized from cranedb's
// int/string-only Constant to the spec's four-variant record.Value, with
// the exact arithmetic/comparison rules ported from
// original_source/src/expression.h.
package expr

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/WoodRank/queryrunner/internal/qerrors"
	"github.com/WoodRank/queryrunner/internal/record"
)

// Expression is immutable after construction and owned by the operator
// that references it.
type Expression interface {
	// Evaluate computes this expression's value against tuple, resolving
	// any column references via schema.
	Evaluate(tuple record.Tuple, schema *record.Schema) (record.Value, error)

	// ColumnRefs returns the set of column names this expression's
	// subtree references — used by the plan translator's pushdown
	// rewrite to decide which side of a join a predicate belongs to.
	ColumnRefs() mapset.Set[string]
}

// Constant always evaluates to its stored Value, ignoring tuple/schema.
type Constant struct {
	Value record.Value
}

func NewConstant(v record.Value) *Constant { return &Constant{Value: v} }

func (c *Constant) Evaluate(record.Tuple, *record.Schema) (record.Value, error) {
	return c.Value, nil
}

func (c *Constant) ColumnRefs() mapset.Set[string] {
	return mapset.NewThreadUnsafeSet[string]()
}

// ColumnRef looks up Name in the evaluation schema and returns the
// corresponding field of the tuple.
type ColumnRef struct {
	Name string
}

func NewColumnRef(name string) *ColumnRef { return &ColumnRef{Name: name} }

func (c *ColumnRef) Evaluate(tuple record.Tuple, schema *record.Schema) (record.Value, error) {
	col, err := schema.Lookup(c.Name)
	if err != nil {
		return record.Value{}, err
	}
	if col.Index >= len(tuple) {
		return record.Value{}, qerrors.Newf(qerrors.UnknownColumn, "tuple has no value at index %d for column %q", col.Index, c.Name)
	}
	return tuple[col.Index], nil
}

func (c *ColumnRef) ColumnRefs() mapset.Set[string] {
	s := mapset.NewThreadUnsafeSet[string]()
	s.Add(c.Name)
	return s
}

// BinaryOp enumerates the supported binary operators.
type BinaryOp string

const (
	Add BinaryOp = "ADD"
	Sub BinaryOp = "SUB"
	Mul BinaryOp = "MUL"
	Div BinaryOp = "DIV"
	Eq  BinaryOp = "EQ"
	Neq BinaryOp = "NEQ"
	Gt  BinaryOp = "GT"
	Gte BinaryOp = "GTE"
	Lt  BinaryOp = "LT"
	Lte BinaryOp = "LTE"
)

// Binary evaluates Left then Right (both always evaluated — no
// short-circuit) and combines them according to Op.
type Binary struct {
	Op    BinaryOp
	Left  Expression
	Right Expression
}

func NewBinary(op BinaryOp, left, right Expression) *Binary {
	return &Binary{Op: op, Left: left, Right: right}
}

func (b *Binary) ColumnRefs() mapset.Set[string] {
	return b.Left.ColumnRefs().Union(b.Right.ColumnRefs())
}

func (b *Binary) Evaluate(tuple record.Tuple, schema *record.Schema) (record.Value, error) {
	left, err := b.Left.Evaluate(tuple, schema)
	if err != nil {
		return record.Value{}, err
	}
	right, err := b.Right.Evaluate(tuple, schema)
	if err != nil {
		return record.Value{}, err
	}

	switch b.Op {
	case Add, Sub, Mul, Div:
		return evalArithmetic(b.Op, left, right)
	case Eq, Neq:
		return evalEquality(b.Op, left, right)
	case Gt, Gte, Lt, Lte:
		return evalOrdering(b.Op, left, right)
	default:
		return record.Value{}, qerrors.Newf(qerrors.UnsupportedOperator, "unsupported binary operator %q", b.Op)
	}
}

func evalArithmetic(op BinaryOp, left, right record.Value) (record.Value, error) {
	if !left.IsNumeric() || !right.IsNumeric() {
		return record.Value{}, qerrors.Newf(qerrors.TypeError, "arithmetic operator %q requires numeric operands", op)
	}
	l, r := left.Float64(), right.Float64()

	var result float64
	switch op {
	case Add:
		result = l + r
	case Sub:
		result = l - r
	case Mul:
		result = l * r
	case Div:
		if r == 0 {
			return record.Value{}, qerrors.New(qerrors.DivideByZero, "division by zero")
		}
		result = l / r
	}
	return record.NewFloat(float32(result)), nil
}

func evalEquality(op BinaryOp, left, right record.Value) (record.Value, error) {
	if left.Kind != right.Kind {
		return record.Value{}, qerrors.Newf(qerrors.TypeError, "cannot compare %v operator across mismatched variants", op)
	}
	equal := left == right
	if op == Neq {
		equal = !equal
	}
	return record.NewBool(equal), nil
}

func evalOrdering(op BinaryOp, left, right record.Value) (record.Value, error) {
	if !left.IsNumeric() || !right.IsNumeric() {
		return record.Value{}, qerrors.Newf(qerrors.TypeError, "comparison operator %q requires numeric operands", op)
	}
	l, r := left.Float64(), right.Float64()

	var result bool
	switch op {
	case Gt:
		result = l > r
	case Gte:
		result = l >= r
	case Lt:
		result = l < r
	case Lte:
		result = l <= r
	}
	return record.NewBool(result), nil
}

// Not negates a boolean child expression.
type Not struct {
	Child Expression
}

func NewNot(child Expression) *Not { return &Not{Child: child} }

func (n *Not) ColumnRefs() mapset.Set[string] {
	return n.Child.ColumnRefs()
}

func (n *Not) Evaluate(tuple record.Tuple, schema *record.Schema) (record.Value, error) {
	val, err := n.Child.Evaluate(tuple, schema)
	if err != nil {
		return record.Value{}, err
	}
	if val.Kind != record.KindBool {
		return record.Value{}, qerrors.New(qerrors.TypeError, "NOT requires a boolean operand")
	}
	return record.NewBool(!val.Bool), nil
}
