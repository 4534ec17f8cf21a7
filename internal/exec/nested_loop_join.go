package exec

import (
	"github.com/WoodRank/queryrunner/internal/expr"
	"github.com/WoodRank/queryrunner/internal/qerrors"
	"github.com/WoodRank/queryrunner/internal/record"
)

var (
	_ Operator = (*NestedLoopJoin)(nil)
)

// NestedLoopJoin is the classical nested-loop join (spec.md §4.7):
// prime the outer (left) side with its first tuple, then for each
// outer tuple rescan the whole inner (right) side, resetting it with a
// Close/Open pair whenever it's exhausted.
//
// Grounded on original_source/src/operator.h's NestedLoopJoinOperator,
// generalized from the teacher's internal/scan.ProductScan, which
// implements the same "prime the outer, reset the inner on exhaustion"
// shape but as an unconditional cross product with no condition.
type NestedLoopJoin struct {
	Left      Operator
	Right     Operator
	Condition expr.Expression

	outputSchema *record.Schema
	leftTuple    record.Tuple
	hasLeft      bool
}

func NewNestedLoopJoin(left, right Operator, condition expr.Expression) *NestedLoopJoin {
	return &NestedLoopJoin{
		Left:         left,
		Right:        right,
		Condition:    condition,
		outputSchema: record.Merge(left.Schema(), right.Schema()),
	}
}

func (j *NestedLoopJoin) Schema() *record.Schema { return j.outputSchema }

func (j *NestedLoopJoin) Open() error {
	if err := j.Left.Open(); err != nil {
		return err
	}
	if err := j.Right.Open(); err != nil {
		return err
	}
	ok, err := j.Left.Next(&j.leftTuple)
	if err != nil {
		return err
	}
	j.hasLeft = ok
	return nil
}

func (j *NestedLoopJoin) Close() error {
	leftErr := j.Left.Close()
	rightErr := j.Right.Close()
	if leftErr != nil {
		return leftErr
	}
	return rightErr
}

func (j *NestedLoopJoin) Next(tuple *record.Tuple) (bool, error) {
	for j.hasLeft {
		var rightTuple record.Tuple
		ok, err := j.Right.Next(&rightTuple)
		if err != nil {
			return false, err
		}
		if ok {
			combined := record.Concat(j.leftTuple, rightTuple)
			match, err := evalJoinCondition(j.Condition, combined, j.outputSchema)
			if err != nil {
				return false, err
			}
			if match {
				*tuple = combined
				return true, nil
			}
			continue
		}

		// Right side exhausted for the current left tuple: advance left,
		// restart right.
		ok, err = j.Left.Next(&j.leftTuple)
		if err != nil {
			return false, err
		}
		j.hasLeft = ok
		if err := j.Right.Close(); err != nil {
			return false, err
		}
		if err := j.Right.Open(); err != nil {
			return false, err
		}
	}
	return false, nil
}

func evalJoinCondition(condition expr.Expression, combined record.Tuple, schema *record.Schema) (bool, error) {
	val, err := condition.Evaluate(combined, schema)
	if err != nil {
		return false, err
	}
	if val.Kind != record.KindBool {
		return false, qerrors.New(qerrors.TypeError, "join condition did not evaluate to a boolean")
	}
	return val.Bool, nil
}
