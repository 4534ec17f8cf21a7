package exec

import (
	"github.com/WoodRank/queryrunner/internal/expr"
	"github.com/WoodRank/queryrunner/internal/qerrors"
	"github.com/WoodRank/queryrunner/internal/record"
)

var (
	_ Operator = (*Filter)(nil)
)

// Filter pulls from Input and returns the first tuple for which
// Predicate evaluates to boolean true (spec.md §4.4). The plan document
// spells this node "Select"; it is named Filter here for the same
// relational-algebra term the teacher's own SelectScan/SelectPlan use.
//
// Grounded on original_source/src/operator.h's SelectOperator loop.
type Filter struct {
	Input     Operator
	Predicate expr.Expression
}

func NewFilter(input Operator, predicate expr.Expression) *Filter {
	return &Filter{Input: input, Predicate: predicate}
}

func (f *Filter) Schema() *record.Schema { return f.Input.Schema() }

func (f *Filter) Open() error { return f.Input.Open() }

func (f *Filter) Close() error { return f.Input.Close() }

func (f *Filter) Next(tuple *record.Tuple) (bool, error) {
	for {
		ok, err := f.Input.Next(tuple)
		if err != nil || !ok {
			return false, err
		}
		result, err := f.Predicate.Evaluate(*tuple, f.Schema())
		if err != nil {
			return false, err
		}
		if result.Kind != record.KindBool {
			return false, qerrors.New(qerrors.TypeError, "filter predicate did not evaluate to a boolean")
		}
		if result.Bool {
			return true, nil
		}
	}
}
