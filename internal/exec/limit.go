package exec

import "github.com/WoodRank/queryrunner/internal/record"

var (
	_ Operator = (*Limit)(nil)
)

// Limit stops producing tuples after Count tuples have been emitted
// (spec.md §4.6), grounded on original_source/src/operator.h's
// LimitOperator.
type Limit struct {
	Input Operator
	Count int

	produced int
}

func NewLimit(input Operator, count int) *Limit {
	return &Limit{Input: input, Count: count}
}

func (l *Limit) Schema() *record.Schema { return l.Input.Schema() }

func (l *Limit) Open() error {
	l.produced = 0
	return l.Input.Open()
}

func (l *Limit) Close() error { return l.Input.Close() }

func (l *Limit) Next(tuple *record.Tuple) (bool, error) {
	if l.produced >= l.Count {
		return false, nil
	}
	ok, err := l.Input.Next(tuple)
	if err != nil || !ok {
		return false, err
	}
	l.produced++
	return true, nil
}
