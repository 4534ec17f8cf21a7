package exec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WoodRank/queryrunner/internal/expr"
	"github.com/WoodRank/queryrunner/internal/record"
)

func TestFilterKeepsMatchingRows(t *testing.T) {
	src := newSliceOperator(customersSchema(), customersRows())
	predicate := &expr.Binary{
		Op:    expr.Gt,
		Left:  &expr.ColumnRef{Name: "c.balance"},
		Right: &expr.Constant{Value: record.NewFloat(150)},
	}
	f := NewFilter(src, predicate)

	require.NoError(t, f.Open())
	defer f.Close()

	rows, err := drainAll(f)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Bob", rows[0][1].Str)
}

func TestFilterNonBooleanPredicateIsTypeError(t *testing.T) {
	src := newSliceOperator(customersSchema(), customersRows())
	f := NewFilter(src, &expr.ColumnRef{Name: "c.balance"})

	require.NoError(t, f.Open())
	defer f.Close()

	var tuple record.Tuple
	_, err := f.Next(&tuple)
	require.Error(t, err)
}

func TestFilterReopenIsFreshRun(t *testing.T) {
	src := newSliceOperator(customersSchema(), customersRows())
	predicate := &expr.Binary{
		Op:    expr.Gt,
		Left:  &expr.ColumnRef{Name: "c.balance"},
		Right: &expr.Constant{Value: record.NewFloat(0)},
	}
	f := NewFilter(src, predicate)

	require.NoError(t, f.Open())
	first, err := drainAll(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, f.Open())
	second, err := drainAll(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	assert.Equal(t, first, second)
}
