package exec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WoodRank/queryrunner/internal/expr"
)

func custkeyEquiJoinCondition() expr.Expression {
	return &expr.Binary{
		Op:    expr.Eq,
		Left:  &expr.ColumnRef{Name: "c.custkey"},
		Right: &expr.ColumnRef{Name: "o.custkey"},
	}
}

func TestNestedLoopJoinMatchesAcrossFullCrossProduct(t *testing.T) {
	left := newSliceOperator(customersSchema(), customersRows())
	right := newSliceOperator(ordersSchema(), ordersRows())
	j := NewNestedLoopJoin(left, right, custkeyEquiJoinCondition())

	require.NoError(t, j.Open())
	defer j.Close()

	rows, err := drainAll(j)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, row := range rows {
		assert.Equal(t, row[0].Int, row[4].Int)
	}
}

func TestNestedLoopJoinEmptyRightYieldsNoRows(t *testing.T) {
	left := newSliceOperator(customersSchema(), customersRows())
	right := newSliceOperator(ordersSchema(), nil)
	j := NewNestedLoopJoin(left, right, custkeyEquiJoinCondition())

	require.NoError(t, j.Open())
	defer j.Close()

	rows, err := drainAll(j)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestNestedLoopJoinReopenIsFreshRun(t *testing.T) {
	left := newSliceOperator(customersSchema(), customersRows())
	right := newSliceOperator(ordersSchema(), ordersRows())
	j := NewNestedLoopJoin(left, right, custkeyEquiJoinCondition())

	require.NoError(t, j.Open())
	first, err := drainAll(j)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	require.NoError(t, j.Open())
	second, err := drainAll(j)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	assert.Equal(t, first, second)
}
