package exec

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WoodRank/queryrunner/internal/expr"
	"github.com/WoodRank/queryrunner/internal/record"
)

func tuplesAsStrings(rows []record.Tuple) []string {
	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = row.String()
	}
	sort.Strings(out)
	return out
}

func TestHashJoinMultisetMatchesNestedLoopJoin(t *testing.T) {
	nlj := NewNestedLoopJoin(
		newSliceOperator(customersSchema(), customersRows()),
		newSliceOperator(ordersSchema(), ordersRows()),
		custkeyEquiJoinCondition(),
	)
	require.NoError(t, nlj.Open())
	want, err := drainAll(nlj)
	require.NoError(t, err)
	require.NoError(t, nlj.Close())

	hj := NewHashJoin(
		newSliceOperator(customersSchema(), customersRows()),
		newSliceOperator(ordersSchema(), ordersRows()),
		&expr.ColumnRef{Name: "c.custkey"},
		&expr.ColumnRef{Name: "o.custkey"},
	)
	require.NoError(t, hj.Open())
	defer hj.Close()
	got, err := drainAll(hj)
	require.NoError(t, err)

	assert.ElementsMatch(t, tuplesAsStrings(want), tuplesAsStrings(got))
}

func TestHashJoinNoMatchesYieldsNoRows(t *testing.T) {
	left := newSliceOperator(customersSchema(), []record.Tuple{
		{record.NewInt(99), record.NewString("Nobody"), record.NewFloat(0)},
	})
	right := newSliceOperator(ordersSchema(), ordersRows())
	hj := NewHashJoin(left, right, &expr.ColumnRef{Name: "c.custkey"}, &expr.ColumnRef{Name: "o.custkey"})

	require.NoError(t, hj.Open())
	defer hj.Close()

	rows, err := drainAll(hj)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestHashJoinReopenIsFreshRun(t *testing.T) {
	hj := NewHashJoin(
		newSliceOperator(customersSchema(), customersRows()),
		newSliceOperator(ordersSchema(), ordersRows()),
		&expr.ColumnRef{Name: "c.custkey"},
		&expr.ColumnRef{Name: "o.custkey"},
	)

	require.NoError(t, hj.Open())
	first, err := drainAll(hj)
	require.NoError(t, err)
	require.NoError(t, hj.Close())

	require.NoError(t, hj.Open())
	second, err := drainAll(hj)
	require.NoError(t, err)
	require.NoError(t, hj.Close())

	assert.ElementsMatch(t, tuplesAsStrings(first), tuplesAsStrings(second))
}
