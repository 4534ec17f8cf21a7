package exec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockNestedLoopJoinMatchesNestedLoopJoin(t *testing.T) {
	nlj := NewNestedLoopJoin(
		newSliceOperator(customersSchema(), customersRows()),
		newSliceOperator(ordersSchema(), ordersRows()),
		custkeyEquiJoinCondition(),
	)
	require.NoError(t, nlj.Open())
	want, err := drainAll(nlj)
	require.NoError(t, err)
	require.NoError(t, nlj.Close())

	blj := NewBlockNestedLoopJoin(
		newSliceOperator(customersSchema(), customersRows()),
		newSliceOperator(ordersSchema(), ordersRows()),
		custkeyEquiJoinCondition(),
		1, // block size smaller than the left input, forcing multiple blocks
	)
	require.NoError(t, blj.Open())
	defer blj.Close()
	got, err := drainAll(blj)
	require.NoError(t, err)

	assert.Equal(t, want, got)
}

func TestBlockNestedLoopJoinDefaultsBlockSize(t *testing.T) {
	blj := NewBlockNestedLoopJoin(
		newSliceOperator(customersSchema(), customersRows()),
		newSliceOperator(ordersSchema(), ordersRows()),
		custkeyEquiJoinCondition(),
		0,
	)
	assert.Equal(t, defaultBlockSize, blj.BlockSize)
}

func TestBlockNestedLoopJoinEmptyLeftYieldsNoRows(t *testing.T) {
	blj := NewBlockNestedLoopJoin(
		newSliceOperator(customersSchema(), nil),
		newSliceOperator(ordersSchema(), ordersRows()),
		custkeyEquiJoinCondition(),
		2,
	)
	require.NoError(t, blj.Open())
	defer blj.Close()

	rows, err := drainAll(blj)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
