package exec

import (
	"github.com/WoodRank/queryrunner/internal/expr"
	"github.com/WoodRank/queryrunner/internal/record"
)

const defaultBlockSize = 100

var (
	_ Operator = (*BlockNestedLoopJoin)(nil)
)

// BlockNestedLoopJoin buffers up to BlockSize left tuples into a block
// and rescans the right side once per left tuple within that block
// (spec.md §4.8). The right side is therefore reset once per left tuple,
// as in NestedLoopJoin, plus once per block load; the block bounds how
// many left tuples are held in memory at a time.
//
// Grounded on original_source/src/operator.h's
// BlockNestedLoopJoinOperator, generalized from the same left-outer /
// right-inner reset loop as NestedLoopJoin.
type BlockNestedLoopJoin struct {
	Left      Operator
	Right     Operator
	Condition expr.Expression
	BlockSize int

	outputSchema *record.Schema
	block        []record.Tuple
	blockIndex   int
}

func NewBlockNestedLoopJoin(left, right Operator, condition expr.Expression, blockSize int) *BlockNestedLoopJoin {
	if blockSize <= 0 {
		blockSize = defaultBlockSize
	}
	return &BlockNestedLoopJoin{
		Left:         left,
		Right:        right,
		Condition:    condition,
		BlockSize:    blockSize,
		outputSchema: record.Merge(left.Schema(), right.Schema()),
	}
}

func (j *BlockNestedLoopJoin) Schema() *record.Schema { return j.outputSchema }

func (j *BlockNestedLoopJoin) Open() error {
	if err := j.Left.Open(); err != nil {
		return err
	}
	if err := j.Right.Open(); err != nil {
		return err
	}
	_, err := j.loadNextBlock()
	return err
}

func (j *BlockNestedLoopJoin) Close() error {
	leftErr := j.Left.Close()
	rightErr := j.Right.Close()
	if leftErr != nil {
		return leftErr
	}
	return rightErr
}

// loadNextBlock pulls up to BlockSize tuples from the left side into
// the in-memory block and resets the right side. It returns true iff
// the new block is non-empty.
func (j *BlockNestedLoopJoin) loadNextBlock() (bool, error) {
	j.block = j.block[:0]
	j.blockIndex = 0

	for len(j.block) < j.BlockSize {
		var t record.Tuple
		ok, err := j.Left.Next(&t)
		if err != nil {
			return false, err
		}
		if !ok {
			break
		}
		j.block = append(j.block, t)
	}

	if err := j.Right.Close(); err != nil {
		return false, err
	}
	if err := j.Right.Open(); err != nil {
		return false, err
	}
	return len(j.block) > 0, nil
}

func (j *BlockNestedLoopJoin) Next(tuple *record.Tuple) (bool, error) {
	for len(j.block) > 0 {
		var rightTuple record.Tuple
		ok, err := j.Right.Next(&rightTuple)
		if err != nil {
			return false, err
		}
		if ok {
			combined := record.Concat(j.block[j.blockIndex], rightTuple)
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

		// Right exhausted for the current left tuple in the block.
		j.blockIndex++
		if j.blockIndex >= len(j.block) {
			hasMore, err := j.loadNextBlock()
			if err != nil {
				return false, err
			}
			if !hasMore {
				return false, nil
			}
			continue
		}
		if err := j.Right.Close(); err != nil {
			return false, err
		}
		if err := j.Right.Open(); err != nil {
			return false, err
		}
	}
	return false, nil
}
