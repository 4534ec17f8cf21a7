package exec

import "github.com/WoodRank/queryrunner/internal/record"

// sliceOperator is a fixed in-memory source used by the operator tests
// below, playing the role a Scan would play without needing a real CSV
// file on disk.
type sliceOperator struct {
	schema *record.Schema
	rows   []record.Tuple
	pos    int
}

var _ Operator = (*sliceOperator)(nil)

func newSliceOperator(schema *record.Schema, rows []record.Tuple) *sliceOperator {
	return &sliceOperator{schema: schema, rows: rows}
}

func (s *sliceOperator) Schema() *record.Schema { return s.schema }

func (s *sliceOperator) Open() error {
	s.pos = 0
	return nil
}

func (s *sliceOperator) Close() error { return nil }

func (s *sliceOperator) Next(tuple *record.Tuple) (bool, error) {
	if s.pos >= len(s.rows) {
		return false, nil
	}
	*tuple = s.rows[s.pos].Clone()
	s.pos++
	return true, nil
}

func customersSchema() *record.Schema {
	schema := record.NewSchema()
	schema.AddColumn("c.custkey", record.TypeInt)
	schema.AddColumn("c.name", record.TypeString)
	schema.AddColumn("c.balance", record.TypeFloat)
	return schema
}

func customersRows() []record.Tuple {
	return []record.Tuple{
		{record.NewInt(1), record.NewString("Alice"), record.NewFloat(100.0)},
		{record.NewInt(2), record.NewString("Bob"), record.NewFloat(250.5)},
	}
}

func ordersSchema() *record.Schema {
	schema := record.NewSchema()
	schema.AddColumn("o.orderkey", record.TypeInt)
	schema.AddColumn("o.custkey", record.TypeInt)
	schema.AddColumn("o.total", record.TypeFloat)
	return schema
}

func ordersRows() []record.Tuple {
	return []record.Tuple{
		{record.NewInt(10), record.NewInt(1), record.NewFloat(9.0)},
		{record.NewInt(11), record.NewInt(1), record.NewFloat(1.0)},
		{record.NewInt(12), record.NewInt(2), record.NewFloat(5.0)},
	}
}

// drainAll runs op to exhaustion, returning every emitted tuple.
func drainAll(op Operator) ([]record.Tuple, error) {
	var out []record.Tuple
	var tuple record.Tuple
	for {
		ok, err := op.Next(&tuple)
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, tuple.Clone())
	}
}
