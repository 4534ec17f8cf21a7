package exec

import (
	"github.com/WoodRank/queryrunner/internal/expr"
	"github.com/WoodRank/queryrunner/internal/record"
)

var (
	_ Operator = (*Project)(nil)
)

// ProjExpr bundles one output column's alias with the expression that
// computes it.
type ProjExpr struct {
	Alias string
	Expr  expr.Expression
}

// Project transforms tuples by evaluating a list of expressions
// (spec.md §4.5). Output column types follow a deliberately coarse
// inference rule, ported from original_source/src/operator.h's
// ProjectOperator constructor: Binary → FLOAT, ColumnRef → copied from
// the input schema, Constant → the literal's own variant, anything
// else → STRING.
type Project struct {
	Input        Operator
	Expressions  []ProjExpr
	outputSchema *record.Schema
}

func NewProject(input Operator, exprs []ProjExpr) *Project {
	p := &Project{Input: input, Expressions: exprs}
	p.outputSchema = record.NewSchema()
	inputSchema := input.Schema()
	for _, pe := range exprs {
		p.outputSchema.AddColumn(pe.Alias, inferProjectedType(pe.Expr, inputSchema))
	}
	return p
}

func inferProjectedType(e expr.Expression, inputSchema *record.Schema) record.DataType {
	switch v := e.(type) {
	case *expr.Binary:
		return record.TypeFloat
	case *expr.ColumnRef:
		if col, err := inputSchema.Lookup(v.Name); err == nil {
			return col.Type
		}
		return record.TypeString
	case *expr.Constant:
		return v.Value.DataType()
	default:
		return record.TypeString
	}
}

func (p *Project) Schema() *record.Schema { return p.outputSchema }

func (p *Project) Open() error { return p.Input.Open() }

func (p *Project) Close() error { return p.Input.Close() }

func (p *Project) Next(tuple *record.Tuple) (bool, error) {
	var inputTuple record.Tuple
	ok, err := p.Input.Next(&inputTuple)
	if err != nil || !ok {
		return false, err
	}

	out := make(record.Tuple, 0, len(p.Expressions))
	for _, pe := range p.Expressions {
		val, err := pe.Expr.Evaluate(inputTuple, p.Input.Schema())
		if err != nil {
			return false, err
		}
		out = append(out, val)
	}
	*tuple = out
	return true, nil
}
