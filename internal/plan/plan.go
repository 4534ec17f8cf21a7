// Package plan translates a structured plan document into an operator
// tree, resolving table schemas against a catalog and applying a local
// predicate-pushdown rewrite.
//
// Grounded on the teacher's internal/plan.BasicQueryPlanner
// (query_planner.go), which walks query data and wraps table plans with
// SelectPlan/ProjectPlan/ProductPlan, and internal/query.Predicate's
// SelectSubPred/JoinSubPred (predicate.go), whose "is this term's field
// set a subset of this schema" test is generalized here via
// mapset.Set[string] rather than per-term schema membership checks,
// since this translator works over one compound Expression rather than
// a conjunction of Terms.
package plan

import (
	"encoding/json"
	"path/filepath"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/WoodRank/queryrunner/internal/catalog"
	"github.com/WoodRank/queryrunner/internal/exec"
	"github.com/WoodRank/queryrunner/internal/expr"
	"github.com/WoodRank/queryrunner/internal/qerrors"
	"github.com/WoodRank/queryrunner/internal/record"
)

// Node mirrors spec §4.10's plan document shape: a generic tree of
// nodes discriminated by "op", decoded into one struct that carries the
// fields of every op, since different ops carry different children.
type Node struct {
	Op string `json:"op"`

	// Scan
	Table string `json:"table"`
	As    string `json:"as"`

	// Select / Limit / Project single-child forms
	Input *Node `json:"input"`

	// Select
	Predicate *ExprNode `json:"predicate"`

	// Project
	Exprs []ProjectExprNode `json:"exprs"`

	// Limit
	Limit int `json:"limit"`

	// Join
	Left      *Node     `json:"left"`
	Right     *Node     `json:"right"`
	Condition *ExprNode `json:"condition"`
	Method    string    `json:"method"`
	BlockSize int       `json:"block_size"`
}

// ProjectExprNode is one `{as, expr}` entry of a Project node's exprs
// list.
type ProjectExprNode struct {
	As   string    `json:"as"`
	Expr *ExprNode `json:"expr"`
}

// ExprNode mirrors the four expression node forms of spec §4.10:
// {const,type}, {col}, {op,left,right}, {op:"NOT",expr}.
type ExprNode struct {
	Const *json.RawMessage `json:"const"`
	Type  string           `json:"type"`

	Col string `json:"col"`

	Op    string    `json:"op"`
	Left  *ExprNode `json:"left"`
	Right *ExprNode `json:"right"`
	Expr  *ExprNode `json:"expr"`
}

// Translate parses planJSON and builds the corresponding operator
// tree, resolving Scan schemas against cat and table paths against
// dataDir.
func Translate(planJSON []byte, cat *catalog.Catalog, dataDir string) (exec.Operator, error) {
	var root Node
	if err := json.Unmarshal(planJSON, &root); err != nil {
		return nil, qerrors.Wrap(qerrors.PlanError, "parsing plan document", err)
	}
	return buildNode(&root, cat, dataDir)
}

func buildNode(n *Node, cat *catalog.Catalog, dataDir string) (exec.Operator, error) {
	switch n.Op {
	case "Scan":
		return buildScan(n, cat, dataDir)
	case "Select":
		return buildSelect(n, cat, dataDir)
	case "Project":
		return buildProject(n, cat, dataDir)
	case "Limit":
		return buildLimit(n, cat, dataDir)
	case "Join":
		return buildJoin(n, cat, dataDir)
	default:
		return nil, qerrors.Newf(qerrors.UnsupportedOperator, "unrecognized plan node %q", n.Op)
	}
}

func buildScan(n *Node, cat *catalog.Catalog, dataDir string) (exec.Operator, error) {
	return exec.NewScan(cat, filepath.Join(dataDir, n.Table), n.As)
}

func buildProject(n *Node, cat *catalog.Catalog, dataDir string) (exec.Operator, error) {
	if n.Input == nil {
		return nil, qerrors.New(qerrors.PlanError, "Project node missing input")
	}
	input, err := buildNode(n.Input, cat, dataDir)
	if err != nil {
		return nil, err
	}
	exprs := make([]exec.ProjExpr, 0, len(n.Exprs))
	for _, pe := range n.Exprs {
		e, err := buildExpr(pe.Expr)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, exec.ProjExpr{Alias: pe.As, Expr: e})
	}
	return exec.NewProject(input, exprs), nil
}

func buildLimit(n *Node, cat *catalog.Catalog, dataDir string) (exec.Operator, error) {
	if n.Input == nil {
		return nil, qerrors.New(qerrors.PlanError, "Limit node missing input")
	}
	input, err := buildNode(n.Input, cat, dataDir)
	if err != nil {
		return nil, err
	}
	return exec.NewLimit(input, n.Limit), nil
}

// buildSelect implements the pushdown rewrite of spec §4.10: only when
// this Select sits directly above a Join do we attempt to relocate the
// filter; any other shape builds a plain Filter over its input.
func buildSelect(n *Node, cat *catalog.Catalog, dataDir string) (exec.Operator, error) {
	if n.Input == nil {
		return nil, qerrors.New(qerrors.PlanError, "Select node missing input")
	}
	if n.Predicate == nil {
		return nil, qerrors.New(qerrors.PlanError, "Select node missing predicate")
	}
	predicate, err := buildExpr(n.Predicate)
	if err != nil {
		return nil, err
	}

	if n.Input.Op == "Join" {
		pushed, err := tryPushdown(n.Input, predicate, cat, dataDir)
		if err != nil {
			return nil, err
		}
		if pushed != nil {
			return pushed, nil
		}
	}

	input, err := buildNode(n.Input, cat, dataDir)
	if err != nil {
		return nil, err
	}
	return exec.NewFilter(input, predicate), nil
}

// tryPushdown attempts to relocate predicate below joinNode, per spec
// §4.10: collect the predicate's referenced columns, and if that set is
// a non-empty subset of exactly one child's schema columns, wrap that
// child in a Filter before constructing the join. Returns nil (no
// rewrite) when the predicate straddles both sides or references
// neither.
func tryPushdown(joinNode *Node, predicate expr.Expression, cat *catalog.Catalog, dataDir string) (exec.Operator, error) {
	if joinNode.Left == nil || joinNode.Right == nil || joinNode.Condition == nil {
		return nil, qerrors.New(qerrors.PlanError, "Join node missing left, right or condition")
	}

	cols := predicate.ColumnRefs()
	if cols.Cardinality() == 0 {
		return nil, nil
	}

	left, err := buildNode(joinNode.Left, cat, dataDir)
	if err != nil {
		return nil, err
	}
	right, err := buildNode(joinNode.Right, cat, dataDir)
	if err != nil {
		return nil, err
	}

	leftCols := schemaColumnSet(left.Schema())
	rightCols := schemaColumnSet(right.Schema())

	condition, err := buildExpr(joinNode.Condition)
	if err != nil {
		return nil, err
	}

	// Hash-join pushdown degrades to nested-loop (spec §9, §4.10).
	method := joinNode.Method
	if cols.IsSubset(leftCols) {
		op, err := buildJoinOperator(exec.NewFilter(left, predicate), right, condition, degradeHash(method), joinNode.BlockSize)
		return op, err
	}
	if cols.IsSubset(rightCols) {
		op, err := buildJoinOperator(left, exec.NewFilter(right, predicate), condition, degradeHash(method), joinNode.BlockSize)
		return op, err
	}
	return nil, nil
}

func degradeHash(method string) string {
	if method == "hash" {
		return "nested_loop"
	}
	return method
}

func schemaColumnSet(schema *record.Schema) mapset.Set[string] {
	set := mapset.NewThreadUnsafeSet[string]()
	for _, col := range schema.Columns() {
		set.Add(col.Name)
	}
	return set
}

func buildJoin(n *Node, cat *catalog.Catalog, dataDir string) (exec.Operator, error) {
	if n.Left == nil || n.Right == nil || n.Condition == nil {
		return nil, qerrors.New(qerrors.PlanError, "Join node missing left, right or condition")
	}
	left, err := buildNode(n.Left, cat, dataDir)
	if err != nil {
		return nil, err
	}
	right, err := buildNode(n.Right, cat, dataDir)
	if err != nil {
		return nil, err
	}
	condition, err := buildExpr(n.Condition)
	if err != nil {
		return nil, err
	}
	return buildJoinOperator(left, right, condition, n.Method, n.BlockSize)
}

func buildJoinOperator(left, right exec.Operator, condition expr.Expression, method string, blockSize int) (exec.Operator, error) {
	switch method {
	case "", "nested_loop":
		return exec.NewNestedLoopJoin(left, right, condition), nil
	case "block_nested_loop":
		return exec.NewBlockNestedLoopJoin(left, right, condition, blockSize), nil
	case "hash":
		binary, ok := condition.(*expr.Binary)
		if !ok || binary.Op != expr.Eq {
			return nil, qerrors.New(qerrors.PlanError, "hash join requires an EQ condition")
		}
		probeKey, buildKey, err := alignHashKeys(binary, left.Schema(), right.Schema())
		if err != nil {
			return nil, err
		}
		return exec.NewHashJoin(left, right, probeKey, buildKey), nil
	default:
		return nil, qerrors.Newf(qerrors.PlanError, "unrecognized join method %q", method)
	}
}

// alignHashKeys decides which side of binary's EQ operands is the
// probe key and which is the build key, swapping them if the plan
// wrote them in the opposite order from (left=probe, right=build), per
// spec §4.10's "translator swaps them" rule.
func alignHashKeys(binary *expr.Binary, probeSchema, buildSchema *record.Schema) (probeKey, buildKey expr.Expression, err error) {
	leftCols := binary.Left.ColumnRefs()
	rightCols := binary.Right.ColumnRefs()

	probeCols := schemaColumnSet(probeSchema)
	buildCols := schemaColumnSet(buildSchema)

	if leftCols.IsSubset(probeCols) && rightCols.IsSubset(buildCols) {
		return binary.Left, binary.Right, nil
	}
	if leftCols.IsSubset(buildCols) && rightCols.IsSubset(probeCols) {
		return binary.Right, binary.Left, nil
	}
	return nil, nil, qerrors.New(qerrors.PlanError, "hash join keys do not align to either side")
}

func buildExpr(n *ExprNode) (expr.Expression, error) {
	if n == nil {
		return nil, qerrors.New(qerrors.PlanError, "missing expression node")
	}

	if n.Const != nil {
		value, err := decodeConstant(*n.Const, n.Type)
		if err != nil {
			return nil, err
		}
		return &expr.Constant{Value: value}, nil
	}
	if n.Col != "" {
		return &expr.ColumnRef{Name: n.Col}, nil
	}
	if n.Op == "NOT" {
		if n.Expr == nil {
			return nil, qerrors.New(qerrors.PlanError, "NOT node missing expr")
		}
		child, err := buildExpr(n.Expr)
		if err != nil {
			return nil, err
		}
		return &expr.Not{Child: child}, nil
	}
	if n.Op != "" {
		if n.Left == nil || n.Right == nil {
			return nil, qerrors.New(qerrors.PlanError, "binary expression node missing left or right")
		}
		left, err := buildExpr(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := buildExpr(n.Right)
		if err != nil {
			return nil, err
		}
		return &expr.Binary{Op: expr.BinaryOp(n.Op), Left: left, Right: right}, nil
	}
	return nil, qerrors.New(qerrors.PlanError, "malformed expression node")
}

func decodeConstant(raw json.RawMessage, typ string) (record.Value, error) {
	dataType, err := record.ParseDataType(typ)
	if err != nil {
		return record.Value{}, qerrors.Wrap(qerrors.PlanError, "decoding constant type", err)
	}
	switch dataType {
	case record.TypeInt:
		var n int32
		if err := json.Unmarshal(raw, &n); err != nil {
			return record.Value{}, qerrors.Wrap(qerrors.PlanError, "decoding int constant", err)
		}
		return record.NewInt(n), nil
	case record.TypeFloat:
		var f float32
		if err := json.Unmarshal(raw, &f); err != nil {
			return record.Value{}, qerrors.Wrap(qerrors.PlanError, "decoding float constant", err)
		}
		return record.NewFloat(f), nil
	case record.TypeString:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return record.Value{}, qerrors.Wrap(qerrors.PlanError, "decoding string constant", err)
		}
		return record.NewString(s), nil
	case record.TypeBool:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return record.Value{}, qerrors.Wrap(qerrors.PlanError, "decoding bool constant", err)
		}
		return record.NewBool(b), nil
	default:
		return record.Value{}, qerrors.Newf(qerrors.PlanError, "unsupported constant type %q", typ)
	}
}
