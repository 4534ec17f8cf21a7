package plan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WoodRank/queryrunner/internal/catalog"
	"github.com/WoodRank/queryrunner/internal/record"
)

func setupDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	customersSchema := `{"file":"customers.csv","columns":[
		{"name":"custkey","type":"int"},
		{"name":"name","type":"string"},
		{"name":"balance","type":"float"}]}`
	ordersSchema := `{"file":"orders.csv","columns":[
		{"name":"orderkey","type":"int"},
		{"name":"custkey","type":"int"},
		{"name":"total","type":"float"}]}`

	require.NoError(t, os.WriteFile(filepath.Join(dir, "customers.json"), []byte(customersSchema), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "orders.json"), []byte(ordersSchema), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "customers.csv"), []byte(
		"custkey,name,balance\n1,Alice,100.0\n2,Bob,250.5\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "orders.csv"), []byte(
		"orderkey,custkey,total\n10,1,9.0\n11,1,1.0\n12,2,5.0\n"), 0o644))

	return dir
}

func drain(t *testing.T, op interface {
	Open() error
	Next(*record.Tuple) (bool, error)
	Close() error
}) []record.Tuple {
	t.Helper()
	require.NoError(t, op.Open())
	defer op.Close()

	var out []record.Tuple
	for {
		var tuple record.Tuple
		ok, err := op.Next(&tuple)
		require.NoError(t, err)
		if !ok {
			return out
		}
		out = append(out, tuple.Clone())
	}
}

func TestTranslateScanAndProject(t *testing.T) {
	dir := setupDataDir(t)
	cat, err := catalog.Load(dir)
	require.NoError(t, err)

	planJSON := `{
		"op": "Project",
		"input": {"op": "Scan", "table": "customers.csv", "as": "c"},
		"exprs": [{"as": "n", "expr": {"col": "c.name"}}]
	}`

	root, err := Translate([]byte(planJSON), cat, dir)
	require.NoError(t, err)

	rows := drain(t, root)
	require.Len(t, rows, 2)
	assert.Equal(t, "Alice", rows[0][0].Str)
	assert.Equal(t, "Bob", rows[1][0].Str)
}

func TestTranslateFilter(t *testing.T) {
	dir := setupDataDir(t)
	cat, err := catalog.Load(dir)
	require.NoError(t, err)

	planJSON := `{
		"op": "Select",
		"input": {"op": "Scan", "table": "customers.csv", "as": "c"},
		"predicate": {"op": "GT", "left": {"col": "c.balance"}, "right": {"const": 150.0, "type": "float"}}
	}`

	root, err := Translate([]byte(planJSON), cat, dir)
	require.NoError(t, err)

	rows := drain(t, root)
	require.Len(t, rows, 1)
	assert.Equal(t, "Bob", rows[0][1].Str)
}

func joinPlanJSON(method string) string {
	return `{
		"op": "Join",
		"left": {"op": "Scan", "table": "customers.csv", "as": "c"},
		"right": {"op": "Scan", "table": "orders.csv", "as": "o"},
		"condition": {"op": "EQ", "left": {"col": "c.custkey"}, "right": {"col": "o.custkey"}},
		"method": "` + method + `"
	}`
}

func TestTranslateNestedLoopJoin(t *testing.T) {
	dir := setupDataDir(t)
	cat, err := catalog.Load(dir)
	require.NoError(t, err)

	root, err := Translate([]byte(joinPlanJSON("nested_loop")), cat, dir)
	require.NoError(t, err)

	rows := drain(t, root)
	require.Len(t, rows, 3)
}

func TestTranslateHashJoinMatchesNestedLoop(t *testing.T) {
	dir := setupDataDir(t)
	cat, err := catalog.Load(dir)
	require.NoError(t, err)

	nlRoot, err := Translate([]byte(joinPlanJSON("nested_loop")), cat, dir)
	require.NoError(t, err)
	want := drain(t, nlRoot)

	hashRoot, err := Translate([]byte(joinPlanJSON("hash")), cat, dir)
	require.NoError(t, err)
	got := drain(t, hashRoot)

	assert.ElementsMatch(t, want, got)
}

func TestTranslatePushdownOverJoin(t *testing.T) {
	dir := setupDataDir(t)
	cat, err := catalog.Load(dir)
	require.NoError(t, err)

	planJSON := `{
		"op": "Select",
		"predicate": {"op": "GT", "left": {"col": "c.balance"}, "right": {"const": 150.0, "type": "float"}},
		"input": ` + joinPlanJSON("nested_loop") + `
	}`

	root, err := Translate([]byte(planJSON), cat, dir)
	require.NoError(t, err)

	rows := drain(t, root)
	require.Len(t, rows, 1)
	assert.Equal(t, int32(12), rows[0][3].Int)
}

func TestTranslateLimitWithDivideByZeroFails(t *testing.T) {
	dir := setupDataDir(t)
	cat, err := catalog.Load(dir)
	require.NoError(t, err)

	planJSON := `{
		"op": "Limit",
		"limit": 1,
		"input": {
			"op": "Project",
			"input": {"op": "Scan", "table": "customers.csv", "as": "c"},
			"exprs": [{"as": "q", "expr": {"op": "DIV", "left": {"col": "c.balance"}, "right": {"const": 0, "type": "int"}}}]
		}
	}`

	root, err := Translate([]byte(planJSON), cat, dir)
	require.NoError(t, err)

	require.NoError(t, root.Open())
	defer root.Close()
	var tuple record.Tuple
	_, err = root.Next(&tuple)
	require.Error(t, err)
}

func TestTranslateUnknownOpFails(t *testing.T) {
	dir := setupDataDir(t)
	cat, err := catalog.Load(dir)
	require.NoError(t, err)

	_, err = Translate([]byte(`{"op": "Sort"}`), cat, dir)
	require.Error(t, err)
}
