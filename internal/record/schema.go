package record

import "github.com/WoodRank/queryrunner/internal/qerrors"

// ColumnInfo is one named, typed column at a fixed position within any
// Tuple conforming to the owning Schema.
type ColumnInfo struct {
	Name  string
	Type  DataType
	Index int
}

// Schema is an ordered list of columns plus a name→index map, the same
// shape as the teacher's record.Schema (AddField + fieldInfo map) but
// carrying the spec's positional Index explicitly on each column.
// AddColumn sets Index to the column's slice position; Merge renumbers
// the right schema's columns to follow the left's.
type Schema struct {
	columns []ColumnInfo
	index   map[string]int
}

// NewSchema returns an empty schema.
func NewSchema() *Schema {
	return &Schema{index: make(map[string]int)}
}

// AddColumn appends a new column, assigning it the next index. Column
// names within a schema are assumed unique by the caller (the plan
// producer is trusted, per spec.md §3).
func (s *Schema) AddColumn(name string, typ DataType) {
	idx := len(s.columns)
	s.columns = append(s.columns, ColumnInfo{Name: name, Type: typ, Index: idx})
	s.index[name] = idx
}

// Columns returns the schema's columns in order. Callers must not
// mutate the returned slice.
func (s *Schema) Columns() []ColumnInfo {
	return s.columns
}

// Len returns the number of columns.
func (s *Schema) Len() int {
	return len(s.columns)
}

// Lookup resolves a column name to its ColumnInfo, failing with
// UnknownColumn when absent (spec.md §3).
func (s *Schema) Lookup(name string) (ColumnInfo, error) {
	idx, ok := s.index[name]
	if !ok {
		return ColumnInfo{}, qerrors.Newf(qerrors.UnknownColumn, "unknown column %q", name)
	}
	return s.columns[idx], nil
}

// HasColumn reports whether name is present in the schema.
func (s *Schema) HasColumn(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Merge returns a new schema holding all of left's columns, in order,
// followed by all of right's, in order. Name collisions are permitted —
// operators are expected to qualify names with aliases to avoid them,
// per spec.md §3.
func Merge(left, right *Schema) *Schema {
	merged := NewSchema()
	for _, col := range left.columns {
		merged.AddColumn(col.Name, col.Type)
	}
	for _, col := range right.columns {
		merged.AddColumn(col.Name, col.Type)
	}
	return merged
}

// Qualify returns a new schema with every column of base renamed to
// "<alias>.<name>", preserving type and relative index — used by Scan
// to build its output schema from the catalog's base schema.
func Qualify(base *Schema, alias string) *Schema {
	qualified := NewSchema()
	for _, col := range base.columns {
		qualified.AddColumn(alias+"."+col.Name, col.Type)
	}
	return qualified
}
