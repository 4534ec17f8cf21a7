// Package exec implements the physical operators of the pull-based
// (Volcano) execution engine: table scan, filter, projection, limit,
// and three join strategies, all built to the same Open/Next/Close
// iterator contract.
//
// Grounded on the teacher's internal/scan.Scan interface
// (BeforeFirst/Next/Close), generalized here to return an explicit
// error and a whole Tuple per call rather than one field at a time, to
// match the tuple-at-a-time contract of original_source/src/operator.h.
package exec

import "github.com/WoodRank/queryrunner/internal/record"

// Operator is a pull iterator node with a stable output schema.
//
// Open is idempotent with respect to a prior Close and must reset all
// per-run state (counters, hash tables, block windows, file positions)
// so that Open→…→Close→Open behaves as a fresh run.
//
// Next produces the next output tuple into *tuple and returns true, or
// returns false once end-of-stream is reached; once false is returned,
// subsequent calls must keep returning false. An error aborts the
// query.
//
// Close is idempotent and recursively closes children.
//
// Schema is stable across the operator's lifetime and must be valid
// before Open is called.
type Operator interface {
	Open() error
	Next(tuple *record.Tuple) (bool, error)
	Close() error
	Schema() *record.Schema
}
