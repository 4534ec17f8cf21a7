// Package result renders a tuple stream to an io.Writer for the CLI
// driver, matching the banner and per-row format of the original
// implementation.
//
// Grounded on original_source/src/types.h's printTuple/printValue
// (schema-name-prefixed columns joined by " | ") and main.cpp's
// "--- Query Results ---" banner and "Returned N rows." trailer, and on
// cmd/server/main.go's pattern of formatting a query's rows for the
// caller after execution completes.
package result

import (
	"fmt"
	"io"

	"github.com/WoodRank/queryrunner/internal/exec"
	"github.com/WoodRank/queryrunner/internal/record"
)

// Print runs op to exhaustion, writing one line per tuple to w in
// "<name>: <value> | <name>: <value> | ..." form, preceded by a banner
// and followed by a row-count trailer. It does not call op.Open or
// op.Close; the caller owns the operator's lifecycle.
func Print(w io.Writer, op exec.Operator) (rowCount int, err error) {
	schema := op.Schema()
	cols := schema.Columns()

	fmt.Fprintln(w, "--- Query Results ---")

	var tuple record.Tuple
	for {
		ok, err := op.Next(&tuple)
		if err != nil {
			return rowCount, err
		}
		if !ok {
			break
		}
		if err := printTuple(w, tuple, cols); err != nil {
			return rowCount, err
		}
		rowCount++
	}

	fmt.Fprintln(w, "---------------------")
	fmt.Fprintf(w, "Returned %d rows.\n", rowCount)
	return rowCount, nil
}

func printTuple(w io.Writer, tuple record.Tuple, cols []record.ColumnInfo) error {
	for i, v := range tuple {
		if i > 0 {
			if _, err := fmt.Fprint(w, " | "); err != nil {
				return err
			}
		}
		name := "?"
		if i < len(cols) {
			name = cols[i].Name
		}
		if _, err := fmt.Fprintf(w, "%s: %s", name, v.String()); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}
