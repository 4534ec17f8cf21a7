package exec

import (
	"bufio"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/WoodRank/queryrunner/internal/catalog"
	"github.com/WoodRank/queryrunner/internal/qerrors"
	"github.com/WoodRank/queryrunner/internal/record"
)

var (
	_ Operator = (*Scan)(nil)
)

// Scan reads tuples from a comma-separated data file, resolving its
// base schema from the catalog by the file's basename and qualifying
// every column with an alias (spec.md §4.3).
//
// Grounded on original_source/src/operator.h's ScanOperator: open skips
// the header line, next parses one CSV line per column's declared type
// and skips a line that fails to parse (logging a warning and moving on
// to the next line), close releases the file handle.
type Scan struct {
	filePath        string
	alias           string
	baseSchema      *record.Schema
	qualifiedSchema *record.Schema

	file    *os.File
	scanner *bufio.Scanner
}

// NewScan looks up the schema for filepath.Base(filePath) in cat and
// builds the qualified output schema.
func NewScan(cat *catalog.Catalog, filePath, alias string) (*Scan, error) {
	tableName := filepath.Base(filePath)
	baseSchema, err := cat.Lookup(tableName)
	if err != nil {
		return nil, err
	}
	return &Scan{
		filePath:        filePath,
		alias:           alias,
		baseSchema:      baseSchema,
		qualifiedSchema: record.Qualify(baseSchema, alias),
	}, nil
}

func (s *Scan) Schema() *record.Schema { return s.qualifiedSchema }

func (s *Scan) Open() error {
	if s.file != nil {
		return nil
	}
	f, err := os.Open(s.filePath)
	if err != nil {
		return qerrors.Wrap(qerrors.IOError, "opening data file "+s.filePath, err)
	}
	s.file = f
	s.scanner = bufio.NewScanner(f)
	// Skip the header row.
	s.scanner.Scan()
	return nil
}

func (s *Scan) Next(tuple *record.Tuple) (bool, error) {
	for {
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return false, qerrors.Wrap(qerrors.IOError, "reading data file "+s.filePath, err)
			}
			return false, nil
		}
		line := s.scanner.Text()
		fields := strings.Split(line, ",")
		cols := s.baseSchema.Columns()

		out := make(record.Tuple, 0, len(cols))
		malformed := false
		for i, field := range fields {
			if i >= len(cols) {
				break // extra fields beyond the schema are ignored
			}
			val, ok := parseField(cols[i].Type, field)
			if !ok {
				log.Printf("scan %s: could not parse %q as %s for column %q, skipping row", s.filePath, field, cols[i].Type, cols[i].Name)
				malformed = true
				break
			}
			out = append(out, val)
		}
		if malformed {
			continue // skip to the next line instead of recursing
		}
		*tuple = out
		return true, nil
	}
}

func (s *Scan) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	s.scanner = nil
	if err != nil {
		return qerrors.Wrap(qerrors.IOError, "closing data file "+s.filePath, err)
	}
	return nil
}

func parseField(typ record.DataType, field string) (record.Value, bool) {
	switch typ {
	case record.TypeInt:
		n, err := strconv.ParseInt(field, 10, 32)
		if err != nil {
			return record.Value{}, false
		}
		return record.NewInt(int32(n)), true
	case record.TypeFloat:
		f, err := strconv.ParseFloat(field, 32)
		if err != nil {
			return record.Value{}, false
		}
		return record.NewFloat(float32(f)), true
	case record.TypeString:
		return record.NewString(field), true
	case record.TypeBool:
		return record.NewBool(field == "true" || field == "1"), true
	default:
		return record.Value{}, false
	}
}
