package handlers

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SimpleRow is a pgx.Row backed by a scan function. A nil scanner behaves
// like an empty result set.
type SimpleRow struct {
	scan func(dest ...any) error
}

func NewSimpleRow(scanner func(dest ...any) error) SimpleRow {
	return SimpleRow{scan: scanner}
}

func (r SimpleRow) Scan(dest ...any) error {
	if r.scan == nil {
		return pgx.ErrNoRows
	}
	return r.scan(dest...)
}

// TestRowsBase stubs the pgx.Rows methods handler code never touches.
type TestRowsBase struct{}

func (TestRowsBase) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }

func (TestRowsBase) Conn() *pgx.Conn { return nil }

func (TestRowsBase) FieldDescriptions() []pgconn.FieldDescription { return nil }

func (TestRowsBase) Values() ([]any, error) {
	return nil, fmt.Errorf("values not supported in test rows")
}

func (TestRowsBase) RawValues() [][]byte { return nil }

// SliceRows is a pgx.Rows over literal row values.
type SliceRows struct {
	TestRowsBase
	Rows [][]any
	idx  int
}

func (r *SliceRows) Next() bool {
	if r.idx >= len(r.Rows) {
		return false
	}
	r.idx++
	return true
}

func (r *SliceRows) Scan(dest ...any) error {
	row := r.Rows[r.idx-1]
	if len(dest) != len(row) {
		return fmt.Errorf("scan expects %d destinations, got %d", len(row), len(dest))
	}
	for i, v := range row {
		if err := assignValue(dest[i], v); err != nil {
			return err
		}
	}
	return nil
}

func (r *SliceRows) Err() error { return nil }

func (r *SliceRows) Close() {}

func assignValue(dest, v any) error {
	switch d := dest.(type) {
	case *string:
		*d = v.(string)
	case *int:
		*d = v.(int)
	case *int64:
		*d = v.(int64)
	case *float64:
		*d = v.(float64)
	case *bool:
		*d = v.(bool)
	case *[]byte:
		*d = v.([]byte)
	case *time.Time:
		*d = v.(time.Time)
	default:
		return fmt.Errorf("unsupported scan destination %T", dest)
	}
	return nil
}
