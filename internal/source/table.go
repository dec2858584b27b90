package source

import (
	"database/sql"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/ti-dashboard/ti-data/internal/model"
)

// SchemaError reports a table that does not match the column contract: a
// required column is absent, or a cell cannot be read as its column's type.
type SchemaError struct {
	Table  string
	Column string
	Row    int // 1-based data row; 0 when the whole column is at fault
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("table %s, column %s, row %d: %s", e.Table, e.Column, e.Row, e.Reason)
	}
	return fmt.Sprintf("table %s, column %s: %s", e.Table, e.Column, e.Reason)
}

type columnSpec struct {
	logical  string
	required []string
	optional []string
}

var (
	gamesColumns = columnSpec{
		logical:  "games",
		required: []string{"game_id", "game_name", "start_date", "end_date", "rounds", "game_max_victory_points"},
		optional: []string{"win_description"},
	}
	resultsColumns = columnSpec{
		logical:  "results",
		required: []string{"game_id", "player_name", "faction_short_name", "victory_points"},
		optional: []string{"starting_position"},
	}
	factionsColumns = columnSpec{
		logical:  "factions",
		required: []string{"faction_short_name", "faction_full_name"},
	}
)

// table is a decoded-but-untyped copy of one source table. Cells keep the
// driver's native Go types.
type table struct {
	name    string
	columns map[string]int
	rows    [][]any
	// rowNum[i] is the 1-based source row of rows[i]; blank rows are skipped.
	rowNum []int
}

func scanTable(rows *sql.Rows, name string, spec columnSpec) (*table, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns of %s: %w", name, err)
	}
	t := &table{name: name, columns: make(map[string]int, len(cols))}
	for i, c := range cols {
		key := normalizeColumn(c)
		if _, dup := t.columns[key]; !dup {
			t.columns[key] = i
		}
	}
	for _, c := range spec.required {
		if _, ok := t.columns[c]; !ok {
			return nil, &SchemaError{Table: name, Column: c, Reason: "required column is missing"}
		}
	}

	n := 0
	for rows.Next() {
		n++
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s row %d: %w", name, n, err)
		}
		if blankRow(vals) {
			continue
		}
		t.rows = append(t.rows, vals)
		t.rowNum = append(t.rowNum, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return t, nil
}

func normalizeColumn(c string) string {
	return strings.ToLower(strings.TrimSpace(c))
}

func blankRow(vals []any) bool {
	for _, v := range vals {
		if v == nil {
			continue
		}
		if s, ok := asText(v); ok && strings.TrimSpace(s) == "" {
			continue
		}
		return false
	}
	return true
}

func (t *table) cell(i int, col string) any {
	idx, ok := t.columns[col]
	if !ok {
		return nil
	}
	return t.rows[i][idx]
}

func (t *table) fail(i int, col string, err error) error {
	return &SchemaError{Table: t.name, Column: col, Row: t.rowNum[i], Reason: err.Error()}
}

func (t *table) intAt(i int, col string) (*int, error) {
	v, err := toInt(t.cell(i, col))
	if err != nil {
		return nil, t.fail(i, col, err)
	}
	return v, nil
}

func (t *table) requiredIntAt(i int, col string) (int, error) {
	v, err := t.intAt(i, col)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, &SchemaError{Table: t.name, Column: col, Row: t.rowNum[i], Reason: "value is required"}
	}
	return *v, nil
}

func (t *table) stringAt(i int, col string) *string {
	return toString(t.cell(i, col))
}

func (t *table) dateAt(i int, col string) (*model.Date, error) {
	v, err := toDate(t.cell(i, col))
	if err != nil {
		return nil, t.fail(i, col, err)
	}
	return v, nil
}

type floater interface {
	Float64() float64
}

func asText(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case []byte:
		return string(x), true
	}
	return "", false
}

// toInt reads whole numbers from any numeric driver type or numeric text.
// Fractional values are rejected.
func toInt(v any) (*int, error) {
	var f float64
	switch x := v.(type) {
	case nil:
		return nil, nil
	case int:
		return &x, nil
	case int8:
		return model.Ptr(int(x)), nil
	case int16:
		return model.Ptr(int(x)), nil
	case int32:
		return model.Ptr(int(x)), nil
	case int64:
		return model.Ptr(int(x)), nil
	case uint8:
		return model.Ptr(int(x)), nil
	case uint16:
		return model.Ptr(int(x)), nil
	case uint32:
		return model.Ptr(int(x)), nil
	case uint64:
		return model.Ptr(int(x)), nil
	case *big.Int:
		if !x.IsInt64() {
			return nil, fmt.Errorf("integer %s out of range", x)
		}
		return model.Ptr(int(x.Int64())), nil
	case float32:
		f = float64(x)
	case float64:
		f = x
	case floater:
		f = x.Float64()
	case bool:
		return nil, fmt.Errorf("expected a whole number, got boolean %v", x)
	default:
		s, ok := asText(v)
		if !ok {
			return nil, fmt.Errorf("expected a whole number, got %T", v)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, nil
		}
		if n, err := strconv.Atoi(s); err == nil {
			return &n, nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("expected a whole number, got %q", s)
		}
		f = parsed
	}
	if math.IsNaN(f) {
		return nil, nil
	}
	if math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil, fmt.Errorf("expected a whole number, got %v", f)
	}
	return model.Ptr(int(f)), nil
}

// toString trims text cells; empty text is treated as absent.
func toString(v any) *string {
	switch x := v.(type) {
	case nil:
		return nil
	case time.Time:
		return model.Ptr(model.DateOf(x).String())
	case float64:
		if math.IsNaN(x) {
			return nil
		}
		if x == math.Trunc(x) && !math.IsInf(x, 0) {
			return model.Ptr(strconv.FormatInt(int64(x), 10))
		}
		return model.Ptr(strconv.FormatFloat(x, 'f', -1, 64))
	}
	s, ok := asText(v)
	if !ok {
		s = fmt.Sprint(v)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// excelEpoch is day zero of spreadsheet serial dates.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

func toDate(v any) (*model.Date, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return model.DateOf(x), nil
	}
	if s, ok := asText(v); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, nil
		}
		if d, err := model.ParseDate(s); err == nil {
			return d, nil
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return nil, fmt.Errorf("expected a date, got %q", s)
		}
	}
	serial, err := toInt(truncateSerial(v))
	if err != nil || serial == nil {
		return nil, fmt.Errorf("expected a date, got %v", v)
	}
	return model.DateOf(excelEpoch.AddDate(0, 0, *serial)), nil
}

// truncateSerial drops the time-of-day fraction of a serial date.
func truncateSerial(v any) any {
	switch x := v.(type) {
	case float64:
		return math.Trunc(x)
	case float32:
		return math.Trunc(float64(x))
	}
	if s, ok := asText(v); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return math.Trunc(f)
		}
	}
	return v
}
