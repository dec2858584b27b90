package source

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// TableInventory describes what a source table actually holds, before any
// typed decoding.
type TableInventory struct {
	Name           string   `json:"name"`
	Relation       string   `json:"relation"`
	Rows           int      `json:"rows"`
	Columns        []Column `json:"columns"`
	MissingColumns []string `json:"missing_columns"`
}

type Column struct {
	Name     string   `json:"name"`
	Expected bool     `json:"expected"`
	Types    []string `json:"types"`
	Nulls    int      `json:"nulls"`
}

// Inventory scans the three tables and reports their columns, the cell types
// the driver produced and any required columns that are missing. Unlike Load
// it never fails on schema problems.
func (s *sqlSource) Inventory(ctx context.Context) ([]TableInventory, error) {
	specs := []struct {
		name string
		spec columnSpec
	}{
		{s.cfg.GamesTable, gamesColumns},
		{s.cfg.ResultsTable, resultsColumns},
		{s.cfg.FactionsTable, factionsColumns},
	}

	out := make([]TableInventory, 0, len(specs))
	for _, sp := range specs {
		t, err := s.read(ctx, sp.name, columnSpec{logical: sp.spec.logical})
		if err != nil {
			return nil, err
		}
		out = append(out, inventoryOf(t, sp.name, sp.spec))
	}
	return out, nil
}

func inventoryOf(t *table, relation string, spec columnSpec) TableInventory {
	expected := make(map[string]bool, len(spec.required)+len(spec.optional))
	for _, c := range spec.required {
		expected[c] = true
	}
	for _, c := range spec.optional {
		expected[c] = true
	}

	names := make([]string, 0, len(t.columns))
	for name := range t.columns {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return t.columns[names[i]] < t.columns[names[j]]
	})

	inv := TableInventory{
		Name:           spec.logical,
		Relation:       relation,
		Rows:           len(t.rows),
		Columns:        make([]Column, 0, len(names)),
		MissingColumns: make([]string, 0),
	}
	for _, name := range names {
		idx := t.columns[name]
		types := make(map[string]struct{})
		nulls := 0
		for _, row := range t.rows {
			if row[idx] == nil {
				nulls++
				continue
			}
			types[cellType(row[idx])] = struct{}{}
		}
		col := Column{Name: name, Expected: expected[name], Nulls: nulls, Types: make([]string, 0, len(types))}
		for typ := range types {
			col.Types = append(col.Types, typ)
		}
		sort.Strings(col.Types)
		inv.Columns = append(inv.Columns, col)
	}
	for _, c := range spec.required {
		if _, ok := t.columns[c]; !ok {
			inv.MissingColumns = append(inv.MissingColumns, c)
		}
	}
	return inv
}

func cellType(v any) string {
	switch v.(type) {
	case string, []byte:
		return "string"
	case bool:
		return "bool"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "integer"
	case float32, float64:
		return "number"
	case time.Time:
		return "timestamp"
	default:
		return fmt.Sprintf("%T", v)
	}
}
