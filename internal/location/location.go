// Package location is the static state → district → taluka → place table
// behind the cascading address dropdowns.
package location

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/gocarina/gocsv"
)

//go:embed locations.csv
var locationsCSV []byte

// Row is one leaf of the table
type Row struct {
	State    string `csv:"state"`
	District string `csv:"district"`
	Taluka   string `csv:"taluka"`
	Place    string `csv:"place"`
}

// Table answers option lists for each level, in file order
type Table struct {
	rows []Row
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
	defaultErr   error
)

// Default returns the embedded table, parsed on first use
func Default() (*Table, error) {
	defaultOnce.Do(func() {
		defaultTable, defaultErr = Parse(locationsCSV)
	})
	return defaultTable, defaultErr
}

// Parse reads a state,district,taluka,place CSV with a header row
func Parse(data []byte) (*Table, error) {
	var rows []Row
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse location table: %w", err)
	}
	clean := rows[:0]
	for _, r := range rows {
		r.State = strings.TrimSpace(r.State)
		r.District = strings.TrimSpace(r.District)
		r.Taluka = strings.TrimSpace(r.Taluka)
		r.Place = strings.TrimSpace(r.Place)
		if r.State == "" {
			continue
		}
		clean = append(clean, r)
	}
	return &Table{rows: clean}, nil
}

// distinct collects key(r) for matching rows, first occurrence wins
func (t *Table) distinct(match func(Row) bool, key func(Row) string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, r := range t.rows {
		if !match(r) {
			continue
		}
		k := key(r)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

func (t *Table) States() []string {
	return t.distinct(func(Row) bool { return true }, func(r Row) string { return r.State })
}

func (t *Table) Districts(state string) []string {
	return t.distinct(func(r Row) bool { return r.State == state }, func(r Row) string { return r.District })
}

func (t *Table) Talukas(state, district string) []string {
	return t.distinct(func(r Row) bool {
		return r.State == state && r.District == district
	}, func(r Row) string { return r.Taluka })
}

func (t *Table) Places(state, district, taluka string) []string {
	return t.distinct(func(r Row) bool {
		return r.State == state && r.District == district && r.Taluka == taluka
	}, func(r Row) string { return r.Place })
}

// Next returns the options of the first level left unset by the arguments
func (t *Table) Next(state, district, taluka string) (level string, options []string) {
	switch {
	case state == "":
		return "state", t.States()
	case district == "":
		return "district", t.Districts(state)
	case taluka == "":
		return "taluka", t.Talukas(state, district)
	default:
		return "place", t.Places(state, district, taluka)
	}
}
