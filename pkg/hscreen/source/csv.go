package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/komsit37/hscreen/pkg/hscreen/types"
)

// CSVSource loads the reference table from a CSV file with a header row.
type CSVSource struct{}

// Load expects spec to be a string filepath.
func (CSVSource) Load(ctx context.Context, spec any) ([]types.Table, error) { //nolint:revive // ctx reserved for future use
	path, ok := spec.(string)
	if !ok {
		return nil, fmt.Errorf("csv source expects filepath string spec")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	recs, err := ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return []types.Table{{Name: name, Records: recs}}, nil
}

// header keys after normalisation
const (
	colSymbol      = "symbol"
	colName        = "name"
	colCountry     = "country"
	colSector      = "sector"
	colIndustry    = "industry"
	colDescription = "description"
	colIPOYear     = "ipoyear"
	colNCIncome    = "ncincome"
	colIntDep      = "intdep"
	colDebt        = "debt"
)

// normHeader folds case, spaces and underscores: "IPO Year" -> "ipoyear".
func normHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(h)
}

// ParseCSV reads reference records. The Symbol column is required; unknown
// columns are ignored and empty or non-numeric ratio cells are left absent.
func ParseCSV(r io.Reader) ([]types.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty csv")
		}
		return nil, err
	}
	idx := map[string]int{}
	for i, h := range header {
		k := normHeader(h)
		if _, dup := idx[k]; !dup {
			idx[k] = i
		}
	}
	if _, ok := idx[colSymbol]; !ok {
		return nil, fmt.Errorf("missing %q column", "Symbol")
	}

	var out []types.Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		cell := func(k string) string {
			i, ok := idx[k]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		sym := cell(colSymbol)
		if sym == "" {
			continue
		}
		out = append(out, types.Record{
			Symbol:      sym,
			Name:        cell(colName),
			Country:     cell(colCountry),
			Sector:      cell(colSector),
			Industry:    cell(colIndustry),
			Description: cell(colDescription),
			IPOYear:     parseYear(cell(colIPOYear)),
			NCIncome:    parseNumber(cell(colNCIncome)),
			IntDep:      parseNumber(cell(colIntDep)),
			Debt:        parseNumber(cell(colDebt)),
		})
	}
	return out, nil
}

func parseNumber(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// parseYear accepts "1999" and float renderings such as "1999.0".
func parseYear(s string) *int {
	v := parseNumber(s)
	if v == nil || *v <= 0 {
		return nil
	}
	y := int(*v)
	return &y
}
