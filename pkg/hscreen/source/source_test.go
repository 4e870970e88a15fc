package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komsit37/hscreen/pkg/hscreen/types"
)

func TestCSVSourceLoad(t *testing.T) {
	tables, err := CSVSource{}.Load(context.Background(), filepath.Join("testdata", "stocks.csv"))
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, "stocks", tables[0].Name)

	recs := tables[0].Records
	require.Len(t, recs, 3)

	acme := recs[0]
	assert.Equal(t, "ACME", acme.Symbol)
	assert.Equal(t, "Makes anvils, rockets and traps", acme.Description)
	require.NotNil(t, acme.IPOYear)
	assert.Equal(t, 1999, *acme.IPOYear)
	require.NotNil(t, acme.NCIncome)
	assert.Equal(t, 1.2, *acme.NCIncome)
	assert.Equal(t, 10.5, *acme.IntDep)
	assert.Equal(t, 4.0, *acme.Debt)

	assert.Nil(t, recs[1].IPOYear)

	nova := recs[2]
	assert.Nil(t, nova.NCIncome, "empty cell is absent")
	assert.Nil(t, nova.Debt, "NaN cell is absent")
	require.NotNil(t, nova.IntDep)
	assert.Equal(t, 12.0, *nova.IntDep)
}

func TestParseCSVHeaderVariants(t *testing.T) {
	in := "\ufeffsymbol,NC_INCOME,Int Dep,extra\nX,Not Found,3,ignored\n,1,1,1\n"
	recs, err := ParseCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, recs, 1, "rows without a symbol are skipped")
	assert.Nil(t, recs[0].NCIncome)
	assert.Equal(t, 3.0, *recs[0].IntDep)
}

func TestParseCSVRequiresSymbol(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("Name,Sector\nA,B\n"))
	assert.Error(t, err)

	_, err = ParseCSV(strings.NewReader(""))
	assert.Error(t, err)
}

func TestCSVSourceBadSpec(t *testing.T) {
	_, err := CSVSource{}.Load(context.Background(), 42)
	assert.Error(t, err)
	_, err = CSVSource{}.Load(context.Background(), "testdata/missing.csv")
	assert.Error(t, err)
}

func TestYAMLSourceGroups(t *testing.T) {
	tables, err := YAMLSource{}.Load(context.Background(), filepath.Join("testdata", "lists.yaml"))
	require.NoError(t, err)
	require.Len(t, tables, 2)

	assert.Equal(t, "lists", tables[0].Name)
	assert.Equal(t, []string{"sym", "name", "status"}, tables[0].Columns)
	require.Len(t, tables[0].Records, 2)
	assert.Equal(t, "AAPL", tables[0].Records[0].Symbol)
	assert.Equal(t, "Toyota", tables[0].Records[1].Name)

	assert.Equal(t, "lists/Banks", tables[1].Name)
	assert.Equal(t, []string{"JPM", "BAC"}, Symbols(tables[1:]))
	assert.Equal(t, []string{"AAPL", "7203.T", "JPM", "BAC"}, Symbols(tables))
}

func TestYAMLSourceDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "asia"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "us.yaml"), []byte("tickers: [MSFT]\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "asia", "jp.yml"), []byte("tickers: [6758.T]\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	tables, err := YAMLSource{}.Load(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, "asia/jp", tables[0].Name)
	assert.Equal(t, "us", tables[1].Name)
}

func TestYAMLSourceMissingTickers(t *testing.T) {
	_, err := parseTickerYAML([]byte("columns: [sym]\n"), "x")
	assert.Error(t, err)
}

type countingSource struct{ calls int }

func (c *countingSource) Load(context.Context, any) ([]types.Table, error) {
	c.calls++
	return []types.Table{{Name: "t", Records: []types.Record{{Symbol: "A"}}}}, nil
}

func TestCacheLoadsOnceAndCopies(t *testing.T) {
	src := &countingSource{}
	c := NewCache(src)

	first, err := c.Load(context.Background(), "a.csv")
	require.NoError(t, err)
	first[0].Records[0].Symbol = "mutated"

	second, err := c.Load(context.Background(), "a.csv")
	require.NoError(t, err)
	assert.Equal(t, "A", second[0].Records[0].Symbol)
	assert.Equal(t, 1, src.calls)

	_, err = c.Load(context.Background(), "b.csv")
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}
