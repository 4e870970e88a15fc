package columns

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komsit37/hscreen/pkg/hscreen/types"
)

func TestComputeExplicitWins(t *testing.T) {
	cols, err := Compute([]string{"Symbol", "debt", "sym", " IPO Year "}, Sets["default"])
	require.NoError(t, err)
	assert.Equal(t, []string{"sym", "debt", "ipo_year"}, cols)
}

func TestComputeFallback(t *testing.T) {
	cols, err := Compute(nil, Sets["ratios"])
	require.NoError(t, err)
	assert.Equal(t, Sets["ratios"], cols)
}

func TestComputeUnknown(t *testing.T) {
	_, err := Compute([]string{"sym", "pe"}, nil)
	var ue *UnknownColumnError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "pe", ue.Name)
	assert.Contains(t, ue.Available, "nc_income")
}

func TestExpandSets(t *testing.T) {
	cols, err := ExpandSets([]string{"ratios", "price", "profile"})
	require.NoError(t, err)
	assert.Equal(t, []string{"sym", "nc_income", "int_dep", "debt", "status", "price", "chg%",
		"name", "country", "sector", "industry", "ipo_year", "description"}, cols)

	_, err = ExpandSets([]string{"nope"})
	var se *UnknownSetError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, []string{"check", "default", "price", "profile", "ratios"}, se.Available)
}

func TestEverySetColumnIsRegistered(t *testing.T) {
	for name, cols := range Sets {
		for _, c := range cols {
			_, ok := GetDef(c)
			assert.True(t, ok, "set %s column %s", name, c)
		}
	}
}

func TestValues(t *testing.T) {
	year, nc := 2001, 4.567
	r := types.Record{Symbol: "A", IPOYear: &year, NCIncome: &nc, Status: types.LikelyCompliant,
		Quote: &types.Quote{Name: "Alpha", Price: "12.00", ChgFmt: "-1.2%"}}

	val := func(k string) string { d, _ := GetDef(k); return d.Value(r) }
	raw := func(k string) any { d, _ := GetDef(k); return d.Raw(r) }

	assert.Equal(t, "Alpha", val("name"))
	assert.Equal(t, "2001", val("ipo_year"))
	assert.Equal(t, "4.57", val("nc_income"))
	assert.Equal(t, "", val("debt"))
	assert.Nil(t, raw("debt"))
	assert.Equal(t, 4.567, raw("nc_income"))
	assert.Equal(t, "likely-compliant", val("status"))
	assert.Equal(t, "12.00", val("price"))
	assert.Nil(t, raw("country"))
}

func TestNeedsQuotes(t *testing.T) {
	assert.True(t, NeedsQuotes([]string{"sym", "chg%"}))
	assert.False(t, NeedsQuotes(Sets["default"]))
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "0.00", FormatFloat(0, 2))
	assert.Equal(t, "1,234.50", FormatFloat(1234.5, 2))
	assert.Equal(t, "-1,234,567.0", FormatFloat(-1234567, 1))
	assert.Equal(t, "250", FormatFloat(250, 0))
}
