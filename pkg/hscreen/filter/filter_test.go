package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komsit37/hscreen/pkg/hscreen/types"
)

func f(v float64) *float64 { return &v }

var records = []types.Record{
	{Symbol: "ACME", Name: "Acme Corp", Sector: "Industrials", Description: "Makes anvils, rockets and traps",
		NCIncome: f(1), IntDep: f(10), Debt: f(4)},
	{Symbol: "BNK", Name: "First Bank", Sector: "Finance", Description: "Retail bank offering loans",
		NCIncome: f(45), IntDep: f(80), Debt: f(250)},
	{Symbol: "NOVA", Name: "Nova Solar", Sector: "Energy", Description: "Solar panels and storage",
		IntDep: f(12)},
	{Symbol: "7203.T", Name: "Toyota Motor", Sector: "Consumer Cyclical", Description: "Cars and trucks"},
}

func symbols(t types.Table) []string {
	var out []string
	for _, r := range t.Records {
		out = append(out, r.Symbol)
	}
	return out
}

func apply(p Predicate) []string {
	return symbols(Apply(types.Table{Records: records}, p))
}

func TestKeywordsConjunction(t *testing.T) {
	assert.Equal(t, []string{"ACME"}, apply(NewKeywords("ROCKETS", " anvil ")))
	assert.Empty(t, apply(NewKeywords("rockets", "solar")))
	assert.Len(t, apply(NewKeywords("", "  ")), len(records), "blank terms are ignored")
}

func TestKeywordsAreLiteral(t *testing.T) {
	// text that would break an evaluated expression is matched literally
	r := types.Record{Symbol: "Q", Description: "it's a ') | (1==1) test"}
	assert.True(t, NewKeywords("') | (1==1)").Match(r))
	assert.False(t, NewKeywords("') | (1==1)").Match(records[0]))
}

func TestSector(t *testing.T) {
	assert.Equal(t, []string{"BNK", "NOVA"}, apply(NewSector("finance", "ENERGY")))
	assert.Len(t, apply(NewSector()), len(records))
}

func TestCompliant(t *testing.T) {
	assert.Equal(t, []string{"ACME"}, apply(Compliant{}))
	assert.Equal(t, []string{"ACME", "NOVA"}, apply(Compliant{IncludeLikely: true}))
}

func TestParse(t *testing.T) {
	tests := []struct {
		expr string
		want []string
	}{
		{"", []string{"ACME", "BNK", "NOVA", "7203.T"}},
		{"acme, bnk", []string{"ACME", "BNK"}},
		{"7*.t", []string{"7203.T"}},
		{"/Bank$/", []string{"BNK"}},
		{"sol", []string{"NOVA"}},
		{"NK", []string{"BNK"}},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			p, err := Parse(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, apply(p))
		})
	}
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse("/[/")
	assert.Error(t, err)
}

func TestAll(t *testing.T) {
	p := All(NewKeywords("and"), nil, NewSector("Industrials", "Energy"))
	assert.Equal(t, []string{"ACME", "NOVA"}, apply(p))
	assert.Len(t, apply(All()), len(records))
	assert.Empty(t, apply(Always(false)))
}

func TestApplyKeepsMetadata(t *testing.T) {
	in := types.Table{Name: "n", Columns: []string{"sym"}, Records: records}
	out := Apply(in, Func(func(r types.Record) bool { return r.Symbol == "BNK" }))
	assert.Equal(t, "n", out.Name)
	assert.Equal(t, []string{"sym"}, out.Columns)
	assert.Len(t, in.Records, len(records))
}
