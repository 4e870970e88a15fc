package ratio

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komsit37/hscreen/pkg/hscreen/types"
)

type fakeProvider struct {
	series     map[string][]float64
	seriesErr  error
	profile    types.Profile
	profileErr error
	rate       float64
	rateErr    error

	fxCalls []string
	fxAsOf  time.Time
}

func (f *fakeProvider) QuarterlySeries(_ context.Context, _ string, _ types.Statement, label string) ([]float64, error) {
	if f.seriesErr != nil {
		return nil, f.seriesErr
	}
	v, ok := f.series[label]
	if !ok {
		return nil, types.ErrSeriesNotFound
	}
	return v, nil
}

func (f *fakeProvider) Profile(context.Context, string) (types.Profile, error) {
	return f.profile, f.profileErr
}

func (f *fakeProvider) FXRate(_ context.Context, from, to string, asOf time.Time) (float64, error) {
	f.fxCalls = append(f.fxCalls, from+to)
	f.fxAsOf = asOf
	return f.rate, f.rateErr
}

func TestComputeRatiosTrailingSums(t *testing.T) {
	p := &fakeProvider{
		series: map[string][]float64{
			types.LabelTotalRevenue:   {250, 250, 250, 250, 9999},
			types.LabelInterestIncome: {10, 10, 10, 10, 9999},
			types.LabelCash:           {200, 9999},
		},
		profile: types.Profile{TotalDebt: ptr(250), MarketCap: ptr(1000), Currency: "usd", FinancialCurrency: "USD"},
	}
	res, err := NewCalculator(p).ComputeRatios(context.Background(), "ACME")
	require.NoError(t, err)

	assert.Equal(t, 1000.0, res.Snapshot.TotalRevenueTTM4Q)
	assert.Equal(t, 40.0, res.Snapshot.InterestIncomeTTM4Q)
	assert.Equal(t, 200.0, res.Snapshot.CashAndEquivalents)
	assert.Equal(t, "USD", res.Snapshot.MarketCapCurrency)
	assert.Empty(t, res.Snapshot.Missing)
	assert.Empty(t, p.fxCalls)

	assert.InDelta(t, 4.0, res.Ratios.NonCompliantIncomePct, 1e-9)
	assert.InDelta(t, 20.0, res.Ratios.InterestBearingSecuritiesPct, 1e-9)
	assert.InDelta(t, 25.0, res.Ratios.InterestBearingDebtPct, 1e-9)
	assert.Equal(t, types.Compliant, res.Status())
}

func TestComputeRatiosShortSeries(t *testing.T) {
	p := &fakeProvider{
		series: map[string][]float64{
			types.LabelTotalRevenue:   {600, 400},
			types.LabelInterestIncome: {30},
			types.LabelCash:           {0},
		},
		profile: types.Profile{TotalDebt: ptr(0), MarketCap: ptr(1000)},
	}
	res, err := NewCalculator(p).ComputeRatios(context.Background(), "ACME")
	require.NoError(t, err)
	assert.Equal(t, 1000.0, res.Snapshot.TotalRevenueTTM4Q)
	assert.InDelta(t, 3.0, res.Ratios.NonCompliantIncomePct, 1e-9)
}

func TestComputeRatiosMissingFieldsDefault(t *testing.T) {
	p := &fakeProvider{
		series:  map[string][]float64{types.LabelTotalRevenue: {1000}},
		profile: types.Profile{MarketCap: ptr(1000)},
	}
	res, err := NewCalculator(p).ComputeRatios(context.Background(), "ACME")
	require.NoError(t, err)

	assert.ElementsMatch(t,
		[]string{types.FieldInterestIncome, types.FieldCash, types.FieldTotalDebt},
		res.Snapshot.Missing)
	assert.Equal(t, "USD", res.Snapshot.MarketCapCurrency)
	assert.Equal(t, "USD", res.Snapshot.DebtCurrency)
	assert.Equal(t, types.LikelyCompliant, res.Status())
}

func TestComputeRatiosAllUnavailable(t *testing.T) {
	p := &fakeProvider{}
	_, err := NewCalculator(p).ComputeRatios(context.Background(), "ACME")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDataUnavailable))

	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, KindDataUnavailable, qe.Kind)
	assert.Equal(t, "ACME", qe.Ticker)
}

func TestComputeRatiosProviderErrors(t *testing.T) {
	tests := []struct {
		name string
		p    *fakeProvider
		want error
	}{
		{"unknown ticker in series", &fakeProvider{seriesErr: types.ErrSymbolNotFound}, ErrNotFound},
		{"unknown ticker in profile", &fakeProvider{profileErr: types.ErrSymbolNotFound}, ErrNotFound},
		{"transport failure", &fakeProvider{seriesErr: errors.New("connection reset")}, ErrDataUnavailable},
		{"malformed profile", &fakeProvider{profileErr: errors.New("parse JSON")}, ErrDataUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCalculator(tt.p).ComputeRatios(context.Background(), "ACME")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestComputeRatiosEmptyTicker(t *testing.T) {
	_, err := NewCalculator(&fakeProvider{}).ComputeRatios(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestComputeRatiosCurrencyConversion(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	p := &fakeProvider{
		series:  map[string][]float64{types.LabelCash: {300}},
		profile: types.Profile{TotalDebt: ptr(150), MarketCap: ptr(100), Currency: "USD", FinancialCurrency: "EUR"},
		rate:    10,
	}
	res, err := NewCalculator(p, WithClock(func() time.Time { return now })).ComputeRatios(context.Background(), "ACME")
	require.NoError(t, err)

	assert.Equal(t, []string{"USDEUR"}, p.fxCalls)
	assert.Equal(t, now, p.fxAsOf)
	assert.Equal(t, 1000.0, res.Snapshot.MarketCap)
	assert.Equal(t, 10.0, res.Snapshot.FXRate)
	assert.InDelta(t, 30.0, res.Ratios.InterestBearingSecuritiesPct, 1e-9)
	assert.InDelta(t, 15.0, res.Ratios.InterestBearingDebtPct, 1e-9)
}

func TestComputeRatiosRateLookupFails(t *testing.T) {
	p := &fakeProvider{
		profile: types.Profile{MarketCap: ptr(100), Currency: "USD", FinancialCurrency: "JPY"},
		rateErr: errors.New("no quotes in window"),
	}
	_, err := NewCalculator(p).ComputeRatios(context.Background(), "ACME")
	assert.ErrorIs(t, err, ErrRateLookupFailed)

	p.rateErr, p.rate = nil, 0
	_, err = NewCalculator(p).ComputeRatios(context.Background(), "ACME")
	assert.ErrorIs(t, err, ErrRateLookupFailed)
}

func TestComputeRatiosSkipsRateForZeroCap(t *testing.T) {
	p := &fakeProvider{
		series:  map[string][]float64{types.LabelCash: {1}},
		profile: types.Profile{MarketCap: ptr(0), Currency: "USD", FinancialCurrency: "JPY"},
		rateErr: errors.New("unused"),
	}
	res, err := NewCalculator(p).ComputeRatios(context.Background(), "ACME")
	require.NoError(t, err)
	assert.Empty(t, p.fxCalls)
	assert.Zero(t, res.Ratios.InterestBearingSecuritiesPct)
}

func TestQueryErrorMessage(t *testing.T) {
	err := &QueryError{Kind: KindNotFound, Ticker: "ZZZ"}
	assert.Equal(t, "ZZZ: ticker not found", err.Error())
	assert.False(t, errors.Is(err, ErrDataUnavailable))
}
