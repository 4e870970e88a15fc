package ratio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/komsit37/hscreen/pkg/hscreen/types"
)

const (
	defaultCurrency = "USD"
	// quarters summed for trailing figures
	trailingQuarters = 4
)

// Provider supplies raw per-ticker market data.
type Provider interface {
	// QuarterlySeries returns the values of a statement row, most recent first.
	// A missing row is reported as types.ErrSeriesNotFound.
	QuarterlySeries(ctx context.Context, ticker string, stmt types.Statement, label string) ([]float64, error)
	Profile(ctx context.Context, ticker string) (types.Profile, error)
	// FXRate returns the latest close of the from/to pair on or before asOf.
	FXRate(ctx context.Context, from, to string, asOf time.Time) (float64, error)
}

// Result is a snapshot together with the ratios derived from it.
type Result struct {
	Snapshot types.FinancialSnapshot
	Ratios   types.ComplianceRatios
}

// Status classifies the result.
func (r Result) Status() types.Status {
	return Classify(r.Ratios, r.Snapshot.HasMissing())
}

// Calculator resolves snapshots through a Provider and derives ratios.
type Calculator struct {
	provider Provider
	now      func() time.Time
	log      zerolog.Logger
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithClock overrides the time source used for FX lookups.
func WithClock(now func() time.Time) Option {
	return func(c *Calculator) { c.now = now }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Calculator) { c.log = l }
}

func NewCalculator(p Provider, opts ...Option) *Calculator {
	c := &Calculator{provider: p, now: time.Now, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ComputeRatios resolves a fresh snapshot for ticker and derives its ratios.
// Any returned error is a *QueryError.
func (c *Calculator) ComputeRatios(ctx context.Context, ticker string) (Result, error) {
	snap, err := c.Snapshot(ctx, ticker)
	if err != nil {
		return Result{}, err
	}
	return Result{Snapshot: snap, Ratios: Derive(snap)}, nil
}

// Snapshot queries the provider. The ticker is forwarded verbatim.
func (c *Calculator) Snapshot(ctx context.Context, ticker string) (types.FinancialSnapshot, error) {
	if strings.TrimSpace(ticker) == "" {
		return types.FinancialSnapshot{}, queryErr(KindNotFound, ticker, errors.New("empty ticker"))
	}
	snap := types.FinancialSnapshot{Ticker: ticker, FXRate: 1}

	var err error
	if snap.TotalRevenueTTM4Q, err = c.trailing(ctx, &snap, types.IncomeStatement, types.LabelTotalRevenue, types.FieldTotalRevenue); err != nil {
		return types.FinancialSnapshot{}, err
	}
	if snap.InterestIncomeTTM4Q, err = c.trailing(ctx, &snap, types.IncomeStatement, types.LabelInterestIncome, types.FieldInterestIncome); err != nil {
		return types.FinancialSnapshot{}, err
	}
	if snap.CashAndEquivalents, err = c.latest(ctx, &snap, types.BalanceSheet, types.LabelCash, types.FieldCash); err != nil {
		return types.FinancialSnapshot{}, err
	}

	prof, err := c.provider.Profile(ctx, ticker)
	if err != nil {
		return types.FinancialSnapshot{}, c.providerErr(ticker, "profile", err)
	}
	snap.TotalDebt = valueOr(&snap, prof.TotalDebt, types.FieldTotalDebt)
	snap.MarketCap = valueOr(&snap, prof.MarketCap, types.FieldMarketCap)
	snap.MarketCapCurrency = currencyOr(prof.Currency)
	snap.DebtCurrency = currencyOr(prof.FinancialCurrency)
	snap.Name, snap.Sector, snap.Industry, snap.Country, snap.Summary =
		prof.Name, prof.Sector, prof.Industry, prof.Country, prof.Summary

	if len(snap.Missing) == len(allFields) {
		return types.FinancialSnapshot{}, queryErr(KindDataUnavailable, ticker, errors.New("no ratio inputs reported"))
	}

	// Market cap is converted into the statement currency so all three
	// ratios compare like with like. A zero cap needs no rate.
	if snap.MarketCapCurrency != snap.DebtCurrency && snap.MarketCap > 0 {
		rate, err := c.provider.FXRate(ctx, snap.MarketCapCurrency, snap.DebtCurrency, c.now())
		if err != nil {
			return types.FinancialSnapshot{}, queryErr(KindRateLookupFailed, ticker,
				fmt.Errorf("%s%s: %w", snap.MarketCapCurrency, snap.DebtCurrency, err))
		}
		if rate <= 0 {
			return types.FinancialSnapshot{}, queryErr(KindRateLookupFailed, ticker,
				fmt.Errorf("%s%s: non-positive rate %v", snap.MarketCapCurrency, snap.DebtCurrency, rate))
		}
		c.log.Debug().Str("ticker", ticker).Str("from", snap.MarketCapCurrency).
			Str("to", snap.DebtCurrency).Float64("rate", rate).Msg("converted market cap")
		snap.MarketCap *= rate
		snap.FXRate = rate
	}

	if snap.HasMissing() {
		c.log.Debug().Str("ticker", ticker).Strs("missing", snap.Missing).Msg("defaulted fields")
	}
	return snap, nil
}

var allFields = []string{
	types.FieldTotalRevenue,
	types.FieldInterestIncome,
	types.FieldCash,
	types.FieldTotalDebt,
	types.FieldMarketCap,
}

func (c *Calculator) trailing(ctx context.Context, snap *types.FinancialSnapshot, stmt types.Statement, label, field string) (float64, error) {
	vals, ok, err := c.series(ctx, snap, stmt, label, field)
	if err != nil || !ok {
		return 0, err
	}
	var sum float64
	for i := 0; i < len(vals) && i < trailingQuarters; i++ {
		sum += vals[i]
	}
	return sum, nil
}

func (c *Calculator) latest(ctx context.Context, snap *types.FinancialSnapshot, stmt types.Statement, label, field string) (float64, error) {
	vals, ok, err := c.series(ctx, snap, stmt, label, field)
	if err != nil || !ok {
		return 0, err
	}
	return vals[0], nil
}

// series fetches one row. ok is false when the row is absent or empty, in
// which case field is recorded as missing.
func (c *Calculator) series(ctx context.Context, snap *types.FinancialSnapshot, stmt types.Statement, label, field string) ([]float64, bool, error) {
	vals, err := c.provider.QuarterlySeries(ctx, snap.Ticker, stmt, label)
	if errors.Is(err, types.ErrSeriesNotFound) || (err == nil && len(vals) == 0) {
		snap.Missing = append(snap.Missing, field)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, c.providerErr(snap.Ticker, stmt.String(), err)
	}
	return vals, true, nil
}

func (c *Calculator) providerErr(ticker, what string, err error) error {
	if errors.Is(err, types.ErrSymbolNotFound) {
		return queryErr(KindNotFound, ticker, err)
	}
	return queryErr(KindDataUnavailable, ticker, fmt.Errorf("%s: %w", what, err))
}

func valueOr(snap *types.FinancialSnapshot, v *float64, field string) float64 {
	if v == nil {
		snap.Missing = append(snap.Missing, field)
		return 0
	}
	return *v
}

func currencyOr(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return defaultCurrency
	}
	return code
}
