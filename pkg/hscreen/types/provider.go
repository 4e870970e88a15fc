package types

import "errors"

// Statement selects a quarterly financial statement.
type Statement int

const (
	IncomeStatement Statement = iota
	BalanceSheet
)

func (s Statement) String() string {
	if s == BalanceSheet {
		return "balance-sheet"
	}
	return "income-statement"
}

// Statement row labels read by the ratio calculator.
const (
	LabelTotalRevenue   = "Total Revenue"
	LabelInterestIncome = "Interest Income"
	LabelCash           = "Cash And Cash Equivalents"
)

// Profile holds scalar per-ticker fields. Nil numbers were not reported.
type Profile struct {
	TotalDebt         *float64
	MarketCap         *float64
	Currency          string
	FinancialCurrency string

	Name     string
	Sector   string
	Industry string
	Country  string
	Summary  string
}

var (
	// ErrSymbolNotFound is returned by providers for unrecognised tickers.
	ErrSymbolNotFound = errors.New("symbol not found")
	// ErrSeriesNotFound is returned when a statement row does not exist.
	ErrSeriesNotFound = errors.New("series not found")
)
