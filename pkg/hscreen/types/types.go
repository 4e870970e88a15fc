package types

import "strings"

// Table is a named set of equity records with an optional explicit column order.
type Table struct {
	Name    string
	Columns []string
	Records []Record
}

// Record represents one equity row of the reference table.
// Stored ratios are percent values; nil means the cell was empty or unparsable.
type Record struct {
	Symbol      string
	Name        string
	Country     string
	Sector      string
	Industry    string
	Description string
	IPOYear     *int

	NCIncome *float64 // interest income / total revenue, percent
	IntDep   *float64 // cash and equivalents / market cap, percent
	Debt     *float64 // total debt / market cap, percent

	Status Status
	Quote  *Quote
	// Err holds the reason a live lookup failed; the record is then Indeterminate.
	Err error
}

// Quote contains formatted and raw change values for rendering.
type Quote struct {
	Price  string
	ChgFmt string
	ChgRaw float64
	Name   string
}

// FinancialSnapshot is the provider data for one ticker at one point in time.
// Absent numeric fields are zero and listed in Missing.
type FinancialSnapshot struct {
	Ticker              string
	TotalRevenueTTM4Q   float64
	InterestIncomeTTM4Q float64
	CashAndEquivalents  float64
	TotalDebt           float64
	MarketCap           float64
	MarketCapCurrency   string
	DebtCurrency        string
	// FXRate is the factor applied to MarketCap; 1 when currencies agree.
	FXRate  float64
	Missing []string

	// Descriptive profile fields, informational only.
	Name     string
	Sector   string
	Industry string
	Country  string
	Summary  string
}

// HasMissing reports whether any input was defaulted.
func (s FinancialSnapshot) HasMissing() bool { return len(s.Missing) > 0 }

// Snapshot field names used in Missing.
const (
	FieldTotalRevenue   = "totalRevenue"
	FieldInterestIncome = "interestIncome"
	FieldCash           = "cashAndEquivalents"
	FieldTotalDebt      = "totalDebt"
	FieldMarketCap      = "marketCap"
)

// ComplianceRatios are the three derived percentages. Values are not clamped.
type ComplianceRatios struct {
	NonCompliantIncomePct        float64
	InterestBearingSecuritiesPct float64
	InterestBearingDebtPct       float64
}

// Status is the outcome of the compliance classification.
type Status int

const (
	Indeterminate Status = iota
	Compliant
	LikelyCompliant
	NonCompliant
)

func (s Status) String() string {
	switch s {
	case Compliant:
		return "compliant"
	case LikelyCompliant:
		return "likely-compliant"
	case NonCompliant:
		return "non-compliant"
	default:
		return "indeterminate"
	}
}

// MarshalText lets JSON output carry the status name.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// ParseStatus is the inverse of Status.String; unknown names map to Indeterminate.
func ParseStatus(name string) Status {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "compliant":
		return Compliant
	case "likely-compliant", "likely":
		return LikelyCompliant
	case "non-compliant", "noncompliant":
		return NonCompliant
	default:
		return Indeterminate
	}
}
