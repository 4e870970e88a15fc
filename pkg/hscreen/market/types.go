package market

import "encoding/json"

// --- fundamentals-timeseries ---

type timeseriesResponse struct {
	Timeseries struct {
		// Each result carries "meta", "timestamp" and one key named after its type.
		Result []map[string]json.RawMessage `json:"result"`
		Error  *yfError                     `json:"error"`
	} `json:"timeseries"`
}

type timeseriesPoint struct {
	AsOfDate      string `json:"asOfDate"`
	PeriodType    string `json:"periodType"`
	CurrencyCode  string `json:"currencyCode"`
	ReportedValue yfVal  `json:"reportedValue"`
}

type yfVal struct {
	Raw *float64 `json:"raw"`
	Fmt string   `json:"fmt"`
}
