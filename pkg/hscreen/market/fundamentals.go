package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	yfgo "github.com/komsit37/yf-go"

	"github.com/komsit37/hscreen/pkg/hscreen/types"
)

// seriesLookback is how far back quarterly statements are requested.
const seriesLookback = 3 * 365 * 24 * time.Hour

// TimeseriesKey maps a statement row label to its Yahoo timeseries type,
// e.g. "Total Revenue" -> "quarterlyTotalRevenue".
func TimeseriesKey(label string) string {
	return "quarterly" + strings.Join(strings.Fields(label), "")
}

// QuarterlySeries returns the reported values of one statement row, most
// recent first. Null entries are skipped.
func (c *Client) QuarterlySeries(ctx context.Context, ticker string, stmt types.Statement, label string) ([]float64, error) {
	key := TimeseriesKey(label)
	now := time.Now()
	params := url.Values{}
	params.Set("symbol", ticker)
	params.Set("type", key)
	params.Set("period1", strconv.FormatInt(now.Add(-seriesLookback).Unix(), 10))
	params.Set("period2", strconv.FormatInt(now.Unix(), 10))

	path := "/ws/fundamentals-timeseries/v1/finance/timeseries/" + url.PathEscape(ticker)
	var resp timeseriesResponse
	if err := c.getJSON(ctx, path, params, &resp); err != nil {
		if isNotFoundStatus(err) {
			return nil, errNotFound(ticker, types.ErrSymbolNotFound)
		}
		return nil, fmt.Errorf("yahoo %s %s: %w", stmt, ticker, err)
	}
	if e := resp.Timeseries.Error; e != nil {
		if e.notFound() {
			return nil, errNotFound(ticker, types.ErrSymbolNotFound)
		}
		return nil, fmt.Errorf("yahoo %s %s: %s", stmt, ticker, e.Description)
	}

	points, err := findSeries(resp.Timeseries.Result, key)
	if err != nil {
		return nil, fmt.Errorf("yahoo %s %s: %w", stmt, ticker, err)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%s %q: %w", ticker, label, types.ErrSeriesNotFound)
	}

	sort.SliceStable(points, func(i, j int) bool { return points[i].AsOfDate > points[j].AsOfDate })
	out := make([]float64, 0, len(points))
	for _, p := range points {
		if p.ReportedValue.Raw != nil {
			out = append(out, *p.ReportedValue.Raw)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s %q: %w", ticker, label, types.ErrSeriesNotFound)
	}
	return out, nil
}

func findSeries(results []map[string]json.RawMessage, key string) ([]timeseriesPoint, error) {
	for _, r := range results {
		raw, ok := r[key]
		if !ok {
			continue
		}
		var pts []*timeseriesPoint
		if err := json.Unmarshal(raw, &pts); err != nil {
			return nil, fmt.Errorf("parse %s: %w", key, err)
		}
		out := make([]timeseriesPoint, 0, len(pts))
		for _, p := range pts {
			if p != nil && p.AsOfDate != "" {
				out = append(out, *p)
			}
		}
		return out, nil
	}
	return nil, nil
}

var profileModules = []yfgo.QuoteSummaryModule{yfgo.ModulePrice, yfgo.ModuleFinancialData, yfgo.ModuleAssetProfile}

// Profile returns debt, market cap, currencies and descriptive fields.
func (c *Client) Profile(ctx context.Context, ticker string) (types.Profile, error) {
	var res yfgo.QuoteSummaryTyped
	err := c.call(ctx, "quoteSummary", func(ctx context.Context) error {
		r, err := c.yf.QuoteSummaryTyped(ctx, ticker, profileModules)
		if err != nil {
			return yfErr("quoteSummary", err)
		}
		res = r
		return nil
	})
	if err != nil {
		if isNotFoundStatus(err) || summaryNotFound(err) {
			return types.Profile{}, errNotFound(ticker, types.ErrSymbolNotFound)
		}
		return types.Profile{}, fmt.Errorf("yahoo profile %s: %w", ticker, err)
	}
	if res.Price == nil && res.FinancialData == nil && res.AssetProfile == nil {
		return types.Profile{}, errNotFound(ticker, types.ErrSymbolNotFound)
	}

	var p types.Profile
	if r := res.Price; r != nil {
		p.MarketCap = r.MarketCap.Raw
		p.Currency = r.Currency
		p.Name = coalesce(r.LongName, r.ShortName)
	}
	if r := res.FinancialData; r != nil {
		p.TotalDebt = r.TotalDebt.Raw
		p.FinancialCurrency = r.FinancialCurrency
	}
	if r := res.AssetProfile; r != nil {
		p.Sector = r.Sector
		p.Industry = r.Industry
		p.Country = r.Country
		p.Summary = r.LongBusinessSummary
	}
	return p, nil
}

// summaryNotFound matches the errors yf-go returns for an unknown symbol
// answered with 200: an embedded "Not Found" error object or an empty result.
func summaryNotFound(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "Not Found") || strings.Contains(msg, "no results returned")
}

func coalesce(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
