package market

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	yfgo "github.com/komsit37/yf-go"
)

// fxWindow is the trailing calendar window searched for a daily close.
const fxWindow = 5 * 24 * time.Hour

// ErrNoRate is returned when the window holds no usable close.
var ErrNoRate = errors.New("no exchange rate in window")

// PairSymbol returns the Yahoo pseudo-ticker for a currency pair, e.g. USDEUR=X.
func PairSymbol(from, to string) string {
	return strings.ToUpper(from) + strings.ToUpper(to) + "=X"
}

// FXRate returns the latest daily close of from/to within the five days
// ending at asOf. The rate converts an amount in from into to.
func (c *Client) FXRate(ctx context.Context, from, to string, asOf time.Time) (float64, error) {
	if strings.EqualFold(from, to) {
		return 1, nil
	}
	sym := PairSymbol(from, to)
	p1, p2 := asOf.Add(-fxWindow).Unix(), asOf.Unix()
	opts := yfgo.ChartOptions{Interval: "1d", Period1: &p1, Period2: &p2}

	var chart yfgo.ChartResult
	err := c.call(ctx, "chart", func(ctx context.Context) error {
		r, err := c.yf.ChartTyped(ctx, sym, opts)
		if err != nil {
			return yfErr("chart", err)
		}
		chart = r
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("yahoo chart %s: %w", sym, err)
	}
	if len(chart.Indicators.Quote) == 0 {
		return 0, fmt.Errorf("%s: %w", sym, ErrNoRate)
	}

	closes := chart.Indicators.Quote[0].Close
	for i := len(closes) - 1; i >= 0; i-- {
		if v := closes[i]; v != nil && *v > 0 {
			return *v, nil
		}
	}
	return 0, fmt.Errorf("%s: %w", sym, ErrNoRate)
}
