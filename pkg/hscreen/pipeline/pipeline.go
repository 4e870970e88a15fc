package pipeline

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/komsit37/hscreen/pkg/hscreen/columns"
	"github.com/komsit37/hscreen/pkg/hscreen/enrich"
	"github.com/komsit37/hscreen/pkg/hscreen/filter"
	"github.com/komsit37/hscreen/pkg/hscreen/ratio"
	"github.com/komsit37/hscreen/pkg/hscreen/render"
	"github.com/komsit37/hscreen/pkg/hscreen/source"
	"github.com/komsit37/hscreen/pkg/hscreen/types"
)

type Runner struct {
	Source   source.Source
	Ratios   enrich.RatioService
	Quotes   enrich.QuoteService
	Renderer render.Renderer
	Writer   io.Writer
	Log      zerolog.Logger
}

type ExecuteOptions struct {
	// Columns overrides Sets, which overrides any table-provided order.
	Columns []string
	Sets    []string
	Filter  filter.Predicate
	Render  render.RenderOptions
}

// Screen loads the reference table, filters it, classifies the stored
// ratios and renders the result.
func (r *Runner) Screen(ctx context.Context, spec any, opts ExecuteOptions) error {
	tables, err := r.Source.Load(ctx, spec)
	if err != nil {
		return err
	}

	var pred filter.Predicate = filter.Always(true)
	if opts.Filter != nil {
		pred = opts.Filter
	}
	for i, t := range tables {
		t = filter.Apply(t, pred)
		for j := range t.Records {
			ratio.ClassifyRecord(&t.Records[j])
		}
		tables[i] = t
		r.Log.Debug().Str("table", t.Name).Int("rows", len(t.Records)).Msg("screened")
	}
	return r.finish(ctx, tables, opts, "default")
}

// CheckSummary counts the outcome of a live check.
type CheckSummary struct {
	Total  int
	Failed int
	Status map[types.Status]int
}

// Check computes live ratios for every record symbol of tables. A failed
// lookup renders as an Indeterminate row; it never carries partial ratios.
func (r *Runner) Check(ctx context.Context, tables []types.Table, opts ExecuteOptions) (CheckSummary, error) {
	sum := CheckSummary{Status: map[types.Status]int{}}
	if r.Ratios == nil {
		return sum, errors.New("no ratio service configured")
	}
	out := make([]types.Table, 0, len(tables))
	for _, t := range tables {
		nt := types.Table{Name: t.Name, Columns: t.Columns}
		for _, in := range t.Records {
			rec := r.checkOne(ctx, in)
			sum.Total++
			if rec.Err != nil {
				sum.Failed++
			}
			sum.Status[rec.Status]++
			nt.Records = append(nt.Records, rec)
		}
		if opts.Filter != nil {
			nt = filter.Apply(nt, opts.Filter)
		}
		out = append(out, nt)
	}
	return sum, r.finish(ctx, out, opts, "check")
}

func (r *Runner) checkOne(ctx context.Context, in types.Record) types.Record {
	res, err := r.Ratios.ComputeRatios(ctx, in.Symbol)
	if err != nil {
		r.Log.Warn().Str("ticker", in.Symbol).Err(err).Msg("ratio lookup failed")
		return types.Record{Symbol: in.Symbol, Name: in.Name, Err: err, Status: types.Indeterminate}
	}
	s := res.Snapshot
	rec := types.Record{
		Symbol:      in.Symbol,
		Name:        firstNonEmpty(in.Name, s.Name),
		Country:     s.Country,
		Sector:      s.Sector,
		Industry:    s.Industry,
		Description: s.Summary,
		NCIncome:    ptr(res.Ratios.NonCompliantIncomePct),
		IntDep:      ptr(res.Ratios.InterestBearingSecuritiesPct),
		Debt:        ptr(res.Ratios.InterestBearingDebtPct),
		Status:      res.Status(),
	}
	r.Log.Info().Str("ticker", in.Symbol).Str("status", rec.Status.String()).
		Float64("nc_income", *rec.NCIncome).Float64("int_dep", *rec.IntDep).Float64("debt", *rec.Debt).
		Strs("missing", s.Missing).Msg("checked")
	return rec
}

// finish resolves columns per table, attaches quotes if needed and renders.
func (r *Runner) finish(ctx context.Context, tables []types.Table, opts ExecuteOptions, defaultSet string) error {
	for i, t := range tables {
		cols, err := resolveColumns(opts, t.Columns, defaultSet)
		if err != nil {
			return err
		}
		tables[i].Columns = cols
		if r.Quotes != nil && columns.NeedsQuotes(cols) {
			r.attachQuotes(ctx, tables[i].Records)
		}
	}
	return r.Renderer.Render(r.Writer, tables, opts.Render)
}

func resolveColumns(opts ExecuteOptions, tableCols []string, defaultSet string) ([]string, error) {
	if len(opts.Columns) > 0 {
		return columns.Compute(opts.Columns, nil)
	}
	if len(opts.Sets) > 0 {
		cols, err := columns.ExpandSets(opts.Sets)
		if err != nil {
			return nil, err
		}
		return columns.Compute(cols, nil)
	}
	return columns.Compute(tableCols, columns.Sets[defaultSet])
}

func (r *Runner) attachQuotes(ctx context.Context, recs []types.Record) {
	for i := range recs {
		q, err := r.Quotes.Get(ctx, recs[i].Symbol)
		if err != nil {
			r.Log.Debug().Str("ticker", recs[i].Symbol).Err(err).Msg("quote unavailable")
			continue
		}
		recs[i].Quote = &q
	}
}

// SectorCount is the number of records in one sector.
type SectorCount struct {
	Sector string
	Count  int
}

// Sectors lists the distinct sectors of the reference table, most common first.
func (r *Runner) Sectors(ctx context.Context, spec any) ([]SectorCount, error) {
	tables, err := r.Source.Load(ctx, spec)
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, t := range tables {
		for _, rec := range t.Records {
			s := strings.TrimSpace(rec.Sector)
			if s == "" {
				s = "(none)"
			}
			counts[s]++
		}
	}
	out := make([]SectorCount, 0, len(counts))
	for s, n := range counts {
		out = append(out, SectorCount{Sector: s, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Sector < out[j].Sector
	})
	return out, nil
}

func ptr(v float64) *float64 { return &v }

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
