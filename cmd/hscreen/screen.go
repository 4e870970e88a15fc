package main

import (
	"github.com/spf13/cobra"

	"github.com/komsit37/hscreen/pkg/hscreen/columns"
	"github.com/komsit37/hscreen/pkg/hscreen/filter"
	"github.com/komsit37/hscreen/pkg/hscreen/pipeline"
)

type screenFlags struct {
	keywords      []string
	sectors       []string
	match         string
	compliant     bool
	includeLikely bool
	quotes        bool
	cols          string
	sets          string
}

func (f screenFlags) predicate() (filter.Predicate, error) {
	m, err := filter.Parse(f.match)
	if err != nil {
		return nil, err
	}
	preds := []filter.Predicate{m, filter.NewKeywords(f.keywords...), filter.NewSector(f.sectors...)}
	if f.compliant || f.includeLikely {
		preds = append(preds, filter.Compliant{IncludeLikely: f.includeLikely})
	}
	return filter.All(preds...), nil
}

func (f screenFlags) options() pipeline.ExecuteOptions {
	opts := pipeline.ExecuteOptions{Columns: splitList(f.cols), Sets: splitList(f.sets)}
	if !f.quotes {
		return opts
	}
	if len(opts.Columns) > 0 {
		opts.Columns = append(opts.Columns, columns.Sets["price"]...)
		return opts
	}
	if len(opts.Sets) == 0 {
		opts.Sets = []string{"default"}
	}
	opts.Sets = append(opts.Sets, "price")
	return opts
}

func newScreenCmd(a *app) *cobra.Command {
	var f screenFlags
	cmd := &cobra.Command{
		Use:   "screen",
		Short: "Filter the reference table by keyword, sector and stored ratios",
		Example: `  hscreen screen -k solar -k storage --compliant
  hscreen screen --sector Technology --include-likely -o syms
  hscreen screen -m '7*.T' --set ratios,price`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pred, err := f.predicate()
			if err != nil {
				return err
			}
			opts := f.options()
			opts.Filter = pred
			opts.Render = a.renderOptions()

			r, err := a.runner(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if f.quotes {
				r.Quotes = a.quoteService()
			}
			return r.Screen(cmd.Context(), a.cfg.Data, opts)
		},
	}
	fl := cmd.Flags()
	fl.String("data", "", "reference CSV file (default stocks.csv)")
	fl.StringArrayVarP(&f.keywords, "keyword", "k", nil, "description keyword; repeat to require all")
	fl.StringArrayVar(&f.sectors, "sector", nil, "sector name; repeat to allow any of several")
	fl.StringVarP(&f.match, "match", "m", "", "symbol or name: AAPL,MSFT | 7*.T | /regex/ | substring")
	fl.BoolVar(&f.compliant, "compliant", false, "keep only compliant rows")
	fl.BoolVar(&f.includeLikely, "include-likely", false, "also keep likely-compliant rows")
	fl.BoolVar(&f.quotes, "quotes", false, "add live price and change columns")
	fl.StringVarP(&f.cols, "columns", "c", "", "comma-separated columns")
	fl.StringVar(&f.sets, "set", "", "comma-separated column sets (default, ratios, profile, price, check)")
	fl.StringP("output", "o", "", "output format: table, json or syms")
	fl.Bool("pretty", false, "indent JSON output")
	return cmd
}
