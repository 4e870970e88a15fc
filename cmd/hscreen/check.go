package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/komsit37/hscreen/pkg/hscreen/pipeline"
	"github.com/komsit37/hscreen/pkg/hscreen/source"
	"github.com/komsit37/hscreen/pkg/hscreen/types"
)

func newCheckCmd(a *app) *cobra.Command {
	var list, cols, sets string
	cmd := &cobra.Command{
		Use:   "check [TICKER...]",
		Short: "Compute live compliance ratios from Yahoo Finance",
		Example: `  hscreen check AAPL 7203.T
  hscreen check --list watch.yaml -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tables, err := checkTables(cmd.Context(), args, list)
			if err != nil {
				return err
			}
			syms := source.Symbols(tables)
			if len(syms) == 0 {
				return errors.New("no tickers given: pass TICKER arguments or --list FILE")
			}
			a.log.Debug().Strs("tickers", syms).Msg("checking")

			r, err := a.runner(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			r.Ratios = a.ratioService()
			sum, err := r.Check(cmd.Context(), tables, pipeline.ExecuteOptions{
				Columns: splitList(cols),
				Sets:    splitList(sets),
				Render:  a.renderOptions(),
			})
			if err != nil {
				return err
			}
			logCheckSummary(a.log, sum)
			if sum.Total > 0 && sum.Failed == sum.Total {
				return fmt.Errorf("all %d lookups failed", sum.Total)
			}
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&list, "list", "", "YAML ticker list to check")
	fl.StringVarP(&cols, "columns", "c", "", "comma-separated columns")
	fl.StringVar(&sets, "set", "", "comma-separated column sets")
	fl.StringP("output", "o", "", "output format: table, json or syms")
	fl.Bool("pretty", false, "indent JSON output")
	return cmd
}

// summaryOrder fixes the order of per-status counts in the summary log.
var summaryOrder = []types.Status{types.Compliant, types.LikelyCompliant, types.NonCompliant, types.Indeterminate}

func logCheckSummary(log zerolog.Logger, sum pipeline.CheckSummary) {
	ev := log.Info().Int("total", sum.Total).Int("failed", sum.Failed)
	for _, s := range summaryOrder {
		ev = ev.Int(s.String(), sum.Status[s])
	}
	ev.Msg("check complete")
}

// checkTables builds one table from the ticker arguments, followed by the
// tables of the YAML list if given. Tickers are passed on verbatim.
func checkTables(ctx context.Context, args []string, list string) ([]types.Table, error) {
	var tables []types.Table
	if len(args) > 0 {
		t := types.Table{Name: "check"}
		for _, a := range args {
			if a = strings.TrimSpace(a); a != "" {
				t.Records = append(t.Records, types.Record{Symbol: a})
			}
		}
		tables = append(tables, t)
	}
	if list != "" {
		ts, err := source.YAMLSource{}.Load(ctx, list)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", list, err)
		}
		tables = append(tables, ts...)
	}
	return tables, nil
}
