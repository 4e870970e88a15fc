package main

import (
	"encoding/json"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/komsit37/hscreen/pkg/hscreen/pipeline"
)

func newSectorsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sectors",
		Short: "List the sectors of the reference table with row counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := a.runner(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			counts, err := r.Sectors(cmd.Context(), a.cfg.Data)
			if err != nil {
				return err
			}
			if a.cfg.Output.Format == "json" {
				return writeSectorsJSON(cmd.OutOrStdout(), counts, a.cfg.Output.Pretty)
			}
			writeSectorsTable(cmd.OutOrStdout(), counts, a.cfg.Output.Color)
			return nil
		},
	}
	fl := cmd.Flags()
	fl.String("data", "", "reference CSV file (default stocks.csv)")
	fl.StringP("output", "o", "", "output format: table or json")
	fl.Bool("pretty", false, "indent JSON output")
	return cmd
}

func writeSectorsTable(w io.Writer, counts []pipeline.SectorCount, color bool) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	if color {
		tw.SetStyle(table.StyleColoredDark)
	} else {
		tw.SetStyle(table.StyleLight)
	}
	tw.Style().Options.DrawBorder = false
	tw.Style().Options.SeparateRows = false
	tw.Style().Options.SeparateColumns = false
	tw.AppendHeader(table.Row{"SECTOR", "COUNT"})
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignRight}})
	total := 0
	for _, c := range counts {
		tw.AppendRow(table.Row{c.Sector, c.Count})
		total += c.Count
	}
	tw.AppendFooter(table.Row{"TOTAL", total})
	tw.Render()
}

func writeSectorsJSON(w io.Writer, counts []pipeline.SectorCount, pretty bool) error {
	type row struct {
		Sector string `json:"sector"`
		Count  int    `json:"count"`
	}
	out := make([]row, 0, len(counts))
	for _, c := range counts {
		out = append(out, row{Sector: c.Sector, Count: c.Count})
	}
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(out)
}
