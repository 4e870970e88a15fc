package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/komsit37/hscreen/pkg/hscreen/columns"
	"github.com/komsit37/hscreen/pkg/hscreen/types"
)

type TableRenderer struct{}

func NewTableRenderer() *TableRenderer { return &TableRenderer{} }

func (r *TableRenderer) Render(w io.Writer, tables []types.Table, opts RenderOptions) error {
	multi := len(tables) > 1
	for ti, tbl := range tables {
		cols := tbl.Columns

		// Print table name as a standalone line spanning full width
		if multi && strings.TrimSpace(tbl.Name) != "" {
			name := strings.ToUpper(tbl.Name)
			if opts.Color {
				name = text.Bold.Sprint(name)
			}
			fmt.Fprintln(w, name)
		}
		if opts.Summary {
			fmt.Fprintf(w, "Total number of rows found - %d\n", len(tbl.Records))
		}

		tw := table.NewWriter()
		tw.SetOutputMirror(w)
		if opts.Color {
			tw.SetStyle(table.StyleColoredDark)
		} else {
			tw.SetStyle(table.StyleLight)
		}
		tw.Style().Options.DrawBorder = false
		tw.Style().Options.SeparateRows = false
		tw.Style().Options.SeparateColumns = false

		hdr := make(table.Row, len(cols))
		for i, c := range cols {
			hdr[i] = strings.ToUpper(c)
		}
		tw.AppendHeader(hdr)

		// Column configs: wrap text to MaxColWidth (default 40), no truncation
		maxWidth := opts.MaxColWidth
		if maxWidth <= 0 {
			maxWidth = 40
		}
		cfgs := make([]table.ColumnConfig, 0, len(cols))
		for i, c := range cols {
			cfg := table.ColumnConfig{Number: i + 1, WidthMax: maxWidth}
			if def, ok := columns.GetDef(c); ok && def.Numeric {
				cfg.Align = text.AlignRight
				cfg.AlignHeader = text.AlignRight
			}
			cfgs = append(cfgs, cfg)
		}
		if len(cfgs) > 0 {
			tw.SetColumnConfigs(cfgs)
		}

		for _, rec := range tbl.Records {
			row := make(table.Row, len(cols))
			for i, c := range cols {
				row[i] = cell(c, rec, opts.Color)
			}
			tw.AppendRow(row)
		}

		tw.Render()
		if ti < len(tables)-1 {
			// blank line between tables
			fmt.Fprintln(w)
		}
	}
	return nil
}

func cell(key string, rec types.Record, color bool) string {
	def, ok := columns.GetDef(key)
	if !ok {
		return ""
	}
	v := def.Value(rec)
	if !color || v == "" {
		return v
	}
	switch key {
	case "status":
		return statusColors(rec.Status).Sprint(v)
	case "price", "chg%":
		if rec.Quote == nil {
			return v
		}
		if rec.Quote.ChgRaw > 0 {
			return text.Colors{text.FgGreen}.Sprint(v)
		} else if rec.Quote.ChgRaw < 0 {
			return text.Colors{text.FgRed}.Sprint(v)
		}
	}
	return v
}

func statusColors(s types.Status) text.Colors {
	switch s {
	case types.Compliant:
		return text.Colors{text.FgGreen}
	case types.LikelyCompliant:
		return text.Colors{text.FgYellow}
	case types.NonCompliant:
		return text.Colors{text.FgRed}
	default:
		return text.Colors{text.FgHiBlack}
	}
}
