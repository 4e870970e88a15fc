package render

import (
	"encoding/json"
	"io"

	"github.com/komsit37/hscreen/pkg/hscreen/columns"
	"github.com/komsit37/hscreen/pkg/hscreen/types"
)

// jsonModel is the output shape for JSONRenderer.
type jsonModel struct {
	Name    string           `json:"name"`
	Columns []string         `json:"columns"`
	Count   int              `json:"count"`
	Records []map[string]any `json:"records"`
}

type JSONRenderer struct{}

func NewJSONRenderer() *JSONRenderer { return &JSONRenderer{} }

// Render writes one object per table; absent values are encoded as null.
func (r *JSONRenderer) Render(w io.Writer, tables []types.Table, opts RenderOptions) error {
	out := make([]jsonModel, 0, len(tables))
	for _, t := range tables {
		recs := make([]map[string]any, 0, len(t.Records))
		for _, rec := range t.Records {
			m := make(map[string]any, len(t.Columns))
			for _, c := range t.Columns {
				if def, ok := columns.GetDef(c); ok {
					m[c] = def.Raw(rec)
				}
			}
			recs = append(recs, m)
		}
		out = append(out, jsonModel{Name: t.Name, Columns: t.Columns, Count: len(recs), Records: recs})
	}
	enc := json.NewEncoder(w)
	if opts.PrettyJSON {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(out)
}
