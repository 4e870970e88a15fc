package render

import (
	"fmt"
	"io"

	"github.com/komsit37/hscreen/pkg/hscreen/types"
)

// Renderer renders record tables to an output writer. Each table's Columns
// must already hold canonical column keys.
type Renderer interface {
	Render(w io.Writer, tables []types.Table, opts RenderOptions) error
}

type RenderOptions struct {
	Color       bool
	PrettyJSON  bool
	MaxColWidth int
	// Summary prints the row count above table output.
	Summary bool
}

// ForFormat returns the renderer for an output format name.
func ForFormat(format string) (Renderer, error) {
	switch format {
	case "", "table":
		return NewTableRenderer(), nil
	case "json":
		return NewJSONRenderer(), nil
	case "syms":
		return NewSymsRenderer(), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want table, json or syms)", format)
	}
}
