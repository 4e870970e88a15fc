package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/komsit37/hscreen/pkg/hscreen/types"
)

// symsRenderer prints all symbols in a single comma-separated line.
type symsRenderer struct{}

func NewSymsRenderer() Renderer {
	return symsRenderer{}
}

func (symsRenderer) Render(w io.Writer, tables []types.Table, _ RenderOptions) error {
	symbols := make([]string, 0)
	for _, t := range tables {
		for _, rec := range t.Records {
			sym := strings.TrimSpace(rec.Symbol)
			if sym == "" {
				continue
			}
			symbols = append(symbols, sym)
		}
	}
	_, err := fmt.Fprintln(w, strings.Join(symbols, ","))
	return err
}
