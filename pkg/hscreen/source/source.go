package source

import (
	"context"

	"github.com/komsit37/hscreen/pkg/hscreen/types"
)

// Source loads record tables from a specification (e.g., filepath).
type Source interface {
	Load(ctx context.Context, spec any) ([]types.Table, error)
}
