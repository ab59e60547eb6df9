// Package store persists business record snapshots between import and
// scoring runs.
package store

import (
	"context"

	"github.com/sells-group/geodensity/internal/model"
)

// Filter narrows ListBusinesses results.
type Filter struct {
	Category model.CategoryID
	Limit    int
	Offset   int
}

// Store is the snapshot persistence interface.
type Store interface {
	Migrate(ctx context.Context) error
	InsertBusinesses(ctx context.Context, businesses []model.Business) (int, error)
	ListBusinesses(ctx context.Context, filter Filter) ([]model.Business, error)
	CountBusinesses(ctx context.Context) (int, error)
	Close() error
}
