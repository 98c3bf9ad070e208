package store

import (
	"context"

	"github.com/example/media-catalog/internal/media"
)

// ErrNotFound is returned by Update and Delete for unknown identifiers.
var ErrNotFound = media.ErrNotFound

// MediaStore defines the contract for media persistence. List orders records
// newest first so freshly created entries land on page 1.
type MediaStore interface {
	List(ctx context.Context, page, limit int) (records []media.Record, total int, err error)
	Create(ctx context.Context, f media.Fields) (media.Record, error)
	Update(ctx context.Context, id string, f media.Fields) (media.Record, error)
	Delete(ctx context.Context, id string) error
}

func offset(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}
