package mediaapi

import (
	"context"

	"github.com/example/media-catalog/internal/media"
)

// Provider is the port for the media REST API.
type Provider interface {
	List(ctx context.Context, page, limit int) (*media.Page, error)
	Create(ctx context.Context, f media.Fields) (media.Record, error)
	Update(ctx context.Context, id string, f media.Fields) (media.Record, error)
	Remove(ctx context.Context, id string) error
}
