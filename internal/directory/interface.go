package directory

import (
	"context"
	"errors"

	"github.com/pholguinc/api-streaming/internal/domain"
)

var (
	ErrStreamNotFound = errors.New("stream not found")
)

// StreamDirectory is the external durable store of stream records. The
// coordinator only reads records and flips lifecycle status; it never creates
// them.
type StreamDirectory interface {
	FindByID(ctx context.Context, uid string) (*domain.Stream, error)
	FindByOwner(ctx context.Context, ownerID string) ([]domain.Stream, error)
	FindActive(ctx context.Context) ([]domain.Stream, error)
	UpdateStatus(ctx context.Context, uid string, status domain.StreamStatus) error
}
