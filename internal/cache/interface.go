package cache

import (
	"context"
	"errors"
	"time"

	"github.com/pholguinc/api-streaming/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

// StreamCache caches directory records. Only records are cached — viewer
// counts are always recomputed live at emission time.
type StreamCache interface {
	GetStream(ctx context.Context, uid string) (*domain.Stream, error)
	SetStream(ctx context.Context, stream *domain.Stream, ttl time.Duration) error
	GetActive(ctx context.Context) ([]domain.Stream, error)
	SetActive(ctx context.Context, streams []domain.Stream, ttl time.Duration) error
	Invalidate(ctx context.Context, uids ...string) error
	Close() error
}
