package directory

import (
	"context"
	"errors"
	"time"

	"github.com/pholguinc/api-streaming/internal/cache"
	"github.com/pholguinc/api-streaming/internal/domain"
	"github.com/pholguinc/api-streaming/pkg/log"
)

// CachedStreamDirectory is a read-through decorator over a StreamDirectory.
// Cache failures degrade to direct reads, never to request failures.
type CachedStreamDirectory struct {
	inner StreamDirectory
	cache cache.StreamCache
	ttl   time.Duration
}

// NewCachedStreamDirectory wraps inner with a record cache.
func NewCachedStreamDirectory(inner StreamDirectory, c cache.StreamCache, ttl time.Duration) *CachedStreamDirectory {
	return &CachedStreamDirectory{
		inner: inner,
		cache: c,
		ttl:   ttl,
	}
}

// FindByID reads through the cache by uid.
func (d *CachedStreamDirectory) FindByID(ctx context.Context, uid string) (*domain.Stream, error) {
	l := log.Ctx(ctx)

	if stream, err := d.cache.GetStream(ctx, uid); err == nil {
		return stream, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		l.Warn().Err(err).Str(log.FieldStreamUID, uid).Msg("stream cache read failed")
	}

	stream, err := d.inner.FindByID(ctx, uid)
	if err != nil {
		return nil, err
	}

	if err := d.cache.SetStream(ctx, stream, d.ttl); err != nil {
		l.Warn().Err(err).Str(log.FieldStreamUID, uid).Msg("stream cache write failed")
	}
	return stream, nil
}

// FindByOwner is not cached; it only serves occasional ownership lookups.
func (d *CachedStreamDirectory) FindByOwner(ctx context.Context, ownerID string) ([]domain.Stream, error) {
	return d.inner.FindByOwner(ctx, ownerID)
}

// FindActive reads through the cached active list.
func (d *CachedStreamDirectory) FindActive(ctx context.Context) ([]domain.Stream, error) {
	l := log.Ctx(ctx)

	if streams, err := d.cache.GetActive(ctx); err == nil {
		return streams, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		l.Warn().Err(err).Msg("active-list cache read failed")
	}

	streams, err := d.inner.FindActive(ctx)
	if err != nil {
		return nil, err
	}

	if err := d.cache.SetActive(ctx, streams, d.ttl); err != nil {
		l.Warn().Err(err).Msg("active-list cache write failed")
	}
	return streams, nil
}

// UpdateStatus writes through and invalidates stale entries.
func (d *CachedStreamDirectory) UpdateStatus(ctx context.Context, uid string, status domain.StreamStatus) error {
	if err := d.inner.UpdateStatus(ctx, uid, status); err != nil {
		return err
	}

	if err := d.cache.Invalidate(ctx, uid); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str(log.FieldStreamUID, uid).Msg("stream cache invalidation failed")
	}
	return nil
}
