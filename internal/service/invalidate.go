package service

import (
	"context"

	"github.com/rs/zerolog/log"
)

// CacheInvalidator drops cached public reads.  Services call it after a
// write committed and before returning, so a client that saw the write
// succeed does not read the previous state back from the cache.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

type nopInvalidator struct{}

func (nopInvalidator) Invalidate(context.Context) error { return nil }

func invalidate(ctx context.Context, c CacheInvalidator) {
	if err := c.Invalidate(context.WithoutCancel(ctx)); err != nil {
		log.Error().Err(err).Msg("cache invalidation failed")
	}
}
