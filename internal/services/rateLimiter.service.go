package services

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Minimum spacing between requests per provider.
const (
	SpotifyRequestInterval      = 200 * time.Millisecond
	LastFMRequestInterval       = 200 * time.Millisecond
	MusicBrainzRequestInterval  = time.Second
	ListenBrainzRequestInterval = 200 * time.Millisecond
)

// RequestLimiter spaces consecutive requests by at least its interval. Each
// provider client owns one; nothing is shared between clients.
type RequestLimiter struct {
	limiter  *rate.Limiter
	interval time.Duration
}

func NewRequestLimiter(interval time.Duration) *RequestLimiter {
	return &RequestLimiter{
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		interval: interval,
	}
}

// Wait blocks until the next request may be sent or ctx is done.
func (l *RequestLimiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

func (l *RequestLimiter) Interval() time.Duration {
	return l.interval
}
