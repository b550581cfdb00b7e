// Package ratelimit throttles outgoing UDP datagrams sent through a
// socks.DatagramRelay, the same token-bucket shape a byte-throughput
// limiter uses, applied per datagram instead of per byte.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// DatagramLimiter gates datagram sends to a fixed rate with a small burst
// allowance, so a socksdial session can't flood the proxy's UDP relay
// faster than the configured udpRatePerSecond.
type DatagramLimiter struct {
	limiter *rate.Limiter
}

// New builds a DatagramLimiter allowing perSecond datagrams per second,
// bursting up to burst at once. perSecond <= 0 disables limiting.
func New(perSecond float64, burst int) *DatagramLimiter {
	if perSecond <= 0 {
		return nil
	}
	return &DatagramLimiter{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Wait blocks until the limiter has a token available or ctx is done. A
// nil receiver (limiting disabled) always returns immediately.
func (l *DatagramLimiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	return l.limiter.Wait(ctx)
}
