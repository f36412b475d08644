// Package probe implements readiness checks against managed services.
package probe

import (
	"context"
	"fmt"
	"net"
	"time"
)

// TCPProber reports readiness by dialing an address.
type TCPProber struct {
	address string
	dialer  func(ctx context.Context, network, address string) (net.Conn, error)
}

// NewTCP constructs a prober that dials the provided host:port.
func NewTCP(address string) *TCPProber {
	return &TCPProber{
		address: address,
		dialer:  (&net.Dialer{}).DialContext,
	}
}

// Probe succeeds once the address accepts a TCP connection.
func (p *TCPProber) Probe(ctx context.Context) error {
	conn, err := p.dialer(ctx, "tcp", p.address)
	if err != nil {
		return fmt.Errorf("dial %s: %w", p.address, err)
	}
	return conn.Close()
}

// WaitReady polls the address at the given interval until it accepts a
// connection or the context expires. The last dial error is wrapped into the
// returned context error.
func WaitReady(ctx context.Context, address string, interval time.Duration) error {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	prober := NewTCP(address)

	var lastErr error
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		err := prober.Probe(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		select {
		case <-ctx.Done():
			if lastErr != nil {
				return fmt.Errorf("%w (last attempt: %v)", ctx.Err(), lastErr)
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
