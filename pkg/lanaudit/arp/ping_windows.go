//go:build windows

package arp

import (
	"context"
	"net"
	"time"
)

// DefaultPingWorkers bounds concurrent arping requests.
const DefaultPingWorkers = 256

// Pinger is not available on Windows; Discover always returns ErrNotSupported.
type Pinger struct {
	Interface string
	Window    time.Duration
	Workers   int
}

// NewPinger creates a pinger stub.
func NewPinger(iface string) *Pinger {
	return &Pinger{Interface: iface, Window: DefaultWindow, Workers: DefaultPingWorkers}
}

// Discover always returns ErrNotSupported on Windows.
func (p *Pinger) Discover(ctx context.Context, subnet *net.IPNet) ([]Reply, error) {
	return nil, ErrNotSupported
}

// IsSupported returns true if the arping backend works on this platform.
func IsSupported() bool {
	return false
}
