//go:build linux || darwin || freebsd || netbsd || openbsd

package arp

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/j-keck/arping"

	"github.com/marcuoli/go-lanaudit/pkg/lanaudit/network"
)

// DefaultPingWorkers bounds concurrent arping requests.
const DefaultPingWorkers = 256

// pingFunc is swapped out in tests.
var pingFunc = func(ip net.IP, iface string) (net.HardwareAddr, time.Duration, error) {
	if iface == "" {
		return arping.Ping(ip)
	}
	return arping.PingOverIfaceByName(ip, iface)
}

// Pinger discovers hosts by asking each address separately.
// Every request waits at most Window, so with enough workers the whole
// subnet is answered within roughly one window.
type Pinger struct {
	Interface string
	Window    time.Duration
	Workers   int
}

// NewPinger creates a pinger sending over iface (empty for the default route).
func NewPinger(iface string) *Pinger {
	return &Pinger{Interface: iface, Window: DefaultWindow, Workers: DefaultPingWorkers}
}

type pingResult struct {
	reply Reply
	ok    bool
	err   error
}

// Discover pings every usable address of subnet and returns the answers in
// address order.
func (p *Pinger) Discover(ctx context.Context, subnet *net.IPNet) ([]Reply, error) {
	if err := checkSubnet(subnet); err != nil {
		return nil, err
	}
	window := p.Window
	if window <= 0 {
		window = DefaultWindow
	}
	workers := p.Workers
	if workers <= 0 {
		workers = DefaultPingWorkers
	}

	// arping keeps its timeout in a package variable.
	arping.SetTimeout(window)

	targets := network.EnumerateNet(subnet)
	debugLog("Starting arping discovery of %s (%d addresses)", subnet, len(targets))

	ping := pingFunc
	results := make([]pingResult, len(targets))
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)

enqueue:
	for i, ip := range targets {
		select {
		case <-ctx.Done():
			break enqueue
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(idx int, target net.IP) {
			defer wg.Done()
			defer func() { <-sem }()
			results[idx] = p.ping(ctx, ping, target)
		}(i, ip)
	}
	wg.Wait()

	var (
		replies  []Reply
		firstErr error
	)
	for _, r := range results {
		if r.ok {
			replies = append(replies, r.reply)
			continue
		}
		if r.err != nil && firstErr == nil {
			firstErr = r.err
		}
	}

	debugLog("arping discovery complete: %d/%d hosts responded", len(replies), len(targets))
	if err := ctx.Err(); err != nil {
		return replies, err
	}
	if len(replies) == 0 && firstErr != nil {
		return nil, firstErr
	}
	return replies, nil
}

func (p *Pinger) ping(ctx context.Context, pingFn func(net.IP, string) (net.HardwareAddr, time.Duration, error), ip net.IP) pingResult {
	type arpResponse struct {
		mac net.HardwareAddr
		err error
	}
	responseChan := make(chan arpResponse, 1)

	go func() {
		mac, _, err := pingFn(ip, p.Interface)
		responseChan <- arpResponse{mac: mac, err: err}
	}()

	select {
	case <-ctx.Done():
		return pingResult{}
	case resp := <-responseChan:
		if resp.err != nil {
			if errors.Is(resp.err, arping.ErrTimeout) {
				return pingResult{}
			}
			classified := classifyError(p.Interface, resp.err)
			if errors.Is(classified, ErrPermission) || errors.Is(classified, ErrNoInterface) {
				return pingResult{err: classified}
			}
			debugLog("%s: error: %v", ip, resp.err)
			return pingResult{}
		}
		debugLog("%s -> MAC: %s", ip, resp.mac)
		return pingResult{reply: Reply{IP: ip, MAC: resp.mac}, ok: true}
	}
}

// IsSupported returns true if the arping backend works on this platform.
func IsSupported() bool {
	return true
}
