// Package portprobe checks a fixed set of TCP ports with plain connect
// attempts. A port is open when the handshake completes; nothing is read
// from the connection.
package portprobe

import (
	"context"
	"net"
	"sort"
	"strconv"
	"time"

	syncutil "github.com/projectdiscovery/utils/sync"
)

const (
	// DefaultTimeout bounds every connect attempt.
	DefaultTimeout = 500 * time.Millisecond
	// DefaultWorkers caps concurrent connect attempts.
	DefaultWorkers = 256
)

// DefaultPorts are the commonly probed service ports, ascending.
var DefaultPorts = []int{21, 22, 23, 25, 53, 80, 110, 135, 139, 443, 445, 3389, 8080}

// DebugLogger is a callback for debug logging.
// Set this to receive debug messages from port probes.
var DebugLogger func(format string, args ...interface{})

func debugLog(format string, args ...interface{}) {
	if DebugLogger != nil {
		DebugLogger(format, args...)
	}
}

// Prober runs TCP connect probes against a fixed port set.
type Prober struct {
	ports   []int
	timeout time.Duration
	workers int
	dialer  func(ctx context.Context, network, address string) (net.Conn, error)
}

// New creates a prober. Ports are sorted and deduplicated; out of range
// entries are dropped. Zero values, or a port list with nothing left after
// that, select the defaults.
func New(ports []int, timeout time.Duration, workers int) *Prober {
	ports = NormalizePorts(ports)
	if len(ports) == 0 {
		ports = NormalizePorts(DefaultPorts)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	d := &net.Dialer{Timeout: timeout}
	return &Prober{
		ports:   ports,
		timeout: timeout,
		workers: workers,
		dialer:  d.DialContext,
	}
}

// Ports returns the normalized port set.
func (p *Prober) Ports() []int {
	return append([]int(nil), p.ports...)
}

// Timeout returns the per-port connect timeout.
func (p *Prober) Timeout() time.Duration {
	return p.timeout
}

// Probe returns the open ports of ip in ascending order. It never fails:
// refused, timed out and unreachable all count as closed.
func (p *Prober) Probe(ctx context.Context, ip net.IP) []int {
	return p.ProbeAll(ctx, []net.IP{ip})[0]
}

// ProbeAll probes every (host, port) pair through one bounded pool of
// min(len(ips)*len(ports), workers) goroutines. result[i] belongs to ips[i].
func (p *Prober) ProbeAll(ctx context.Context, ips []net.IP) [][]int {
	results := make([][]int, len(ips))
	total := len(ips) * len(p.ports)
	if total == 0 {
		return results
	}

	size := p.workers
	if total < size {
		size = total
	}
	awg, err := syncutil.New(syncutil.WithSize(size))
	if err != nil {
		// Only an invalid size fails here; fall back to sequential probing.
		debugLog("worker pool: %v", err)
		return p.probeSequential(ctx, ips)
	}

	open := make([][]bool, len(ips))
	for i := range open {
		open[i] = make([]bool, len(p.ports))
	}

enqueue:
	for i, ip := range ips {
		for j, port := range p.ports {
			if ctx.Err() != nil {
				break enqueue
			}
			awg.Add()
			go func(hostIdx, portIdx int, ip net.IP, port int) {
				defer awg.Done()
				open[hostIdx][portIdx] = p.connect(ctx, ip, port)
			}(i, j, ip, port)
		}
	}
	awg.Wait()

	for i := range ips {
		results[i] = collect(p.ports, open[i])
	}
	return results
}

func (p *Prober) probeSequential(ctx context.Context, ips []net.IP) [][]int {
	results := make([][]int, len(ips))
	for i, ip := range ips {
		flags := make([]bool, len(p.ports))
		for j, port := range p.ports {
			if ctx.Err() != nil {
				break
			}
			flags[j] = p.connect(ctx, ip, port)
		}
		results[i] = collect(p.ports, flags)
	}
	return results
}

func collect(ports []int, open []bool) []int {
	res := []int{}
	for j, ok := range open {
		if ok {
			res = append(res, ports[j])
		}
	}
	return res
}

// connect reports whether a TCP handshake with ip:port completes in time.
func (p *Prober) connect(ctx context.Context, ip net.IP, port int) bool {
	dialCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	addr := net.JoinHostPort(ip.String(), strconv.Itoa(port))
	conn, err := p.dialer(dialCtx, "tcp", addr)
	if err != nil {
		return false
	}
	conn.Close()
	debugLog("%s open", addr)
	return true
}

// NormalizePorts returns ports sorted ascending without duplicates or
// values outside 1..65535.
func NormalizePorts(ports []int) []int {
	res := make([]int, 0, len(ports))
	seen := make(map[int]struct{}, len(ports))
	for _, port := range ports {
		if port <= 0 || port > 65535 {
			continue
		}
		if _, dup := seen[port]; dup {
			continue
		}
		seen[port] = struct{}{}
		res = append(res, port)
	}
	sort.Ints(res)
	return res
}
