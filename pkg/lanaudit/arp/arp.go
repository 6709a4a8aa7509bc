// Package arp maps IPv4 addresses on the local segment to hardware addresses.
//
// Two backends are provided. Sweeper writes one broadcast ARP request per
// address of the subnet in a single burst and collects the replies that
// arrive within a fixed window. Pinger asks each address separately with
// github.com/j-keck/arping. Both need raw link-layer access: root, or
// CAP_NET_RAW on Linux.
package arp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"
)

const (
	// DefaultWindow is how long replies are collected after the requests are sent.
	DefaultWindow = 1 * time.Second
)

// Errors
var (
	// ErrPermission is returned when raw link-layer frames cannot be sent.
	ErrPermission = errors.New("raw link-layer access denied (run as root or grant CAP_NET_RAW)")
	// ErrNoInterface is returned when the capture interface does not exist.
	ErrNoInterface = errors.New("no such interface")
	// ErrNotSupported is returned when ARP is called on unsupported platforms or links.
	ErrNotSupported = errors.New("ARP discovery is not supported")
	// ErrIPv6NotSupported is returned when attempting ARP on an IPv6 network.
	ErrIPv6NotSupported = errors.New("ARP is not supported for IPv6 addresses")
	// ErrReadTimeout is returned by a PacketConn read that saw no packet in time.
	ErrReadTimeout = errors.New("read timeout")
)

// DebugLogger is a callback for debug logging.
// Set this to receive debug messages from ARP operations.
var DebugLogger func(format string, args ...interface{})

func debugLog(format string, args ...interface{}) {
	if DebugLogger != nil {
		DebugLogger(format, args...)
	}
}

// Reply is one answer to an ARP request.
type Reply struct {
	IP  net.IP
	MAC net.HardwareAddr
}

// Discoverer finds the hosts of a subnet.
type Discoverer interface {
	Discover(ctx context.Context, subnet *net.IPNet) ([]Reply, error)
}

// classifyError maps transport errors onto the package sentinels so callers
// can print a useful diagnostic.
func classifyError(iface string, err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case errors.Is(err, os.ErrPermission),
		strings.Contains(msg, "permission"),
		strings.Contains(msg, "operation not permitted"):
		return fmt.Errorf("%w: %s: %v", ErrPermission, iface, err)
	case strings.Contains(msg, "no such device"),
		strings.Contains(msg, "no such interface"),
		strings.Contains(msg, "doesn't exist"):
		return fmt.Errorf("%w: %s: %v", ErrNoInterface, iface, err)
	}
	return fmt.Errorf("%s: %w", iface, err)
}

func checkSubnet(subnet *net.IPNet) error {
	if subnet == nil || subnet.IP.To4() == nil {
		return ErrIPv6NotSupported
	}
	return nil
}
