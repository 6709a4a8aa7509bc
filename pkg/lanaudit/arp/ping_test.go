//go:build linux || darwin || freebsd || netbsd || openbsd

package arp

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/j-keck/arping"
)

func withPingFunc(t *testing.T, fn func(ip net.IP, iface string) (net.HardwareAddr, time.Duration, error)) {
	t.Helper()
	orig := pingFunc
	pingFunc = fn
	t.Cleanup(func() { pingFunc = orig })
}

func TestPinger_Discover(t *testing.T) {
	hosts := map[string]net.HardwareAddr{
		"192.168.1.1":  {0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
		"192.168.1.10": {0xaa, 0xbb, 0xcc, 0x11, 0x22, 0x33},
	}
	var mu sync.Mutex
	var asked int
	withPingFunc(t, func(ip net.IP, iface string) (net.HardwareAddr, time.Duration, error) {
		mu.Lock()
		asked++
		mu.Unlock()
		if iface != "eth0" {
			t.Errorf("expected eth0, got %q", iface)
		}
		if mac, ok := hosts[ip.String()]; ok {
			return mac, time.Millisecond, nil
		}
		return nil, 0, arping.ErrTimeout
	})

	p := NewPinger("eth0")
	p.Window = 10 * time.Millisecond
	replies, err := p.Discover(context.Background(), mustSubnet(t, "192.168.1.0/24"))
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if asked != 254 {
		t.Errorf("expected 254 pings, got %d", asked)
	}
	if len(replies) != 2 {
		t.Fatalf("expected 2 replies, got %d", len(replies))
	}
	// Address order.
	if replies[0].IP.String() != "192.168.1.1" || replies[1].IP.String() != "192.168.1.10" {
		t.Errorf("unexpected order: %s, %s", replies[0].IP, replies[1].IP)
	}
	if replies[1].MAC.String() != "aa:bb:cc:11:22:33" {
		t.Errorf("unexpected MAC %s", replies[1].MAC)
	}
}

func TestPinger_PermissionDenied(t *testing.T) {
	withPingFunc(t, func(ip net.IP, iface string) (net.HardwareAddr, time.Duration, error) {
		return nil, 0, errors.New("socket: operation not permitted")
	})

	p := NewPinger("eth0")
	replies, err := p.Discover(context.Background(), mustSubnet(t, "192.168.1.0/24"))
	if !errors.Is(err, ErrPermission) {
		t.Fatalf("expected ErrPermission, got %v", err)
	}
	if len(replies) != 0 {
		t.Errorf("expected no replies, got %d", len(replies))
	}
}

func TestPinger_OtherErrorsAreSilent(t *testing.T) {
	withPingFunc(t, func(ip net.IP, iface string) (net.HardwareAddr, time.Duration, error) {
		return nil, 0, errors.New("unexpected frame")
	})

	replies, err := NewPinger("").Discover(context.Background(), mustSubnet(t, "192.168.1.0/24"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(replies) != 0 {
		t.Errorf("expected no replies, got %d", len(replies))
	}
}

func TestPinger_Cancelled(t *testing.T) {
	withPingFunc(t, func(ip net.IP, iface string) (net.HardwareAddr, time.Duration, error) {
		time.Sleep(20 * time.Millisecond)
		return nil, 0, arping.ErrTimeout
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPinger("eth0")
	_, err := p.Discover(ctx, mustSubnet(t, "192.168.1.0/24"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPinger_IPv6(t *testing.T) {
	_, err := NewPinger("").Discover(context.Background(), mustSubnet(t, "2001:db8::/120"))
	if !errors.Is(err, ErrIPv6NotSupported) {
		t.Fatalf("expected ErrIPv6NotSupported, got %v", err)
	}
}

func TestIsSupported(t *testing.T) {
	if !IsSupported() {
		t.Error("expected arping backend to be supported on this platform")
	}
}
