package arp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/gopacket"

	"github.com/marcuoli/go-lanaudit/pkg/lanaudit/network"
)

// PacketConn is a raw link-layer handle. *pcap.Handle satisfies the read and
// write side; reads must return within a bounded time, reporting
// ErrReadTimeout when nothing arrived.
type PacketConn interface {
	ReadPacketData() ([]byte, gopacket.CaptureInfo, error)
	WritePacketData(data []byte) error
	Close()
}

// Opener opens a PacketConn on the named interface.
type Opener func(iface string) (PacketConn, error)

// Sweeper discovers hosts with a single burst of broadcast ARP requests.
type Sweeper struct {
	// Interface is the name of the capture interface.
	Interface string
	// HardwareAddr is the source MAC of the request frames.
	HardwareAddr net.HardwareAddr
	// Source is the sender protocol address of the requests.
	Source net.IP
	// Window is how long replies are collected after the burst.
	Window time.Duration
	// Open opens the link-layer handle. Defaults to OpenPcap.
	Open Opener
}

// NewSweeper creates a sweeper sending from iface.
func NewSweeper(iface *network.Interface) *Sweeper {
	return &Sweeper{
		Interface:    iface.Name,
		HardwareAddr: iface.HardwareAddr,
		Source:       iface.Addr,
		Window:       DefaultWindow,
		Open:         OpenPcap,
	}
}

// Discover broadcasts one request per usable address of subnet and returns
// every reply seen before the window closes, in arrival order. Hosts that
// answer twice appear twice. There is no retry.
func (s *Sweeper) Discover(ctx context.Context, subnet *net.IPNet) ([]Reply, error) {
	if err := checkSubnet(subnet); err != nil {
		return nil, err
	}
	if len(s.HardwareAddr) != 6 {
		return nil, fmt.Errorf("%w: %s has no Ethernet address", ErrNotSupported, s.Interface)
	}
	window := s.Window
	if window <= 0 {
		window = DefaultWindow
	}
	open := s.Open
	if open == nil {
		open = OpenPcap
	}

	conn, err := open(s.Interface)
	if err != nil {
		return nil, classifyError(s.Interface, err)
	}
	defer conn.Close()

	targets := network.EnumerateNet(subnet)
	debugLog("Starting ARP sweep of %s on %s (%d addresses)", subnet, s.Interface, len(targets))

	var (
		wg      sync.WaitGroup
		replies []Reply
		readErr error
	)
	done := make(chan struct{})

	// Start reading before the first request goes out so fast replies are kept.
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			data, _, err := conn.ReadPacketData()
			if err != nil {
				if errors.Is(err, ErrReadTimeout) {
					continue
				}
				readErr = err
				return
			}
			reply, ok := decodeReply(data, s.Source)
			if !ok || !subnet.Contains(reply.IP) {
				continue
			}
			debugLog("%s is at %s", reply.IP, reply.MAC)
			replies = append(replies, reply)
		}
	}()

	sent, sendErr := s.send(ctx, conn, targets)

	if sendErr == nil {
		timer := time.NewTimer(window)
		select {
		case <-ctx.Done():
		case <-timer.C:
		}
		timer.Stop()
	}

	close(done)
	wg.Wait()

	debugLog("ARP sweep complete: %d replies to %d/%d requests", len(replies), sent, len(targets))

	if sendErr != nil {
		return replies, sendErr
	}
	if readErr != nil {
		return replies, classifyError(s.Interface, readErr)
	}
	return replies, ctx.Err()
}

// send writes one request per target. A permission failure aborts the burst,
// other write errors skip the address.
func (s *Sweeper) send(ctx context.Context, conn PacketConn, targets []net.IP) (int, error) {
	sent := 0
	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		frame, err := requestFrame(s.HardwareAddr, s.Source, target)
		if err != nil {
			debugLog("%s: build request: %v", target, err)
			continue
		}
		if err := conn.WritePacketData(frame); err != nil {
			classified := classifyError(s.Interface, err)
			if errors.Is(classified, ErrPermission) {
				return sent, classified
			}
			debugLog("%s: send request: %v", target, err)
			continue
		}
		sent++
	}
	return sent, nil
}
