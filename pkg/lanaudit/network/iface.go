package network

import (
	"fmt"
	"net"
	"strings"

	psnet "github.com/shirou/gopsutil/v3/net"
)

// Interface is the local interface that owns the scanning address.
type Interface struct {
	Name         string
	Index        int
	HardwareAddr net.HardwareAddr
	Addr         net.IP
}

// interfaces is swapped out in tests.
var interfaces = psnet.Interfaces

// InterfaceFor returns the interface carrying ip.
func InterfaceFor(ip net.IP) (*Interface, error) {
	ip4 := ip.To4()
	if ip4 == nil {
		return nil, ErrNotIPv4
	}

	stats, err := interfaces()
	if err != nil {
		return nil, fmt.Errorf("list interfaces: %w", err)
	}

	for _, st := range stats {
		for _, a := range st.Addrs {
			if !addrMatches(a.Addr, ip4) {
				continue
			}
			iface, err := fromStat(st, ip4)
			if err != nil {
				return nil, err
			}
			debugLog("%s owns %s (hw %s)", iface.Name, ip4, iface.HardwareAddr)
			return iface, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoInterface, ip4)
}

// InterfaceByName returns the named interface with its first IPv4 address.
func InterfaceByName(name string) (*Interface, error) {
	stats, err := interfaces()
	if err != nil {
		return nil, fmt.Errorf("list interfaces: %w", err)
	}

	for _, st := range stats {
		if st.Name != name {
			continue
		}
		for _, a := range st.Addrs {
			ip4 := parseAddr(a.Addr).To4()
			if ip4 == nil {
				continue
			}
			iface, err := fromStat(st, ip4)
			if err != nil {
				return nil, err
			}
			debugLog("%s selected by name, %s (hw %s)", name, ip4, iface.HardwareAddr)
			return iface, nil
		}
		return nil, fmt.Errorf("%w: %s has no IPv4 address", ErrNoInterface, name)
	}
	return nil, fmt.Errorf("%w: %s", ErrNoInterface, name)
}

func fromStat(st psnet.InterfaceStat, ip4 net.IP) (*Interface, error) {
	iface := &Interface{Name: st.Name, Index: st.Index, Addr: ip4}
	if st.HardwareAddr != "" {
		hw, err := net.ParseMAC(st.HardwareAddr)
		if err != nil {
			return nil, fmt.Errorf("interface %s: parse hardware address %q: %w", st.Name, st.HardwareAddr, err)
		}
		iface.HardwareAddr = hw
	}
	return iface, nil
}

func parseAddr(addr string) net.IP {
	if i := strings.IndexByte(addr, '/'); i >= 0 {
		addr = addr[:i]
	}
	return net.ParseIP(addr)
}

// addrMatches accepts both "a.b.c.d/nn" and bare "a.b.c.d" forms.
func addrMatches(addr string, ip net.IP) bool {
	parsed := parseAddr(addr)
	return parsed != nil && parsed.Equal(ip)
}
