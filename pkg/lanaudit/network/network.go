// Package network derives the scan scope from the operator's own address:
// the local IPv4 address, the /24 subnet around it, the interface that owns
// it and the usable host addresses inside the subnet.
package network

import (
	"errors"
	"net"
)

// SubnetPrefixLen is the fixed prefix length of every derived subnet.
const SubnetPrefixLen = 24

var (
	// ErrNoInterface is returned when no local interface carries the address.
	ErrNoInterface = errors.New("no local interface owns the address")
	// ErrNotIPv4 is returned for nil or IPv6 addresses.
	ErrNotIPv4 = errors.New("not an IPv4 address")
)

// DebugLogger is a callback for debug logging.
// Set this to receive debug messages from address resolution.
var DebugLogger func(format string, args ...interface{})

func debugLog(format string, args ...interface{}) {
	if DebugLogger != nil {
		DebugLogger(format, args...)
	}
}

// EnumerateIPs returns all usable host IPs in a CIDR (excludes network and broadcast).
func EnumerateIPs(cidr string) ([]net.IP, error) {
	_, ipnet, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, err
	}
	return EnumerateNet(ipnet), nil
}

// EnumerateNet returns all usable host IPs in n. IPv6 networks yield nothing.
func EnumerateNet(n *net.IPNet) []net.IP {
	var res []net.IP
	if n == nil {
		return res
	}
	base := n.IP.To4()
	if base == nil {
		return res
	}
	mask := net.IP(n.Mask).To4()
	if mask == nil {
		return res
	}
	network := ipToUint32(base) & ipToUint32(mask)
	broadcast := network | ^ipToUint32(mask)
	for u := network + 1; u < broadcast; u++ {
		res = append(res, uint32ToIP(u))
	}
	return res
}

// IsLoopback checks if an IP address is a loopback address.
func IsLoopback(ip net.IP) bool {
	return ip.IsLoopback()
}

func ipToUint32(ip net.IP) uint32 {
	ip = ip.To4()
	return uint32(ip[0])<<24 | uint32(ip[1])<<16 | uint32(ip[2])<<8 | uint32(ip[3])
}

func uint32ToIP(u uint32) net.IP {
	return net.IPv4(byte(u>>24), byte(u>>16), byte(u>>8), byte(u))
}
