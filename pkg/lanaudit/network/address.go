package network

import (
	"net"
)

// DefaultProbeTarget is the external address used to make the OS pick an
// outbound interface. Nothing is sent to it.
const DefaultProbeTarget = "8.8.8.8:80"

// Loopback is returned by LocalAddress when no outbound route exists.
var Loopback = net.IPv4(127, 0, 0, 1).To4()

// LocalAddress returns the IPv4 address of the interface the OS would use to
// reach the internet, or 127.0.0.1 when there is no route.
func LocalAddress() net.IP {
	return LocalAddressVia(DefaultProbeTarget)
}

// LocalAddressVia is LocalAddress with an explicit host:port target.
// A UDP "connect" only binds the socket, so no packet leaves the host.
func LocalAddressVia(target string) net.IP {
	conn, err := net.Dial("udp4", target)
	if err != nil {
		debugLog("no route via %s, falling back to %s: %v", target, Loopback, err)
		return Loopback
	}
	defer conn.Close()

	udpAddr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return Loopback
	}
	ip := udpAddr.IP.To4()
	if ip == nil || ip.IsUnspecified() {
		return Loopback
	}
	debugLog("local address via %s: %s", target, ip)
	return ip
}

// SubnetFor truncates ip to its first three octets and returns the /24 around it.
// The prefix length is fixed, not read from the interface netmask, so networks
// that are not /24 are misrepresented. Returns nil for non-IPv4 input.
func SubnetFor(ip net.IP) *net.IPNet {
	ip4 := ip.To4()
	if ip4 == nil {
		return nil
	}
	mask := net.CIDRMask(SubnetPrefixLen, 32)
	return &net.IPNet{IP: ip4.Mask(mask), Mask: mask}
}
