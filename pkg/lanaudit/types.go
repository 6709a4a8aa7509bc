// Package lanaudit discovers live hosts on the local IPv4 /24 segment and
// characterizes each one by hardware address, vendor and open TCP ports.
//
// A scan runs in three phases:
//   - address: the operator's own IPv4 address picks the subnet
//   - discovery: a broadcast ARP sweep maps addresses to MACs
//   - probing: vendor lookup and a TCP connect probe per host
//
// Raw link-layer access (root or CAP_NET_RAW) is needed for discovery.
package lanaudit

import (
	"errors"
	"net"
	"strconv"
	"strings"
	"time"
)

// DiscoveryMethod identifies the phase that produced a log line or error.
type DiscoveryMethod string

const (
	MethodAddress DiscoveryMethod = "address" // local address and subnet
	MethodARP     DiscoveryMethod = "arp"     // link-layer sweep
	MethodVendor  DiscoveryMethod = "vendor"  // MAC vendor lookup (OUI)
	MethodTCP     DiscoveryMethod = "tcp"     // port probe
)

// RecordHeader is the column order of a rendered HostRecord.
var RecordHeader = []string{"IP Address", "MAC Address", "Vendor", "Open Ports"}

// HostRecord describes one discovered host.
type HostRecord struct {
	IP        net.IP
	MAC       net.HardwareAddr
	Vendor    string
	OpenPorts []int
}

// Row renders the record in RecordHeader order.
func (h HostRecord) Row() []string {
	return []string{h.IP.String(), h.MAC.String(), h.Vendor, FormatPorts(h.OpenPorts)}
}

// FormatPorts joins ports with ", ", or returns "None" for an empty list.
func FormatPorts(ports []int) string {
	if len(ports) == 0 {
		return "None"
	}
	parts := make([]string, len(ports))
	for i, p := range ports {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ", ")
}

// ScanResult is the outcome of one Scanner.Run.
type ScanResult struct {
	// RunID correlates log lines of one run.
	RunID        string
	LocalAddress net.IP
	Subnet       *net.IPNet
	// Interface is the capture interface name, empty when none was found.
	Interface string
	Hosts     []HostRecord
	// Warnings collects environment problems that did not stop the run.
	Warnings  []string
	StartedAt time.Time
	Duration  time.Duration

	warnErrs []error
}

// HasWarning reports whether any warning of the run matches target.
func (r *ScanResult) HasWarning(target error) bool {
	for _, err := range r.warnErrs {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// State is a scan phase.
type State int

const (
	StateIdle State = iota
	StateResolvingAddress
	StateDiscovering
	StateProbing
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolvingAddress:
		return "resolving-address"
	case StateDiscovering:
		return "discovering"
	case StateProbing:
		return "probing"
	case StateDone:
		return "done"
	default:
		return "state(" + strconv.Itoa(int(s)) + ")"
	}
}

// DiscoveryError represents an error during discovery.
type DiscoveryError struct {
	Method  DiscoveryMethod
	Message string
	Err     error
}

func (e *DiscoveryError) Error() string {
	if e.Err != nil {
		return string(e.Method) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Method) + ": " + e.Message
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}
