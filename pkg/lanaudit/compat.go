// Package lanaudit: Re-exports of subpackage types so callers of the
// top-level package rarely need to import the subpackages directly.
package lanaudit

import (
	"github.com/marcuoli/go-lanaudit/pkg/lanaudit/arp"
	"github.com/marcuoli/go-lanaudit/pkg/lanaudit/network"
	"github.com/marcuoli/go-lanaudit/pkg/lanaudit/oui"
	"github.com/marcuoli/go-lanaudit/pkg/lanaudit/portprobe"
)

// =============================================================================
// Discovery
// =============================================================================

// Reply is an alias for arp.Reply.
type Reply = arp.Reply

// ErrPermission is returned (wrapped) when raw link-layer access is denied.
var ErrPermission = arp.ErrPermission

// ErrNoInterface is returned (wrapped) when the capture interface is missing.
var ErrNoInterface = arp.ErrNoInterface

// =============================================================================
// Vendor lookup
// =============================================================================

// VendorInfo is an alias for oui.VendorInfo.
type VendorInfo = oui.VendorInfo

// UnknownVendor is the vendor of hosts whose OUI could not be resolved.
const UnknownVendor = oui.Unknown

// =============================================================================
// Port probing
// =============================================================================

// DefaultPorts returns a copy of the ports probed when Options.Ports is empty.
func DefaultPorts() []int {
	return append([]int(nil), portprobe.DefaultPorts...)
}

// =============================================================================
// Setup debug logging wiring for subpackages
// =============================================================================

func init() {
	network.DebugLogger = func(format string, args ...interface{}) {
		debugLog(MethodAddress, format, args...)
	}
	arp.DebugLogger = func(format string, args ...interface{}) {
		debugLog(MethodARP, format, args...)
	}
	oui.DebugLogger = func(format string, args ...interface{}) {
		debugLog(MethodVendor, format, args...)
	}
	// One line per open port.
	portprobe.DebugLogger = func(format string, args ...interface{}) {
		debugLogVerbose(MethodTCP, format, args...)
	}
}
