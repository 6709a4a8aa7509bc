// Package lanaudit: Log prefix constants for consistent log tagging.
// Consumers may use them in their SetDebugLogger callback.
package lanaudit

// Format follows [Component] or [Component:Subcomponent].
const (
	LogPrefixAudit   = "[Audit]"
	LogPrefixAddress = "[Audit:Address]"
	LogPrefixARP     = "[Audit:ARP]"
	LogPrefixOUI     = "[Audit:OUI]"
	LogPrefixPorts   = "[Audit:Ports]"

	// Debug prefix - use as "[DEBUG][Audit:*]" format
	LogPrefixDebug = "[DEBUG]"
)

// MethodToPrefix returns the log prefix for a given discovery method.
func MethodToPrefix(method DiscoveryMethod) string {
	switch method {
	case MethodAddress:
		return LogPrefixAddress
	case MethodARP:
		return LogPrefixARP
	case MethodVendor:
		return LogPrefixOUI
	case MethodTCP:
		return LogPrefixPorts
	default:
		return LogPrefixAudit
	}
}
