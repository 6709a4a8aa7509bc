// Package lanaudit: Debug logging support.
package lanaudit

import "sync"

// DebugLevel represents the verbosity level for debug logging.
type DebugLevel int

const (
	// DebugOff disables all debug logging.
	DebugOff DebugLevel = iota
	// DebugBasic logs phase transitions, warnings and per-host results.
	DebugBasic
	// DebugVerbose also logs frames and individual probes.
	DebugVerbose
)

// DebugLogger receives debug messages. The method parameter names the scan
// phase that produced the message.
type DebugLogger func(method DiscoveryMethod, format string, args ...interface{})

var (
	debugMu     sync.RWMutex
	debugLogger DebugLogger
	debugLevel  DebugLevel
)

// SetDebugLogger sets the debug callback. Nil disables debug output.
func SetDebugLogger(logger DebugLogger) {
	debugMu.Lock()
	debugLogger = logger
	debugMu.Unlock()
}

// SetDebugLevel sets the debug verbosity level.
func SetDebugLevel(level DebugLevel) {
	debugMu.Lock()
	debugLevel = level
	debugMu.Unlock()
}

// GetDebugLevel returns the current debug level.
func GetDebugLevel() DebugLevel {
	debugMu.RLock()
	defer debugMu.RUnlock()
	return debugLevel
}

// logAt hands the message to the logger when the level is enabled.
func logAt(at DebugLevel, method DiscoveryMethod, format string, args ...interface{}) {
	debugMu.RLock()
	logger, level := debugLogger, debugLevel
	debugMu.RUnlock()

	if logger != nil && level >= at {
		logger(method, format, args...)
	}
}

func debugLog(method DiscoveryMethod, format string, args ...interface{}) {
	logAt(DebugBasic, method, format, args...)
}

func debugLogVerbose(method DiscoveryMethod, format string, args ...interface{}) {
	logAt(DebugVerbose, method, format, args...)
}

// runLog tags messages with the ID of the scan they belong to, so the
// output of overlapping runs can be told apart.
type runLog string

func (id runLog) tag(format string) string {
	if id == "" {
		return format
	}
	return "[" + string(id) + "] " + format
}

func (id runLog) basic(method DiscoveryMethod, format string, args ...interface{}) {
	logAt(DebugBasic, method, id.tag(format), args...)
}

func (id runLog) verbose(method DiscoveryMethod, format string, args ...interface{}) {
	logAt(DebugVerbose, method, id.tag(format), args...)
}
