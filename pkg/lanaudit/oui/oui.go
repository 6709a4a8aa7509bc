// Package oui resolves MAC addresses to vendor names using the IEEE OUI
// database. Lookups are cached per OUI prefix for the life of the process.
package oui

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/klauspost/oui"
	"github.com/projectdiscovery/gcache"
)

// Unknown is the vendor reported when a lookup fails for any reason.
const Unknown = "Unknown"

// DefaultCacheSize bounds the number of cached prefixes.
const DefaultCacheSize = 4096

// Errors
var (
	// ErrInvalidMAC is returned for addresses that are not 6-byte MACs.
	ErrInvalidMAC = errors.New("invalid MAC address format")
	// ErrNotFound is returned when the prefix is not in the database.
	ErrNotFound = errors.New("vendor not found in OUI database")
	// ErrUnavailable is returned when the database cannot be loaded or queried.
	ErrUnavailable = errors.New("OUI database unavailable")
)

// DefaultPaths lists where distributions commonly install oui.txt.
var DefaultPaths = []string{
	"/usr/share/ieee-data/oui.txt",
	"/var/lib/ieee-data/oui.txt",
	"/usr/share/misc/oui.txt",
	"/usr/local/share/ieee-data/oui.txt",
}

// DebugLogger is a callback for debug logging.
// Set this to receive debug messages from OUI operations.
var DebugLogger func(format string, args ...interface{})

func debugLog(format string, args ...interface{}) {
	if DebugLogger != nil {
		DebugLogger(format, args...)
	}
}

// Database is the query side of an OUI database.
// oui.OuiDB from github.com/klauspost/oui satisfies it.
type Database interface {
	Query(prefix string) (*oui.Entry, error)
}

// VendorInfo contains information about a MAC address vendor.
type VendorInfo struct {
	Manufacturer string
	Address      []string
	Country      string
	Prefix       string
}

// Resolver looks up vendors and caches results by OUI prefix.
// It is safe for concurrent use.
type Resolver struct {
	open func(path string) (Database, error)

	mu   sync.RWMutex
	path string

	dbOnce sync.Once
	db     Database
	dbErr  error
	loaded atomic.Bool

	cache gcache.Cache[string, *VendorInfo]
}

// NewResolver creates a resolver reading the database at path.
// An empty path searches DefaultPaths on first use.
func NewResolver(path string) *Resolver {
	return newResolver(path, openStatic)
}

// NewResolverWithDatabase creates a resolver over an already opened
// database. DefaultPaths are never searched.
func NewResolverWithDatabase(db Database) *Resolver {
	r := newResolver("", nil)
	r.dbOnce.Do(func() {
		r.db = db
		r.loaded.Store(true)
	})
	return r
}

func newResolver(path string, open func(string) (Database, error)) *Resolver {
	r := &Resolver{path: path, open: open}
	r.cache = gcache.New[string, *VendorInfo](DefaultCacheSize).
		LRU().
		LoaderFunc(r.load).
		Build()
	return r
}

func openStatic(path string) (Database, error) {
	db, err := oui.OpenStaticFile(path)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// NewResolverFromFile checks that path exists and returns a resolver reading it.
func NewResolverFromFile(path string) (*Resolver, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("OUI database file not found: %s", path)
	}
	return NewResolver(path), nil
}

// Path returns the database path in use, empty until a default was found.
func (r *Resolver) Path() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.path
}

// IsLoaded returns true if the OUI database has been loaded.
func (r *Resolver) IsLoaded() bool {
	return r.loaded.Load()
}

func (r *Resolver) database() error {
	r.dbOnce.Do(func() {
		path := r.Path()
		if path == "" {
			path = findDefault()
			r.mu.Lock()
			r.path = path
			r.mu.Unlock()
		}
		if path == "" {
			r.dbErr = fmt.Errorf("%w: no oui.txt in %s", ErrUnavailable, strings.Join(DefaultPaths, ", "))
			debugLog("%v", r.dbErr)
			return
		}
		debugLog("Loading OUI database from: %s", path)
		db, err := r.open(path)
		if err != nil {
			r.dbErr = fmt.Errorf("%w: open %s: %v", ErrUnavailable, path, err)
			debugLog("%v", r.dbErr)
			return
		}
		r.db = db
		r.loaded.Store(true)
		debugLog("OUI database loaded successfully")
	})
	return r.dbErr
}

func findDefault() string {
	for _, p := range DefaultPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// load runs on a cache miss. Unknown prefixes are cached with an empty
// Manufacturer so the database is asked once per prefix; an unavailable
// database is not cached.
func (r *Resolver) load(prefix string) (*VendorInfo, error) {
	if err := r.database(); err != nil {
		return nil, err
	}
	entry, err := r.db.Query(prefix + ":00:00:00")
	if err != nil {
		if errors.Is(err, oui.ErrNotFound) {
			debugLog("%s: vendor not found in database", prefix)
			return &VendorInfo{Prefix: prefix}, nil
		}
		return nil, fmt.Errorf("%w: query %s: %v", ErrUnavailable, prefix, err)
	}
	if entry == nil {
		return &VendorInfo{Prefix: prefix}, nil
	}

	vendor := &VendorInfo{
		Manufacturer: entry.Manufacturer,
		Prefix:       prefix,
	}
	if len(entry.Address) > 0 {
		vendor.Address = entry.Address
	}
	if entry.Country != "" {
		vendor.Country = entry.Country
	}
	debugLog("%s -> %s", prefix, vendor.Manufacturer)
	return vendor, nil
}

// Lookup returns the vendor for mac. The MAC address can be in various
// formats: "00:11:22:33:44:55", "00-11-22-33-44-55", "001122334455".
func (r *Resolver) Lookup(mac string) (*VendorInfo, error) {
	normalized := NormalizeMAC(mac)
	if normalized == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMAC, mac)
	}
	vendor, err := r.cache.Get(Prefix(normalized))
	if err != nil {
		return nil, err
	}
	if vendor == nil || vendor.Manufacturer == "" {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, normalized)
	}
	return vendor, nil
}

// LookupHardwareAddr is Lookup for a parsed hardware address.
func (r *Resolver) LookupHardwareAddr(mac net.HardwareAddr) (*VendorInfo, error) {
	if len(mac) != 6 {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidMAC, len(mac))
	}
	return r.Lookup(mac.String())
}

// VendorOf returns the manufacturer name, or Unknown on any failure.
func (r *Resolver) VendorOf(mac string) string {
	vendor, err := r.Lookup(mac)
	if err != nil {
		return Unknown
	}
	return vendor.Manufacturer
}

// Prefix returns the first three octets of a normalized MAC ("aa:bb:cc").
func Prefix(normalized string) string {
	if len(normalized) < 8 {
		return normalized
	}
	return normalized[:8]
}

// NormalizeMAC normalizes various MAC address formats to standard format.
// Returns empty string if invalid.
func NormalizeMAC(mac string) string {
	mac = strings.ToLower(mac)
	mac = strings.ReplaceAll(mac, "-", "")
	mac = strings.ReplaceAll(mac, ":", "")
	mac = strings.ReplaceAll(mac, ".", "")

	// Must be 12 hex characters for a full MAC
	if len(mac) != 12 {
		return ""
	}

	for _, c := range mac {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return ""
		}
	}

	return fmt.Sprintf("%s:%s:%s:%s:%s:%s",
		mac[0:2], mac[2:4], mac[4:6], mac[6:8], mac[8:10], mac[10:12])
}
