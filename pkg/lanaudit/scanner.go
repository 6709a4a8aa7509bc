package lanaudit

import (
	"context"
	"net"
	"time"

	"github.com/rs/xid"

	"github.com/marcuoli/go-lanaudit/pkg/lanaudit/arp"
	"github.com/marcuoli/go-lanaudit/pkg/lanaudit/network"
	"github.com/marcuoli/go-lanaudit/pkg/lanaudit/oui"
	"github.com/marcuoli/go-lanaudit/pkg/lanaudit/portprobe"
)

// Discovery backends.
const (
	// BackendPcap sends one burst of broadcast frames through libpcap.
	BackendPcap = "pcap"
	// BackendARPing asks each address separately with arping.
	BackendARPing = "arping"
)

// Discoverer maps the addresses of a subnet to hardware addresses.
type Discoverer interface {
	Discover(ctx context.Context, subnet *net.IPNet) ([]arp.Reply, error)
}

// VendorResolver looks up the manufacturer of a hardware address.
type VendorResolver interface {
	Lookup(mac string) (*oui.VendorInfo, error)
}

// PortProber reports the open ports of each address, result[i] for ips[i].
type PortProber interface {
	ProbeAll(ctx context.Context, ips []net.IP) [][]int
}

// Options configures a Scanner. Zero values select the defaults.
type Options struct {
	// Ports to probe on each host.
	Ports []int
	// Timeout per TCP connect attempt.
	Timeout time.Duration
	// Workers caps concurrent connect attempts.
	Workers int
	// Window is how long ARP replies are collected.
	Window time.Duration
	// Interface names the capture interface; its own hardware and IPv4
	// address are used for the requests.
	Interface string
	// Backend is BackendPcap or BackendARPing.
	Backend string
	// OUIPath is the IEEE OUI database file; empty searches the usual locations.
	OUIPath string
	// ProbeTarget is the address used to learn the local address.
	ProbeTarget string
}

// DefaultOptions returns options with every default filled in.
func DefaultOptions() Options {
	return Options{}.withDefaults()
}

func (o Options) withDefaults() Options {
	o.Ports = portprobe.NormalizePorts(o.Ports)
	if len(o.Ports) == 0 {
		o.Ports = portprobe.NormalizePorts(portprobe.DefaultPorts)
	}
	if o.Timeout <= 0 {
		o.Timeout = portprobe.DefaultTimeout
	}
	if o.Workers <= 0 {
		o.Workers = portprobe.DefaultWorkers
	}
	if o.Window <= 0 {
		o.Window = arp.DefaultWindow
	}
	if o.Backend == "" {
		o.Backend = BackendPcap
	}
	if o.ProbeTarget == "" {
		o.ProbeTarget = network.DefaultProbeTarget
	}
	return o
}

// Scanner runs the address, discovery and probing phases.
type Scanner struct {
	Options Options

	// Discoverer overrides the backend chosen from Options.Backend.
	Discoverer Discoverer
	Vendors    VendorResolver
	Prober     PortProber

	// OnState is called on every phase change.
	OnState func(State)

	localAddress    func() net.IP
	interfaceFor    func(net.IP) (*network.Interface, error)
	interfaceByName func(string) (*network.Interface, error)
}

// NewScanner creates a scanner with the default collaborators.
func NewScanner(opts Options) *Scanner {
	opts = opts.withDefaults()
	target := opts.ProbeTarget
	return &Scanner{
		Options:         opts,
		Vendors:         oui.NewResolver(opts.OUIPath),
		Prober:          portprobe.New(opts.Ports, opts.Timeout, opts.Workers),
		localAddress:    func() net.IP { return network.LocalAddressVia(target) },
		interfaceFor:    network.InterfaceFor,
		interfaceByName: network.InterfaceByName,
	}
}

func (s *Scanner) setState(res *ScanResult, st State) {
	runLog(res.RunID).verbose(MethodAddress, "state: %s", st)
	if s.OnState != nil {
		s.OnState(st)
	}
}

// Run scans the local /24 once. Environment problems such as missing
// privileges end up in ScanResult.Warnings and leave Hosts empty; the only
// error returned is the context error, together with the hosts finished so far.
func (s *Scanner) Run(ctx context.Context) (*ScanResult, error) {
	res := &ScanResult{
		RunID:     xid.New().String(),
		Hosts:     []HostRecord{},
		StartedAt: time.Now(),
	}
	defer func() { res.Duration = time.Since(res.StartedAt) }()

	s.setState(res, StateResolvingAddress)
	local := s.resolveLocal()
	res.LocalAddress = local
	res.Subnet = network.SubnetFor(local)
	log := runLog(res.RunID)
	log.basic(MethodAddress, "local address %s, subnet %s", local, res.Subnet)
	if network.IsLoopback(local) {
		res.warn(&DiscoveryError{Method: MethodAddress, Message: "no usable route, scanning loopback subnet " + res.Subnet.String()})
	}
	if err := ctx.Err(); err != nil {
		return s.finish(res), err
	}

	s.setState(res, StateDiscovering)
	replies, err := s.discover(ctx, res)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return s.finish(res), ctxErr
	}
	if err != nil {
		res.warn(err)
	}
	if len(replies) == 0 {
		log.basic(MethodARP, "no hosts answered")
		return s.finish(res), nil
	}

	s.setState(res, StateProbing)
	ips := make([]net.IP, len(replies))
	for i, r := range replies {
		ips[i] = r.IP
	}
	ports := s.probe(ctx, ips)
	for i, r := range replies {
		rec := HostRecord{
			IP:        r.IP,
			MAC:       r.MAC,
			Vendor:    s.vendorOf(log, r.MAC),
			OpenPorts: ports[i],
		}
		log.basic(MethodTCP, "%s %s %q open: %s", rec.IP, rec.MAC, rec.Vendor, FormatPorts(rec.OpenPorts))
		res.Hosts = append(res.Hosts, rec)
	}
	return s.finish(res), ctx.Err()
}

func (s *Scanner) finish(res *ScanResult) *ScanResult {
	s.setState(res, StateDone)
	return res
}

func (r *ScanResult) warn(err error) {
	runLog(r.RunID).basic(MethodAddress, "warning: %v", err)
	r.Warnings = append(r.Warnings, err.Error())
	r.warnErrs = append(r.warnErrs, err)
}

func (s *Scanner) resolveLocal() net.IP {
	var ip net.IP
	if s.localAddress != nil {
		ip = s.localAddress()
	}
	if ip = ip.To4(); ip == nil {
		return network.Loopback
	}
	return ip
}

// discover runs the link-layer sweep and keeps only replies inside the
// run's subnet. Duplicate pairs are kept.
func (s *Scanner) discover(ctx context.Context, res *ScanResult) ([]arp.Reply, error) {
	d, err := s.discoverer(res)
	if err != nil {
		return nil, err
	}
	replies, err := d.Discover(ctx, res.Subnet)
	if err != nil {
		err = &DiscoveryError{Method: MethodARP, Message: "discovery of " + res.Subnet.String() + " failed", Err: err}
	}

	kept := replies[:0:0]
	for _, r := range replies {
		if r.IP.To4() == nil || !res.Subnet.Contains(r.IP) {
			runLog(res.RunID).verbose(MethodARP, "dropping reply from %s outside %s", r.IP, res.Subnet)
			continue
		}
		kept = append(kept, arp.Reply{IP: r.IP.To4(), MAC: r.MAC})
	}
	runLog(res.RunID).basic(MethodARP, "%d hosts answered", len(kept))
	return kept, err
}

func (s *Scanner) discoverer(res *ScanResult) (Discoverer, error) {
	res.Interface = s.Options.Interface
	if s.Discoverer != nil {
		return s.Discoverer, nil
	}

	if s.Options.Backend == BackendARPing {
		p := arp.NewPinger(s.Options.Interface)
		p.Window = s.Options.Window
		return p, nil
	}

	iface, err := s.captureInterface(res.LocalAddress)
	if err != nil {
		return nil, &DiscoveryError{Method: MethodARP, Message: "no capture interface", Err: err}
	}
	res.Interface = iface.Name

	sw := arp.NewSweeper(iface)
	sw.Window = s.Options.Window
	return sw, nil
}

// captureInterface picks the interface frames are sent from. A named
// interface brings its own hardware and source address.
func (s *Scanner) captureInterface(local net.IP) (*network.Interface, error) {
	if name := s.Options.Interface; name != "" {
		byName := s.interfaceByName
		if byName == nil {
			byName = network.InterfaceByName
		}
		return byName(name)
	}
	lookup := s.interfaceFor
	if lookup == nil {
		lookup = network.InterfaceFor
	}
	return lookup(local)
}

func (s *Scanner) probe(ctx context.Context, ips []net.IP) [][]int {
	var ports [][]int
	if s.Prober != nil {
		ports = s.Prober.ProbeAll(ctx, ips)
	}
	if len(ports) != len(ips) {
		ports = make([][]int, len(ips))
	}
	for i := range ports {
		if ports[i] == nil {
			ports[i] = []int{}
		}
	}
	return ports
}

func (s *Scanner) vendorOf(log runLog, mac net.HardwareAddr) string {
	if s.Vendors == nil {
		return oui.Unknown
	}
	info, err := s.Vendors.Lookup(mac.String())
	if err == nil && (info == nil || info.Manufacturer == "") {
		err = oui.ErrNotFound
	}
	if err != nil {
		log.verbose(MethodVendor, "%s: %v", mac, err)
		return oui.Unknown
	}
	return info.Manufacturer
}
