package runner

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/projectdiscovery/goflags"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/gologger/formatter"
	"github.com/projectdiscovery/gologger/levels"

	"github.com/marcuoli/go-lanaudit/internal/config"
	"github.com/marcuoli/go-lanaudit/pkg/lanaudit"
	"github.com/marcuoli/go-lanaudit/pkg/lanaudit/arp"
	"github.com/marcuoli/go-lanaudit/pkg/lanaudit/portprobe"
)

// Options contains the command line options of lanaudit.
type Options struct {
	ConfigFile string

	Ports       goflags.StringSlice
	Timeout     time.Duration
	Workers     int
	Window      time.Duration
	Interface   string
	Backend     string
	OUIPath     string
	ProbeTarget string

	OutputDir string
	NoCSV     bool

	Verbose bool
	Debug   bool
	Silent  bool
	NoColor bool
	Version bool
}

// ParseOptions parses the command line flags provided by a user
func ParseOptions() *Options {
	options := &Options{}
	flagSet := goflags.NewFlagSet()

	flagSet.SetDescription(`lanaudit discovers the hosts of the local /24 with an ARP sweep and probes common TCP ports on each of them`)

	flagSet.CreateGroup("config", "Config",
		flagSet.StringVar(&options.ConfigFile, "config", "", "yaml configuration file (values override flags)"),
		flagSet.StringVarP(&options.OUIPath, "oui-db", "oui", "", "IEEE OUI database file (default: system ieee-data locations)"),
	)

	flagSet.CreateGroup("discovery", "Discovery",
		flagSet.StringVarP(&options.Backend, "backend", "b", lanaudit.BackendPcap, "discovery backend (pcap, arping)"),
		flagSet.StringVarP(&options.Interface, "interface", "i", "", "capture interface (default: the one owning the local address)"),
		flagSet.DurationVarP(&options.Window, "arp-window", "aw", arp.DefaultWindow, "time to collect ARP replies"),
		flagSet.StringVarP(&options.ProbeTarget, "probe-target", "pt", "", "address used to learn the local address (default 8.8.8.8:80)"),
	)

	flagSet.CreateGroup("probe", "Port Probe",
		flagSet.StringSliceVarP(&options.Ports, "ports", "p", nil, "TCP ports to probe (comma separated)", goflags.CommaSeparatedStringSliceOptions),
		flagSet.DurationVarP(&options.Timeout, "timeout", "t", portprobe.DefaultTimeout, "connect timeout per port"),
		flagSet.IntVarP(&options.Workers, "workers", "w", portprobe.DefaultWorkers, "maximum concurrent connect attempts"),
	)

	flagSet.CreateGroup("output", "Output",
		flagSet.StringVarP(&options.OutputDir, "output-dir", "o", ".", "directory for the CSV results file"),
		flagSet.BoolVarP(&options.NoCSV, "no-csv", "ncsv", false, "do not write the CSV results file"),
	)

	flagSet.CreateGroup("debug", "Debug",
		flagSet.BoolVar(&options.Version, "version", false, "show version of the project"),
		flagSet.BoolVarP(&options.Verbose, "verbose", "v", false, "show verbose output"),
		flagSet.BoolVar(&options.Debug, "debug", false, "show debug output (frames, every probe)"),
		flagSet.BoolVar(&options.Silent, "silent", false, "show only the results table"),
		flagSet.BoolVarP(&options.NoColor, "no-color", "nc", false, "disable output content coloring (ANSI escape codes)"),
	)

	if err := flagSet.Parse(); err != nil {
		gologger.Fatal().Msgf("%s\n", err)
	}

	options.configureOutput()

	if options.Version {
		gologger.Info().Msgf("Current Version: %s\n", lanaudit.Version)
		os.Exit(0)
	}

	if err := options.validateOptions(); err != nil {
		gologger.Fatal().Msgf("Program exiting: %s\n", err)
	}

	return options
}

// configureOutput configures the output on the screen
func (options *Options) configureOutput() {
	if options.Verbose {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelVerbose)
	}
	if options.Debug {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelDebug)
	}
	if options.NoColor {
		gologger.DefaultLogger.SetFormatter(formatter.NewCLI(true))
	}
	if options.Silent {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelSilent)
	}
	configureDebugLog(options)
}

// configureDebugLog routes library debug output into gologger.
func configureDebugLog(options *Options) {
	switch {
	case options.Silent:
		lanaudit.SetDebugLevel(lanaudit.DebugOff)
	case options.Debug:
		lanaudit.SetDebugLevel(lanaudit.DebugVerbose)
	case options.Verbose:
		lanaudit.SetDebugLevel(lanaudit.DebugBasic)
	default:
		lanaudit.SetDebugLevel(lanaudit.DebugOff)
	}
	lanaudit.SetDebugLogger(func(method lanaudit.DiscoveryMethod, format string, args ...interface{}) {
		msg := lanaudit.MethodToPrefix(method) + " " + fmt.Sprintf(format, args...)
		if options.Debug {
			gologger.Debug().Msg(msg)
			return
		}
		gologger.Verbose().Msg(msg)
	})
}

var errNoPorts = errors.New("no ports to probe")

func (options *Options) validateOptions() error {
	switch options.Backend {
	case lanaudit.BackendPcap, lanaudit.BackendARPing:
	default:
		return fmt.Errorf("unknown backend %q (use %s or %s)", options.Backend, lanaudit.BackendPcap, lanaudit.BackendARPing)
	}
	if options.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", options.Workers)
	}
	if options.Timeout <= 0 || options.Window <= 0 {
		return errors.New("timeout and arp-window must be positive")
	}
	if options.Verbose && options.Silent {
		return errors.New("both verbose and silent mode specified")
	}
	if _, err := parsePorts(options.Ports); err != nil {
		return err
	}
	return nil
}

// parsePorts converts the -ports values. Nil input selects the default set.
func parsePorts(values []string) ([]int, error) {
	if len(values) == 0 {
		return lanaudit.DefaultPorts(), nil
	}
	ports := make([]int, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		p, err := strconv.Atoi(v)
		if err != nil || p <= 0 || p > 65535 {
			return nil, fmt.Errorf("invalid port: %q", v)
		}
		ports = append(ports, p)
	}
	if len(ports) == 0 {
		return nil, errNoPorts
	}
	return ports, nil
}

// ScanOptions builds the library options, applying the config file last.
func (options *Options) ScanOptions() (lanaudit.Options, error) {
	ports, err := parsePorts(options.Ports)
	if err != nil {
		return lanaudit.Options{}, err
	}
	opts := lanaudit.Options{
		Ports:       ports,
		Timeout:     options.Timeout,
		Workers:     options.Workers,
		Window:      options.Window,
		Interface:   options.Interface,
		Backend:     options.Backend,
		OUIPath:     options.OUIPath,
		ProbeTarget: options.ProbeTarget,
	}
	if options.ConfigFile == "" {
		return opts, nil
	}

	cfg, err := config.LoadConfig(options.ConfigFile)
	if err != nil {
		return lanaudit.Options{}, fmt.Errorf("could not read config: %w", err)
	}
	cfg.Apply(&opts)
	if cfg.OutputDir != "" {
		options.OutputDir = cfg.OutputDir
	}
	if cfg.NoCSV {
		options.NoCSV = true
	}
	return opts, nil
}
