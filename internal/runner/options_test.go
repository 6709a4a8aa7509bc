package runner

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/marcuoli/go-lanaudit/pkg/lanaudit"
)

func validOptions() *Options {
	return &Options{
		Backend:   lanaudit.BackendPcap,
		Timeout:   500 * time.Millisecond,
		Window:    time.Second,
		Workers:   256,
		OutputDir: ".",
	}
}

func TestParsePorts(t *testing.T) {
	tests := []struct {
		name    string
		in      []string
		want    []int
		wantErr bool
	}{
		{"default", nil, lanaudit.DefaultPorts(), false},
		{"list", []string{"22", " 80", "443 "}, []int{22, 80, 443}, false},
		{"skips blanks", []string{"22", ""}, []int{22}, false},
		{"only blanks", []string{"", " "}, nil, true},
		{"not a number", []string{"ssh"}, nil, true},
		{"zero", []string{"0"}, nil, true},
		{"too large", []string{"65536"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePorts(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parsePorts(%v) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parsePorts(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidateOptions(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr bool
	}{
		{"valid", func(*Options) {}, false},
		{"arping", func(o *Options) { o.Backend = lanaudit.BackendARPing }, false},
		{"unknown backend", func(o *Options) { o.Backend = "raw" }, true},
		{"zero workers", func(o *Options) { o.Workers = 0 }, true},
		{"zero timeout", func(o *Options) { o.Timeout = 0 }, true},
		{"zero window", func(o *Options) { o.Window = 0 }, true},
		{"verbose and silent", func(o *Options) { o.Verbose, o.Silent = true, true }, true},
		{"bad port", func(o *Options) { o.Ports = []string{"x"} }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := validOptions()
			tt.mutate(o)
			if err := o.validateOptions(); (err != nil) != tt.wantErr {
				t.Errorf("validateOptions() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestScanOptions(t *testing.T) {
	o := validOptions()
	o.Ports = []string{"22", "80"}
	o.Interface = "eth0"

	opts, err := o.ScanOptions()
	if err != nil {
		t.Fatalf("ScanOptions() error = %v", err)
	}
	if !reflect.DeepEqual(opts.Ports, []int{22, 80}) {
		t.Errorf("Ports = %v", opts.Ports)
	}
	if opts.Interface != "eth0" || opts.Backend != lanaudit.BackendPcap {
		t.Errorf("opts = %+v", opts)
	}
	if opts.Timeout != 500*time.Millisecond || opts.Window != time.Second || opts.Workers != 256 {
		t.Errorf("timing options not copied: %+v", opts)
	}
}

func TestScanOptions_ConfigOverridesFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lanaudit.yaml")
	content := "ports: [8080]\nbackend: arping\noutput_dir: /tmp/out\nno_csv: true\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	o := validOptions()
	o.Ports = []string{"22"}
	o.Interface = "eth0"
	o.ConfigFile = path

	opts, err := o.ScanOptions()
	if err != nil {
		t.Fatalf("ScanOptions() error = %v", err)
	}
	if !reflect.DeepEqual(opts.Ports, []int{8080}) {
		t.Errorf("Ports = %v, want config value", opts.Ports)
	}
	if opts.Backend != lanaudit.BackendARPing {
		t.Errorf("Backend = %q, want config value", opts.Backend)
	}
	if opts.Interface != "eth0" {
		t.Errorf("Interface = %q, flag value should survive", opts.Interface)
	}
	if o.OutputDir != "/tmp/out" || !o.NoCSV {
		t.Errorf("output options not applied: dir=%q nocsv=%v", o.OutputDir, o.NoCSV)
	}
}

func TestScanOptions_BadConfig(t *testing.T) {
	o := validOptions()
	o.ConfigFile = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := o.ScanOptions(); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ScanOptions() error = %v, want os.ErrNotExist", err)
	}
}

func TestConfigureDebugLog(t *testing.T) {
	defer lanaudit.SetDebugLevel(lanaudit.DebugOff)

	tests := []struct {
		name string
		opts Options
		want lanaudit.DebugLevel
	}{
		{"default", Options{}, lanaudit.DebugOff},
		{"verbose", Options{Verbose: true}, lanaudit.DebugBasic},
		{"debug", Options{Debug: true}, lanaudit.DebugVerbose},
		{"silent wins", Options{Debug: true, Silent: true}, lanaudit.DebugOff},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			configureDebugLog(&opts)
			if got := lanaudit.GetDebugLevel(); got != tt.want {
				t.Errorf("debug level = %v, want %v", got, tt.want)
			}
		})
	}
}
