package runner

import (
	"context"
	"errors"
	"time"

	"github.com/projectdiscovery/gologger"

	"github.com/marcuoli/go-lanaudit/internal/report"
	"github.com/marcuoli/go-lanaudit/pkg/lanaudit"
)

// Scanner is the part of lanaudit.Scanner the runner drives.
type Scanner interface {
	Run(ctx context.Context) (*lanaudit.ScanResult, error)
}

// Runner contains the internal logic of the program
type Runner struct {
	options *Options
	scanner Scanner
	now     func() time.Time
}

// NewRunner instance
func NewRunner(options *Options) (*Runner, error) {
	opts, err := options.ScanOptions()
	if err != nil {
		return nil, err
	}
	return &Runner{
		options: options,
		scanner: lanaudit.NewScanner(opts),
		now:     time.Now,
	}, nil
}

// Run performs one scan, prints the table and saves the CSV file.
// Only a failure to save results is returned as an error.
func (r *Runner) Run(ctx context.Context) error {
	res, err := r.scanner.Run(ctx)
	if err != nil {
		if res == nil {
			return err
		}
		gologger.Warning().Msgf("Scan interrupted (%s), results are partial\n", err)
	}

	for _, w := range res.Warnings {
		gologger.Warning().Msgf("%s\n", w)
	}
	if res.HasWarning(lanaudit.ErrPermission) {
		gologger.Error().Msgf("Make sure you run lanaudit with administrative/root privileges (e.g. sudo lanaudit) or grant it CAP_NET_RAW\n")
	}
	gologger.Info().Msgf("[%s] Scanned %s from %s\n", res.RunID, res.Subnet, res.LocalAddress)

	if len(res.Hosts) == 0 {
		gologger.Info().Msgf("No devices found to save results.\n")
		return nil
	}

	gologger.Silent().Msgf("%s\n%s\n", report.Summary(res), report.Table(res.Hosts))

	if r.options.NoCSV {
		return nil
	}
	filename, err := report.SaveCSV(r.options.OutputDir, res.Hosts, r.now())
	if err != nil {
		if errors.Is(err, report.ErrNoHosts) {
			return nil
		}
		return err
	}
	gologger.Info().Msgf("Scan results saved to %s\n", filename)
	return nil
}
