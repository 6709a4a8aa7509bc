// Package report renders scan results as a CSV file and a terminal table.
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/marcuoli/go-lanaudit/pkg/lanaudit"
)

// ErrNoHosts is returned by SaveCSV when there is nothing to save.
var ErrNoHosts = errors.New("no devices found to save results")

var (
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
)

// Filename returns the CSV name for a scan finished at t.
func Filename(t time.Time) string {
	return fmt.Sprintf("network_scan_results_%s.csv", t.Format("20060102_150405"))
}

// WriteCSV writes a header row and one row per host.
func WriteCSV(w io.Writer, hosts []lanaudit.HostRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(lanaudit.RecordHeader); err != nil {
		return err
	}
	for _, h := range hosts {
		if err := cw.Write(h.Row()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes hosts to a timestamped file in dir and returns its path.
// No file is created for an empty host list.
func SaveCSV(dir string, hosts []lanaudit.HostRecord, now time.Time) (string, error) {
	if len(hosts) == 0 {
		return "", ErrNoHosts
	}
	if dir == "" {
		dir = "."
	}
	filename := filepath.Join(dir, Filename(now))

	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("save results: %w", err)
	}
	if err := WriteCSV(file, hosts); err != nil {
		file.Close()
		return "", fmt.Errorf("save results: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("save results: %w", err)
	}
	return filename, nil
}

// Table renders hosts as a bordered table.
func Table(hosts []lanaudit.HostRecord) string {
	rows := make([][]string, len(hosts))
	for i, h := range hosts {
		rows[i] = h.Row()
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(lanaudit.RecordHeader...).
		Rows(rows...)
	return t.String()
}

// Summary renders the title line of a finished scan.
func Summary(res *lanaudit.ScanResult) string {
	iface := res.Interface
	if iface == "" {
		iface = "-"
	}
	return titleStyle.Render(fmt.Sprintf("%s on %s: %d devices in %s",
		res.Subnet, iface, len(res.Hosts), res.Duration.Round(time.Millisecond)))
}
