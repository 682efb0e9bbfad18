package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/tiersim/tiersim/sim"
)

// writeReport prints the run report as indented JSON under a header.
func writeReport(w io.Writer, report *sim.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if _, err := fmt.Fprintln(w, "=== Simulation Metrics ==="); err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// writeMetricsFile dumps the exporter's registry in the Prometheus text format.
func writeMetricsFile(path string, exp *sim.Exporter) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating metrics file: %w", err)
	}
	if err := exp.WriteText(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// writeProfiles prints one line per profile, marking the default.
func writeProfiles(w io.Writer, set *sim.ProfileSet) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCLASSIFIER\tTIERS\tRECORDS\tDESCRIPTION")
	for _, name := range set.Names() {
		p := set.Profiles[name]
		marker := ""
		if name == set.Default {
			marker = " (default)"
		}
		fmt.Fprintf(tw, "%s%s\t%s\t%d\t%d\t%s\n", name, marker, p.Classifier, len(p.Fleet.Tiers), len(p.SelectedRecords()), p.Description)
	}
	return tw.Flush()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
