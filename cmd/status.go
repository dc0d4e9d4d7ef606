package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"ragstack/internal/config"
	"ragstack/internal/orchestrator"
)

var statusConfigPath string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Probe each stack service once and report readiness",
	Long: `Probes every enabled service's readiness endpoint exactly once and
prints the result as a table. Exits non-zero if any service is unready,
so the command doubles as a health gate in scripts.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVar(&statusConfigPath, "config", "", "Path to a config file (overrides the layered lookup)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadStackConfig(statusConfigPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	type statusRow struct {
		name     string
		endpoint string
		ready    bool
		detail   string
	}

	var rows []statusRow
	unready := 0

	for _, svc := range cfg.EnabledServices() {
		probe, err := orchestrator.ProbeForDefinition(svc.Readiness)
		if err != nil {
			return fmt.Errorf("service %s: %w", svc.Name, err)
		}

		row := statusRow{name: svc.Name, endpoint: endpointFor(svc)}
		if err := probe.Check(ctx); err != nil {
			row.detail = err.Error()
			unready++
		} else {
			row.ready = true
		}
		rows = append(rows, row)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SERVICE\tSTATUS\tENDPOINT\tDETAIL")
	for _, row := range rows {
		status := "ready"
		if !row.ready {
			status = "unready"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", row.name, status, row.endpoint, row.detail)
	}
	w.Flush()

	if unready > 0 {
		return fmt.Errorf("%d of %d services unready", unready, len(rows))
	}
	return nil
}

func endpointFor(svc config.ServiceDefinition) string {
	if svc.Readiness.URL != "" {
		return svc.Readiness.URL
	}
	return svc.Readiness.Address
}
