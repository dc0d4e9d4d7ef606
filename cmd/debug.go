package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ragstack/internal/diagnose"
)

var (
	debugConfigPath string
	debugRetries    int
	debugDelay      time.Duration
	debugTimeout    time.Duration
)

// debugCmd represents the debug command
var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Run connectivity diagnostics against the stack's endpoints",
	Long: `Probes every configured readiness endpoint with a short retry loop and
prints a per-endpoint report followed by a summary.

Unlike 'ragstack up', a failing endpoint does not abort the run: the point
is a complete picture of which services are reachable, which is useful
when the stack came up but something still misbehaves (wrong port mapping,
container networking, a service that crashed after starting).

Exits non-zero if any endpoint stays unreachable.`,
	Args: cobra.NoArgs,
	RunE: runDebug,
}

func init() {
	rootCmd.AddCommand(debugCmd)

	debugCmd.Flags().StringVar(&debugConfigPath, "config", "", "Path to a config file (overrides the layered lookup)")
	debugCmd.Flags().IntVar(&debugRetries, "retries", diagnose.DefaultMaxRetries, "Attempts per endpoint")
	debugCmd.Flags().DurationVar(&debugDelay, "delay", diagnose.DefaultDelay, "Delay between attempts")
	debugCmd.Flags().DurationVar(&debugTimeout, "timeout", diagnose.DefaultTimeout, "Per-request timeout")
}

func runDebug(cmd *cobra.Command, args []string) error {
	cfg, err := loadStackConfig(debugConfigPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	targets := diagnose.TargetsFromConfig(cfg)
	if len(targets) == 0 {
		return fmt.Errorf("no HTTP readiness endpoints configured")
	}
	for i := range targets {
		targets[i].MaxRetries = debugRetries
		targets[i].Delay = debugDelay
		targets[i].Timeout = debugTimeout
	}

	report := diagnose.Run(ctx, targets, os.Stdout)
	if !report.AllOK() {
		return fmt.Errorf("some endpoints are unreachable")
	}

	fmt.Println("\nAll connections successful.")
	return nil
}
