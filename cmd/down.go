package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ragstack/internal/orchestrator"
	"ragstack/pkg/logging"
)

var downConfigPath string

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Stop all stack services",
	Long: `Stops every enabled service in reverse start order, so dependents go
down before the services they rely on. Containers are stopped and removed;
local processes receive SIGTERM, then SIGKILL after a grace period.`,
	Args: cobra.NoArgs,
	RunE: runDown,
}

func init() {
	rootCmd.AddCommand(downCmd)

	downCmd.Flags().StringVar(&downConfigPath, "config", "", "Path to a config file (overrides the layered lookup)")
}

func runDown(cmd *cobra.Command, args []string) error {
	cfg, err := loadStackConfig(downConfigPath)
	if err != nil {
		return err
	}

	logging.InitForCLI(logLevelFromConfig(cfg, false), os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orch, err := orchestrator.New(cfg)
	if err != nil {
		return err
	}

	return orch.StopAll(ctx)
}
