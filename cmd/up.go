package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"ragstack/internal/config"
	"ragstack/internal/orchestrator"
	"ragstack/internal/tui"
	"ragstack/pkg/logging"
)

// upPlain disables the TUI dashboard. Plain mode prints progress as log
// lines and exits as soon as the run completes, which suits scripts and CI.
var upPlain bool

// upConfigPath overrides the layered config lookup with an explicit file.
var upConfigPath string

// upDebug enables verbose logging across the bring-up.
var upDebug bool

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Start all stack services in dependency order",
	Long: `Starts every enabled service in the configured order. Each service is
started only after all services before it have reported ready; readiness is
established by polling the service's probe with a bounded retry budget
(default: 30 attempts, 2s apart).

The first service that exhausts its budget aborts the bring-up with a
non-zero exit code. Services that were already confirmed ready are left
running; use 'ragstack down' to stop them.

By default a dashboard shows per-service progress and keeps monitoring
health after the bring-up until you quit. Use --plain for script-friendly
log output that exits when the run completes.`,
	Args: cobra.NoArgs,
	RunE: runUp,
}

func init() {
	rootCmd.AddCommand(upCmd)

	upCmd.Flags().BoolVar(&upPlain, "plain", false, "Disable the dashboard; print plain log output")
	upCmd.Flags().StringVar(&upConfigPath, "config", "", "Path to a config file (overrides the layered lookup)")
	upCmd.Flags().BoolVar(&upDebug, "debug", false, "Enable verbose logging")
}

func runUp(cmd *cobra.Command, args []string) error {
	cfg, err := loadStackConfig(upConfigPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orch, err := orchestrator.New(cfg)
	if err != nil {
		return err
	}

	if upPlain {
		logging.InitForCLI(logLevelFromConfig(cfg, upDebug), os.Stderr)
		result := orch.Run(ctx)
		if !result.AllReady {
			return result.Err()
		}
		fmt.Println("All services ready.")
		return nil
	}

	return runUpTUI(ctx, cfg, orch)
}

// runUpTUI drives the orchestration under the bubbletea dashboard. The run
// itself executes in a goroutine; the dashboard consumes its events. After
// a successful bring-up the orchestrator keeps re-probing services so the
// dashboard stays truthful until the user quits.
func runUpTUI(ctx context.Context, cfg config.StackConfig, orch *orchestrator.Orchestrator) error {
	logCh := logging.InitForTUI(logLevelFromConfig(cfg, upDebug))
	defer logging.CloseTUIChannel()

	events := orch.Subscribe()
	model := tui.New(orch.Specs(), serviceEndpoints(cfg), events, logCh)
	program := tea.NewProgram(model)

	monitorCtx, cancelMonitor := context.WithCancel(ctx)
	defer cancelMonitor()

	resultCh := make(chan orchestrator.RunResult, 1)
	go func() {
		result := orch.Run(ctx)
		resultCh <- result
		program.Send(tui.RunDoneMsg{Result: result})
		if result.AllReady {
			orch.StartHealthMonitoring(monitorCtx, 0)
		}
	}()

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("dashboard error: %w", err)
	}

	select {
	case result := <-resultCh:
		if !result.AllReady {
			return result.Err()
		}
		return nil
	default:
		// Dashboard quit before the run finished; the signal context is
		// cancelled on our way out, which unwinds the run.
		return nil
	}
}

// loadStackConfig loads either the explicit file or the layered
// default/user/project configuration.
func loadStackConfig(path string) (config.StackConfig, error) {
	if path != "" {
		return config.LoadConfigFromPath(path)
	}
	return config.LoadConfig()
}

// logLevelFromConfig maps the configured log level, with --debug winning.
func logLevelFromConfig(cfg config.StackConfig, debug bool) logging.LogLevel {
	if debug {
		return logging.LevelDebug
	}
	switch cfg.GlobalSettings.LogLevel {
	case "debug":
		return logging.LevelDebug
	case "warn":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

// serviceEndpoints maps each enabled service to its probe endpoint for
// display in the dashboard.
func serviceEndpoints(cfg config.StackConfig) map[string]string {
	endpoints := make(map[string]string)
	for _, svc := range cfg.EnabledServices() {
		if svc.Readiness.URL != "" {
			endpoints[svc.Name] = svc.Readiness.URL
		} else if svc.Readiness.Address != "" {
			endpoints[svc.Name] = svc.Readiness.Address
		}
	}
	return endpoints
}
