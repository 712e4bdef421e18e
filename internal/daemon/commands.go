package daemon

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"werdiff/internal/config"
	"werdiff/internal/logging"
	"werdiff/internal/run"

	"github.com/spf13/cobra"
)

const (
	startTimeout = 5 * time.Second
	stopTimeout  = 5 * time.Second
)

// NewStartCmd starts the scoring server in the background and waits until it
// answers /healthz.
func NewStartCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the scoring server in the background",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			addr, _ := cmd.Flags().GetString("addr")
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if err := ensureNotRunning(cfg); err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(cfg.Paths.PidPath), 0o755); err != nil {
				return err
			}
			self, err := os.Executable()
			if err != nil {
				return err
			}
			child := exec.Command(self, "serve", "--config", cfg.Paths.ConfigPath)
			// runtime flags reach the child as env overrides
			child.Env = append(os.Environ(), "WERDIFF_SERVER_ADDR="+cfg.Server.Addr)
			if noMetrics, _ := cmd.Flags().GetBool("no-metrics"); noMetrics {
				child.Env = append(child.Env, "WERDIFF_METRICS_ENABLED=0")
			}
			child.Stdout = os.Stdout
			child.Stderr = os.Stderr
			if err := child.Start(); err != nil {
				return err
			}
			if err := waitForHealthy(cmd.Context(), cfg.Server.Addr, startTimeout); err != nil {
				return fmt.Errorf("started pid %d but %w (see %s)", child.Process.Pid, err, cfg.Paths.LogPath)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "werdiff server started (pid %d) on http://%s\n", child.Process.Pid, cfg.Server.Addr)
			return nil
		},
	}
	cmd.Flags().String("addr", "", "listen address for this run (e.g., 127.0.0.1:9321)")
	cmd.Flags().Bool("no-metrics", false, "disable /metrics for this run")
	return cmd
}

// NewServeCmd runs the scoring server in the foreground (internal).
func NewServeCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:    "serve",
		Short:  "Run the scoring server in the foreground (internal)",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.Server.Addr = addr
			}
			if noMetrics, _ := cmd.Flags().GetBool("no-metrics"); noMetrics {
				cfg.Metrics.Enabled = false
			}
			logger, err := logging.Configure(cfg)
			if err != nil {
				return err
			}
			return run.Serve(cfg, logger)
		},
	}
	cmd.Flags().String("addr", "", "listen address (e.g., 127.0.0.1:9321)")
	cmd.Flags().Bool("no-metrics", false, "disable /metrics")
	return cmd
}

// NewStopCmd stops the background server and waits for it to exit.
func NewStopCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the background scoring server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			pid, err := signalServer(cfg, syscall.SIGTERM)
			if err != nil {
				return err
			}
			if err := waitForShutdown(cfg, stopTimeout); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stopped pid %d\n", pid)
			return nil
		},
	}
}

// NewRestartCmd stops then starts.
func NewRestartCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restart",
		Short: "Restart the background scoring server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			// not running is fine
			if _, err := signalServer(cfg, syscall.SIGTERM); err == nil {
				if err := waitForShutdown(cfg, stopTimeout); err != nil {
					return fmt.Errorf("restart: %w", err)
				}
			}
			start := NewStartCmd(cfgPath)
			start.SetOut(cmd.OutOrStdout())
			start.SetContext(cmd.Context())
			if err := start.Flags().Parse(restartFlags(cmd)); err != nil {
				return err
			}
			return start.RunE(start, args)
		},
	}
	cmd.Flags().String("addr", "", "listen address for the new server")
	cmd.Flags().Bool("no-metrics", false, "disable /metrics for the new server")
	return cmd
}

// restartFlags forwards the flags set on restart to start.
func restartFlags(cmd *cobra.Command) []string {
	var out []string
	if f := cmd.Flags().Lookup("addr"); f.Changed {
		out = append(out, "--addr="+f.Value.String())
	}
	if f := cmd.Flags().Lookup("no-metrics"); f.Changed {
		out = append(out, "--no-metrics="+f.Value.String())
	}
	return out
}
