package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"werdiff/internal/config"
	"werdiff/internal/control"
)

const pollInterval = 100 * time.Millisecond

// readPID parses the pid file written by run.Serve.
func readPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("pid file %s: %w", path, err)
	}
	return pid, nil
}

// alive reports whether a process with pid exists and can be signalled.
func alive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}

func ensureNotRunning(cfg *config.Config) error {
	pid, err := readPID(cfg.Paths.PidPath)
	if err != nil {
		return nil
	}
	if alive(pid) {
		return fmt.Errorf("already running with pid %d", pid)
	}
	// Stale pid file from a crashed server.
	_ = os.Remove(cfg.Paths.PidPath)
	return nil
}

func signalServer(cfg *config.Config, sig syscall.Signal) (int, error) {
	pid, err := readPID(cfg.Paths.PidPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, fmt.Errorf("server not running (no pid file at %s)", cfg.Paths.PidPath)
		}
		return 0, err
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return 0, err
	}
	if err := proc.Signal(sig); err != nil {
		return 0, fmt.Errorf("signal pid %d: %w", pid, err)
	}
	return pid, nil
}

// waitForShutdown polls until the pid file is gone or its process exited.
func waitForShutdown(cfg *config.Config, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		pid, err := readPID(cfg.Paths.PidPath)
		if err != nil {
			return nil // pid file gone
		}
		if !alive(pid) {
			_ = os.Remove(cfg.Paths.PidPath)
			return nil
		}
		time.Sleep(pollInterval)
	}
	return fmt.Errorf("server did not stop within %s", timeout)
}

// waitForHealthy polls /healthz until the server answers or timeout passes.
func waitForHealthy(ctx context.Context, addr string, timeout time.Duration) error {
	client := control.NewClient(addr)
	client.HTTP.Timeout = time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	var lastErr error
	for {
		resp, err := client.Health(ctx)
		if err == nil && resp.OK {
			return nil
		}
		lastErr = err
		select {
		case <-ctx.Done():
			if lastErr == nil {
				lastErr = ctx.Err()
			}
			return fmt.Errorf("server at %s not healthy: %w", addr, lastErr)
		case <-time.After(pollInterval):
		}
	}
}
