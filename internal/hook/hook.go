package hook

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"werdiff/internal/config"
	"werdiff/internal/wer"

	"github.com/google/shlex"
	"github.com/sirupsen/logrus"
)

// Job is a scored pair handed to the hooks.
type Job struct {
	Name      string
	Result    wer.Result
	Timestamp time.Time
}

// Runner executes result hooks.
type Runner struct {
	cfg      *config.Config
	logger   *logrus.Logger
	hostname string
}

func NewRunner(cfg *config.Config, logger *logrus.Logger) *Runner {
	host, _ := os.Hostname()
	return &Runner{
		cfg:      cfg,
		logger:   logger,
		hostname: host,
	}
}

// Dispatch runs the first hook whose threshold the job reaches. It reports
// whether a hook was run.
func (r *Runner) Dispatch(ctx context.Context, job Job) (bool, error) {
	hk := SelectHookConfig(r.cfg, job.Result.ErrorRate)
	if hk == nil {
		return false, nil
	}
	return true, r.Run(ctx, hk, job)
}

// Run executes hk with the job summary as the last argument.
func (r *Runner) Run(ctx context.Context, hk *config.HookConfig, job Job) error {
	cmdStr := hk.Command
	args := append([]string{}, hk.Args...)
	if len(hk.Args) == 0 {
		parts, err := ParseArgs(hk.Command)
		if err != nil {
			return fmt.Errorf("parse hook command: %w", err)
		}
		if len(parts) == 0 {
			return fmt.Errorf("no hook command configured")
		}
		cmdStr, args = parts[0], parts[1:]
	}

	prefix := strings.ReplaceAll(hk.Prefix, "${hostname}", r.hostname)
	payload := strings.TrimSpace(prefix + Summary(job))
	args = append(args, payload)

	runCtx := ctx
	var cancel context.CancelFunc
	if hk.TimeoutSec > 0 {
		runCtx, cancel = context.WithTimeout(ctx, time.Duration(float64(time.Second)*hk.TimeoutSec))
		defer cancel()
	}
	cmd := exec.CommandContext(runCtx, cmdStr, args...)
	cmd.Env = os.Environ()
	for k, v := range hk.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}
	cmd.Env = append(cmd.Env,
		"WERDIFF_NAME="+job.Name,
		"WERDIFF_WER="+job.Result.ErrorRateString(),
		"WERDIFF_ACCURACY="+job.Result.AccuracyString(),
		"WERDIFF_DISTANCE="+strconv.Itoa(job.Result.EditDistance),
		"WERDIFF_PREFIX="+prefix,
	)

	out, err := cmd.CombinedOutput()
	if len(out) > 0 {
		r.logger.Infof("hook output: %s", strings.TrimSpace(string(out)))
	}
	if err != nil {
		return fmt.Errorf("hook failed: %w", err)
	}
	return nil
}

// Summary is the one-line description passed to hooks.
func Summary(job Job) string {
	res := job.Result
	name := job.Name
	if name == "" {
		name = "pair"
	}
	return fmt.Sprintf("%s: WER %s (S=%d I=%d D=%d over %d words)",
		name, res.ErrorRateString(), res.Substitutions, res.Insertions, res.Deletions, res.ReferenceLength)
}

// ParseArgs splits a command line configured as a single string.
func ParseArgs(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return []string{}, nil
	}
	return shlex.Split(raw)
}
