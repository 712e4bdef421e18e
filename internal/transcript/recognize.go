package transcript

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/google/shlex"
)

// InputPlaceholder is replaced with the input path in recognizer commands.
const InputPlaceholder = "{input}"

// Recognize runs an external recognizer and parses its stdout as a
// transcript. The command line is split shell-style; when it has no
// placeholder the input is appended as the last argument.
func Recognize(ctx context.Context, command, input string, timeout time.Duration) (*Transcript, error) {
	args, err := shlex.Split(command)
	if err != nil {
		return nil, fmt.Errorf("parse recognizer command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("no recognizer.command configured")
	}
	replaced := false
	for i, a := range args {
		if strings.Contains(a, InputPlaceholder) {
			args[i] = strings.ReplaceAll(a, InputPlaceholder, input)
			replaced = true
		}
	}
	if !replaced {
		args = append(args, input)
	}

	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(runCtx, args[0], args[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("recognizer %s: %w: %s", args[0], err, msg)
		}
		return nil, fmt.Errorf("recognizer %s: %w", args[0], err)
	}
	return Parse(out)
}
