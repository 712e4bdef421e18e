package doctor

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"werdiff/internal/config"
	"werdiff/internal/hook"
)

// Result represents a diagnostic check.
type Result struct {
	Name   string
	Pass   bool
	Detail string
}

// Run executes doctor checks.
func Run(cfg *config.Config) []Result {
	results := []Result{
		checkFile("config path", cfg.Paths.ConfigPath),
		checkWritableDir("state dir", cfg.Paths.StateDir),
		checkRecognizer(cfg.Recognizer.Command),
	}
	for i, hk := range cfg.Hooks {
		results = append(results, checkHook(fmt.Sprintf("hooks[%d]", i), hk))
	}
	return results
}

func checkFile(label, path string) Result {
	if path == "" {
		return Result{Name: label, Pass: false, Detail: "not set"}
	}
	if _, err := os.Stat(os.ExpandEnv(path)); err != nil {
		return Result{Name: label, Pass: false, Detail: err.Error()}
	}
	return Result{Name: label, Pass: true, Detail: path}
}

func checkWritableDir(label, dir string) Result {
	if dir == "" {
		return Result{Name: label, Pass: false, Detail: "not set"}
	}
	dir = os.ExpandEnv(dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{Name: label, Pass: false, Detail: err.Error()}
	}
	f, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		return Result{Name: label, Pass: false, Detail: "not writable: " + err.Error()}
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return Result{Name: label, Pass: true, Detail: dir}
}

// checkRecognizer passes when no recognizer is configured; --recognize is optional.
func checkRecognizer(command string) Result {
	label := "recognizer"
	if strings.TrimSpace(command) == "" {
		return Result{Name: label, Pass: true, Detail: "not configured"}
	}
	parts, err := hook.ParseArgs(command)
	if err != nil || len(parts) == 0 {
		return Result{Name: label, Pass: false, Detail: fmt.Sprintf("cannot parse %q", command)}
	}
	return checkExecutable(label, parts[0])
}

func checkHook(label string, hk config.HookConfig) Result {
	cmd := hk.Command
	if len(hk.Args) == 0 {
		parts, err := hook.ParseArgs(hk.Command)
		if err != nil || len(parts) == 0 {
			return Result{Name: label, Pass: false, Detail: fmt.Sprintf("cannot parse %q", hk.Command)}
		}
		cmd = parts[0]
	}
	return checkExecutable(label, cmd)
}

func checkExecutable(label, cmd string) Result {
	if cmd == "" {
		return Result{Name: label, Pass: false, Detail: "not set"}
	}
	path := os.ExpandEnv(cmd)
	// If contains a path separator, treat as explicit path.
	if strings.ContainsRune(path, filepath.Separator) || strings.Contains(path, "/") {
		info, err := os.Stat(path)
		if err != nil {
			return Result{Name: label, Pass: false, Detail: err.Error()}
		}
		if info.IsDir() {
			return Result{Name: label, Pass: false, Detail: "is a directory; point the command at an executable file"}
		}
		if info.Mode().Perm()&0o111 == 0 {
			return Result{Name: label, Pass: false, Detail: "not executable; chmod +x or choose another command"}
		}
		return Result{Name: label, Pass: true, Detail: path}
	}
	// Else search PATH.
	resolved, err := exec.LookPath(path)
	if err != nil {
		return Result{Name: label, Pass: false, Detail: err.Error()}
	}
	return Result{Name: label, Pass: true, Detail: resolved}
}
