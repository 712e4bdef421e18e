package main

import (
	"fmt"
	"os"

	"werdiff/internal/control"
	"werdiff/internal/daemon"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

func main() {
	// .env is optional; values already in the environment win.
	_ = godotenv.Load()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	root := &cobra.Command{
		Use:   "werdiff",
		Short: "werdiff - word error rate with an aligned diff",
		Long: `werdiff scores a recognizer hypothesis against a reference transcript. It
prints the word-level alignment (REFERENCE / HYPOTHESIS / EVALUATION rows with
S, I and D markers) followed by the word error rate and accuracy.

Key commands:
  score <ref> <hyp>         Aligned diff + WER (text, json or yaml)
  cer <ref> <hyp>           Character error rate
  batch <manifest>          Score many pairs, report corpus WER
  start|stop|restart        Background scoring server (HTTP)
  status [--json]|health    Query the server
  doctor|config show|init   Check setup / manage config
  tail-log|test-hook <wer>  Log tail, manual hook

Env overrides: WERDIFF_SERVER_ADDR, WERDIFF_METRICS_ENABLED,
               WERDIFF_LOG_LEVEL/FORMAT, WERDIFF_OUTPUT_FORMAT,
               WERDIFF_LOWERCASE`,
		Example: `  werdiff score ref.txt hyp.json
  werdiff score --text "he is here" "she is"
  werdiff score --format yaml --lowercase --strip-punct ref.txt hyp.txt
  werdiff batch eval/pairs.toml --workers 8
  werdiff start --addr 127.0.0.1:9321
  curl -s localhost:9321/v1/score -d '{"reference":"a b","hypothesis":"a"}'`,
		DisableFlagsInUseLine: true,
		SilenceUsage:          true,
		SilenceErrors:         true,
	}

	root.Version = version
	root.SetVersionTemplate("werdiff v{{.Version}}\n")

	cfgPath := root.PersistentFlags().StringP("config", "c", "", "Path to config file (TOML). Defaults to ~/.config/werdiff/config.toml")
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(control.NewScoreCmd(cfgPath))
	root.AddCommand(control.NewCERCmd(cfgPath))
	root.AddCommand(control.NewBatchCmd(cfgPath))
	root.AddCommand(daemon.NewStartCmd(cfgPath))
	root.AddCommand(daemon.NewStopCmd(cfgPath))
	root.AddCommand(daemon.NewRestartCmd(cfgPath))
	root.AddCommand(control.NewStatusCmd(cfgPath))
	root.AddCommand(control.NewHealthCmd(cfgPath))
	root.AddCommand(control.NewTailLogCmd(cfgPath))
	root.AddCommand(control.NewTestHookCmd(cfgPath))
	root.AddCommand(control.NewDoctorCmd(cfgPath))
	root.AddCommand(control.NewConfigCmd(cfgPath))

	// Hidden internal serve command used by start.
	root.AddCommand(daemon.NewServeCmd(cfgPath))

	applyColorHelp(root)

	return root.Execute()
}

func applyColorHelp(root *cobra.Command) {
	const (
		boldBlue = "\033[1;34m"
		green    = "\033[32m"
		bold     = "\033[1m"
		dim      = "\033[2m"
		reset    = "\033[0m"
	)
	defaultHelp := root.HelpFunc()
	root.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		// Subcommands keep cobra's help with their flags.
		if cmd != root {
			defaultHelp(cmd, args)
			return
		}
		out := cmd.OutOrStdout()
		write := func(format string, args ...any) { _, _ = fmt.Fprintf(out, format, args...) }
		writeln := func(line string) { _, _ = fmt.Fprintln(out, line) }

		write("%swerdiff%s - word error rate with an aligned diff %s(v%s)%s\n", boldBlue, reset, dim, version, reset)
		write("%sAligns hypothesis words to the reference and marks S, I and D.%s\n\n", dim, reset)

		write("%sUsage%s\n", bold, reset)
		write("  werdiff [command] [flags]\n\n")

		write("%sKey commands%s\n", bold, reset)
		writeln("  score <ref> <hyp>           aligned diff + WER/accuracy")
		writeln("  cer <ref> <hyp>             character error rate")
		writeln("  batch <manifest.toml>       score many pairs, corpus WER")
		writeln("  start|stop|restart          background scoring server")
		writeln("  status [--json]             uptime + recent scores")
		writeln("  health                      server liveness ping")
		writeln("  doctor                      check config/state dir/recognizer/hooks")
		writeln("  config show|init            print or write the config file")
		writeln("  tail-log                    show last log lines")
		writeln("  test-hook <wer>             run the hook matching a sample WER")
		writeln("")

		write("%sNotable flags & env%s\n", bold, reset)
		writeln("  --format text|json|yaml  report format (score, batch)")
		writeln("  --lowercase --strip-punct --nfc  caller-side normalisation")
		writeln("  -c, --config <path>      config file (default ~/.config/werdiff/config.toml)")
		writeln("  Env: WERDIFF_SERVER_ADDR=host:port, WERDIFF_METRICS_ENABLED=0,")
		writeln("       WERDIFF_LOG_LEVEL=debug, WERDIFF_LOG_FORMAT=json,")
		writeln("       WERDIFF_OUTPUT_FORMAT=json, WERDIFF_LOWERCASE=1 (.env is read too)")
		writeln("")

		write("%sExamples%s\n", bold, reset)
		writeln("  werdiff score ref.txt hyp.json")
		writeln("  werdiff score --text \"he is here\" \"she is\"")
		writeln("  werdiff score --recognize ref.txt clip.wav")
		writeln("  werdiff batch eval/pairs.toml --workers 8 --format json")
		writeln("  werdiff start --addr 127.0.0.1:9321")
		writeln("  werdiff test-hook 42")
		writeln("")

		write("%sCommands%s\n", bold, reset)
		for _, c := range cmd.Commands() {
			if c.Hidden {
				continue
			}
			write("  %s%-15s%s %s\n", green, c.Name(), reset, c.Short)
		}
	})
}
