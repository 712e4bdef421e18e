package control

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"werdiff/internal/config"
	"werdiff/internal/hook"
	"werdiff/internal/logging"
	"werdiff/internal/report"
	"werdiff/internal/tokenize"
	"werdiff/internal/transcript"
	"werdiff/internal/wer"

	"github.com/spf13/cobra"
)

// NewScoreCmd scores a hypothesis file against a reference file.
func NewScoreCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score <reference> <hypothesis>",
		Short: "Print the aligned diff and word error rate of two transcripts",
		Long: `Score loads both transcripts (plain text or recognizer JSON), splits them
into words and prints the REFERENCE / HYPOTHESIS / EVALUATION rows followed by
the word error rate and accuracy.

With --recognize the hypothesis argument is passed to recognizer.command and
its output is scored instead.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			applyScoreFlags(cmd, cfg)
			opts := tokenizeOptions(cfg)

			ref, err := loadSide(cmd, args[0], false)
			if err != nil {
				return fmt.Errorf("reference: %w", err)
			}
			var hyp *transcript.Transcript
			if recognize, _ := cmd.Flags().GetBool("recognize"); recognize {
				if cfg.Recognizer.Command == "" {
					return fmt.Errorf("--recognize needs recognizer.command in %s", cfg.Paths.ConfigPath)
				}
				timeout := time.Duration(cfg.Recognizer.TimeoutSec * float64(time.Second))
				hyp, err = transcript.Recognize(cmd.Context(), cfg.Recognizer.Command, args[1], timeout)
			} else {
				hyp, err = loadSide(cmd, args[1], true)
			}
			if err != nil {
				return fmt.Errorf("hypothesis: %w", err)
			}

			refTokens, hypTokens := ref.Tokens(opts), hyp.Tokens(opts)
			ev, err := wer.Evaluate(refTokens, hypTokens)
			if err != nil {
				return err
			}
			name, _ := cmd.Flags().GetString("name")
			if literal, _ := cmd.Flags().GetBool("text"); name == "" && !literal {
				name = pairName(args[0])
			}
			doc := report.New(name, ev)
			if cfg.Output.CER {
				cer, err := wer.CharacterErrorRate(strings.Join(refTokens, " "), strings.Join(hypTokens, " "))
				if err != nil {
					return err
				}
				doc.SetCER(cer)
			}
			if err := report.Write(cmd.OutOrStdout(), cfg.Output.Format, doc); err != nil {
				return err
			}

			if fire, _ := cmd.Flags().GetBool("hook"); fire {
				logger, err := logging.Configure(cfg)
				if err != nil {
					return err
				}
				job := hook.Job{Name: name, Result: ev.Result, Timestamp: time.Now()}
				if _, err := hook.NewRunner(cfg, logger).Dispatch(cmd.Context(), job); err != nil {
					return err
				}
			}
			return nil
		},
	}
	addTokenizeFlags(cmd)
	cmd.Flags().StringP("format", "f", "", "output format: text, json or yaml")
	cmd.Flags().Bool("cer", false, "also report character error rate")
	cmd.Flags().Bool("text", false, "treat arguments as literal text instead of file paths")
	cmd.Flags().Bool("hook", false, "run the matching [[hooks]] entry after scoring")
	cmd.Flags().Bool("recognize", false, "run recognizer.command on the hypothesis argument")
	cmd.Flags().String("name", "", "name shown in reports and passed to hooks")
	return cmd
}

// NewCERCmd prints only the character error rate.
func NewCERCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cer <reference> <hypothesis>",
		Short: "Print the character error rate of two transcripts",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			applyScoreFlags(cmd, cfg)
			opts := tokenizeOptions(cfg)
			ref, err := loadSide(cmd, args[0], false)
			if err != nil {
				return fmt.Errorf("reference: %w", err)
			}
			hyp, err := loadSide(cmd, args[1], true)
			if err != nil {
				return fmt.Errorf("hypothesis: %w", err)
			}
			cer, err := wer.CharacterErrorRate(strings.Join(ref.Tokens(opts), " "), strings.Join(hyp.Tokens(opts), " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Character Error Rate: %s\n", wer.FormatPercent(cer))
			return nil
		},
	}
	addTokenizeFlags(cmd)
	cmd.Flags().Bool("text", false, "treat arguments as literal text instead of file paths")
	return cmd
}

func addTokenizeFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("lowercase", false, "lowercase both sides before scoring")
	cmd.Flags().Bool("strip-punct", false, "strip punctuation at word edges")
	cmd.Flags().Bool("nfc", false, "apply Unicode NFC normalisation")
}

// applyScoreFlags lets explicitly set flags win over the config file.
func applyScoreFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("lowercase") {
		cfg.Tokenize.Lowercase, _ = flags.GetBool("lowercase")
	}
	if flags.Changed("strip-punct") {
		cfg.Tokenize.StripPunct, _ = flags.GetBool("strip-punct")
	}
	if flags.Changed("nfc") {
		cfg.Tokenize.NFC, _ = flags.GetBool("nfc")
	}
	if f := flags.Lookup("cer"); f != nil && f.Changed {
		cfg.Output.CER, _ = flags.GetBool("cer")
	}
	if f := flags.Lookup("format"); f != nil && f.Changed {
		cfg.Output.Format, _ = flags.GetString("format")
	}
	if f := flags.Lookup("workers"); f != nil && f.Changed {
		cfg.Batch.Workers, _ = flags.GetInt("workers")
	}
}

func tokenizeOptions(cfg *config.Config) tokenize.Options {
	return tokenize.Options{
		Lowercase:  cfg.Tokenize.Lowercase,
		StripPunct: cfg.Tokenize.StripPunct,
		NFC:        cfg.Tokenize.NFC,
	}
}

// loadSide reads arg as a transcript file, "-" for stdin, or as literal text
// when --text is set.
func loadSide(cmd *cobra.Command, arg string, allowStdin bool) (*transcript.Transcript, error) {
	if literal, _ := cmd.Flags().GetBool("text"); literal {
		return &transcript.Transcript{Text: arg}, nil
	}
	if arg == "-" && allowStdin {
		return transcript.Read(cmd.InOrStdin())
	}
	return transcript.Load(arg)
}

func pairName(path string) string {
	base := filepath.Base(path)
	if base == "-" || base == "." || base == string(os.PathSeparator) {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
