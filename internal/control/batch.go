package control

import (
	"fmt"

	"werdiff/internal/batch"
	"werdiff/internal/config"
	"werdiff/internal/logging"
	"werdiff/internal/report"

	"github.com/spf13/cobra"
)

// NewBatchCmd scores every pair listed in a manifest.
func NewBatchCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <manifest.toml>",
		Short: "Score all pairs of a manifest and report corpus WER",
		Long: `Batch reads a TOML manifest of [[pair]] entries:

  [[pair]]
  name = "clip-01"
  reference = "refs/clip-01.txt"
  hypothesis = "hyps/clip-01.json"

Paths are relative to the manifest. Pairs are scored concurrently; a pair that
fails is listed in the report and does not stop the others.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			applyScoreFlags(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger, err := logging.Configure(cfg)
			if err != nil {
				return err
			}
			m, err := batch.LoadManifest(args[0])
			if err != nil {
				return err
			}
			r := &batch.Runner{
				Tokenize: tokenizeOptions(cfg),
				Workers:  cfg.Batch.Workers,
				CER:      cfg.Output.CER,
				Logger:   logger,
			}
			res, err := r.Run(cmd.Context(), m)
			if err != nil {
				return err
			}
			if err := report.Write(cmd.OutOrStdout(), cfg.Output.Format, res); err != nil {
				return err
			}
			if n := len(res.Failures); n > 0 {
				return fmt.Errorf("%d of %d pairs failed", n, len(m.Pairs))
			}
			return nil
		},
	}
	addTokenizeFlags(cmd)
	cmd.Flags().StringP("format", "f", "", "output format: text, json or yaml")
	cmd.Flags().Bool("cer", false, "also report character error rate per pair")
	cmd.Flags().IntP("workers", "w", 0, "pairs scored in parallel (default batch.workers)")
	return cmd
}
