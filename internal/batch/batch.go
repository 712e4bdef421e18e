// Package batch scores every pair listed in a manifest and aggregates a
// corpus-level error rate.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"werdiff/internal/report"
	"werdiff/internal/tokenize"
	"werdiff/internal/transcript"
	"werdiff/internal/wer"

	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Pair names a reference and a hypothesis file. Relative paths resolve
// against the manifest directory.
type Pair struct {
	Name       string `toml:"name"`
	Reference  string `toml:"reference"`
	Hypothesis string `toml:"hypothesis"`
}

// Manifest lists the pairs to score.
type Manifest struct {
	Pairs []Pair `toml:"pair"`
	dir   string
}

// LoadManifest reads a TOML manifest with one [[pair]] table per pair.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m := &Manifest{}
	if err := toml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if len(m.Pairs) == 0 {
		return nil, fmt.Errorf("manifest %s lists no [[pair]] entries", path)
	}
	m.dir = filepath.Dir(path)
	for i := range m.Pairs {
		p := &m.Pairs[i]
		if p.Reference == "" || p.Hypothesis == "" {
			return nil, fmt.Errorf("pair %d: reference and hypothesis are required", i)
		}
		if p.Name == "" {
			p.Name = strings.TrimSuffix(filepath.Base(p.Reference), filepath.Ext(p.Reference))
		}
	}
	return m, nil
}

func (m *Manifest) resolve(path string) string {
	if filepath.IsAbs(path) || m.dir == "" {
		return path
	}
	return filepath.Join(m.dir, path)
}

// Runner scores manifests.
type Runner struct {
	Tokenize tokenize.Options
	Workers  int
	CER      bool
	Logger   *logrus.Logger
}

type outcome struct {
	doc *report.Document
	err error
}

// Run scores all pairs with up to Workers in flight. A pair that fails is
// reported in Failures and does not stop the others; only cancellation of
// ctx aborts the run.
func (r *Runner) Run(ctx context.Context, m *Manifest) (*report.Batch, error) {
	workers := max(1, r.Workers)
	outcomes := make([]outcome, len(m.Pairs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range m.Pairs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := r.scorePair(m, p)
			if err != nil && r.Logger != nil {
				r.Logger.WithField("pair", p.Name).Warnf("score failed: %v", err)
			}
			outcomes[i] = outcome{doc: doc, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	b := &report.Batch{Documents: []report.Document{}}
	b.Corpus.Pairs = len(m.Pairs)
	for i, o := range outcomes {
		if o.err != nil {
			b.Failures = append(b.Failures, report.Failure{Name: m.Pairs[i].Name, Error: o.err.Error()})
			continue
		}
		b.Documents = append(b.Documents, *o.doc)
		res := o.doc.Result
		b.Corpus.Scored++
		b.Corpus.EditDistance += res.EditDistance
		b.Corpus.ReferenceLength += res.ReferenceLength
		b.Corpus.Matches += res.Matches
		b.Corpus.Substitutions += res.Substitutions
		b.Corpus.Insertions += res.Insertions
		b.Corpus.Deletions += res.Deletions
	}
	rates, err := wer.Rates(b.Corpus.EditDistance, b.Corpus.ReferenceLength)
	if err != nil {
		return nil, fmt.Errorf("corpus rate: %w", err)
	}
	b.Corpus.ErrorRate = rates.ErrorRate
	b.Corpus.WordErrorRate = rates.ErrorRateString()
	b.Corpus.WordAccuracy = rates.AccuracyString()
	if r.Logger != nil {
		r.Logger.WithFields(logrus.Fields{
			"pairs":  b.Corpus.Pairs,
			"scored": b.Corpus.Scored,
			"wer":    b.Corpus.WordErrorRate,
		}).Info("batch scored")
	}
	return b, nil
}

func (r *Runner) scorePair(m *Manifest, p Pair) (*report.Document, error) {
	ref, err := transcript.Load(m.resolve(p.Reference))
	if err != nil {
		return nil, fmt.Errorf("reference: %w", err)
	}
	hyp, err := transcript.Load(m.resolve(p.Hypothesis))
	if err != nil {
		return nil, fmt.Errorf("hypothesis: %w", err)
	}
	refTokens, hypTokens := ref.Tokens(r.Tokenize), hyp.Tokens(r.Tokenize)
	ev, err := wer.Evaluate(refTokens, hypTokens)
	if err != nil {
		return nil, err
	}
	doc := report.New(p.Name, ev)
	if r.CER {
		cer, err := wer.CharacterErrorRate(strings.Join(refTokens, " "), strings.Join(hypTokens, " "))
		if err != nil {
			return nil, err
		}
		doc.SetCER(cer)
	}
	return &doc, nil
}
