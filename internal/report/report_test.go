package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"werdiff/internal/wer"

	"gopkg.in/yaml.v3"
)

func evaluate(t *testing.T, r, h string) *wer.Evaluation {
	t.Helper()
	ev, err := wer.Evaluate(strings.Fields(r), strings.Fields(h))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	return ev
}

func TestWriteText(t *testing.T) {
	doc := New("", evaluate(t, "he is here", "she is"))
	doc.SetCER(12.5)
	var buf bytes.Buffer
	if err := Write(&buf, "text", doc); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := strings.Join([]string{
		"REFERENCE:  he  is here",
		"HYPOTHESIS: she is",
		"EVALUATION: S      D",
		"Word Error Rate: 66.67%",
		"Word Accuracy: 33.33%",
		"Character Error Rate: 12.50%",
	}, "\n") + "\n"
	if buf.String() != want {
		t.Fatalf("text output =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestWriteJSON(t *testing.T) {
	doc := New("clip1", evaluate(t, "what is it", "what is"))
	var buf bytes.Buffer
	if err := Write(&buf, "json", doc); err != nil {
		t.Fatalf("Write: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, buf.String())
	}
	if got["name"] != "clip1" || got["word_error_rate"] != "33.33%" {
		t.Fatalf("unexpected document: %v", got)
	}
	result := got["result"].(map[string]any)
	if result["edit_distance"].(float64) != 1 || result["deletions"].(float64) != 1 {
		t.Fatalf("unexpected result: %v", result)
	}
	script := got["script"].([]any)
	if len(script) != 3 || script[2] != "delete" {
		t.Fatalf("unexpected script: %v", script)
	}
	if _, ok := got["char_error_rate"]; ok {
		t.Fatalf("char_error_rate should be omitted")
	}

	var back Document
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("decode document: %v", err)
	}
	if back.Lines()[2] != doc.Lines()[2] {
		t.Fatalf("decoded lines differ: %q vs %q", back.Lines()[2], doc.Lines()[2])
	}
}

func TestWriteYAML(t *testing.T) {
	doc := New("clip", evaluate(t, "cat", "bat"))
	var buf bytes.Buffer
	if err := Write(&buf, "yaml", doc); err != nil {
		t.Fatalf("Write: %v", err)
	}
	var got map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["word_error_rate"] != "100.00%" {
		t.Fatalf("unexpected yaml: %s", buf.String())
	}
	result := got["result"].(map[string]any)
	if result["substitutions"] != 1 {
		t.Fatalf("counts not inlined: %v", result)
	}
	if !strings.Contains(buf.String(), "- substitute") {
		t.Fatalf("script not rendered as names: %s", buf.String())
	}
}

func TestWriteBatchText(t *testing.T) {
	b := Batch{
		Documents: []Document{New("a", evaluate(t, "a b", "a b"))},
		Failures:  []Failure{{Name: "b", Error: "invalid input"}},
		Corpus: Corpus{
			Pairs: 2, Scored: 1, ReferenceLength: 2,
			WordErrorRate: "0.00%", WordAccuracy: "100.00%",
			Counts: wer.Counts{Matches: 2},
		},
	}
	var buf bytes.Buffer
	if err := Write(&buf, "text", &b); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"== a\n", "!! b: invalid input\n", "Corpus: 1/2 pairs scored", "Corpus Word Error Rate: 0.00%"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, "xml", Document{}); err == nil {
		t.Fatalf("expected error")
	}
	if err := Write(&bytes.Buffer{}, "text", 42); err == nil {
		t.Fatalf("expected error for unsupported text value")
	}
}
