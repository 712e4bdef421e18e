package control

import "time"

// ScoreRequest is the body of POST /v1/score. Token arrays, when present,
// are scored as given and skip tokenization.
type ScoreRequest struct {
	Name             string   `json:"name,omitempty"`
	Reference        string   `json:"reference,omitempty"`
	Hypothesis       string   `json:"hypothesis,omitempty"`
	ReferenceTokens  []string `json:"reference_tokens,omitempty"`
	HypothesisTokens []string `json:"hypothesis_tokens,omitempty"`
	CER              bool     `json:"cer,omitempty"`
}

type Status struct {
	Running   bool    `json:"running"`
	UptimeSec float64 `json:"uptime_sec"`
	Scored    int64   `json:"scored"`
	Recent    []Entry `json:"recent"`
}

// Entry is a recent score kept for status output.
type Entry struct {
	RequestID       string    `json:"request_id"`
	Name            string    `json:"name,omitempty"`
	WordErrorRate   string    `json:"word_error_rate"`
	EditDistance    int       `json:"edit_distance"`
	ReferenceLength int       `json:"reference_length"`
	Timestamp       time.Time `json:"timestamp"`
}

type SimpleResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}
