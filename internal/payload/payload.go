// Package payload classifies raw pipeline output into an explicit
// tagged variant: either a structured JSON object or raw text. Callers
// branch on Kind; parse failure never escapes as control flow.
package payload

import "encoding/json"

// #region kind

// Kind tags a payload variant.
type Kind string

const (
	Structured Kind = "structured"
	Raw        Kind = "raw"
)

// #endregion kind

// #region payload

// Payload is the classified content variant. Exactly one of Fields or
// Text is meaningful, selected by Kind.
type Payload struct {
	Kind   Kind           `json:"kind"`
	Fields map[string]any `json:"fields,omitempty"`
	Text   string         `json:"text,omitempty"`
}

// #endregion payload

// #region classify

// Classify produces the tagged variant for a piece of content. Content
// that parses as a JSON object becomes Structured; everything else,
// including JSON arrays and scalars, stays Raw.
func Classify(content string) Payload {
	trimmed := []byte(content)
	if json.Valid(trimmed) {
		var fields map[string]any
		if err := json.Unmarshal(trimmed, &fields); err == nil && fields != nil {
			return Payload{Kind: Structured, Fields: fields}
		}
	}
	return Payload{Kind: Raw, Text: content}
}

// #endregion classify
