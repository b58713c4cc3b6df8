package redact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"custodia/internal/domain"
)

// DefaultMaskToken replaces every redacted range.
const DefaultMaskToken = "***REDACTED***"

// Span is a half-open byte range [Start, End) to be irreversibly masked.
// Rule optionally names the redaction rule that produced it.
type Span struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Rule  string `json:"rule,omitempty"`
}

type Engine struct {
	Mask []byte
}

func New() *Engine {
	return &Engine{Mask: []byte(DefaultMaskToken)}
}

func NewWithMask(mask string) *Engine {
	if mask == "" {
		mask = DefaultMaskToken
	}
	return &Engine{Mask: []byte(mask)}
}

// Apply returns new content with every span replaced by the mask token,
// plus the merged spans that were actually applied. The source content is
// never mutated. Redaction is deterministic: the same content and
// instruction set always yield byte-identical output.
func (e *Engine) Apply(content []byte, spans []Span) ([]byte, []Span, error) {
	for _, s := range spans {
		if s.Start < 0 || s.End > len(content) || s.Start >= s.End {
			return nil, nil, fmt.Errorf("%w: [%d,%d) on %d bytes", domain.ErrInvalidRedactionRange, s.Start, s.End, len(content))
		}
	}
	merged := Merge(spans)

	var out bytes.Buffer
	cursor := 0
	for _, s := range merged {
		out.Write(content[cursor:s.Start])
		out.Write(e.Mask)
		cursor = s.End
	}
	out.Write(content[cursor:])

	applied := append([]byte(nil), out.Bytes()...)
	return applied, merged, nil
}

// Merge sorts spans and folds overlapping or adjacent ranges into one.
func Merge(spans []Span) []Span {
	if len(spans) == 0 {
		return nil
	}
	sorted := append([]Span(nil), spans...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start == sorted[j].Start {
			return sorted[i].End < sorted[j].End
		}
		return sorted[i].Start < sorted[j].Start
	})

	merged := []Span{sorted[0]}
	for _, s := range sorted[1:] {
		last := &merged[len(merged)-1]
		if s.Start <= last.End {
			if s.End > last.End {
				last.End = s.End
			}
			if last.Rule == "" {
				last.Rule = s.Rule
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

// Detail serializes the applied spans for the ledger: it captures what was
// redacted without exposing the removed text.
func Detail(spans []Span) (string, error) {
	payload, err := json.Marshal(struct {
		Redactions []Span `json:"redactions"`
	}{Redactions: spans})
	if err != nil {
		return "", err
	}
	return string(payload), nil
}
