package summarize

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

type Kind string

const (
	KindBrief     Kind = "brief"
	KindDetailed  Kind = "detailed"
	KindKeyPoints Kind = "key_points"
)

var ErrTooShort = errors.New("content too short to summarize")

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

// Key terms that mark a sentence as a candidate key point.
var keyTerms = []string{"important", "significant", "concluded", "determined", "found", "evidence", "result"}

// Generate produces an extractive summary. It is deterministic: the same
// input and kind always yield the same output.
func Generate(text string, kind Kind) (string, error) {
	if len(strings.TrimSpace(text)) < 100 {
		return "", ErrTooShort
	}
	var sentences []string
	for _, s := range sentenceSplit.Split(text, -1) {
		s = strings.TrimSpace(s)
		if len(s) > 20 {
			sentences = append(sentences, s)
		}
	}
	if len(sentences) == 0 {
		return "", ErrTooShort
	}

	switch kind {
	case KindBrief:
		return join(sentences, 3), nil
	case KindDetailed:
		return join(sentences, 10), nil
	case KindKeyPoints:
		var key []string
		for _, s := range sentences {
			lower := strings.ToLower(s)
			for _, term := range keyTerms {
				if strings.Contains(lower, term) {
					key = append(key, s)
					break
				}
			}
		}
		if len(key) > 0 {
			return join(key, 5), nil
		}
		return join(sentences, 3), nil
	}
	return "", fmt.Errorf("unknown summary kind %q", kind)
}

func join(sentences []string, max int) string {
	if len(sentences) > max {
		sentences = sentences[:max]
	}
	return strings.Join(sentences, ". ") + "."
}
