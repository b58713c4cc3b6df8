package redact

import "regexp"

// PII patterns detected in text content. Detection is a pluggable
// collaborator: callers may pass spans from any source to Apply; these
// patterns are the built-in detector.
var piiPatterns = []struct {
	rule string
	re   *regexp.Regexp
}{
	{"ssn", regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)},
	{"phone", regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`)},
	{"email", regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)},
	{"credit_card", regexp.MustCompile(`\b\d{4}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`)},
}

// DetectPII scans content for well-known PII shapes and returns merged,
// ordered spans ready for Apply.
func DetectPII(content []byte) []Span {
	var spans []Span
	for _, p := range piiPatterns {
		for _, loc := range p.re.FindAllIndex(content, -1) {
			spans = append(spans, Span{Start: loc[0], End: loc[1], Rule: p.rule})
		}
	}
	return Merge(spans)
}
