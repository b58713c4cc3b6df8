package domain

import "time"

type FindingCode string

const (
	FindingTamperedEntry      FindingCode = "TAMPERED_ENTRY"
	FindingMissingEntry       FindingCode = "MISSING_ENTRY"
	FindingDigestMismatch     FindingCode = "DIGEST_MISMATCH"
	FindingContentMissing     FindingCode = "CONTENT_MISSING"
	FindingPredecessorMissing FindingCode = "PREDECESSOR_MISSING"
	FindingEventMissing       FindingCode = "EVENT_MISSING"
)

type Finding struct {
	Code       FindingCode `json:"code"`
	Seq        *uint64     `json:"seq,omitempty"`
	ArtifactID string      `json:"artifact_id,omitempty"`
	Message    string      `json:"message,omitempty"`
}

// VerificationReport collects every finding of a verification run.
// Verification never aborts on a finding; the one exception is a broken hash
// chain, after which entry hashes can no longer be checked. In that case
// UnverifiableFrom is set and the walk stops, so the gap is stated rather
// than hidden.
type VerificationReport struct {
	OK               bool      `json:"ok"`
	CheckedEntries   uint64    `json:"checked_entries"`
	Findings         []Finding `json:"findings,omitempty"`
	UnverifiableFrom *uint64   `json:"unverifiable_from,omitempty"`
	VerifiedAt       time.Time `json:"verified_at"`
}

func (r *VerificationReport) Add(f Finding) {
	r.OK = false
	r.Findings = append(r.Findings, f)
}
