package domain

import "time"

// Digest is a hex-encoded SHA-256 content hash.
type Digest string

// GenesisHash is the fixed prev-hash carried by ledger entry zero.
const GenesisHash Digest = "0000000000000000000000000000000000000000000000000000000000000000"

type EventKind string

const (
	EventIngest     EventKind = "INGEST"
	EventRedact     EventKind = "REDACT"
	EventTranscribe EventKind = "TRANSCRIBE"
	EventSummarize  EventKind = "SUMMARIZE"
	EventAccess     EventKind = "ACCESS"
	EventDelete     EventKind = "DELETE"
	EventExport     EventKind = "EXPORT"
)

// IsTransformation reports whether the kind creates a new artifact version.
func (k EventKind) IsTransformation() bool {
	switch k {
	case EventRedact, EventTranscribe, EventSummarize:
		return true
	}
	return false
}

// CustodyEvent is one immutable ledger entry. Seq, PrevHash and Hash are
// assigned by the ledger; everything else is supplied by the tracker.
// For entry n > 0, PrevHash equals the Hash of entry n-1; entry 0 carries
// GenesisHash. Entries are never edited or deleted.
type CustodyEvent struct {
	Seq          uint64    `json:"seq"`
	Kind         EventKind `json:"kind"`
	ActorID      string    `json:"actor_id"`
	ActorRole    string    `json:"actor_role"`
	Timestamp    time.Time `json:"timestamp"`
	ArtifactID   string    `json:"artifact_id"`
	SourceID     string    `json:"source_id,omitempty"`
	DigestBefore Digest    `json:"digest_before,omitempty"`
	DigestAfter  Digest    `json:"digest_after,omitempty"`
	Detail       string    `json:"detail,omitempty"`
	PrevHash     Digest    `json:"prev_hash"`
	Hash         Digest    `json:"hash"`
}
