package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"custodia/internal/domain"
)

// entryPayload is the canonical serialization of a ledger entry: every field
// except the entry's own hash, with the timestamp pinned to UTC RFC3339Nano
// so recomputation is bit-stable.
type entryPayload struct {
	Seq          uint64           `json:"seq"`
	Kind         domain.EventKind `json:"kind"`
	ActorID      string           `json:"actor_id"`
	ActorRole    string           `json:"actor_role"`
	Timestamp    string           `json:"timestamp"`
	ArtifactID   string           `json:"artifact_id"`
	SourceID     string           `json:"source_id,omitempty"`
	DigestBefore domain.Digest    `json:"digest_before,omitempty"`
	DigestAfter  domain.Digest    `json:"digest_after,omitempty"`
	Detail       string           `json:"detail,omitempty"`
	PrevHash     domain.Digest    `json:"prev_hash"`
}

// ComputeEntryHash chains an entry to its predecessor: the digest covers the
// entry's fields plus the previous entry's hash.
func ComputeEntryHash(event domain.CustodyEvent) (domain.Digest, error) {
	canonical, err := json.Marshal(entryPayload{
		Seq:          event.Seq,
		Kind:         event.Kind,
		ActorID:      event.ActorID,
		ActorRole:    event.ActorRole,
		Timestamp:    event.Timestamp.UTC().Format(time.RFC3339Nano),
		ArtifactID:   event.ArtifactID,
		SourceID:     event.SourceID,
		DigestBefore: event.DigestBefore,
		DigestAfter:  event.DigestAfter,
		Detail:       event.Detail,
		PrevHash:     event.PrevHash,
	})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return domain.Digest(hex.EncodeToString(sum[:])), nil
}
