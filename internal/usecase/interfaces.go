package usecase

import (
	"context"
	"time"

	"custodia/internal/domain"
)

type Clock func() time.Time

// CustodyStore persists ledger entries and artifact versions. AppendEntry is
// the only write path: the event row and the optional new artifact version
// commit together or not at all. Implementations must reject a duplicate
// sequence number with domain.ErrLedgerWriteConflict, reject a second
// successor for the same predecessor artifact with
// domain.ErrConcurrentModification, and mark the subject artifact deleted in
// the same unit of work when the event kind is DELETE.
type CustodyStore interface {
	AppendEntry(ctx context.Context, event domain.CustodyEvent, artifact *domain.EvidenceArtifact) error
	LastEntry(ctx context.Context) (*domain.CustodyEvent, error)
	EntryRange(ctx context.Context, from, to uint64) ([]domain.CustodyEvent, error)
	EntryCount(ctx context.Context) (uint64, error)
	EntriesByArtifact(ctx context.Context, artifactID string) ([]domain.CustodyEvent, error)
	GetArtifact(ctx context.Context, id string) (domain.EvidenceArtifact, error)
}

// BlobStore holds raw artifact content keyed by artifact ID and version.
// Content is opaque here; the subsystem only ever compares digests.
type BlobStore interface {
	Put(ctx context.Context, artifactID string, version int, content []byte) error
	Get(ctx context.Context, artifactID string, version int) ([]byte, error)
	Remove(ctx context.Context, artifactID string, version int) error
}

type ContentHasher interface {
	Sum(content []byte) (domain.Digest, error)
}
