package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"custodia/internal/domain"

	"github.com/google/uuid"
)

// CustodyTracker is the only entry point allowed to create evidence
// artifacts or custody events. Every mutating operation hashes content
// first, then runs one ledger append that carries the new artifact version,
// so an artifact and its event exist together or not at all.
type CustodyTracker struct {
	Ledger *Ledger
	Store  CustodyStore
	Blobs  BlobStore
	Hasher ContentHasher
	Clock  Clock
}

func NewCustodyTracker(ledger *Ledger, store CustodyStore, blobs BlobStore, hasher ContentHasher, clock Clock) *CustodyTracker {
	if clock == nil {
		clock = time.Now
	}
	return &CustodyTracker{Ledger: ledger, Store: store, Blobs: blobs, Hasher: hasher, Clock: clock}
}

type IngestInput struct {
	Actor      domain.Actor
	Content    []byte
	Kind       domain.ArtifactKind
	Filename   string
	CaseNumber string
	Detail     string
}

// RecordIngest stores new original evidence as artifact version 1 and
// appends the INGEST event, digest-before empty.
func (t *CustodyTracker) RecordIngest(ctx context.Context, in IngestInput) (domain.EvidenceArtifact, error) {
	if err := t.ready(); err != nil {
		return domain.EvidenceArtifact{}, err
	}
	digest, err := t.Hasher.Sum(in.Content)
	if err != nil {
		return domain.EvidenceArtifact{}, err
	}
	kind := in.Kind
	if kind == "" {
		kind = domain.KindForFilename(in.Filename)
	}
	artifact := domain.EvidenceArtifact{
		ID:         uuid.NewString(),
		Version:    1,
		Digest:     digest,
		Size:       int64(len(in.Content)),
		Kind:       kind,
		Filename:   in.Filename,
		CaseNumber: in.CaseNumber,
		CreatedAt:  t.Clock().UTC(),
	}
	if err := t.Blobs.Put(ctx, artifact.ID, artifact.Version, in.Content); err != nil {
		return domain.EvidenceArtifact{}, fmt.Errorf("store content: %w", err)
	}
	event := domain.CustodyEvent{
		Kind:        domain.EventIngest,
		ActorID:     in.Actor.ID,
		ActorRole:   in.Actor.Role,
		ArtifactID:  artifact.ID,
		DigestAfter: digest,
		Detail:      in.Detail,
	}
	if _, err := t.Ledger.Append(ctx, event, &artifact); err != nil {
		if rmErr := t.Blobs.Remove(ctx, artifact.ID, artifact.Version); rmErr != nil {
			log.Printf("custody: orphan blob %s v%d after failed ingest: %v", artifact.ID, artifact.Version, rmErr)
		}
		return domain.EvidenceArtifact{}, err
	}
	return artifact, nil
}

type TransformInput struct {
	Actor      domain.Actor
	Kind       domain.EventKind
	SourceID   string
	NewContent []byte
	Detail     string
}

// RecordTransformation derives a new artifact version from an existing one.
// The source's stored content is re-hashed and compared to its recorded
// digest before anything is written: a mismatch is evidence of tampering on
// the write path, recorded as an ACCESS-denied event and refused with
// domain.ErrIntegrityViolation. Only one transformation may succeed per base
// version; losers of that race get domain.ErrConcurrentModification.
func (t *CustodyTracker) RecordTransformation(ctx context.Context, in TransformInput) (domain.EvidenceArtifact, error) {
	if err := t.ready(); err != nil {
		return domain.EvidenceArtifact{}, err
	}
	if !in.Kind.IsTransformation() {
		return domain.EvidenceArtifact{}, fmt.Errorf("event kind %q is not a transformation", in.Kind)
	}
	source, _, err := t.LoadContent(ctx, in.SourceID)
	if err != nil {
		return domain.EvidenceArtifact{}, err
	}

	newDigest, err := t.Hasher.Sum(in.NewContent)
	if err != nil {
		return domain.EvidenceArtifact{}, err
	}
	kind := source.Kind
	if in.Kind == domain.EventTranscribe || in.Kind == domain.EventSummarize {
		kind = domain.KindDocument
	}
	sourceID := source.ID
	next := domain.EvidenceArtifact{
		ID:            uuid.NewString(),
		Version:       source.Version + 1,
		PredecessorID: &sourceID,
		Digest:        newDigest,
		Size:          int64(len(in.NewContent)),
		Kind:          kind,
		Filename:      source.Filename,
		CaseNumber:    source.CaseNumber,
		CreatedAt:     t.Clock().UTC(),
	}
	if err := t.Blobs.Put(ctx, next.ID, next.Version, in.NewContent); err != nil {
		return domain.EvidenceArtifact{}, fmt.Errorf("store content: %w", err)
	}
	event := domain.CustodyEvent{
		Kind:         in.Kind,
		ActorID:      in.Actor.ID,
		ActorRole:    in.Actor.Role,
		ArtifactID:   next.ID,
		SourceID:     source.ID,
		DigestBefore: source.Digest,
		DigestAfter:  newDigest,
		Detail:       in.Detail,
	}
	if _, err := t.Ledger.Append(ctx, event, &next); err != nil {
		if rmErr := t.Blobs.Remove(ctx, next.ID, next.Version); rmErr != nil {
			log.Printf("custody: orphan blob %s v%d after failed transformation: %v", next.ID, next.Version, rmErr)
		}
		return domain.EvidenceArtifact{}, err
	}
	return next, nil
}

// LoadContent fetches an artifact and its stored content, verifying the
// stored digest on the way out. A mismatch is never downgraded: it is
// recorded in the ledger and surfaced as domain.ErrIntegrityViolation.
func (t *CustodyTracker) LoadContent(ctx context.Context, artifactID string) (domain.EvidenceArtifact, []byte, error) {
	artifact, err := t.Store.GetArtifact(ctx, artifactID)
	if err != nil {
		return domain.EvidenceArtifact{}, nil, err
	}
	if artifact.Deleted {
		return domain.EvidenceArtifact{}, nil, fmt.Errorf("%w: %s", domain.ErrArtifactDeleted, artifact.ID)
	}
	content, err := t.Blobs.Get(ctx, artifact.ID, artifact.Version)
	if err != nil {
		return domain.EvidenceArtifact{}, nil, fmt.Errorf("%w: artifact %s content unreadable: %v", domain.ErrIntegrityViolation, artifact.ID, err)
	}
	stored, err := t.Hasher.Sum(content)
	if err != nil {
		return domain.EvidenceArtifact{}, nil, err
	}
	if stored != artifact.Digest {
		t.recordIntegrityDenial(ctx, artifact, stored)
		return domain.EvidenceArtifact{}, nil, fmt.Errorf("%w: artifact %s stored content hashes to %s, recorded digest is %s",
			domain.ErrIntegrityViolation, artifact.ID, stored, artifact.Digest)
	}
	return artifact, content, nil
}

// recordIntegrityDenial durably notes a refused operation on tampered
// evidence. Failure to record is logged loudly but does not mask the
// original violation.
func (t *CustodyTracker) recordIntegrityDenial(ctx context.Context, artifact domain.EvidenceArtifact, observed domain.Digest) {
	event := domain.CustodyEvent{
		Kind:         domain.EventAccess,
		ActorID:      "system",
		ActorRole:    "system",
		ArtifactID:   artifact.ID,
		DigestBefore: artifact.Digest,
		DigestAfter:  observed,
		Detail:       `{"denied":true,"reason":"stored content digest mismatch"}`,
	}
	if _, err := t.Ledger.Append(ctx, event, nil); err != nil {
		log.Printf("custody: FAILED to record integrity denial for artifact %s: %v", artifact.ID, err)
	}
}

// RecordAccess appends a read-access event. It never creates a new version.
func (t *CustodyTracker) RecordAccess(ctx context.Context, actor domain.Actor, artifactID, purpose string) (domain.CustodyEvent, error) {
	return t.recordReadEvent(ctx, actor, artifactID, domain.EventAccess, purpose)
}

// RecordExport appends an export event for content handed to an external
// destination.
func (t *CustodyTracker) RecordExport(ctx context.Context, actor domain.Actor, artifactID, destination string) (domain.CustodyEvent, error) {
	return t.recordReadEvent(ctx, actor, artifactID, domain.EventExport, destination)
}

func (t *CustodyTracker) recordReadEvent(ctx context.Context, actor domain.Actor, artifactID string, kind domain.EventKind, detail string) (domain.CustodyEvent, error) {
	if err := t.ready(); err != nil {
		return domain.CustodyEvent{}, err
	}
	artifact, err := t.Store.GetArtifact(ctx, artifactID)
	if err != nil {
		return domain.CustodyEvent{}, err
	}
	event := domain.CustodyEvent{
		Kind:         kind,
		ActorID:      actor.ID,
		ActorRole:    actor.Role,
		ArtifactID:   artifact.ID,
		DigestBefore: artifact.Digest,
		DigestAfter:  artifact.Digest,
		Detail:       detail,
	}
	return t.Ledger.Append(ctx, event, nil)
}

// RecordDeletion appends a DELETE tombstone and purges the stored content.
// The artifact row and its digest history remain in the ledger permanently.
func (t *CustodyTracker) RecordDeletion(ctx context.Context, actor domain.Actor, artifactID, reason string) (domain.CustodyEvent, error) {
	if err := t.ready(); err != nil {
		return domain.CustodyEvent{}, err
	}
	artifact, err := t.Store.GetArtifact(ctx, artifactID)
	if err != nil {
		return domain.CustodyEvent{}, err
	}
	if artifact.Deleted {
		return domain.CustodyEvent{}, fmt.Errorf("%w: %s", domain.ErrArtifactDeleted, artifact.ID)
	}
	event := domain.CustodyEvent{
		Kind:         domain.EventDelete,
		ActorID:      actor.ID,
		ActorRole:    actor.Role,
		ArtifactID:   artifact.ID,
		DigestBefore: artifact.Digest,
		Detail:       reason,
	}
	appended, err := t.Ledger.Append(ctx, event, nil)
	if err != nil {
		return domain.CustodyEvent{}, err
	}
	if err := t.Blobs.Remove(ctx, artifact.ID, artifact.Version); err != nil {
		log.Printf("custody: purge content for deleted artifact %s v%d: %v", artifact.ID, artifact.Version, err)
	}
	return appended, nil
}

// History reconstructs what happened to an artifact by range-scanning the
// ledger filtered by artifact ID, in sequence order.
func (t *CustodyTracker) History(ctx context.Context, artifactID string) ([]domain.CustodyEvent, error) {
	if err := t.ready(); err != nil {
		return nil, err
	}
	if _, err := t.Store.GetArtifact(ctx, artifactID); err != nil {
		return nil, err
	}
	return t.Store.EntriesByArtifact(ctx, artifactID)
}

func (t *CustodyTracker) ready() error {
	if t == nil || t.Ledger == nil || t.Store == nil || t.Blobs == nil || t.Hasher == nil {
		return errors.New("custody tracker not fully configured")
	}
	return nil
}
