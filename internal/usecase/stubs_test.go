package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"custodia/internal/domain"
	"custodia/internal/infra/crypto"
)

// memStore mirrors the production store semantics and leaves its entries
// reachable so tests can tamper with the persisted chain.
type memStore struct {
	mu         sync.Mutex
	entries    []domain.CustodyEvent
	artifacts  map[string]domain.EvidenceArtifact
	successors map[string]string
}

func newMemStore() *memStore {
	return &memStore{
		artifacts:  make(map[string]domain.EvidenceArtifact),
		successors: make(map[string]string),
	}
}

func (s *memStore) AppendEntry(_ context.Context, event domain.CustodyEvent, artifact *domain.EvidenceArtifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	expected := uint64(0)
	if n := len(s.entries); n > 0 {
		expected = s.entries[n-1].Seq + 1
	}
	if event.Seq != expected {
		return fmt.Errorf("%w: sequence %d already assigned", domain.ErrLedgerWriteConflict, event.Seq)
	}
	if artifact != nil && artifact.PredecessorID != nil {
		if successor, taken := s.successors[*artifact.PredecessorID]; taken {
			return fmt.Errorf("%w: version %s already transformed into %s", domain.ErrConcurrentModification, *artifact.PredecessorID, successor)
		}
	}

	s.entries = append(s.entries, event)
	if artifact != nil {
		s.artifacts[artifact.ID] = *artifact
		if artifact.PredecessorID != nil {
			s.successors[*artifact.PredecessorID] = artifact.ID
		}
	}
	if event.Kind == domain.EventDelete {
		if a, ok := s.artifacts[event.ArtifactID]; ok {
			a.Deleted = true
			s.artifacts[event.ArtifactID] = a
		}
	}
	return nil
}

func (s *memStore) LastEntry(context.Context) (*domain.CustodyEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) == 0 {
		return nil, nil
	}
	last := s.entries[len(s.entries)-1]
	return &last, nil
}

func (s *memStore) EntryRange(_ context.Context, from, to uint64) ([]domain.CustodyEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.CustodyEvent
	for _, e := range s.entries {
		if e.Seq >= from && e.Seq <= to {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *memStore) EntryCount(context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return uint64(len(s.entries)), nil
}

func (s *memStore) EntriesByArtifact(_ context.Context, artifactID string) ([]domain.CustodyEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.CustodyEvent
	for _, e := range s.entries {
		if e.ArtifactID == artifactID || e.SourceID == artifactID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *memStore) GetArtifact(_ context.Context, id string) (domain.EvidenceArtifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	artifact, ok := s.artifacts[id]
	if !ok {
		return domain.EvidenceArtifact{}, fmt.Errorf("%w: artifact %s", domain.ErrNotFound, id)
	}
	return artifact, nil
}

type memBlobs struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newMemBlobs() *memBlobs {
	return &memBlobs{blobs: make(map[string][]byte)}
}

func blobKey(artifactID string, version int) string {
	return fmt.Sprintf("%s/v%d", artifactID, version)
}

func (b *memBlobs) Put(_ context.Context, artifactID string, version int, content []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := blobKey(artifactID, version)
	if _, exists := b.blobs[key]; exists {
		return fmt.Errorf("blob %s already exists", key)
	}
	b.blobs[key] = append([]byte(nil), content...)
	return nil
}

func (b *memBlobs) Get(_ context.Context, artifactID string, version int) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	content, ok := b.blobs[blobKey(artifactID, version)]
	if !ok {
		return nil, fmt.Errorf("%w: blob %s v%d", domain.ErrNotFound, artifactID, version)
	}
	return append([]byte(nil), content...), nil
}

func (b *memBlobs) Remove(_ context.Context, artifactID string, version int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.blobs, blobKey(artifactID, version))
	return nil
}

func (b *memBlobs) overwrite(artifactID string, version int, content []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blobs[blobKey(artifactID, version)] = append([]byte(nil), content...)
}

func fixedClock() time.Time {
	return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
}

func newTestTracker() (*CustodyTracker, *memStore, *memBlobs) {
	store := newMemStore()
	blobs := newMemBlobs()
	ledger := NewLedger(store, fixedClock)
	tracker := NewCustodyTracker(ledger, store, blobs, crypto.NewHasher(0), fixedClock)
	return tracker, store, blobs
}
