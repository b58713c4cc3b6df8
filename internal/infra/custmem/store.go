package custmem

import (
	"context"
	"fmt"
	"sync"

	"custodia/internal/domain"
)

// Store is an in-memory CustodyStore for tests and single-process
// deployments without Postgres. It enforces the same append invariants as
// the database store: contiguous sequence numbers and at most one successor
// per artifact version.
type Store struct {
	mu         sync.RWMutex
	entries    []domain.CustodyEvent
	artifacts  map[string]domain.EvidenceArtifact
	successors map[string]string
}

func New() *Store {
	return &Store{
		artifacts:  make(map[string]domain.EvidenceArtifact),
		successors: make(map[string]string),
	}
}

func (s *Store) AppendEntry(ctx context.Context, event domain.CustodyEvent, artifact *domain.EvidenceArtifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	expected := uint64(0)
	if n := len(s.entries); n > 0 {
		expected = s.entries[n-1].Seq + 1
	}
	if event.Seq != expected {
		return fmt.Errorf("%w: sequence %d already assigned", domain.ErrLedgerWriteConflict, event.Seq)
	}

	if artifact != nil {
		if _, exists := s.artifacts[artifact.ID]; exists {
			return fmt.Errorf("%w: artifact %s already exists", domain.ErrLedgerWriteConflict, artifact.ID)
		}
		if artifact.PredecessorID != nil {
			if successor, taken := s.successors[*artifact.PredecessorID]; taken {
				return fmt.Errorf("%w: version %s already transformed into %s", domain.ErrConcurrentModification, *artifact.PredecessorID, successor)
			}
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

func (s *Store) LastEntry(ctx context.Context) (*domain.CustodyEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.entries) == 0 {
		return nil, nil
	}
	last := s.entries[len(s.entries)-1]
	return &last, nil
}

func (s *Store) EntryRange(ctx context.Context, from, to uint64) ([]domain.CustodyEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.CustodyEvent
	for _, e := range s.entries {
		if e.Seq >= from && e.Seq <= to {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) EntryCount(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.entries)), nil
}

func (s *Store) EntriesByArtifact(ctx context.Context, artifactID string) ([]domain.CustodyEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.CustodyEvent
	for _, e := range s.entries {
		if e.ArtifactID == artifactID || e.SourceID == artifactID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) GetArtifact(ctx context.Context, id string) (domain.EvidenceArtifact, error) {
	if err := ctx.Err(); err != nil {
		return domain.EvidenceArtifact{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	artifact, ok := s.artifacts[id]
	if !ok {
		return domain.EvidenceArtifact{}, fmt.Errorf("%w: artifact %s", domain.ErrNotFound, id)
	}
	return artifact, nil
}
