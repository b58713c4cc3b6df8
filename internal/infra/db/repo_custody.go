package db

import (
	"context"
	"fmt"
	"math"
	"strings"

	"custodia/internal/domain"

	"gorm.io/gorm"
)

// AppendEntry writes the event row and the optional artifact row in one
// transaction. The primary key on custody_events.seq rejects a raced
// sequence assignment; the unique index on evidence_artifacts.predecessor_id
// rejects a second successor for the same base version.
func (s *Store) AppendEntry(ctx context.Context, event domain.CustodyEvent, artifact *domain.EvidenceArtifact) error {
	if s == nil || s.db == nil {
		return errDBUnavailable
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if artifact != nil {
			if err := tx.Create(artifactToModel(*artifact)).Error; err != nil {
				return err
			}
		}
		if err := tx.Create(eventToModel(event)).Error; err != nil {
			return err
		}
		if event.Kind == domain.EventDelete {
			if err := tx.Model(&EvidenceArtifactModel{}).
				Where("id = ?", event.ArtifactID).
				Update("deleted", true).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return translateAppendError(err)
}

func translateAppendError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "idx_artifact_predecessor"):
		return fmt.Errorf("%w: base version already transformed", domain.ErrConcurrentModification)
	case strings.Contains(msg, "custody_events_pkey"), strings.Contains(msg, "evidence_artifacts_pkey"):
		return fmt.Errorf("%w: %v", domain.ErrLedgerWriteConflict, err)
	}
	return err
}

func (s *Store) LastEntry(ctx context.Context) (*domain.CustodyEvent, error) {
	if s == nil || s.db == nil {
		return nil, errDBUnavailable
	}
	var model CustodyEventModel
	err := s.db.WithContext(ctx).Order("seq DESC").First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	event := eventFromModel(model)
	return &event, nil
}

func (s *Store) EntryRange(ctx context.Context, from, to uint64) ([]domain.CustodyEvent, error) {
	if s == nil || s.db == nil {
		return nil, errDBUnavailable
	}
	if to == math.MaxUint64 {
		to = math.MaxInt64
	}
	var models []CustodyEventModel
	err := s.db.WithContext(ctx).
		Where("seq >= ? AND seq <= ?", from, to).
		Order("seq ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return eventsFromModels(models), nil
}

func (s *Store) EntryCount(ctx context.Context) (uint64, error) {
	if s == nil || s.db == nil {
		return 0, errDBUnavailable
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&CustodyEventModel{}).Count(&count).Error
	return uint64(count), err
}

func (s *Store) EntriesByArtifact(ctx context.Context, artifactID string) ([]domain.CustodyEvent, error) {
	if s == nil || s.db == nil {
		return nil, errDBUnavailable
	}
	var models []CustodyEventModel
	err := s.db.WithContext(ctx).
		Where("artifact_id = ? OR source_id = ?", artifactID, artifactID).
		Order("seq ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return eventsFromModels(models), nil
}

func (s *Store) GetArtifact(ctx context.Context, id string) (domain.EvidenceArtifact, error) {
	if s == nil || s.db == nil {
		return domain.EvidenceArtifact{}, errDBUnavailable
	}
	var model EvidenceArtifactModel
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.EvidenceArtifact{}, fmt.Errorf("%w: artifact %s", domain.ErrNotFound, id)
		}
		return domain.EvidenceArtifact{}, err
	}
	return artifactFromModel(model), nil
}

func eventToModel(event domain.CustodyEvent) *CustodyEventModel {
	return &CustodyEventModel{
		Seq:          event.Seq,
		Kind:         string(event.Kind),
		ActorID:      event.ActorID,
		ActorRole:    event.ActorRole,
		Timestamp:    event.Timestamp,
		ArtifactID:   event.ArtifactID,
		SourceID:     stringPtrIfNotEmpty(event.SourceID),
		DigestBefore: string(event.DigestBefore),
		DigestAfter:  string(event.DigestAfter),
		Detail:       event.Detail,
		PrevHash:     string(event.PrevHash),
		Hash:         string(event.Hash),
	}
}

func eventFromModel(model CustodyEventModel) domain.CustodyEvent {
	event := domain.CustodyEvent{
		Seq:          model.Seq,
		Kind:         domain.EventKind(model.Kind),
		ActorID:      model.ActorID,
		ActorRole:    model.ActorRole,
		Timestamp:    model.Timestamp,
		ArtifactID:   model.ArtifactID,
		DigestBefore: domain.Digest(model.DigestBefore),
		DigestAfter:  domain.Digest(model.DigestAfter),
		Detail:       model.Detail,
		PrevHash:     domain.Digest(model.PrevHash),
		Hash:         domain.Digest(model.Hash),
	}
	if model.SourceID != nil {
		event.SourceID = *model.SourceID
	}
	return event
}

func eventsFromModels(models []CustodyEventModel) []domain.CustodyEvent {
	out := make([]domain.CustodyEvent, 0, len(models))
	for _, m := range models {
		out = append(out, eventFromModel(m))
	}
	return out
}

func artifactToModel(artifact domain.EvidenceArtifact) *EvidenceArtifactModel {
	return &EvidenceArtifactModel{
		ID:            artifact.ID,
		Version:       artifact.Version,
		PredecessorID: artifact.PredecessorID,
		Digest:        string(artifact.Digest),
		Size:          artifact.Size,
		Kind:          string(artifact.Kind),
		Filename:      artifact.Filename,
		CaseNumber:    artifact.CaseNumber,
		CreatedAt:     artifact.CreatedAt,
		Deleted:       artifact.Deleted,
	}
}

func artifactFromModel(model EvidenceArtifactModel) domain.EvidenceArtifact {
	return domain.EvidenceArtifact{
		ID:            model.ID,
		Version:       model.Version,
		PredecessorID: model.PredecessorID,
		Digest:        domain.Digest(model.Digest),
		Size:          model.Size,
		Kind:          domain.ArtifactKind(model.Kind),
		Filename:      model.Filename,
		CaseNumber:    model.CaseNumber,
		CreatedAt:     model.CreatedAt,
		Deleted:       model.Deleted,
	}
}

func stringPtrIfNotEmpty(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
