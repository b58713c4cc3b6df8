package db

import "time"

type CustodyEventModel struct {
	Seq          uint64    `gorm:"primaryKey;autoIncrement:false"`
	Kind         string    `gorm:"not null"`
	ActorID      string    `gorm:"not null"`
	ActorRole    string    `gorm:"not null"`
	Timestamp    time.Time `gorm:"not null"`
	ArtifactID   string    `gorm:"type:uuid;index;not null"`
	SourceID     *string   `gorm:"type:uuid;index"`
	DigestBefore string
	DigestAfter  string
	Detail       string
	PrevHash     string `gorm:"not null"`
	Hash         string `gorm:"not null"`
}

func (CustodyEventModel) TableName() string {
	return "custody_events"
}

type EvidenceArtifactModel struct {
	ID            string    `gorm:"type:uuid;primaryKey"`
	Version       int       `gorm:"not null"`
	PredecessorID *string   `gorm:"type:uuid;uniqueIndex:idx_artifact_predecessor"`
	Digest        string    `gorm:"index;not null"`
	Size          int64     `gorm:"not null"`
	Kind          string    `gorm:"not null"`
	Filename      string
	CaseNumber    string    `gorm:"index"`
	CreatedAt     time.Time `gorm:"not null"`
	Deleted       bool      `gorm:"not null;default:false"`
}

func (EvidenceArtifactModel) TableName() string {
	return "evidence_artifacts"
}
