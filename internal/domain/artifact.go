package domain

import (
	"strings"
	"time"
)

type ArtifactKind string

const (
	KindDocument    ArtifactKind = "document"
	KindAudio       ArtifactKind = "audio"
	KindVideo       ArtifactKind = "video"
	KindImage       ArtifactKind = "image"
	KindSpreadsheet ArtifactKind = "spreadsheet"
	KindOther       ArtifactKind = "other"
)

// EvidenceArtifact is one immutable version of a piece of evidence.
// Transformations never mutate an artifact in place; they create a new
// version whose PredecessorID points at the version it was derived from.
// Deleted marks a tombstone: content may be purged from storage, but the
// artifact row and its digest history remain.
type EvidenceArtifact struct {
	ID            string       `json:"id"`
	Version       int          `json:"version"`
	PredecessorID *string      `json:"predecessor_id,omitempty"`
	Digest        Digest       `json:"digest"`
	Size          int64        `json:"size"`
	Kind          ArtifactKind `json:"kind"`
	Filename      string       `json:"filename,omitempty"`
	CaseNumber    string       `json:"case_number,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	Deleted       bool         `json:"deleted,omitempty"`
}

// KindForFilename categorizes an upload by extension.
func KindForFilename(name string) ArtifactKind {
	idx := strings.LastIndex(name, ".")
	if idx < 0 || idx == len(name)-1 {
		return KindOther
	}
	switch strings.ToLower(name[idx+1:]) {
	case "pdf", "doc", "docx", "txt", "rtf":
		return KindDocument
	case "mp3", "wav", "flac", "aac":
		return KindAudio
	case "mp4", "avi", "mov", "wmv", "mkv":
		return KindVideo
	case "jpg", "jpeg", "png", "gif", "tiff", "bmp":
		return KindImage
	case "xls", "xlsx", "csv":
		return KindSpreadsheet
	}
	return KindOther
}
