package domain

import "errors"

var (
	ErrNotFound               = errors.New("not found")
	ErrArtifactDeleted        = errors.New("artifact deleted")
	ErrIntegrityViolation     = errors.New("integrity violation")
	ErrConcurrentModification = errors.New("concurrent modification")
	ErrLedgerWriteConflict    = errors.New("ledger write conflict")
	ErrLedgerCorrupt          = errors.New("ledger corrupt")
	ErrInvalidRedactionRange  = errors.New("invalid redaction range")
	ErrContentTooLarge        = errors.New("content too large")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrForbidden              = errors.New("forbidden")
)
