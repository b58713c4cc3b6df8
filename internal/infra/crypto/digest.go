package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"custodia/internal/domain"
)

// DefaultMaxContentBytes caps single-artifact content at 100 MiB.
const DefaultMaxContentBytes = 100 << 20

// Hasher computes content digests. Oversized input is reported, never
// silently truncated.
type Hasher struct {
	MaxBytes int64
}

func NewHasher(maxBytes int64) Hasher {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxContentBytes
	}
	return Hasher{MaxBytes: maxBytes}
}

func (h Hasher) Sum(content []byte) (domain.Digest, error) {
	if int64(len(content)) > h.MaxBytes {
		return "", fmt.Errorf("%w: %d bytes exceeds limit of %d", domain.ErrContentTooLarge, len(content), h.MaxBytes)
	}
	sum := sha256.Sum256(content)
	return domain.Digest(hex.EncodeToString(sum[:])), nil
}
