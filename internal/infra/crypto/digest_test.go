package crypto

import (
	"errors"
	"testing"

	"custodia/internal/domain"
)

func TestSumKnownVector(t *testing.T) {
	h := NewHasher(0)
	digest, err := h.Sum([]byte("hello"))
	if err != nil {
		t.Fatal(err)
	}
	want := domain.Digest("2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824")
	if digest != want {
		t.Fatalf("sha256(hello) = %s, want %s", digest, want)
	}
}

func TestSumEmpty(t *testing.T) {
	digest, err := NewHasher(0).Sum(nil)
	if err != nil {
		t.Fatal(err)
	}
	want := domain.Digest("e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855")
	if digest != want {
		t.Fatalf("sha256(empty) = %s", digest)
	}
}

func TestSumRejectsOversizedContent(t *testing.T) {
	h := NewHasher(8)
	if _, err := h.Sum([]byte("123456789")); !errors.Is(err, domain.ErrContentTooLarge) {
		t.Fatalf("got %v, want ErrContentTooLarge", err)
	}
	if _, err := h.Sum([]byte("12345678")); err != nil {
		t.Fatalf("content at the limit rejected: %v", err)
	}
}
