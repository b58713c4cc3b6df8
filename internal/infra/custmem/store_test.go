package custmem

import (
	"context"
	"errors"
	"testing"

	"custodia/internal/domain"
)

func TestAppendEntryEnforcesSequence(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.AppendEntry(ctx, domain.CustodyEvent{Seq: 0, Kind: domain.EventIngest, ActorID: "a", ArtifactID: "x"}, nil); err != nil {
		t.Fatal(err)
	}
	err := s.AppendEntry(ctx, domain.CustodyEvent{Seq: 0, Kind: domain.EventAccess, ActorID: "a", ArtifactID: "x"}, nil)
	if !errors.Is(err, domain.ErrLedgerWriteConflict) {
		t.Fatalf("duplicate seq: got %v", err)
	}
	err = s.AppendEntry(ctx, domain.CustodyEvent{Seq: 5, Kind: domain.EventAccess, ActorID: "a", ArtifactID: "x"}, nil)
	if !errors.Is(err, domain.ErrLedgerWriteConflict) {
		t.Fatalf("skipped seq: got %v", err)
	}
}

func TestAppendEntrySingleSuccessor(t *testing.T) {
	s := New()
	ctx := context.Background()

	base := domain.EvidenceArtifact{ID: "base", Version: 1}
	if err := s.AppendEntry(ctx, domain.CustodyEvent{Seq: 0, Kind: domain.EventIngest, ArtifactID: "base"}, &base); err != nil {
		t.Fatal(err)
	}

	pred := "base"
	first := domain.EvidenceArtifact{ID: "v2a", Version: 2, PredecessorID: &pred}
	if err := s.AppendEntry(ctx, domain.CustodyEvent{Seq: 1, Kind: domain.EventRedact, ArtifactID: "v2a", SourceID: "base"}, &first); err != nil {
		t.Fatal(err)
	}

	second := domain.EvidenceArtifact{ID: "v2b", Version: 2, PredecessorID: &pred}
	err := s.AppendEntry(ctx, domain.CustodyEvent{Seq: 2, Kind: domain.EventRedact, ArtifactID: "v2b", SourceID: "base"}, &second)
	if !errors.Is(err, domain.ErrConcurrentModification) {
		t.Fatalf("second successor: got %v", err)
	}
	if n, _ := s.EntryCount(ctx); n != 2 {
		t.Fatalf("rejected append left %d entries", n)
	}
	if _, err := s.GetArtifact(ctx, "v2b"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("rejected artifact persisted: %v", err)
	}
}

func TestAppendEntryDeleteTombstones(t *testing.T) {
	s := New()
	ctx := context.Background()

	artifact := domain.EvidenceArtifact{ID: "x", Version: 1}
	if err := s.AppendEntry(ctx, domain.CustodyEvent{Seq: 0, Kind: domain.EventIngest, ArtifactID: "x"}, &artifact); err != nil {
		t.Fatal(err)
	}
	if err := s.AppendEntry(ctx, domain.CustodyEvent{Seq: 1, Kind: domain.EventDelete, ArtifactID: "x"}, nil); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetArtifact(ctx, "x")
	if err != nil {
		t.Fatal(err)
	}
	if !got.Deleted {
		t.Fatal("DELETE event did not tombstone the artifact")
	}
}

func TestEntriesByArtifactIncludesSourceMatches(t *testing.T) {
	s := New()
	ctx := context.Background()

	base := domain.EvidenceArtifact{ID: "base", Version: 1}
	if err := s.AppendEntry(ctx, domain.CustodyEvent{Seq: 0, Kind: domain.EventIngest, ArtifactID: "base"}, &base); err != nil {
		t.Fatal(err)
	}
	pred := "base"
	next := domain.EvidenceArtifact{ID: "next", Version: 2, PredecessorID: &pred}
	if err := s.AppendEntry(ctx, domain.CustodyEvent{Seq: 1, Kind: domain.EventRedact, ArtifactID: "next", SourceID: "base"}, &next); err != nil {
		t.Fatal(err)
	}

	events, err := s.EntriesByArtifact(ctx, "base")
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("base history has %d events, want the ingest and the derived redact", len(events))
	}
}

func TestLastEntryAndRange(t *testing.T) {
	s := New()
	ctx := context.Background()

	last, err := s.LastEntry(ctx)
	if err != nil || last != nil {
		t.Fatalf("empty store head = %v, %v", last, err)
	}

	for i := uint64(0); i < 4; i++ {
		if err := s.AppendEntry(ctx, domain.CustodyEvent{Seq: i, Kind: domain.EventAccess, ArtifactID: "x"}, nil); err != nil {
			t.Fatal(err)
		}
	}
	last, err = s.LastEntry(ctx)
	if err != nil || last == nil || last.Seq != 3 {
		t.Fatalf("head = %+v, %v", last, err)
	}
	entries, err := s.EntryRange(ctx, 1, 2)
	if err != nil || len(entries) != 2 || entries[0].Seq != 1 {
		t.Fatalf("range = %+v, %v", entries, err)
	}
}

func TestCancelledContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.AppendEntry(ctx, domain.CustodyEvent{Seq: 0, Kind: domain.EventIngest, ArtifactID: "x"}, nil); err == nil {
		t.Fatal("append accepted on cancelled context")
	}
}
