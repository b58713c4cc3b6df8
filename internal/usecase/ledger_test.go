package usecase

import (
	"context"
	"errors"
	"testing"

	"custodia/internal/domain"
)

func appendN(t *testing.T, ledger *Ledger, n int) []domain.CustodyEvent {
	t.Helper()
	out := make([]domain.CustodyEvent, 0, n)
	for i := 0; i < n; i++ {
		event, err := ledger.Append(context.Background(), domain.CustodyEvent{
			Kind:       domain.EventAccess,
			ActorID:    "analyst-1",
			ActorRole:  domain.RoleForensicAnalyst,
			ArtifactID: "artifact-1",
			Detail:     "view",
		}, nil)
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
		out = append(out, event)
	}
	return out
}

func TestAppendBuildsHashChain(t *testing.T) {
	store := newMemStore()
	ledger := NewLedger(store, fixedClock)

	events := appendN(t, ledger, 3)

	if events[0].Seq != 0 || events[0].PrevHash != domain.GenesisHash {
		t.Fatalf("entry 0: seq=%d prev=%s", events[0].Seq, events[0].PrevHash)
	}
	for i, event := range events {
		if event.Seq != uint64(i) {
			t.Fatalf("entry %d has seq %d", i, event.Seq)
		}
		recomputed, err := ComputeEntryHash(event)
		if err != nil {
			t.Fatalf("recompute entry %d: %v", i, err)
		}
		if recomputed != event.Hash {
			t.Fatalf("entry %d stored hash %s, recomputed %s", i, event.Hash, recomputed)
		}
		if i > 0 && event.PrevHash != events[i-1].Hash {
			t.Fatalf("entry %d prev-hash %s does not link to %s", i, event.PrevHash, events[i-1].Hash)
		}
	}
}

func TestAppendRejectsIncompleteEvent(t *testing.T) {
	ledger := NewLedger(newMemStore(), fixedClock)
	_, err := ledger.Append(context.Background(), domain.CustodyEvent{Kind: domain.EventAccess}, nil)
	if err == nil {
		t.Fatal("expected error for event without actor and artifact")
	}
}

func TestAppendFailsClosedOnCorruptHead(t *testing.T) {
	store := newMemStore()
	ledger := NewLedger(store, fixedClock)
	appendN(t, ledger, 2)

	// Alter the persisted head out-of-band; its stored hash no longer
	// recomputes.
	store.entries[1].Detail = "edited after the fact"

	for i := 0; i < 2; i++ {
		_, err := ledger.Append(context.Background(), domain.CustodyEvent{
			Kind:       domain.EventAccess,
			ActorID:    "analyst-1",
			ArtifactID: "artifact-1",
		}, nil)
		if !errors.Is(err, domain.ErrLedgerCorrupt) {
			t.Fatalf("append %d after corruption: got %v, want ErrLedgerCorrupt", i, err)
		}
	}
	if n, _ := store.EntryCount(context.Background()); n != 2 {
		t.Fatalf("corrupt ledger accepted a write, %d entries", n)
	}
}

func TestLatestHashEmptyLedger(t *testing.T) {
	ledger := NewLedger(newMemStore(), fixedClock)
	hash, err := ledger.LatestHash(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if hash != domain.GenesisHash {
		t.Fatalf("empty ledger head = %s, want genesis", hash)
	}
}

func TestLatestHashTracksHead(t *testing.T) {
	ledger := NewLedger(newMemStore(), fixedClock)
	events := appendN(t, ledger, 2)
	hash, err := ledger.LatestHash(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if hash != events[1].Hash {
		t.Fatalf("head = %s, want %s", hash, events[1].Hash)
	}
}

func TestReadRange(t *testing.T) {
	ledger := NewLedger(newMemStore(), fixedClock)
	appendN(t, ledger, 5)

	entries, err := ledger.ReadRange(context.Background(), 1, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 || entries[0].Seq != 1 || entries[2].Seq != 3 {
		t.Fatalf("unexpected range result: %+v", entries)
	}
}
