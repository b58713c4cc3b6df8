package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"custodia/internal/domain"
)

// Ledger owns the append-only hash chain. It is the single serialization
// point: sequence assignment, prev-hash computation and the persisted write
// happen inside one short critical section, so two concurrent appends can
// never observe the same latest state. Content hashing and other slow caller
// work must happen before Append is called.
type Ledger struct {
	mu     sync.Mutex
	store  CustodyStore
	clock  Clock
	halted bool
}

func NewLedger(store CustodyStore, clock Clock) *Ledger {
	if clock == nil {
		clock = time.Now
	}
	return &Ledger{store: store, clock: clock}
}

// Append assigns the next sequence number and prev-hash, hashes the entry
// and persists it together with the optional new artifact version. Before
// accepting a write it recomputes the stored head's hash; a mismatch means
// the persisted chain was altered out-of-band, and the ledger fails closed:
// this and every later append return domain.ErrLedgerCorrupt until an
// operator intervenes.
func (l *Ledger) Append(ctx context.Context, event domain.CustodyEvent, artifact *domain.EvidenceArtifact) (domain.CustodyEvent, error) {
	if l == nil || l.store == nil {
		return domain.CustodyEvent{}, errors.New("ledger store required")
	}
	if event.Kind == "" || event.ActorID == "" || event.ArtifactID == "" {
		return domain.CustodyEvent{}, errors.New("custody event missing required fields")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.halted {
		return domain.CustodyEvent{}, fmt.Errorf("%w: appends halted pending operator intervention", domain.ErrLedgerCorrupt)
	}

	last, err := l.store.LastEntry(ctx)
	if err != nil {
		return domain.CustodyEvent{}, fmt.Errorf("read ledger head: %w", err)
	}

	event.Seq = 0
	event.PrevHash = domain.GenesisHash
	if last != nil {
		recomputed, err := ComputeEntryHash(*last)
		if err != nil {
			return domain.CustodyEvent{}, fmt.Errorf("recompute head hash: %w", err)
		}
		if recomputed != last.Hash {
			l.halted = true
			return domain.CustodyEvent{}, fmt.Errorf("%w: head entry %d stored hash does not recompute", domain.ErrLedgerCorrupt, last.Seq)
		}
		event.Seq = last.Seq + 1
		event.PrevHash = last.Hash
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = l.clock().UTC()
	} else {
		event.Timestamp = event.Timestamp.UTC()
	}

	hash, err := ComputeEntryHash(event)
	if err != nil {
		return domain.CustodyEvent{}, err
	}
	event.Hash = hash

	if err := l.store.AppendEntry(ctx, event, artifact); err != nil {
		return domain.CustodyEvent{}, err
	}
	return event, nil
}

// LatestHash returns the head entry's hash, or the genesis constant when the
// ledger is empty.
func (l *Ledger) LatestHash(ctx context.Context) (domain.Digest, error) {
	last, err := l.store.LastEntry(ctx)
	if err != nil {
		return "", err
	}
	if last == nil {
		return domain.GenesisHash, nil
	}
	return last.Hash, nil
}

// ReadRange returns entries with from <= seq <= to in order. Reads do not
// take the append lock.
func (l *Ledger) ReadRange(ctx context.Context, from, to uint64) ([]domain.CustodyEvent, error) {
	return l.store.EntryRange(ctx, from, to)
}
