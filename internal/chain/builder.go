// Package chain turns ledger events into a deterministic, hash-linked list of
// blocks and checks such lists for internal consistency.
//
// Building never performs I/O and never fails. Block hashes depend only on the
// sorted event set; the computed-at timestamp on each block is informational.
package chain

import (
	"time"

	"github.com/josh-kwaku/rentchain-audit/internal/domain"
)

type Builder struct {
	now func() time.Time
}

func NewBuilder() *Builder {
	return &Builder{now: func() time.Time { return time.Now().UTC() }}
}

// NewBuilderWithClock is used where block timestamps must be reproducible.
func NewBuilderWithClock(now func() time.Time) *Builder {
	return &Builder{now: now}
}

var defaultBuilder = NewBuilder()

// Build is Builder.Build with the wall clock.
func Build(events []domain.LedgerEvent) []domain.Block {
	return defaultBuilder.Build(events)
}

// Build sorts events by (business date, id) and links them into blocks. An
// empty input yields an empty chain; no standalone genesis block is emitted.
func (b *Builder) Build(events []domain.LedgerEvent) []domain.Block {
	if len(events) == 0 {
		return []domain.Block{}
	}

	sorted := sortEvents(events)
	blocks := make([]domain.Block, 0, len(sorted))
	prevHash := domain.GenesisHash

	for index, ev := range sorted {
		payloadHash := PayloadHash(ev)
		hash := LinkHash(index, payloadHash, prevHash)

		blocks = append(blocks, domain.Block{
			Index:        index,
			EventID:      ev.ID,
			Type:         ev.Type,
			TenantID:     ev.TenantID,
			TenantName:   ev.TenantName,
			PropertyName: ev.PropertyName,
			Unit:         ev.Unit,
			Amount:       ev.Amount,
			Method:       ev.Method,
			Notes:        ev.Notes,
			Timestamp:    b.now(),
			EventDate:    ev.Date,
			PayloadHash:  payloadHash,
			PrevHash:     prevHash,
			Hash:         hash,
		})
		prevHash = hash
	}

	return blocks
}

// Head returns the last block of a chain.
func Head(blocks []domain.Block) (domain.Block, bool) {
	if len(blocks) == 0 {
		return domain.Block{}, false
	}
	return blocks[len(blocks)-1], true
}
