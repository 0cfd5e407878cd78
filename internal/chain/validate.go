package chain

import (
	"errors"
	"fmt"

	"github.com/josh-kwaku/rentchain-audit/internal/domain"
)

var (
	ErrBrokenGenesis   = errors.New("first block does not reference genesis")
	ErrIndexOutOfOrder = errors.New("block index out of sequence")
	ErrBrokenLink      = errors.New("prev hash does not match previous block")
	ErrPayloadMismatch = errors.New("payload hash does not match block fields")
	ErrHashMismatch    = errors.New("block hash does not match linkage")
)

// Validate re-derives every hash of a chain from the blocks' own fields. It
// catches blocks edited after they were built; it cannot tell whether the
// chain still reflects the ledger, which is what verification is for.
func Validate(blocks []domain.Block) error {
	prevHash := domain.GenesisHash
	for i, b := range blocks {
		if b.Index != i {
			return fmt.Errorf("Validate: block %d has index %d: %w", i, b.Index, ErrIndexOutOfOrder)
		}
		if b.PrevHash != prevHash {
			if i == 0 {
				return fmt.Errorf("Validate: %w", ErrBrokenGenesis)
			}
			return fmt.Errorf("Validate: block %d: %w", i, ErrBrokenLink)
		}
		if got := PayloadHash(eventFromBlock(b)); got != b.PayloadHash {
			return fmt.Errorf("Validate: block %d: %w", i, ErrPayloadMismatch)
		}
		if got := LinkHash(b.Index, b.PayloadHash, b.PrevHash); got != b.Hash {
			return fmt.Errorf("Validate: block %d: %w", i, ErrHashMismatch)
		}
		prevHash = b.Hash
	}
	return nil
}

func eventFromBlock(b domain.Block) domain.LedgerEvent {
	return domain.LedgerEvent{
		ID:           b.EventID,
		Type:         b.Type,
		Date:         b.EventDate,
		TenantID:     b.TenantID,
		TenantName:   b.TenantName,
		PropertyName: b.PropertyName,
		Unit:         b.Unit,
		Amount:       b.Amount,
		Method:       b.Method,
		Notes:        b.Notes,
	}
}
