package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const GenesisHash = "GENESIS"

type Block struct {
	Index        int
	EventID      *string
	Type         string
	TenantID     *string
	TenantName   *string
	PropertyName *string
	Unit         *string
	Amount       decimal.NullDecimal
	Method       *string
	Notes        *string

	// Timestamp records when the block was computed. It never enters a hash.
	Timestamp time.Time
	EventDate *string

	PayloadHash string
	PrevHash    string
	Hash        string
}
