package handler

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/rentchain-audit/internal/domain"
)

// isoMillis matches the millisecond ISO-8601 form ledger clients expect.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// Absent optional fields are encoded as explicit nulls, never omitted.
type blockResponse struct {
	Index        int             `json:"index"`
	Timestamp    string          `json:"timestamp"`
	EventID      *string         `json:"eventId"`
	Type         string          `json:"type"`
	TenantID     *string         `json:"tenantId"`
	TenantName   *string         `json:"tenantName"`
	PropertyName *string         `json:"propertyName"`
	Unit         *string         `json:"unit"`
	Amount       json.RawMessage `json:"amount"`
	Method       *string         `json:"method"`
	Notes        *string         `json:"notes"`
	EventDate    *string         `json:"eventDate"`
	PayloadHash  string          `json:"payloadHash"`
	PrevHash     string          `json:"prevHash"`
	Hash         string          `json:"hash"`
}

type chainResponse struct {
	Length int             `json:"length"`
	Blocks []blockResponse `json:"blocks"`
}

type snapshotResponse struct {
	ID          string  `json:"id"`
	TenantID    *string `json:"tenantId"`
	BlockHeight int     `json:"blockHeight"`
	RootHash    string  `json:"rootHash"`
	EventID     *string `json:"eventId"`
	Timestamp   string  `json:"timestamp"`
}

type eventResponse struct {
	ID           *string         `json:"id"`
	Type         string          `json:"type"`
	Date         *string         `json:"date"`
	TenantID     *string         `json:"tenantId"`
	TenantName   *string         `json:"tenantName"`
	PropertyName *string         `json:"propertyName"`
	Unit         *string         `json:"unit"`
	Amount       json.RawMessage `json:"amount"`
	Method       *string         `json:"method"`
	Notes        *string         `json:"notes"`
}

// amountJSON renders a decimal as a bare JSON number, or null when absent.
func amountJSON(d decimal.NullDecimal) json.RawMessage {
	if !d.Valid {
		return json.RawMessage("null")
	}
	return json.RawMessage(d.Decimal.String())
}

func formatTime(t time.Time) string {
	return t.UTC().Format(isoMillis)
}

func toChainResponse(blocks []domain.Block) chainResponse {
	out := chainResponse{Length: len(blocks), Blocks: make([]blockResponse, len(blocks))}
	for i, b := range blocks {
		out.Blocks[i] = blockResponse{
			Index:        b.Index,
			Timestamp:    formatTime(b.Timestamp),
			EventID:      b.EventID,
			Type:         b.Type,
			TenantID:     b.TenantID,
			TenantName:   b.TenantName,
			PropertyName: b.PropertyName,
			Unit:         b.Unit,
			Amount:       amountJSON(b.Amount),
			Method:       b.Method,
			Notes:        b.Notes,
			EventDate:    b.EventDate,
			PayloadHash:  b.PayloadHash,
			PrevHash:     b.PrevHash,
			Hash:         b.Hash,
		}
	}
	return out
}

func toSnapshotResponse(s *domain.ChainHeadSnapshot) *snapshotResponse {
	if s == nil {
		return nil
	}
	out := &snapshotResponse{
		ID:          s.ID.String(),
		BlockHeight: s.BlockHeight,
		RootHash:    s.RootHash,
		EventID:     s.EventID,
		Timestamp:   formatTime(s.Timestamp),
	}
	if s.HasTenant() {
		out.TenantID = domain.StringPtr(s.TenantID)
	}
	return out
}

func toEventResponse(ev domain.LedgerEvent) eventResponse {
	return eventResponse{
		ID:           ev.ID,
		Type:         ev.Type,
		Date:         ev.Date,
		TenantID:     ev.TenantID,
		TenantName:   ev.TenantName,
		PropertyName: ev.PropertyName,
		Unit:         ev.Unit,
		Amount:       amountJSON(ev.Amount),
		Method:       ev.Method,
		Notes:        ev.Notes,
	}
}
