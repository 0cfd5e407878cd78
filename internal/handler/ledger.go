package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/rentchain-audit/internal/logging"
	"github.com/josh-kwaku/rentchain-audit/internal/service"
)

type ledgerRecorder interface {
	RecordEvent(ctx context.Context, tenantID string, req service.RecordEventRequest) (*service.RecordEventResult, error)
}

type LedgerHandler struct {
	ledger ledgerRecorder
}

func NewLedgerHandler(ledger ledgerRecorder) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

type recordEventRequest struct {
	ID     *string         `json:"id"`
	Type   string          `json:"type"`
	Date   *string         `json:"date"`
	Amount json.RawMessage `json:"amount"`
	Method *string         `json:"method"`
	Notes  *string         `json:"notes"`
}

func (req recordEventRequest) validate() (service.RecordEventRequest, []FieldError) {
	var errs []FieldError

	if strings.TrimSpace(req.Type) == "" {
		errs = append(errs, FieldError{Field: "type", Message: "required"})
	}
	if req.ID != nil && strings.TrimSpace(*req.ID) == "" {
		errs = append(errs, FieldError{Field: "id", Message: "must not be blank"})
	}

	var amount decimal.NullDecimal
	if raw := bytes.TrimSpace(req.Amount); len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		if err := amount.Decimal.UnmarshalJSON(raw); err != nil {
			errs = append(errs, FieldError{Field: "amount", Message: "must be a decimal number"})
		} else {
			amount.Valid = true
		}
	}

	return service.RecordEventRequest{
		ID:     req.ID,
		Type:   req.Type,
		Date:   req.Date,
		Amount: amount,
		Method: req.Method,
		Notes:  req.Notes,
	}, errs
}

func (h *LedgerHandler) RecordEvent(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var body recordEventRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&body); err != nil {
		log.Warn("failed to parse ledger event", "error", err)
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	req, fields := body.validate()
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	res, err := h.ledger.RecordEvent(r.Context(), r.PathValue("tenantID"), req)
	if err != nil {
		log.Error("failed to record ledger event", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, map[string]any{
		"event":      toEventResponse(res.Event),
		"checkpoint": toSnapshotResponse(res.Checkpoint),
	})
}
