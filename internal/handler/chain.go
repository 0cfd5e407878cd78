package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/josh-kwaku/rentchain-audit/internal/domain"
	"github.com/josh-kwaku/rentchain-audit/internal/logging"
)

const (
	msgNoSnapshots      = "No chain head snapshots exist yet."
	msgNoTenantSnapshot = "No chain head snapshots exist yet for this tenant."
	msgMissingTenant    = "Latest chain head snapshot does not include tenantId. Create a new snapshot with updated schema."
	msgNoEventsTenant   = "No ledger events found for tenant referenced by the latest chain head."
	msgEmptyChain       = "Failed to build blockchain for the referenced tenant (no events after normalization)."
	msgHashMismatch     = "Blockchain hash mismatch"
	msgHeightMismatch   = "Blockchain height mismatch"
	msgVerified         = "Blockchain integrity verified for latest chain head tenant."
	msgVerifiedTenant   = "Blockchain integrity verified for tenant."
	msgVerificationFail = "Verification failed"
)

type chainExplorer interface {
	GlobalChain(ctx context.Context) ([]domain.Block, error)
	TenantChain(ctx context.Context, tenantID string) ([]domain.Block, error)
	ChainHeads(ctx context.Context, tenantID string, limit int) ([]domain.ChainHeadSnapshot, error)
}

type chainVerifier interface {
	Verify(ctx context.Context) (*domain.VerificationResult, error)
	VerifyTenant(ctx context.Context, tenantID string) (*domain.VerificationResult, error)
}

type tenantCheckpointer interface {
	Checkpoint(ctx context.Context, tenantID string) (*domain.ChainHeadSnapshot, error)
}

type ChainHandler struct {
	explorer    chainExplorer
	verifier    chainVerifier
	checkpoints tenantCheckpointer
}

func NewChainHandler(explorer chainExplorer, verifier chainVerifier, checkpoints tenantCheckpointer) *ChainHandler {
	return &ChainHandler{explorer: explorer, verifier: verifier, checkpoints: checkpoints}
}

type verifyResponse struct {
	OK             bool              `json:"ok"`
	Message        string            `json:"message,omitempty"`
	Reason         string            `json:"reason,omitempty"`
	Expected       any               `json:"expected,omitempty"`
	Actual         any               `json:"actual,omitempty"`
	TenantID       string            `json:"tenantId,omitempty"`
	BlockHeight    *int              `json:"blockHeight,omitempty"`
	RootHash       string            `json:"rootHash,omitempty"`
	StoredSnapshot *snapshotResponse `json:"storedSnapshot,omitempty"`
	Error          string            `json:"error,omitempty"`
}

func (h *ChainHandler) GetBlockchain(w http.ResponseWriter, r *http.Request) {
	blocks, err := h.explorer.GlobalChain(r.Context())
	if err != nil {
		respondChainError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, toChainResponse(blocks))
}

func (h *ChainHandler) GetTenantChain(w http.ResponseWriter, r *http.Request) {
	blocks, err := h.explorer.TenantChain(r.Context(), r.PathValue("tenantID"))
	if err != nil {
		respondChainError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, toChainResponse(blocks))
}

func (h *ChainHandler) VerifyBlockchain(w http.ResponseWriter, r *http.Request) {
	res, err := h.verifier.Verify(r.Context())
	if err != nil {
		respondVerifyError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, toVerifyResponse(res, msgVerified))
}

func (h *ChainHandler) VerifyTenant(w http.ResponseWriter, r *http.Request) {
	res, err := h.verifier.VerifyTenant(r.Context(), r.PathValue("tenantID"))
	if err != nil {
		respondVerifyError(w, r, err)
		return
	}
	body := toVerifyResponse(res, msgVerifiedTenant)
	body.TenantID = res.TenantID
	if res.Outcome == domain.OutcomeNoSnapshotsYet {
		body.Message = msgNoTenantSnapshot
	}
	RespondJSON(w, http.StatusOK, body)
}

func (h *ChainHandler) Checkpoint(w http.ResponseWriter, r *http.Request) {
	snap, err := h.checkpoints.Checkpoint(r.Context(), r.PathValue("tenantID"))
	if err != nil {
		logging.FromContext(r.Context()).Error("checkpoint failed", "error", err)
		RespondDomainError(w, err)
		return
	}
	if snap == nil {
		RespondSuccess(w, http.StatusOK, map[string]any{"snapshot": nil})
		return
	}
	RespondSuccess(w, http.StatusCreated, map[string]any{"snapshot": toSnapshotResponse(snap)})
}

func (h *ChainHandler) ListChainHeads(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			RespondValidationError(w, []FieldError{{Field: "limit", Message: "must be a positive integer"}})
			return
		}
		limit = n
	}

	tenantID := r.PathValue("tenantID")
	heads, err := h.explorer.ChainHeads(r.Context(), tenantID, limit)
	if err != nil {
		logging.FromContext(r.Context()).Error("list chain heads failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	snapshots := make([]*snapshotResponse, len(heads))
	for i := range heads {
		snapshots[i] = toSnapshotResponse(&heads[i])
	}
	RespondSuccess(w, http.StatusOK, map[string]any{
		"tenantId":  tenantID,
		"snapshots": snapshots,
	})
}

func toVerifyResponse(res *domain.VerificationResult, verifiedMsg string) verifyResponse {
	snap := toSnapshotResponse(res.Snapshot)

	switch res.Outcome {
	case domain.OutcomeNoSnapshotsYet:
		return verifyResponse{OK: true, Message: msgNoSnapshots}
	case domain.OutcomeMissingTenantReference:
		return verifyResponse{Reason: msgMissingTenant, StoredSnapshot: snap}
	case domain.OutcomeNoEventsForTenant:
		return verifyResponse{Reason: msgNoEventsTenant, TenantID: res.TenantID, StoredSnapshot: snap}
	case domain.OutcomeEmptyChain:
		return verifyResponse{Reason: msgEmptyChain, TenantID: res.TenantID, StoredSnapshot: snap}
	case domain.OutcomeHashMismatch:
		return verifyResponse{
			Reason:         msgHashMismatch,
			Expected:       res.ExpectedHash,
			Actual:         res.ActualHash,
			TenantID:       res.TenantID,
			StoredSnapshot: snap,
		}
	case domain.OutcomeHeightMismatch:
		return verifyResponse{
			Reason:         msgHeightMismatch,
			Expected:       res.ExpectedHeight,
			Actual:         res.ActualHeight,
			TenantID:       res.TenantID,
			StoredSnapshot: snap,
		}
	default:
		height := res.BlockHeight
		return verifyResponse{
			OK:          true,
			Message:     verifiedMsg,
			TenantID:    res.TenantID,
			BlockHeight: &height,
			RootHash:    res.RootHash,
		}
	}
}

func respondChainError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := appErrorFor(err)
	logging.FromContext(r.Context()).Error("chain build failed", "error", err, "code", appErr.Code)
	RespondJSON(w, appErr.Status, map[string]string{"error": appErr.Message})
}

func respondVerifyError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := appErrorFor(err)
	logging.FromContext(r.Context()).Error("chain verification failed", "error", err, "code", appErr.Code)
	msg := appErr.Message
	if appErr == ErrInternalError {
		msg = msgVerificationFail
	}
	RespondJSON(w, appErr.Status, verifyResponse{Error: msg})
}
