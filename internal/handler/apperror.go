package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrInvalidRequest        = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed      = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrResourceNotFound      = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrInternalError         = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}
	ErrMissingIdempotencyKey = &AppError{http.StatusBadRequest, "MISSING_IDEMPOTENCY_KEY", "Idempotency-Key header is required"}
	ErrIdempotencyConflict   = &AppError{http.StatusConflict, "IDEMPOTENCY_CONFLICT", "Idempotency key already used with a different request"}
	ErrRateLimited           = &AppError{http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests, slow down"}

	ErrMissingTenantID  = &AppError{http.StatusBadRequest, "MISSING_TENANT_ID", "Tenant id is required"}
	ErrInvalidAmount    = &AppError{http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be a decimal number"}
	ErrDuplicateEvent   = &AppError{http.StatusConflict, "DUPLICATE_EVENT", "A ledger event with this id already exists"}
	ErrUpstreamFetch    = &AppError{http.StatusInternalServerError, "UPSTREAM_FETCH_FAILED", "Ledger events could not be fetched"}
	ErrUpstreamDown     = &AppError{http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE", "Ledger event source is unavailable, retry later"}
	ErrStorageFailure   = &AppError{http.StatusInternalServerError, "STORAGE_FAILURE", "Chain head storage is unavailable"}
	ErrCheckpointBusy   = &AppError{http.StatusServiceUnavailable, "CHECKPOINT_BUSY", "Another checkpoint for this tenant is in progress, retry later"}
)
