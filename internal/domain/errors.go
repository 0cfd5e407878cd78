package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrMissingTenantID     = errors.New("tenant id is required")
	ErrMissingEventType    = errors.New("event type is required")
	ErrInvalidAmount       = errors.New("amount must be a decimal number")
	ErrDuplicateEvent      = errors.New("ledger event already exists")
	ErrUpstreamFetch       = errors.New("ledger event fetch failed")
	ErrUpstreamUnavailable = errors.New("ledger event source unavailable")
	ErrStorage             = errors.New("chain head storage failure")
	ErrLockNotAcquired     = errors.New("tenant checkpoint lock not acquired")
)
