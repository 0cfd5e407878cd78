package eventsource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/rentchain-audit/internal/domain"
	"github.com/josh-kwaku/rentchain-audit/internal/logging"
)

// wireEvent is the record shape served by the remote ledger API.
type wireEvent struct {
	ID           *string             `json:"id"`
	Type         *string             `json:"type"`
	Date         *string             `json:"date"`
	TenantID     *string             `json:"tenantId"`
	TenantName   *string             `json:"tenantName"`
	PropertyName *string             `json:"propertyName"`
	Unit         *string             `json:"unit"`
	Amount       decimal.NullDecimal `json:"amount"`
	Method       *string             `json:"method"`
	Notes        *string             `json:"notes"`
}

type HTTPSource struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (s *HTTPSource) ListByTenant(ctx context.Context, tenantID string) ([]domain.LedgerEvent, error) {
	events, err := s.fetch(ctx, "/tenants/"+url.PathEscape(tenantID)+"/events")
	if err != nil {
		return nil, fmt.Errorf("ListByTenant: tenant %s: %w", tenantID, err)
	}
	return events, nil
}

func (s *HTTPSource) ListAll(ctx context.Context) ([]domain.LedgerEvent, error) {
	events, err := s.fetch(ctx, "/events")
	if err != nil {
		return nil, fmt.Errorf("ListAll: %w", err)
	}
	return events, nil
}

func (s *HTTPSource) fetch(ctx context.Context, path string) ([]domain.LedgerEvent, error) {
	log := logging.FromContext(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w: %w", domain.ErrUpstreamFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send: %w: %w", domain.ErrUpstreamFetch, err)
	}
	defer resp.Body.Close()

	log.Debug("ledger source response received",
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode == http.StatusNotFound {
		return []domain.LedgerEvent{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status %d: %s: %w", resp.StatusCode, string(body), domain.ErrUpstreamFetch)
	}

	var wire []wireEvent
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decode: %w: %w", domain.ErrUpstreamFetch, err)
	}

	events := make([]domain.LedgerEvent, len(wire))
	for i, w := range wire {
		events[i] = w.toDomain()
	}
	return events, nil
}

func (w wireEvent) toDomain() domain.LedgerEvent {
	ev := domain.LedgerEvent{
		ID:           w.ID,
		Type:         domain.EventTypeUnknown,
		Date:         w.Date,
		TenantID:     w.TenantID,
		TenantName:   w.TenantName,
		PropertyName: w.PropertyName,
		Unit:         w.Unit,
		Amount:       w.Amount,
		Method:       w.Method,
		Notes:        w.Notes,
	}
	if w.Type != nil && *w.Type != "" {
		ev.Type = *w.Type
	}
	if w.TenantName == nil || *w.TenantName == "" {
		ev.TenantName = domain.StringPtr(domain.UnknownTenantName)
	}
	if w.PropertyName == nil {
		ev.PropertyName = domain.StringPtr(domain.UnknownPropertyName)
	}
	return ev
}
