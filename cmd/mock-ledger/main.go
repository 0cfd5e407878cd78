package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/josh-kwaku/rentchain-audit/internal/logging"
)

// ledgerRecord keeps fixture fields verbatim so amounts and dates reach the
// client exactly as written in the file.
type ledgerRecord map[string]any

func main() {
	logging.Init("mock-ledger", "info", os.Getenv("APP_ENV"))

	path := envOr("MOCK_LEDGER_FILE", "cmd/mock-ledger/fixtures.json")
	addr := envOr("MOCK_LEDGER_ADDR", ":8081")

	records, err := loadRecords(path)
	if err != nil {
		slog.Error("failed to load ledger fixture", "file", path, "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /events", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, records)
	})
	mux.HandleFunc("GET /tenants/{tenantID}/events", func(w http.ResponseWriter, r *http.Request) {
		tenantID := r.PathValue("tenantID")
		out := make([]ledgerRecord, 0)
		for _, rec := range records {
			if id, _ := rec["tenantId"].(string); id == tenantID {
				out = append(out, rec)
			}
		}
		if len(out) == 0 {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "tenant not found"})
			return
		}
		writeJSON(w, http.StatusOK, out)
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	slog.Info("mock ledger started", "addr", addr, "records", len(records))
	if err := srv.ListenAndServe(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func loadRecords(path string) ([]ledgerRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loadRecords: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.UseNumber()

	var records []ledgerRecord
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("loadRecords: decode %s: %w", path, err)
	}
	return records, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
