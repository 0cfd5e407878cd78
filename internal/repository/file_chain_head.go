package repository

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/rentchain-audit/internal/domain"
)

const chainHeadFileName = "chain_heads.jsonl"

type fileChainHead struct {
	ID          uuid.UUID `json:"id"`
	TenantID    *string   `json:"tenantId"`
	BlockHeight int       `json:"blockHeight"`
	RootHash    string    `json:"rootHash"`
	EventID     *string   `json:"eventId"`
	Timestamp   time.Time `json:"timestamp"`
}

// FileChainHeadStore keeps the chain head log as one JSON record per line.
// Each record is written with a single append and fsynced before Append
// returns; a torn final line left by a crash is discarded on open.
type FileChainHeadStore struct {
	mu    sync.Mutex
	f     *os.File
	heads []domain.ChainHeadSnapshot
	// size is the byte length of the file up to the last complete record.
	size int64
}

func OpenFileChainHeadStore(dir string) (*FileChainHeadStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("OpenFileChainHeadStore: mkdir: %w", err)
	}

	path := filepath.Join(dir, chainHeadFileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("OpenFileChainHeadStore: open: %w", err)
	}

	heads, err := loadChainHeads(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("OpenFileChainHeadStore: %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("OpenFileChainHeadStore: stat: %w", err)
	}

	return &FileChainHeadStore{f: f, heads: heads, size: info.Size()}, nil
}

func loadChainHeads(f *os.File) ([]domain.ChainHeadSnapshot, error) {
	var (
		heads  []domain.ChainHeadSnapshot
		offset int64
	)
	r := bufio.NewReader(f)
	for {
		line, err := r.ReadBytes('\n')
		if errors.Is(err, io.EOF) {
			if len(line) > 0 {
				if terr := f.Truncate(offset); terr != nil {
					return nil, fmt.Errorf("truncate torn record: %w", terr)
				}
			}
			return heads, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}

		offset += int64(len(line))
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		var rec fileChainHead
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("decode record at byte %d: %w", offset, err)
		}
		heads = append(heads, rec.toDomain())
	}
}

func (s *FileChainHeadStore) Append(ctx context.Context, snap *domain.ChainHeadSnapshot) (*domain.ChainHeadSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("Append: %w", err)
	}

	rec := prepareSnapshot(snap)
	line, err := json.Marshal(toFileChainHead(rec))
	if err != nil {
		return nil, fmt.Errorf("Append: encode: %w", err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.dropTornTailLocked(); err != nil {
		return nil, fmt.Errorf("Append: tenant %s: %w: %w", rec.TenantID, domain.ErrStorage, err)
	}
	if _, err := s.f.Write(line); err != nil {
		return nil, fmt.Errorf("Append: tenant %s: %w: %w", rec.TenantID, domain.ErrStorage, s.rollbackLocked(err))
	}
	if err := s.f.Sync(); err != nil {
		return nil, fmt.Errorf("Append: sync: %w: %w", domain.ErrStorage, s.rollbackLocked(err))
	}
	s.size += int64(len(line))
	s.heads = append(s.heads, *rec)
	return rec, nil
}

// dropTornTailLocked cuts anything past the last complete record, such as the
// remains of a short write, so the next record starts on a clean line.
func (s *FileChainHeadStore) dropTornTailLocked() error {
	info, err := s.f.Stat()
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}
	if info.Size() == s.size {
		return nil
	}
	if err := s.f.Truncate(s.size); err != nil {
		return fmt.Errorf("truncate torn tail: %w", err)
	}
	return nil
}

func (s *FileChainHeadStore) rollbackLocked(cause error) error {
	if err := s.f.Truncate(s.size); err != nil {
		return errors.Join(cause, fmt.Errorf("truncate after failed write: %w", err))
	}
	return cause
}

func (s *FileChainHeadStore) Latest(_ context.Context) (*domain.ChainHeadSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latestLocked(func(domain.ChainHeadSnapshot) bool { return true }), nil
}

func (s *FileChainHeadStore) LatestForTenant(_ context.Context, tenantID string) (*domain.ChainHeadSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latestLocked(func(h domain.ChainHeadSnapshot) bool { return h.TenantID == tenantID }), nil
}

// latestLocked returns the newest matching head. Records are appended in
// write order, so on a timestamp tie the later line wins.
func (s *FileChainHeadStore) latestLocked(match func(domain.ChainHeadSnapshot) bool) *domain.ChainHeadSnapshot {
	var best *domain.ChainHeadSnapshot
	for i := range s.heads {
		h := s.heads[i]
		if !match(h) {
			continue
		}
		if best == nil || !h.Timestamp.Before(best.Timestamp) {
			best = &h
		}
	}
	return best
}

func (s *FileChainHeadStore) ListByTenant(_ context.Context, tenantID string, limit int) ([]domain.ChainHeadSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.ChainHeadSnapshot
	for i := len(s.heads) - 1; i >= 0; i-- {
		if s.heads[i].TenantID == tenantID {
			out = append(out, s.heads[i])
		}
	}
	sortNewestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func sortNewestFirst(heads []domain.ChainHeadSnapshot) {
	slices.SortStableFunc(heads, func(a, b domain.ChainHeadSnapshot) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
}

func (s *FileChainHeadStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.Close()
}

func toFileChainHead(s *domain.ChainHeadSnapshot) fileChainHead {
	rec := fileChainHead{
		ID:          s.ID,
		BlockHeight: s.BlockHeight,
		RootHash:    s.RootHash,
		EventID:     s.EventID,
		Timestamp:   s.Timestamp,
	}
	if s.HasTenant() {
		rec.TenantID = domain.StringPtr(s.TenantID)
	}
	return rec
}

func (rec fileChainHead) toDomain() domain.ChainHeadSnapshot {
	return domain.ChainHeadSnapshot{
		ID:          rec.ID,
		TenantID:    domain.Deref(rec.TenantID),
		BlockHeight: rec.BlockHeight,
		RootHash:    rec.RootHash,
		EventID:     rec.EventID,
		Timestamp:   rec.Timestamp.UTC(),
	}
}
