package chain

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/josh-kwaku/rentchain-audit/internal/domain"
)

// Accepted business date layouts. Zone-less values are read as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// sortKey returns the event's business date in unix milliseconds, or 0 when
// the date is missing or cannot be parsed.
func sortKey(date *string) int64 {
	if date == nil {
		return 0
	}
	s := strings.TrimSpace(*date)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixMilli()
		}
	}
	return 0
}

type keyedEvent struct {
	at    int64
	id    string
	event domain.LedgerEvent
}

func sortEvents(events []domain.LedgerEvent) []domain.LedgerEvent {
	keyed := make([]keyedEvent, len(events))
	for i, ev := range events {
		keyed[i] = keyedEvent{at: sortKey(ev.Date), id: domain.Deref(ev.ID), event: ev}
	}

	slices.SortStableFunc(keyed, func(a, b keyedEvent) int {
		if c := cmp.Compare(a.at, b.at); c != 0 {
			return c
		}
		return strings.Compare(a.id, b.id)
	})

	out := make([]domain.LedgerEvent, len(keyed))
	for i, k := range keyed {
		out[i] = k.event
	}
	return out
}
