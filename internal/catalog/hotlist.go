package catalog

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/nbmusic/remote/internal/models"
)

// Broadcaster publishes an event to every registered push connection.
type Broadcaster interface {
	Broadcast(eventType string, data any)
}

// HotList is a TTL-bound cache of popular catalog entries. The cache is
// replaced wholesale on each successful refresh; a failed refresh keeps the
// prior entries, so a transient upstream failure never empties the list.
type HotList struct {
	source    Source
	ttl       time.Duration
	keyword   string
	announcer Broadcaster

	mu          sync.Mutex
	entries     []models.CatalogEntry
	lastRefresh time.Time
	everLoaded  bool
}

// NewHotList creates a HotList refreshing via source with the default
// discovery keyword. announcer may be nil.
func NewHotList(source Source, ttl time.Duration, keyword string, announcer Broadcaster) *HotList {
	return &HotList{
		source:    source,
		ttl:       ttl,
		keyword:   keyword,
		announcer: announcer,
	}
}

// Get returns one page of hot entries, refreshing first when a keyword
// override is given, the cache has never loaded, or the TTL has expired.
// Refresh failure falls back to the prior entries; an error is returned only
// when no successful fetch has ever happened.
func (h *HotList) Get(ctx context.Context, limit, page int, keyword string) ([]models.CatalogEntry, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	if page < 1 {
		page = 1
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if keyword != "" || !h.everLoaded || time.Since(h.lastRefresh) > h.ttl {
		if err := h.refreshLocked(ctx, keyword); err != nil {
			if !h.everLoaded {
				return nil, err
			}
			slog.Warn("hot-list refresh failed, serving stale cache",
				slog.Time("last_refresh", h.lastRefresh),
				slog.Any("error", err))
		}
	}

	start := (page - 1) * limit
	if start >= len(h.entries) {
		return []models.CatalogEntry{}, nil
	}
	end := start + limit
	if end > len(h.entries) {
		end = len(h.entries)
	}

	out := make([]models.CatalogEntry, end-start)
	copy(out, h.entries[start:end])
	return out, nil
}

// Refresh fetches the hot list immediately, replacing the cache on success.
// Used by the startup fetch and the cron schedule.
func (h *HotList) Refresh(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.refreshLocked(ctx, "")
}

// refreshLocked fetches and swaps in a new entry list. Caller holds h.mu.
func (h *HotList) refreshLocked(ctx context.Context, keyword string) error {
	if keyword == "" {
		keyword = h.keyword
	}

	entries, err := h.source.Search(ctx, keyword, 1)
	if err != nil {
		return err
	}

	// Stable keeps the upstream order for entries with equal play counts.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].PlayCount > entries[j].PlayCount
	})

	h.entries = entries
	h.lastRefresh = time.Now()
	h.everLoaded = true

	slog.Info("hot-list cache refreshed",
		slog.String("keyword", keyword),
		slog.Int("count", len(entries)))

	if h.announcer != nil {
		h.announcer.Broadcast(models.EventHotSongsUpdated, models.HotSongsUpdate{
			Count:     len(entries),
			UpdatedAt: h.lastRefresh.UTC(),
		})
	}
	return nil
}

// Count returns the number of cached entries.
func (h *HotList) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// LastRefresh returns the time of the last successful refresh, zero if none.
func (h *HotList) LastRefresh() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastRefresh
}
