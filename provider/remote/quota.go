package remote

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/homescout/marketdata/cache"
)

// quotaKeyPrefix namespaces the persisted per-month counters in the meta table.
const quotaKeyPrefix = "remote_quota:"

// quotaGuard enforces the free-tier monthly call allowance. Counters persist
// in the cache settings store so the budget survives restarts; without one
// (degraded cache) it falls back to in-process counting.
type quotaGuard struct {
	settings cache.SettingsStore
	limit    int
	now      func() time.Time

	mu    sync.Mutex
	local map[string]int
}

func newQuotaGuard(settings cache.SettingsStore, limit int) *quotaGuard {
	return &quotaGuard{
		settings: settings,
		limit:    limit,
		now:      time.Now,
		local:    make(map[string]int),
	}
}

func (q *quotaGuard) key() string {
	return quotaKeyPrefix + q.now().UTC().Format("2006-01")
}

// Used returns the number of calls recorded for the current month.
func (q *quotaGuard) Used(ctx context.Context) int {
	key := q.key()
	if q.settings != nil {
		if raw, ok, err := q.settings.Setting(ctx, key); err == nil && ok {
			if n, err := strconv.Atoi(raw); err == nil {
				return n
			}
		}
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.local[key]
}

// Allow reports whether another call fits in this month's budget.
func (q *quotaGuard) Allow(ctx context.Context) bool {
	return q.Used(ctx) < q.limit
}

// Record counts one call against the current month.
func (q *quotaGuard) Record(ctx context.Context) {
	key := q.key()
	used := q.Used(ctx) + 1

	q.mu.Lock()
	q.local[key] = used
	q.mu.Unlock()

	if q.settings != nil {
		_ = q.settings.SetSetting(ctx, key, strconv.Itoa(used))
	}
}
