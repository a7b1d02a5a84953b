// Package counters accumulates per-user XP and contribution increments in
// memory and persists them on a fixed interval. Increments between flushes
// land in the next cycle, so a flush racing an increment drifts by at most
// that one increment; the final flush on shutdown drains whatever is left.
package counters

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/stanbotdev/stanbot/internal/observability"
	"github.com/stanbotdev/stanbot/internal/repo"
)

// Tracker holds the pending per-user increments. Safe for concurrent use.
type Tracker struct {
	db *gorm.DB

	mu      sync.Mutex
	xp      map[int64]int64
	contrib map[int64]int64
}

// NewTracker constructs a Tracker flushing into db.
func NewTracker(db *gorm.DB) *Tracker {
	return &Tracker{
		db:      db,
		xp:      make(map[int64]int64),
		contrib: make(map[int64]int64),
	}
}

// AddXP queues an XP increment for userID.
func (t *Tracker) AddXP(userID, delta int64) {
	t.mu.Lock()
	t.xp[userID] += delta
	t.mu.Unlock()
}

// AddContribution queues a contribution increment for userID.
func (t *Tracker) AddContribution(userID, delta int64) {
	t.mu.Lock()
	t.contrib[userID] += delta
	t.mu.Unlock()
}

// Flush drains the pending increments and writes them to storage. Each
// user's write is independent: a failed write is logged and the increment
// is re-queued for the next cycle rather than lost.
func (t *Tracker) Flush(ctx context.Context) error {
	t.mu.Lock()
	xp := t.xp
	contrib := t.contrib
	t.xp = make(map[int64]int64)
	t.contrib = make(map[int64]int64)
	t.mu.Unlock()

	var firstErr error
	for userID, delta := range xp {
		if err := t.applyXP(ctx, userID, delta); err != nil {
			log.Error().Err(err).Int64("user_id", userID).Msg("xp flush failed")
			t.AddXP(userID, delta)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	for userID, delta := range contrib {
		if err := t.applyContribution(ctx, userID, delta); err != nil {
			log.Error().Err(err).Int64("user_id", userID).Msg("contribution flush failed")
			t.AddContribution(userID, delta)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	observability.ObserveFlush(firstErr == nil)
	return firstErr
}

func (t *Tracker) applyXP(ctx context.Context, userID, delta int64) error {
	if err := repo.EnsureUser(ctx, t.db, userID); err != nil {
		return err
	}
	return repo.AddUserXP(ctx, t.db, userID, delta)
}

func (t *Tracker) applyContribution(ctx context.Context, userID, delta int64) error {
	if err := repo.EnsureUser(ctx, t.db, userID); err != nil {
		return err
	}
	return repo.AddUserContribution(ctx, t.db, userID, delta)
}

// Run flushes on every tick of interval until ctx is cancelled, then runs
// one final drain so shutdown does not drop increments.
func (t *Tracker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Final drain with a fresh context; ctx is already dead.
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = t.Flush(flushCtx)
			cancel()
			return
		case <-ticker.C:
			_ = t.Flush(ctx)
		}
	}
}
