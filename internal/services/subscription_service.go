// Package services – SubscriptionService
//
// This file implements subscription management for the feed fan-out: which
// destination channels receive events from which external source accounts.
// Duplicate subscribes are detected through the database unique constraint,
// never a read-then-write pre-check, and reported as the soft
// ErrAlreadySubscribed outcome.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/stanbotdev/stanbot/internal/domain"
	"github.com/stanbotdev/stanbot/internal/repo"
)

// SubscriptionService manages (source, channel) subscription pairs and the
// followed-account roster.
type SubscriptionService struct {
	// DB is the database handle used for all subscription operations.
	DB *gorm.DB
}

// NewSubscriptionService constructs a SubscriptionService.
func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{DB: db}
}

// EnsureAccount records a followed account for sourceID if it is not known
// yet; re-following is a no-op that returns the existing row.
func (s *SubscriptionService) EnsureAccount(ctx context.Context, sourceID, handle string) (*domain.Account, error) {
	a, err := repo.GetAccountBySource(ctx, s.DB, sourceID)
	if err == nil {
		return a, nil
	}
	if !isNotFound(err) {
		return nil, err
	}
	a, err = repo.CreateAccount(ctx, s.DB, sourceID, handle)
	if err != nil {
		if isDuplicate(err) {
			// Lost a race with a concurrent follow; the row exists now.
			return repo.GetAccountBySource(ctx, s.DB, sourceID)
		}
		return nil, err
	}
	return a, nil
}

// Subscribe registers channelID as a destination for sourceID. The channel
// is recorded in the channel roster as a side effect. Returns
// ErrAlreadySubscribed when the pair already exists.
func (s *SubscriptionService) Subscribe(ctx context.Context, sourceID string, channelID int64) error {
	if err := repo.EnsureChannel(ctx, s.DB, channelID); err != nil {
		return err
	}
	if err := repo.CreateSubscription(ctx, s.DB, sourceID, channelID); err != nil {
		if isDuplicate(err) {
			return ErrAlreadySubscribed
		}
		return err
	}
	return nil
}

// Unsubscribe removes the (source, channel) pair. Returns ErrNotSubscribed
// when the pair did not exist.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, sourceID string, channelID int64) error {
	if err := repo.DeleteSubscription(ctx, s.DB, sourceID, channelID); err != nil {
		if isNotFound(err) {
			return ErrNotSubscribed
		}
		return err
	}
	return nil
}

// DestinationsFor returns the channel ids subscribed to sourceID, ordered
// ascending. An empty slice means the event has nobody to go to; rows
// pointing at channels that have since disappeared are included as-is
// (dangling subscriptions are tolerated, delivery simply fails for them).
func (s *SubscriptionService) DestinationsFor(ctx context.Context, sourceID string) ([]int64, error) {
	return repo.ChannelsForSource(ctx, s.DB, sourceID)
}

// Sources returns every followed source id, for the stream follow filter.
func (s *SubscriptionService) Sources(ctx context.Context) ([]string, error) {
	return repo.ListSourceIDs(ctx, s.DB)
}

// All returns every subscription pair, ordered by channel then source.
func (s *SubscriptionService) All(ctx context.Context) ([]domain.Subscription, error) {
	return repo.ListSubscriptions(ctx, s.DB)
}

// SetAuditing flips the moderation-audit flag on a registered channel.
func (s *SubscriptionService) SetAuditing(ctx context.Context, channelID int64, auditing bool) error {
	if err := repo.EnsureChannel(ctx, s.DB, channelID); err != nil {
		return err
	}
	return repo.SetChannelAuditing(ctx, s.DB, channelID, auditing)
}

// AuditingChannels returns the channels that receive moderation audit
// messages.
func (s *SubscriptionService) AuditingChannels(ctx context.Context) ([]int64, error) {
	return repo.AuditingChannels(ctx, s.DB)
}
