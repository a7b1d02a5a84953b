// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for stream
// accounts, subscriptions, and destination channels.
//
// Subscription uniqueness relies on the (source_id, channel_id) unique
// index: CreateSubscription attempts the insert and lets a duplicate
// surface as a raw constraint error, which the service layer translates
// into ErrAlreadySubscribed (insert-then-catch, never a pre-check).
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stanbotdev/stanbot/internal/domain"
)

// CreateAccount inserts a followed account row. Duplicate source ids
// surface as a raw constraint error.
func CreateAccount(ctx context.Context, db *gorm.DB, sourceID, handle string) (*domain.Account, error) {
	a := &domain.Account{
		ID:        uuid.NewString(),
		SourceID:  sourceID,
		Handle:    handle,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

// GetAccountBySource fetches an account by its external source id.
func GetAccountBySource(ctx context.Context, db *gorm.DB, sourceID string) (*domain.Account, error) {
	var a domain.Account
	if err := db.WithContext(ctx).Where("source_id = ?", sourceID).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// ListSourceIDs returns every followed source id. The stream listener uses
// this as its follow filter.
func ListSourceIDs(ctx context.Context, db *gorm.DB) ([]string, error) {
	var out []string
	err := db.WithContext(ctx).
		Model(&domain.Account{}).
		Order("source_id asc").
		Pluck("source_id", &out).Error
	return out, err
}

// CreateSubscription inserts a (source, channel) pair. Duplicates surface
// as a raw unique-constraint error.
func CreateSubscription(ctx context.Context, db *gorm.DB, sourceID string, channelID int64) error {
	s := &domain.Subscription{
		ID:        uuid.NewString(),
		SourceID:  sourceID,
		ChannelID: channelID,
		CreatedAt: time.Now().UTC(),
	}
	return db.WithContext(ctx).Create(s).Error
}

// DeleteSubscription removes a (source, channel) pair. Returns ErrNotFound
// when no row matched.
func DeleteSubscription(ctx context.Context, db *gorm.DB, sourceID string, channelID int64) error {
	res := db.WithContext(ctx).
		Where("source_id = ? AND channel_id = ?", sourceID, channelID).
		Delete(&domain.Subscription{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ChannelsForSource returns the channel ids subscribed to a source, in
// ascending channel order. An empty slice is a valid result.
func ChannelsForSource(ctx context.Context, db *gorm.DB, sourceID string) ([]int64, error) {
	var out []int64
	err := db.WithContext(ctx).
		Model(&domain.Subscription{}).
		Where("source_id = ?", sourceID).
		Order("channel_id asc").
		Pluck("channel_id", &out).Error
	return out, err
}

// ListSubscriptions returns every subscription ordered by channel then
// source, for "what does this server follow" listings.
func ListSubscriptions(ctx context.Context, db *gorm.DB) ([]domain.Subscription, error) {
	var out []domain.Subscription
	err := db.WithContext(ctx).
		Order("channel_id asc, source_id asc").
		Find(&out).Error
	return out, err
}

// EnsureChannel records a destination channel if it is not known yet.
// Re-registering an existing channel is a no-op.
func EnsureChannel(ctx context.Context, db *gorm.DB, channelID int64) error {
	c := &domain.Channel{
		ChannelID: channelID,
		CreatedAt: time.Now().UTC(),
	}
	res := db.WithContext(ctx).
		Where("channel_id = ?", channelID).
		FirstOrCreate(c)
	return res.Error
}

// SetChannelAuditing flips the auditing flag on a channel. Returns
// ErrNotFound when the channel is not registered.
func SetChannelAuditing(ctx context.Context, db *gorm.DB, channelID int64, auditing bool) error {
	res := db.WithContext(ctx).
		Model(&domain.Channel{}).
		Where("channel_id = ?", channelID).
		Update("auditing", auditing)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AuditingChannels returns the ids of channels flagged for moderation
// audit messages.
func AuditingChannels(ctx context.Context, db *gorm.DB) ([]int64, error) {
	var out []int64
	err := db.WithContext(ctx).
		Model(&domain.Channel{}).
		Where("auditing = ?", true).
		Order("channel_id asc").
		Pluck("channel_id", &out).Error
	return out, err
}
