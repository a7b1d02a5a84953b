// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for users,
// moderators, and custom commands.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stanbotdev/stanbot/internal/domain"
)

// EnsureUser creates the user row if it does not exist yet.
func EnsureUser(ctx context.Context, db *gorm.DB, userID int64) error {
	u := &domain.User{
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	return db.WithContext(ctx).
		Where("user_id = ?", userID).
		FirstOrCreate(u).Error
}

// GetUser fetches a user row by id.
func GetUser(ctx context.Context, db *gorm.DB, userID int64) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("user_id = ?", userID).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// AddUserXP increments a user's XP in place. The row must exist.
func AddUserXP(ctx context.Context, db *gorm.DB, userID, delta int64) error {
	return db.WithContext(ctx).
		Model(&domain.User{}).
		Where("user_id = ?", userID).
		Update("xp", gorm.Expr("xp + ?", delta)).Error
}

// AddUserContribution increments a user's contribution counter in place.
func AddUserContribution(ctx context.Context, db *gorm.DB, userID, delta int64) error {
	return db.WithContext(ctx).
		Model(&domain.User{}).
		Where("user_id = ?", userID).
		Update("contribution", gorm.Expr("contribution + ?", delta)).Error
}

// MergeContribution adds fromID's contribution onto toID. Both rows must
// exist; the source row keeps its counter (matching the original merge
// behavior, which never zeroed the donor).
func MergeContribution(ctx context.Context, db *gorm.DB, fromID, toID int64) error {
	from, err := GetUser(ctx, db, fromID)
	if err != nil {
		return err
	}
	return AddUserContribution(ctx, db, toID, from.Contribution)
}

// AddModerator grants moderation privileges. Duplicates surface as a raw
// constraint error.
func AddModerator(ctx context.Context, db *gorm.DB, userID int64) error {
	m := &domain.Moderator{
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	return db.WithContext(ctx).Create(m).Error
}

// RemoveModerator revokes moderation privileges. Returns ErrNotFound when
// the user was not a moderator.
func RemoveModerator(ctx context.Context, db *gorm.DB, userID int64) error {
	res := db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.Moderator{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IsModerator reports whether a user holds moderation privileges.
func IsModerator(ctx context.Context, db *gorm.DB, userID int64) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Moderator{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count > 0, err
}

// CreateCustomCommand inserts a custom command. Duplicate names surface as
// a raw constraint error.
func CreateCustomCommand(ctx context.Context, db *gorm.DB, name, response string, addedBy int64) error {
	c := &domain.CustomCommand{
		ID:        uuid.NewString(),
		Name:      name,
		Response:  response,
		AddedBy:   addedBy,
		CreatedAt: time.Now().UTC(),
	}
	return db.WithContext(ctx).Create(c).Error
}

// GetCustomCommand fetches a custom command by name.
func GetCustomCommand(ctx context.Context, db *gorm.DB, name string) (*domain.CustomCommand, error) {
	var c domain.CustomCommand
	if err := db.WithContext(ctx).Where("name = ?", name).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCustomCommands returns every custom command ordered by name.
func ListCustomCommands(ctx context.Context, db *gorm.DB) ([]domain.CustomCommand, error) {
	var out []domain.CustomCommand
	err := db.WithContext(ctx).Order("name asc").Find(&out).Error
	return out, err
}

// DeleteCustomCommand removes a custom command by name. Returns ErrNotFound
// when no row matched.
func DeleteCustomCommand(ctx context.Context, db *gorm.DB, name string) error {
	res := db.WithContext(ctx).Where("name = ?", name).Delete(&domain.CustomCommand{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
