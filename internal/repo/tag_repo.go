// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for tags and tag
// aliases.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stanbotdev/stanbot/internal/domain"
)

// CreateTag inserts a new tag row with a lower-cased canonical name.
func CreateTag(ctx context.Context, db *gorm.DB, name string, addedBy int64) (*domain.Tag, error) {
	t := &domain.Tag{
		ID:        uuid.NewString(),
		Name:      name,
		AddedBy:   addedBy,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

// CreateTagAlias inserts an alias row pointing at tagID. Duplicates surface
// as a raw unique-constraint error.
func CreateTagAlias(ctx context.Context, db *gorm.DB, tagID, alias string, addedBy int64) error {
	a := &domain.TagAlias{
		ID:        uuid.NewString(),
		TagID:     tagID,
		Alias:     alias,
		AddedBy:   addedBy,
		CreatedAt: time.Now().UTC(),
	}
	return db.WithContext(ctx).Create(a).Error
}

// ResolveTag looks a tag up by one of its aliases. Returns ErrNotFound when
// no alias matches.
func ResolveTag(ctx context.Context, db *gorm.DB, alias string) (*domain.Tag, error) {
	var t domain.Tag
	err := db.WithContext(ctx).
		Joins("JOIN tag_aliases ON tag_aliases.tag_id = tags.id").
		Where("tag_aliases.alias = ?", alias).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTags returns every tag ordered by canonical name.
func ListTags(ctx context.Context, db *gorm.DB) ([]domain.Tag, error) {
	var out []domain.Tag
	err := db.WithContext(ctx).Order("name asc").Find(&out).Error
	return out, err
}

// ListTagAliases returns all alias strings of a tag, ordered.
func ListTagAliases(ctx context.Context, db *gorm.DB, tagID string) ([]string, error) {
	var out []string
	err := db.WithContext(ctx).
		Model(&domain.TagAlias{}).
		Where("tag_id = ?", tagID).
		Order("alias asc").
		Pluck("alias", &out).Error
	return out, err
}

// DeleteTagAlias removes a single alias mapping from a tag. Returns
// ErrNotFound when no row matched.
func DeleteTagAlias(ctx context.Context, db *gorm.DB, tagID, alias string) error {
	res := db.WithContext(ctx).
		Where("tag_id = ? AND alias = ?", tagID, alias).
		Delete(&domain.TagAlias{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteTag removes a tag by id; aliases and link_tags rows cascade, which
// also detaches the tag from any links currently tagged with it. Returns
// ErrNotFound when the tag is missing.
func DeleteTag(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Tag{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
