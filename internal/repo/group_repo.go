// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for groups and
// group aliases.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a row is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated. Translation of unique-constraint
//     violations into expected outcomes happens in the services package.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stanbotdev/stanbot/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and the bot surface.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateGroup inserts a new group row with a lower-cased canonical name.
// The caller is responsible for registering the canonical self-alias in the
// same transaction (see services.RegistryService.CreateGroup).
func CreateGroup(ctx context.Context, db *gorm.DB, name string, addedBy int64) (*domain.Group, error) {
	g := &domain.Group{
		ID:        uuid.NewString(),
		Name:      name,
		AddedBy:   addedBy,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(g).Error; err != nil {
		return nil, err
	}
	return g, nil
}

// CreateGroupAlias inserts an alias row pointing at groupID. The alias
// string must already be lower-cased. Duplicates surface as a raw
// unique-constraint error.
func CreateGroupAlias(ctx context.Context, db *gorm.DB, groupID, alias string, addedBy int64) error {
	a := &domain.GroupAlias{
		ID:        uuid.NewString(),
		GroupID:   groupID,
		Alias:     alias,
		AddedBy:   addedBy,
		CreatedAt: time.Now().UTC(),
	}
	return db.WithContext(ctx).Create(a).Error
}

// ResolveGroup looks a group up by one of its aliases. Returns ErrNotFound
// when no alias matches.
func ResolveGroup(ctx context.Context, db *gorm.DB, alias string) (*domain.Group, error) {
	var g domain.Group
	err := db.WithContext(ctx).
		Joins("JOIN group_aliases ON group_aliases.group_id = groups.id").
		Where("group_aliases.alias = ?", alias).
		First(&g).Error
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// GetGroup fetches a group by its id.
func GetGroup(ctx context.Context, db *gorm.DB, id string) (*domain.Group, error) {
	var g domain.Group
	if err := db.WithContext(ctx).Where("id = ?", id).First(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

// ListGroups returns every group ordered by canonical name.
func ListGroups(ctx context.Context, db *gorm.DB) ([]domain.Group, error) {
	var out []domain.Group
	err := db.WithContext(ctx).Order("name asc").Find(&out).Error
	return out, err
}

// ListGroupAliases returns all alias strings of a group, ordered.
func ListGroupAliases(ctx context.Context, db *gorm.DB, groupID string) ([]string, error) {
	var out []string
	err := db.WithContext(ctx).
		Model(&domain.GroupAlias{}).
		Where("group_id = ?", groupID).
		Order("alias asc").
		Pluck("alias", &out).Error
	return out, err
}

// DeleteGroupAlias removes a single alias mapping from a group. It returns
// ErrNotFound when no row matched. The canonical self-alias is not special-
// cased here.
func DeleteGroupAlias(ctx context.Context, db *gorm.DB, groupID, alias string) error {
	res := db.WithContext(ctx).
		Where("group_id = ? AND alias = ?", groupID, alias).
		Delete(&domain.GroupAlias{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteGroup removes a group by id. Members, aliases and link associations
// go with it via FK cascades. Returns ErrNotFound when the group is missing.
func DeleteGroup(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Group{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
