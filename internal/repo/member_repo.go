// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for members and
// member aliases. Member aliases carry the owning group's id so that the
// per-group uniqueness constraint lives in the database and duplicate adds
// surface as constraint violations.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stanbotdev/stanbot/internal/domain"
)

// CreateMember inserts a new member row under groupID. The canonical
// self-alias is the service layer's responsibility (same transaction).
func CreateMember(ctx context.Context, db *gorm.DB, groupID, name string, addedBy int64) (*domain.Member, error) {
	m := &domain.Member{
		ID:        uuid.NewString(),
		GroupID:   groupID,
		Name:      name,
		AddedBy:   addedBy,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// CreateMemberAlias inserts an alias row for memberID scoped to groupID.
// Duplicates within the group surface as a raw unique-constraint error.
func CreateMemberAlias(ctx context.Context, db *gorm.DB, memberID, groupID, alias string, addedBy int64) error {
	a := &domain.MemberAlias{
		ID:        uuid.NewString(),
		MemberID:  memberID,
		GroupID:   groupID,
		Alias:     alias,
		AddedBy:   addedBy,
		CreatedAt: time.Now().UTC(),
	}
	return db.WithContext(ctx).Create(a).Error
}

// ResolveMember looks a member up by alias within a group scope. Returns
// ErrNotFound when no alias matches inside that group.
func ResolveMember(ctx context.Context, db *gorm.DB, groupID, alias string) (*domain.Member, error) {
	var m domain.Member
	err := db.WithContext(ctx).
		Joins("JOIN member_aliases ON member_aliases.member_id = members.id").
		Where("member_aliases.group_id = ? AND member_aliases.alias = ?", groupID, alias).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMembers returns all members of a group ordered by canonical name.
func ListMembers(ctx context.Context, db *gorm.DB, groupID string) ([]domain.Member, error) {
	var out []domain.Member
	err := db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("name asc").
		Find(&out).Error
	return out, err
}

// ListMemberAliases returns all alias strings of a member, ordered.
func ListMemberAliases(ctx context.Context, db *gorm.DB, memberID string) ([]string, error) {
	var out []string
	err := db.WithContext(ctx).
		Model(&domain.MemberAlias{}).
		Where("member_id = ?", memberID).
		Order("alias asc").
		Pluck("alias", &out).Error
	return out, err
}

// DeleteMemberAlias removes a single alias mapping from a member. Returns
// ErrNotFound when no row matched.
func DeleteMemberAlias(ctx context.Context, db *gorm.DB, memberID, alias string) error {
	res := db.WithContext(ctx).
		Where("member_id = ? AND alias = ?", memberID, alias).
		Delete(&domain.MemberAlias{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteMember removes a member by id; aliases and link associations cascade.
// Returns ErrNotFound when the member is missing.
func DeleteMember(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Member{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
