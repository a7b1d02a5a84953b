// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides aggregate queries used by the profile
// and leaderboard commands: totals, and COUNT/GROUP BY/ORDER BY/LIMIT
// rankings over the link associations.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/stanbotdev/stanbot/internal/domain"
)

// Totals carries the overall link/group/member counts shown by the stats
// command.
type Totals struct {
	Links   int64
	Groups  int64
	Members int64
}

// CountTotals returns the number of links, groups, and members.
func CountTotals(ctx context.Context, db *gorm.DB) (Totals, error) {
	var t Totals
	if err := db.WithContext(ctx).Model(&domain.Link{}).Count(&t.Links).Error; err != nil {
		return Totals{}, err
	}
	if err := db.WithContext(ctx).Model(&domain.Group{}).Count(&t.Groups).Error; err != nil {
		return Totals{}, err
	}
	if err := db.WithContext(ctx).Model(&domain.Member{}).Count(&t.Members).Error; err != nil {
		return Totals{}, err
	}
	return t, nil
}

// MemberRank is one leaderboard row: a member, its group, and its link count.
type MemberRank struct {
	Member string
	Group  string
	Links  int64
}

// MemberLeaderboard ranks members by link count, descending.
func MemberLeaderboard(ctx context.Context, db *gorm.DB, limit int) ([]MemberRank, error) {
	var out []MemberRank
	err := db.WithContext(ctx).
		Model(&domain.LinkMember{}).
		Select("members.name AS member, groups.name AS \"group\", COUNT(*) AS links").
		Joins("JOIN members ON members.id = link_members.member_id").
		Joins("JOIN groups ON groups.id = members.group_id").
		Group("members.id").
		Order("links DESC").
		Limit(limit).
		Scan(&out).Error
	return out, err
}

// GroupRank is one leaderboard row: a group and its total link count.
type GroupRank struct {
	Group string
	Links int64
}

// GroupLeaderboard ranks groups by total link count, descending.
func GroupLeaderboard(ctx context.Context, db *gorm.DB, limit int) ([]GroupRank, error) {
	var out []GroupRank
	err := db.WithContext(ctx).
		Model(&domain.LinkMember{}).
		Select("groups.name AS \"group\", COUNT(*) AS links").
		Joins("JOIN members ON members.id = link_members.member_id").
		Joins("JOIN groups ON groups.id = members.group_id").
		Group("groups.id").
		Order("links DESC").
		Limit(limit).
		Scan(&out).Error
	return out, err
}

// UserLeaderboard ranks users by contribution, descending.
func UserLeaderboard(ctx context.Context, db *gorm.DB, limit int) ([]domain.User, error) {
	var out []domain.User
	err := db.WithContext(ctx).
		Order("contribution desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// TagCount is one row of a member's per-tag link breakdown.
type TagCount struct {
	Tag   string
	Links int64
}

// MemberTagCounts returns the tags present on a member's links and how many
// links carry each, ordered by tag name.
func MemberTagCounts(ctx context.Context, db *gorm.DB, memberID string) ([]TagCount, error) {
	var out []TagCount
	err := db.WithContext(ctx).
		Model(&domain.LinkTag{}).
		Select("tags.name AS tag, COUNT(*) AS links").
		Joins("JOIN tags ON tags.id = link_tags.tag_id").
		Joins("JOIN link_members ON link_members.link_id = link_tags.link_id").
		Where("link_members.member_id = ?", memberID).
		Group("tags.name").
		Order("tags.name asc").
		Scan(&out).Error
	return out, err
}
