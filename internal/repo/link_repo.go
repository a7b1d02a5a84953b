// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for curated links
// and their member/tag associations.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stanbotdev/stanbot/internal/domain"
)

// CreateLink inserts a new link row. Duplicate URLs surface as a raw
// unique-constraint error.
func CreateLink(ctx context.Context, db *gorm.DB, url string, addedBy int64) (*domain.Link, error) {
	l := &domain.Link{
		ID:        uuid.NewString(),
		URL:       url,
		AddedBy:   addedBy,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(l).Error; err != nil {
		return nil, err
	}
	return l, nil
}

// GetLinkByURL fetches a link row by its exact URL.
func GetLinkByURL(ctx context.Context, db *gorm.DB, url string) (*domain.Link, error) {
	var l domain.Link
	if err := db.WithContext(ctx).Where("url = ?", url).First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

// DeleteLink removes a link by id; join rows cascade. Returns ErrNotFound
// when the link is missing.
func DeleteLink(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Link{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AddLinkMember associates a link with a member. The pair is unique;
// duplicates surface as a raw constraint error.
func AddLinkMember(ctx context.Context, db *gorm.DB, linkID, memberID string) error {
	lm := &domain.LinkMember{
		ID:        uuid.NewString(),
		LinkID:    linkID,
		MemberID:  memberID,
		CreatedAt: time.Now().UTC(),
	}
	return db.WithContext(ctx).Create(lm).Error
}

// AddLinkTag associates a link with a tag. Duplicates surface as a raw
// constraint error.
func AddLinkTag(ctx context.Context, db *gorm.DB, linkID, tagID string) error {
	lt := &domain.LinkTag{
		ID:        uuid.NewString(),
		LinkID:    linkID,
		TagID:     tagID,
		CreatedAt: time.Now().UTC(),
	}
	return db.WithContext(ctx).Create(lt).Error
}

// RemoveLinkTag detaches a tag from a link. Returns ErrNotFound when the
// association did not exist.
func RemoveLinkTag(ctx context.Context, db *gorm.DB, linkID, tagID string) error {
	res := db.WithContext(ctx).
		Where("link_id = ? AND tag_id = ?", linkID, tagID).
		Delete(&domain.LinkTag{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// LinksForMember returns the URLs attached to a member, newest first.
func LinksForMember(ctx context.Context, db *gorm.DB, memberID string, limit int) ([]string, error) {
	var out []string
	q := db.WithContext(ctx).
		Model(&domain.Link{}).
		Joins("JOIN link_members ON link_members.link_id = links.id").
		Where("link_members.member_id = ?", memberID).
		Order("links.created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Pluck("links.url", &out).Error
	return out, err
}

// LinksWithTag returns the URLs carrying a tag, newest first.
func LinksWithTag(ctx context.Context, db *gorm.DB, tagID string, limit int) ([]string, error) {
	var out []string
	q := db.WithContext(ctx).
		Model(&domain.Link{}).
		Joins("JOIN link_tags ON link_tags.link_id = links.id").
		Where("link_tags.tag_id = ?", tagID).
		Order("links.created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Pluck("links.url", &out).Error
	return out, err
}

// MemberLinksWithTag returns URLs attached to a member that also carry the
// given tag.
func MemberLinksWithTag(ctx context.Context, db *gorm.DB, memberID, tagID string) ([]string, error) {
	var out []string
	err := db.WithContext(ctx).
		Model(&domain.Link{}).
		Joins("JOIN link_members ON link_members.link_id = links.id").
		Joins("JOIN link_tags ON link_tags.link_id = links.id").
		Where("link_members.member_id = ? AND link_tags.tag_id = ?", memberID, tagID).
		Order("links.created_at desc").
		Pluck("links.url", &out).Error
	return out, err
}

// CountMemberLinks returns how many links a member has.
func CountMemberLinks(ctx context.Context, db *gorm.DB, memberID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.LinkMember{}).
		Where("member_id = ?", memberID).
		Count(&total).Error
	return total, err
}

// RandomLink picks one random link, optionally restricted to a member
// and/or a tag. Returns ErrNotFound when nothing matches.
func RandomLink(ctx context.Context, db *gorm.DB, memberID, tagID string) (*domain.Link, error) {
	q := db.WithContext(ctx).Model(&domain.Link{})
	if memberID != "" {
		q = q.Joins("JOIN link_members ON link_members.link_id = links.id").
			Where("link_members.member_id = ?", memberID)
	}
	if tagID != "" {
		q = q.Joins("JOIN link_tags ON link_tags.link_id = links.id").
			Where("link_tags.tag_id = ?", tagID)
	}
	var l domain.Link
	if err := q.Order("RANDOM()").Limit(1).Take(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}
