// Package services – LinkService
//
// This file implements link curation: attaching media URLs to members of the
// taxonomy, tagging and untagging them, and random/recent retrieval. Tag
// batches follow the registry's partition semantics: each tag is applied
// independently and duplicates or unknown tags never abort the rest of the
// batch.
package services

import (
	"context"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/stanbotdev/stanbot/internal/domain"
	"github.com/stanbotdev/stanbot/internal/repo"
)

// LinkService provides curation operations over links. Lookups of groups,
// members, and tags all go through the alias registry.
type LinkService struct {
	// DB is the database handle used for all link operations.
	DB *gorm.DB
	// Registry resolves alias references.
	Registry *RegistryService
}

// NewLinkService constructs a LinkService sharing the registry's DB handle.
func NewLinkService(db *gorm.DB, registry *RegistryService) *LinkService {
	return &LinkService{DB: db, Registry: registry}
}

// Add curates a URL under one group and one or more of its members. The
// link row and its member associations are written in one transaction.
// Returns ErrLinkExists when the URL is already curated.
func (s *LinkService) Add(ctx context.Context, url, groupRef string, memberRefs []string, addedBy int64) (*domain.Link, error) {
	group, err := s.Registry.ResolveGroup(ctx, groupRef)
	if err != nil {
		return nil, err
	}
	members := make([]*domain.Member, 0, len(memberRefs))
	for _, ref := range memberRefs {
		m, err := repo.ResolveMember(ctx, s.DB, group.ID, Normalize(ref))
		if err != nil {
			if isNotFound(err) {
				return nil, ErrMemberNotFound
			}
			return nil, err
		}
		members = append(members, m)
	}

	var created *domain.Link
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		l, err := repo.CreateLink(ctx, tx, url, addedBy)
		if err != nil {
			if isDuplicate(err) {
				return ErrLinkExists
			}
			return err
		}
		for _, m := range members {
			if err := repo.AddLinkMember(ctx, tx, l.ID, m.ID); err != nil {
				return err
			}
		}
		created = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Remove deletes a curated link, verifying first that it is attached to the
// referenced member. Join rows cascade with the link.
func (s *LinkService) Remove(ctx context.Context, groupRef, memberRef, url string) error {
	member, err := s.Registry.ResolveMember(ctx, groupRef, memberRef)
	if err != nil {
		return err
	}
	link, err := repo.GetLinkByURL(ctx, s.DB, url)
	if err != nil {
		if isNotFound(err) {
			return ErrLinkNotFound
		}
		return err
	}
	var count int64
	err = s.DB.WithContext(ctx).
		Model(&domain.LinkMember{}).
		Where("link_id = ? AND member_id = ?", link.ID, member.ID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrLinkNotFound
	}
	return repo.DeleteLink(ctx, s.DB, link.ID)
}

// ForceRemove deletes a link by URL regardless of member attachment. Used
// by moderators to purge reported content.
func (s *LinkService) ForceRemove(ctx context.Context, url string) error {
	link, err := repo.GetLinkByURL(ctx, s.DB, url)
	if err != nil {
		if isNotFound(err) {
			return ErrLinkNotFound
		}
		return err
	}
	return repo.DeleteLink(ctx, s.DB, link.ID)
}

// Tag applies tags (referenced by any tag alias) to a curated link. Each
// tag is applied independently: duplicates land in Duplicates, unknown tag
// references land in Missing, and neither stops the rest of the batch.
func (s *LinkService) Tag(ctx context.Context, url string, tagRefs []string) (BatchAddResult, BatchRemoveResult, error) {
	var applied BatchAddResult
	var unknown BatchRemoveResult
	link, err := repo.GetLinkByURL(ctx, s.DB, url)
	if err != nil {
		if isNotFound(err) {
			return applied, unknown, ErrLinkNotFound
		}
		return applied, unknown, err
	}
	for _, ref := range tagRefs {
		name := Normalize(ref)
		tag, err := repo.ResolveTag(ctx, s.DB, name)
		if err != nil {
			if isNotFound(err) {
				unknown.Missing = append(unknown.Missing, name)
				continue
			}
			return applied, unknown, err
		}
		if err := repo.AddLinkTag(ctx, s.DB, link.ID, tag.ID); err != nil {
			if isDuplicate(err) {
				applied.Duplicates = append(applied.Duplicates, name)
				continue
			}
			log.Error().Err(err).Str("url", url).Str("tag", name).Msg("link tag failed")
			return applied, unknown, err
		}
		applied.Added = append(applied.Added, name)
	}
	return applied, unknown, nil
}

// Untag removes tags from a curated link with the same partition semantics
// as Tag.
func (s *LinkService) Untag(ctx context.Context, url string, tagRefs []string) (BatchRemoveResult, error) {
	var res BatchRemoveResult
	link, err := repo.GetLinkByURL(ctx, s.DB, url)
	if err != nil {
		if isNotFound(err) {
			return res, ErrLinkNotFound
		}
		return res, err
	}
	for _, ref := range tagRefs {
		name := Normalize(ref)
		tag, err := repo.ResolveTag(ctx, s.DB, name)
		if err != nil {
			if isNotFound(err) {
				res.Missing = append(res.Missing, name)
				continue
			}
			return res, err
		}
		if err := repo.RemoveLinkTag(ctx, s.DB, link.ID, tag.ID); err != nil {
			if isNotFound(err) {
				res.Missing = append(res.Missing, name)
				continue
			}
			return res, err
		}
		res.Removed = append(res.Removed, name)
	}
	return res, nil
}

// Random picks a random curated link, optionally scoped to a member
// (groupRef+memberRef) and/or a tag.
func (s *LinkService) Random(ctx context.Context, groupRef, memberRef, tagRef string) (*domain.Link, error) {
	var memberID, tagID string
	if groupRef != "" && memberRef != "" {
		member, err := s.Registry.ResolveMember(ctx, groupRef, memberRef)
		if err != nil {
			return nil, err
		}
		memberID = member.ID
	}
	if tagRef != "" {
		tag, err := s.Registry.ResolveTag(ctx, tagRef)
		if err != nil {
			return nil, err
		}
		tagID = tag.ID
	}
	l, err := repo.RandomLink(ctx, s.DB, memberID, tagID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}
	return l, nil
}

// Recent returns a member's most recent link URLs, newest first, together
// with the member's total link count.
func (s *LinkService) Recent(ctx context.Context, groupRef, memberRef string, n int) ([]string, int64, error) {
	member, err := s.Registry.ResolveMember(ctx, groupRef, memberRef)
	if err != nil {
		return nil, 0, err
	}
	urls, err := repo.LinksForMember(ctx, s.DB, member.ID, n)
	if err != nil {
		return nil, 0, err
	}
	total, err := repo.CountMemberLinks(ctx, s.DB, member.ID)
	if err != nil {
		return nil, 0, err
	}
	return urls, total, nil
}

// WithTag returns the URLs carrying the tag, newest first, optionally
// scoped to a member (groupRef+memberRef). limit applies to the unscoped
// form only.
func (s *LinkService) WithTag(ctx context.Context, tagRef, groupRef, memberRef string, limit int) ([]string, error) {
	tag, err := s.Registry.ResolveTag(ctx, tagRef)
	if err != nil {
		return nil, err
	}
	if groupRef != "" && memberRef != "" {
		member, err := s.Registry.ResolveMember(ctx, groupRef, memberRef)
		if err != nil {
			return nil, err
		}
		return repo.MemberLinksWithTag(ctx, s.DB, member.ID, tag.ID)
	}
	return repo.LinksWithTag(ctx, s.DB, tag.ID, limit)
}

// TagBreakdown returns a member's tag usage counts, ordered by tag name.
func (s *LinkService) TagBreakdown(ctx context.Context, groupRef, memberRef string) ([]repo.TagCount, error) {
	member, err := s.Registry.ResolveMember(ctx, groupRef, memberRef)
	if err != nil {
		return nil, err
	}
	return repo.MemberTagCounts(ctx, s.DB, member.ID)
}
