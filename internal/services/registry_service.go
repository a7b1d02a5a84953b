// Package services – RegistryService
//
// This file implements the alias registry: the layered name-resolution store
// mapping many human-entered alias strings onto canonical groups, members,
// and tags. Entity creation registers the canonical name as the entity's
// first alias inside the same transaction, so a half-created entity is never
// visible to concurrent readers. Alias adds and removes are per-item
// independent: batch calls partition their input into applied and skipped
// rather than aborting on the first duplicate or miss.
package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/stanbotdev/stanbot/internal/domain"
	"github.com/stanbotdev/stanbot/internal/repo"
)

var lowercaser = cases.Lower(language.Und)

// Normalize lower-cases and trims an alias or canonical name. Every write
// and every lookup goes through this, which is what makes resolution
// case-insensitive.
func Normalize(s string) string {
	return lowercaser.String(strings.TrimSpace(s))
}

// BatchAddResult partitions a batch alias add into the strings that were
// registered and the strings skipped because they already existed in scope.
type BatchAddResult struct {
	Added      []string
	Duplicates []string
}

// BatchRemoveResult partitions a batch alias removal into the strings that
// were removed and the strings that were not registered in scope.
type BatchRemoveResult struct {
	Removed []string
	Missing []string
}

// RegistryService implements the alias registry use-cases. It is safe for
// concurrent use; every mutating call is its own unit of consistency (one
// transaction or one statement), with no cross-operation coordination.
type RegistryService struct {
	// DB is the database handle used for all registry operations.
	DB *gorm.DB
}

// NewRegistryService constructs a RegistryService around a DB handle.
func NewRegistryService(db *gorm.DB) *RegistryService {
	return &RegistryService{DB: db}
}

// CreateGroup creates a group with the given canonical name and registers
// the name as the group's first alias, atomically. Returns ErrGroupExists
// when the name (or its alias slot) is already taken.
func (s *RegistryService) CreateGroup(ctx context.Context, name string, creator int64) (*domain.Group, error) {
	name = Normalize(name)
	var created *domain.Group
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		g, err := repo.CreateGroup(ctx, tx, name, creator)
		if err != nil {
			if isDuplicate(err) {
				return ErrGroupExists
			}
			return err
		}
		if err := repo.CreateGroupAlias(ctx, tx, g.ID, name, creator); err != nil {
			if isDuplicate(err) {
				// Name is free but claimed as an alias of another group.
				return ErrGroupExists
			}
			return err
		}
		created = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// CreateMember creates a member under the group referenced by groupRef
// (any group alias) and registers the member's name as its first alias in
// the group scope, atomically.
func (s *RegistryService) CreateMember(ctx context.Context, groupRef, name string, creator int64) (*domain.Member, error) {
	name = Normalize(name)
	group, err := s.ResolveGroup(ctx, groupRef)
	if err != nil {
		return nil, err
	}
	var created *domain.Member
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := repo.CreateMember(ctx, tx, group.ID, name, creator)
		if err != nil {
			if isDuplicate(err) {
				return ErrMemberExists
			}
			return err
		}
		if err := repo.CreateMemberAlias(ctx, tx, m.ID, group.ID, name, creator); err != nil {
			if isDuplicate(err) {
				return ErrMemberExists
			}
			return err
		}
		created = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// CreateTag creates a tag and registers its name as the first alias,
// atomically. Returns ErrTagExists on a taken name.
func (s *RegistryService) CreateTag(ctx context.Context, name string, creator int64) (*domain.Tag, error) {
	name = Normalize(name)
	var created *domain.Tag
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := repo.CreateTag(ctx, tx, name, creator)
		if err != nil {
			if isDuplicate(err) {
				return ErrTagExists
			}
			return err
		}
		if err := repo.CreateTagAlias(ctx, tx, t.ID, name, creator); err != nil {
			if isDuplicate(err) {
				return ErrTagExists
			}
			return err
		}
		created = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ResolveGroup resolves any group alias to its group, case-insensitively.
func (s *RegistryService) ResolveGroup(ctx context.Context, ref string) (*domain.Group, error) {
	g, err := repo.ResolveGroup(ctx, s.DB, Normalize(ref))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return g, nil
}

// ResolveMember resolves a member alias within the group referenced by
// groupRef.
func (s *RegistryService) ResolveMember(ctx context.Context, groupRef, memberRef string) (*domain.Member, error) {
	group, err := s.ResolveGroup(ctx, groupRef)
	if err != nil {
		return nil, err
	}
	m, err := repo.ResolveMember(ctx, s.DB, group.ID, Normalize(memberRef))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return m, nil
}

// ResolveTag resolves any tag alias to its tag, case-insensitively.
func (s *RegistryService) ResolveTag(ctx context.Context, ref string) (*domain.Tag, error) {
	t, err := repo.ResolveTag(ctx, s.DB, Normalize(ref))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}
	return t, nil
}

// AddGroupAliases registers aliases on the group referenced by groupRef.
// Each alias is inserted independently; duplicates are reported, not raised,
// and never roll back aliases already applied in the same call.
func (s *RegistryService) AddGroupAliases(ctx context.Context, groupRef string, aliases []string, creator int64) (BatchAddResult, error) {
	group, err := s.ResolveGroup(ctx, groupRef)
	if err != nil {
		return BatchAddResult{}, err
	}
	return s.addAliases(aliases, func(alias string) error {
		return repo.CreateGroupAlias(ctx, s.DB, group.ID, alias, creator)
	})
}

// AddMemberAliases registers aliases on a member, scoped to its group.
func (s *RegistryService) AddMemberAliases(ctx context.Context, groupRef, memberRef string, aliases []string, creator int64) (BatchAddResult, error) {
	member, err := s.ResolveMember(ctx, groupRef, memberRef)
	if err != nil {
		return BatchAddResult{}, err
	}
	return s.addAliases(aliases, func(alias string) error {
		return repo.CreateMemberAlias(ctx, s.DB, member.ID, member.GroupID, alias, creator)
	})
}

// AddTagAliases registers aliases on the tag referenced by tagRef.
func (s *RegistryService) AddTagAliases(ctx context.Context, tagRef string, aliases []string, creator int64) (BatchAddResult, error) {
	tag, err := s.ResolveTag(ctx, tagRef)
	if err != nil {
		return BatchAddResult{}, err
	}
	return s.addAliases(aliases, func(alias string) error {
		return repo.CreateTagAlias(ctx, s.DB, tag.ID, alias, creator)
	})
}

func (s *RegistryService) addAliases(aliases []string, insert func(string) error) (BatchAddResult, error) {
	var res BatchAddResult
	for _, raw := range aliases {
		alias := Normalize(raw)
		if alias == "" {
			continue
		}
		if err := insert(alias); err != nil {
			if isDuplicate(err) {
				res.Duplicates = append(res.Duplicates, alias)
				continue
			}
			log.Error().Err(err).Str("alias", alias).Msg("alias insert failed")
			return res, err
		}
		res.Added = append(res.Added, alias)
	}
	return res, nil
}

// RemoveGroupAliases unregisters aliases from a group. Removing the
// canonical self-alias is permitted; a group stripped of all aliases stays
// resolvable only by internal id. Misses are reported per item.
func (s *RegistryService) RemoveGroupAliases(ctx context.Context, groupRef string, aliases []string) (BatchRemoveResult, error) {
	group, err := s.ResolveGroup(ctx, groupRef)
	if err != nil {
		return BatchRemoveResult{}, err
	}
	return s.removeAliases(aliases, func(alias string) error {
		return repo.DeleteGroupAlias(ctx, s.DB, group.ID, alias)
	})
}

// RemoveMemberAliases unregisters aliases from a member.
func (s *RegistryService) RemoveMemberAliases(ctx context.Context, groupRef, memberRef string, aliases []string) (BatchRemoveResult, error) {
	member, err := s.ResolveMember(ctx, groupRef, memberRef)
	if err != nil {
		return BatchRemoveResult{}, err
	}
	return s.removeAliases(aliases, func(alias string) error {
		return repo.DeleteMemberAlias(ctx, s.DB, member.ID, alias)
	})
}

// RemoveTagAliases unregisters aliases from a tag.
func (s *RegistryService) RemoveTagAliases(ctx context.Context, tagRef string, aliases []string) (BatchRemoveResult, error) {
	tag, err := s.ResolveTag(ctx, tagRef)
	if err != nil {
		return BatchRemoveResult{}, err
	}
	return s.removeAliases(aliases, func(alias string) error {
		return repo.DeleteTagAlias(ctx, s.DB, tag.ID, alias)
	})
}

func (s *RegistryService) removeAliases(aliases []string, remove func(string) error) (BatchRemoveResult, error) {
	var res BatchRemoveResult
	for _, raw := range aliases {
		alias := Normalize(raw)
		if alias == "" {
			continue
		}
		if err := remove(alias); err != nil {
			if isNotFound(err) {
				res.Missing = append(res.Missing, alias)
				continue
			}
			log.Error().Err(err).Str("alias", alias).Msg("alias delete failed")
			return res, err
		}
		res.Removed = append(res.Removed, alias)
	}
	return res, nil
}

// GroupAliases lists the alias strings of a group.
func (s *RegistryService) GroupAliases(ctx context.Context, groupRef string) ([]string, error) {
	group, err := s.ResolveGroup(ctx, groupRef)
	if err != nil {
		return nil, err
	}
	return repo.ListGroupAliases(ctx, s.DB, group.ID)
}

// MemberAliases lists the alias strings of a member.
func (s *RegistryService) MemberAliases(ctx context.Context, groupRef, memberRef string) ([]string, error) {
	member, err := s.ResolveMember(ctx, groupRef, memberRef)
	if err != nil {
		return nil, err
	}
	return repo.ListMemberAliases(ctx, s.DB, member.ID)
}

// TagAliases lists the alias strings of a tag.
func (s *RegistryService) TagAliases(ctx context.Context, tagRef string) ([]string, error) {
	tag, err := s.ResolveTag(ctx, tagRef)
	if err != nil {
		return nil, err
	}
	return repo.ListTagAliases(ctx, s.DB, tag.ID)
}

// Groups lists every group.
func (s *RegistryService) Groups(ctx context.Context) ([]domain.Group, error) {
	return repo.ListGroups(ctx, s.DB)
}

// Tags lists every tag.
func (s *RegistryService) Tags(ctx context.Context) ([]domain.Tag, error) {
	return repo.ListTags(ctx, s.DB)
}

// Members lists the members of the group referenced by groupRef.
func (s *RegistryService) Members(ctx context.Context, groupRef string) ([]domain.Member, error) {
	group, err := s.ResolveGroup(ctx, groupRef)
	if err != nil {
		return nil, err
	}
	return repo.ListMembers(ctx, s.DB, group.ID)
}

// DeleteGroup deletes the group referenced by groupRef. Its members, every
// alias scoped to the group or its members, and all link associations are
// removed by cascade.
func (s *RegistryService) DeleteGroup(ctx context.Context, groupRef string) error {
	group, err := s.ResolveGroup(ctx, groupRef)
	if err != nil {
		return err
	}
	if err := repo.DeleteGroup(ctx, s.DB, group.ID); err != nil {
		if isNotFound(err) {
			return ErrGroupNotFound
		}
		return err
	}
	return nil
}

// DeleteMember deletes a member and, by cascade, its aliases and link
// associations.
func (s *RegistryService) DeleteMember(ctx context.Context, groupRef, memberRef string) error {
	member, err := s.ResolveMember(ctx, groupRef, memberRef)
	if err != nil {
		return err
	}
	if err := repo.DeleteMember(ctx, s.DB, member.ID); err != nil {
		if isNotFound(err) {
			return ErrMemberNotFound
		}
		return err
	}
	return nil
}

// DeleteTag deletes a tag and, by cascade, its aliases and its associations
// with any currently tagged links.
func (s *RegistryService) DeleteTag(ctx context.Context, tagRef string) error {
	tag, err := s.ResolveTag(ctx, tagRef)
	if err != nil {
		return err
	}
	if err := repo.DeleteTag(ctx, s.DB, tag.ID); err != nil {
		if isNotFound(err) {
			return ErrTagNotFound
		}
		return err
	}
	return nil
}
