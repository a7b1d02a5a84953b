// Package services – CommunityService
//
// This file implements the community bookkeeping commands: the moderator
// roster, user profiles and leaderboards, and moderator-defined custom
// commands.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/stanbotdev/stanbot/internal/domain"
	"github.com/stanbotdev/stanbot/internal/repo"
)

// CommunityService provides moderator, profile, leaderboard, and custom
// command operations.
type CommunityService struct {
	// DB is the database handle used for all community operations.
	DB *gorm.DB
}

// NewCommunityService constructs a CommunityService.
func NewCommunityService(db *gorm.DB) *CommunityService {
	return &CommunityService{DB: db}
}

// IsModerator reports whether userID holds moderation privileges.
func (s *CommunityService) IsModerator(ctx context.Context, userID int64) (bool, error) {
	return repo.IsModerator(ctx, s.DB, userID)
}

// AddModerator grants moderation privileges. Returns ErrAlreadyModerator
// when the user already has them.
func (s *CommunityService) AddModerator(ctx context.Context, userID int64) error {
	if err := repo.AddModerator(ctx, s.DB, userID); err != nil {
		if isDuplicate(err) {
			return ErrAlreadyModerator
		}
		return err
	}
	return nil
}

// RemoveModerator revokes moderation privileges. Returns ErrNotModerator
// when the user did not have them.
func (s *CommunityService) RemoveModerator(ctx context.Context, userID int64) error {
	if err := repo.RemoveModerator(ctx, s.DB, userID); err != nil {
		if isNotFound(err) {
			return ErrNotModerator
		}
		return err
	}
	return nil
}

// Profile returns the stored profile of a user.
func (s *CommunityService) Profile(ctx context.Context, userID int64) (*domain.User, error) {
	u, err := repo.GetUser(ctx, s.DB, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// MergeContribution moves fromID's contribution total onto toID.
func (s *CommunityService) MergeContribution(ctx context.Context, fromID, toID int64) error {
	if err := repo.EnsureUser(ctx, s.DB, toID); err != nil {
		return err
	}
	if err := repo.MergeContribution(ctx, s.DB, fromID, toID); err != nil {
		if isNotFound(err) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// Leaderboard returns the top n users by contribution.
func (s *CommunityService) Leaderboard(ctx context.Context, n int) ([]domain.User, error) {
	if n <= 0 {
		n = 10
	}
	return repo.UserLeaderboard(ctx, s.DB, n)
}

// MemberLeaderboard returns the top n members by link count.
func (s *CommunityService) MemberLeaderboard(ctx context.Context, n int) ([]repo.MemberRank, error) {
	if n <= 0 {
		n = 10
	}
	return repo.MemberLeaderboard(ctx, s.DB, n)
}

// GroupLeaderboard returns the top n groups by link count.
func (s *CommunityService) GroupLeaderboard(ctx context.Context, n int) ([]repo.GroupRank, error) {
	if n <= 0 {
		n = 10
	}
	return repo.GroupLeaderboard(ctx, s.DB, n)
}

// Totals returns the overall link/group/member counts.
func (s *CommunityService) Totals(ctx context.Context) (repo.Totals, error) {
	return repo.CountTotals(ctx, s.DB)
}

// AddCommand defines a custom command. Returns ErrCommandExists when the
// name is taken.
func (s *CommunityService) AddCommand(ctx context.Context, name, response string, addedBy int64) error {
	name = Normalize(name)
	if err := repo.CreateCustomCommand(ctx, s.DB, name, response, addedBy); err != nil {
		if isDuplicate(err) {
			return ErrCommandExists
		}
		return err
	}
	return nil
}

// FindCommand returns the canned response for a custom command name.
func (s *CommunityService) FindCommand(ctx context.Context, name string) (string, error) {
	c, err := repo.GetCustomCommand(ctx, s.DB, Normalize(name))
	if err != nil {
		if isNotFound(err) {
			return "", ErrCommandNotFound
		}
		return "", err
	}
	return c.Response, nil
}

// Commands lists every custom command.
func (s *CommunityService) Commands(ctx context.Context) ([]domain.CustomCommand, error) {
	return repo.ListCustomCommands(ctx, s.DB)
}

// RemoveCommand deletes a custom command by name. Returns ErrCommandNotFound
// when the name is unknown.
func (s *CommunityService) RemoveCommand(ctx context.Context, name string) error {
	if err := repo.DeleteCustomCommand(ctx, s.DB, Normalize(name)); err != nil {
		if isNotFound(err) {
			return ErrCommandNotFound
		}
		return err
	}
	return nil
}
