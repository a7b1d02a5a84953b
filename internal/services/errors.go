// Package services defines the business logic for the alias registry, link
// curation, subscriptions, and community commands. This file centralizes the
// expected-outcome error values so they can be consistently returned by
// service methods and branched on by callers.
//
// These are ordinary result values, not faults: duplicate adds, not-found
// removes, and repeated subscribes are normal outcomes of moderation work.
// Translation into user-facing messages happens at the bot surface.
package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/stanbotdev/stanbot/internal/repo"
)

var (
	// ErrGroupExists indicates the canonical group name is already taken.
	ErrGroupExists = errors.New("group already exists")

	// ErrMemberExists indicates the member name is already taken inside its group.
	ErrMemberExists = errors.New("member already exists in group")

	// ErrTagExists indicates the canonical tag name is already taken.
	ErrTagExists = errors.New("tag already exists")

	// ErrAliasExists indicates the alias string is already registered in the
	// target scope.
	ErrAliasExists = errors.New("alias already exists in scope")

	// ErrLinkExists indicates the link URL is already curated.
	ErrLinkExists = errors.New("link already exists")

	// ErrGroupNotFound indicates no group alias matched the given name.
	ErrGroupNotFound = errors.New("group not found")

	// ErrMemberNotFound indicates no member alias matched within the group.
	ErrMemberNotFound = errors.New("member not found in group")

	// ErrTagNotFound indicates no tag alias matched the given name.
	ErrTagNotFound = errors.New("tag not found")

	// ErrAliasNotFound indicates the alias string is not registered in the
	// target scope.
	ErrAliasNotFound = errors.New("alias not found in scope")

	// ErrLinkNotFound indicates the URL is not a curated link.
	ErrLinkNotFound = errors.New("link not found")

	// ErrAlreadySubscribed indicates the (source, channel) pair already exists.
	ErrAlreadySubscribed = errors.New("channel already subscribed to source")

	// ErrNotSubscribed indicates the (source, channel) pair does not exist.
	ErrNotSubscribed = errors.New("channel not subscribed to source")

	// ErrAlreadyModerator indicates the user already holds moderation rights.
	ErrAlreadyModerator = errors.New("user is already a moderator")

	// ErrNotModerator indicates the user does not hold moderation rights.
	ErrNotModerator = errors.New("user is not a moderator")

	// ErrCommandExists indicates the custom command name is already taken.
	ErrCommandExists = errors.New("command already exists")

	// ErrCommandNotFound indicates no custom command has that name.
	ErrCommandNotFound = errors.New("command not found")

	// ErrUserNotFound indicates no user row exists for the given id.
	ErrUserNotFound = errors.New("user not found")
)

// isDuplicate detects unique-constraint violations across drivers. This is
// the single place that knows the storage fault shape for "already exists";
// every insert-then-catch path funnels through it.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// SQLite: "UNIQUE constraint failed"
	// Postgres: "duplicate key value violates unique constraint"
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}

// isNotFound treats repo-level and gorm not-found sentinels uniformly.
func isNotFound(err error) bool {
	return errors.Is(err, repo.ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}
