// Package domain defines the persistence models for the content taxonomy
// (groups, members, tags and their aliases), curated media links, social
// feed subscriptions, and community bookkeeping (users, moderators, custom
// commands). These types are mapped with GORM and form the core data layer
// of the bot.
//
// Deletes are hard deletes: the cascade invariants (group -> members ->
// aliases, tag -> aliases + link associations) are enforced by FK
// constraints, so SQLite must run with foreign_keys=ON (see repo.OpenSQLite).
package domain

import (
	"time"
)

// Group is a canonical taxonomy root. Its name is stored lower-cased and is
// unique across all groups. Members and aliases are cascade-deleted with it.
type Group struct {
	ID        string `gorm:"type:char(36);primaryKey"`
	Name      string `gorm:"type:varchar(128);not null;uniqueIndex"`
	AddedBy   int64  `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Members []Member     `gorm:"foreignKey:GroupID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Aliases []GroupAlias `gorm:"foreignKey:GroupID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Group.
func (Group) TableName() string { return "groups" }

// Member belongs to exactly one group. Its canonical name is unique within
// that group; the same name may exist under a different group.
type Member struct {
	ID        string `gorm:"type:char(36);primaryKey"`
	GroupID   string `gorm:"type:char(36);not null;uniqueIndex:ux_group_member,priority:1"`
	Name      string `gorm:"type:varchar(128);not null;uniqueIndex:ux_group_member,priority:2"`
	AddedBy   int64  `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Group   Group         `gorm:"foreignKey:GroupID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Aliases []MemberAlias `gorm:"foreignKey:MemberID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Member.
func (Member) TableName() string { return "members" }

// Tag is an independent taxonomy entity applied to links. Deleting a tag
// cascades into its aliases and into link_tags rows.
type Tag struct {
	ID        string `gorm:"type:char(36);primaryKey"`
	Name      string `gorm:"type:varchar(128);not null;uniqueIndex"`
	AddedBy   int64  `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Aliases []TagAlias `gorm:"foreignKey:TagID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Tag.
func (Tag) TableName() string { return "tags" }

// GroupAlias maps a lower-cased alias string to a group. Alias strings are
// unique across the whole group namespace: one alias resolves one group.
type GroupAlias struct {
	ID        string `gorm:"type:char(36);primaryKey"`
	GroupID   string `gorm:"type:char(36);not null;index"`
	Alias     string `gorm:"type:varchar(128);not null;uniqueIndex"`
	AddedBy   int64  `gorm:"not null"`
	CreatedAt time.Time

	Group Group `gorm:"foreignKey:GroupID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for GroupAlias.
func (GroupAlias) TableName() string { return "group_aliases" }

// MemberAlias maps a lower-cased alias string to a member. The alias is
// unique within the owning group (GroupID is denormalized onto the row for
// exactly that constraint); the same string may recur under other groups.
type MemberAlias struct {
	ID        string `gorm:"type:char(36);primaryKey"`
	MemberID  string `gorm:"type:char(36);not null;index"`
	GroupID   string `gorm:"type:char(36);not null;uniqueIndex:ux_group_member_alias,priority:1"`
	Alias     string `gorm:"type:varchar(128);not null;uniqueIndex:ux_group_member_alias,priority:2"`
	AddedBy   int64  `gorm:"not null"`
	CreatedAt time.Time

	Member Member `gorm:"foreignKey:MemberID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for MemberAlias.
func (MemberAlias) TableName() string { return "member_aliases" }

// TagAlias maps a lower-cased alias string to a tag. Alias strings are
// unique across the tag namespace.
type TagAlias struct {
	ID        string `gorm:"type:char(36);primaryKey"`
	TagID     string `gorm:"type:char(36);not null;index"`
	Alias     string `gorm:"type:varchar(128);not null;uniqueIndex"`
	AddedBy   int64  `gorm:"not null"`
	CreatedAt time.Time

	Tag Tag `gorm:"foreignKey:TagID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for TagAlias.
func (TagAlias) TableName() string { return "tag_aliases" }

// Link is a curated media URL. Association to members and tags goes through
// the LinkMember and LinkTag join rows, which cascade with the link.
type Link struct {
	ID        string `gorm:"type:char(36);primaryKey"`
	URL       string `gorm:"type:varchar(512);not null;uniqueIndex"`
	AddedBy   int64  `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Members []LinkMember `gorm:"foreignKey:LinkID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Tags    []LinkTag    `gorm:"foreignKey:LinkID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Link.
func (Link) TableName() string { return "links" }

// LinkMember associates a link with a member. A link may feature several
// members; the pair is unique.
type LinkMember struct {
	ID        string `gorm:"type:char(36);primaryKey"`
	LinkID    string `gorm:"type:char(36);not null;uniqueIndex:ux_link_member,priority:1"`
	MemberID  string `gorm:"type:char(36);not null;uniqueIndex:ux_link_member,priority:2;index"`
	CreatedAt time.Time

	Link   Link   `gorm:"foreignKey:LinkID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Member Member `gorm:"foreignKey:MemberID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for LinkMember.
func (LinkMember) TableName() string { return "link_members" }

// LinkTag associates a link with a tag. The pair is unique, and rows are
// removed whenever either side is deleted.
type LinkTag struct {
	ID        string `gorm:"type:char(36);primaryKey"`
	LinkID    string `gorm:"type:char(36);not null;uniqueIndex:ux_link_tag,priority:1"`
	TagID     string `gorm:"type:char(36);not null;uniqueIndex:ux_link_tag,priority:2;index"`
	CreatedAt time.Time

	Link Link `gorm:"foreignKey:LinkID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Tag  Tag  `gorm:"foreignKey:TagID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for LinkTag.
func (LinkTag) TableName() string { return "link_tags" }

// Account is a followed external social account (a stream source). Account
// rows are never deleted by any bot operation; unfollow only removes
// subscription rows.
type Account struct {
	ID        string `gorm:"type:char(36);primaryKey"`
	SourceID  string `gorm:"type:varchar(64);not null;uniqueIndex"`
	Handle    string `gorm:"type:varchar(64);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the database table name for Account.
func (Account) TableName() string { return "accounts" }

// Subscription records that a destination channel wants events from a
// source account. The (source, channel) pair is unique; repeated subscribes
// are detected through the constraint, not a pre-check. Rows referencing a
// channel that no longer exists are tolerated (dangling subscriptions).
type Subscription struct {
	ID        string `gorm:"type:char(36);primaryKey"`
	SourceID  string `gorm:"type:varchar(64);not null;uniqueIndex:ux_source_channel,priority:1"`
	ChannelID int64  `gorm:"not null;uniqueIndex:ux_source_channel,priority:2;index"`
	CreatedAt time.Time
}

// TableName returns the database table name for Subscription.
func (Subscription) TableName() string { return "subscriptions" }

// Channel is a known destination channel. Auditing marks channels that
// receive moderation audit messages.
type Channel struct {
	ChannelID int64 `gorm:"primaryKey;autoIncrement:false"`
	Auditing  bool  `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the database table name for Channel.
func (Channel) TableName() string { return "channels" }

// User accumulates XP and contribution counters. Rows are keyed by the chat
// platform user id; counters are incremented in memory and flushed
// periodically (see counters.Tracker).
type User struct {
	UserID       int64 `gorm:"primaryKey;autoIncrement:false"`
	XP           int64 `gorm:"not null;default:0"`
	Contribution int64 `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Moderator marks a user as moderation-privileged.
type Moderator struct {
	UserID    int64 `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time
}

// TableName returns the database table name for Moderator.
func (Moderator) TableName() string { return "moderators" }

// CustomCommand is a moderator-defined name -> canned response mapping.
type CustomCommand struct {
	ID        string `gorm:"type:char(36);primaryKey"`
	Name      string `gorm:"type:varchar(64);not null;uniqueIndex"`
	Response  string `gorm:"type:text;not null"`
	AddedBy   int64  `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the database table name for CustomCommand.
func (CustomCommand) TableName() string { return "custom_commands" }
