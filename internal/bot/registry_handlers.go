package bot

import (
	"context"
	"errors"
	"strings"

	"github.com/mymmrac/telego"

	"github.com/stanbotdev/stanbot/internal/services"
)

func (b *Bot) addGroupHandler(bot *telego.Bot, update telego.Update) {
	ctx := update.Context()
	chatID := update.Message.Chat.ID
	args := commandArgs(update.Message.Text)

	if len(args) < 1 {
		b.send(ctx, chatID, "Usage: /addgroup <name>")
		finish("addgroup", nil)
		return
	}

	group, err := b.registry.CreateGroup(ctx, args[0], update.Message.From.ID)
	switch {
	case errors.Is(err, services.ErrGroupExists):
		b.sendf(ctx, chatID, "Group %q already exists.", services.Normalize(args[0]))
	case err != nil:
		b.send(ctx, chatID, "Database error. Try again later.")
	default:
		b.sendf(ctx, chatID, "Group %q created.", group.Name)
	}
	finish("addgroup", err)
}

func (b *Bot) delGroupHandler(bot *telego.Bot, update telego.Update) {
	ctx := update.Context()
	chatID := update.Message.Chat.ID
	args := commandArgs(update.Message.Text)

	if len(args) < 1 {
		b.send(ctx, chatID, "Usage: /delgroup <group>")
		finish("delgroup", nil)
		return
	}

	err := b.registry.DeleteGroup(ctx, args[0])
	switch {
	case errors.Is(err, services.ErrGroupNotFound):
		b.sendf(ctx, chatID, "No group matches %q.", args[0])
	case err != nil:
		b.send(ctx, chatID, "Database error. Try again later.")
	default:
		b.sendf(ctx, chatID, "Group %q deleted, along with its members, aliases, and links.", services.Normalize(args[0]))
		b.notifyAudit(ctx, "Audit: user %d deleted group %q.", update.Message.From.ID, services.Normalize(args[0]))
	}
	finish("delgroup", err)
}

func (b *Bot) addGroupAliasHandler(bot *telego.Bot, update telego.Update) {
	ctx := update.Context()
	chatID := update.Message.Chat.ID
	args := commandArgs(update.Message.Text)

	if len(args) < 2 {
		b.send(ctx, chatID, "Usage: /addgroupalias <group> <alias> [alias ...]")
		finish("addgroupalias", nil)
		return
	}

	res, err := b.registry.AddGroupAliases(ctx, args[0], args[1:], update.Message.From.ID)
	b.replyBatchAdd(ctx, chatID, "alias", res, err, errors.Is(err, services.ErrGroupNotFound), args[0])
	finish("addgroupalias", err)
}

func (b *Bot) delGroupAliasHandler(bot *telego.Bot, update telego.Update) {
	ctx := update.Context()
	chatID := update.Message.Chat.ID
	args := commandArgs(update.Message.Text)

	if len(args) < 2 {
		b.send(ctx, chatID, "Usage: /delgroupalias <group> <alias> [alias ...]")
		finish("delgroupalias", nil)
		return
	}

	res, err := b.registry.RemoveGroupAliases(ctx, args[0], args[1:])
	b.replyBatchRemove(ctx, chatID, "alias", res, err, errors.Is(err, services.ErrGroupNotFound), args[0])
	finish("delgroupalias", err)
}

func (b *Bot) addMemberHandler(bot *telego.Bot, update telego.Update) {
	ctx := update.Context()
	chatID := update.Message.Chat.ID
	args := commandArgs(update.Message.Text)

	if len(args) < 2 {
		b.send(ctx, chatID, "Usage: /addmember <group> <name>")
		finish("addmember", nil)
		return
	}

	member, err := b.registry.CreateMember(ctx, args[0], args[1], update.Message.From.ID)
	switch {
	case errors.Is(err, services.ErrGroupNotFound):
		b.sendf(ctx, chatID, "No group matches %q.", args[0])
	case errors.Is(err, services.ErrMemberExists):
		b.sendf(ctx, chatID, "Member %q already exists in that group.", services.Normalize(args[1]))
	case err != nil:
		b.send(ctx, chatID, "Database error. Try again later.")
	default:
		b.sendf(ctx, chatID, "Member %q added.", member.Name)
	}
	finish("addmember", err)
}

func (b *Bot) delMemberHandler(bot *telego.Bot, update telego.Update) {
	ctx := update.Context()
	chatID := update.Message.Chat.ID
	args := commandArgs(update.Message.Text)

	if len(args) < 2 {
		b.send(ctx, chatID, "Usage: /delmember <group> <member>")
		finish("delmember", nil)
		return
	}

	err := b.registry.DeleteMember(ctx, args[0], args[1])
	switch {
	case errors.Is(err, services.ErrGroupNotFound):
		b.sendf(ctx, chatID, "No group matches %q.", args[0])
	case errors.Is(err, services.ErrMemberNotFound):
		b.sendf(ctx, chatID, "No member matches %q in that group.", args[1])
	case err != nil:
		b.send(ctx, chatID, "Database error. Try again later.")
	default:
		b.sendf(ctx, chatID, "Member %q deleted, along with their aliases and link entries.", services.Normalize(args[1]))
		b.notifyAudit(ctx, "Audit: user %d deleted member %q from %q.", update.Message.From.ID, services.Normalize(args[1]), services.Normalize(args[0]))
	}
	finish("delmember", err)
}

func (b *Bot) addMemberAliasHandler(bot *telego.Bot, update telego.Update) {
	ctx := update.Context()
	chatID := update.Message.Chat.ID
	args := commandArgs(update.Message.Text)

	if len(args) < 3 {
		b.send(ctx, chatID, "Usage: /addmemberalias <group> <member> <alias> [alias ...]")
		finish("addmemberalias", nil)
		return
	}

	res, err := b.registry.AddMemberAliases(ctx, args[0], args[1], args[2:], update.Message.From.ID)
	switch {
	case errors.Is(err, services.ErrMemberNotFound):
		b.sendf(ctx, chatID, "No member matches %q in that group.", args[1])
		finish("addmemberalias", err)
		return
	}
	b.replyBatchAdd(ctx, chatID, "alias", res, err, errors.Is(err, services.ErrGroupNotFound), args[0])
	finish("addmemberalias", err)
}

func (b *Bot) delMemberAliasHandler(bot *telego.Bot, update telego.Update) {
	ctx := update.Context()
	chatID := update.Message.Chat.ID
	args := commandArgs(update.Message.Text)

	if len(args) < 3 {
		b.send(ctx, chatID, "Usage: /delmemberalias <group> <member> <alias> [alias ...]")
		finish("delmemberalias", nil)
		return
	}

	res, err := b.registry.RemoveMemberAliases(ctx, args[0], args[1], args[2:])
	switch {
	case errors.Is(err, services.ErrMemberNotFound):
		b.sendf(ctx, chatID, "No member matches %q in that group.", args[1])
		finish("delmemberalias", err)
		return
	}
	b.replyBatchRemove(ctx, chatID, "alias", res, err, errors.Is(err, services.ErrGroupNotFound), args[0])
	finish("delmemberalias", err)
}

func (b *Bot) addTagHandler(bot *telego.Bot, update telego.Update) {
	ctx := update.Context()
	chatID := update.Message.Chat.ID
	args := commandArgs(update.Message.Text)

	if len(args) < 1 {
		b.send(ctx, chatID, "Usage: /addtag <name>")
		finish("addtag", nil)
		return
	}

	tag, err := b.registry.CreateTag(ctx, args[0], update.Message.From.ID)
	switch {
	case errors.Is(err, services.ErrTagExists):
		b.sendf(ctx, chatID, "Tag %q already exists.", services.Normalize(args[0]))
	case err != nil:
		b.send(ctx, chatID, "Database error. Try again later.")
	default:
		b.sendf(ctx, chatID, "Tag %q created.", tag.Name)
	}
	finish("addtag", err)
}

func (b *Bot) delTagHandler(bot *telego.Bot, update telego.Update) {
	ctx := update.Context()
	chatID := update.Message.Chat.ID
	args := commandArgs(update.Message.Text)

	if len(args) < 1 {
		b.send(ctx, chatID, "Usage: /deltag <tag>")
		finish("deltag", nil)
		return
	}

	err := b.registry.DeleteTag(ctx, args[0])
	switch {
	case errors.Is(err, services.ErrTagNotFound):
		b.sendf(ctx, chatID, "No tag matches %q.", args[0])
	case err != nil:
		b.send(ctx, chatID, "Database error. Try again later.")
	default:
		b.sendf(ctx, chatID, "Tag %q deleted, along with its aliases and link entries.", services.Normalize(args[0]))
	}
	finish("deltag", err)
}

func (b *Bot) addTagAliasHandler(bot *telego.Bot, update telego.Update) {
	ctx := update.Context()
	chatID := update.Message.Chat.ID
	args := commandArgs(update.Message.Text)

	if len(args) < 2 {
		b.send(ctx, chatID, "Usage: /addtagalias <tag> <alias> [alias ...]")
		finish("addtagalias", nil)
		return
	}

	res, err := b.registry.AddTagAliases(ctx, args[0], args[1:], update.Message.From.ID)
	b.replyBatchAdd(ctx, chatID, "alias", res, err, errors.Is(err, services.ErrTagNotFound), args[0])
	finish("addtagalias", err)
}

func (b *Bot) delTagAliasHandler(bot *telego.Bot, update telego.Update) {
	ctx := update.Context()
	chatID := update.Message.Chat.ID
	args := commandArgs(update.Message.Text)

	if len(args) < 2 {
		b.send(ctx, chatID, "Usage: /deltagalias <tag> <alias> [alias ...]")
		finish("deltagalias", nil)
		return
	}

	res, err := b.registry.RemoveTagAliases(ctx, args[0], args[1:])
	b.replyBatchRemove(ctx, chatID, "alias", res, err, errors.Is(err, services.ErrTagNotFound), args[0])
	finish("deltagalias", err)
}

func (b *Bot) groupsHandler(bot *telego.Bot, update telego.Update) {
	ctx := update.Context()
	chatID := update.Message.Chat.ID

	groups, err := b.registry.Groups(ctx)
	if err != nil {
		b.send(ctx, chatID, "Database error. Try again later.")
		finish("groups", err)
		return
	}
	names := make([]string, 0, len(groups))
	for _, g := range groups {
		names = append(names, g.Name)
	}
	b.sendf(ctx, chatID, "Groups: %s", joinOrNone(names))
	finish("groups", nil)
}

func (b *Bot) tagsHandler(bot *telego.Bot, update telego.Update) {
	ctx := update.Context()
	chatID := update.Message.Chat.ID

	tags, err := b.registry.Tags(ctx)
	if err != nil {
		b.send(ctx, chatID, "Database error. Try again later.")
		finish("tags", err)
		return
	}
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	b.sendf(ctx, chatID, "Tags: %s", joinOrNone(names))
	finish("tags", nil)
}

func (b *Bot) membersHandler(bot *telego.Bot, update telego.Update) {
	ctx := update.Context()
	chatID := update.Message.Chat.ID
	args := commandArgs(update.Message.Text)

	if len(args) < 1 {
		b.send(ctx, chatID, "Usage: /members <group>")
		finish("members", nil)
		return
	}

	members, err := b.registry.Members(ctx, args[0])
	switch {
	case errors.Is(err, services.ErrGroupNotFound):
		b.sendf(ctx, chatID, "No group matches %q.", args[0])
		finish("members", err)
		return
	case err != nil:
		b.send(ctx, chatID, "Database error. Try again later.")
		finish("members", err)
		return
	}
	names := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, m.Name)
	}
	b.sendf(ctx, chatID, "Members: %s", joinOrNone(names))
	finish("members", nil)
}

// aliasesHandler lists registered aliases: /aliases <group>,
// /aliases <group> <member>, or /aliases tag <tag>.
func (b *Bot) aliasesHandler(bot *telego.Bot, update telego.Update) {
	ctx := update.Context()
	chatID := update.Message.Chat.ID
	args := commandArgs(update.Message.Text)

	if len(args) < 1 {
		b.send(ctx, chatID, "Usage: /aliases <group> [member] or /aliases tag <tag>")
		finish("aliases", nil)
		return
	}

	var (
		aliases []string
		err     error
	)
	switch {
	case len(args) >= 2 && services.Normalize(args[0]) == "tag":
		aliases, err = b.registry.TagAliases(ctx, args[1])
	case len(args) >= 2:
		aliases, err = b.registry.MemberAliases(ctx, args[0], args[1])
	default:
		aliases, err = b.registry.GroupAliases(ctx, args[0])
	}

	switch {
	case errors.Is(err, services.ErrGroupNotFound),
		errors.Is(err, services.ErrMemberNotFound),
		errors.Is(err, services.ErrTagNotFound):
		b.send(ctx, chatID, "Nothing matches that reference.")
	case err != nil:
		b.send(ctx, chatID, "Database error. Try again later.")
	default:
		b.sendf(ctx, chatID, "Aliases: %s", joinOrNone(aliases))
	}
	finish("aliases", err)
}

// replyBatchAdd formats a partition result for alias/tag additions.
func (b *Bot) replyBatchAdd(ctx context.Context, chatID int64, noun string, res services.BatchAddResult, err error, notFound bool, ref string) {
	switch {
	case notFound:
		b.sendf(ctx, chatID, "Nothing matches %q.", ref)
	case err != nil:
		b.send(ctx, chatID, "Database error. Try again later.")
	default:
		reply := pluralized("Added", len(res.Added), noun)
		if len(res.Duplicates) > 0 {
			reply += " Already present: " + strings.Join(res.Duplicates, ", ") + "."
		}
		b.send(ctx, chatID, reply)
	}
}

// replyBatchRemove formats a partition result for alias/tag removals.
func (b *Bot) replyBatchRemove(ctx context.Context, chatID int64, noun string, res services.BatchRemoveResult, err error, notFound bool, ref string) {
	switch {
	case notFound:
		b.sendf(ctx, chatID, "Nothing matches %q.", ref)
	case err != nil:
		b.send(ctx, chatID, "Database error. Try again later.")
	default:
		reply := pluralized("Removed", len(res.Removed), noun)
		if len(res.Missing) > 0 {
			reply += " Unknown: " + strings.Join(res.Missing, ", ") + "."
		}
		b.send(ctx, chatID, reply)
	}
}
