package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mymmrac/telego"

	"github.com/stanbotdev/stanbot/internal/services"
)

// leaderboardHandler replies with a ranking: /leaderboard [members|groups|users]
func (b *Bot) leaderboardHandler(bot *telego.Bot, update telego.Update) {
	ctx := update.Context()
	chatID := update.Message.Chat.ID
	args := commandArgs(update.Message.Text)

	kind := "members"
	if len(args) >= 1 {
		kind = services.Normalize(args[0])
	}

	var (
		lines []string
		err   error
	)
	switch kind {
	case "groups":
		ranks, e := b.community.GroupLeaderboard(ctx, b.leaderboardSize)
		err = e
		for i, r := range ranks {
			lines = append(lines, fmt.Sprintf("%d. %s (%d links)", i+1, r.Group, r.Links))
		}
	case "users":
		users, e := b.community.Leaderboard(ctx, b.leaderboardSize)
		err = e
		for i, u := range users {
			lines = append(lines, fmt.Sprintf("%d. user %d (%d contributions)", i+1, u.UserID, u.Contribution))
		}
	default:
		ranks, e := b.community.MemberLeaderboard(ctx, b.leaderboardSize)
		err = e
		for i, r := range ranks {
			lines = append(lines, fmt.Sprintf("%d. %s / %s (%d links)", i+1, r.Group, r.Member, r.Links))
		}
	}

	switch {
	case err != nil:
		b.send(ctx, chatID, "Database error. Try again later.")
	case len(lines) == 0:
		b.send(ctx, chatID, "Nothing on the leaderboard yet.")
	default:
		b.send(ctx, chatID, strings.Join(lines, "\n"))
	}
	finish("leaderboard", err)
}

func (b *Bot) profileHandler(bot *telego.Bot, update telego.Update) {
	ctx := update.Context()
	chatID := update.Message.Chat.ID

	user, err := b.community.Profile(ctx, update.Message.From.ID)
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		b.send(ctx, chatID, "No profile yet. Say something first!")
	case err != nil:
		b.send(ctx, chatID, "Database error. Try again later.")
	default:
		b.sendf(ctx, chatID, "XP: %d, contributions: %d", user.XP, user.Contribution)
	}
	finish("profile", err)
}

func (b *Bot) statsHandler(bot *telego.Bot, update telego.Update) {
	ctx := update.Context()
	chatID := update.Message.Chat.ID

	totals, err := b.community.Totals(ctx)
	if err != nil {
		b.send(ctx, chatID, "Database error. Try again later.")
		finish("stats", err)
		return
	}
	b.sendf(ctx, chatID, "%d links across %d groups and %d members.",
		totals.Links, totals.Groups, totals.Members)
	finish("stats", nil)
}

func (b *Bot) addModHandler(bot *telego.Bot, update telego.Update) {
	ctx := update.Context()
	chatID := update.Message.Chat.ID
	args := commandArgs(update.Message.Text)

	userID, ok := parseUserID(args)
	if !ok {
		b.send(ctx, chatID, "Usage: /addmod <user_id>")
		finish("addmod", nil)
		return
	}

	err := b.community.AddModerator(ctx, userID)
	switch {
	case errors.Is(err, services.ErrAlreadyModerator):
		b.send(ctx, chatID, "That user is already a moderator.")
	case err != nil:
		b.send(ctx, chatID, "Database error. Try again later.")
	default:
		b.sendf(ctx, chatID, "User %d is now a moderator.", userID)
		b.notifyAudit(ctx, "Audit: user %d granted moderator to %d.", update.Message.From.ID, userID)
	}
	finish("addmod", err)
}

func (b *Bot) delModHandler(bot *telego.Bot, update telego.Update) {
	ctx := update.Context()
	chatID := update.Message.Chat.ID
	args := commandArgs(update.Message.Text)

	userID, ok := parseUserID(args)
	if !ok {
		b.send(ctx, chatID, "Usage: /delmod <user_id>")
		finish("delmod", nil)
		return
	}

	err := b.community.RemoveModerator(ctx, userID)
	switch {
	case errors.Is(err, services.ErrNotModerator):
		b.send(ctx, chatID, "That user is not a moderator.")
	case err != nil:
		b.send(ctx, chatID, "Database error. Try again later.")
	default:
		b.sendf(ctx, chatID, "User %d is no longer a moderator.", userID)
		b.notifyAudit(ctx, "Audit: user %d revoked moderator from %d.", update.Message.From.ID, userID)
	}
	finish("delmod", err)
}

// mergeHandler moves one user's contribution total onto another:
// /merge <from_user_id> <to_user_id>
func (b *Bot) mergeHandler(bot *telego.Bot, update telego.Update) {
	ctx := update.Context()
	chatID := update.Message.Chat.ID
	args := commandArgs(update.Message.Text)

	if len(args) < 2 {
		b.send(ctx, chatID, "Usage: /merge <from_user_id> <to_user_id>")
		finish("merge", nil)
		return
	}
	fromID, okFrom := parseUserID(args[:1])
	toID, okTo := parseUserID(args[1:])
	if !okFrom || !okTo {
		b.send(ctx, chatID, "Usage: /merge <from_user_id> <to_user_id>")
		finish("merge", nil)
		return
	}

	err := b.community.MergeContribution(ctx, fromID, toID)
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		b.sendf(ctx, chatID, "User %d has no profile to merge.", fromID)
	case err != nil:
		b.send(ctx, chatID, "Database error. Try again later.")
	default:
		b.sendf(ctx, chatID, "Merged contributions from %d into %d.", fromID, toID)
		b.notifyAudit(ctx, "Audit: user %d merged contributions from %d into %d.", update.Message.From.ID, fromID, toID)
	}
	finish("merge", err)
}

func (b *Bot) addCommandHandler(bot *telego.Bot, update telego.Update) {
	ctx := update.Context()
	chatID := update.Message.Chat.ID
	args := commandArgs(update.Message.Text)

	if len(args) < 2 {
		b.send(ctx, chatID, "Usage: /addcommand <name> <response text>")
		finish("addcommand", nil)
		return
	}

	name := args[0]
	response := strings.Join(args[1:], " ")
	err := b.community.AddCommand(ctx, name, response, update.Message.From.ID)
	switch {
	case errors.Is(err, services.ErrCommandExists):
		b.sendf(ctx, chatID, "Command %q already exists.", services.Normalize(name))
	case err != nil:
		b.send(ctx, chatID, "Database error. Try again later.")
	default:
		b.sendf(ctx, chatID, "Command /%s added.", services.Normalize(name))
	}
	finish("addcommand", err)
}

func (b *Bot) delCommandHandler(bot *telego.Bot, update telego.Update) {
	ctx := update.Context()
	chatID := update.Message.Chat.ID
	args := commandArgs(update.Message.Text)

	if len(args) < 1 {
		b.send(ctx, chatID, "Usage: /delcommand <name>")
		finish("delcommand", nil)
		return
	}

	err := b.community.RemoveCommand(ctx, args[0])
	switch {
	case errors.Is(err, services.ErrCommandNotFound):
		b.sendf(ctx, chatID, "No command named %q.", services.Normalize(args[0]))
	case err != nil:
		b.send(ctx, chatID, "Database error. Try again later.")
	default:
		b.sendf(ctx, chatID, "Command /%s removed.", services.Normalize(args[0]))
	}
	finish("delcommand", err)
}

func (b *Bot) commandsHandler(bot *telego.Bot, update telego.Update) {
	ctx := update.Context()
	chatID := update.Message.Chat.ID

	cmds, err := b.community.Commands(ctx)
	if err != nil {
		b.send(ctx, chatID, "Database error. Try again later.")
		finish("commands", err)
		return
	}
	names := make([]string, 0, len(cmds))
	for _, c := range cmds {
		names = append(names, "/"+c.Name)
	}
	b.sendf(ctx, chatID, "Custom commands: %s", joinOrNone(names))
	finish("commands", nil)
}

// customCommandHandler answers any unrecognized /command from the custom
// command table. Unknown commands are ignored to keep group chats quiet.
func (b *Bot) customCommandHandler(bot *telego.Bot, update telego.Update) {
	ctx := update.Context()
	chatID := update.Message.Chat.ID

	fields := strings.Fields(update.Message.Text)
	if len(fields) == 0 {
		return
	}
	name := strings.TrimPrefix(fields[0], "/")
	// Strip the @botname suffix used in group chats.
	if i := strings.Index(name, "@"); i >= 0 {
		name = name[:i]
	}

	response, err := b.community.FindCommand(ctx, name)
	if errors.Is(err, services.ErrCommandNotFound) {
		return
	}
	if err != nil {
		finish("custom", err)
		return
	}
	b.send(ctx, chatID, response)
	finish("custom", nil)
}

func parseUserID(args []string) (int64, bool) {
	if len(args) < 1 {
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
