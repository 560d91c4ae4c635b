package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	logx "crobot/pkg/logx"
)

func commandDefs() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{Name: "ping", Description: "Check CROBOT's response time"},
		{Name: "rank", Description: "Show your current level and prestige"},
		{Name: "xp", Description: "Show your XP stats"},
		{Name: "leaderboard", Description: "Show top 10 ranked members"},
		{Name: "prestige", Description: "Reset your level and start prestige", Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionBoolean, Name: "confirm", Description: "Set to true to confirm prestige"},
		}},
		{Name: "resetuserdata", Description: "Reset XP and level data (admin only)", Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionUser, Name: "member", Description: "Member to reset; omit to reset everyone"},
		}},
		{Name: "addtwitch", Description: "Link your Twitch account to CROBOT", Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "twitch_username", Description: "Your Twitch username", Required: true},
		}},
		{Name: "mytwitch", Description: "Show your linked Twitch username"},
		{Name: "setbirthday", Description: "Set your birthday (YYYY-MM-DD)", Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "date", Description: "Your birthday in YYYY-MM-DD format", Required: true},
		}},
		{Name: "mybirthday", Description: "Show your saved birthday"},
		{Name: "setwelcome", Description: "Set this server's welcome channel (admin only)", Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionChannel, Name: "channel", Description: "Channel to send welcome messages in", Required: true},
		}},
		{Name: "setwelcomedm", Description: "Set the DM welcome message for this server (admin only)", Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "message", Description: "Welcome DM text. Use {user} and {server} placeholders.", Required: true},
		}},
		{Name: "setmemes", Description: "Set this server's meme channel (admin only)", Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionChannel, Name: "channel", Description: "Channel to auto-post memes in", Required: true},
		}},
		{Name: "setmemeinterval", Description: "Set how often CROBOT posts memes in this server (admin only)", Options: []*discordgo.ApplicationCommandOption{
			{
				Type: discordgo.ApplicationCommandOptionString, Name: "interval", Description: "How often memes should be posted", Required: true,
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "Every 2 hours", Value: "2h"},
					{Name: "Every 6 hours", Value: "6h"},
					{Name: "Every 12 hours", Value: "12h"},
					{Name: "Every 48 hours", Value: "48h"},
					{Name: "Once a week", Value: "168h"},
				},
			},
		}},
		{Name: "settwitch", Description: "Set this server's Twitch announcement channel (admin only)", Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionChannel, Name: "channel", Description: "Channel to announce Twitch go-lives in", Required: true},
		}},
		{Name: "setautorole", Description: "Set this server's auto-role for new members (admin only)", Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionRole, Name: "role", Description: "Role to give to new members automatically", Required: true},
		}},
		{Name: "setmodrole", Description: "Set which role CROBOT pings on moderation escalations (admin only)", Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionRole, Name: "role", Description: "Role to ping when someone hits the escalation tier", Required: true},
		}},
		{Name: "addwatchword", Description: "Add a word or phrase for CROBOT to watch for (admin only)", Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "phrase", Description: "Word or phrase to watch for", Required: true},
		}},
		{Name: "removewatchword", Description: "Remove a watched word or phrase (admin only)", Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "phrase", Description: "Word or phrase to remove", Required: true},
		}},
		{Name: "listwatchwords", Description: "List all watched words/phrases for this server"},
		{Name: "resetwarnings", Description: "Reset moderation warnings for a user (admin only)", Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionUser, Name: "member", Description: "Member whose warnings should be cleared", Required: true},
		}},
		{Name: "findplayers", Description: "Find and gather players for a game", Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "game", Description: "Name of the game", Required: true},
		}},
		{Name: "coinflip", Description: "Flip a coin, win XP if you guess right!", Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "guess", Description: "Heads or tails?", Required: true},
		}},
		{Name: "askcrobot", Description: "Ask CROBOT for advice or an opinion", Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "question", Description: "What do you want to know?", Required: true},
		}},
		{Name: "love", Description: "Spread love and positivity in the server 💖"},
	}
}

// registerCommands syncs to the primary guild first (instant availability)
// and then globally (may take up to an hour to propagate).
func (b *Bot) registerCommands() error {
	appID := b.session.State.User.ID
	defs := commandDefs()

	if b.cfg.PrimaryGuildID != "" {
		cmds, err := b.session.ApplicationCommandBulkOverwrite(appID, b.cfg.PrimaryGuildID, defs)
		if err != nil {
			return fmt.Errorf("guild command sync: %w", err)
		}
		b.registeredCmds = append(b.registeredCmds, cmds...)
		b.log.Info("commands synced to primary guild", logx.String("guild", b.cfg.PrimaryGuildID))
	}

	cmds, err := b.session.ApplicationCommandBulkOverwrite(appID, "", defs)
	if err != nil {
		return fmt.Errorf("global command sync: %w", err)
	}
	b.registeredCmds = append(b.registeredCmds, cmds...)
	b.log.Info("global commands synced", logx.Int("count", len(cmds)))
	return nil
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	name := i.ApplicationCommandData().Name

	handlers := map[string]func(*discordgo.InteractionCreate){
		"ping":            b.cmdPing,
		"rank":            b.cmdRank,
		"xp":              b.cmdXP,
		"leaderboard":     b.cmdLeaderboard,
		"prestige":        b.cmdPrestige,
		"resetuserdata":   b.cmdResetUserData,
		"addtwitch":       b.cmdAddTwitch,
		"mytwitch":        b.cmdMyTwitch,
		"setbirthday":     b.cmdSetBirthday,
		"mybirthday":      b.cmdMyBirthday,
		"setwelcome":      b.cmdSetWelcome,
		"setwelcomedm":    b.cmdSetWelcomeDM,
		"setmemes":        b.cmdSetMemes,
		"setmemeinterval": b.cmdSetMemeInterval,
		"settwitch":       b.cmdSetTwitch,
		"setautorole":     b.cmdSetAutoRole,
		"setmodrole":      b.cmdSetModRole,
		"addwatchword":    b.cmdAddWatchword,
		"removewatchword": b.cmdRemoveWatchword,
		"listwatchwords":  b.cmdListWatchwords,
		"resetwarnings":   b.cmdResetWarnings,
		"findplayers":     b.cmdFindPlayers,
		"coinflip":        b.cmdCoinflip,
		"askcrobot":       b.cmdAskCrobot,
		"love":            b.cmdLove,
	}

	h, ok := handlers[name]
	if !ok {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("command handler panicked", logx.String("command", name), logx.Any("panic", r))
		}
	}()
	h(i)
}

// ---- interaction helpers ----

func (b *Bot) respond(i *discordgo.InteractionCreate, content string, ephemeral bool) {
	data := &discordgo.InteractionResponseData{Content: content}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		b.log.Warn("interaction respond failed", logx.Err(err))
	}
}

func (b *Bot) respondEmbed(i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, ephemeral bool) {
	data := &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		b.log.Warn("interaction respond failed", logx.Err(err))
	}
}

// requireAdmin refuses the interaction unless the invoker has administrator
// permission; it reports whether the caller may proceed.
func (b *Bot) requireAdmin(i *discordgo.InteractionCreate) bool {
	if i.Member == nil || i.Member.Permissions&discordgo.PermissionAdministrator == 0 {
		b.respond(i, "❌ Admins only.", true)
		return false
	}
	return true
}

func invokerID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func invokerName(i *discordgo.InteractionCreate) string {
	if i.Member != nil {
		return displayName(i.Member, i.Member.User)
	}
	return displayName(nil, i.User)
}

func opt(i *discordgo.InteractionCreate, name string) *discordgo.ApplicationCommandInteractionDataOption {
	for _, o := range i.ApplicationCommandData().Options {
		if o.Name == name {
			return o
		}
	}
	return nil
}

func optString(i *discordgo.InteractionCreate, name string) string {
	if o := opt(i, name); o != nil {
		return o.StringValue()
	}
	return ""
}

func optBool(i *discordgo.InteractionCreate, name string) bool {
	if o := opt(i, name); o != nil {
		return o.BoolValue()
	}
	return false
}

func optChannelID(i *discordgo.InteractionCreate, name string) string {
	if o := opt(i, name); o != nil {
		return o.Value.(string)
	}
	return ""
}

func optRoleID(i *discordgo.InteractionCreate, name string) string {
	if o := opt(i, name); o != nil {
		return o.Value.(string)
	}
	return ""
}

func optUserID(i *discordgo.InteractionCreate, name string) string {
	if o := opt(i, name); o != nil {
		return o.Value.(string)
	}
	return ""
}
