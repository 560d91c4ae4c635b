package discord

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"crobot/internal/leveling"
	"crobot/internal/moderation"
	logx "crobot/pkg/logx"
)

// XP awards per event type.
const (
	xpPerMessage = 5
	xpCoinflip   = 10
)

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	cfg := b.resolveGuild(m.GuildID)

	// Moderated messages never award XP.
	if phrase, ok := moderation.MatchWatchPhrase(m.Content, cfg.WatchPhrases); ok {
		b.handleModeration(m, phrase, cfg.ModRoleID)
		return
	}

	var (
		leveledUp bool
		newLevel  int
	)
	b.st.UpdateUser(m.Author.ID, func(rec *leveling.Record) {
		leveledUp, newLevel = leveling.GrantXP(rec, xpPerMessage)
	})
	if leveledUp {
		emoji := leveling.EmojiForLevel(newLevel)
		b.sendMessage(m.ChannelID,
			fmt.Sprintf("🎉 %s leveled up to **Level %d**! %s", m.Author.Mention(), newLevel, emoji))
		b.log.Info("user leveled up",
			logx.String("user", m.Author.ID),
			logx.Int("level", newLevel))
	}
}

func (b *Bot) handleModeration(m *discordgo.MessageCreate, phrase, modRoleID string) {
	count := b.st.RecordWarning(m.GuildID, m.Author.ID)

	title := fmt.Sprintf("⚠ Warning %d/%d for %s", count, moderation.EscalateAt, displayName(m.Member, m.Author))
	color := colorYellow
	if moderation.Escalated(count) {
		title = fmt.Sprintf("🚨 Escalation: warning %d for %s", count, displayName(m.Member, m.Author))
		color = colorRed
	}

	preview := truncatePreview(m.Content, 200)

	now := time.Now().UTC().Format(time.RFC3339)
	embed := &discordgo.MessageEmbed{
		Title:     title,
		Color:     color,
		Timestamp: now,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Offender", Value: m.Author.Mention(), Inline: true},
			{Name: "Triggered phrase", Value: "`" + phrase + "`", Inline: true},
			{Name: "Channel", Value: fmt.Sprintf("<#%s>", m.ChannelID)},
			{Name: "Message preview", Value: preview},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("User ID: %s | Guild ID: %s", m.Author.ID, m.GuildID),
		},
	}

	// Escalation pings the configured mod role, falling back to the owner.
	content := ""
	if moderation.Escalated(count) {
		content = b.escalationPing(m.GuildID, modRoleID)
	}

	b.sendComplex(m.ChannelID, &discordgo.MessageSend{Content: content, Embed: embed})
	b.log.Info("warning recorded",
		logx.String("guild", m.GuildID),
		logx.String("user", m.Author.ID),
		logx.Int("count", count),
		logx.String("phrase", phrase))
}

func (b *Bot) escalationPing(guildID, modRoleID string) string {
	if modRoleID != "" {
		if role, err := b.session.State.Role(guildID, modRoleID); err == nil && role != nil {
			return role.Mention()
		}
	}
	if g, err := b.session.State.Guild(guildID); err == nil && g.OwnerID != "" {
		return fmt.Sprintf("<@%s>", g.OwnerID)
	}
	return ""
}

func (b *Bot) onMemberJoin(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m.User == nil || m.User.Bot {
		return
	}
	cfg := b.resolveGuild(m.GuildID)

	guildName := m.GuildID
	memberCount := 0
	if g, err := s.State.Guild(m.GuildID); err == nil {
		guildName = g.Name
		memberCount = g.MemberCount
	}

	// Welcome DM.
	if cfg.WelcomeDM != "" {
		text := strings.NewReplacer(
			"{user}", m.User.Mention(),
			"{server}", guildName,
		).Replace(cfg.WelcomeDM)
		if ch, err := s.UserChannelCreate(m.User.ID); err == nil {
			b.sendMessage(ch.ID, text)
		} else {
			b.log.Warn("welcome dm channel failed", logx.String("user", m.User.ID), logx.Err(err))
		}
	}

	// Auto-role.
	if cfg.AutoRoleID != "" {
		if err := s.GuildMemberRoleAdd(m.GuildID, m.User.ID, cfg.AutoRoleID); err != nil {
			b.log.Warn("auto-role grant failed",
				logx.String("guild", m.GuildID),
				logx.String("user", m.User.ID),
				logx.Err(err))
		}
	}

	// Welcome embed.
	if cfg.WelcomeChannelID == "" {
		return
	}
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🎉 Welcome to %s, %s! 🎉", guildName, displayName(m.Member, m.User)),
		Description: randomWelcome(),
		Color:       colorGreen,
		Thumbnail:   &discordgo.MessageEmbedThumbnail{URL: m.User.AvatarURL("")},
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Member #%d", memberCount)},
	}
	b.sendComplex(cfg.WelcomeChannelID, &discordgo.MessageSend{Embed: embed})
	b.log.Info("welcomed member", logx.String("guild", m.GuildID), logx.String("user", m.User.ID))
}

func (b *Bot) onReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if r.Emoji.Name != "✅" {
		return
	}
	if r.Member != nil && r.Member.User != nil && r.Member.User.Bot {
		return
	}
	count, changed, ok := b.registry.Confirm(r.MessageID, r.UserID)
	if !ok || !changed {
		return
	}
	sess, ok := b.registry.Get(r.MessageID)
	if !ok {
		return
	}
	embed := findPlayersEmbed(sess.AuthorID, sess.Game, count)
	if _, err := s.ChannelMessageEditEmbed(r.ChannelID, r.MessageID, embed); err != nil {
		b.log.Warn("session embed update failed", logx.String("message", r.MessageID), logx.Err(err))
	}
}

// truncatePreview shortens message content to at most max bytes, cutting on
// a rune boundary so multi-byte characters never get split.
func truncatePreview(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func displayName(m *discordgo.Member, u *discordgo.User) string {
	if m != nil && m.Nick != "" {
		return m.Nick
	}
	if u != nil {
		if u.GlobalName != "" {
			return u.GlobalName
		}
		return u.Username
	}
	return "member"
}

func findPlayersEmbed(authorID, game string, confirmations int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Looking for players for **%s**!", game),
		Description: fmt.Sprintf("<@%s> wants to play **%s**!\nReact with ✅ to join!\n\nConfirmations: %d",
			authorID, game, confirmations),
		Color:     colorGreen,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
