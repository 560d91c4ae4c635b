package discord

import (
	"fmt"
	"time"

	logx "crobot/pkg/logx"
)

// AnnounceLive posts a go-live notice for each handle, in every guild where a
// linked member is present and a twitch channel resolves. One guild's failure
// never blocks the others.
func (b *Bot) AnnounceLive(handles []string) {
	if len(handles) == 0 {
		return
	}
	links := b.st.Links()

	// Invert uid -> handle so each handle maps to its linked users.
	usersByHandle := make(map[string][]string, len(links))
	for uid, handle := range links {
		usersByHandle[handle] = append(usersByHandle[handle], uid)
	}

	for _, handle := range handles {
		for _, guildID := range b.GuildIDs() {
			cfg := b.resolveGuild(guildID)
			if cfg.TwitchChannelID == "" {
				continue
			}
			for _, uid := range usersByHandle[handle] {
				m := b.member(guildID, uid)
				if m == nil {
					continue
				}
				b.sendMessage(cfg.TwitchChannelID,
					fmt.Sprintf("@everyone 🔥 <@%s> is now **LIVE** on Twitch!\nhttps://twitch.tv/%s", uid, handle))
				b.log.Info("announced live",
					logx.String("handle", handle),
					logx.String("guild", guildID))
				break
			}
		}
	}
}

// AnnounceBirthdays wishes every member whose stored date matches today,
// per guild, in the guild's welcome channel.
func (b *Bot) AnnounceBirthdays(dueUserIDs []string) {
	if len(dueUserIDs) == 0 {
		return
	}
	for _, guildID := range b.GuildIDs() {
		cfg := b.resolveGuild(guildID)
		if cfg.WelcomeChannelID == "" {
			continue
		}
		for _, uid := range dueUserIDs {
			if b.member(guildID, uid) == nil {
				continue
			}
			b.sendMessage(cfg.WelcomeChannelID,
				fmt.Sprintf("🎂 Happy birthday <@%s>! Wishing you an amazing day! 🎉", uid))
			b.log.Info("birthday wished", logx.String("guild", guildID), logx.String("user", uid))
		}
	}
}

// RotateStatus advances the presence message by one step.
func (b *Bot) RotateStatus(step int) {
	if len(statusMessages) == 0 {
		return
	}
	text := statusMessages[step%len(statusMessages)]
	if err := b.session.UpdateGameStatus(0, text); err != nil {
		b.log.Warn("status update failed", logx.Err(err))
		return
	}
	b.log.Debug("status rotated", logx.String("status", text))
}

// SweepSessions deletes announcement messages for expired gathering sessions.
func (b *Bot) SweepSessions(now time.Time) {
	for _, sess := range b.registry.SweepExpired(now) {
		if err := b.session.ChannelMessageDelete(sess.ChannelID, sess.MessageID); err != nil {
			b.log.Warn("session message delete failed",
				logx.String("message", sess.MessageID),
				logx.Err(err))
			continue
		}
		b.log.Info("expired session removed",
			logx.String("message", sess.MessageID),
			logx.String("game", sess.Game))
	}
}
