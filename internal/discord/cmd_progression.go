package discord

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"crobot/internal/leveling"
	logx "crobot/pkg/logx"
)

func (b *Bot) cmdPing(i *discordgo.InteractionCreate) {
	latency := b.session.HeartbeatLatency().Round(time.Millisecond)
	b.respond(i, fmt.Sprintf("🏓 Pong! (%s)", latency), false)
}

func (b *Bot) cmdRank(i *discordgo.InteractionCreate) {
	uid := invokerID(i)
	rec := b.st.EnsureUser(uid)

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s %s", leveling.EmojiForLevel(rec.Level), invokerName(i)),
		Color: colorPurple,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Level", Value: fmt.Sprintf("%d", rec.Level), Inline: true},
			{Name: "Prestige", Value: fmt.Sprintf("%d", rec.Prestige), Inline: true},
			{Name: "XP", Value: fmt.Sprintf("%d / %d", rec.XP, leveling.RequiredXP(rec.Level)), Inline: true},
		},
	}
	b.respondEmbed(i, embed, false)
}

func (b *Bot) cmdXP(i *discordgo.InteractionCreate) {
	uid := invokerID(i)
	rec := b.st.EnsureUser(uid)
	if rec.Level >= leveling.MaxLevel {
		b.respond(i, fmt.Sprintf("⭐ You are at max level **%d** with **%d** XP banked. Use /prestige to go again!", rec.Level, rec.XP), false)
		return
	}
	needed := leveling.RequiredXP(rec.Level)
	b.respond(i, fmt.Sprintf("You have **%d** XP. **%d** more to reach level %d.", rec.XP, needed-rec.XP, rec.Level+1), false)
}

func (b *Bot) cmdLeaderboard(i *discordgo.InteractionCreate) {
	entries := leveling.Rank(b.st.UserEntries())
	if len(entries) > 10 {
		entries = entries[:10]
	}
	if len(entries) == 0 {
		b.respond(i, "Nobody has earned XP yet. Get chatting!", false)
		return
	}

	var sb strings.Builder
	medals := []string{"🥇", "🥈", "🥉"}
	for n, e := range entries {
		marker := fmt.Sprintf("`#%d`", n+1)
		if n < len(medals) {
			marker = medals[n]
		}
		fmt.Fprintf(&sb, "%s <@%s> — Prestige %d, Level %d, %d XP\n", marker, e.UserID, e.Record.Prestige, e.Record.Level, e.Record.XP)
	}
	embed := &discordgo.MessageEmbed{
		Title:       "🏆 CROBOT Leaderboard",
		Description: sb.String(),
		Color:       colorGold,
	}
	b.respondEmbed(i, embed, false)
}

func (b *Bot) cmdPrestige(i *discordgo.InteractionCreate) {
	uid := invokerID(i)
	rec := b.st.EnsureUser(uid)
	if rec.Level < leveling.MaxLevel {
		b.respond(i, fmt.Sprintf("You need to reach level %d before you can prestige. You're at level %d.", leveling.MaxLevel, rec.Level), true)
		return
	}
	if !optBool(i, "confirm") {
		b.respond(i, "⚠️ Prestiging resets your level and XP to zero. Run `/prestige confirm:true` to go through with it.", true)
		return
	}
	updated := b.st.UpdateUserNow(uid, func(r *leveling.Record) {
		leveling.AddPrestige(r)
	})
	b.respond(i, fmt.Sprintf("🌟 **PRESTIGE!** %s is now Prestige **%d** and back to level 1. Respect.", invokerName(i), updated.Prestige), false)
}

func (b *Bot) cmdResetUserData(i *discordgo.InteractionCreate) {
	if !b.requireAdmin(i) {
		return
	}
	target := optUserID(i, "member")
	if target == "" {
		b.st.ResetAllUsers()
		b.respond(i, "🗑️ All XP and level data has been reset.", false)
		return
	}
	if b.st.DeleteUser(target) {
		b.respond(i, fmt.Sprintf("🗑️ XP and level data for <@%s> has been reset.", target), false)
	} else {
		b.respond(i, fmt.Sprintf("<@%s> has no stored data.", target), true)
	}
}

func (b *Bot) cmdCoinflip(i *discordgo.InteractionCreate) {
	guess := strings.ToLower(strings.TrimSpace(optString(i, "guess")))
	if guess != "heads" && guess != "tails" {
		b.respond(i, "Pick `heads` or `tails`!", true)
		return
	}
	result := "heads"
	if rand.Intn(2) == 1 {
		result = "tails"
	}
	if guess != result {
		b.respond(i, fmt.Sprintf("🪙 It's **%s**! Better luck next time.", result), false)
		return
	}

	uid := invokerID(i)
	var leveled bool
	var newLevel int
	b.st.UpdateUser(uid, func(r *leveling.Record) {
		leveled, newLevel = leveling.GrantXP(r, xpCoinflip)
	})
	msg := fmt.Sprintf("🪙 It's **%s**! You win **%d XP**.", result, xpCoinflip)
	if leveled {
		msg += fmt.Sprintf(" %s And you just hit level **%d**!", leveling.EmojiForLevel(newLevel), newLevel)
	}
	b.respond(i, msg, false)
}

func (b *Bot) cmdLove(i *discordgo.InteractionCreate) {
	b.respond(i, randomLove(), false)
}

func (b *Bot) cmdFindPlayers(i *discordgo.InteractionCreate) {
	game := strings.TrimSpace(optString(i, "game"))
	if game == "" {
		b.respond(i, "Tell me which game you want to play!", true)
		return
	}
	authorID := invokerID(i)

	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{findPlayersEmbed(authorID, game, 0)},
		},
	})
	if err != nil {
		b.log.Warn("findplayers respond failed", logx.Err(err))
		return
	}
	msg, err := b.session.InteractionResponse(i.Interaction)
	if err != nil {
		b.log.Warn("findplayers message lookup failed", logx.Err(err))
		return
	}

	b.registry.Create(msg.ID, msg.ChannelID, i.GuildID, game, authorID)
	if err := b.session.MessageReactionAdd(msg.ChannelID, msg.ID, "✅"); err != nil {
		b.log.Warn("findplayers seed reaction failed", logx.Err(err))
	}
}
