package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"crobot/internal/guildcfg"
)

func (b *Bot) cmdSetWelcome(i *discordgo.InteractionCreate) {
	if !b.requireAdmin(i) {
		return
	}
	ch := optChannelID(i, "channel")
	b.st.UpdateGuildNow(i.GuildID, func(o *guildcfg.Override) {
		o.WelcomeChannelID = ch
	})
	b.respond(i, fmt.Sprintf("✅ Welcome channel set to <#%s>.", ch), false)
}

func (b *Bot) cmdSetWelcomeDM(i *discordgo.InteractionCreate) {
	if !b.requireAdmin(i) {
		return
	}
	msg := strings.TrimSpace(optString(i, "message"))
	if msg == "" {
		b.respond(i, "The welcome message can't be empty.", true)
		return
	}
	b.st.UpdateGuildNow(i.GuildID, func(o *guildcfg.Override) {
		o.WelcomeDM = msg
	})
	b.respond(i, "✅ Welcome DM message updated. `{user}` and `{server}` will be filled in automatically.", false)
}

func (b *Bot) cmdSetMemes(i *discordgo.InteractionCreate) {
	if !b.requireAdmin(i) {
		return
	}
	ch := optChannelID(i, "channel")
	b.st.UpdateGuildNow(i.GuildID, func(o *guildcfg.Override) {
		o.MemeChannelID = ch
	})
	b.respond(i, fmt.Sprintf("✅ Memes will be posted in <#%s>.", ch), false)
}

func (b *Bot) cmdSetMemeInterval(i *discordgo.InteractionCreate) {
	if !b.requireAdmin(i) {
		return
	}
	raw := optString(i, "interval")
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		b.respond(i, "That's not a valid interval.", true)
		return
	}
	b.st.UpdateGuildNow(i.GuildID, func(o *guildcfg.Override) {
		o.SetMemeInterval(d)
	})
	b.respond(i, fmt.Sprintf("✅ Meme interval set to **%s**. The next meme timer starts fresh.", d), false)
}

func (b *Bot) cmdSetTwitch(i *discordgo.InteractionCreate) {
	if !b.requireAdmin(i) {
		return
	}
	ch := optChannelID(i, "channel")
	b.st.UpdateGuildNow(i.GuildID, func(o *guildcfg.Override) {
		o.TwitchChannelID = ch
	})
	b.respond(i, fmt.Sprintf("✅ Twitch go-lives will be announced in <#%s>.", ch), false)
}

func (b *Bot) cmdSetAutoRole(i *discordgo.InteractionCreate) {
	if !b.requireAdmin(i) {
		return
	}
	role := optRoleID(i, "role")
	b.st.UpdateGuildNow(i.GuildID, func(o *guildcfg.Override) {
		o.AutoRoleID = role
	})
	b.respond(i, fmt.Sprintf("✅ New members will automatically receive <@&%s>.", role), false)
}

func (b *Bot) cmdSetModRole(i *discordgo.InteractionCreate) {
	if !b.requireAdmin(i) {
		return
	}
	role := optRoleID(i, "role")
	b.st.UpdateGuildNow(i.GuildID, func(o *guildcfg.Override) {
		o.ModRoleID = role
	})
	b.respond(i, fmt.Sprintf("✅ <@&%s> will be pinged on moderation escalations.", role), false)
}

func (b *Bot) cmdAddWatchword(i *discordgo.InteractionCreate) {
	if !b.requireAdmin(i) {
		return
	}
	phrase := strings.TrimSpace(optString(i, "phrase"))
	if phrase == "" {
		b.respond(i, "Give me a word or phrase to watch for.", true)
		return
	}
	var added bool
	b.st.UpdateGuildNow(i.GuildID, func(o *guildcfg.Override) {
		added = o.AddWatchPhrase(phrase)
	})
	if added {
		b.respond(i, fmt.Sprintf("👁️ Now watching for `%s`.", strings.ToLower(phrase)), true)
	} else {
		b.respond(i, fmt.Sprintf("`%s` is already on the watch list.", strings.ToLower(phrase)), true)
	}
}

func (b *Bot) cmdRemoveWatchword(i *discordgo.InteractionCreate) {
	if !b.requireAdmin(i) {
		return
	}
	phrase := strings.TrimSpace(optString(i, "phrase"))
	var removed bool
	b.st.UpdateGuildNow(i.GuildID, func(o *guildcfg.Override) {
		removed = o.RemoveWatchPhrase(phrase)
	})
	if removed {
		b.respond(i, fmt.Sprintf("✅ Stopped watching for `%s`.", strings.ToLower(phrase)), true)
	} else {
		b.respond(i, fmt.Sprintf("`%s` wasn't on the watch list.", strings.ToLower(phrase)), true)
	}
}

func (b *Bot) cmdListWatchwords(i *discordgo.InteractionCreate) {
	resolved := b.resolveGuild(i.GuildID)
	if len(resolved.WatchPhrases) == 0 {
		b.respond(i, "No watched words or phrases for this server.", true)
		return
	}
	var sb strings.Builder
	for _, p := range resolved.WatchPhrases {
		fmt.Fprintf(&sb, "• `%s`\n", p)
	}
	embed := &discordgo.MessageEmbed{
		Title:       "👁️ Watched words and phrases",
		Description: sb.String(),
		Color:       colorOrange,
	}
	b.respondEmbed(i, embed, true)
}

func (b *Bot) cmdResetWarnings(i *discordgo.InteractionCreate) {
	if !b.requireAdmin(i) {
		return
	}
	target := optUserID(i, "member")
	if target == "" {
		b.respond(i, "Couldn't read that member.", true)
		return
	}
	b.st.ClearWarnings(i.GuildID, target)
	b.respond(i, fmt.Sprintf("✅ Warnings cleared for <@%s>.", target), false)
}
