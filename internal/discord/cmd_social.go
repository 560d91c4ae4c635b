package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"crobot/internal/birthdays"
)

func (b *Bot) cmdAddTwitch(i *discordgo.InteractionCreate) {
	handle := strings.TrimSpace(optString(i, "twitch_username"))
	if handle == "" {
		b.respond(i, "Give me your Twitch username.", true)
		return
	}
	b.st.SetLink(invokerID(i), handle)
	b.respond(i, fmt.Sprintf("🟣 Linked! I'll announce when **%s** goes live.", strings.ToLower(handle)), false)
}

func (b *Bot) cmdMyTwitch(i *discordgo.InteractionCreate) {
	handle, ok := b.st.Link(invokerID(i))
	if !ok {
		b.respond(i, "You haven't linked a Twitch account yet. Use `/addtwitch`.", true)
		return
	}
	b.respond(i, fmt.Sprintf("🟣 Your linked Twitch account is **%s** (https://twitch.tv/%s).", handle, handle), true)
}

func (b *Bot) cmdSetBirthday(i *discordgo.InteractionCreate) {
	raw := optString(i, "date")
	iso, err := birthdays.Normalize(raw)
	if err != nil {
		b.respond(i, "That doesn't look like a date. Use `YYYY-MM-DD`, like `1995-07-23`.", true)
		return
	}
	b.st.SetBirthday(invokerID(i), iso)
	b.respond(i, fmt.Sprintf("🎂 Got it! Your birthday is saved as **%s**.", iso), true)
}

func (b *Bot) cmdAskCrobot(i *discordgo.InteractionCreate) {
	question := strings.TrimSpace(optString(i, "question"))
	if question == "" {
		b.respond(i, "Ask me something first!", true)
		return
	}
	b.respond(i, adviceReply(question), false)
}

func (b *Bot) cmdMyBirthday(i *discordgo.InteractionCreate) {
	iso, ok := b.st.Birthday(invokerID(i))
	if !ok {
		b.respond(i, "You haven't set a birthday yet. Use `/setbirthday`.", true)
		return
	}
	b.respond(i, fmt.Sprintf("🎂 Your saved birthday is **%s**.", iso), true)
}
