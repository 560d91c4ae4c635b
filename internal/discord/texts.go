package discord

import (
	"fmt"
	"math/rand"
	"strings"
)

const (
	colorGreen  = 0x2ecc71
	colorBlue   = 0x3498db
	colorGold   = 0xf1c40f
	colorPurple = 0x9b59b6
	colorYellow = 0xfee75c
	colorRed    = 0xe74c3c
	colorOrange = 0xe67e22
)

var statusMessages = []string{
	"CROBOT: silently judging your server.",
	"Crowned skeleton overlord of this wasteland.",
	"Grinding souls into XP since 2025.",
	"Haunting your channels for XP.",
	"Balancing memes, music, and mild threats.",
	"Running on bugs and bad decisions.",
	"Listening to your chaos in HD.",
	"Warming up the ban hammer (just in case).",
	"Optimizing your server. Disrespectfully.",
	"Looting your logs for \"analytics.\"",
	"Pretending to be a normal bot.",
	"Skeleton king of status messages.",
	"If I'm online, you should be grinding.",
}

var welcomeTexts = []string{
	"You're officially part of the crew now. Make yourself at home and say hi 👋",
	"Glad you pulled up! Check the channels, link with the homies, and have fun 😈",
	"Welcome in! Grab a seat, squad up, and enjoy the chaos 💥",
	"Happy to have you here. Dive into the chat and meet the fam 💬",
}

var personalityMsgs = []string{
	"CROBOT found a banger meme 🔥",
	"Check this out, kings 👑",
	"Here's a gem for you all!",
	"Time for some laughs 😂",
	"Fresh meme, just for you!",
}

var loveMsgs = []string{
	"💖 You are loved, valued, and welcome here.",
	"🌟 This server wouldn't be the same without you.",
	"🔥 You're important, you're seen, and we're glad you're here.",
	"👑 You matter — and we're grateful you're part of the crew!",
	"🌙 Even on hard days, you're never alone. We appreciate you!",
}

var adviceTemplates = []string{
	"Short answer: %s. Long answer: you already knew that.",
	"Honestly? %s. Also drink some water.",
	"My advanced analysis says: %s.",
	"Based on 0%% emotion and 100%% chaos energy: %s.",
}

// adviceSummary maps question keywords to a canned take. First match wins;
// anything unrecognized gets the generic pep talk.
func adviceSummary(question string) string {
	q := strings.ToLower(question)
	switch {
	case strings.Contains(q, "stream"):
		return "stay consistent and tweak your schedule"
	case strings.Contains(q, "discord"), strings.Contains(q, "server"):
		return "clean channels, clear rules, and fun events grow a server"
	case strings.Contains(q, "content"), strings.Contains(q, "videos"):
		return "improve one thing each video instead of everything at once"
	}
	return "do the thing that scares you just a little bit"
}

func adviceReply(question string) string {
	tmpl := adviceTemplates[rand.Intn(len(adviceTemplates))]
	return fmt.Sprintf(tmpl, adviceSummary(question))
}

func randomPersonality() string {
	return personalityMsgs[rand.Intn(len(personalityMsgs))]
}

func randomWelcome() string {
	return welcomeTexts[rand.Intn(len(welcomeTexts))]
}

func randomLove() string {
	return loveMsgs[rand.Intn(len(loveMsgs))]
}
