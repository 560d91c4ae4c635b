// Package leveling implements the XP/level/prestige state machine.
//
// All transitions are pure value-in/value-out functions; callers own the
// record's storage and persistence.
package leveling

import "sort"

// MaxLevel caps level progression. XP granted at the cap is retained and
// keeps accumulating; it is not consumed or clamped. Kept deliberately:
// clamping would silently discard earned XP, and prestige resets it anyway.
const MaxLevel = 100

// Record is one user's progression state.
type Record struct {
	XP       int `json:"xp"`
	Level    int `json:"level"`
	Prestige int `json:"prestige"`
}

// NewRecord returns the lazily-created default for a first-seen user.
func NewRecord() Record {
	return Record{XP: 0, Level: 1, Prestige: 0}
}

// RequiredXP is the XP needed to advance from the given level.
func RequiredXP(level int) int {
	return 100 * level
}

// GrantXP adds amount to the record, consuming XP into level-ups while
// possible. Multiple level-ups from one grant happen in a single call;
// only the net effect is reported.
func GrantXP(rec *Record, amount int) (leveledUp bool, newLevel int) {
	if rec.Level < 1 {
		rec.Level = 1
	}
	if amount > 0 {
		rec.XP += amount
	}
	for rec.XP >= RequiredXP(rec.Level) && rec.Level < MaxLevel {
		rec.XP -= RequiredXP(rec.Level)
		rec.Level++
		leveledUp = true
	}
	return leveledUp, rec.Level
}

// AddPrestige resets level and XP and increments the prestige counter.
// It is unconditional: callers must verify Level == MaxLevel first.
func AddPrestige(rec *Record) {
	rec.Prestige++
	rec.XP = 0
	rec.Level = 1
}

// levelEmojis marks milestone levels.
var levelEmojis = map[int]string{
	10: "⭐", 20: "🌙", 30: "🔥", 40: "💎",
	50: "⚔️", 60: "👑", 70: "🏆", 80: "🕹️",
	90: "💥", 100: "💫",
}

// EmojiForLevel returns the highest milestone emoji earned at the given
// level, or "" below the first milestone.
func EmojiForLevel(level int) string {
	thresholds := make([]int, 0, len(levelEmojis))
	for lvl := range levelEmojis {
		thresholds = append(thresholds, lvl)
	}
	sort.Ints(thresholds)
	emoji := ""
	for _, lvl := range thresholds {
		if level >= lvl {
			emoji = levelEmojis[lvl]
		}
	}
	return emoji
}

// Entry pairs a user ID with its record for ranking.
type Entry struct {
	UserID string
	Record Record
}

// Rank orders entries by prestige, then level, then XP, all descending.
// Ties break on user ID so the order is stable for a given data set.
// The slice is sorted in place and returned.
func Rank(entries []Entry) []Entry {
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Record.Prestige != b.Record.Prestige {
			return a.Record.Prestige > b.Record.Prestige
		}
		if a.Record.Level != b.Record.Level {
			return a.Record.Level > b.Record.Level
		}
		if a.Record.XP != b.Record.XP {
			return a.Record.XP > b.Record.XP
		}
		return a.UserID < b.UserID
	})
	return entries
}
