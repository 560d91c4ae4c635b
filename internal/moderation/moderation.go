// Package moderation implements the warning escalation state machine and
// watch-phrase matching.
package moderation

import (
	"sort"
	"strings"
)

// EscalateAt is the warning count at which an escalation notification is
// owed to the configured moderator role (or the guild owner as fallback).
const EscalateAt = 3

// Ledger maps guild ID -> user ID -> warning count. Absent means zero.
type Ledger map[string]map[string]int

// Count returns the current warning count; absent entries read as 0.
func (l Ledger) Count(guildID, userID string) int {
	return l[guildID][userID]
}

// Record increments and returns the new warning count for (guild, user).
func (l Ledger) Record(guildID, userID string) int {
	g := l[guildID]
	if g == nil {
		g = make(map[string]int)
		l[guildID] = g
	}
	g[userID]++
	return g[userID]
}

// Clear removes the entry entirely, so a later Count reads "no warnings"
// rather than an explicit zero.
func (l Ledger) Clear(guildID, userID string) {
	g, ok := l[guildID]
	if !ok {
		return
	}
	delete(g, userID)
	if len(g) == 0 {
		delete(l, guildID)
	}
}

// Escalated reports whether the given count is in the escalation tier.
func Escalated(count int) bool { return count >= EscalateAt }

// MatchWatchPhrase scans content against the guild's watch phrases with a
// case-insensitive substring match. Phrases are checked in sorted order so a
// given configuration always reports the same triggering phrase.
func MatchWatchPhrase(content string, phrases []string) (string, bool) {
	if len(phrases) == 0 {
		return "", false
	}
	ordered := make([]string, 0, len(phrases))
	for _, p := range phrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			ordered = append(ordered, p)
		}
	}
	sort.Strings(ordered)

	lower := strings.ToLower(content)
	for _, p := range ordered {
		if strings.Contains(lower, p) {
			return p, true
		}
	}
	return "", false
}
