// Package store owns the bot's persistent state: five named documents
// (users, twitch links, guild config, birthdays, warnings) held as in-memory
// maps and persisted as whole-document snapshots.
//
// Persistence is last-good-write-wins: saves overwrite the full snapshot,
// save failures are logged and never roll back memory, and malformed or
// missing documents load as empty state. A periodic flush job is the primary
// durability mechanism; admin mutations write through immediately.
package store
