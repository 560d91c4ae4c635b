package store

import (
	"errors"
	"strings"
	"time"

	logx "crobot/pkg/logx"
)

// Document names double as file basenames for the file driver. They match
// the original deployment's data files so an existing data dir carries over.
const (
	DocUsers     = "users"
	DocLinks     = "twitch_links"
	DocGuilds    = "guild_config"
	DocBirthdays = "birthdays"
	DocWarnings  = "warnings"
)

// DocNames lists every known document, in save order.
var DocNames = []string{DocUsers, DocLinks, DocGuilds, DocBirthdays, DocWarnings}

// Backend persists whole-document snapshots by name.
type Backend interface {
	// LoadDoc returns the stored bytes for name, ok=false if absent.
	LoadDoc(name string) (data []byte, ok bool, err error)
	// SaveDoc atomically replaces the stored bytes for name.
	SaveDoc(name string, data []byte) error
	Close() error
}

// Config configures the persistence backend.
//
// Driver values:
//   - "file" (or empty): one pretty-printed JSON file per document under Dir
//   - "sqlite": snapshots in a single database file (build with -tags sqlite)
type Config struct {
	Driver      string
	Dir         string        // file driver; default "./data"
	Path        string        // sqlite driver
	BusyTimeout time.Duration // sqlite only; 0 means default
}

func openBackend(cfg Config, log logx.Logger) (Backend, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	switch driver {
	case "", "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, errors.New("unknown storage driver: " + driver)
	}
}
