package store

import (
	"os"
	"path/filepath"
	"strings"

	logx "crobot/pkg/logx"
)

// fileBackend is the dependency-free default: <dir>/<name>.json per document,
// replaced atomically via tmp+rename so a crash mid-save never truncates the
// previous snapshot.
type fileBackend struct {
	dir string
	log logx.Logger
}

func openFile(cfg Config, log logx.Logger) (Backend, error) {
	dir := strings.TrimSpace(cfg.Dir)
	if dir == "" {
		dir = "./data"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &fileBackend{dir: dir, log: log}, nil
}

func (b *fileBackend) path(name string) string {
	return filepath.Join(b.dir, name+".json")
}

func (b *fileBackend) LoadDoc(name string) ([]byte, bool, error) {
	data, err := os.ReadFile(b.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

func (b *fileBackend) SaveDoc(name string, data []byte) error {
	path := b.path(name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (b *fileBackend) Close() error { return nil }
