package media_store

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"

	ports "tweetbot-service/internal/domain/ports/output"
)

// Store keeps the images of a single run in one directory.
type Store struct {
	fs  afero.Fs
	dir string
	log ports.Logger
}

func NewStore(fs afero.Fs, dir string, log ports.Logger) *Store {
	return &Store{fs: fs, dir: dir, log: log}
}

func (s *Store) Reset() error {
	if err := s.fs.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("clear media dir %s: %w", s.dir, err)
	}
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create media dir %s: %w", s.dir, err)
	}
	s.log.Debug("Media directory reset", slog.String("dir", s.dir))
	return nil
}

func (s *Store) Save(name string, data []byte) (string, error) {
	if name != filepath.Base(name) {
		return "", fmt.Errorf("invalid media file name %q", name)
	}
	path := filepath.Join(s.dir, name)
	if err := afero.WriteFile(s.fs, path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// Files lists the saved images in name order.
func (s *Store) Files() ([]string, error) {
	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read media dir %s: %w", s.dir, err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		files = append(files, filepath.Join(s.dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func (s *Store) Remove() error {
	if err := s.fs.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("remove media dir %s: %w", s.dir, err)
	}
	return nil
}
