package lookup

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Guliveer/fh-car-models/internal/constants"
	"github.com/Guliveer/fh-car-models/internal/logger"
)

// Source provides the lookup table for a game.
type Source interface {
	Load(game string) (*Table, error)
}

// FileSource loads lookup tables from disk. By default every game reads the
// same shared file. With PerGame set, each game reads <Dir>/<game>.CarNames.csv,
// which is seeded from the shared file the first time it is missing.
type FileSource struct {
	SharedPath string
	PerGame    bool
	Dir        string

	log *logger.Logger
}

// NewFileSource creates a FileSource reading the shared lookup file at sharedPath.
func NewFileSource(sharedPath string, log *logger.Logger) *FileSource {
	if sharedPath == "" {
		sharedPath = filepath.Join(constants.LookupDir, constants.SharedLookupFile)
	}
	if log == nil {
		log = logger.Discard()
	}
	return &FileSource{
		SharedPath: sharedPath,
		Dir:        filepath.Dir(sharedPath),
		log:        log,
	}
}

// PathFor returns the file the table for game is read from.
func (s *FileSource) PathFor(game string) string {
	if !s.PerGame || game == "" {
		return s.SharedPath
	}
	return filepath.Join(s.Dir, game+constants.PerGameLookupSuffix)
}

// Load reads the lookup table for game.
func (s *FileSource) Load(game string) (*Table, error) {
	path := s.PathFor(game)
	if path != s.SharedPath {
		if err := s.seed(path); err != nil {
			s.log.Warn("Could not seed per-game lookup file, using shared file",
				"game", game, "path", path, "error", err)
			path = s.SharedPath
		}
	}
	return Load(path)
}

// seed copies the shared lookup file to path unless path already exists.
func (s *FileSource) seed(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", path, err)
	}

	src, err := os.Open(s.SharedPath)
	if err != nil {
		return fmt.Errorf("opening shared lookup file: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating lookup directory: %w", err)
	}

	dst, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return fmt.Errorf("copying shared lookup file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}

	s.log.Info("Seeded per-game lookup file", "path", path, "from", s.SharedPath)
	return nil
}
