// Package vault copies generated notes into an Obsidian vault folder.
package vault

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"fable2md/internal/logger"
)

// ErrVaultNotFound is returned when the configured vault path does not
// exist or is not a directory.
var ErrVaultNotFound = errors.New("obsidian vault path not found")

// Sync mirrors notes into an Obsidian vault directory.
type Sync struct {
	path string
	log  zerolog.Logger
}

// NewSync validates the vault path and returns a sync helper.
func NewSync(path string) (*Sync, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrVaultNotFound, path)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrVaultNotFound, path)
	}
	return &Sync{path: path, log: logger.WithComponent("vault")}, nil
}

// CopyNote writes the note content into the vault under the given
// filename, replacing any previous copy.
func (s *Sync) CopyNote(filename, content string) error {
	dest := filepath.Join(s.path, filename)
	if err := os.WriteFile(dest, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing note to vault: %w", err)
	}
	s.log.Debug().Str("file", dest).Msg("Copied note into vault")
	return nil
}
