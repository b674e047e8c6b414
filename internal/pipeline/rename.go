package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"fable2md/internal/logger"
	"fable2md/internal/markdown"
	"fable2md/internal/reconcile"
)

// Rename describes one pending filename fix.
type Rename struct {
	From string
	To   string
}

// Renamer brings note filenames in a directory in line with the
// author--title scheme the generator uses.
type Renamer struct {
	dir string
	log zerolog.Logger
}

// NewRenamer creates a renamer over the given notes directory.
func NewRenamer(dir string) *Renamer {
	return &Renamer{dir: dir, log: logger.WithComponent("rename")}
}

// Plan lists the notes whose filename does not match their front
// matter. Notes without readable front matter are skipped.
func (r *Renamer) Plan() ([]Rename, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("reading notes directory: %w", err)
	}

	var plan []Rename
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(r.dir, entry.Name()))
		if err != nil {
			r.log.Warn().Err(err).Str("file", entry.Name()).Msg("Could not read note")
			continue
		}
		note, err := reconcile.ParseNote(string(data))
		if err != nil {
			r.log.Debug().Str("file", entry.Name()).Msg("No readable front matter, skipping")
			continue
		}
		record := RecordFromNote(note)
		if !record.HasTitle() {
			continue
		}
		want := markdown.Filename(record)
		if want != entry.Name() {
			plan = append(plan, Rename{From: entry.Name(), To: want})
		}
	}

	sort.Slice(plan, func(i, j int) bool { return plan[i].From < plan[j].From })
	return plan, nil
}

// Execute applies the plan. A rename whose target already exists is
// skipped so no note is ever clobbered.
func (r *Renamer) Execute(plan []Rename) (int, error) {
	applied := 0
	for _, item := range plan {
		target := filepath.Join(r.dir, item.To)
		if _, err := os.Stat(target); err == nil {
			r.log.Warn().Str("from", item.From).Str("to", item.To).
				Msg("Target exists, skipping rename")
			continue
		}
		if err := os.Rename(filepath.Join(r.dir, item.From), target); err != nil {
			return applied, fmt.Errorf("renaming %s: %w", item.From, err)
		}
		r.log.Info().Str("from", item.From).Str("to", item.To).Msg("Renamed note")
		applied++
	}
	return applied, nil
}
