package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/desertthunder/prepx/internal/repositories"
	"github.com/desertthunder/prepx/internal/shared"
	"github.com/urfave/cli/v3"
)

// clipView is the JSON shape of a cached clip.
type clipView struct {
	ID         string `json:"id"`
	Voice      string `json:"voice"`
	Path       string `json:"path"`
	MIMEType   string `json:"mime_type"`
	DurationMS int64  `json:"duration_ms"`
	CreatedAt  string `json:"created_at"`
	Missing    bool   `json:"missing,omitempty"`
}

// CacheList prints the synthesized clips recorded in the database.
func (r *Runner) CacheList(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.clipRepository()
	if err != nil {
		return err
	}

	clips, err := repo.List(map[string]any{"voice": cmd.String("voice"), "limit": cmd.Int("limit")})
	if err != nil {
		return err
	}

	views := make([]clipView, len(clips))
	for i, c := range clips {
		_, statErr := os.Stat(c.Path())
		views[i] = clipView{
			ID:         c.ID(),
			Voice:      c.Voice(),
			Path:       c.Path(),
			MIMEType:   c.MIMEType(),
			DurationMS: c.Duration().Milliseconds(),
			CreatedAt:  c.CreatedAt().Format("2006-01-02 15:04"),
			Missing:    statErr != nil,
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(views, cmd.Bool("pretty"))
	}
	if len(views) == 0 {
		return r.writePlain("No cached clips\n")
	}

	r.writePlainHeader(fmt.Sprintf("Cached clips (%d)", len(views)))
	for _, v := range views {
		status := ""
		if v.Missing {
			status = " (file missing)"
		}
		r.writePlain("%s  %-8s %5s  %s%s\n", v.CreatedAt, v.Voice, shared.FormatDuration(v.DurationMS), v.Path, status)
	}
	return nil
}

// CacheClear deletes cached clips along with their audio files.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.clipRepository()
	if err != nil {
		return err
	}

	clips, err := repo.List(map[string]any{"voice": cmd.String("voice")})
	if err != nil {
		return err
	}

	var removed int
	for _, c := range clips {
		if err := os.Remove(c.Path()); err != nil && !errors.Is(err, fs.ErrNotExist) {
			r.logger.Warn("failed to remove clip file", "path", c.Path(), "error", err)
			continue
		}
		if err := repo.Delete(c.ID()); err != nil {
			r.logger.Warn("failed to delete clip", "id", c.ID(), "error", err)
			continue
		}
		removed++
	}

	return r.writePlain("✓ Removed %d of %d cached clips\n", removed, len(clips))
}

func (r *Runner) clipRepository() (*repositories.SpeechClipRepository, error) {
	db, err := r.database()
	if err != nil {
		return nil, err
	}
	return repositories.NewSpeechClipRepository(db), nil
}
