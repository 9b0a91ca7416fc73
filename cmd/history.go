package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/prepx/internal/formatter"
	"github.com/desertthunder/prepx/internal/models"
	"github.com/desertthunder/prepx/internal/repositories"
	"github.com/desertthunder/prepx/internal/shared"
	"github.com/desertthunder/prepx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// HistoryList prints past answers from the backend or the local database.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	var items []models.HistoryItem
	if cmd.Bool("local") {
		items, err = r.localHistory(cmd.Int("limit"), cmd.String("question"))
	} else {
		if cmd.String("question") != "" {
			return fmt.Errorf("%w: --question requires --local", shared.ErrInvalidArgument)
		}
		r.authorize(ctx)
		items, err = r.svc.ListHistory(ctx, cmd.Int("limit"))
	}
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	data, err := formatter.RenderHistory(items, format)
	if err != nil {
		return err
	}

	if out := cmd.String("output"); out != "" {
		path, err := formatter.WriteFile(out, data)
		if err != nil {
			return err
		}
		return r.writePlain("✓ %d answers written to %s\n", len(items), path)
	}

	_, err = r.output.Write(data)
	return err
}

// HistoryExport writes the full feedback for each past answer to its own file.
func (r *Runner) HistoryExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	r.authorize(ctx)
	items, err := r.svc.ListHistory(ctx, cmd.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}
	if len(items) == 0 {
		return r.writePlain("No answers to export\n")
	}

	r.writePlain("Exporting %d answers...\n", len(items))
	progressCh, wait := r.printProgress()
	result, err := r.practiceEngine().ExportHistory(ctx, progressCh, items, tasks.ExportOpts{
		Format:     format,
		OutputDir:  cmd.String("output"),
		NumWorkers: cmd.Int("workers"),
		RateLimit:  r.config.Backend.RateLimit,
	})
	wait()
	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Export Complete")
	r.writePlain("Directory: %s\n", result.OutputDirectory)
	r.writePlain("Exported: %d/%d\n", result.Successful, result.TotalAnswers)
	if result.Failed > 0 {
		r.writePlain("\nFailed to export %d answers:\n", result.Failed)
		for _, res := range result.Results {
			if !res.Success {
				r.writePlain("  - %s: %s\n", res.Title, res.Error)
			}
		}
	}
	return r.writePlain("Manifest: %s\n", result.ManifestPath)
}

func (r *Runner) localHistory(limit int, questionID string) ([]models.HistoryItem, error) {
	db, err := r.database()
	if err != nil {
		return nil, err
	}

	attempts, err := repositories.NewAttemptRepository(db).List(map[string]any{
		"limit":       limit,
		"question_id": questionID,
	})
	if err != nil {
		return nil, err
	}

	items := make([]models.HistoryItem, len(attempts))
	for i, a := range attempts {
		items[i] = a.HistoryItem()
	}
	return items, nil
}
