package tasks

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/prepx/internal/audio"
	"github.com/desertthunder/prepx/internal/formatter"
	"github.com/desertthunder/prepx/internal/models"
	"github.com/desertthunder/prepx/internal/shared"
	"golang.org/x/time/rate"
)

// ExportOpts configures [PracticeEngine.ExportHistory].
type ExportOpts struct {
	Format     formatter.Format // Report format: txt, markdown, json
	OutputDir  string           // Base output directory (default: prepx_export_{epoch})
	NumWorkers int              // Concurrent writers (default: 4, max: 8)
	RateLimit  float64          // Feedback requests per second (default: 4)
}

// FeedbackExportResult is the outcome for a single answer.
type FeedbackExportResult struct {
	AnswerID string `json:"answer_id"`
	Title    string `json:"title"`
	File     string `json:"file,omitempty"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

// ExportResult summarizes a history export. It is also written as the manifest.
type ExportResult struct {
	TotalAnswers    int                    `json:"total_answers"`
	Successful      int                    `json:"successful"`
	Failed          int                    `json:"failed"`
	OutputDirectory string                 `json:"output_directory"`
	ManifestPath    string                 `json:"-"`
	Results         []FeedbackExportResult `json:"results"`
}

type exportJob struct {
	item     models.HistoryItem
	feedback *models.Feedback
}

// ExportHistory fetches the feedback for each history item and writes one report per answer.
//
// Feedback requests are paced by a rate limiter and reports are written by a pool of workers.
// Individual failures are collected in the result; a manifest is written at the end.
func (e *PracticeEngine) ExportHistory(ctx context.Context, prog chan<- ProgressUpdate, items []models.HistoryItem, opts ExportOpts) (*ExportResult, error) {
	if e.svc == nil {
		return nil, fmt.Errorf("%w: interview service not initialized", shared.ErrServiceUnavailable)
	}
	if opts.Format == formatter.FormatCSV {
		return nil, fmt.Errorf("%w: csv reports are not supported, export history with csv instead", shared.ErrInvalidArgument)
	}
	if opts.Format == "" {
		opts.Format = formatter.FormatMarkdown
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("prepx_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	opts.NumWorkers = min(opts.NumWorkers, 8)
	if opts.RateLimit <= 0 {
		opts.RateLimit = 4.0
	}

	total := len(items)
	result := &ExportResult{
		TotalAnswers:    total,
		OutputDirectory: opts.OutputDir,
		Results:         make([]FeedbackExportResult, 0, total),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan exportJob, total)
	results := make(chan FeedbackExportResult, total)

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		for i, item := range items {
			if err := limiter.Wait(ctx); err != nil {
				return
			}

			e.sendProgress(prog, exportingUpdate(i+1, total, itemTitle(item)))
			feedback, err := e.svc.GetFeedback(ctx, item.AnswerID)
			if err != nil {
				results <- FeedbackExportResult{
					AnswerID: item.AnswerID,
					Title:    itemTitle(item),
					Error:    fmt.Sprintf("failed to fetch feedback: %v", err),
				}
				continue
			}
			jobs <- exportJob{item: item, feedback: feedback}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.Successful++
			e.sendProgress(prog, exportCompletedUpdate(completed, total, res.Title))
		} else {
			result.Failed++
			e.sendProgress(prog, exportFailedUpdate(completed, total, res.Title, fmt.Errorf("%s", res.Error)))
		}
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("export interrupted: %w", err)
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

func (e *PracticeEngine) exportWorker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan exportJob, results chan<- FeedbackExportResult, opts ExportOpts) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			results <- FeedbackExportResult{AnswerID: job.item.AnswerID, Title: itemTitle(job.item), Error: ctx.Err().Error()}
			continue
		default:
		}
		results <- writeReport(job, opts)
	}
}

func writeReport(j exportJob, opts ExportOpts) FeedbackExportResult {
	res := FeedbackExportResult{AnswerID: j.item.AnswerID, Title: itemTitle(j.item)}

	report := formatter.FeedbackReport{
		Question: models.Question{ID: j.item.QuestionID, Title: j.item.QuestionTitle},
		Feedback: *j.feedback,
	}
	if report.Feedback.CreatedAt.IsZero() {
		report.Feedback.CreatedAt = j.item.CreatedAt
	}

	data, err := formatter.RenderFeedback(report, opts.Format)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	name := audio.SanitizeFilename(j.item.AnswerID) + opts.Format.Ext()
	path, err := formatter.WriteFile(filepath.Join(opts.OutputDir, name), data)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	res.File = path
	res.Success = true
	return res
}

func itemTitle(item models.HistoryItem) string {
	if item.QuestionTitle != "" {
		return item.QuestionTitle
	}
	return item.QuestionID
}
