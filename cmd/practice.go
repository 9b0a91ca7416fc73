package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/prepx/internal/audio"
	"github.com/desertthunder/prepx/internal/formatter"
	"github.com/desertthunder/prepx/internal/shared"
	"github.com/desertthunder/prepx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// AnswerSubmit sends a typed or recorded answer and prints the feedback.
func (r *Runner) AnswerSubmit(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	if format == formatter.FormatCSV {
		return fmt.Errorf("%w: feedback cannot be rendered as csv", shared.ErrInvalidArgument)
	}

	req := tasks.PracticeRequest{
		QuestionID: cmd.String("question"),
		Text:       strings.TrimSpace(cmd.String("text")),
	}

	if path := cmd.String("audio"); path != "" {
		data, mimeType, err := audio.Load(path)
		if err != nil {
			return err
		}
		req.Audio, req.MIMEType = data, mimeType

		if audio.CheckFormat(mimeType) == nil {
			if info, err := audio.Probe(data); err == nil {
				req.Duration = info.Duration
			} else {
				r.logger.Debug("failed to probe recording", "path", path, "error", err)
			}
		}
		r.logger.Info("loaded recording", "path", path, "type", mimeType, "bytes", len(data))
	}

	r.authorize(ctx)
	progressCh, wait := r.printProgress()
	result, err := r.practiceEngine().Practice(ctx, progressCh, req)
	wait()
	if err != nil {
		return err
	}

	report := formatter.FeedbackReport{Question: result.Question, Answer: result.Answer, Feedback: *result.Feedback}
	data, err := formatter.RenderFeedback(report, format)
	if err != nil {
		return err
	}

	r.writePlain("\n")
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if out := cmd.String("output"); out != "" {
		path, err := formatter.WriteFile(out, data)
		if err != nil {
			return err
		}
		r.writePlainln("✓ Feedback saved to %s", path)
	}
	if result.Attempt != nil {
		r.logger.Info("attempt recorded", "sequence", result.Attempt.Sequence(), "id", result.Attempt.ID())
	}
	return nil
}

// Speak synthesizes a question or arbitrary text and saves the clip.
func (r *Runner) Speak(ctx context.Context, cmd *cli.Command) error {
	req := tasks.SpeakRequest{
		QuestionID: cmd.String("question"),
		Text:       strings.TrimSpace(cmd.String("text")),
		Voice:      cmd.String("voice"),
		OutputDir:  cmd.String("out"),
		Refresh:    cmd.Bool("refresh"),
	}

	r.authorize(ctx)
	progressCh, wait := r.printProgress()
	result, err := r.practiceEngine().Speak(ctx, progressCh, req)
	wait()
	if err != nil {
		return err
	}

	if result.Cached {
		return r.writePlain("✓ Using cached clip %s\n", result.Clip.Path())
	}

	r.writePlain("✓ Saved %s\n", result.Clip.Path())
	if result.Info != nil {
		r.writePlain("  %s, %d Hz\n", shared.FormatDuration(result.Info.Duration.Milliseconds()), result.Info.SampleRate)
	}
	if result.Meta != nil && result.Meta.Message != "" {
		r.logger.Debug("synthesis metadata", "message", result.Meta.Message, "session", result.Meta.Data.SessionID)
	}
	return nil
}
