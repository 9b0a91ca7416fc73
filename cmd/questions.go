package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/prepx/internal/models"
	"github.com/desertthunder/prepx/internal/shared"
	"github.com/urfave/cli/v3"
)

// QuestionsList prints questions matching the filter flags.
func (r *Runner) QuestionsList(ctx context.Context, cmd *cli.Command) error {
	filter, err := questionFilter(cmd)
	if err != nil {
		return err
	}
	filter.Search = cmd.String("search")
	filter.Limit = cmd.Int("limit")

	r.authorize(ctx)
	r.logger.Debug("listing questions", "filter", filter)

	questions, err := r.svc.ListQuestions(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to list questions: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(questions, cmd.Bool("pretty"))
	}

	if len(questions) == 0 {
		return r.writePlain("No questions found\n")
	}

	r.writePlainHeader(fmt.Sprintf("Questions (%d)", len(questions)))
	for _, q := range questions {
		r.writePlain("%-10s %s\n", q.ID, q.Title)
		if meta := questionMeta(q); meta != "" {
			r.writePlain("%-10s %s\n", "", meta)
		}
	}
	return nil
}

// QuestionsShow prints a single question.
func (r *Runner) QuestionsShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: question id", shared.ErrMissingArgument)
	}

	r.authorize(ctx)
	question, err := r.svc.GetQuestion(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(question, cmd.Bool("pretty"))
	}

	r.writePlainHeader(question.Title)
	if meta := questionMeta(*question); meta != "" {
		r.writePlain("%s\n", meta)
	}
	if question.Prompt != "" {
		r.writePlainln("%s", question.Prompt)
	}
	if len(question.Keywords) > 0 {
		r.writePlainln("Keywords: %s", strings.Join(question.Keywords, ", "))
	}
	return nil
}

func questionFilter(cmd *cli.Command) (models.QuestionFilter, error) {
	filter := models.QuestionFilter{
		Category:   cmd.String("category"),
		Difficulty: cmd.String("difficulty"),
	}

	switch kind := models.QuestionKind(strings.ToLower(cmd.String("kind"))); kind {
	case "", models.KindPractice, models.KindReal:
		filter.Kind = kind
	default:
		return filter, fmt.Errorf("%w: kind must be practice or real, got %q", shared.ErrInvalidArgument, kind)
	}
	return filter, nil
}

func questionMeta(q models.Question) string {
	var parts []string
	for _, p := range []string{string(q.Kind), q.Category, q.Difficulty, q.Company} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " · ")
}
