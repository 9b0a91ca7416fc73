package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/prepx/internal/models"
)

var _ list.Item = questionItem{}

// questionItem wraps [models.Question] to implement [list.Item].
type questionItem struct {
	question models.Question
}

func (i questionItem) FilterValue() string {
	return i.question.Title + " " + i.question.Category
}

func (i questionItem) Title() string { return i.question.Title }

func (i questionItem) Description() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{i.question.Category, i.question.Difficulty, i.question.Company} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if i.question.Kind == models.KindReal {
		parts = append(parts, "asked in a real interview")
	}
	if len(parts) == 0 {
		return fmt.Sprintf("#%s", i.question.ID)
	}
	return strings.Join(parts, " • ")
}

func questionItems(questions []models.Question) []list.Item {
	items := make([]list.Item, len(questions))
	for i, q := range questions {
		items[i] = questionItem{question: q}
	}
	return items
}
