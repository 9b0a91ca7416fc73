// package formatter renders feedback and practice history as text, Markdown, CSV and JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/prepx/internal/models"
	"github.com/desertthunder/prepx/internal/shared"
)

// Format names an output encoding.
type Format string

const (
	FormatText     Format = "txt"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
)

// ParseFormat accepts a format name or common alias ("md", "text").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "txt", "text":
		return FormatText, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
	}
}

// Ext returns the file extension for f, including the dot.
func (f Format) Ext() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatCSV:
		return ".csv"
	case FormatJSON:
		return ".json"
	default:
		return ".txt"
	}
}

// FeedbackReport is a graded answer together with the question it answered.
type FeedbackReport struct {
	Question models.Question `json:"question"`
	Answer   string          `json:"answer,omitempty"`
	Feedback models.Feedback `json:"feedback"`
}

// FeedbackToText renders a report for terminal output.
func FeedbackToText(r FeedbackReport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Question: %s\n", questionTitle(r.Question))
	if r.Answer != "" {
		fmt.Fprintf(&buf, "Answer: %s\n", r.Answer)
	}
	fmt.Fprintf(&buf, "Score: %s\n", FormatScore(r.Feedback.Score))
	if r.Feedback.Summary != "" {
		fmt.Fprintf(&buf, "\n%s\n", r.Feedback.Summary)
	}

	writeList(&buf, "\nStrengths:\n", "  + ", r.Feedback.Strengths)
	writeList(&buf, "\nImprovements:\n", "  - ", r.Feedback.Improvements)

	if kw := r.Feedback.Keywords; len(kw.Matched)+len(kw.Missing) > 0 {
		fmt.Fprintf(&buf, "\nKeywords: %d%% covered\n", int(kw.Ratio()*100))
		if len(kw.Matched) > 0 {
			fmt.Fprintf(&buf, "  matched: %s\n", strings.Join(kw.Matched, ", "))
		}
		if len(kw.Missing) > 0 {
			fmt.Fprintf(&buf, "  missing: %s\n", strings.Join(kw.Missing, ", "))
		}
	}

	return buf.Bytes(), nil
}

// FeedbackToMarkdown renders a report as a Markdown document.
func FeedbackToMarkdown(r FeedbackReport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", questionTitle(r.Question))
	if r.Question.Prompt != "" && r.Question.Prompt != r.Question.Title {
		fmt.Fprintf(&buf, "> %s\n\n", r.Question.Prompt)
	}
	fmt.Fprintf(&buf, "**Score**: %s\n", FormatScore(r.Feedback.Score))
	if !r.Feedback.CreatedAt.IsZero() {
		fmt.Fprintf(&buf, "**Date**: %s\n", r.Feedback.CreatedAt.Format(time.DateOnly))
	}
	buf.WriteString("\n")

	if r.Answer != "" {
		fmt.Fprintf(&buf, "## Answer\n\n%s\n\n", r.Answer)
	}
	if r.Feedback.Summary != "" {
		fmt.Fprintf(&buf, "## Summary\n\n%s\n\n", r.Feedback.Summary)
	}

	writeList(&buf, "## Strengths\n\n", "- ", r.Feedback.Strengths)
	writeList(&buf, "\n## Improvements\n\n", "- ", r.Feedback.Improvements)

	if kw := r.Feedback.Keywords; len(kw.Matched)+len(kw.Missing) > 0 {
		buf.WriteString("\n## Keywords\n\n")
		for _, k := range kw.Matched {
			fmt.Fprintf(&buf, "- [x] %s\n", k)
		}
		for _, k := range kw.Missing {
			fmt.Fprintf(&buf, "- [ ] %s\n", k)
		}
	}

	return buf.Bytes(), nil
}

// HistoryToCSV converts history with columns: Answer ID, Question ID, Question, Score, Date
func HistoryToCSV(items []models.HistoryItem) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Answer ID", "Question ID", "Question", "Score", "Date"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, item := range items {
		record := []string{
			item.AnswerID,
			item.QuestionID,
			item.QuestionTitle,
			strconv.FormatFloat(item.Score, 'f', 1, 64),
			formatDate(item.CreatedAt),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// HistoryToMarkdown renders history as a table with an average score line.
func HistoryToMarkdown(items []models.HistoryItem) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Practice History\n\n")
	fmt.Fprintf(&buf, "**Answers**: %d\n", len(items))
	if len(items) > 0 {
		fmt.Fprintf(&buf, "**Average score**: %s\n", FormatScore(AverageScore(items)))
	}
	buf.WriteString("\n| Date | Question | Score |\n|---|---|---|\n")

	for _, item := range items {
		title := strings.ReplaceAll(item.QuestionTitle, "|", `\|`)
		if title == "" {
			title = item.QuestionID
		}
		fmt.Fprintf(&buf, "| %s | %s | %s |\n", formatDate(item.CreatedAt), title, FormatScore(item.Score))
	}

	return buf.Bytes(), nil
}

// HistoryToText renders one line per answer.
func HistoryToText(items []models.HistoryItem) ([]byte, error) {
	var buf bytes.Buffer
	for i, item := range items {
		title := item.QuestionTitle
		if title == "" {
			title = item.QuestionID
		}
		fmt.Fprintf(&buf, "%d. [%s] %s (%s)\n", i+1, FormatScore(item.Score), title, formatDate(item.CreatedAt))
	}
	return buf.Bytes(), nil
}

// RenderHistory encodes items in format.
func RenderHistory(items []models.HistoryItem, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return HistoryToCSV(items)
	case FormatMarkdown:
		return HistoryToMarkdown(items)
	case FormatJSON:
		return shared.MarshalJSON(items, true)
	default:
		return HistoryToText(items)
	}
}

// RenderFeedback encodes a report in format. CSV is not supported for a single report.
func RenderFeedback(r FeedbackReport, format Format) ([]byte, error) {
	switch format {
	case FormatMarkdown:
		return FeedbackToMarkdown(r)
	case FormatJSON:
		return shared.MarshalJSON(r, true)
	case FormatCSV:
		return nil, fmt.Errorf("%w: csv is only available for history", shared.ErrInvalidArgument)
	default:
		return FeedbackToText(r)
	}
}

// WriteFile writes data to path, creating parent directories.
func WriteFile(path string, data []byte) (string, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return path, nil
}

// WriteManifest writes v as indented JSON to path.
func WriteManifest(v any, path string) error {
	data, err := shared.MarshalJSON(v, true)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	_, err = WriteFile(path, data)
	return err
}

// FormatScore renders a 0 to 10 score with one decimal.
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 1, 64) + "/10"
}

// AverageScore returns the mean score of items, or 0 when empty.
func AverageScore(items []models.HistoryItem) float64 {
	if len(items) == 0 {
		return 0
	}
	var sum float64
	for _, item := range items {
		sum += item.Score
	}
	return sum / float64(len(items))
}

func questionTitle(q models.Question) string {
	if q.Title != "" {
		return q.Title
	}
	if q.Prompt != "" {
		return q.Prompt
	}
	return q.ID
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}

func writeList(buf *bytes.Buffer, heading, bullet string, items []string) {
	if len(items) == 0 {
		return
	}
	buf.WriteString(heading)
	for _, item := range items {
		buf.WriteString(bullet + item + "\n")
	}
}
