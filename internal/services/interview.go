package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/desertthunder/prepx/internal/models"
	"github.com/desertthunder/prepx/internal/shared"
)

// InterviewService implements [Service] on top of [APIService].
type InterviewService struct {
	api *APIService
}

// NewInterviewService creates an [InterviewService] that sends requests through api.
func NewInterviewService(api *APIService) *InterviewService {
	return &InterviewService{api: api}
}

func (s *InterviewService) Name() string {
	return "Interview Practice"
}

// Me returns the authenticated user.
func (s *InterviewService) Me(ctx context.Context) (*models.User, error) {
	resp, err := s.api.Get(ctx, "/users/me")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	user, err := decodeData[models.User](resp)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListQuestions returns questions matching filter.
func (s *InterviewService) ListQuestions(ctx context.Context, filter models.QuestionFilter) ([]models.Question, error) {
	resp, err := s.api.Get(ctx, "/questions"+questionQuery(filter))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	data, err := decodeData[struct {
		Questions []models.Question `json:"questions"`
	}](resp)
	if err != nil {
		return nil, err
	}
	return data.Questions, nil
}

// GetQuestion retrieves a single question. A 404 maps to [shared.ErrQuestionNotFound].
func (s *InterviewService) GetQuestion(ctx context.Context, id string) (*models.Question, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: question id is required", shared.ErrMissingArgument)
	}

	resp, err := s.api.Get(ctx, "/questions/"+url.PathEscape(id))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", shared.ErrQuestionNotFound, id)
	}

	question, err := decodeData[models.Question](resp)
	if err != nil {
		return nil, err
	}
	return &question, nil
}

// SubmitAnswer sends submission for evaluation and returns the feedback.
func (s *InterviewService) SubmitAnswer(ctx context.Context, submission models.AnswerSubmission) (*models.Feedback, error) {
	if err := submission.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	resp, err := s.api.PostJSON(ctx, "/answers", submission)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	feedback, err := decodeData[models.Feedback](resp)
	if err != nil {
		return nil, err
	}
	if feedback.QuestionID == "" {
		feedback.QuestionID = submission.QuestionID
	}
	return &feedback, nil
}

// GetFeedback retrieves the feedback for a submitted answer.
func (s *InterviewService) GetFeedback(ctx context.Context, answerID string) (*models.Feedback, error) {
	if answerID == "" {
		return nil, fmt.Errorf("%w: answer id is required", shared.ErrMissingArgument)
	}

	resp, err := s.api.Get(ctx, "/answers/"+url.PathEscape(answerID)+"/feedback")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	feedback, err := decodeData[models.Feedback](resp)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", shared.ErrAttemptNotFound, answerID)
		}
		return nil, err
	}
	return &feedback, nil
}

// ListHistory returns up to limit past answers, newest first. A limit of 0 uses the backend default.
func (s *InterviewService) ListHistory(ctx context.Context, limit int) ([]models.HistoryItem, error) {
	path := "/history"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	resp, err := s.api.Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	data, err := decodeData[struct {
		Items []models.HistoryItem `json:"items"`
	}](resp)
	if err != nil {
		return nil, err
	}
	return data.Items, nil
}

func questionQuery(f models.QuestionFilter) string {
	q := url.Values{}
	if f.Kind != "" {
		q.Set("kind", string(f.Kind))
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Difficulty != "" {
		q.Set("difficulty", f.Difficulty)
	}
	if f.Search != "" {
		q.Set("q", f.Search)
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}
