// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/prepx/internal/models"
	"golang.org/x/oauth2"
)

// MockService is a test double for services.Service
type MockService struct {
	Questions []models.Question
	Feedback  *models.Feedback
	History   []models.HistoryItem
	Err       error

	mu          sync.Mutex
	Submissions []models.AnswerSubmission
}

func (m *MockService) Me(ctx context.Context) (*models.User, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return &models.User{ID: "u1", Email: "test@example.com", Name: "Test User"}, nil
}

func (m *MockService) ListQuestions(ctx context.Context, filter models.QuestionFilter) ([]models.Question, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Questions, nil
}

func (m *MockService) GetQuestion(ctx context.Context, id string) (*models.Question, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for _, q := range m.Questions {
		if q.ID == id {
			return &q, nil
		}
	}
	return nil, errors.New("question not found")
}

func (m *MockService) SubmitAnswer(ctx context.Context, submission models.AnswerSubmission) (*models.Feedback, error) {
	m.mu.Lock()
	m.Submissions = append(m.Submissions, submission)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	if m.Feedback == nil {
		return &models.Feedback{QuestionID: submission.QuestionID}, nil
	}
	fb := *m.Feedback
	return &fb, nil
}

func (m *MockService) GetFeedback(ctx context.Context, answerID string) (*models.Feedback, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Feedback, nil
}

func (m *MockService) ListHistory(ctx context.Context, limit int) ([]models.HistoryItem, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if limit > 0 && limit < len(m.History) {
		return m.History[:limit], nil
	}
	return m.History, nil
}

func (m *MockService) Name() string { return "mock" }

// MemoryTokenStore keeps OAuth tokens in a map.
type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]*oauth2.Token
	Saves  int
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: map[string]*oauth2.Token{}}
}

func (s *MemoryTokenStore) LoadToken(provider string) (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tok, ok := s.tokens[provider]
	if !ok {
		return nil, errors.New("token not found")
	}
	return tok, nil
}

func (s *MemoryTokenStore) SaveToken(provider string, token *oauth2.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[provider] = token
	s.Saves++
	return nil
}

func (s *MemoryTokenStore) DeleteToken(provider string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, provider)
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter passes the first N writes through to W and fails the rest.
type LimitedWriter struct {
	N      int
	W      io.Writer
	writes int
}

func (l *LimitedWriter) Write(p []byte) (int, error) {
	if l.writes >= l.N {
		return 0, errors.New("write limit reached")
	}
	l.writes++
	return l.W.Write(p)
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

var _ io.ReadCloser = (*FCloser)(nil)

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
