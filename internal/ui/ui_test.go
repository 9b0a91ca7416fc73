package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/prepx/internal/models"
	"github.com/desertthunder/prepx/internal/multipart"
	"github.com/desertthunder/prepx/internal/services"
	"github.com/desertthunder/prepx/internal/tasks"
	tu "github.com/desertthunder/prepx/internal/testing"
)

type fakeSpeech struct {
	err   error
	texts []string
}

func (f *fakeSpeech) SynthesizeVoice(ctx context.Context, text, voice string) (*services.Speech, error) {
	f.texts = append(f.texts, text)
	if f.err != nil {
		return nil, f.err
	}
	return &services.Speech{
		Audio:    multipart.Blob{Data: []byte("RIFF"), MIMEType: "audio/wav"},
		Filename: "question.wav",
	}, nil
}

func (f *fakeSpeech) Transcribe(ctx context.Context, audio []byte, mimeType string) (*models.Transcript, error) {
	return &models.Transcript{ID: "t1", Status: models.TranscriptCompleted, Text: string(audio)}, nil
}

var questions = []models.Question{
	{ID: "q1", Title: "Tell me about yourself", Category: "behavioral", Difficulty: "easy"},
	{ID: "q2", Title: "Design a URL shortener", Prompt: "Design a URL shortener for 10M users.", Category: "system design", Kind: models.KindReal},
}

func newTestModel(t *testing.T, svc *tu.MockService, speech *fakeSpeech) *Model {
	t.Helper()
	engine := tasks.NewPracticeEngine(svc, speech, tasks.EngineOpts{OutputDir: t.TempDir()})
	m := NewModel(context.Background(), svc, engine, models.QuestionFilter{})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

// loaded returns a model whose question list has been fetched.
func loaded(t *testing.T, svc *tu.MockService, speech *fakeSpeech) *Model {
	t.Helper()
	m := newTestModel(t, svc, speech)
	m.Init()
	m.Update(m.fetchQuestions()())
	return m
}

// runCmd executes cmd and any batched commands, returning the messages they produce.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var msgs []tea.Msg
	for _, c := range batch {
		msgs = append(msgs, runCmd(c)...)
	}
	return msgs
}

func findMsg(msgs []tea.Msg, kind MsgKind) (Msg, bool) {
	for _, msg := range msgs {
		if m, ok := msg.(Msg); ok && m.kind == kind {
			return m, true
		}
	}
	return Msg{}, false
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestModel(t *testing.T) {
	t.Run("Init fetches questions", func(t *testing.T) {
		m := newTestModel(t, &tu.MockService{Questions: questions}, &fakeSpeech{})
		if cmd := m.Init(); cmd == nil {
			t.Fatal("expected Init to return a command")
		}
		if !m.busy {
			t.Error("expected model to be busy while loading")
		}

		m.Update(m.fetchQuestions()())
		if m.busy {
			t.Error("expected busy to clear after fetch")
		}
		if got := len(m.questionList.Items()); got != 2 {
			t.Errorf("expected 2 list items, got %d", got)
		}
		if !strings.Contains(m.View(), "Interview Questions") {
			t.Errorf("expected list title in view, got %q", m.View())
		}
	})

	t.Run("fetch error is shown and retried", func(t *testing.T) {
		svc := &tu.MockService{Err: errors.New("backend down")}
		m := newTestModel(t, svc, &fakeSpeech{})
		m.Update(m.fetchQuestions()())

		if m.err == nil {
			t.Fatal("expected error to be stored")
		}
		if !strings.Contains(m.View(), "backend down") {
			t.Errorf("expected error in view, got %q", m.View())
		}

		svc.Err = nil
		svc.Questions = questions
		_, cmd := m.Update(keyPress("r"))
		if m.err != nil {
			t.Error("expected retry to clear the error")
		}
		msg, ok := findMsg(runCmd(cmd), MsgQuestionsFetched)
		if !ok {
			t.Fatal("expected retry to refetch questions")
		}
		m.Update(msg)
		if len(m.questions) != 2 {
			t.Errorf("expected 2 questions after retry, got %d", len(m.questions))
		}
	})

	t.Run("enter opens the detail view", func(t *testing.T) {
		m := loaded(t, &tu.MockService{Questions: questions}, &fakeSpeech{})
		m.Update(keyPress("enter"))

		if m.view != DetailView {
			t.Fatalf("expected DetailView, got %v", m.view)
		}
		if m.selected == nil || m.selected.ID != "q1" {
			t.Fatalf("expected q1 selected, got %+v", m.selected)
		}
		if !strings.Contains(m.View(), "behavioral") {
			t.Errorf("expected category in detail view, got %q", m.View())
		}

		m.Update(keyPress("esc"))
		if m.view != QuestionListView {
			t.Errorf("expected esc to return to list, got %v", m.view)
		}
	})

	t.Run("typed answer is submitted and feedback shown", func(t *testing.T) {
		svc := &tu.MockService{
			Questions: questions,
			Feedback: &models.Feedback{
				AnswerID:  "a1",
				Score:     8,
				Summary:   "Clear and concise.",
				Strengths: []string{"Structure"},
			},
		}
		m := loaded(t, svc, &fakeSpeech{})
		m.Update(keyPress("enter"))
		m.Update(keyPress("t"))
		if m.view != AnswerView || !m.answer.Focused() {
			t.Fatalf("expected focused AnswerView, got view %v focused %v", m.view, m.answer.Focused())
		}

		m.answer.SetValue("I am a backend engineer.")
		_, cmd := m.Update(keyPress("ctrl+s"))
		if !m.busy {
			t.Fatal("expected model to be busy while submitting")
		}

		msgs := runCmd(cmd)
		msg, ok := findMsg(msgs, MsgFeedbackReceived)
		if !ok {
			t.Fatal("expected feedback message")
		}
		if update, ok := findMsg(msgs, MsgProgressUpdate); ok {
			m.Update(update)
		}
		m.Update(msg)

		if m.busy {
			t.Error("expected busy to clear")
		}
		if m.view != FeedbackView {
			t.Fatalf("expected FeedbackView, got %v", m.view)
		}
		if len(svc.Submissions) != 1 || svc.Submissions[0].Text != "I am a backend engineer." {
			t.Errorf("unexpected submissions: %+v", svc.Submissions)
		}
		if svc.Submissions[0].QuestionID != "q1" {
			t.Errorf("expected submission for q1, got %q", svc.Submissions[0].QuestionID)
		}

		view := m.View()
		for _, want := range []string{"8.0/10", "Clear and concise.", "Structure"} {
			if !strings.Contains(view, want) {
				t.Errorf("expected %q in feedback view, got %q", want, view)
			}
		}

		m.Update(keyPress("r"))
		if m.view != AnswerView || m.answer.Value() != "" {
			t.Errorf("expected empty AnswerView after r, got view %v value %q", m.view, m.answer.Value())
		}
	})

	t.Run("empty answer is not submitted", func(t *testing.T) {
		svc := &tu.MockService{Questions: questions}
		m := loaded(t, svc, &fakeSpeech{})
		m.Update(keyPress("enter"))
		m.Update(keyPress("t"))

		_, cmd := m.Update(keyPress("ctrl+s"))
		if cmd != nil {
			t.Error("expected no command for an empty answer")
		}
		if m.busy || len(svc.Submissions) != 0 {
			t.Error("expected nothing to be submitted")
		}
		if !strings.Contains(m.status, "empty") {
			t.Errorf("expected empty answer warning, got %q", m.status)
		}
	})

	t.Run("submit failure stays on the answer view", func(t *testing.T) {
		m := loaded(t, &tu.MockService{Questions: questions}, &fakeSpeech{})
		m.Update(keyPress("enter"))
		m.Update(keyPress("t"))
		m.answer.SetValue("answer")
		m.busy = true
		m.progressChan = make(chan tasks.ProgressUpdate)

		m.Update(feedbackReceivedMsg(nil, errors.New("evaluation failed")))
		if m.view != AnswerView {
			t.Errorf("expected AnswerView, got %v", m.view)
		}
		if !strings.Contains(m.status, "evaluation failed") {
			t.Errorf("expected failure in status, got %q", m.status)
		}
		if m.answer.Value() != "answer" {
			t.Error("expected the typed answer to be kept")
		}
	})

	t.Run("s speaks the selected question", func(t *testing.T) {
		speech := &fakeSpeech{}
		m := loaded(t, &tu.MockService{Questions: questions}, speech)
		m.Update(keyPress("j"))
		m.Update(keyPress("enter"))
		if m.selected == nil || m.selected.ID != "q2" {
			t.Fatalf("expected q2 selected, got %+v", m.selected)
		}

		_, cmd := m.Update(keyPress("s"))
		msg, ok := findMsg(runCmd(cmd), MsgSpeechDone)
		if !ok {
			t.Fatal("expected speech message")
		}
		m.Update(msg)

		if len(speech.texts) != 1 || speech.texts[0] != questions[1].Prompt {
			t.Errorf("expected prompt to be spoken, got %v", speech.texts)
		}
		if !strings.Contains(m.status, "question.wav") {
			t.Errorf("expected saved clip in status, got %q", m.status)
		}
		if m.view != DetailView {
			t.Errorf("expected to stay on DetailView, got %v", m.view)
		}
	})

	t.Run("speech failure is reported", func(t *testing.T) {
		m := loaded(t, &tu.MockService{Questions: questions}, &fakeSpeech{err: errors.New("tts offline")})
		m.Update(keyPress("enter"))

		_, cmd := m.Update(keyPress("s"))
		msg, _ := findMsg(runCmd(cmd), MsgSpeechDone)
		m.Update(msg)

		if !strings.Contains(m.status, "tts offline") {
			t.Errorf("expected failure in status, got %q", m.status)
		}
	})

	t.Run("late progress updates are ignored", func(t *testing.T) {
		m := loaded(t, &tu.MockService{Questions: questions}, &fakeSpeech{})
		m.status = "done"

		_, cmd := m.Update(progressUpdateMsg(tasks.ProgressUpdate{Message: "stale"}))
		if cmd != nil || m.status != "done" {
			t.Errorf("expected stale update to be dropped, status %q", m.status)
		}
	})

	t.Run("q quits from the list", func(t *testing.T) {
		m := loaded(t, &tu.MockService{Questions: questions}, &fakeSpeech{})
		_, cmd := m.Update(keyPress("q"))
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})
}

func TestQuestionItem(t *testing.T) {
	tests := []struct {
		name     string
		question models.Question
		want     string
	}{
		{"metadata joined", questions[0], "behavioral • easy"},
		{"real interview noted", questions[1], "system design • asked in a real interview"},
		{"falls back to id", models.Question{ID: "q9", Title: "Untitled"}, "#q9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (questionItem{question: tt.question}).Description(); got != tt.want {
				t.Errorf("Description() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPaletteScore(t *testing.T) {
	for _, score := range []float64{2, 5.5, 9} {
		if got := styles.Score(score); !strings.Contains(got, "/10") {
			t.Errorf("Score(%v) = %q", score, got)
		}
	}
}
