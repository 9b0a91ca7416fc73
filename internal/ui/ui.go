package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/prepx/internal/formatter"
	"github.com/desertthunder/prepx/internal/models"
	"github.com/desertthunder/prepx/internal/services"
	"github.com/desertthunder/prepx/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	QuestionListView ViewState = iota
	DetailView
	AnswerView
	FeedbackView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	svc          services.Service
	engine       *tasks.PracticeEngine
	filter       models.QuestionFilter
	width        int
	height       int
	questionList list.Model
	questions    []models.Question
	selected     *models.Question
	answer       textarea.Model
	spinner      spinner.Model
	busy         bool
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	status       string
	result       *tasks.PracticeResult
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, svc services.Service, engine *tasks.PracticeEngine, filter models.QuestionFilter) *Model {
	ta := textarea.New()
	ta.Placeholder = "Type your answer..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0

	ql := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	ql.Title = "Interview Questions"

	return &Model{
		ctx:          ctx,
		view:         QuestionListView,
		svc:          svc,
		engine:       engine,
		filter:       filter,
		questionList: ql,
		answer:       ta,
		spinner:      spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

// Init initializes the TUI by fetching the question list.
func (m *Model) Init() tea.Cmd {
	m.busy = true
	return tea.Batch(m.fetchQuestions(), m.spinner.Tick)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.questionList.SetSize(max(msg.Width-4, 0), max(msg.Height-8, 0))
		m.answer.SetWidth(max(msg.Width-6, 20))
		m.answer.SetHeight(max(msg.Height/2, 5))
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.view {
		case QuestionListView:
			return m.handleListKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		case AnswerView:
			return m.handleAnswerKeys(msg)
		case FeedbackView:
			return m.handleFeedbackKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateComponents(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgQuestionsFetched:
		data := msg.data.(questionsFetched)
		m.busy = false
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.err = nil
		m.questions = data.questions
		cmd := m.questionList.SetItems(questionItems(data.questions))
		return m, cmd

	case MsgProgressUpdate:
		if !m.busy {
			return m, nil
		}
		m.progress = msg.data.(tasks.ProgressUpdate)
		m.status = m.progress.Message
		return m, m.waitForProgress()

	case MsgFeedbackReceived:
		data := msg.data.(feedbackReceived)
		m.finish()
		if data.err != nil {
			m.status = styles.err.Render(fmt.Sprintf("Submit failed: %v", data.err))
			return m, nil
		}
		m.result = data.result
		m.status = ""
		m.answer.Blur()
		m.view = FeedbackView
		return m, nil

	case MsgSpeechDone:
		data := msg.data.(speechDone)
		m.finish()
		if data.err != nil {
			m.status = styles.err.Render(fmt.Sprintf("Speech failed: %v", data.err))
			return m, nil
		}
		m.status = styles.ok.Render(speechStatus(data.result))
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress r to retry, q to quit", m.err))
	}

	switch m.view {
	case QuestionListView:
		return m.renderList()
	case DetailView:
		return m.renderDetail()
	case AnswerView:
		return m.renderAnswer()
	case FeedbackView:
		return m.renderFeedback()
	default:
		return ""
	}
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.questionList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.questionList, cmd = m.questionList.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		if m.err != nil {
			m.err = nil
			m.busy = true
			return m, tea.Batch(m.fetchQuestions(), m.spinner.Tick)
		}
	case "enter":
		if item, ok := m.questionList.SelectedItem().(questionItem); ok {
			q := item.question
			m.selected = &q
			m.status = ""
			m.view = DetailView
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.questionList, cmd = m.questionList.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		if !m.busy {
			m.view = QuestionListView
			m.status = ""
		}
		return m, nil
	case "t":
		m.view = AnswerView
		m.status = ""
		return m, m.answer.Focus()
	case "s":
		if m.busy {
			return m, nil
		}
		return m, m.startSpeak()
	}
	return m, nil
}

func (m *Model) handleAnswerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.busy {
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.answer.Blur()
		m.view = DetailView
		return m, nil
	case "ctrl+s":
		text := strings.TrimSpace(m.answer.Value())
		if text == "" {
			m.status = styles.warn.Render("Answer is empty")
			return m, nil
		}
		return m, m.startPractice(text)
	}

	var cmd tea.Cmd
	m.answer, cmd = m.answer.Update(msg)
	return m, cmd
}

func (m *Model) handleFeedbackKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.result = nil
		m.answer.Reset()
		m.view = AnswerView
		return m, m.answer.Focus()
	case "esc", "enter":
		m.result = nil
		m.answer.Reset()
		m.selected = nil
		m.view = QuestionListView
		return m, nil
	}
	return m, nil
}

func (m *Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case QuestionListView:
		m.questionList, cmd = m.questionList.Update(msg)
	case AnswerView:
		m.answer, cmd = m.answer.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchQuestions() tea.Cmd {
	return func() tea.Msg {
		questions, err := m.svc.ListQuestions(m.ctx, m.filter)
		return questionsFetchedMsg(questions, err)
	}
}

// start marks the model busy and opens a fresh progress channel.
func (m *Model) start() chan tasks.ProgressUpdate {
	m.busy = true
	m.progress = tasks.ProgressUpdate{}
	m.progressChan = make(chan tasks.ProgressUpdate, 16)
	return m.progressChan
}

func (m *Model) finish() {
	m.busy = false
	m.progressChan = nil
}

func (m *Model) startPractice(text string) tea.Cmd {
	progress := m.start()
	req := tasks.PracticeRequest{Question: m.selected, Text: text}

	run := func() tea.Msg {
		defer close(progress)
		result, err := m.engine.Practice(m.ctx, progress, req)
		return feedbackReceivedMsg(result, err)
	}
	return tea.Batch(run, m.waitForProgress(), m.spinner.Tick)
}

func (m *Model) startSpeak() tea.Cmd {
	progress := m.start()
	req := tasks.SpeakRequest{Text: m.selected.SpokenText()}

	run := func() tea.Msg {
		defer close(progress)
		result, err := m.engine.Speak(m.ctx, progress, req)
		return speechDoneMsg(result, err)
	}
	return tea.Batch(run, m.waitForProgress(), m.spinner.Tick)
}

// waitForProgress relays the next update from the active operation.
// It yields nothing once the channel is closed; the result message ends the operation.
func (m *Model) waitForProgress() tea.Cmd {
	progress := m.progressChan
	if progress == nil {
		return nil
	}
	return func() tea.Msg {
		update, ok := <-progress
		if !ok {
			return nil
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderList() string {
	if m.busy && len(m.questions) == 0 {
		return fmt.Sprintf("%s Loading questions...", m.spinner.View())
	}
	helpKeys := []key.Binding{m.keys.up, m.keys.down, m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.questionList.View(), helpView)
}

func (m *Model) renderDetail() string {
	q := m.selected
	title := styles.title.Render(q.Title)

	var b strings.Builder
	var meta []string
	for _, p := range []string{q.Category, q.Difficulty, q.Company} {
		if p != "" {
			meta = append(meta, p)
		}
	}
	if len(meta) > 0 {
		b.WriteString(styles.help.Render(strings.Join(meta, " • ")))
		b.WriteString("\n\n")
	}
	if q.Prompt != "" && q.Prompt != q.Title {
		b.WriteString(styles.box.Render(q.Prompt))
		b.WriteString("\n")
	}

	helpKeys := []key.Binding{m.keys.answer, m.keys.speak, m.keys.back, m.keys.quit}
	return fmt.Sprintf("%s\n%s\n%s\n\n%s", title, b.String(), m.statusLine(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderAnswer() string {
	title := styles.title.Render(m.selected.Title)
	helpKeys := []key.Binding{m.keys.submit, m.keys.back}
	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", title, m.answer.View(), m.statusLine(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderFeedback() string {
	if m.result == nil || m.result.Feedback == nil {
		return styles.err.Render("No feedback available\n\nPress esc to go back, q to quit")
	}

	title := styles.title.Render(fmt.Sprintf("Feedback • %s", styles.Score(m.result.Feedback.Score)))
	report, err := formatter.FeedbackToText(formatter.FeedbackReport{
		Question: m.result.Question,
		Answer:   m.result.Answer,
		Feedback: *m.result.Feedback,
	})
	if err != nil {
		return styles.err.Render(err.Error())
	}

	var saved string
	if m.result.Attempt != nil {
		saved = styles.help.Render(fmt.Sprintf("\nSaved as attempt #%d", m.result.Attempt.Sequence()))
	}

	retry := key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "try again"))
	helpKeys := []key.Binding{retry, m.keys.back, m.keys.quit}
	return fmt.Sprintf("%s\n%s%s\n\n%s", title, strings.TrimRight(string(report), "\n"), saved, m.help.ShortHelpView(helpKeys))
}

func (m *Model) statusLine() string {
	if m.busy {
		msg := m.progress.Message
		if msg == "" {
			msg = "Working..."
		}
		return fmt.Sprintf("%s %s", m.spinner.View(), msg)
	}
	return m.status
}

func speechStatus(r *tasks.SpeakResult) string {
	if r == nil || r.Clip == nil {
		return "Speech ready"
	}
	if r.Cached {
		return fmt.Sprintf("✓ Using cached clip %s", r.Clip.Path())
	}
	if r.Info != nil {
		return fmt.Sprintf("✓ Saved %s (%.1fs)", r.Clip.Path(), r.Info.Duration.Seconds())
	}
	return fmt.Sprintf("✓ Saved %s", r.Clip.Path())
}
