package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/prepx/internal/models"
	"github.com/desertthunder/prepx/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgQuestionsFetched MsgKind = iota
	MsgProgressUpdate
	MsgFeedbackReceived
	MsgSpeechDone
)

type questionsFetched struct {
	questions []models.Question
	err       error
}

type feedbackReceived struct {
	result *tasks.PracticeResult
	err    error
}

type speechDone struct {
	result *tasks.SpeakResult
	err    error
}

// questionsFetchedMsg is the constructor for [MsgQuestionsFetched]
func questionsFetchedMsg(questions []models.Question, err error) Msg {
	return Msg{kind: MsgQuestionsFetched, data: questionsFetched{questions, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// feedbackReceivedMsg is the constructor for [MsgFeedbackReceived]
func feedbackReceivedMsg(result *tasks.PracticeResult, err error) Msg {
	return Msg{kind: MsgFeedbackReceived, data: feedbackReceived{result, err}}
}

// speechDoneMsg is the constructor for [MsgSpeechDone]
func speechDoneMsg(result *tasks.SpeakResult, err error) Msg {
	return Msg{kind: MsgSpeechDone, data: speechDone{result, err}}
}
