// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI is a question browser with four views:
//  1. [QuestionListView] : Browse and filter practice questions
//  2. [DetailView] : Read the prompt; (s)peak it aloud or (t)ype an answer
//  3. [AnswerView] : Compose an answer in a textarea and submit it with ctrl+s
//  4. [FeedbackView] : Score, strengths, improvements and keyword coverage
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Long-running work runs through [tasks.PracticeEngine]; its progress updates flow through a channel
// and are shown next to a spinner until the result message arrives.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
