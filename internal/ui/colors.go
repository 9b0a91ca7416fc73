package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/prepx/internal/formatter"
)

const (
	colorAccent = lipgloss.Color("#7D56F4")
	colorGood   = lipgloss.Color("#04B575")
	colorBad    = lipgloss.Color("#FF0000")
	colorFair   = lipgloss.Color("#FFA500")
	colorMuted  = lipgloss.Color("#626262")
)

var styles = Palette{
	title: lipgloss.NewStyle().Foreground(colorAccent).Bold(true).MarginBottom(1),
	ok:    lipgloss.NewStyle().Foreground(colorGood).Bold(true),
	err:   lipgloss.NewStyle().Foreground(colorBad).Bold(true),
	warn:  lipgloss.NewStyle().Foreground(colorFair),
	help:  lipgloss.NewStyle().Foreground(colorMuted).Italic(true),
	box:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorMuted).Padding(0, 1),
}

// Palette holds the styles shared by every view.
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
	box   lipgloss.Style
}

// Score renders a 0-10 score, green from 7, orange from 4 and red below.
func (p Palette) Score(score float64) string {
	text := formatter.FormatScore(score)
	switch {
	case score >= 7:
		return p.ok.Render(text)
	case score >= 4:
		return p.warn.Render(text)
	default:
		return p.err.Render(text)
	}
}
