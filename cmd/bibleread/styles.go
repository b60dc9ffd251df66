package main

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	accent  = lipgloss.Color("#8BC34A")
	warning = lipgloss.Color("#FFC107")
)

// styles renders terminal output. Colors are dropped when w is not a
// terminal.
type styles struct {
	title lipgloss.Style
	mark  lipgloss.Style
	muted lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title: r.NewStyle().Bold(true).Foreground(accent),
		mark:  r.NewStyle().Foreground(warning),
		muted: r.NewStyle().Faint(true),
	}
}
