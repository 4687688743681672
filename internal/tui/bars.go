package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/runeditor/internal/config"
)

var (
	dotOn  = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
	dotOff = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("●")
)

func renderStatusBar(status, path string, width int) string {
	parts := []string{status}
	if path != "" {
		parts = append(parts, path)
	}
	style := lipgloss.NewStyle().
		Width(width).
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1)
	return style.Render(strings.Join(parts, "  "))
}

func renderHelpBar(width int) string {
	help := "e: edit  ctrl-s: save  q/ctrl-c: quit"
	style := lipgloss.NewStyle().
		Width(width).
		Foreground(lipgloss.Color("241")).
		Padding(0, 1)
	return style.Render(help)
}

// SessionStatus is what `runeditor status` reports.
type SessionStatus struct {
	Editor  string
	Backend string
	Running bool
	PID     int32
	Windows []string
	Window  string
	Region  config.RegionType
}

// Summary is the one-line form used in the settings editor's status bar.
func (s SessionStatus) Summary() string {
	if !s.Running {
		return dotOff + " " + s.Editor + " not running"
	}
	line := fmt.Sprintf("%s %s running", dotOn, s.Editor)
	if s.PID > 0 {
		line += fmt.Sprintf(" (pid %d)", s.PID)
	}
	return line
}

// RenderStatus renders s as a labelled block for the terminal.
func RenderStatus(s SessionStatus) string {
	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("250")).
		Width(10).
		Align(lipgloss.Right).
		PaddingRight(2)
	valueStyle := lipgloss.NewStyle().Bold(true)

	row := func(label, value string) string {
		return labelStyle.Render(label) + valueStyle.Render(value)
	}

	pid := "-"
	if s.PID > 0 {
		pid = fmt.Sprintf("%d", s.PID)
	}
	windows := "-"
	if len(s.Windows) > 0 {
		windows = strings.Join(s.Windows, ", ")
	}

	lines := []string{
		s.Summary(),
		row("backend", s.Backend),
		row("pid", pid),
		row("windows", windows),
		row("target", displayOrDefault(s.Window, "-")),
		row("region", string(s.Region)),
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
