package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/runeditor/internal/config"
)

type savePhase int

const (
	saveHidden  savePhase = iota
	savePreview           // showing diff, awaiting confirm
	saveResult            // showing outcome message
)

// SaveOverlay shows the pending changes and writes them on confirm.
type SaveOverlay struct {
	phase        savePhase
	diffLines    []diffLine
	err          error
	savedTo      string
	scrollOffset int
}

// Active reports whether the overlay is visible.
func (s SaveOverlay) Active() bool {
	return s.phase != saveHidden
}

// Show computes the diff and opens the preview.
func (s *SaveOverlay) Show(original, current *config.Config) {
	s.err = nil
	s.savedTo = ""
	s.scrollOffset = 0

	lines := configDiff(original, current)
	if len(lines) == 0 {
		s.phase = saveResult
		s.err = fmt.Errorf("no changes to save")
		return
	}
	s.diffLines = lines
	s.phase = savePreview
}

// SaveSucceeded reports whether the last save completed without error.
func (s SaveOverlay) SaveSucceeded() bool {
	return s.phase == saveResult && s.err == nil
}

// Update handles a key while the overlay is active. Confirming validates
// cfg and writes it to path, or to the default config path when path is
// empty.
func (s SaveOverlay) Update(msg tea.KeyMsg, cfg *config.Config, path string) SaveOverlay {
	switch s.phase {
	case savePreview:
		switch msg.String() {
		case "esc":
			s.phase = saveHidden
		case "enter", "y":
			s.err = saveConfig(cfg, path)
			if s.err == nil {
				s.savedTo = path
			}
			s.phase = saveResult
		case "up", "k":
			if s.scrollOffset > 0 {
				s.scrollOffset--
			}
		case "down", "j":
			s.scrollOffset++
		}
	case saveResult:
		s.phase = saveHidden
	}
	return s
}

func saveConfig(cfg *config.Config, path string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if path == "" {
		return cfg.Save()
	}
	return cfg.SaveTo(path)
}

// View renders the overlay for the given content area.
func (s SaveOverlay) View(width, height int) string {
	switch s.phase {
	case savePreview:
		return s.viewPreview(width, height)
	case saveResult:
		return s.viewResult(width, height)
	}
	return ""
}

func (s SaveOverlay) viewPreview(areaW, areaH int) string {
	boxW := clamp(areaW-8, 30, 80)

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	addStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	rmStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	ctxStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	footStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	title := titleStyle.Render("Save Config: Pending Changes")

	// title, blank lines, footer, border and padding
	diffH := areaH - 10
	if diffH < 3 {
		diffH = 3
	}

	off := clamp(s.scrollOffset, 0, max(0, len(s.diffLines)-diffH))
	end := min(off+diffH, len(s.diffLines))
	innerW := max(boxW-6, 10)

	var lines []string
	for _, dl := range s.diffLines[off:end] {
		t := dl.text
		if len(t) > innerW-2 {
			t = t[:innerW-2]
		}
		switch dl.kind {
		case diffAdded:
			lines = append(lines, addStyle.Render("+ "+t))
		case diffRemoved:
			lines = append(lines, rmStyle.Render("- "+t))
		default:
			lines = append(lines, ctxStyle.Render("  "+t))
		}
	}

	footer := footStyle.Render("enter: save  esc: cancel  j/k: scroll")
	content := title + "\n\n" + strings.Join(lines, "\n") + "\n\n" + footer

	return lipgloss.Place(areaW, areaH, lipgloss.Center, lipgloss.Center, overlayBox(boxW).Render(content))
}

func (s SaveOverlay) viewResult(areaW, areaH int) string {
	boxW := clamp(areaW-8, 30, 60)

	var msg string
	if s.err != nil {
		msg = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true).Render("Error: " + s.err.Error())
	} else {
		msg = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true).Render("Config saved")
		if s.savedTo != "" {
			msg += "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Render(s.savedTo)
		}
	}

	footer := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("press any key to dismiss")
	return lipgloss.Place(areaW, areaH, lipgloss.Center, lipgloss.Center, overlayBox(boxW).Render(msg+"\n\n"+footer))
}

func overlayBox(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1, 2).
		Width(width)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
