package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/runeditor/internal/config"
)

// model is the root bubbletea model.
type model struct {
	path   string
	status string

	cfg            *config.Config
	originalConfig *config.Config

	settings    SettingsView
	saveOverlay SaveOverlay

	width  int
	height int
}

func newModel(res *config.LoadResult, path, status string) model {
	cfg := cloneConfig(res.Config)
	return model{
		path:           path,
		status:         status,
		cfg:            cfg,
		originalConfig: cloneConfig(res.Config),
		settings:       NewSettingsView(cfg),
	}
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = ws.Width
		m.height = ws.Height
		m.settings, _ = m.settings.Update(tea.WindowSizeMsg{Width: m.width, Height: m.contentHeight()})
		return m, nil
	}

	// Save overlay captures all input when active
	if m.saveOverlay.Active() {
		if km, ok := msg.(tea.KeyMsg); ok {
			if km.String() == "ctrl+c" {
				return m, tea.Quit
			}
			prevPhase := m.saveOverlay.phase
			m.saveOverlay = m.saveOverlay.Update(km, m.cfg, m.path)
			if prevPhase == savePreview && m.saveOverlay.SaveSucceeded() {
				m.originalConfig = cloneConfig(m.cfg)
			}
		}
		return m, nil
	}

	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "ctrl+s":
			m.saveOverlay.Show(m.originalConfig, m.cfg)
			return m, nil
		case "q":
			if !m.settings.editing {
				return m, tea.Quit
			}
		}
	}

	var cmd tea.Cmd
	m.settings, cmd = m.settings.Update(msg)
	return m, cmd
}

// contentHeight is the height left between the status and help bars.
func (m model) contentHeight() int {
	h := m.height - 2
	if h < 1 {
		h = 1
	}
	return h
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.status, m.path, m.width)
	helpBar := renderHelpBar(m.width)

	contentHeight := m.height - lipgloss.Height(statusBar) - lipgloss.Height(helpBar)
	if contentHeight < 1 {
		contentHeight = 1
	}

	var content string
	if m.saveOverlay.Active() {
		content = m.saveOverlay.View(m.width, contentHeight)
	} else {
		content = m.settings.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, statusBar, content, helpBar)
}
