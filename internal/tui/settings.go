package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/runeditor/internal/config"
)

// SettingsView shows the effective settings and edits them through a form.
type SettingsView struct {
	cfg *config.Config

	width  int
	height int

	editing bool
	form    *huh.Form

	// Form-bound values (strings for huh, converted on submit)
	fName     string
	fCommand  string
	fClient   string
	fProbe    string
	fBackend  string
	fPick     string
	fRelocate bool
	fRegion   string
	fTimeout  string
	fInterval string
	fLogLevel string
	fDisplay  string
}

// NewSettingsView creates a SettingsView bound to cfg. Submitted forms
// modify cfg in place.
func NewSettingsView(cfg *config.Config) SettingsView {
	return SettingsView{cfg: cfg}
}

// Update implements tea.Model.
func (s SettingsView) Update(msg tea.Msg) (SettingsView, tea.Cmd) {
	if s.editing {
		return s.updateEditing(msg)
	}
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "e" {
			s.startEditing()
			return s, s.form.Init()
		}
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
	}
	return s, nil
}

func (s SettingsView) updateEditing(msg tea.Msg) (SettingsView, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "esc" {
			s.editing = false
			s.form = nil
			return s, nil
		}
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	switch s.form.State {
	case huh.StateCompleted:
		s.applyForm()
		s.editing = false
		s.form = nil
		return s, nil
	case huh.StateAborted:
		s.editing = false
		s.form = nil
		return s, nil
	}
	return s, cmd
}

func (s *SettingsView) loadFields() {
	cfg := s.cfg
	s.fName = cfg.Editor.Name
	s.fCommand = strings.Join(append([]string{cfg.Editor.Command}, cfg.Editor.Args...), " ")
	s.fClient = strings.Join(cfg.Editor.Client, " ")
	s.fProbe = strings.Join(cfg.Editor.ReadyProbe, " ")
	s.fBackend = string(cfg.Backend)
	s.fPick = string(cfg.Window.Pick)
	s.fRelocate = cfg.Relocate.Enabled
	s.fRegion = string(cfg.Relocate.Region.Type)
	s.fTimeout = cfg.Readiness.Timeout.String()
	s.fInterval = cfg.Readiness.Interval.String()
	s.fLogLevel = cfg.LogLevel
	s.fDisplay = cfg.Display
}

func (s *SettingsView) startEditing() {
	if s.cfg == nil {
		s.cfg = config.DefaultConfig()
	}
	s.loadFields()

	w := s.width - 4
	if w < 40 {
		w = 40
	}

	regions := []string{
		string(config.RegionLeftHalf),
		string(config.RegionRightHalf),
		string(config.RegionTopHalf),
		string(config.RegionBottomHalf),
		string(config.RegionFull),
	}
	// custom regions carry percentages the form does not edit
	if s.fRegion == string(config.RegionCustom) {
		regions = append(regions, string(config.RegionCustom))
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("editor_name").
				Title("Editor Process Name").
				Description("Matched against the process table, ignoring case").
				Validate(notBlank("editor name")).
				Value(&s.fName),
			huh.NewInput().
				Key("editor_command").
				Title("Launch Command").
				Description("Command and arguments that start a new editor").
				Validate(notBlank("launch command")).
				Value(&s.fCommand),
			huh.NewInput().
				Key("editor_client").
				Title("Client Command").
				Description("Attaches a file to the running session; the file is appended").
				Validate(notBlank("client command")).
				Value(&s.fClient),
			huh.NewInput().
				Key("ready_probe").
				Title("Readiness Probe").
				Description("Exits 0 once the editor accepts clients (empty: check the socket)").
				Value(&s.fProbe),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("backend").
				Title("Window Backend").
				Options(huh.NewOptions(string(config.BackendAuto), string(config.BackendXdotool), string(config.BackendX11))...).
				Value(&s.fBackend),
			huh.NewSelect[string]().
				Key("pick").
				Title("Window Pick").
				Description("Which window wins when the editor owns several").
				Options(huh.NewOptions(string(config.PickLast), string(config.PickFirst))...).
				Value(&s.fPick),
			huh.NewConfirm().
				Key("relocate").
				Title("Relocate Window").
				Description("Move the editor window after every run").
				Value(&s.fRelocate),
			huh.NewSelect[string]().
				Key("region").
				Title("Region").
				Options(huh.NewOptions(regions...)...).
				Value(&s.fRegion),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("readiness_timeout").
				Title("Readiness Timeout").
				Description("How long to wait for a new editor, e.g. 10s").
				Validate(positiveDuration).
				Value(&s.fTimeout),
			huh.NewInput().
				Key("readiness_interval").
				Title("Poll Interval").
				Validate(positiveDuration).
				Value(&s.fInterval),
			huh.NewSelect[string]().
				Key("log_level").
				Title("Log Level").
				Options(huh.NewOptions("debug", "info", "warn", "error")...).
				Value(&s.fLogLevel),
			huh.NewInput().
				Key("display").
				Title("Fallback DISPLAY").
				Description("Used when the environment has none").
				Value(&s.fDisplay),
		),
	).WithWidth(w).WithShowHelp(true).WithShowErrors(true)

	s.editing = true
}

func notBlank(what string) func(string) error {
	return func(v string) error {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%s is required", what)
		}
		return nil
	}
}

func positiveDuration(v string) error {
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("not a duration: %v", err)
	}
	if d <= 0 {
		return fmt.Errorf("must be > 0")
	}
	return nil
}

// applyForm copies the form values into cfg. Values that fail to parse
// leave the current setting alone.
func (s *SettingsView) applyForm() {
	if s.cfg == nil {
		return
	}
	cfg := s.cfg

	if v := strings.TrimSpace(s.fName); v != "" {
		cfg.Editor.Name = v
	}
	if parts := strings.Fields(s.fCommand); len(parts) > 0 {
		cfg.Editor.Command = parts[0]
		cfg.Editor.Args = parts[1:]
		if len(cfg.Editor.Args) == 0 {
			cfg.Editor.Args = nil
		}
	}
	if parts := strings.Fields(s.fClient); len(parts) > 0 {
		cfg.Editor.Client = parts
	}
	cfg.Editor.ReadyProbe = strings.Fields(s.fProbe)
	if len(cfg.Editor.ReadyProbe) == 0 {
		cfg.Editor.ReadyProbe = nil
	}
	if s.fBackend != "" {
		cfg.Backend = config.BackendKind(s.fBackend)
	}
	if s.fPick != "" {
		cfg.Window.Pick = config.PickMode(s.fPick)
	}
	cfg.Relocate.Enabled = s.fRelocate
	if s.fRegion != "" && config.RegionType(s.fRegion) != cfg.Relocate.Region.Type {
		cfg.Relocate.Region = config.TileRegion{Type: config.RegionType(s.fRegion)}
	}
	if d, err := time.ParseDuration(strings.TrimSpace(s.fTimeout)); err == nil && d > 0 {
		cfg.Readiness.Timeout = d
	}
	if d, err := time.ParseDuration(strings.TrimSpace(s.fInterval)); err == nil && d > 0 {
		cfg.Readiness.Interval = d
	}
	if s.fLogLevel != "" {
		cfg.LogLevel = s.fLogLevel
	}
	cfg.Display = strings.TrimSpace(s.fDisplay)
}

// View implements tea.Model.
func (s SettingsView) View() string {
	if s.editing && s.form != nil {
		return s.viewEditing()
	}
	return s.viewDisplay()
}

func (s SettingsView) viewDisplay() string {
	cfg := s.cfg
	if cfg == nil {
		style := lipgloss.NewStyle().
			Width(s.width).
			Height(s.height).
			Foreground(lipgloss.Color("241")).
			Align(lipgloss.Center, lipgloss.Center)
		return style.Render("No config loaded")
	}

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("250")).
		Width(22).
		Align(lipgloss.Right).
		PaddingRight(2)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Bold(true)

	dimStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	row := func(label, value string) string {
		return labelStyle.Render(label) + valueStyle.Render(value)
	}

	lines := []string{
		"",
		row("Editor", cfg.Editor.Name),
		row("Launch", strings.Join(cfg.EditorArgv(""), " ")),
		row("Client", strings.Join(cfg.Editor.Client, " ")),
		row("Readiness Probe", displayOrDefault(strings.Join(cfg.Editor.ReadyProbe, " "), "(socket)")),
		"",
		row("Backend", string(cfg.Backend)),
		row("Window Pick", string(cfg.Window.Pick)),
		row("Relocate", relocateSummary(cfg.Relocate)),
		"",
		row("Readiness", fmt.Sprintf("timeout %s, every %s", cfg.Readiness.Timeout, cfg.Readiness.Interval)),
		row("Log Level", cfg.LogLevel),
		row("Display", displayOrDefault(cfg.Display, "(environment)")),
		"",
		dimStyle.Render("  Press 'e' to edit settings"),
	}

	contentStyle := lipgloss.NewStyle().
		Width(s.width).
		Height(s.height).
		Padding(1, 2)

	return contentStyle.Render(strings.Join(lines, "\n"))
}

func (s SettingsView) viewEditing() string {
	header := lipgloss.NewStyle().
		Foreground(lipgloss.Color("62")).
		Bold(true).
		Render("Editing Settings") +
		lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Render("  (esc to cancel)")

	style := lipgloss.NewStyle().
		Width(s.width).
		Height(s.height).
		Padding(1, 2)

	return style.Render(header + "\n\n" + s.form.View())
}

func relocateSummary(r config.RelocateConfig) string {
	if !r.Enabled {
		return "off"
	}
	if r.Region.Type != config.RegionCustom {
		return string(r.Region.Type)
	}
	return fmt.Sprintf("custom x:%d%% y:%d%% w:%d%% h:%d%%",
		r.Region.XPercent, r.Region.YPercent, r.Region.WidthPercent, r.Region.HeightPercent)
}

func displayOrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
