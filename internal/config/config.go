package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// BackendKind selects the window backend.
type BackendKind string

const (
	BackendAuto    BackendKind = "auto"    // xdotool when on PATH, native X11 otherwise.
	BackendXdotool BackendKind = "xdotool" // Shell out to xdotool.
	BackendX11     BackendKind = "x11"     // Talk EWMH directly.
)

// PickMode decides which window wins when the editor owns several.
type PickMode string

const (
	PickLast  PickMode = "last"
	PickFirst PickMode = "first"
)

// RegionType defines relocation region presets.
type RegionType string

const (
	RegionFull       RegionType = "full"
	RegionLeftHalf   RegionType = "left-half"
	RegionRightHalf  RegionType = "right-half"
	RegionTopHalf    RegionType = "top-half"
	RegionBottomHalf RegionType = "bottom-half"
	RegionCustom     RegionType = "custom"
)

// TileRegion defines where on the screen the editor window is placed.
type TileRegion struct {
	Type          RegionType `yaml:"type"`
	XPercent      int        `yaml:"x_percent,omitempty"`      // 0-100
	YPercent      int        `yaml:"y_percent,omitempty"`      // 0-100
	WidthPercent  int        `yaml:"width_percent,omitempty"`  // 1-100
	HeightPercent int        `yaml:"height_percent,omitempty"` // 1-100
}

// EditorConfig describes the editor and its session client.
type EditorConfig struct {
	// Name is matched against the process table (case-insensitive).
	Name string `yaml:"name"`
	// Command launches a new instance. A single file may be appended.
	Command string   `yaml:"command"`
	Args    []string `yaml:"args,omitempty"`
	// Client is the argv prefix of the "attach to running session" client;
	// the file path is appended as its sole argument.
	Client []string `yaml:"client"`
	// ReadyProbe is run repeatedly after a cold start until it exits 0.
	// Empty disables the probe.
	ReadyProbe []string `yaml:"ready_probe,omitempty"`
	// ServerSocket is checked for existence when no probe is configured.
	// "auto" resolves to <runtime dir>/<name>/server.
	ServerSocket string `yaml:"server_socket,omitempty"`
}

// WindowConfig controls window resolution.
type WindowConfig struct {
	Pick PickMode `yaml:"pick"`
}

// RelocateConfig controls post-launch window placement.
type RelocateConfig struct {
	Enabled bool       `yaml:"enabled"`
	Region  TileRegion `yaml:"region"`
}

// ReadinessConfig bounds the waits after a cold start.
type ReadinessConfig struct {
	Timeout  time.Duration `yaml:"timeout"`
	Interval time.Duration `yaml:"interval"`
}

// Config is the effective runeditor configuration.
type Config struct {
	Editor    EditorConfig    `yaml:"editor"`
	Backend   BackendKind     `yaml:"backend"`
	Window    WindowConfig    `yaml:"window"`
	Relocate  RelocateConfig  `yaml:"relocate"`
	Readiness ReadinessConfig `yaml:"readiness"`
	LogLevel  string          `yaml:"log_level"`
	LogFile   string          `yaml:"log_file,omitempty"`
	// Display and XAuthority are used when the process environment has no
	// DISPLAY, e.g. when started by an MCP client.
	Display    string `yaml:"display,omitempty"`
	XAuthority string `yaml:"xauthority,omitempty"`
}

const (
	DefaultEditorName        = "emacs"
	DefaultReadinessTimeout  = 10 * time.Second
	DefaultReadinessInterval = 200 * time.Millisecond
)

// DefaultConfig returns the built-in configuration. It reproduces the
// behaviour of the classic runemacs script: emacs + emacsclient, xdotool,
// last window wins, left half of the screen.
func DefaultConfig() *Config {
	return &Config{
		Editor: EditorConfig{
			Name:       DefaultEditorName,
			Command:    "emacs",
			Client:     []string{"emacsclient", "-a", "emacs", "-n"},
			ReadyProbe: []string{"emacsclient", "-a", "false", "-e", "t"},
		},
		Backend: BackendAuto,
		Window: WindowConfig{
			Pick: PickLast,
		},
		Relocate: RelocateConfig{
			Enabled: true,
			Region:  TileRegion{Type: RegionLeftHalf},
		},
		Readiness: ReadinessConfig{
			Timeout:  DefaultReadinessTimeout,
			Interval: DefaultReadinessInterval,
		},
		LogLevel: "info",
	}
}

// EditorArgv returns the argv that launches a new editor instance, with file
// appended when non-empty.
func (c *Config) EditorArgv(file string) []string {
	argv := make([]string, 0, len(c.Editor.Args)+2)
	argv = append(argv, c.Editor.Command)
	argv = append(argv, c.Editor.Args...)
	if file != "" {
		argv = append(argv, file)
	}
	return argv
}

// ClientArgv returns the argv that attaches file to a running session.
func (c *Config) ClientArgv(file string) []string {
	argv := make([]string, 0, len(c.Editor.Client)+1)
	argv = append(argv, c.Editor.Client...)
	return append(argv, file)
}

// Validate checks the effective config and reports the first problem found.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Editor.Name) == "" {
		return &ValidationError{Path: "editor.name", Err: fmt.Errorf("editor.name is required")}
	}
	if strings.TrimSpace(c.Editor.Command) == "" {
		return &ValidationError{Path: "editor.command", Err: fmt.Errorf("editor.command is required")}
	}
	if len(c.Editor.Client) == 0 || strings.TrimSpace(c.Editor.Client[0]) == "" {
		return &ValidationError{Path: "editor.client", Err: fmt.Errorf("editor.client must name a command")}
	}
	if len(c.Editor.ReadyProbe) > 0 && strings.TrimSpace(c.Editor.ReadyProbe[0]) == "" {
		return &ValidationError{Path: "editor.ready_probe", Err: fmt.Errorf("editor.ready_probe must name a command when set")}
	}
	switch c.Backend {
	case BackendAuto, BackendXdotool, BackendX11:
	default:
		return &ValidationError{Path: "backend", Err: fmt.Errorf("backend must be one of: auto, xdotool, x11")}
	}
	switch c.Window.Pick {
	case PickLast, PickFirst:
	default:
		return &ValidationError{Path: "window.pick", Err: fmt.Errorf("window.pick must be one of: last, first")}
	}
	if err := validateRegion(c.Relocate.Region); err != nil {
		return &ValidationError{Path: "relocate.region", Err: err}
	}
	if c.Readiness.Timeout <= 0 {
		return &ValidationError{Path: "readiness.timeout", Err: fmt.Errorf("readiness.timeout must be > 0")}
	}
	if c.Readiness.Interval <= 0 {
		return &ValidationError{Path: "readiness.interval", Err: fmt.Errorf("readiness.interval must be > 0")}
	}
	if c.Readiness.Interval > c.Readiness.Timeout {
		return &ValidationError{Path: "readiness.interval", Err: fmt.Errorf("readiness.interval must not exceed readiness.timeout")}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}
	return nil
}

func validateRegion(region TileRegion) error {
	switch region.Type {
	case RegionFull, RegionLeftHalf, RegionRightHalf, RegionTopHalf, RegionBottomHalf:
		return nil
	case RegionCustom:
		if region.XPercent < 0 || region.XPercent > 100 {
			return fmt.Errorf("x_percent must be between 0 and 100")
		}
		if region.YPercent < 0 || region.YPercent > 100 {
			return fmt.Errorf("y_percent must be between 0 and 100")
		}
		if region.WidthPercent < 1 || region.WidthPercent > 100 {
			return fmt.Errorf("width_percent must be between 1 and 100")
		}
		if region.HeightPercent < 1 || region.HeightPercent > 100 {
			return fmt.Errorf("height_percent must be between 1 and 100")
		}
		if region.XPercent+region.WidthPercent > 100 {
			return fmt.Errorf("x_percent + width_percent must be <= 100")
		}
		if region.YPercent+region.HeightPercent > 100 {
			return fmt.Errorf("y_percent + height_percent must be <= 100")
		}
		return nil
	default:
		return fmt.Errorf("invalid region type %q", region.Type)
	}
}

// Marshal renders the effective config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Save writes the config to the default config path.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating parent directories.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
