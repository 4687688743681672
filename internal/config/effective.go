package config

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// BuildEffectiveConfig applies raw over DefaultConfig.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.Editor != nil {
		e := raw.Editor
		if e.Name != nil {
			cfg.Editor.Name = strings.TrimSpace(*e.Name)
		}
		if e.Command != nil {
			cfg.Editor.Command = strings.TrimSpace(*e.Command)
		}
		if e.Args != nil {
			cfg.Editor.Args = cloneStrings(*e.Args)
		}
		if e.Client != nil {
			cfg.Editor.Client = cloneStrings(*e.Client)
		}
		if e.ReadyProbe != nil {
			cfg.Editor.ReadyProbe = cloneStrings(*e.ReadyProbe)
		}
		if e.ServerSocket != nil {
			cfg.Editor.ServerSocket = strings.TrimSpace(*e.ServerSocket)
		}
	}
	if raw.Backend != nil {
		cfg.Backend = BackendKind(strings.ToLower(string(*raw.Backend)))
	}
	if raw.Window != nil && raw.Window.Pick != nil {
		cfg.Window.Pick = PickMode(strings.ToLower(string(*raw.Window.Pick)))
	}
	if raw.Relocate != nil {
		if raw.Relocate.Enabled != nil {
			cfg.Relocate.Enabled = *raw.Relocate.Enabled
		}
		if r := raw.Relocate.Region; r != nil {
			if r.Type != nil {
				cfg.Relocate.Region.Type = *r.Type
			}
			cfg.Relocate.Region.XPercent = derefInt(r.XPercent, cfg.Relocate.Region.XPercent)
			cfg.Relocate.Region.YPercent = derefInt(r.YPercent, cfg.Relocate.Region.YPercent)
			cfg.Relocate.Region.WidthPercent = derefInt(r.WidthPercent, cfg.Relocate.Region.WidthPercent)
			cfg.Relocate.Region.HeightPercent = derefInt(r.HeightPercent, cfg.Relocate.Region.HeightPercent)
		}
	}
	if raw.Readiness != nil {
		if raw.Readiness.Timeout != nil {
			cfg.Readiness.Timeout = *raw.Readiness.Timeout
		}
		if raw.Readiness.Interval != nil {
			cfg.Readiness.Interval = *raw.Readiness.Interval
		}
	}
	if raw.LogLevel != nil {
		level := strings.ToLower(strings.TrimSpace(*raw.LogLevel))
		if level == "warning" {
			level = "warn"
		}
		cfg.LogLevel = level
	}
	if raw.LogFile != nil {
		path, err := expandHome(strings.TrimSpace(*raw.LogFile))
		if err != nil {
			return nil, &ValidationError{Path: "log_file", Err: err}
		}
		cfg.LogFile = path
	}
	if raw.Display != nil {
		cfg.Display = strings.TrimSpace(*raw.Display)
	}
	if raw.XAuthority != nil {
		path, err := expandHome(strings.TrimSpace(*raw.XAuthority))
		if err != nil {
			return nil, &ValidationError{Path: "xauthority", Err: err}
		}
		cfg.XAuthority = path
	}

	return cfg, nil
}

func derefInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}
