package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawEditor struct {
	Name         *string   `yaml:"name"`
	Command      *string   `yaml:"command"`
	Args         *[]string `yaml:"args"`
	Client       *[]string `yaml:"client"`
	ReadyProbe   *[]string `yaml:"ready_probe"`
	ServerSocket *string   `yaml:"server_socket"`
}

type RawWindow struct {
	Pick *PickMode `yaml:"pick"`
}

type RawTileRegion struct {
	Type          *RegionType `yaml:"type"`
	XPercent      *int        `yaml:"x_percent"`
	YPercent      *int        `yaml:"y_percent"`
	WidthPercent  *int        `yaml:"width_percent"`
	HeightPercent *int        `yaml:"height_percent"`
}

type RawRelocate struct {
	Enabled *bool          `yaml:"enabled"`
	Region  *RawTileRegion `yaml:"region"`
}

type RawReadiness struct {
	Timeout  *time.Duration `yaml:"timeout"`
	Interval *time.Duration `yaml:"interval"`
}

// RawConfig mirrors the YAML file. Nil fields were not set and keep the
// value of whatever was merged underneath.
type RawConfig struct {
	Include    IncludeList   `yaml:"include"`
	Editor     *RawEditor    `yaml:"editor"`
	Backend    *BackendKind  `yaml:"backend"`
	Window     *RawWindow    `yaml:"window"`
	Relocate   *RawRelocate  `yaml:"relocate"`
	Readiness  *RawReadiness `yaml:"readiness"`
	LogLevel   *string       `yaml:"log_level"`
	LogFile    *string       `yaml:"log_file"`
	Display    *string       `yaml:"display"`
	XAuthority *string       `yaml:"xauthority"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.Editor != nil {
		out.Editor = mergeRawEditor(out.Editor, overlay.Editor)
	}
	if overlay.Backend != nil {
		out.Backend = overlay.Backend
	}
	if overlay.Window != nil {
		w := RawWindow{}
		if out.Window != nil {
			w = *out.Window
		}
		if overlay.Window.Pick != nil {
			w.Pick = overlay.Window.Pick
		}
		out.Window = &w
	}
	if overlay.Relocate != nil {
		r := RawRelocate{}
		if out.Relocate != nil {
			r = *out.Relocate
		}
		if overlay.Relocate.Enabled != nil {
			r.Enabled = overlay.Relocate.Enabled
		}
		if overlay.Relocate.Region != nil {
			r.Region = mergeRawRegion(r.Region, overlay.Relocate.Region)
		}
		out.Relocate = &r
	}
	if overlay.Readiness != nil {
		r := RawReadiness{}
		if out.Readiness != nil {
			r = *out.Readiness
		}
		if overlay.Readiness.Timeout != nil {
			r.Timeout = overlay.Readiness.Timeout
		}
		if overlay.Readiness.Interval != nil {
			r.Interval = overlay.Readiness.Interval
		}
		out.Readiness = &r
	}
	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}
	if overlay.LogFile != nil {
		out.LogFile = overlay.LogFile
	}
	if overlay.Display != nil {
		out.Display = overlay.Display
	}
	if overlay.XAuthority != nil {
		out.XAuthority = overlay.XAuthority
	}

	return out
}

func mergeRawEditor(base *RawEditor, overlay *RawEditor) *RawEditor {
	out := RawEditor{}
	if base != nil {
		out = *base
	}
	if overlay.Name != nil {
		out.Name = overlay.Name
	}
	if overlay.Command != nil {
		out.Command = overlay.Command
	}
	// Lists replace rather than append.
	if overlay.Args != nil {
		out.Args = overlay.Args
	}
	if overlay.Client != nil {
		out.Client = overlay.Client
	}
	if overlay.ReadyProbe != nil {
		out.ReadyProbe = overlay.ReadyProbe
	}
	if overlay.ServerSocket != nil {
		out.ServerSocket = overlay.ServerSocket
	}
	return &out
}

func mergeRawRegion(base *RawTileRegion, overlay *RawTileRegion) *RawTileRegion {
	out := RawTileRegion{}
	if base != nil {
		out = *base
	}
	if overlay.Type != nil {
		out.Type = overlay.Type
	}
	if overlay.XPercent != nil {
		out.XPercent = overlay.XPercent
	}
	if overlay.YPercent != nil {
		out.YPercent = overlay.YPercent
	}
	if overlay.WidthPercent != nil {
		out.WidthPercent = overlay.WidthPercent
	}
	if overlay.HeightPercent != nil {
		out.HeightPercent = overlay.HeightPercent
	}
	return &out
}
