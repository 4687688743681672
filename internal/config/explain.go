package config

import (
	"fmt"
	"sort"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths:
//
//	editor.name
//	editor.command
//	editor.args
//	editor.client
//	editor.ready_probe
//	editor.server_socket
//	backend
//	window.pick
//	relocate.enabled
//	relocate.region.type
//	relocate.region.x_percent (and y_percent, width_percent, height_percent)
//	readiness.timeout
//	readiness.interval
//	log_level
//	log_file
//	display
//	xauthority
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

// ExplainPaths lists every path accepted by Explain.
func ExplainPaths() []string {
	paths := make([]string, 0, len(lookupTable))
	for p := range lookupTable {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

var lookupTable = map[string]func(*Config) any{
	"editor.name":                    func(c *Config) any { return c.Editor.Name },
	"editor.command":                 func(c *Config) any { return c.Editor.Command },
	"editor.args":                    func(c *Config) any { return c.Editor.Args },
	"editor.client":                  func(c *Config) any { return c.Editor.Client },
	"editor.ready_probe":             func(c *Config) any { return c.Editor.ReadyProbe },
	"editor.server_socket":           func(c *Config) any { return c.Editor.ServerSocket },
	"backend":                        func(c *Config) any { return c.Backend },
	"window.pick":                    func(c *Config) any { return c.Window.Pick },
	"relocate.enabled":               func(c *Config) any { return c.Relocate.Enabled },
	"relocate.region.type":           func(c *Config) any { return c.Relocate.Region.Type },
	"relocate.region.x_percent":      func(c *Config) any { return c.Relocate.Region.XPercent },
	"relocate.region.y_percent":      func(c *Config) any { return c.Relocate.Region.YPercent },
	"relocate.region.width_percent":  func(c *Config) any { return c.Relocate.Region.WidthPercent },
	"relocate.region.height_percent": func(c *Config) any { return c.Relocate.Region.HeightPercent },
	"readiness.timeout":              func(c *Config) any { return c.Readiness.Timeout },
	"readiness.interval":             func(c *Config) any { return c.Readiness.Interval },
	"log_level":                      func(c *Config) any { return c.LogLevel },
	"log_file":                       func(c *Config) any { return c.LogFile },
	"display":                        func(c *Config) any { return c.Display },
	"xauthority":                     func(c *Config) any { return c.XAuthority },
}

func lookupValue(cfg *Config, path string) (any, error) {
	get, ok := lookupTable[strings.TrimSpace(path)]
	if !ok {
		return nil, fmt.Errorf("unknown path: %s", path)
	}
	return get(cfg), nil
}
