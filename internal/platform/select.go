package platform

import (
	"fmt"
	"os/exec"

	"github.com/1broseidon/runeditor/internal/config"
)

// Selector builds a Backend for a configured kind. Zero values use the real
// system.
type Selector struct {
	Runner      Runner
	LookPath    func(string) (string, error)
	DialX11     func() (Backend, error)
	DialMonitor func() (MonitorQuery, error)
}

// Open returns the backend for kind. With BackendAuto it prefers xdotool
// when it is on PATH and falls back to a native X11 connection; when
// neither works the xdotool error is returned.
func (s Selector) Open(kind config.BackendKind) (Backend, error) {
	lookPath := s.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	dial := s.DialX11
	if dial == nil {
		dial = dialX11
	}

	switch kind {
	case config.BackendXdotool:
		xb, err := NewXdotoolBackend(s.Runner, lookPath)
		if err != nil {
			return nil, err
		}
		return s.attachMonitor(xb), nil
	case config.BackendX11:
		return dial()
	case config.BackendAuto, "":
		xb, xerr := NewXdotoolBackend(s.Runner, lookPath)
		if xerr == nil {
			return s.attachMonitor(xb), nil
		}
		if nb, err := dial(); err == nil {
			return nb, nil
		}
		return nil, xerr
	default:
		return nil, fmt.Errorf("unknown backend %q", kind)
	}
}

// attachMonitor gives xb a RandR monitor query when an X connection can be
// opened; without one xb falls back to the whole root window.
func (s Selector) attachMonitor(xb *XdotoolBackend) *XdotoolBackend {
	dial := s.DialMonitor
	if dial == nil {
		dial = dialMonitor
	}
	m, err := dial()
	if err != nil {
		return xb
	}
	return xb.WithMonitor(m)
}
