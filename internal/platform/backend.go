// Package platform resolves and manipulates the editor's top-level window
// through a pluggable window backend.
package platform

import (
	"context"
	"errors"
	"strconv"
)

// ErrToolNotAvailable is returned when a required external tool (the
// window tool or the editor) cannot be found.
var ErrToolNotAvailable = errors.New("required tool not available")

// WindowID is a platform-neutral window identifier. Zero is the empty
// handle.
type WindowID uint32

// Valid reports whether w refers to a window.
func (w WindowID) Valid() bool {
	return w != 0
}

func (w WindowID) String() string {
	return strconv.FormatUint(uint64(w), 10)
}

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Backend abstracts the window-system operations the controller needs.
type Backend interface {
	Name() string
	// WindowsForPID returns every window owned by pid, in the order the
	// window system reports them. No windows is not an error.
	WindowsForPID(ctx context.Context, pid int32) ([]WindowID, error)
	Activate(ctx context.Context, id WindowID) error
	Move(ctx context.Context, id WindowID, x, y int) error
	Resize(ctx context.Context, id WindowID, width, height int) error
	// ScreenGeometry returns the current screen as WIDTHxHEIGHT+LEFT+TOP.
	ScreenGeometry(ctx context.Context) (string, error)
	Close() error
}

// MonitorQuery reports the usable area of the monitor the user is working
// on.
type MonitorQuery interface {
	ActiveMonitor(ctx context.Context) (Geometry, error)
	Close() error
}
