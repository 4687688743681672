//go:build linux

package platform

import (
	"context"
	"fmt"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/runeditor/internal/x11"
)

// LinuxBackend talks EWMH directly over an X11 connection.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend opens a fresh X11 connection.
func NewLinuxBackend() (*LinuxBackend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, err
	}
	return &LinuxBackend{conn: conn}, nil
}

func (b *LinuxBackend) Name() string { return "x11" }

func (b *LinuxBackend) Close() error {
	b.conn.Close()
	return nil
}

func (b *LinuxBackend) WindowsForPID(ctx context.Context, pid int32) ([]WindowID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	wins, err := b.conn.WindowsForPID(int(pid))
	if err != nil {
		return nil, err
	}
	ids := make([]WindowID, 0, len(wins))
	for _, w := range wins {
		ids = append(ids, WindowID(w))
	}
	return ids, nil
}

func (b *LinuxBackend) Activate(ctx context.Context, id WindowID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.conn.FocusWindow(xproto.Window(id)); err != nil {
		return fmt.Errorf("failed to activate window %s: %w", id, err)
	}
	return nil
}

func (b *LinuxBackend) Move(ctx context.Context, id WindowID, x, y int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.conn.Move(xproto.Window(id), x, y)
}

func (b *LinuxBackend) Resize(ctx context.Context, id WindowID, width, height int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.conn.Resize(xproto.Window(id), width, height)
}

// ActiveMonitor returns the RandR monitor holding the focused window, minus
// dock space.
func (b *LinuxBackend) ActiveMonitor(ctx context.Context) (Geometry, error) {
	if err := ctx.Err(); err != nil {
		return Geometry{}, err
	}
	mon, err := b.conn.ActiveMonitor()
	if err != nil {
		return Geometry{}, err
	}
	return Geometry{Width: mon.Width, Height: mon.Height, Left: mon.X, Top: mon.Y}, nil
}

// ScreenGeometry reports the usable area of the active monitor.
func (b *LinuxBackend) ScreenGeometry(ctx context.Context) (string, error) {
	g, err := b.ActiveMonitor(ctx)
	if err != nil {
		return "", err
	}
	return g.String(), nil
}

func dialX11() (Backend, error) {
	return NewLinuxBackend()
}

func dialMonitor() (MonitorQuery, error) {
	return NewLinuxBackend()
}
