package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// WindowsForPID returns the managed windows whose _NET_WM_PID equals pid,
// in _NET_CLIENT_LIST order (oldest first).
func (c *Connection) WindowsForPID(pid int) ([]xproto.Window, error) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to get client list: %w", err)
	}

	var out []xproto.Window
	for _, win := range clients {
		wpid, err := ewmh.WmPidGet(c.XUtil, win)
		if err != nil || int(wpid) != pid {
			continue
		}
		if !c.IsNormalWindow(win) {
			continue
		}
		out = append(out, win)
	}
	return out, nil
}

// IsNormalWindow rejects docks, desktops, splash screens and notifications.
// Windows without a type are treated as normal.
func (c *Connection) IsNormalWindow(win xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, win)
	if err != nil {
		return true
	}
	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL", "_NET_WM_WINDOW_TYPE_DIALOG":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP", "_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH", "_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return false
		}
	}
	return len(types) == 0
}

// ActiveWindow returns _NET_ACTIVE_WINDOW.
func (c *Connection) ActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}

// FocusWindow raises and focuses win by sending a _NET_ACTIVE_WINDOW client
// message to the root window. The message is built by hand because the
// xgbutil request helper panics on this library version.
func (c *Connection) FocusWindow(win xproto.Window) error {
	return c.sendRootMessage(win, "_NET_ACTIVE_WINDOW", []uint32{sourcePager, 0, 0, 0, 0})
}

// Move places the window's top-left corner at x,y.
func (c *Connection) Move(win xproto.Window, x, y int) error {
	c.unmaximize(win)
	if err := ewmh.MoveWindow(c.XUtil, win, x, y); err != nil {
		xwindow.New(c.XUtil, win).Move(x, y)
	}
	return nil
}

// Resize sets the window's size.
func (c *Connection) Resize(win xproto.Window, width, height int) error {
	c.unmaximize(win)
	if err := ewmh.ResizeWindow(c.XUtil, win, width, height); err != nil {
		xwindow.New(c.XUtil, win).Resize(width, height)
	}
	return nil
}

const sourcePager = 2

func (c *Connection) sendRootMessage(win xproto.Window, atomName string, data []uint32) error {
	atom, err := xproto.InternAtom(c.XUtil.Conn(), false, uint16(len(atomName)), atomName).Reply()
	if err != nil {
		return fmt.Errorf("failed to intern %s: %w", atomName, err)
	}

	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   atom.Atom,
		Data:   xproto.ClientMessageDataUnionData32New(data),
	}
	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}

// unmaximize drops the maximized states so the window manager honours the
// requested geometry. Failures are ignored.
func (c *Connection) unmaximize(win xproto.Window) {
	states, err := ewmh.WmStateGet(c.XUtil, win)
	if err != nil {
		return
	}
	for _, s := range states {
		if s == "_NET_WM_STATE_MAXIMIZED_HORZ" || s == "_NET_WM_STATE_MAXIMIZED_VERT" {
			_ = ewmh.WmStateReq(c.XUtil, win, ewmh.StateRemove, s)
		}
	}
}
