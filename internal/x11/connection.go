// Package x11 talks to the X server through xgb/xgbutil: EWMH client
// lookups, window activation, geometry and RandR monitors.
package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// Connection holds an X11 connection and the root window.
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window
}

// NewConnection connects to the display named by $DISPLAY.
func NewConnection() (*Connection, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
	}, nil
}

// Close disconnects from the X server.
func (c *Connection) Close() {
	if c == nil || c.XUtil == nil {
		return
	}
	c.XUtil.Conn().Close()
}
