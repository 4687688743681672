package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor is one active RandR output.
type Monitor struct {
	ID     int
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

func (m Monitor) contains(x, y int) bool {
	return x >= m.X && x < m.X+m.Width && y >= m.Y && y < m.Y+m.Height
}

// Monitors lists the enabled CRTCs.
func (c *Connection) Monitors() ([]Monitor, error) {
	conn := c.XUtil.Conn()
	if err := randr.Init(conn); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	res, err := randr.GetScreenResources(conn, c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range res.Crtcs {
		info, err := randr.GetCrtcInfo(conn, crtc, res.ConfigTimestamp).Reply()
		if err != nil || info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if out, err := randr.GetOutputInfo(conn, info.Outputs[0], res.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}

		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   name,
			X:      int(info.X),
			Y:      int(info.Y),
			Width:  int(info.Width),
			Height: int(info.Height),
		})
	}
	return monitors, nil
}

// ActiveMonitor returns the monitor holding the focused window, else the one
// under the pointer, else the first. The result is trimmed to the usable
// area: dock struts when any dock reserves space, the EWMH work area
// otherwise.
func (c *Connection) ActiveMonitor() (Monitor, error) {
	monitors, err := c.Monitors()
	if err != nil {
		return Monitor{}, err
	}
	if len(monitors) == 0 {
		return Monitor{}, fmt.Errorf("no monitors found")
	}

	mon := monitors[0]
	if idx := c.monitorForActiveWindow(monitors); idx >= 0 {
		mon = monitors[idx]
	} else if idx := c.monitorForPointer(monitors); idx >= 0 {
		mon = monitors[idx]
	}

	if !c.applyDockStruts(&mon) {
		c.applyWorkArea(&mon)
	}
	return mon, nil
}

func (c *Connection) monitorForActiveWindow(monitors []Monitor) int {
	win, err := ewmh.ActiveWindowGet(c.XUtil)
	if err != nil || win == 0 {
		return -1
	}
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(win)).Reply()
	if err != nil {
		return -1
	}
	pos, err := xproto.TranslateCoordinates(c.XUtil.Conn(), win, c.Root, 0, 0).Reply()
	if err != nil {
		return -1
	}
	cx := int(pos.DstX) + int(geom.Width)/2
	cy := int(pos.DstY) + int(geom.Height)/2
	for i, m := range monitors {
		if m.contains(cx, cy) {
			return i
		}
	}
	return -1
}

func (c *Connection) monitorForPointer(monitors []Monitor) int {
	ptr, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return -1
	}
	for i, m := range monitors {
		if m.contains(int(ptr.RootX), int(ptr.RootY)) {
			return i
		}
	}
	return -1
}

func (c *Connection) applyWorkArea(mon *Monitor) {
	areas, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(areas) == 0 {
		return
	}
	idx := 0
	if d, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(d) < len(areas) {
		idx = int(d)
	}
	wa := areas[idx]
	clipped, ok := intersect(
		box{mon.X, mon.Y, mon.X + mon.Width, mon.Y + mon.Height},
		box{int(wa.X), int(wa.Y), int(wa.X) + int(wa.Width), int(wa.Y) + int(wa.Height)},
	)
	if !ok {
		return
	}
	mon.X, mon.Y = clipped.x1, clipped.y1
	mon.Width, mon.Height = clipped.width(), clipped.height()
}

// box is a half-open rectangle [x1,x2) x [y1,y2).
type box struct {
	x1, y1, x2, y2 int
}

func (b box) width() int  { return b.x2 - b.x1 }
func (b box) height() int { return b.y2 - b.y1 }

func intersect(a, b box) (box, bool) {
	out := box{
		x1: maxInt(a.x1, b.x1),
		y1: maxInt(a.y1, b.y1),
		x2: minInt(a.x2, b.x2),
		y2: minInt(a.y2, b.y2),
	}
	if out.x2 <= out.x1 || out.y2 <= out.y1 {
		return box{}, false
	}
	return out, true
}

// struts accumulates the space docks reserve on each monitor edge.
type struts struct {
	left, right, top, bottom int
}

func (c *Connection) applyDockStruts(mon *Monitor) bool {
	root, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return false
	}
	rootW, rootH := int(root.Width), int(root.Height)

	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return false
	}

	var acc struts
	for _, win := range clients {
		if !c.isDock(win) {
			continue
		}
		sp, err := ewmh.WmStrutPartialGet(c.XUtil, win)
		if err != nil {
			// Some docks only set _NET_WM_STRUT.
			s, err := ewmh.WmStrutGet(c.XUtil, win)
			if err != nil {
				continue
			}
			sp = &ewmh.WmStrutPartial{
				Left: s.Left, Right: s.Right, Top: s.Top, Bottom: s.Bottom,
				LeftEndY: uint(rootH - 1), RightEndY: uint(rootH - 1),
				TopEndX: uint(rootW - 1), BottomEndX: uint(rootW - 1),
			}
		}
		acc.add(*mon, rootW, rootH, sp)
	}

	if acc == (struts{}) {
		return false
	}

	mon.X += acc.left
	mon.Y += acc.top
	mon.Width = maxInt(1, mon.Width-acc.left-acc.right)
	mon.Height = maxInt(1, mon.Height-acc.top-acc.bottom)
	return true
}

func (c *Connection) isDock(win xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, win)
	if err != nil {
		return false
	}
	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_DOCK" {
			return true
		}
	}
	return false
}

func (acc *struts) add(mon Monitor, rootW, rootH int, sp *ewmh.WmStrutPartial) {
	m := box{mon.X, mon.Y, mon.X + mon.Width, mon.Y + mon.Height}

	if sp.Top > 0 {
		if b, ok := intersect(m, box{int(sp.TopStartX), 0, int(sp.TopEndX) + 1, int(sp.Top)}); ok {
			acc.top = maxInt(acc.top, b.height())
		}
	}
	if sp.Bottom > 0 {
		if b, ok := intersect(m, box{int(sp.BottomStartX), rootH - int(sp.Bottom), int(sp.BottomEndX) + 1, rootH}); ok {
			acc.bottom = maxInt(acc.bottom, b.height())
		}
	}
	if sp.Left > 0 {
		if b, ok := intersect(m, box{0, int(sp.LeftStartY), int(sp.Left), int(sp.LeftEndY) + 1}); ok {
			acc.left = maxInt(acc.left, b.width())
		}
	}
	if sp.Right > 0 {
		if b, ok := intersect(m, box{rootW - int(sp.Right), int(sp.RightStartY), rootW, int(sp.RightEndY) + 1}); ok {
			acc.right = maxInt(acc.right, b.width())
		}
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
