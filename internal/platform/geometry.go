package platform

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/1broseidon/runeditor/internal/config"
)

// ErrGeometryUnparseable is returned by ParseGeometry for strings that do
// not look like WIDTHxHEIGHT+LEFT+TOP.
var ErrGeometryUnparseable = errors.New("unparseable screen geometry")

// Geometry is a screen size and origin.
type Geometry struct {
	Width  int
	Height int
	Left   int
	Top    int
}

func (g Geometry) String() string {
	return fmt.Sprintf("%dx%d%+d%+d", g.Width, g.Height, g.Left, g.Top)
}

// Rect returns the geometry as a rectangle.
func (g Geometry) Rect() Rect {
	return Rect{X: g.Left, Y: g.Top, Width: g.Width, Height: g.Height}
}

// Offsets are optional; "1920x1080" is read as "1920x1080+0+0".
var geometryPattern = regexp.MustCompile(`^(\d+)x(\d+)(?:([+-]\d+)([+-]\d+))?$`)

// ParseGeometry parses WIDTHxHEIGHT+LEFT+TOP.
func ParseGeometry(s string) (Geometry, error) {
	m := geometryPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Geometry{}, fmt.Errorf("%w: %q", ErrGeometryUnparseable, s)
	}

	var g Geometry
	var err error
	if g.Width, err = strconv.Atoi(m[1]); err != nil {
		return Geometry{}, fmt.Errorf("%w: %q", ErrGeometryUnparseable, s)
	}
	if g.Height, err = strconv.Atoi(m[2]); err != nil {
		return Geometry{}, fmt.Errorf("%w: %q", ErrGeometryUnparseable, s)
	}
	if m[3] != "" {
		if g.Left, err = strconv.Atoi(m[3]); err != nil {
			return Geometry{}, fmt.Errorf("%w: %q", ErrGeometryUnparseable, s)
		}
		if g.Top, err = strconv.Atoi(m[4]); err != nil {
			return Geometry{}, fmt.Errorf("%w: %q", ErrGeometryUnparseable, s)
		}
	}
	if g.Width <= 0 || g.Height <= 0 {
		return Geometry{}, fmt.Errorf("%w: %q", ErrGeometryUnparseable, s)
	}
	return g, nil
}

// ApplyRegion maps a tile region onto a screen rectangle.
func ApplyRegion(screen Rect, region config.TileRegion) Rect {
	out := screen

	switch region.Type {
	case config.RegionLeftHalf:
		out.Width = screen.Width / 2
	case config.RegionRightHalf:
		out.X = screen.X + screen.Width/2
		out.Width = screen.Width / 2
	case config.RegionTopHalf:
		out.Height = screen.Height / 2
	case config.RegionBottomHalf:
		out.Y = screen.Y + screen.Height/2
		out.Height = screen.Height / 2
	case config.RegionCustom:
		out.X = screen.X + screen.Width*region.XPercent/100
		out.Y = screen.Y + screen.Height*region.YPercent/100
		out.Width = screen.Width * region.WidthPercent / 100
		out.Height = screen.Height * region.HeightPercent / 100
	}

	if out.Width < 1 {
		out.Width = 1
	}
	if out.Height < 1 {
		out.Height = 1
	}
	return out
}
