package launcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/1broseidon/runeditor/internal/config"
	"github.com/1broseidon/runeditor/internal/logging"
	"github.com/1broseidon/runeditor/internal/platform"
)

// Relocator moves a window into a region of the current screen.
type Relocator struct {
	backend platform.Backend
	region  config.TileRegion
	log     *logging.Logger
}

func NewRelocator(backend platform.Backend, region config.TileRegion, log *logging.Logger) *Relocator {
	if log == nil {
		log = logging.Nop()
	}
	return &Relocator{backend: backend, region: region, log: log}
}

// Relocate parks win at the screen origin, queries the screen geometry,
// then places win on the region and resizes it. It reports false without an
// error when win is empty or the geometry cannot be parsed; in that case the
// window stays parked at the origin.
func (r *Relocator) Relocate(ctx context.Context, win platform.WindowID) (bool, error) {
	if !win.Valid() {
		r.log.Warn("no editor window to relocate")
		return false, nil
	}

	if err := r.backend.Move(ctx, win, 0, 0); err != nil {
		return false, fmt.Errorf("failed to move window %s: %w", win, err)
	}

	raw, err := r.backend.ScreenGeometry(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to query screen geometry: %w", err)
	}
	geom, err := platform.ParseGeometry(raw)
	if err != nil {
		if errors.Is(err, platform.ErrGeometryUnparseable) {
			r.log.Warn("screen geometry not understood; window not resized", "geometry", raw)
			return false, nil
		}
		return false, err
	}

	target := platform.ApplyRegion(geom.Rect(), r.region)
	r.log.Debug("relocating window",
		"window", win.String(),
		"screen", geom.String(),
		"region", string(r.region.Type),
		"x", target.X, "y", target.Y,
		"width", target.Width, "height", target.Height,
	)

	if target.X != 0 || target.Y != 0 {
		if err := r.backend.Move(ctx, win, target.X, target.Y); err != nil {
			return false, fmt.Errorf("failed to move window %s: %w", win, err)
		}
	}
	if err := r.backend.Resize(ctx, win, target.Width, target.Height); err != nil {
		return false, fmt.Errorf("failed to resize window %s: %w", win, err)
	}
	return true, nil
}
