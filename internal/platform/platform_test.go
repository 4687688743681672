package platform

import (
	"context"
	"errors"
	"os/exec"
	"reflect"
	"strings"
	"testing"

	"github.com/1broseidon/runeditor/internal/config"
)

func TestParseGeometry(t *testing.T) {
	tests := []struct {
		in      string
		want    Geometry
		wantErr bool
	}{
		{"1920x1080+0+0", Geometry{Width: 1920, Height: 1080}, false},
		{"2560x1440+1920+0", Geometry{Width: 2560, Height: 1440, Left: 1920}, false},
		{"800x600-10+20", Geometry{Width: 800, Height: 600, Left: -10, Top: 20}, false},
		{" 1024x768 ", Geometry{Width: 1024, Height: 768}, false},
		{"bogus", Geometry{}, true},
		{"", Geometry{}, true},
		{"0x1080+0+0", Geometry{}, true},
		{"1920x+0+0", Geometry{}, true},
		{"1920x1080+99999999999999999999+0", Geometry{}, true},
		{"1920x1080+0-99999999999999999999", Geometry{}, true},
	}
	for _, tt := range tests {
		got, err := ParseGeometry(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseGeometry(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrGeometryUnparseable) {
			t.Fatalf("ParseGeometry(%q) error %v does not wrap ErrGeometryUnparseable", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseGeometry(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestGeometryString(t *testing.T) {
	g := Geometry{Width: 1920, Height: 1080}
	if g.String() != "1920x1080+0+0" {
		t.Fatalf("String() = %q", g.String())
	}
	g = Geometry{Width: 10, Height: 20, Left: -5, Top: 7}
	if g.String() != "10x20-5+7" {
		t.Fatalf("String() = %q", g.String())
	}
}

func TestApplyRegion(t *testing.T) {
	screen := Rect{X: 0, Y: 0, Width: 1920, Height: 1080}
	tests := []struct {
		region config.TileRegion
		want   Rect
	}{
		{config.TileRegion{Type: config.RegionLeftHalf}, Rect{0, 0, 960, 1080}},
		{config.TileRegion{Type: config.RegionRightHalf}, Rect{960, 0, 960, 1080}},
		{config.TileRegion{Type: config.RegionTopHalf}, Rect{0, 0, 1920, 540}},
		{config.TileRegion{Type: config.RegionBottomHalf}, Rect{0, 540, 1920, 540}},
		{config.TileRegion{Type: config.RegionFull}, screen},
		{config.TileRegion{Type: config.RegionCustom, XPercent: 10, YPercent: 0, WidthPercent: 50, HeightPercent: 100}, Rect{192, 0, 960, 1080}},
	}
	for _, tt := range tests {
		if got := ApplyRegion(screen, tt.region); got != tt.want {
			t.Fatalf("ApplyRegion(%s) = %+v, want %+v", tt.region.Type, got, tt.want)
		}
	}
}

func TestApplyRegion_CustomClampsToMinimumSize(t *testing.T) {
	got := ApplyRegion(Rect{Width: 10, Height: 10}, config.TileRegion{
		Type:          config.RegionCustom,
		WidthPercent:  1,
		HeightPercent: 1,
	})
	if got.Width != 1 || got.Height != 1 {
		t.Fatalf("expected 1x1, got %dx%d", got.Width, got.Height)
	}
}

func TestApplyRegion_OffsetScreen(t *testing.T) {
	got := ApplyRegion(Rect{X: 1920, Y: 30, Width: 1000, Height: 500}, config.TileRegion{Type: config.RegionRightHalf})
	if got != (Rect{X: 2420, Y: 30, Width: 500, Height: 500}) {
		t.Fatalf("got %+v", got)
	}
}

func TestParseWindowList(t *testing.T) {
	tests := []struct {
		in   string
		want []WindowID
	}{
		{"", nil},
		{"\n", nil},
		{"41943047\n", []WindowID{41943047}},
		{"41943047\n41943053\n", []WindowID{41943047, 41943053}},
		{"12 junk 34", []WindowID{12, 34}},
	}
	for _, tt := range tests {
		got := ParseWindowList(tt.in)
		if len(got) == 0 && len(tt.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("ParseWindowList(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPick(t *testing.T) {
	ws := []WindowID{1, 2, 3}
	if got := Pick(ws, config.PickLast); got != 3 {
		t.Fatalf("last = %v", got)
	}
	if got := Pick(ws, config.PickFirst); got != 1 {
		t.Fatalf("first = %v", got)
	}
	if got := Pick(nil, config.PickLast); got.Valid() {
		t.Fatalf("empty list should give empty handle, got %v", got)
	}
}

type call struct {
	name string
	args []string
}

type fakeRunner struct {
	calls   []call
	outputs map[string]string
	errs    map[string]error
}

func (f *fakeRunner) Output(_ context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, call{name: name, args: append([]string(nil), args...)})
	key := ""
	if len(args) > 0 {
		key = args[0]
	}
	return []byte(f.outputs[key]), f.errs[key]
}

func foundAt(path string) func(string) (string, error) {
	return func(string) (string, error) { return path, nil }
}

func notFound(string) (string, error) {
	return "", exec.ErrNotFound
}

func TestNewXdotoolBackend_MissingTool(t *testing.T) {
	_, err := NewXdotoolBackend(&fakeRunner{}, notFound)
	if !errors.Is(err, ErrToolNotAvailable) {
		t.Fatalf("expected ErrToolNotAvailable, got %v", err)
	}
	if !strings.Contains(err.Error(), "xdotool") {
		t.Fatalf("error should name the tool: %v", err)
	}
}

func TestXdotoolBackend_Commands(t *testing.T) {
	r := &fakeRunner{outputs: map[string]string{
		"search":             "100\n200\n",
		"getdisplaygeometry": "1920 1080\n",
	}}
	b, err := NewXdotoolBackend(r, foundAt("/usr/bin/xdotool"))
	if err != nil {
		t.Fatalf("NewXdotoolBackend() error: %v", err)
	}
	ctx := context.Background()

	ids, err := b.WindowsForPID(ctx, 4242)
	if err != nil || !reflect.DeepEqual(ids, []WindowID{100, 200}) {
		t.Fatalf("WindowsForPID = %v, %v", ids, err)
	}
	geom, err := b.ScreenGeometry(ctx)
	if err != nil || geom != "1920x1080+0+0" {
		t.Fatalf("ScreenGeometry = %q, %v", geom, err)
	}
	if err := b.Activate(ctx, 200); err != nil {
		t.Fatalf("Activate() error: %v", err)
	}
	if err := b.Move(ctx, 200, 0, 0); err != nil {
		t.Fatalf("Move() error: %v", err)
	}
	if err := b.Resize(ctx, 200, 960, 1080); err != nil {
		t.Fatalf("Resize() error: %v", err)
	}

	want := []call{
		{"/usr/bin/xdotool", []string{"search", "--pid", "4242"}},
		{"/usr/bin/xdotool", []string{"getdisplaygeometry"}},
		{"/usr/bin/xdotool", []string{"windowactivate", "200"}},
		{"/usr/bin/xdotool", []string{"windowmove", "200", "0", "0"}},
		{"/usr/bin/xdotool", []string{"windowsize", "200", "960", "1080"}},
	}
	if !reflect.DeepEqual(r.calls, want) {
		t.Fatalf("calls = %+v\nwant %+v", r.calls, want)
	}
}

func TestXdotoolBackend_SearchNoMatchIsEmpty(t *testing.T) {
	r := &fakeRunner{errs: map[string]error{"search": &exec.ExitError{}}}
	b, err := NewXdotoolBackend(r, foundAt("xdotool"))
	if err != nil {
		t.Fatalf("NewXdotoolBackend() error: %v", err)
	}
	ids, err := b.WindowsForPID(context.Background(), 1)
	if err != nil {
		t.Fatalf("expected no error for empty search, got %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected no windows, got %v", ids)
	}
}

func TestXdotoolBackend_OddGeometryPassesThrough(t *testing.T) {
	r := &fakeRunner{outputs: map[string]string{"getdisplaygeometry": "bogus\n"}}
	b, _ := NewXdotoolBackend(r, foundAt("xdotool"))
	geom, err := b.ScreenGeometry(context.Background())
	if err != nil {
		t.Fatalf("ScreenGeometry() error: %v", err)
	}
	if _, err := ParseGeometry(geom); err == nil {
		t.Fatalf("expected %q to be rejected by ParseGeometry", geom)
	}
}

type fakeMonitor struct {
	geom   Geometry
	err    error
	closed bool
}

func (m *fakeMonitor) ActiveMonitor(context.Context) (Geometry, error) { return m.geom, m.err }

func (m *fakeMonitor) Close() error {
	m.closed = true
	return nil
}

func TestXdotoolBackend_DualMonitorUsesActiveMonitor(t *testing.T) {
	r := &fakeRunner{outputs: map[string]string{"getdisplaygeometry": "3840 1080\n"}}
	b, err := NewXdotoolBackend(r, foundAt("xdotool"))
	if err != nil {
		t.Fatalf("NewXdotoolBackend() error: %v", err)
	}
	mon := &fakeMonitor{geom: Geometry{Width: 1920, Height: 1080, Left: 1920}}
	b.WithMonitor(mon)

	raw, err := b.ScreenGeometry(context.Background())
	if err != nil || raw != "1920x1080+1920+0" {
		t.Fatalf("ScreenGeometry = %q, %v", raw, err)
	}
	if len(r.calls) != 0 {
		t.Fatalf("xdotool should not be asked for the root size: %+v", r.calls)
	}

	g, _ := ParseGeometry(raw)
	got := ApplyRegion(g.Rect(), config.TileRegion{Type: config.RegionLeftHalf})
	if got != (Rect{X: 1920, Y: 0, Width: 960, Height: 1080}) {
		t.Fatalf("left half of second monitor = %+v", got)
	}

	if err := b.Close(); err != nil || !mon.closed {
		t.Fatalf("Close() = %v, monitor closed = %v", err, mon.closed)
	}
}

func TestXdotoolBackend_MonitorErrorFallsBackToRoot(t *testing.T) {
	r := &fakeRunner{outputs: map[string]string{"getdisplaygeometry": "3840 1080\n"}}
	b, _ := NewXdotoolBackend(r, foundAt("xdotool"))
	b.WithMonitor(&fakeMonitor{err: errors.New("randr unavailable")})

	raw, err := b.ScreenGeometry(context.Background())
	if err != nil || raw != "3840x1080+0+0" {
		t.Fatalf("ScreenGeometry = %q, %v", raw, err)
	}
}

func TestSelector_AttachesMonitorToXdotool(t *testing.T) {
	mon := &fakeMonitor{geom: Geometry{Width: 1280, Height: 1024}}
	s := Selector{
		Runner:      &fakeRunner{},
		LookPath:    foundAt("xdotool"),
		DialMonitor: func() (MonitorQuery, error) { return mon, nil },
	}
	b, err := s.Open(config.BackendXdotool)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	raw, err := b.ScreenGeometry(context.Background())
	if err != nil || raw != "1280x1024+0+0" {
		t.Fatalf("ScreenGeometry = %q, %v", raw, err)
	}
}

type stubBackend struct{ name string }

func (s stubBackend) Name() string { return s.name }
func (s stubBackend) WindowsForPID(context.Context, int32) ([]WindowID, error) { return nil, nil }
func (s stubBackend) Activate(context.Context, WindowID) error { return nil }
func (s stubBackend) Move(context.Context, WindowID, int, int) error { return nil }
func (s stubBackend) Resize(context.Context, WindowID, int, int) error { return nil }
func (s stubBackend) ScreenGeometry(context.Context) (string, error) { return "", nil }
func (s stubBackend) Close() error { return nil }

func noMonitor() (MonitorQuery, error) { return nil, errors.New("no display") }

func TestSelector_Open(t *testing.T) {
	dialOK := func() (Backend, error) { return stubBackend{name: "x11"}, nil }
	dialFail := func() (Backend, error) { return nil, errors.New("no display") }

	tests := []struct {
		name     string
		kind     config.BackendKind
		lookPath func(string) (string, error)
		dial     func() (Backend, error)
		want     string
		wantTool bool
	}{
		{"auto prefers xdotool", config.BackendAuto, foundAt("xdotool"), dialOK, "xdotool", false},
		{"auto falls back to x11", config.BackendAuto, notFound, dialOK, "x11", false},
		{"auto with nothing", config.BackendAuto, notFound, dialFail, "", true},
		{"explicit xdotool missing", config.BackendXdotool, notFound, dialOK, "", true},
		{"explicit x11", config.BackendX11, foundAt("xdotool"), dialOK, "x11", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Selector{Runner: &fakeRunner{}, LookPath: tt.lookPath, DialX11: tt.dial, DialMonitor: noMonitor}
			b, err := s.Open(tt.kind)
			if tt.wantTool {
				if !errors.Is(err, ErrToolNotAvailable) {
					t.Fatalf("expected ErrToolNotAvailable, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open() error: %v", err)
			}
			if b.Name() != tt.want {
				t.Fatalf("backend = %s, want %s", b.Name(), tt.want)
			}
		})
	}
}

func TestSelector_UnknownKind(t *testing.T) {
	if _, err := (Selector{}).Open("wayland"); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
