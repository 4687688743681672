package launcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/runeditor/internal/config"
	"github.com/1broseidon/runeditor/internal/platform"
	"github.com/1broseidon/runeditor/internal/proc"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recorder) count(prefix string) int {
	n := 0
	for _, e := range r.list() {
		if strings.HasPrefix(e, prefix) {
			n++
		}
	}
	return n
}

func (r *recorder) index(prefix string) int {
	for i, e := range r.list() {
		if strings.HasPrefix(e, prefix) {
			return i
		}
	}
	return -1
}

func (r *recorder) lastIndex(prefix string) int {
	idx := -1
	for i, e := range r.list() {
		if strings.HasPrefix(e, prefix) {
			idx = i
		}
	}
	return idx
}

type fakeFinder struct {
	mu      sync.Mutex
	similar bool
	handle  proc.Handle
	found   bool
	alive   bool
	lookups int
}

func (f *fakeFinder) FindByName(context.Context, string) (proc.Handle, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	return f.handle, f.found, nil
}

func (f *fakeFinder) AnyContaining(context.Context, string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.similar || f.found, nil
}

func (f *fakeFinder) Alive(context.Context, int32) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.alive
}

func (f *fakeFinder) start(pid int32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handle = proc.Handle{PID: pid, Name: "emacs"}
	f.found = true
	f.alive = true
}

type fakeBackend struct {
	rec      *recorder
	mu       sync.Mutex
	windows  map[int32][]platform.WindowID
	geometry string
}

func (b *fakeBackend) Name() string { return "fake" }
func (b *fakeBackend) Close() error { return nil }

func (b *fakeBackend) WindowsForPID(_ context.Context, pid int32) ([]platform.WindowID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.windows[pid], nil
}

func (b *fakeBackend) Activate(_ context.Context, id platform.WindowID) error {
	b.rec.add("activate %s", id)
	return nil
}

func (b *fakeBackend) Move(_ context.Context, id platform.WindowID, x, y int) error {
	b.rec.add("move %s %d %d", id, x, y)
	return nil
}

func (b *fakeBackend) Resize(_ context.Context, id platform.WindowID, w, h int) error {
	b.rec.add("resize %s %d %d", id, w, h)
	return nil
}

func (b *fakeBackend) ScreenGeometry(context.Context) (string, error) {
	return b.geometry, nil
}

func (b *fakeBackend) setWindows(pid int32, ids ...platform.WindowID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.windows == nil {
		b.windows = map[int32][]platform.WindowID{}
	}
	b.windows[pid] = ids
}

type fakeSpawner struct {
	rec     *recorder
	next    int
	err     error
	onSpawn func(argv []string, pid int)
}

func (s *fakeSpawner) Spawn(_ context.Context, argv []string) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.next++
	pid := 1000 + s.next
	s.rec.add("spawn %s", strings.Join(argv, " "))
	if s.onSpawn != nil {
		s.onSpawn(argv, pid)
	}
	return pid, nil
}

// fakeProbe fails the first failures calls.
type fakeProbe struct {
	rec      *recorder
	failures int
	calls    int
}

func (p *fakeProbe) Output(_ context.Context, name string, args ...string) ([]byte, error) {
	p.calls++
	p.rec.add("probe %s", name)
	if p.failures < 0 || p.calls <= p.failures {
		return nil, errors.New("server not up")
	}
	return []byte("t\n"), nil
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Relocate.Enabled = false
	cfg.Readiness.Timeout = 200 * time.Millisecond
	cfg.Readiness.Interval = time.Millisecond
	return cfg
}

type harness struct {
	rec     *recorder
	finder  *fakeFinder
	backend *fakeBackend
	spawner *fakeSpawner
	probe   *fakeProbe
	ctl     *Controller
}

func newHarness(t *testing.T, cfg *config.Config) *harness {
	t.Helper()
	rec := &recorder{}
	h := &harness{
		rec:     rec,
		finder:  &fakeFinder{},
		backend: &fakeBackend{rec: rec, geometry: "1920x1080+0+0"},
		spawner: &fakeSpawner{rec: rec},
		probe:   &fakeProbe{rec: rec},
	}
	ctl, err := New(cfg, Deps{
		Finder:  h.finder,
		Backend: h.backend,
		Spawner: h.spawner,
		Runner:  h.probe,
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	h.ctl = ctl
	return h
}

func TestRun_RunningNoFilesActivatesExactlyOnce(t *testing.T) {
	h := newHarness(t, testConfig())
	h.finder.start(42)
	h.backend.setWindows(42, 7, 9)

	res, err := h.ctl.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.Plan.Action != ActionActivate {
		t.Fatalf("action = %s", res.Plan.Action)
	}
	if got := h.rec.list(); len(got) != 1 || got[0] != "activate 9" {
		t.Fatalf("events = %v, want [activate 9]", got)
	}
	if h.rec.count("spawn") != 0 {
		t.Fatalf("no spawn expected")
	}
}

func TestRun_PickFirstWindow(t *testing.T) {
	cfg := testConfig()
	cfg.Window.Pick = config.PickFirst
	h := newHarness(t, cfg)
	h.finder.start(42)
	h.backend.setWindows(42, 7, 9)

	if _, err := h.ctl.Run(context.Background(), nil); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if got := h.rec.list(); len(got) != 1 || got[0] != "activate 7" {
		t.Fatalf("events = %v, want [activate 7]", got)
	}
}

func TestRun_RunningNoWindowSkipsActivate(t *testing.T) {
	h := newHarness(t, testConfig())
	h.finder.start(42)

	if _, err := h.ctl.Run(context.Background(), nil); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if got := h.rec.list(); len(got) != 0 {
		t.Fatalf("events = %v, want none", got)
	}
}

func TestRun_RunningWithFilesAttachesInOrder(t *testing.T) {
	h := newHarness(t, testConfig())
	h.finder.start(42)

	if _, err := h.ctl.Run(context.Background(), []string{"b.txt", "a.txt"}); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	want := []string{
		"spawn emacsclient -a emacs -n b.txt",
		"spawn emacsclient -a emacs -n a.txt",
	}
	if got := h.rec.list(); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("events = %v, want %v", got, want)
	}
	if h.probe.calls != 0 {
		t.Fatalf("running session must not wait for readiness")
	}
}

func TestRun_ColdStartOneFileUsesSingleLaunch(t *testing.T) {
	h := newHarness(t, testConfig())

	res, err := h.ctl.Run(context.Background(), []string{"notes.org"})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.Plan.Action != ActionLaunchWithFile {
		t.Fatalf("action = %s", res.Plan.Action)
	}
	if got := h.rec.list(); len(got) != 1 || got[0] != "spawn emacs notes.org" {
		t.Fatalf("events = %v", got)
	}
	if h.probe.calls != 0 {
		t.Fatalf("single-file launch must not wait")
	}
}

func TestRun_ColdStartManyFilesWaitsThenAttaches(t *testing.T) {
	h := newHarness(t, testConfig())
	h.probe.failures = 2

	if _, err := h.ctl.Run(context.Background(), []string{"one", "two"}); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if h.rec.index("spawn emacs") != 0 {
		t.Fatalf("editor must be spawned first: %v", h.rec.list())
	}
	if h.probe.calls != 3 {
		t.Fatalf("probe calls = %d, want 3", h.probe.calls)
	}
	firstAttach := h.rec.index("spawn emacsclient")
	if firstAttach < h.rec.lastIndex("probe") {
		t.Fatalf("attach happened before readiness: %v", h.rec.list())
	}
	events := h.rec.list()
	if events[len(events)-2] != "spawn emacsclient -a emacs -n one" || events[len(events)-1] != "spawn emacsclient -a emacs -n two" {
		t.Fatalf("attach order wrong: %v", events)
	}
}

func TestRun_ReadinessTimeoutStillAttaches(t *testing.T) {
	cfg := testConfig()
	cfg.Readiness.Timeout = 20 * time.Millisecond
	h := newHarness(t, cfg)
	h.probe.failures = -1

	if _, err := h.ctl.Run(context.Background(), []string{"a", "b", "c"}); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if n := h.rec.count("spawn emacsclient"); n != 3 {
		t.Fatalf("attach count = %d, want 3", n)
	}
}

func TestRun_ReadinessViaServerSocket(t *testing.T) {
	cfg := testConfig()
	cfg.Editor.ReadyProbe = nil
	cfg.Editor.ServerSocket = "/run/test/emacs/server"

	rec := &recorder{}
	checks := 0
	ctl, err := New(cfg, Deps{
		Finder:  &fakeFinder{},
		Backend: &fakeBackend{rec: rec},
		Spawner: &fakeSpawner{rec: rec},
		Stat: func(path string) (os.FileInfo, error) {
			checks++
			rec.add("stat %s", path)
			if checks < 3 {
				return nil, os.ErrNotExist
			}
			return nil, nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if _, err := ctl.Run(context.Background(), []string{"a", "b"}); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if checks != 3 {
		t.Fatalf("stat checks = %d, want 3", checks)
	}
	if rec.index("spawn emacsclient") < rec.lastIndex("stat /run/test/emacs/server") {
		t.Fatalf("attach before socket appeared: %v", rec.list())
	}
}

func TestRun_ReadinessViaProcessLiveness(t *testing.T) {
	cfg := testConfig()
	cfg.Editor.ReadyProbe = nil
	h := newHarness(t, cfg)
	h.spawner.onSpawn = func(argv []string, pid int) {
		if argv[0] == "emacs" {
			h.finder.start(int32(pid))
		}
	}

	if _, err := h.ctl.Run(context.Background(), []string{"a", "b"}); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if n := h.rec.count("spawn emacsclient"); n != 2 {
		t.Fatalf("attach count = %d, want 2", n)
	}
}

func TestRun_MissingToolIsReturned(t *testing.T) {
	h := newHarness(t, testConfig())
	h.spawner.err = fmt.Errorf("%w: emacs", platform.ErrToolNotAvailable)

	_, err := h.ctl.Run(context.Background(), nil)
	if !errors.Is(err, platform.ErrToolNotAvailable) {
		t.Fatalf("expected ErrToolNotAvailable, got %v", err)
	}
}

func TestRun_OtherSpawnErrorsAreLogged(t *testing.T) {
	h := newHarness(t, testConfig())
	h.finder.start(42)
	h.spawner.err = errors.New("fork failed")

	if _, err := h.ctl.Run(context.Background(), []string{"a"}); err != nil {
		t.Fatalf("expected best-effort success, got %v", err)
	}
}

func TestRun_RelocatesAfterLaunch(t *testing.T) {
	cfg := testConfig()
	cfg.Relocate.Enabled = true
	h := newHarness(t, cfg)
	h.spawner.onSpawn = func(argv []string, pid int) {
		h.finder.start(int32(pid))
		h.backend.setWindows(int32(pid), 55)
	}

	res, err := h.ctl.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !res.Relocated || res.Window != 55 {
		t.Fatalf("result = %+v", res)
	}
	want := []string{"spawn emacs", "move 55 0 0", "resize 55 960 1080"}
	if got := h.rec.list(); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("events = %v, want %v", got, want)
	}
}

func TestRun_RelocationWindowNeverAppears(t *testing.T) {
	cfg := testConfig()
	cfg.Relocate.Enabled = true
	cfg.Readiness.Timeout = 20 * time.Millisecond
	h := newHarness(t, cfg)

	res, err := h.ctl.Run(context.Background(), []string{"a"})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.Relocated {
		t.Fatalf("should not relocate without a window")
	}
}

func TestRun_CancelledContext(t *testing.T) {
	h := newHarness(t, testConfig())
	h.probe.failures = -1
	cfg := h.ctl.cfg
	cfg.Readiness.Timeout = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	h.spawner.onSpawn = func(argv []string, pid int) { cancel() }

	if _, err := h.ctl.Run(ctx, []string{"a", "b"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if n := h.rec.count("spawn emacsclient"); n != 0 {
		t.Fatalf("no attach expected after cancel, got %d", n)
	}
}

func TestInspect_SubstringRunningWithoutExactMatch(t *testing.T) {
	h := newHarness(t, testConfig())
	h.finder.similar = true

	s, err := h.ctl.Inspect(context.Background())
	if err != nil {
		t.Fatalf("Inspect() error: %v", err)
	}
	if !s.Running || s.Process.PID != 0 || s.Window.Valid() {
		t.Fatalf("session = %+v", s)
	}
}

func TestRun_SubstringMatchSkipsWindowWait(t *testing.T) {
	cfg := testConfig()
	cfg.Relocate.Enabled = true
	cfg.Readiness.Timeout = time.Minute
	h := newHarness(t, cfg)
	h.finder.similar = true

	start := time.Now()
	res, err := h.ctl.Run(context.Background(), []string{"a.txt"})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("Run() waited %v for a window that cannot appear", elapsed)
	}
	if res.Relocated {
		t.Fatalf("should not relocate without an exact process match")
	}
	if h.finder.lookups != 1 {
		t.Fatalf("FindByName called %d times, want 1 (session inspect only)", h.finder.lookups)
	}
	if h.rec.count("spawn emacsclient") != 1 {
		t.Fatalf("file should still be attached: %v", h.rec.list())
	}
}

func TestActivate(t *testing.T) {
	h := newHarness(t, testConfig())
	if _, err := h.ctl.Activate(context.Background()); !errors.Is(err, ErrEditorNotRunning) {
		t.Fatalf("expected ErrEditorNotRunning, got %v", err)
	}

	h.finder.start(42)
	if _, err := h.ctl.Activate(context.Background()); !errors.Is(err, ErrNoWindow) {
		t.Fatalf("expected ErrNoWindow, got %v", err)
	}

	h.backend.setWindows(42, 3)
	if _, err := h.ctl.Activate(context.Background()); err != nil {
		t.Fatalf("Activate() error: %v", err)
	}
	if got := h.rec.list(); len(got) != 1 || got[0] != "activate 3" {
		t.Fatalf("events = %v", got)
	}
}

func TestControllerRelocate(t *testing.T) {
	h := newHarness(t, testConfig())
	h.finder.start(42)
	h.backend.setWindows(42, 3)
	h.backend.geometry = "2560x1440+1920+0"

	_, ok, err := h.ctl.Relocate(context.Background())
	if err != nil || !ok {
		t.Fatalf("Relocate() = %v, %v", ok, err)
	}
	want := []string{"move 3 0 0", "move 3 1920 0", "resize 3 1280 1440"}
	if got := h.rec.list(); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("events = %v, want %v", got, want)
	}
}

func TestNew_RequiresCollaborators(t *testing.T) {
	if _, err := New(nil, Deps{}); err == nil {
		t.Fatalf("expected error for nil config")
	}
	if _, err := New(config.DefaultConfig(), Deps{Backend: &fakeBackend{}}); err == nil {
		t.Fatalf("expected error for missing finder")
	}
	if _, err := New(config.DefaultConfig(), Deps{Finder: &fakeFinder{}}); err == nil {
		t.Fatalf("expected error for missing backend")
	}
}
