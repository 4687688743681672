package launcher

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/1broseidon/runeditor/internal/platform"
)

// Spawner starts a process without waiting for it and returns its pid.
type Spawner interface {
	Spawn(ctx context.Context, argv []string) (int, error)
}

// ExecSpawner starts detached children: own session, stdio discarded. A
// goroutine reaps each child so no zombie is left behind while runeditor
// is still alive; the child's lifetime is otherwise not tracked.
type ExecSpawner struct {
	LookPath func(string) (string, error)
}

var _ Spawner = ExecSpawner{}

func (s ExecSpawner) Spawn(_ context.Context, argv []string) (int, error) {
	if len(argv) == 0 || argv[0] == "" {
		return 0, fmt.Errorf("empty command")
	}
	lookPath := s.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	path, err := lookPath(argv[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %s", platform.ErrToolNotAvailable, argv[0])
	}

	// Not CommandContext: the child must outlive this invocation.
	cmd := exec.Command(path, argv[1:]...)
	cmd.Args[0] = argv[0]
	detach(cmd)
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to spawn %q: %w", argv[0], err)
	}
	pid := cmd.Process.Pid
	go func() { _ = cmd.Wait() }()
	return pid, nil
}
