// Package proc looks up processes by name in the live process table.
package proc

import (
	"context"
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

// Entry is one row of the process table.
type Entry struct {
	PID  int32
	Name string
}

// Handle identifies a running process that matched a lookup.
type Handle struct {
	PID  int32
	Name string
}

// Lister snapshots the process table.
type Lister interface {
	List(ctx context.Context) ([]Entry, error)
	Alive(ctx context.Context, pid int32) bool
}

// Table is the gopsutil-backed Lister.
type Table struct{}

var _ Lister = Table{}

// List returns every process whose name could be read. Processes that exit
// or deny access while the table is being walked are skipped.
func (Table) List(ctx context.Context) ([]Entry, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}

	entries := make([]Entry, 0, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil || name == "" {
			continue
		}
		entries = append(entries, Entry{PID: p.Pid, Name: name})
	}
	return entries, nil
}

// Alive reports whether pid is still present and not a zombie.
func (Table) Alive(ctx context.Context, pid int32) bool {
	if pid <= 0 {
		return false
	}
	ok, err := process.PidExistsWithContext(ctx, pid)
	if err != nil || !ok {
		return false
	}
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return false
	}
	status, err := p.StatusWithContext(ctx)
	if err != nil {
		return true
	}
	for _, s := range status {
		if s == process.Zombie {
			return false
		}
	}
	return true
}

// Finder answers name queries against a Lister.
type Finder struct {
	lister Lister
}

// NewFinder returns a Finder over l, or over the live table when l is nil.
func NewFinder(l Lister) *Finder {
	if l == nil {
		l = Table{}
	}
	return &Finder{lister: l}
}

// FindByName returns the first process whose name equals name,
// ignoring case.
func (f *Finder) FindByName(ctx context.Context, name string) (Handle, bool, error) {
	entries, err := f.lister.List(ctx)
	if err != nil {
		return Handle{}, false, err
	}
	h, ok := MatchExact(entries, name)
	return h, ok, nil
}

// AnyContaining reports whether any process name contains name, ignoring
// case.
func (f *Finder) AnyContaining(ctx context.Context, name string) (bool, error) {
	entries, err := f.lister.List(ctx)
	if err != nil {
		return false, err
	}
	return MatchSubstring(entries, name), nil
}

// Alive reports whether pid is still running.
func (f *Finder) Alive(ctx context.Context, pid int32) bool {
	return f.lister.Alive(ctx, pid)
}

// MatchExact returns the first entry whose name equals name, ignoring case.
func MatchExact(entries []Entry, name string) (Handle, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Handle{}, false
	}
	for _, e := range entries {
		if strings.EqualFold(e.Name, name) {
			return Handle{PID: e.PID, Name: e.Name}, true
		}
	}
	return Handle{}, false
}

// MatchSubstring reports whether any entry's name contains name, ignoring
// case.
func MatchSubstring(entries []Entry, name string) bool {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return false
	}
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Name), needle) {
			return true
		}
	}
	return false
}
