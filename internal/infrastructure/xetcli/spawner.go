package xetcli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync/atomic"
	"time"
)

// Process is a running xet tool invocation. Stdout carries the payload and
// Stderr the diagnostics; both must be consumed before Wait.
type Process interface {
	Stdout() io.ReadCloser
	Stderr() io.ReadCloser
	// Wait blocks until the process exits and returns its exit code. A
	// process killed by a signal reports -1.
	Wait() (int, error)
	Kill() error
}

// Spawner starts processes. env entries are added to the inherited
// environment.
type Spawner interface {
	Spawn(ctx context.Context, bin string, args, env []string) (Process, error)
}

// ExecSpawner starts real OS processes. Each child runs in its own process
// group and the whole group is killed when ctx is done.
type ExecSpawner struct {
	// WaitDelay bounds how long Wait keeps the pipes open after the child
	// was killed.
	WaitDelay time.Duration
}

func (s ExecSpawner) Spawn(ctx context.Context, bin string, args, env []string) (Process, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Env = append(os.Environ(), env...)
	cmd.WaitDelay = s.WaitDelay
	setProcessGroup(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("capturing stdout: %w", err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("capturing stderr: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", bin, err)
	}

	return &execProcess{cmd: cmd, stdout: stdout, stderr: stderr}, nil
}

type execProcess struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr io.ReadCloser
	waited atomic.Bool
}

func (p *execProcess) Stdout() io.ReadCloser { return p.stdout }
func (p *execProcess) Stderr() io.ReadCloser { return p.stderr }

func (p *execProcess) Wait() (int, error) {
	err := p.cmd.Wait()
	p.waited.Store(true)

	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}

	return -1, err
}

// Kill is a no-op once the process has been reaped, so a recycled process
// group id is never signalled.
func (p *execProcess) Kill() error {
	if p.waited.Load() {
		return nil
	}

	return killProcessGroup(p.cmd)
}
