// Package xetclitest provides an in-memory xetcli.Spawner that plays back
// scripted tool invocations without starting processes.
package xetclitest

import (
	"context"
	"io"
	"sync"

	"xetproxy/internal/infrastructure/xetcli"
)

// Script describes what one fake invocation writes and how it exits.
type Script struct {
	Stdout []byte
	Stderr []byte
	// StderrFirst writes all of Stderr before the first Stdout byte. The
	// pipes are unbuffered, so the payload only flows once stderr is read.
	StderrFirst bool
	ExitCode    int
	// Hold keeps the process alive after Stdout is written until it is
	// closed or the process is killed.
	Hold     <-chan struct{}
	SpawnErr error
}

type Call struct {
	Bin  string
	Args []string
	Env  []string
}

type Spawner struct {
	script func(args []string) Script

	mu    sync.Mutex
	calls []Call
	procs []*Process
}

var _ xetcli.Spawner = (*Spawner)(nil)

// NewSpawner returns a Spawner that asks script what every invocation does.
func NewSpawner(script func(args []string) Script) *Spawner {
	return &Spawner{script: script}
}

func (s *Spawner) Spawn(ctx context.Context, bin string, args, env []string) (xetcli.Process, error) {
	s.mu.Lock()
	s.calls = append(s.calls, Call{Bin: bin, Args: args, Env: env})
	s.mu.Unlock()

	sc := s.script(args)
	if sc.SpawnErr != nil {
		return nil, sc.SpawnErr
	}

	p := newProcess()

	s.mu.Lock()
	s.procs = append(s.procs, p)
	s.mu.Unlock()

	go p.run(sc)
	go func() {
		select {
		case <-ctx.Done():
			_ = p.Kill()
		case <-p.done:
		}
	}()

	return p, nil
}

func (s *Spawner) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Call(nil), s.calls...)
}

func (s *Spawner) Processes() []*Process {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]*Process(nil), s.procs...)
}

type Process struct {
	stdoutR, stderrR *io.PipeReader
	stdoutW, stderrW *io.PipeWriter

	done     chan struct{}
	killed   chan struct{}
	killOnce sync.Once
	exitCode int
}

func newProcess() *Process {
	p := &Process{
		done:   make(chan struct{}),
		killed: make(chan struct{}),
	}
	p.stdoutR, p.stdoutW = io.Pipe()
	p.stderrR, p.stderrW = io.Pipe()

	return p
}

func (p *Process) run(sc Script) {
	defer close(p.done)

	if sc.StderrFirst {
		write(p.stderrW, sc.Stderr)
		write(p.stdoutW, sc.Stdout)
	} else {
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			write(p.stderrW, sc.Stderr)
		}()
		write(p.stdoutW, sc.Stdout)
		wg.Wait()
	}

	if sc.Hold != nil {
		select {
		case <-sc.Hold:
		case <-p.killed:
		}
	}

	_ = p.stdoutW.Close()
	_ = p.stderrW.Close()

	if p.Killed() {
		p.exitCode = -1
	} else {
		p.exitCode = sc.ExitCode
	}
}

// write blocks until the reader has consumed data or the pipe is closed.
func write(w *io.PipeWriter, data []byte) {
	if len(data) > 0 {
		_, _ = w.Write(data)
	}
}

func (p *Process) Stdout() io.ReadCloser { return p.stdoutR }
func (p *Process) Stderr() io.ReadCloser { return p.stderrR }

func (p *Process) Wait() (int, error) {
	<-p.done

	return p.exitCode, nil
}

func (p *Process) Kill() error {
	p.killOnce.Do(func() {
		close(p.killed)
		_ = p.stdoutW.Close()
		_ = p.stderrW.Close()
	})

	return nil
}

func (p *Process) Killed() bool {
	select {
	case <-p.killed:
		return true
	default:
		return false
	}
}

// Exited reports whether the process has finished, normally or not.
func (p *Process) Exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}
