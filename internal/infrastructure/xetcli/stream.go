package xetcli

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"xetproxy/internal/domain/repository/xet"
	"xetproxy/pkg/logger"
)

// LineSink receives every diagnostic line the xet tool writes while
// fetching hash.
type LineSink func(hash, line string)

func logLine(hash, line string) {
	logger.Info("xet stderr", "hash", hash, "line", line)
}

// Stream is the payload of one fetch invocation. Reads are served straight
// from the child's stdout pipe, so a slow reader back-pressures the child.
//
// Once stdout reaches EOF the child is reaped; a non-zero exit turns the
// EOF into a *xet.ToolError so callers can tell a truncated payload from a
// complete one.
type Stream struct {
	hash    string
	proc    Process
	drained chan struct{}

	// end is returned by every Read once stdout reached EOF.
	end error

	waitOnce sync.Once
	waitErr  error
}

func newStream(hash string, proc Process, sink LineSink) *Stream {
	s := &Stream{
		hash:    hash,
		proc:    proc,
		drained: make(chan struct{}),
	}

	go drainDiagnostics(proc.Stderr(), hash, sink, s.drained)

	return s
}

func (s *Stream) Read(p []byte) (int, error) {
	if s.end != nil {
		return 0, s.end
	}

	n, err := s.proc.Stdout().Read(p)
	if err == io.EOF {
		s.end = io.EOF
		if waitErr := s.reap(); waitErr != nil {
			s.end = waitErr
		}

		return n, s.end
	}

	return n, err
}

// Close kills the child if it is still running, reaps it and waits for the
// diagnostic drain to finish.
func (s *Stream) Close() error {
	s.waitOnce.Do(func() {
		if err := s.proc.Kill(); err != nil {
			logger.Warn("failed to kill xet tool", "hash", s.hash, "err", err)
		}

		s.waitErr = s.wait()
		<-s.drained
	})

	return nil
}

// reap waits for the child once stdout is exhausted. The drain finishes
// first so the tail of stderr is not lost when Wait closes the pipes.
func (s *Stream) reap() error {
	s.waitOnce.Do(func() {
		<-s.drained
		s.waitErr = s.wait()
	})

	return s.waitErr
}

func (s *Stream) wait() error {
	code, err := s.proc.Wait()
	if err != nil {
		return fmt.Errorf("waiting for xet tool: %w", err)
	}

	if code != 0 {
		return &xet.ToolError{ExitCode: code}
	}

	return nil
}

// drainDiagnostics forwards stderr to sink until the pipe closes. Anything
// that cannot be split into lines is discarded, but always read, so the
// child never blocks on a full stderr pipe.
func drainDiagnostics(r io.Reader, hash string, sink LineSink, done chan<- struct{}) {
	defer close(done)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	scanner.Split(scanDiagnosticLines)

	for scanner.Scan() {
		sink(hash, scanner.Text())
	}

	if err := scanner.Err(); err != nil && !errors.Is(err, os.ErrClosed) {
		logger.Warn("xet stderr unreadable, discarding the rest", "hash", hash, "err", err)

		_, _ = io.Copy(io.Discard, r)
	}
}

// scanDiagnosticLines splits on '\n' and on the bare '\r' that progress
// bars use, dropping empty lines.
func scanDiagnosticLines(data []byte, atEOF bool) (int, []byte, error) {
	start := 0
	for start < len(data) && (data[start] == '\n' || data[start] == '\r') {
		start++
	}

	if i := bytes.IndexAny(data[start:], "\r\n"); i >= 0 {
		return start + i + 1, data[start : start+i], nil
	}

	if atEOF && start < len(data) {
		return len(data), data[start:], nil
	}

	return start, nil, nil
}
