package xet

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Lister runs the xet tool in listing mode and returns its complete output.
type Lister interface {
	List(ctx context.Context, repoID string) ([]byte, error)
}

// Fetcher runs the xet tool in fetch mode. The returned reader yields the
// payload as the tool produces it; closing it terminates the tool.
type Fetcher interface {
	Fetch(ctx context.Context, hash string) (io.ReadCloser, error)
}

// ToolError reports that the xet tool exited with a non-zero status.
type ToolError struct {
	ExitCode int
	Stderr   string
}

func (e *ToolError) Error() string {
	if msg := strings.TrimSpace(e.Stderr); msg != "" {
		return msg
	}

	return fmt.Sprintf("xet tool exited with status %d", e.ExitCode)
}
