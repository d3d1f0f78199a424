package xetcli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"xetproxy/internal/domain/repository/xet"
)

// Client drives the external xet tool. It never interprets payload bytes.
type Client struct {
	cfg     Config
	spawner Spawner
	sink    LineSink
}

func New(cfg Config, spawner Spawner) *Client {
	return &Client{
		cfg:     cfg,
		spawner: spawner,
		sink:    logLine,
	}
}

// WithLineSink replaces the destination of fetch-mode diagnostics.
func (c *Client) WithLineSink(sink LineSink) *Client {
	c.sink = sink

	return c
}

// List runs `tool <repoID>` to completion and returns its stdout. A
// non-zero exit is reported as *xet.ToolError carrying stderr.
func (c *Client) List(ctx context.Context, repoID string) ([]byte, error) {
	proc, err := c.spawner.Spawn(ctx, c.cfg.BinPath, []string{repoID}, c.env())
	if err != nil {
		return nil, fmt.Errorf("failed to execute xet tool: %w", err)
	}

	var stdout, stderr bytes.Buffer
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = io.Copy(&stderr, proc.Stderr())
	}()

	_, copyErr := io.Copy(&stdout, proc.Stdout())
	wg.Wait()

	code, err := proc.Wait()
	if err != nil {
		return nil, fmt.Errorf("waiting for xet tool: %w", err)
	}

	if code != 0 {
		return nil, &xet.ToolError{ExitCode: code, Stderr: stderr.String()}
	}

	if copyErr != nil {
		return nil, fmt.Errorf("reading xet tool listing: %w", copyErr)
	}

	return stdout.Bytes(), nil
}

// Fetch runs `tool <placeholder repo> <hash>`. The placeholder repository
// only satisfies the tool's token check. The child's stderr is drained on
// its own goroutine from this point on.
func (c *Client) Fetch(ctx context.Context, hash string) (io.ReadCloser, error) {
	proc, err := c.spawner.Spawn(ctx, c.cfg.BinPath, []string{c.cfg.PlaceholderRepo, hash}, c.env())
	if err != nil {
		return nil, fmt.Errorf("failed to spawn xet tool: %w", err)
	}

	return newStream(hash, proc, c.sink), nil
}

func (c *Client) env() []string {
	return []string{c.cfg.TokenEnv + "=" + c.cfg.Token}
}
