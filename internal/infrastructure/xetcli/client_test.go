package xetcli_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"xetproxy/internal/domain/repository/xet"
	"xetproxy/internal/infrastructure/xetcli"
	"xetproxy/internal/infrastructure/xetcli/xetclitest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHash = "89dbfa4888600b29be17ddee8bdbf9c48999c81cb811964eee6b057d8467f927"

func testConfig() xetcli.Config {
	return xetcli.Config{
		BinPath:         "/usr/local/bin/xet-download",
		TokenEnv:        "HF_TOKEN",
		PlaceholderRepo: "jedisct1/MiMo-7B-RL-GGUF",
		Token:           "hf_secret",
	}
}

type lineRecorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *lineRecorder) sink(_, line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, line)
}

func (r *lineRecorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.lines...)
}

func readAllWithin(t *testing.T, r io.Reader, d time.Duration) ([]byte, error) {
	t.Helper()

	type result struct {
		data []byte
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		data, err := io.ReadAll(r)
		ch <- result{data, err}
	}()

	select {
	case res := <-ch:
		return res.data, res.err
	case <-time.After(d):
		t.Fatalf("read did not finish within %s", d)

		return nil, nil
	}
}

func TestFetch(t *testing.T) {
	t.Parallel()

	payload := bytes.Repeat([]byte{0x00, 0x01, 0xfe, 0xff}, 64*1024)

	tests := []struct {
		name        string
		script      xetclitest.Script
		wantPayload []byte
		wantLines   []string
		wantErr     bool
	}{
		{
			name: "payload and diagnostics",
			script: xetclitest.Script{
				Stdout: payload,
				Stderr: []byte("resolving token\nfetching 3 xorbs\r50%\r100%\n"),
			},
			wantPayload: payload,
			wantLines:   []string{"resolving token", "fetching 3 xorbs", "50%", "100%"},
		},
		{
			name:        "empty payload",
			script:      xetclitest.Script{},
			wantPayload: []byte{},
		},
		{
			name: "non-zero exit after partial payload",
			script: xetclitest.Script{
				Stdout:   payload[:1024],
				Stderr:   []byte("connection reset\n"),
				ExitCode: 3,
			},
			wantPayload: payload[:1024],
			wantLines:   []string{"connection reset"},
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			spawner := xetclitest.NewSpawner(func([]string) xetclitest.Script { return tt.script })
			rec := &lineRecorder{}
			client := xetcli.New(testConfig(), spawner).WithLineSink(rec.sink)

			stream, err := client.Fetch(context.Background(), testHash)
			require.NoError(t, err)

			got, err := readAllWithin(t, stream, 5*time.Second)
			require.NoError(t, stream.Close())

			if tt.wantErr {
				var toolErr *xet.ToolError
				require.ErrorAs(t, err, &toolErr)
				assert.Equal(t, tt.script.ExitCode, toolErr.ExitCode)
			} else {
				require.NoError(t, err)
			}

			assert.True(t, bytes.Equal(tt.wantPayload, got), "payload differs")
			assert.Equal(t, tt.wantLines, rec.Lines())

			calls := spawner.Calls()
			require.Len(t, calls, 1)
			assert.Equal(t, "/usr/local/bin/xet-download", calls[0].Bin)
			assert.Equal(t, []string{"jedisct1/MiMo-7B-RL-GGUF", testHash}, calls[0].Args)
			assert.Equal(t, []string{"HF_TOKEN=hf_secret"}, calls[0].Env)
		})
	}
}

func TestFetch_DiagnosticFloodDoesNotStall(t *testing.T) {
	t.Parallel()

	var flood bytes.Buffer
	for i := 0; flood.Len() < 4*1024*1024; i++ {
		fmt.Fprintf(&flood, "progress line %d: downloading chunk\n", i)
	}
	// a single line longer than the scanner buffer must not stop the drain
	flood.Write(bytes.Repeat([]byte("x"), 2*1024*1024))

	spawner := xetclitest.NewSpawner(func([]string) xetclitest.Script {
		return xetclitest.Script{
			Stdout:      []byte("payload after the flood"),
			Stderr:      flood.Bytes(),
			StderrFirst: true,
		}
	})
	client := xetcli.New(testConfig(), spawner).WithLineSink(func(string, string) {})

	stream, err := client.Fetch(context.Background(), testHash)
	require.NoError(t, err)
	defer stream.Close()

	got, err := readAllWithin(t, stream, 10*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "payload after the flood", string(got))
}

func TestFetch_CloseKillsRunningTool(t *testing.T) {
	t.Parallel()

	hold := make(chan struct{})
	defer close(hold)

	spawner := xetclitest.NewSpawner(func([]string) xetclitest.Script {
		return xetclitest.Script{Stdout: []byte("first"), Hold: hold}
	})
	client := xetcli.New(testConfig(), spawner).WithLineSink(func(string, string) {})

	stream, err := client.Fetch(context.Background(), testHash)
	require.NoError(t, err)

	buf := make([]byte, 5)
	_, err = io.ReadFull(stream, buf)
	require.NoError(t, err)

	require.NoError(t, stream.Close())

	procs := spawner.Processes()
	require.Len(t, procs, 1)
	assert.True(t, procs[0].Killed())
	assert.True(t, procs[0].Exited())
}

func TestFetch_ContextCancelEndsStream(t *testing.T) {
	t.Parallel()

	hold := make(chan struct{})
	defer close(hold)

	spawner := xetclitest.NewSpawner(func([]string) xetclitest.Script {
		return xetclitest.Script{Stdout: []byte("partial"), Hold: hold}
	})
	client := xetcli.New(testConfig(), spawner).WithLineSink(func(string, string) {})

	ctx, cancel := context.WithCancel(context.Background())
	stream, err := client.Fetch(ctx, testHash)
	require.NoError(t, err)
	defer stream.Close()

	buf := make([]byte, 7)
	_, err = io.ReadFull(stream, buf)
	require.NoError(t, err)

	cancel()

	_, err = readAllWithin(t, stream, 5*time.Second)
	var toolErr *xet.ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, -1, toolErr.ExitCode)
}

func TestFetch_SpawnError(t *testing.T) {
	t.Parallel()

	spawner := xetclitest.NewSpawner(func([]string) xetclitest.Script {
		return xetclitest.Script{SpawnErr: errors.New("no such file or directory")}
	})
	client := xetcli.New(testConfig(), spawner)

	stream, err := client.Fetch(context.Background(), testHash)
	assert.Nil(t, stream)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to spawn xet tool")
}

func TestList(t *testing.T) {
	t.Parallel()

	listing := "model.gguf - 100 bytes - xetHash: " + testHash + "\n"

	tests := []struct {
		name       string
		script     xetclitest.Script
		wantOutput string
		wantErr    string
		wantTool   bool
	}{
		{
			name:       "success",
			script:     xetclitest.Script{Stdout: []byte(listing), Stderr: []byte("listing repo\n")},
			wantOutput: listing,
		},
		{
			name:     "tool failure carries stderr",
			script:   xetclitest.Script{Stderr: []byte("token invalid\n"), ExitCode: 1},
			wantErr:  "token invalid",
			wantTool: true,
		},
		{
			name:     "tool failure without stderr",
			script:   xetclitest.Script{ExitCode: 2},
			wantErr:  "xet tool exited with status 2",
			wantTool: true,
		},
		{
			name:    "spawn failure",
			script:  xetclitest.Script{SpawnErr: errors.New("permission denied")},
			wantErr: "failed to execute xet tool: permission denied",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			spawner := xetclitest.NewSpawner(func([]string) xetclitest.Script { return tt.script })
			client := xetcli.New(testConfig(), spawner)

			out, err := client.List(context.Background(), "owner/repo")

			calls := spawner.Calls()
			require.Len(t, calls, 1)
			assert.Equal(t, []string{"owner/repo"}, calls[0].Args)
			assert.Equal(t, []string{"HF_TOKEN=hf_secret"}, calls[0].Env)

			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.wantOutput, string(out))

				return
			}

			require.Error(t, err)
			assert.Equal(t, tt.wantErr, strings.TrimSpace(err.Error()))

			var toolErr *xet.ToolError
			assert.Equal(t, tt.wantTool, errors.As(err, &toolErr))
		})
	}
}
