package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"xetproxy/internal/application/usecase/abstraction"
	"xetproxy/internal/domain/entity"
	"xetproxy/internal/domain/model"
	"xetproxy/internal/domain/repository/broker"
	"xetproxy/internal/domain/repository/xet"
	"xetproxy/pkg/logger"

	"github.com/google/uuid"
)

const defaultChunkSize = 64 * 1024

// Downloader turns a hash or a repository path into a running fetch.
type Downloader struct {
	resolver  abstraction.Resolver
	fetcher   xet.Fetcher
	publisher broker.Publisher
	chunkSize int
}

func NewDownloader(resolver abstraction.Resolver, fetcher xet.Fetcher, publisher broker.Publisher,
	chunkSize int,
) *Downloader {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}

	return &Downloader{
		resolver:  resolver,
		fetcher:   fetcher,
		publisher: publisher,
		chunkSize: chunkSize,
	}
}

// ByHash validates a client supplied hash and starts fetching it.
func (d *Downloader) ByHash(ctx context.Context, hash string) (*entity.Download, error) {
	if !model.IsValidHash(hash) {
		return nil, badRequest(InvalidHashMessage)
	}

	return d.start(ctx, &entity.Download{Hash: hash})
}

// ByPath resolves ref to a hash, then starts fetching it. Resolution always
// completes before the fetch is spawned.
func (d *Downloader) ByPath(ctx context.Context, ref model.FileRef) (*entity.Download, error) {
	hash, err := d.resolver.Resolve(ctx, ref.RepoID(), ref.Path)
	if err != nil {
		return nil, err
	}

	return d.start(ctx, &entity.Download{Hash: hash, Repo: ref.RepoID(), File: ref.Path})
}

// start spawns the fetch and waits for its first chunk, so that a tool
// failing before it produced any payload can still be reported with an
// error status.
func (d *Downloader) start(ctx context.Context, dl *entity.Download) (*entity.Download, error) {
	dl.ID = uuid.NewString()

	body, err := d.fetcher.Fetch(ctx, dl.Hash)
	if err != nil {
		logger.Error("failed to start xet fetch", "id", dl.ID, "hash", dl.Hash, "err", err)

		return nil, internal(fmt.Sprintf("Failed to spawn xet process: %v", err), err)
	}

	buf := make([]byte, d.chunkSize)
	n, err := readFirst(body, buf)

	switch {
	case err == nil:
		dl.Body = body
	case errors.Is(err, io.EOF):
		dl.Body = body
	case n > 0:
		dl.Body = &failingBody{ReadCloser: body, err: err}
	default:
		_ = body.Close()

		logger.Error("xet fetch failed before sending data", "id", dl.ID, "hash", dl.Hash, "err", err)

		var toolErr *xet.ToolError
		if errors.As(err, &toolErr) {
			return nil, upstream("Failed to download file: "+toolErr.Error(), err)
		}

		return nil, internal(fmt.Sprintf("Failed to read xet output: %v", err), err)
	}

	dl.Head = buf[:n]

	logger.Info("xet fetch started", "id", dl.ID, "hash", dl.Hash, "repo", dl.Repo, "file", dl.File)

	return dl, nil
}

// Finish logs the outcome of a relay and publishes it as a download event.
func (d *Downloader) Finish(ctx context.Context, dl *entity.Download, written int64,
	status entity.DownloadStatus, cause error,
) {
	event := entity.DownloadEvent{
		ID:         dl.ID,
		Hash:       dl.Hash,
		Repo:       dl.Repo,
		File:       dl.File,
		Bytes:      written,
		Status:     status,
		FinishedAt: time.Now().UTC(),
	}

	if cause != nil {
		event.Error = cause.Error()
		logger.Error("download interrupted", "id", dl.ID, "hash", dl.Hash, "bytes", written,
			"status", string(status), "err", cause)
	} else {
		logger.Info("download finished", "id", dl.ID, "hash", dl.Hash, "bytes", written)
	}

	msg, err := json.Marshal(event)
	if err != nil {
		logger.Error("failed to encode download event", "id", dl.ID, "err", err)

		return
	}

	if err := d.publisher.Publish(context.WithoutCancel(ctx), string(msg)); err != nil {
		logger.Error("failed to publish download event", "id", dl.ID, "err", err)
	}
}

// readFirst reads until it gets at least one byte or an error.
func readFirst(r io.Reader, buf []byte) (int, error) {
	for i := 0; i < 100; i++ {
		n, err := r.Read(buf)
		if n > 0 || err != nil {
			return n, err
		}
	}

	return 0, io.ErrNoProgress
}

// failingBody reports err once the head has been consumed.
type failingBody struct {
	io.ReadCloser
	err error
}

func (b *failingBody) Read([]byte) (int, error) {
	return 0, b.err
}
