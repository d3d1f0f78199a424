package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"xetproxy/internal/application/usecase"
	"xetproxy/internal/application/usecase/abstraction"
	"xetproxy/internal/domain/entity"
	"xetproxy/internal/domain/model"
	"xetproxy/internal/presentation"
	"xetproxy/pkg/logger"
	"xetproxy/pkg/utils"

	"github.com/labstack/echo/v4"
)

const defaultChunkSize = 64 * 1024

var errClientGone = errors.New("client stopped reading")

type DownloadHandler struct {
	downloader abstraction.Downloader
	chunkSize  int
}

func NewDownloadHandler(downloader abstraction.Downloader, chunkSize int) *DownloadHandler {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}

	return &DownloadHandler{
		downloader: downloader,
		chunkSize:  chunkSize,
	}
}

// HandleByPath handles GET /download/:owner/:repo/*file requests.
func (h *DownloadHandler) HandleByPath(c echo.Context) error {
	ref := model.FileRef{
		Owner: c.Param(presentation.OwnerParam),
		Repo:  c.Param(presentation.RepoParam),
		Path:  c.Param(presentation.FileParam),
	}

	logger.Info("download request", "repo", ref.RepoID(), "file", ref.Path)

	dl, err := h.downloader.ByPath(c.Request().Context(), ref)
	if err != nil {
		return renderError(c, err)
	}

	return h.relay(c, dl)
}

// HandleByHash handles GET /download-hash/:hash requests.
func (h *DownloadHandler) HandleByHash(c echo.Context) error {
	hash := c.Param(presentation.HashParam)

	logger.Info("download by hash", "hash", hash)

	dl, err := h.downloader.ByHash(c.Request().Context(), hash)
	if err != nil {
		return renderError(c, err)
	}

	return h.relay(c, dl)
}

// relay commits a 200 response and copies the payload chunk by chunk,
// flushing each one. Once the headers are out a failure can only cut the
// body short, so it is logged and reported through Finish instead of
// being returned to echo.
func (h *DownloadHandler) relay(c echo.Context, dl *entity.Download) error {
	defer dl.Body.Close()

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, echo.MIMEOctetStream)
	res.Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", utils.AttachmentName(dl.Hash, dl.Head)))
	res.Header().Set(presentation.HashTag, dl.Hash)
	res.WriteHeader(http.StatusOK)
	res.Flush()

	written, err := h.copyChunks(res, dl)

	ctx := c.Request().Context()
	status := entity.DownloadCompleted

	switch {
	case err == nil:
	case errors.Is(err, errClientGone), ctx.Err() != nil:
		status = entity.DownloadAborted
	default:
		status = entity.DownloadTruncated
	}

	h.downloader.Finish(ctx, dl, written, status, err)

	return nil
}

func (h *DownloadHandler) copyChunks(res *echo.Response, dl *entity.Download) (int64, error) {
	var written int64

	send := func(chunk []byte) error {
		n, err := res.Write(chunk)
		written += int64(n)
		if err != nil {
			return fmt.Errorf("%w: %w", errClientGone, err)
		}
		res.Flush()

		return nil
	}

	if len(dl.Head) > 0 {
		if err := send(dl.Head); err != nil {
			return written, err
		}
	}

	buf := make([]byte, h.chunkSize)
	for {
		n, err := dl.Body.Read(buf)
		if n > 0 {
			if sendErr := send(buf[:n]); sendErr != nil {
				return written, sendErr
			}
		}

		if errors.Is(err, io.EOF) {
			return written, nil
		}

		if err != nil {
			return written, err
		}
	}
}

func renderError(c echo.Context, err error) error {
	var ucErr *usecase.Error
	if errors.As(err, &ucErr) {
		return presentation.RenderError(c, ucErr.Status(), ucErr.Message)
	}

	logger.Error("unexpected download error", "err", err)

	return presentation.RenderError(c, http.StatusInternalServerError, err.Error())
}
