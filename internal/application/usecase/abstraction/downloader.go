package abstraction

import (
	"context"

	"xetproxy/internal/domain/entity"
	"xetproxy/internal/domain/model"
)

type Downloader interface {
	ByHash(ctx context.Context, hash string) (*entity.Download, error)
	ByPath(ctx context.Context, ref model.FileRef) (*entity.Download, error)
	// Finish records the outcome of relaying d. It never fails the request.
	Finish(ctx context.Context, d *entity.Download, written int64, status entity.DownloadStatus, cause error)
}
