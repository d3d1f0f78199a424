package entity

import "time"

type DownloadStatus string

const (
	DownloadCompleted DownloadStatus = "completed"
	DownloadTruncated DownloadStatus = "truncated"
	DownloadAborted   DownloadStatus = "aborted"
)

// DownloadEvent describes one finished relay.
type DownloadEvent struct {
	ID         string         `json:"id"`
	Hash       string         `json:"hash"`
	Repo       string         `json:"repo,omitempty"`
	File       string         `json:"file,omitempty"`
	Bytes      int64          `json:"bytes"`
	Status     DownloadStatus `json:"status"`
	Error      string         `json:"error,omitempty"`
	FinishedAt time.Time      `json:"finished_at"`
}
