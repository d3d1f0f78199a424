package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"xetproxy/internal/domain/model"
	"xetproxy/internal/domain/repository/xet"
	"xetproxy/pkg/logger"
)

// HashMarker precedes the content hash on a listing line:
//
//	model.gguf - 100 bytes - xetHash: <hash>
const HashMarker = "xetHash:"

// Resolver implements the Resolver abstraction on top of the tool's
// listing mode.
type Resolver struct {
	lister xet.Lister
}

func NewResolver(lister xet.Lister) *Resolver {
	return &Resolver{
		lister: lister,
	}
}

// Resolve lists repoID and returns the hash recorded for file. Resolved
// hashes are held to the same format as client supplied ones.
func (r *Resolver) Resolve(ctx context.Context, repoID, file string) (string, error) {
	if file == "" {
		return "", badRequest("missing file path")
	}

	listing, err := r.lister.List(ctx, repoID)
	if err != nil {
		var toolErr *xet.ToolError
		if errors.As(err, &toolErr) {
			logger.Error("xet tool listing failed", "repo", repoID, "exit_code", toolErr.ExitCode, "err", err)

			return "", upstream("Failed to list files: "+toolErr.Error(), err)
		}

		logger.Error("failed to run xet tool listing", "repo", repoID, "err", err)

		return "", internal(fmt.Sprintf("Failed to execute xet tool: %v", err), err)
	}

	hash, ok := FindHash(string(listing), file)
	if !ok {
		return "", notFound(fmt.Sprintf("File '%s' not found or not XET-enabled", file))
	}

	if !model.IsValidHash(hash) {
		logger.Error("xet tool listed a malformed hash", "repo", repoID, "file", file, "hash", hash)

		return "", upstream(fmt.Sprintf("Listing returned a malformed XET hash for '%s'", file), nil)
	}

	logger.Info("resolved xet hash", "repo", repoID, "file", file, "hash", hash)

	return hash, nil
}

// FindHash scans a listing for the line describing file. Candidate lines
// contain both file and HashMarker; a candidate whose name column equals
// file exactly beats earlier candidates that only contain it.
func FindHash(listing, file string) (string, bool) {
	var (
		first string
		found bool
	)

	for _, line := range strings.Split(listing, "\n") {
		line = strings.TrimRight(line, "\r")
		if !strings.Contains(line, file) {
			continue
		}

		_, rest, ok := strings.Cut(line, HashMarker)
		if !ok {
			continue
		}

		hash, _, _ := strings.Cut(rest, HashMarker)
		hash = strings.TrimSpace(hash)

		if entryName(line) == file {
			return hash, true
		}

		if !found {
			first, found = hash, true
		}
	}

	return first, found
}

func entryName(line string) string {
	name, _, _ := strings.Cut(line, " - ")

	return strings.TrimSpace(name)
}
