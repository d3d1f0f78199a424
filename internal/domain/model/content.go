package model

import (
	"regexp"
)

// HashLength is the number of hex characters in a xet content hash.
const HashLength = 64

var hashRegex = regexp.MustCompile(`^[a-fA-F0-9]{64}$`)

// IsValidHash reports whether hash is exactly 64 hexadecimal characters.
func IsValidHash(hash string) bool {
	return hashRegex.MatchString(hash)
}

// FileRef addresses a file inside a hub repository.
type FileRef struct {
	Owner string
	Repo  string
	Path  string
}

func (f FileRef) RepoID() string {
	return f.Owner + "/" + f.Repo
}
