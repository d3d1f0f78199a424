package entity

import "io"

// Download is an accepted fetch whose first chunk has already arrived.
// Head must be sent before anything read from Body.
type Download struct {
	ID   string
	Hash string
	Repo string
	File string
	Head []byte
	Body io.ReadCloser
}
