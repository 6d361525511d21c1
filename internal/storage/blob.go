package storage

import (
	"errors"
	"io"
)

var ErrBadKey = errors.New("storage: invalid key")

// BlobStore keeps uploaded files. URL is what metadata references, e.g.
// ImageInteractive.image_url.
type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
	URL(key string) string
}
