package storage

import (
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// FSStore keeps blobs under a base directory. Keys are slash separated and
// may not leave the base.
type FSStore struct {
	base      string
	publicURL string
}

// NewFSStore creates base if needed. publicURL prefixes keys in URL, for
// instance "https://games.example.org/assets".
func NewFSStore(base, publicURL string) (*FSStore, error) {
	if base == "" {
		base = "./data"
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, err
	}
	return &FSStore{base: base, publicURL: strings.TrimSuffix(publicURL, "/")}, nil
}

func cleanKey(key string) (string, error) {
	k := path.Clean("/" + strings.TrimSpace(key))[1:]
	if k == "" || strings.Contains(key, "..") {
		return "", ErrBadKey
	}
	return k, nil
}

func (s *FSStore) Put(key string, r io.Reader) (string, error) {
	k, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	dst := filepath.Join(s.base, filepath.FromSlash(k))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst)
		return "", err
	}
	return k, f.Close()
}

func (s *FSStore) Get(key string) (io.ReadCloser, error) {
	k, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	return os.Open(filepath.Join(s.base, filepath.FromSlash(k)))
}

func (s *FSStore) URL(key string) string {
	return s.publicURL + "/" + strings.TrimPrefix(key, "/")
}
