// Package upload stores author photos on local disk under the public
// uploads directory.
package upload

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrMissingFile = errors.New("photo is required")
	ErrNotImage    = errors.New("only image files are allowed")
	ErrTooLarge    = errors.New("photo too large")
)

const (
	PublicPrefix = "/uploads"
	authorsDir   = "authors"
)

type PhotoStore struct {
	root     string
	maxBytes int64
}

// NewPhotoStore serves files from root, which is mounted at /uploads.
func NewPhotoStore(root string, maxBytes int64) *PhotoStore {
	return &PhotoStore{root: root, maxBytes: maxBytes}
}

func (s *PhotoStore) Root() string { return s.root }

func (s *PhotoStore) MaxBytes() int64 { return s.maxBytes }

// Limit is the size limit for messages, e.g. "5.0 MiB".
func (s *PhotoStore) Limit() string { return humanize.IBytes(uint64(s.maxBytes)) }

// SaveFile stores an uploaded multipart file. See Save.
func (s *PhotoStore) SaveFile(fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", ErrMissingFile
	}
	if fh.Size > s.maxBytes {
		return "", fmt.Errorf("%w: %s exceeds %s", ErrTooLarge, humanize.IBytes(uint64(fh.Size)), s.Limit())
	}
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	return s.Save(f)
}

// Save sniffs the content, rejects anything that is not an image and writes
// it as authors/author-<unix ms>-<rand><ext>. It returns the public path.
func (s *PhotoStore) Save(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", ErrMissingFile
	}
	if int64(len(data)) > s.maxBytes {
		return "", fmt.Errorf("%w: exceeds %s", ErrTooLarge, s.Limit())
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", fmt.Errorf("%w: got %s", ErrNotImage, mt.String())
	}

	dir := filepath.Join(s.root, authorsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	name := fmt.Sprintf("author-%d-%d%s", time.Now().UnixMilli(), randSuffix(), mt.Extension())
	if err := writeFile(filepath.Join(dir, name), data); err != nil {
		return "", err
	}
	return path.Join(PublicPrefix, authorsDir, name), nil
}

// Remove deletes a file previously returned by Save. Missing files and paths
// outside the store are ignored.
func (s *PhotoStore) Remove(publicPath string) error {
	p, ok := s.localPath(publicPath)
	if !ok {
		return nil
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *PhotoStore) localPath(publicPath string) (string, bool) {
	rel, ok := strings.CutPrefix(path.Clean("/"+publicPath), PublicPrefix+"/")
	if !ok || rel == "" {
		return "", false
	}
	return filepath.Join(s.root, filepath.FromSlash(rel)), true
}

func writeFile(p string, data []byte) error {
	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, bytes.NewReader(data)); err != nil {
		f.Close()
		os.Remove(p)
		return err
	}
	return f.Close()
}

func randSuffix() uint32 {
	var b [4]byte
	_, _ = rand.Read(b[:])
	return binary.BigEndian.Uint32(b[:]) % 1_000_000_000
}
