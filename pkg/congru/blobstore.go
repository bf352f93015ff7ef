package congru

import (
	"bufio"
	"crypto/sha1"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// BlobStore is a content-addressed directory of immutable files named
// by their SHA-1 hex digest, rooted at Dir (the CONGRU_BLOB_DIR
// equivalent of spec §6's POMAGMA_BLOB_DIR).
type BlobStore struct {
	Dir string
}

// NewBlobStore creates a BlobStore rooted at dir, creating the
// directory if it does not already exist.
func NewBlobStore(dir string) (*BlobStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("congru: blobstore: %w", err)
	}
	return &BlobStore{Dir: dir}, nil
}

// CreateBlob returns a path to a fresh temporary file inside the
// store's directory, ready for the caller to write content into
// before calling StoreBlob.
func (b *BlobStore) CreateBlob() (string, error) {
	f, err := os.CreateTemp(b.Dir, "blob-*.tmp")
	if err != nil {
		return "", fmt.Errorf("congru: blobstore: create: %w", err)
	}
	defer f.Close()
	return f.Name(), nil
}

// StoreBlob computes the SHA-1 digest of tempPath's contents, renames
// it to its hex digest if that name is not already taken, or deletes
// it (content is byte-identical, so the existing blob suffices) if it
// is, and returns the hex digest either way.
func (b *BlobStore) StoreBlob(tempPath string) (string, error) {
	f, err := os.Open(tempPath)
	if err != nil {
		return "", fmt.Errorf("congru: blobstore: store: %w", err)
	}
	h := sha1.New()
	_, err = io.Copy(h, f)
	f.Close()
	if err != nil {
		return "", fmt.Errorf("congru: blobstore: store: %w", err)
	}
	digest := fmt.Sprintf("%x", h.Sum(nil))
	dest := filepath.Join(b.Dir, digest)

	if _, err := os.Stat(dest); err == nil {
		if rmErr := os.Remove(tempPath); rmErr != nil {
			return "", fmt.Errorf("congru: blobstore: store: %w", rmErr)
		}
		return digest, nil
	}
	if err := os.Rename(tempPath, dest); err != nil {
		return "", fmt.Errorf("congru: blobstore: store: %w", err)
	}
	return digest, nil
}

// Path returns the on-disk path for a stored blob's hex digest.
func (b *BlobStore) Path(digest string) string { return filepath.Join(b.Dir, digest) }

// Open opens a stored blob for reading by its hex digest.
func (b *BlobStore) Open(digest string) (*os.File, error) {
	f, err := os.Open(b.Path(digest))
	if err != nil {
		return nil, fmt.Errorf("congru: blobstore: open: %w", err)
	}
	return f, nil
}

// DumpBlobRef writes digests, one 40-character hex string per line, to
// path.
func (b *BlobStore) DumpBlobRef(path string, digests []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("congru: blobstore: dump ref: %w", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for _, d := range digests {
		if _, err := fmt.Fprintln(w, d); err != nil {
			return fmt.Errorf("congru: blobstore: dump ref: %w", err)
		}
	}
	return w.Flush()
}

// LoadBlobRef reads a newline-separated list of hex digests from path.
func (b *BlobStore) LoadBlobRef(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("congru: blobstore: load ref: %w", err)
	}
	defer f.Close()

	var digests []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		digests = append(digests, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("congru: blobstore: load ref: %w", err)
	}
	return digests, nil
}
