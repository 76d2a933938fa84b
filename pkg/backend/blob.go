package backend

import (
	"context"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// cleanBlobPath normalizes a slash-separated object path and rejects paths
// that would escape the store root.
func cleanBlobPath(p string) (string, error) {
	if p == "" {
		return "", ErrInvalidPath
	}
	clean := path.Clean("/" + strings.ReplaceAll(p, "\\", "/"))
	clean = strings.TrimPrefix(clean, "/")
	if clean == "" || clean == "." || strings.HasPrefix(clean, "..") {
		return "", errors.Wrapf(ErrInvalidPath, "%q", p)
	}
	return clean, nil
}

// MemoryBlobs keeps uploaded objects in memory, mainly for tests
type MemoryBlobs struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string][]byte
}

// NewMemoryBlobs creates a store whose URLs start with baseURL
func NewMemoryBlobs(baseURL string) *MemoryBlobs {
	return &MemoryBlobs{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		objects: make(map[string][]byte),
	}
}

// Upload implements BlobStore
func (m *MemoryBlobs) Upload(ctx context.Context, r io.Reader, p string) (string, error) {
	name, err := cleanBlobPath(p)
	if err != nil {
		return "", err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", errors.Wrapf(err, "upload %s", name)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[name] = data
	return m.baseURL + "/" + name, nil
}

// List implements BlobStore
func (m *MemoryBlobs) List(ctx context.Context, prefix string) ([]Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var blobs []Blob
	for name, data := range m.objects {
		if strings.HasPrefix(name, prefix) {
			blobs = append(blobs, Blob{Name: name, URL: m.baseURL + "/" + name, Size: int64(len(data))})
		}
	}
	sort.Slice(blobs, func(i, j int) bool { return blobs[i].Name < blobs[j].Name })
	return blobs, nil
}

// Delete implements BlobStore
func (m *MemoryBlobs) Delete(ctx context.Context, p string) error {
	name, err := cleanBlobPath(p)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[name]; !ok {
		return errors.Wrapf(ErrNotFound, "blob %s", name)
	}
	delete(m.objects, name)
	return nil
}

// DirBlobs stores objects as files under a root directory and hands out
// file:// URLs.
type DirBlobs struct {
	root string
}

// NewDirBlobs uses root (created if needed)
func NewDirBlobs(root string) (*DirBlobs, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrap(err, "resolve blob root")
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, errors.Wrap(err, "create blob root")
	}
	return &DirBlobs{root: abs}, nil
}

func (d *DirBlobs) fileURL(name string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(filepath.Join(d.root, filepath.FromSlash(name)))}
	return u.String()
}

// Upload implements BlobStore
func (d *DirBlobs) Upload(ctx context.Context, r io.Reader, p string) (string, error) {
	name, err := cleanBlobPath(p)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dst := filepath.Join(d.root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", errors.Wrapf(err, "upload %s", name)
	}
	f, err := os.Create(dst)
	if err != nil {
		return "", errors.Wrapf(err, "upload %s", name)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst)
		return "", errors.Wrapf(err, "upload %s", name)
	}
	if err := f.Close(); err != nil {
		return "", errors.Wrapf(err, "upload %s", name)
	}
	return d.fileURL(name), nil
}

// List implements BlobStore
func (d *DirBlobs) List(ctx context.Context, prefix string) ([]Blob, error) {
	var blobs []Blob
	err := filepath.WalkDir(d.root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(d.root, p)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if !strings.HasPrefix(name, prefix) {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		blobs = append(blobs, Blob{Name: name, URL: d.fileURL(name), Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "list blobs")
	}
	return blobs, nil
}

// Delete implements BlobStore
func (d *DirBlobs) Delete(ctx context.Context, p string) error {
	name, err := cleanBlobPath(p)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(d.root, filepath.FromSlash(name))); err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(ErrNotFound, "blob %s", name)
		}
		return errors.Wrapf(err, "delete %s", name)
	}
	return nil
}
