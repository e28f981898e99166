package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

const (
	metaSuffix = ".meta.json"
	partSuffix = ".part"
)

// ErrInvalidPath is returned for object paths that escape the storage root.
var ErrInvalidPath = errors.New("invalid object path")

// ObjectAttrs is persisted next to each object as a JSON sidecar.
type ObjectAttrs struct {
	ContentType string            `json:"contentType"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Size        int64             `json:"size"`
	Created     time.Time         `json:"created"`
}

// ObjectEvent describes an object that finished uploading.
type ObjectEvent struct {
	Path        string
	ContentType string
	Metadata    map[string]string
	Size        int64
}

// Local is a filesystem-backed object store. Object paths are slash
// separated and relative to the root, e.g. "uploads/t1/1700000000-page.jpg".
type Local struct {
	root string
}

func NewLocal(root string) (*Local, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &Local{root: abs}, nil
}

func (l *Local) Root() string {
	return l.root
}

// Put stores r under objectPath. The sidecar is written first and the object
// is renamed into place last, so an object that is visible is complete.
func (l *Local) Put(ctx context.Context, objectPath string, r io.Reader, attrs ObjectAttrs) (int64, error) {
	full, err := l.LocalPath(objectPath)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return 0, fmt.Errorf("create object directory: %w", err)
	}

	tmp := full + partSuffix
	f, err := os.Create(tmp)
	if err != nil {
		return 0, fmt.Errorf("create object: %w", err)
	}
	size, err := io.Copy(f, &ctxReader{ctx: ctx, r: r})
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("write object: %w", err)
	}

	if attrs.ContentType == "" {
		attrs.ContentType = mime.TypeByExtension(path.Ext(objectPath))
	}
	attrs.Size = size
	attrs.Created = time.Now().UTC()
	meta, err := json.Marshal(attrs)
	if err != nil {
		os.Remove(tmp)
		return 0, err
	}
	if err := os.WriteFile(full+metaSuffix, meta, 0o644); err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("write object metadata: %w", err)
	}

	if err := os.Rename(tmp, full); err != nil {
		os.Remove(tmp)
		os.Remove(full + metaSuffix)
		return 0, fmt.Errorf("finalize object: %w", err)
	}
	return size, nil
}

// Read returns the object's bytes.
func (l *Local) Read(ctx context.Context, objectPath string) ([]byte, error) {
	full, err := l.LocalPath(objectPath)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(full)
}

// Attrs loads the sidecar. Objects without one get attributes inferred from
// the file itself and no metadata.
func (l *Local) Attrs(ctx context.Context, objectPath string) (*ObjectAttrs, error) {
	full, err := l.LocalPath(objectPath)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(full)
	if err != nil {
		return nil, err
	}

	attrs := &ObjectAttrs{}
	data, err := os.ReadFile(full + metaSuffix)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, attrs); err != nil {
			return nil, fmt.Errorf("decode object metadata: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		attrs.ContentType = mime.TypeByExtension(path.Ext(objectPath))
		attrs.Created = info.ModTime().UTC()
	default:
		return nil, err
	}
	attrs.Size = info.Size()
	return attrs, nil
}

// Event builds the finalize event for an existing object.
func (l *Local) Event(ctx context.Context, objectPath string) (ObjectEvent, error) {
	attrs, err := l.Attrs(ctx, objectPath)
	if err != nil {
		return ObjectEvent{}, err
	}
	return ObjectEvent{
		Path:        objectPath,
		ContentType: attrs.ContentType,
		Metadata:    attrs.Metadata,
		Size:        attrs.Size,
	}, nil
}

// LocalPath maps an object path to a filesystem path inside the root.
func (l *Local) LocalPath(objectPath string) (string, error) {
	if objectPath == "" || strings.HasPrefix(objectPath, "/") || strings.Contains(objectPath, "\\") {
		return "", ErrInvalidPath
	}
	clean := path.Clean(objectPath)
	if clean != objectPath || clean == "." || strings.HasPrefix(clean, "../") || clean == ".." {
		return "", ErrInvalidPath
	}
	if strings.HasSuffix(clean, metaSuffix) || strings.HasSuffix(clean, partSuffix) {
		return "", ErrInvalidPath
	}
	return filepath.Join(l.root, filepath.FromSlash(clean)), nil
}

// objectPath is the inverse of LocalPath.
func (l *Local) objectPath(full string) (string, bool) {
	rel, err := filepath.Rel(l.root, full)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// IsObjectFile reports whether a filesystem name is an object rather than a
// sidecar or an in-progress write.
func IsObjectFile(name string) bool {
	return !strings.HasSuffix(name, metaSuffix) && !strings.HasSuffix(name, partSuffix)
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
