package storage

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ImageStore keeps uploaded images and hands back a reference (a URL) that
// is saved on the catalog rows.
type ImageStore interface {
	Save(ctx context.Context, filename, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, ref string) error
}

// objectKey builds a collision free key keeping the original extension.
func objectKey(prefix, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return path.Join(prefix, uuid.New().String()+ext)
}
