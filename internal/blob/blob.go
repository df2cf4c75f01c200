// Package blob stores uploaded news images and hands out their retrieval
// URLs.
package blob

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"
	"unicode"
)

// Store is a binary object store addressed by key.
type Store interface {
	// Upload durably stores body under key.
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	// URL returns the durable retrieval URL of a stored object.
	URL(ctx context.Context, key string) (string, error)
}

// ObjectKey builds the news/<epoch-ms>_<filename> key for an upload.
func ObjectKey(now time.Time, filename string) string {
	return fmt.Sprintf("news/%d_%s", now.UnixMilli(), cleanFilename(filename))
}

func cleanFilename(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = path.Base(name)
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || r == '/' {
			return -1
		}
		if unicode.IsSpace(r) {
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		return "upload"
	}
	return name
}

// joinURL appends an escaped object key to base.
func joinURL(base, key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimRight(base, "/") + "/" + strings.Join(segments, "/")
}
