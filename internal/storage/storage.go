// Package storage uploads initiative images to a public blob store.
package storage

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"
)

type BlobStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	PublicURL(key string) string
	Delete(ctx context.Context, key string) error
}

var unsafeNameReg = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ImageKey namespaces an upload by its owning changemaker and a timestamp so
// two uploads of the same file name never collide.
func ImageKey(changemakerID, fileName string, at time.Time) string {
	name := unsafeNameReg.ReplaceAllString(path.Base(strings.TrimSpace(fileName)), "-")
	if name == "" || name == "." || name == "-" {
		name = "image"
	}

	return fmt.Sprintf("initiatives/%s/%d-%s", changemakerID, at.UnixNano(), name)
}

// KeyFromURL recovers the object key from a public URL produced by store.
// ok is false when the URL was not produced by this store.
func KeyFromURL(store BlobStore, url string) (string, bool) {
	prefix := store.PublicURL("")
	if prefix == "" || !strings.HasPrefix(url, prefix) {
		return "", false
	}

	key := strings.TrimPrefix(url, prefix)
	return key, key != ""
}
