// Package storage holds the object store that keeps recipe and comment
// images. Paths are generated by the server; callers only ever see public
// URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/dmitrijs2005/recipeshare/internal/common"
)

// ErrObjectExists is returned by Upload when the path is already taken.
// Uploads never overwrite.
var ErrObjectExists = errors.New("object already exists")

// ObjectStore is the subset of an object store the server needs.
type ObjectStore interface {
	// Upload stores data under path. It fails with ErrObjectExists instead of
	// overwriting.
	Upload(ctx context.Context, path string, data []byte, contentType string) error
	// Remove deletes every path. Missing paths are not an error.
	Remove(ctx context.Context, paths ...string) error
	PublicURL(path string) string
	// PathFromURL reverses PublicURL. ok is false for URLs this store did not
	// produce.
	PathFromURL(url string) (p string, ok bool)
}

// NewObjectPath generates "<unix-millis>-<random>.<ext>" from the original
// file name. The extension is lower-cased and defaults to "bin".
func NewObjectPath(now time.Time, filename string) (string, error) {
	suffix, err := common.MakeRandHexString(6)
	if err != nil {
		return "", err
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if ext == "" || strings.ContainsAny(ext, `/\ `) {
		ext = "bin"
	}
	return fmt.Sprintf("%d-%s.%s", now.UnixMilli(), suffix, ext), nil
}

func publicURL(base, p string) string {
	return strings.TrimRight(base, "/") + "/" + p
}

func pathFromURL(base, url string) (string, bool) {
	prefix := strings.TrimRight(base, "/") + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	p := strings.TrimPrefix(url, prefix)
	return p, p != ""
}
