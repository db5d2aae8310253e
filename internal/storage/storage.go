package storage

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrNotConfigured is returned by every operation of the NotConfigured store
var ErrNotConfigured = errors.New("object storage is not configured")

// File is an upload as received from the client
type File struct {
	Name        string
	ContentType string
	Content     []byte
}

// Namespace places uploads under the entity that owns them
type Namespace struct {
	EntityType string
	EntityID   uint
}

// StoredObject describes a file after it reached the store
type StoredObject struct {
	FileName    string
	StoragePath string
	SharedURL   string
}

// ObjectStore persists attachment content
type ObjectStore interface {
	Enabled() bool
	// Upload stores each file and returns the ones that succeeded. Individual
	// failures are logged and skipped.
	Upload(ctx context.Context, ns Namespace, files []File) ([]StoredObject, error)
	Delete(ctx context.Context, storagePath string) error
}

type notConfigured struct{}

// NotConfigured is the store used when no bucket is set
var NotConfigured ObjectStore = notConfigured{}

func (notConfigured) Enabled() bool { return false }

func (notConfigured) Upload(context.Context, Namespace, []File) ([]StoredObject, error) {
	return nil, ErrNotConfigured
}

func (notConfigured) Delete(context.Context, string) error {
	return ErrNotConfigured
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeFileName reduces a client supplied name to a safe key segment
func SanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "file"
	}
	return name
}

// ObjectKey builds a collision free key for a file within the namespace
func ObjectKey(prefix string, ns Namespace, fileName string, now time.Time) string {
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	key := fmt.Sprintf("%s/%d/%s-%s-%s",
		ns.EntityType, ns.EntityID, now.UTC().Format("20060102T150405Z"), suffix, SanitizeFileName(fileName))
	if prefix = strings.Trim(prefix, "/"); prefix != "" {
		key = prefix + "/" + key
	}
	return key
}
