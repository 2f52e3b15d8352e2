package storage

import "context"

// ObjectStorage is the object-storage/CDN collaborator that keeps issue
// images. Put returns a stable public URL the rest of the system treats as an
// opaque string.
type ObjectStorage interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
}
