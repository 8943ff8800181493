// Package storage is the blob store behind recipe and profile images:
// a key -> bytes mapping with a public URL per key.
package storage

type Store interface {
	// Save writes the blob under the given relative path and returns the
	// path it is retrievable by.
	Save(path string, data []byte, contentType string) (string, error)
	Delete(path string) error
	PublicURL(path string) string
}
