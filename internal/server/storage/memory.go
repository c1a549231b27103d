package storage

import (
	"context"
	"fmt"
	"sync"
)

// Object is a stored payload.
type Object struct {
	Data        []byte
	ContentType string
}

// MemoryStore keeps objects in process memory. It backs the "memory" storage
// backend for local runs and records every call for tests.
type MemoryStore struct {
	mu      sync.Mutex
	baseURL string
	objects map[string]Object

	uploads []string
	removes [][]string

	// UploadErr and RemoveErr, when set, are returned by the matching call
	// without touching the stored objects.
	UploadErr error
	RemoveErr error
}

func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{baseURL: baseURL, objects: map[string]Object{}}
}

func (m *MemoryStore) Upload(_ context.Context, path string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploads = append(m.uploads, path)
	if m.UploadErr != nil {
		return m.UploadErr
	}
	if _, ok := m.objects[path]; ok {
		return fmt.Errorf("%s: %w", path, ErrObjectExists)
	}
	m.objects[path] = Object{Data: append([]byte(nil), data...), ContentType: contentType}
	return nil
}

func (m *MemoryStore) Remove(_ context.Context, paths ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removes = append(m.removes, append([]string(nil), paths...))
	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	for _, p := range paths {
		delete(m.objects, p)
	}
	return nil
}

func (m *MemoryStore) PublicURL(path string) string {
	return publicURL(m.baseURL, path)
}

func (m *MemoryStore) PathFromURL(url string) (string, bool) {
	return pathFromURL(m.baseURL, url)
}

// Get returns a stored object.
func (m *MemoryStore) Get(path string) (Object, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.objects[path]
	return o, ok
}

// Uploads returns every path passed to Upload, including failed attempts.
func (m *MemoryStore) Uploads() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.uploads...)
}

// Removes returns the path lists of every Remove call, in order.
func (m *MemoryStore) Removes() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]string, len(m.removes))
	for i, r := range m.removes {
		out[i] = append([]string(nil), r...)
	}
	return out
}

// Len reports the number of stored objects.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
