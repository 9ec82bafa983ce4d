// Package storage keeps uploaded product images. Every backend returns the
// public URL of a stored object.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
)

// MaxObjectSize bounds a single upload.
const MaxObjectSize = 10 << 20

// readAll buffers body so that it can be retried or seeked. size is a hint;
// bodies larger than MaxObjectSize are rejected.
func readAll(body io.Reader, size int64) ([]byte, error) {
	if size > MaxObjectSize {
		return nil, fmt.Errorf("object of %d bytes exceeds the %d byte limit", size, MaxObjectSize)
	}
	var buf bytes.Buffer
	if size > 0 {
		buf.Grow(int(size))
	}
	n, err := io.Copy(&buf, io.LimitReader(body, MaxObjectSize+1))
	if err != nil {
		return nil, fmt.Errorf("read object: %w", err)
	}
	if n > MaxObjectSize {
		return nil, fmt.Errorf("object exceeds the %d byte limit", MaxObjectSize)
	}
	return buf.Bytes(), nil
}

// publicURL joins base and key, escaping each key segment.
func publicURL(base, key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimRight(base, "/") + "/" + strings.Join(segments, "/")
}

// Object is a stored blob held by MemoryStore.
type Object struct {
	ContentType string
	Data        []byte
}

// MemoryStore keeps objects in process. It backs development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]Object
}

func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{baseURL: baseURL, objects: make(map[string]Object)}
}

func (s *MemoryStore) Put(_ context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	data, err := readAll(body, size)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.objects[key] = Object{ContentType: contentType, Data: data}
	s.mu.Unlock()
	return publicURL(s.baseURL, key), nil
}

// Delete removes the object. Deleting a missing key is not an error.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}

// Get returns a stored object.
func (s *MemoryStore) Get(key string) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	return obj, ok
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
