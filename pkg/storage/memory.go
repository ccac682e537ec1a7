package storage

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryBucket keeps objects in process memory. Used when the service runs offline.
type MemoryBucket struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryBucket creates an empty in-memory bucket
func NewMemoryBucket() *MemoryBucket {
	return &MemoryBucket{objects: make(map[string][]byte)}
}

// Upload stores a copy of content under key
func (b *MemoryBucket) Upload(_ context.Context, key string, content []byte, _ string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = append([]byte(nil), content...)
	return "memory://" + key, nil
}

// Delete removes key; missing keys are ignored
func (b *MemoryBucket) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)
	return nil
}

// PresignDownload returns the object address; memory objects need no signature
func (b *MemoryBucket) PresignDownload(_ context.Context, key string, _ time.Duration) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if _, ok := b.objects[key]; !ok {
		return "", fmt.Errorf("object %s not found", key)
	}
	return "memory://" + key, nil
}

// Object returns the stored bytes for key
func (b *MemoryBucket) Object(key string) ([]byte, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	content, ok := b.objects[key]
	return content, ok
}
