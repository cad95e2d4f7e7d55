package storage

import (
	"context"
	"sync"
)

// Memory keeps objects in process. It backs local development and tests.
type Memory struct {
	objects map[string][]byte
	baseURL string
	mu      sync.RWMutex
}

// NewMemory returns an empty store whose URLs start with baseURL.
func NewMemory(baseURL string) *Memory {
	return &Memory{objects: make(map[string][]byte), baseURL: baseURL}
}

func (m *Memory) Put(_ context.Context, key string, data []byte, opts ...Option) (*FileInfo, error) {
	key, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	o := putOptions{contentType: "text/html; charset=utf-8", acl: ACLPrivate}
	for _, opt := range opts {
		opt(&o)
	}

	m.mu.Lock()
	m.objects[key] = append([]byte(nil), data...)
	m.mu.Unlock()

	return &FileInfo{Key: key, Size: int64(len(data)), ContentType: o.contentType, ACL: o.acl}, nil
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	key, err := cleanKey(key)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) URL(_ context.Context, key string) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	return m.baseURL + "/" + key, nil
}

var _ Storage = (*Memory)(nil)
