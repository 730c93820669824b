package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/alchemorsel-import/backend/internal/models"
)

// MockCompleter implements Completer for testing
type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, messages []Message, temperature float64) (string, error) {
	args := m.Called(ctx, messages, temperature)
	return args.String(0), args.Error(1)
}

// MockPageReader implements PageReader for testing
type MockPageReader struct {
	mock.Mock
}

func (m *MockPageReader) Fetch(ctx context.Context, pageURL string) (string, error) {
	args := m.Called(ctx, pageURL)
	return args.String(0), args.Error(1)
}

type memoryObject struct {
	data        []byte
	contentType string
	owner       string
}

// memoryStore is an in-memory ObjectStore
type memoryStore struct {
	mu      sync.Mutex
	objects map[string]memoryObject
	putErr  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string]memoryObject{}}
}

func (m *memoryStore) Put(_ context.Context, path string, data []byte, contentType, owner string) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[path] = memoryObject{data: data, contentType: contentType, owner: owner}
	return nil
}

func (m *memoryStore) Exists(_ context.Context, path string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[path]
	return ok, nil
}

func (m *memoryStore) Stat(_ context.Context, path string) (ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[path]
	if !ok {
		return ObjectInfo{}, ErrObjectNotFound
	}
	return ObjectInfo{ContentType: obj.contentType, Size: int64(len(obj.data))}, nil
}

func (m *memoryStore) Open(ctx context.Context, path string) (io.ReadCloser, ObjectInfo, error) {
	info, err := m.Stat(ctx, path)
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return io.NopCloser(bytes.NewReader(m.objects[path].data)), info, nil
}

func (m *memoryStore) URL(_ context.Context, path string) (string, error) {
	return "https://cdn.example.com/" + path, nil
}

// failingLedger always fails to record
type failingLedger struct{}

func (failingLedger) Record(context.Context, *models.Upload) error {
	return errors.New("database unavailable")
}

func (failingLedger) ListByUser(context.Context, string, int) ([]*models.Upload, error) {
	return nil, errors.New("database unavailable")
}
