// Package storagetest 提供内存版对象存储，供服务层和接口层测试使用
package storagetest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/3Eeeecho/memoryshare/internal/pkg/storage"
)

const baseURL = "https://objects.test/"

var ErrInjected = errors.New("injected storage failure")

// MemoryStore 线程安全的内存对象存储，可注入上传/删除失败
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	seq     atomic.Int64

	FailUpload bool
	FailDelete bool

	Uploads atomic.Int64
	Deletes atomic.Int64
}

var _ storage.ObjectStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (m *MemoryStore) Name() string { return "memory" }

func (m *MemoryStore) Upload(_ context.Context, in storage.UploadInput) (*storage.Object, error) {
	m.mu.Lock()
	fail := m.FailUpload
	m.mu.Unlock()
	if fail {
		return nil, ErrInjected
	}
	data, err := io.ReadAll(in.Reader)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("%s/obj-%d", strings.Trim(in.Folder, "/"), m.seq.Add(1))

	m.mu.Lock()
	m.objects[key] = data
	m.mu.Unlock()
	m.Uploads.Add(1)

	return &storage.Object{
		Key:         key,
		URL:         baseURL + key,
		Kind:        storage.KindOf(in.ContentType),
		Size:        int64(len(data)),
		ContentType: in.ContentType,
	}, nil
}

func (m *MemoryStore) Delete(_ context.Context, ref storage.ObjectRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailDelete {
		return ErrInjected
	}
	key := ref.Key
	if key == "" {
		var ok bool
		if key, ok = m.KeyFromURL(ref.URL); !ok {
			return fmt.Errorf("unknown url %q", ref.URL)
		}
	}
	delete(m.objects, key)
	m.Deletes.Add(1)
	return nil
}

func (m *MemoryStore) Open(_ context.Context, ref storage.ObjectRef) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := ref.Key
	if key == "" {
		key, _ = m.KeyFromURL(ref.URL)
	}
	data, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %q not found", ref.Key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *MemoryStore) KeyFromURL(rawURL string) (string, bool) {
	if !strings.HasPrefix(rawURL, baseURL) {
		return "", false
	}
	return strings.TrimPrefix(rawURL, baseURL), true
}

// SetFailUpload 并发测试中切换上传失败
func (m *MemoryStore) SetFailUpload(v bool) {
	m.mu.Lock()
	m.FailUpload = v
	m.mu.Unlock()
}

// Has 对象是否仍然存在
func (m *MemoryStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

// Len 当前对象数
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
