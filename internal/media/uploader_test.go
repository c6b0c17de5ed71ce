package media

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"sync"
	"testing"
)

type fakeStore struct {
	mu   sync.Mutex
	puts map[string][]byte
	err  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{puts: map[string][]byte{}}
}

func (f *fakeStore) Put(_ context.Context, key, _ string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.puts[key] = data
	return nil
}

func TestUploadPNG(t *testing.T) {
	store := newFakeStore()
	up := NewUploader(store, "https://cdn.example/media/")

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 2))); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	obj, err := up.Upload(context.Background(), buf.Bytes(), "image/png", "blog/cover")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if obj.ID == "" {
		t.Fatalf("expected object id")
	}
	if obj.Width != 1 || obj.Height != 2 || obj.Format != "png" {
		t.Fatalf("unexpected dimensions: %+v", obj)
	}
	if !strings.HasPrefix(obj.URL, "https://cdn.example/media/blog/cover/") {
		t.Fatalf("unexpected url: %s", obj.URL)
	}
	if !strings.HasSuffix(obj.URL, ".png") {
		t.Fatalf("expected png extension: %s", obj.URL)
	}
	if len(store.puts) != 1 {
		t.Fatalf("expected one stored object")
	}
}

func TestUploadUnknownFormat(t *testing.T) {
	store := newFakeStore()
	up := NewUploader(store, "https://cdn.example")

	obj, err := up.Upload(context.Background(), []byte("not an image"), "application/octet-stream", "")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if obj.Width != 0 || obj.Height != 0 || obj.Format != "" {
		t.Fatalf("expected zero dimensions: %+v", obj)
	}
	if !strings.HasPrefix(obj.URL, "https://cdn.example/blog/") {
		t.Fatalf("expected default folder in url: %s", obj.URL)
	}
}

func TestUploadStoreError(t *testing.T) {
	store := newFakeStore()
	store.err = errStore
	up := NewUploader(store, "https://cdn.example")

	_, err := up.Upload(context.Background(), []byte("data"), "image/png", "blog")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, ErrUpload) {
		t.Fatalf("expected ErrUpload, got %v", err)
	}
}

func TestObjectKey(t *testing.T) {
	if key := objectKey("/blog/content/", "abc", "jpeg"); key != "blog/content/abc.jpeg" {
		t.Fatalf("unexpected key: %s", key)
	}
	if key := objectKey("", "abc", ""); key != "blog/abc" {
		t.Fatalf("unexpected key: %s", key)
	}
}

var errStore = errors.New("store error")
