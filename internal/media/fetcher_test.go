package media

import (
	"context"
	"encoding/base64"
	"testing"
)

func TestDataURIFetcher(t *testing.T) {
	fetch := NewDataURIFetcher()

	payload := base64.StdEncoding.EncodeToString([]byte("hello"))
	data, contentType, err := fetch.Fetch(context.Background(), "data:image/png;base64,"+payload)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("unexpected data: %q", data)
	}
	if contentType != "image/png" {
		t.Fatalf("unexpected content type: %s", contentType)
	}
}

func TestDataURIFetcherRejects(t *testing.T) {
	fetch := NewDataURIFetcher()

	cases := []string{
		"blob:http://localhost/abc",
		"data:image/png;base64",
		"data:image/png,plain-not-base64",
		"data:image/png;base64,%%%",
	}
	for _, ref := range cases {
		if _, _, err := fetch.Fetch(context.Background(), ref); err == nil {
			t.Fatalf("expected error for %q", ref)
		}
	}
}
