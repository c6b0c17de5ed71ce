package media

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
)

// Fetcher resolves a temporary media reference to its raw bytes and
// content type.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) ([]byte, string, error)
}

type dataURIFetcher struct{}

// NewDataURIFetcher decodes data: URIs. Any other temporary scheme (a stale
// blob: URL from the editor, for instance) cannot be resolved server-side
// and fails here.
func NewDataURIFetcher() Fetcher {
	return dataURIFetcher{}
}

func (dataURIFetcher) Fetch(_ context.Context, ref string) ([]byte, string, error) {
	payload, ok := strings.CutPrefix(ref, "data:")
	if !ok {
		return nil, "", errors.New("unsupported media reference scheme")
	}

	meta, encoded, ok := strings.Cut(payload, ",")
	if !ok {
		return nil, "", errors.New("malformed data uri")
	}

	contentType, rest, _ := strings.Cut(meta, ";")
	if !strings.Contains(";"+rest, ";base64") {
		return nil, "", errors.New("data uri is not base64 encoded")
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", err
	}
	return data, contentType, nil
}
