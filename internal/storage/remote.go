package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/dungpham-npc/storefront/pkg/httpclient"
)

const remoteService = "asset host"

// doer is satisfied by *httpclient.CircuitBreakerClient.
type doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// RemoteStore uploads objects to an external asset host over HTTP:
// PUT <base>/<key> stores, DELETE <base>/<key> removes. The host may answer
// a PUT with {"url": "..."}; otherwise the object URL is used.
type RemoteStore struct {
	client  doer
	baseURL string
	apiKey  string
	logger  *slog.Logger
}

func NewRemoteStore(client *httpclient.CircuitBreakerClient, baseURL, apiKey string, logger *slog.Logger) *RemoteStore {
	return &RemoteStore{client: client, baseURL: baseURL, apiKey: apiKey, logger: logger}
}

type remotePutResponse struct {
	URL string `json:"url"`
}

func (s *RemoteStore) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	data, err := readAll(body, size)
	if err != nil {
		return "", err
	}

	target := publicURL(s.baseURL, key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	s.authorize(req)

	resp, err := s.client.Do(ctx, req)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	if resp.StatusCode >= 300 {
		return "", httpclient.ParseResponseError(resp, remoteService)
	}
	defer func() { _ = resp.Body.Close() }()

	var out remotePutResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&out); err == nil && out.URL != "" {
		return out.URL, nil
	}
	return target, nil
}

// Delete removes the object. A 404 from the host counts as success.
func (s *RemoteStore) Delete(ctx context.Context, key string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, publicURL(s.baseURL, key), http.NoBody)
	if err != nil {
		return fmt.Errorf("create delete request: %w", err)
	}
	s.authorize(req)

	resp, err := s.client.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		_ = resp.Body.Close()
		s.logger.DebugContext(ctx, "asset already gone", slog.String("key", key))
		return nil
	}
	if resp.StatusCode >= 300 {
		return httpclient.ParseResponseError(resp, remoteService)
	}
	_ = resp.Body.Close()
	return nil
}

func (s *RemoteStore) authorize(req *http.Request) {
	if s.apiKey != "" {
		req.Header.Set("X-API-Key", s.apiKey)
	}
}
