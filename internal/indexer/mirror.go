package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"aria/internal/catalog"
)

// MirrorClient fetches pre-indexed records from a remote catalog so a
// machine can mirror a library it cannot read directly.
type MirrorClient interface {
	FetchRecords(ctx context.Context, address string) ([]catalog.Record, error)
}

type httpMirrorClient struct {
	client *http.Client
}

// NewHTTPMirrorClient returns the default JSON-over-HTTP mirror client.
func NewHTTPMirrorClient() MirrorClient {
	return &httpMirrorClient{
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *httpMirrorClient) FetchRecords(ctx context.Context, address string) ([]catalog.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, address, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mirror returned %s", resp.Status)
	}

	var records []catalog.Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode mirror payload: %w", err)
	}
	return records, nil
}
