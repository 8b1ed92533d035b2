package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"vaultsync/internal/domain"
)

// Client is a blob backend reaching a vaultsyncd server.
type Client struct {
	Base string
	HTTP *http.Client
}

// NewClient returns a backend client for the server at base.
func NewClient(base string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{Base: base, HTTP: httpClient}
}

// Read fetches the blob at path. A 404 means absent, not an error.
// Paths are plain slash-separated identifiers and travel unescaped.
func (c *Client) Read(path string) ([]byte, bool, error) {
	resp, err := c.HTTP.Get(c.Base + "/blob/" + path)
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", path, domain.ErrBackendUnavailable)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}
	if resp.StatusCode/100 != 2 {
		return nil, false, fmt.Errorf("get %s: %s", path, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", path, domain.ErrBackendUnavailable)
	}
	return data, true, nil
}

// Write stores data at path on the server.
func (c *Client) Write(path string, data []byte) error {
	req, err := http.NewRequest(http.MethodPut, c.Base+"/blob/"+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("put %s: %w", path, domain.ErrBackendUnavailable)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("put %s: %s", path, resp.Status)
	}
	return nil
}

// List returns every stored path starting with prefix.
func (c *Client) List(prefix string) ([]string, error) {
	resp, err := c.HTTP.Get(c.Base + "/blobs?prefix=" + url.QueryEscape(prefix))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", prefix, domain.ErrBackendUnavailable)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("list %s: %s", prefix, resp.Status)
	}
	var paths []string
	if err := json.NewDecoder(resp.Body).Decode(&paths); err != nil {
		return nil, err
	}
	return paths, nil
}

var _ domain.Backend = (*Client)(nil)
