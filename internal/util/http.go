package util

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var ErrTooLarge = errors.New("response body exceeds limit")

// GetBytes fetches url and returns the body and its Content-Type. Bodies
// larger than limit bytes are rejected; limit <= 0 disables the check.
func GetBytes(ctx context.Context, client *http.Client, url string, limit int64) ([]byte, string, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("get %s: status %d", url, resp.StatusCode)
	}
	var body io.Reader = resp.Body
	if limit > 0 {
		body = io.LimitReader(resp.Body, limit+1)
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return nil, "", err
	}
	if limit > 0 && int64(len(b)) > limit {
		return nil, "", ErrTooLarge
	}
	return b, resp.Header.Get("Content-Type"), nil
}
