package util

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"musicdl/models"

	"go.uber.org/zap"
)

// FetchPage GETs a URL and returns the body. any non-2xx
// response is a TransportError.
func FetchPage(
	ctx context.Context,
	client models.HTTPClient,
	pageURL string,
	headers map[string]string,
) ([]byte, error) {
	resp, err := Request(ctx, client, http.MethodGet, pageURL, nil, headers)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !IsSuccessStatus(resp.StatusCode) {
		return nil, &TransportError{URL: pageURL, StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: pageURL, Err: fmt.Errorf("failed to read response body: %w", err)}
	}
	zap.S().Debugf("fetched %s (%d bytes)", pageURL, len(body))
	return body, nil
}

// Request sends a single request. transport failures come back as
// TransportError; the status code is left to the caller.
func Request(
	ctx context.Context,
	client models.HTTPClient,
	method string,
	reqURL string,
	body io.Reader,
	headers map[string]string,
) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &TransportError{URL: reqURL, Err: err}
	}
	return resp, nil
}

// IsSuccessStatus reports a 2xx status.
func IsSuccessStatus(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
