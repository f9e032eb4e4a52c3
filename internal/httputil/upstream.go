// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the outbound API clients.
package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxErrorBody bounds how much of a failed response body is kept in an
// UpstreamError.
const maxErrorBody = 4096

// UpstreamError reports a failed call to an external API: either a
// transport failure (StatusCode 0, Err set) or a non-2xx response.
type UpstreamError struct {
	// Service names the external API (e.g. "PubMed", "OpenAI").
	Service    string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s API error: %v", e.Service, e.Err)
	}
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("%s API error: HTTP %d", e.Service, e.StatusCode)
	}
	return fmt.Sprintf("%s API error: HTTP %d: %s", e.Service, e.StatusCode, body)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Do executes req once and returns the response body. Transport failures
// and non-2xx responses are returned as *UpstreamError tagged with service.
// There is no retry.
func Do(ctx context.Context, client *http.Client, req *http.Request, service string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req.WithContext(ctx))
	if err != nil {
		return nil, &UpstreamError{Service: service, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &UpstreamError{Service: service, StatusCode: resp.StatusCode, Body: string(body)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Service: service, StatusCode: resp.StatusCode, Err: fmt.Errorf("reading response: %w", err)}
	}
	return body, nil
}
