// Package gateway holds the HTTP plumbing shared by the patient and
// inventory service clients.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"pharmasales/m/domain"
	"pharmasales/m/internal/config"
)

// ErrNotFound is returned by Do for a 404 response. Clients translate it to
// their own domain sentinel.
var ErrNotFound = errors.New("resource not found")

// StatusError is an unexpected non-2xx, non-404, non-5xx response.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s returned status %d: %s", e.Method, e.URL, e.Code, e.Body)
}

// NewHTTPClient builds a client honouring the upstream connect and read
// timeouts. The overall deadline is their sum.
func NewHTTPClient(up config.Upstream) *http.Client {
	dialer := &net.Dialer{Timeout: up.ConnectTimeout, KeepAlive: 30 * time.Second}
	return &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           dialer.DialContext,
			TLSHandshakeTimeout:   up.ConnectTimeout,
			ResponseHeaderTimeout: up.ReadTimeout,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
		},
		Timeout: up.ConnectTimeout + up.ReadTimeout,
	}
}

// Do sends in (when non-nil) as JSON and decodes a 2xx body into out (when
// non-nil). It returns the response status alongside the error.
//
// Transport failures, timeouts and 5xx responses wrap
// domain.ErrUpstreamUnavailable; 404 returns ErrNotFound.
func Do(ctx context.Context, hc *http.Client, method, url string, in, out any) (int, error) {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w: %w", method, url, domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		drain(resp.Body)
		return resp.StatusCode, ErrNotFound
	case resp.StatusCode >= 500:
		drain(resp.Body)
		return resp.StatusCode, fmt.Errorf("%s %s returned status %d: %w", method, url, resp.StatusCode, domain.ErrUpstreamUnavailable)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return resp.StatusCode, &StatusError{Method: method, URL: url, Code: resp.StatusCode, Body: string(snippet)}
	}

	if out == nil {
		drain(resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return resp.StatusCode, fmt.Errorf("read %s: %w: %w", url, domain.ErrUpstreamUnavailable, err)
		}
		return resp.StatusCode, fmt.Errorf("decode %s: %w", url, err)
	}
	return resp.StatusCode, nil
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func drain(r io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r, 64<<10))
}
