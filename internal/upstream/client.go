// Package upstream issues the outbound calls to the inference and agent APIs.
//
// Callers own the deadline: every call takes a context that should already
// carry the endpoint's timeout. Failures come back as *Error so the HTTP layer
// can map them onto a status without inspecting transport internals.
package upstream

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
)

// maxErrorBody caps how much of a failed upstream response is surfaced.
const maxErrorBody = 64 * 1024

// Kind classifies an upstream failure.
type Kind int

const (
	// KindTransport covers network, DNS, TLS and request construction failures.
	KindTransport Kind = iota
	// KindTimeout means the call's deadline elapsed.
	KindTimeout
	// KindStatus means the upstream answered with a non-2xx status.
	KindStatus
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindStatus:
		return "status"
	default:
		return "transport"
	}
}

// Error describes a failed upstream exchange.
type Error struct {
	Kind   Kind
	Status int    // upstream status for KindStatus
	Body   string // upstream body, or status text if it could not be read
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("upstream status %d: %s", e.Status, e.Body)
	default:
		return fmt.Sprintf("upstream %s: %v", e.Kind, e.Err)
	}
}

// Unwrap exposes the underlying error for errors.Is / errors.As checks.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewHTTPClient builds the client shared by all upstream calls.
// Compression is disabled so relayed bytes match the upstream's.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           (&net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
			DisableCompression:    true,
		},
	}
}

// Classify wraps err as an *Error, recognising deadline expiry.
// Errors that already are *Error pass through unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var ue *Error
	if errors.As(err, &ue) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, Err: err}
	}
	return &Error{Kind: KindTransport, Err: err}
}

// postJSON sends payload to url with a bearer token. On a 2xx status the
// response is returned for the caller to consume and close; on anything else
// the body is drained into an *Error.
func postJSON(ctx context.Context, client *http.Client, url, token string, payload any, accept string) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Kind: KindTransport, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, Classify(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, statusError(resp)
	}
	return resp, nil
}

// statusError reads a bounded amount of a failed response body.
func statusError(resp *http.Response) *Error {
	e := &Error{Kind: KindStatus, Status: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(bytes.TrimSpace(data)) == 0 {
		e.Body = http.StatusText(resp.StatusCode)
		if e.Body == "" {
			e.Body = resp.Status
		}
		return e
	}
	e.Body = string(data)
	return e
}
