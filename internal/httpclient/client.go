package httpclient

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// Deployment-tunable transport defaults. Streaming clients skip the overall
// timeout so long generations are bounded by context, not the read deadline.
const (
	DefaultConnectTimeout = 30 * time.Second
	DefaultReadTimeout    = 120 * time.Second
	DefaultWriteTimeout   = 30 * time.Second
)

// HTTPClient is the transport seam; *http.Client satisfies it and tests
// substitute counters or canned responders.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

func newTransport() *http.Transport {
	return &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: DefaultConnectTimeout,
		}).DialContext,
		TLSHandshakeTimeout:   DefaultWriteTimeout,
		ResponseHeaderTimeout: DefaultWriteTimeout,
		IdleConnTimeout:       90 * time.Second,
	}
}

// New returns a client for synchronous exchanges: the whole round trip is
// bounded by the read timeout.
func New() *http.Client {
	return &http.Client{
		Timeout:   DefaultReadTimeout,
		Transport: newTransport(),
	}
}

// NewStreaming returns a client for SSE exchanges. No overall timeout; the
// caller cancels via context or by closing the body.
func NewStreaming() *http.Client {
	return &http.Client{
		Transport: newTransport(),
	}
}

// SendRequest marshals body, performs the exchange and decodes a 2xx JSON
// response into response. Non-2xx statuses and I/O failures come back already
// classified into the shared error taxonomy.
func SendRequest(ctx context.Context, client HTTPClient, method, url string, headers map[string]string, body any, response any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return ClassifyTransportError(err, url)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return ClassifyStatus(resp.StatusCode, respBody, url)
	}

	if response != nil {
		if err := json.NewDecoder(resp.Body).Decode(response); err != nil {
			return wrapParseError(url, err)
		}
	}

	return nil
}

type LineProcessor func(line string) error

// StreamRequest performs an SSE exchange, invoking processLine for every
// non-blank line of the body in arrival order on the goroutine reading the
// transport. A severed connection or cancelled context surfaces as a
// classified error; it never hangs past the context.
func StreamRequest(ctx context.Context, client HTTPClient, method, url string, headers map[string]string, body any, processLine LineProcessor) error {
	var bodyReader *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	} else {
		bodyReader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return ClassifyTransportError(err, url)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return ClassifyStatus(resp.StatusCode, respBody, url)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		if err := processLine(line); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return ClassifyTransportError(cerr, url)
		}
		return ClassifyTransportError(err, url)
	}

	return nil
}
