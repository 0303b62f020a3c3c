package httpclient_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okairos/llm-bridge-api/internal/httpclient"
	"github.com/okairos/llm-bridge-api/pkg/api"
	"github.com/stretchr/testify/assert"
)

func TestClassifyStatus(t *testing.T) {
	cases := []struct {
		status int
		kind   api.ErrorKind
	}{
		{http.StatusUnauthorized, api.ErrAuthentication},
		{http.StatusTooManyRequests, api.ErrRateLimit},
		{http.StatusRequestTimeout, api.ErrTimeout},
		{http.StatusGatewayTimeout, api.ErrTimeout},
		{http.StatusInternalServerError, api.ErrUpstreamService},
		{http.StatusBadGateway, api.ErrUpstreamService},
		{http.StatusServiceUnavailable, api.ErrUpstreamService},
		{http.StatusTeapot, api.ErrGenericProvider},
		{http.StatusNotFound, api.ErrGenericProvider},
	}

	for _, tc := range cases {
		err := httpclient.ClassifyStatus(tc.status, nil, "https://upstream.test")
		assert.Equal(t, tc.kind, err.Kind, "status %d", tc.status)
		assert.Equal(t, tc.status, err.HTTPStatus)
	}
}

func TestClassifyStatus_IncludesBodySnippet(t *testing.T) {
	err := httpclient.ClassifyStatus(429, []byte(`{"error":"quota exhausted"}`), "https://upstream.test")
	assert.Contains(t, err.Message, "quota exhausted")
}

func TestClassifyTransportError(t *testing.T) {
	err := httpclient.ClassifyTransportError(context.DeadlineExceeded, "u")
	assert.Equal(t, api.ErrTimeout, err.Kind)

	err = httpclient.ClassifyTransportError(context.Canceled, "u")
	assert.Equal(t, api.ErrNetwork, err.Kind)

	err = httpclient.ClassifyTransportError(errors.New("connection refused"), "u")
	assert.Equal(t, api.ErrNetwork, err.Kind)
}

func TestSendRequest_ErrorStatusClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"slow down"}`))
	}))
	defer srv.Close()

	var out map[string]any
	err := httpclient.SendRequest(context.Background(), srv.Client(), http.MethodPost, srv.URL, nil, map[string]any{"x": 1}, &out)
	assert.True(t, api.IsKind(err, api.ErrRateLimit))
}

func TestSendRequest_NetworkErrorClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // closed server refuses connections

	var out map[string]any
	err := httpclient.SendRequest(context.Background(), http.DefaultClient, http.MethodGet, srv.URL, nil, nil, &out)
	assert.True(t, api.IsKind(err, api.ErrNetwork))
}

func TestSendRequest_MalformedBodyIsParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"truncated":`))
	}))
	defer srv.Close()

	var out map[string]any
	err := httpclient.SendRequest(context.Background(), srv.Client(), http.MethodGet, srv.URL, nil, nil, &out)
	assert.True(t, api.IsKind(err, api.ErrResponseParse))
}

func TestStreamRequest_DeliversLines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("data: one\n\ndata: two\n\n"))
	}))
	defer srv.Close()

	var lines []string
	err := httpclient.StreamRequest(context.Background(), srv.Client(), http.MethodPost, srv.URL, nil, nil,
		func(line string) error {
			lines = append(lines, line)
			return nil
		})

	assert.NoError(t, err)
	assert.Equal(t, []string{"data: one", "data: two"}, lines)
}

func TestStreamRequest_ContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		_, _ = w.Write([]byte("data: first\n\n"))
		flusher.Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())

	err := httpclient.StreamRequest(ctx, httpclient.NewStreaming(), http.MethodPost, srv.URL, nil, nil,
		func(line string) error {
			cancel()
			return nil
		})

	var apiErr *api.Error
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, api.ErrNetwork, apiErr.Kind)
}
