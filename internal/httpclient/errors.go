package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/okairos/llm-bridge-api/pkg/api"
)

// ClassifyStatus maps a non-2xx HTTP status to the provider-independent error
// taxonomy. The mapping is a pure function of the status code.
func ClassifyStatus(status int, body []byte, url string) *api.Error {
	detail := fmt.Sprintf("status %d from %s", status, url)
	if len(body) > 0 {
		detail = fmt.Sprintf("%s: %s", detail, truncate(body, 2048))
	}

	var kind api.ErrorKind
	switch status {
	case http.StatusUnauthorized:
		kind = api.ErrAuthentication
	case http.StatusTooManyRequests:
		kind = api.ErrRateLimit
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		kind = api.ErrTimeout
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		kind = api.ErrUpstreamService
	default:
		kind = api.ErrGenericProvider
	}

	return api.StatusError(kind, status, detail)
}

// ClassifyTransportError maps I/O-level failures (connection refused, DNS,
// broken pipe, context expiry) to the taxonomy.
func ClassifyTransportError(err error, url string) *api.Error {
	if err == nil {
		return api.NewError(api.ErrNetwork, "connection closed unexpectedly: "+url)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return api.WrapError(api.ErrTimeout, "request deadline exceeded: "+url, err)
	}
	if errors.Is(err, context.Canceled) {
		return api.WrapError(api.ErrNetwork, "request canceled: "+url, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return api.WrapError(api.ErrTimeout, "network timeout: "+url, err)
	}

	return api.WrapError(api.ErrNetwork, fmt.Sprintf("request to %s failed: %v", url, err), err)
}

func wrapParseError(url string, err error) *api.Error {
	return api.WrapError(api.ErrResponseParse, "failed to decode response from "+url, err)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
