package googlebooks

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// newIPv4TestServer starts a test server bound to IPv4 loopback to avoid IPv6 listener issues.
func newIPv4TestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()

	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)

	server := httptest.NewUnstartedServer(handler)
	server.Listener = listener
	server.Start()

	t.Cleanup(server.Close)
	return server
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/volumes", handler)
	server := newIPv4TestServer(t, mux)

	opts = append([]Option{WithBaseURL(server.URL), WithHTTPClient(server.Client())}, opts...)
	return NewClient(opts...)
}
