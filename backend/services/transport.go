// ABOUTME: HTTP transports for the auth and resource clients
// ABOUTME: Optional SSH+SOCKS5 jumpbox dialing, bearer and 401 interceptors, circuit breaker

package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	proxy "github.com/cloudfoundry/socks5-proxy"
	"github.com/sony/gobreaker"
)

// NewTransport returns the base transport shared by both clients.
// allProxy, when set, has the form ssh+socks5://user@host:port?private-key=/path/to/key
func NewTransport(allProxy string) (*http.Transport, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if allProxy == "" {
		return transport, nil
	}

	dial, err := socks5DialContext(allProxy)
	if err != nil {
		return nil, err
	}
	transport.Proxy = nil
	transport.DialContext = dial
	return transport, nil
}

// socks5DialContext creates a dial function that tunnels through an SSH jumpbox.
// The SSH connection is established lazily on first dial and then reused.
func socks5DialContext(allProxy string) (func(ctx context.Context, network, address string) (net.Conn, error), error) {
	proxyURL, err := url.Parse(strings.TrimPrefix(allProxy, "ssh+"))
	if err != nil {
		return nil, fmt.Errorf("parse API_ALL_PROXY: %w", err)
	}
	if proxyURL.Scheme != "socks5" {
		return nil, fmt.Errorf("API_ALL_PROXY must use ssh+socks5:// scheme, got %q", proxyURL.Scheme)
	}

	username := ""
	if proxyURL.User != nil {
		username = proxyURL.User.Username()
	}

	keyPath := proxyURL.Query().Get("private-key")
	if keyPath == "" {
		return nil, errors.New("API_ALL_PROXY missing required 'private-key' query param")
	}

	key, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("read SSH private key: %w", err)
	}

	socks5Proxy := proxy.NewSocks5Proxy(proxy.NewHostKey(), log.Default(), 1*time.Minute)

	var (
		dialer proxy.DialFunc
		mut    sync.Mutex
	)

	return func(ctx context.Context, network, address string) (net.Conn, error) {
		mut.Lock()
		if dialer == nil {
			d, err := socks5Proxy.Dialer(username, string(key), proxyURL.Host)
			if err != nil {
				mut.Unlock()
				return nil, fmt.Errorf("create SOCKS5 dialer: %w", err)
			}
			dialer = d
		}
		d := dialer
		mut.Unlock()

		return d(network, address)
	}, nil
}

// bearerTransport attaches the held token to every outbound request
type bearerTransport struct {
	next  http.RoundTripper
	store TokenStore
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, ok := t.store.GetToken(req.Context())
	if !ok {
		return t.next.RoundTrip(req)
	}

	authed := req.Clone(req.Context())
	authed.Header.Set("Authorization", "Bearer "+token)
	return t.next.RoundTrip(authed)
}

// unauthorizedTransport ends the session when the resource API answers 401
type unauthorizedTransport struct {
	next  http.RoundTripper
	store TokenStore
	nav   Navigator
}

func (t *unauthorizedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()

	slog.Info("Resource API rejected token, ending session", "path", req.URL.Path)
	if err := t.store.ClearToken(req.Context()); err != nil {
		slog.Warn("Failed to clear token after 401", "error", err)
	}

	if t.nav != nil && pathOnly(t.nav.CurrentPath()) != LoginPath {
		t.nav.Navigate(LoginPath)
	}

	return nil, ErrUnauthorized
}

var errUpstreamServer = errors.New("upstream server error")

// breakerTransport fails fast while the resource API keeps failing.
// Transport errors and 5xx responses count as failures; the response itself is still returned.
type breakerTransport struct {
	next http.RoundTripper
	cb   *gobreaker.CircuitBreaker
}

func (t *breakerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	result, err := t.cb.Execute(func() (interface{}, error) {
		resp, err := t.next.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			return resp, errUpstreamServer
		}
		return resp, nil
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	case errors.Is(err, errUpstreamServer):
		return result.(*http.Response), nil
	case err != nil:
		return nil, err
	}

	return result.(*http.Response), nil
}

// NewBreaker creates the resource API circuit breaker
func NewBreaker(name string, maxFailures int, openTimeout time.Duration) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(maxFailures)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

// pathOnly strips any query string from a navigation target
func pathOnly(target string) string {
	if i := strings.IndexAny(target, "?#"); i >= 0 {
		return target[:i]
	}
	return target
}
