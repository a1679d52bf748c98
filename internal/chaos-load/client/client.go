// Package client builds the shared *http.Client used by every worker in a
// run, encoding the pooling, timeout, HTTP-version, redirect and proxy
// policy described by a LoadTestConfig.
package client

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/http2"

	"github.com/neogan/sre-toolkit/internal/chaos-load/model"
)

const (
	tcpKeepAlive       = 15 * time.Second
	connectTimeout     = 30 * time.Second
	idlePoolTimeout    = 100 * time.Millisecond
	maxPoolSize        = 500
)

// Build constructs a reusable HTTP client for the given config and resolved
// concurrency. The client is safe to share read-only across every worker
// goroutine in the run.
func Build(cfg model.LoadTestConfig, concurrency uint32) (*http.Client, error) {
	proxyURL, err := resolveProxy(cfg.ProxyURL)
	if err != nil {
		return nil, model.InvalidConfig("invalid proxy_url: %s", err)
	}

	dialer := &net.Dialer{
		Timeout:   connectTimeout,
		KeepAlive: tcpKeepAlive,
	}

	var transport http.RoundTripper
	switch {
	case cfg.DisableKeepAlive:
		// Connection: close is only meaningful on HTTP/1.1, so keep-alive
		// being disabled forces HTTP/1.1 regardless of UseHTTP2.
		t := &http.Transport{
			DialContext:         dialer.DialContext,
			DisableKeepAlives:   true,
			MaxIdleConnsPerHost: 0,
			MaxIdleConns:        0,
			Proxy:               proxyFunc(proxyURL),
			TLSNextProto:        map[string]func(string, *tls.Conn) http.RoundTripper{},
		}
		transport = t
	case cfg.UseHTTP2:
		// HTTP/2 with prior knowledge: skip the usual ALPN/upgrade dance by
		// dialing a plain TCP connection and handing it straight to the h2
		// transport, for both http:// and https:// targets. http2.Transport
		// has no Proxy field, so a configured proxy_url is honored by
		// CONNECT-tunneling through it before handing the tunnel to h2c.
		transport = &http2.Transport{
			AllowHTTP: true,
			DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
				return dialThroughProxy(ctx, dialer, proxyURL, network, addr)
			},
		}
	default:
		poolSize := int(concurrency)
		if poolSize > maxPoolSize {
			poolSize = maxPoolSize
		}
		t := &http.Transport{
			DialContext:         dialer.DialContext,
			MaxIdleConnsPerHost: poolSize,
			MaxIdleConns:        poolSize,
			// Deliberately shorter than typical server idle thresholds so
			// the client closes first - trades some reuse for eliminating
			// "stale connection from pool" failures.
			IdleConnTimeout: idlePoolTimeout,
			Proxy:           proxyFunc(proxyURL),
			TLSNextProto:    map[string]func(string, *tls.Conn) http.RoundTripper{},
		}
		transport = t
	}

	httpClient := &http.Client{
		Transport: transport,
	}

	if cfg.TimeoutSecs > 0 {
		httpClient.Timeout = time.Duration(cfg.TimeoutSecs * float64(time.Second))
	}

	if !cfg.FollowRedirects {
		httpClient.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	return httpClient, nil
}

// resolveProxy parses proxy_url, prefixing "http://" when the scheme is
// missing (a bare "host:port" is accepted). Empty input means no proxy.
func resolveProxy(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, nil
	}
	candidate := raw
	if !strings.Contains(candidate, "://") {
		candidate = "http://" + candidate
	}
	return url.Parse(candidate)
}

// proxyFunc is consulted by the HTTP/1.1 http.Transport paths directly; the
// http2.Transport path has no equivalent field and instead tunnels through
// dialThroughProxy below.
func proxyFunc(proxyURL *url.URL) func(*http.Request) (*url.URL, error) {
	if proxyURL == nil {
		return nil
	}
	return http.ProxyURL(proxyURL)
}

// dialThroughProxy dials addr, routing through proxyURL with an HTTP CONNECT
// tunnel when one is configured. The returned connection is otherwise a bare
// TCP connection, matching what the prior-knowledge h2c path expects.
func dialThroughProxy(ctx context.Context, dialer *net.Dialer, proxyURL *url.URL, network, addr string) (net.Conn, error) {
	if proxyURL == nil {
		return dialer.DialContext(ctx, network, addr)
	}

	conn, err := dialer.DialContext(ctx, network, proxyURL.Host)
	if err != nil {
		return nil, err
	}

	connectReq := &http.Request{
		Method: http.MethodConnect,
		URL:    &url.URL{Opaque: addr},
		Host:   addr,
		Header: make(http.Header),
	}
	if proxyURL.User != nil {
		username := proxyURL.User.Username()
		password, _ := proxyURL.User.Password()
		auth := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
		connectReq.Header.Set("Proxy-Authorization", "Basic "+auth)
	}
	if err := connectReq.Write(conn); err != nil {
		conn.Close()
		return nil, err
	}

	resp, err := http.ReadResponse(bufio.NewReader(conn), connectReq)
	if err != nil {
		conn.Close()
		return nil, err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		conn.Close()
		return nil, fmt.Errorf("proxy CONNECT to %s failed: %s", addr, resp.Status)
	}
	return conn, nil
}
