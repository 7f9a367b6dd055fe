package config

import (
	"context"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload" // Auto-load .env file
	"golang.org/x/net/proxy"
)

const (
	// Server
	DefaultPort = 3001

	// Download defaults
	DefaultQuality = 720
	DefaultFormat  = "mp4"

	// Upstream resolution
	ResolveTimeout = 15 * time.Second

	// YouTube Data API
	DataAPIBase    = "https://www.googleapis.com/youtube/v3"
	DataAPITimeout = 10 * time.Second

	// Browse defaults
	DefaultMaxResults = 20
	MaxMaxResults     = 50
	DefaultRegion     = "IN"

	// Request ID (log tags)
	RequestIDLength = 8
)

// Port returns the listen port, overridable via PORT env
func Port() int {
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			return p
		}
	}
	return DefaultPort
}

// DataAPIKey is the server-side YouTube Data API key.
// Clients may override it per-request via the X-Api-Key header.
func DataAPIKey() string {
	return os.Getenv("YOUTUBE_API_KEY")
}

// HTTP Clients (reuse connections via pooling)
var (
	UpstreamClient *http.Client
	MetadataClient *http.Client
)

// Transport for upstream byte streams (gzip disabled for raw streaming)
var upstreamTransport = &http.Transport{
	DialContext:         dialContext(),
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     90 * time.Second,
	DisableCompression:  true, // No gzip for media bytes - save CPU
}

// Transport for the Data API
var metadataTransport = &http.Transport{
	DialContext:         dialContext(),
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     90 * time.Second,
}

// dialContext returns a dialer routed through SOCKS5_PROXY when set
func dialContext() func(ctx context.Context, network, addr string) (net.Conn, error) {
	proxyAddr := os.Getenv("SOCKS5_PROXY")
	if proxyAddr == "" {
		d := &net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}
		return d.DialContext
	}
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		dialer, err := proxy.SOCKS5("tcp", proxyAddr, nil, proxy.Direct)
		if err != nil {
			return nil, err
		}
		return dialer.Dial(network, addr)
	}
}

func init() {
	// No overall timeout on UpstreamClient: it carries whole media streams.
	// The resolution phase is bounded per-request by ResolveTimeout instead.
	UpstreamClient = &http.Client{
		Transport: upstreamTransport,
	}
	MetadataClient = &http.Client{
		Transport: metadataTransport,
		Timeout:   DataAPITimeout,
	}
}
