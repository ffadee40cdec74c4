package network

import (
	"fmt"
	"net/http"
	"time"

	"golang.org/x/net/proxy"

	"github.com/billmal071/epubpress/internal/config"
)

// NewHTTPClient builds the transport used to talk to the publishing service.
// When a proxy is configured all traffic goes through it over SOCKS5.
func NewHTTPClient(cfg config.NetworkConfig) (*http.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		IdleConnTimeout:     30 * time.Second,
		MaxIdleConnsPerHost: 5,
	}

	if cfg.Proxy != "" {
		dialer, err := proxy.SOCKS5("tcp", cfg.Proxy, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("failed to set up SOCKS5 proxy %s: %w", cfg.Proxy, err)
		}
		ctxDialer, ok := dialer.(proxy.ContextDialer)
		if !ok {
			return nil, fmt.Errorf("SOCKS5 dialer for %s does not support contexts", cfg.Proxy)
		}
		transport.Proxy = nil
		transport.DialContext = ctxDialer.DialContext
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}, nil
}
