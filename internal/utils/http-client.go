package utils

import (
	"net/http"
	"net/url"
	"time"
)

type HTTPClientConfig struct {
	Timeout       time.Duration
	KATimeout     time.Duration
	ProxyURL      string
	ProxyUsername string
	ProxyPassword string
	UserAgent     string
	Headers       map[string]string
}

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
	SetHeader(key, value string)
}

// BenchHTTPClient wraps http.Client so every request carries the
// configured user agent and headers.
type BenchHTTPClient struct {
	client *http.Client
	config HTTPClientConfig
}

func NewBenchHTTPClient(cfg HTTPClientConfig) *BenchHTTPClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.KATimeout == 0 {
		cfg.KATimeout = 60 * time.Second
	}
	if cfg.Headers == nil {
		cfg.Headers = make(map[string]string)
	}
	transport := &http.Transport{
		IdleConnTimeout:     cfg.KATimeout,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		DisableCompression:  true,
		MaxConnsPerHost:     0,
	}
	if cfg.ProxyURL != "" {
		proxyURL, err := url.Parse(cfg.ProxyURL)
		if err == nil {
			if cfg.ProxyUsername != "" {
				if cfg.ProxyPassword != "" {
					proxyURL.User = url.UserPassword(cfg.ProxyUsername, cfg.ProxyPassword)
				} else {
					proxyURL.User = url.User(cfg.ProxyUsername)
				}
			}
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}
	return &BenchHTTPClient{
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		config: cfg,
	}
}

func (b *BenchHTTPClient) SetHeader(key, value string) {
	b.config.Headers[key] = value
}

func (b *BenchHTTPClient) Do(req *http.Request) (*http.Response, error) {
	if b.config.UserAgent != "" {
		req.Header.Set("User-Agent", b.config.UserAgent)
	} else {
		req.Header.Set("User-Agent", "benchfetch-CLI")
	}
	for k, v := range b.config.Headers {
		req.Header.Set(k, v)
	}
	return b.client.Do(req)
}
