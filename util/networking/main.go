package networking

import (
	"net"
	"net/http"
	"time"

	"musicdl/models"
)

const ChromeUA = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/145.0.0.0 Safari/537.36"

// Client applies a fixed set of headers and cookies to every request
// it sends. it replaces process-wide session state: callers build one
// per run and pass it to each stage.
type Client struct {
	client  *http.Client
	headers map[string]string
	cookies []*http.Cookie
}

func NewClient(cfg *models.EnvConfig, cookies []*http.Cookie) *Client {
	transport := GetBaseTransport()
	if rules := newProxyRules(cfg); rules != nil {
		transport.Proxy = rules.proxy
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = ChromeUA
	}
	// response bodies are bounded by the callers
	if cfg.Timeout > 0 {
		transport.ResponseHeaderTimeout = cfg.Timeout
	}
	return &Client{
		client: &http.Client{
			Transport: transport,
		},
		headers: map[string]string{
			"User-Agent":      userAgent,
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.9",
		},
		cookies: cookies,
	}
}

// Do sends the request, filling in the shared headers the
// request does not already set.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	for key, value := range c.headers {
		if req.Header.Get(key) == "" {
			req.Header.Set(key, value)
		}
	}
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}
	return c.client.Do(req)
}

func GetBaseTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConnsPerHost:   10,
		ResponseHeaderTimeout: 30 * time.Second,
	}
}
