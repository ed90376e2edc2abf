package networking

import (
	"net/http"
	"net/url"
	"strings"

	"musicdl/models"

	"go.uber.org/zap"
)

// proxyRules routes requests through the configured proxies. hosts on
// the bypass list, or under a domain on it, connect directly.
type proxyRules struct {
	httpProxy  *url.URL
	httpsProxy *url.URL
	bypass     []string
}

// newProxyRules returns nil when no usable proxy is configured.
func newProxyRules(cfg *models.EnvConfig) *proxyRules {
	rules := &proxyRules{
		httpProxy:  parseProxyURL("HTTP", cfg.HTTPProxy),
		httpsProxy: parseProxyURL("HTTPS", cfg.HTTPSProxy),
	}
	if rules.httpProxy == nil && rules.httpsProxy == nil {
		return nil
	}
	for _, entry := range strings.Split(cfg.NoProxy, ",") {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry != "" {
			rules.bypass = append(rules.bypass, entry)
		}
	}
	return rules
}

func parseProxyURL(kind string, raw string) *url.URL {
	if raw == "" {
		return nil
	}
	proxyURL, err := url.Parse(raw)
	if err != nil || proxyURL.Host == "" {
		zap.S().Warnf("ignoring invalid %s proxy URL %q", kind, raw)
		return nil
	}
	return proxyURL
}

// proxy has the signature of http.Transport.Proxy.
func (r *proxyRules) proxy(req *http.Request) (*url.URL, error) {
	if r.bypasses(req.URL.Hostname()) {
		return nil, nil
	}
	if req.URL.Scheme == "http" && r.httpProxy != nil {
		return r.httpProxy, nil
	}
	if r.httpsProxy != nil {
		return r.httpsProxy, nil
	}
	return r.httpProxy, nil
}

func (r *proxyRules) bypasses(host string) bool {
	host = strings.ToLower(host)
	for _, entry := range r.bypass {
		if entry == "*" {
			return true
		}
		domain := strings.TrimPrefix(entry, ".")
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}
