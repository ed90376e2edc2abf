package util

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/aki237/nscjar"
	"github.com/pkg/errors"
	"golang.org/x/net/publicsuffix"
)

var unsafeFilenameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// SafeFilename builds "<artist> - <title>.<ext>" with characters
// reserved by common filesystems replaced by underscores.
func SafeFilename(artist string, title string, ext string) string {
	name := fmt.Sprintf("%s - %s.%s", artist, title, ext)
	return unsafeFilenameChars.ReplaceAllString(name, "_")
}

// ParseCookieFile reads a Netscape cookie jar.
func ParseCookieFile(path string) ([]*http.Cookie, error) {
	cookieFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cookie file: %w", err)
	}
	defer cookieFile.Close()

	var parser nscjar.Parser
	cookies, err := parser.Unmarshal(cookieFile)
	if err != nil {
		return nil, fmt.Errorf("failed to parse cookie file: %w", err)
	}
	return cookies, nil
}

// ExtractBaseHost returns the first label of the registrable
// domain, e.g. "suno" for https://www.suno.com/song/x.
func ExtractBaseHost(rawURL string) (string, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse URL: %w", err)
	}
	host := parsedURL.Hostname()
	if host == "" {
		return "", errors.New("url has no host")
	}
	etld, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return "", fmt.Errorf("failed to get eTLD+1: %w", err)
	}
	parts := strings.Split(etld, ".")
	if len(parts) == 0 {
		return "", errors.New("invalid domain structure")
	}
	return parts[0], nil
}
