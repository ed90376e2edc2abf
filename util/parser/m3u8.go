package parser

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"musicdl/models"
	"musicdl/util"

	"go.uber.org/zap"
)

const (
	manifestPathFormat    = "/api/v2/audio-stream/content/%s/manifest.m3u8"
	defaultInitPathFormat = "/api/v2/audio-stream/content/%s/init.mp4"

	segmentTag = "#EXTINF:"
)

var (
	keyIDPattern            = regexp.MustCompile(`KEYID=0x([0-9a-fA-F]+)`)
	protectionHeaderPattern = regexp.MustCompile(`URI="data:text/plain;base64,([A-Za-z0-9+/=]+)"`)
	initSegmentPattern      = regexp.MustCompile(`EXT-X-MAP:URI="([^"]+)"`)
)

// scanState tracks whether a segment announcement is waiting for its URI.
type scanState int

const (
	scanIdle scanState = iota
	scanAwaitingURI
)

type ManifestResolver struct {
	client       models.HTTPClient
	streamOrigin string
	siteOrigin   string
}

func NewManifestResolver(
	client models.HTTPClient,
	streamOrigin string,
	siteOrigin string,
) *ManifestResolver {
	return &ManifestResolver{
		client:       client,
		streamOrigin: streamOrigin,
		siteOrigin:   siteOrigin,
	}
}

func (r *ManifestResolver) ManifestURL(trackID string) string {
	return ResolveStreamURI(r.streamOrigin, fmt.Sprintf(manifestPathFormat, trackID))
}

// Resolve fetches and parses the manifest of a track. every segment
// URI of the result is absolute.
func (r *ManifestResolver) Resolve(
	ctx context.Context,
	trackID string,
) (*models.StreamManifest, error) {
	manifestURL := r.ManifestURL(trackID)
	zap.S().Debugf("manifest URL: %s", manifestURL)

	headers := map[string]string{}
	if r.siteOrigin != "" {
		headers["Origin"] = r.siteOrigin
	}
	resp, err := util.Request(ctx, r.client, http.MethodGet, manifestURL, nil, headers)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !util.IsSuccessStatus(resp.StatusCode) {
		return nil, &util.TransportError{URL: manifestURL, StatusCode: resp.StatusCode}
	}
	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &util.TransportError{URL: manifestURL, Err: err}
	}

	manifest, err := ParseManifest(trackID, content)
	if err != nil {
		return nil, err
	}
	manifest.InitSegmentURI = ResolveStreamURI(r.streamOrigin, manifest.InitSegmentURI)
	for i, uri := range manifest.MediaSegmentURIs {
		manifest.MediaSegmentURIs[i] = ResolveStreamURI(r.streamOrigin, uri)
	}
	return manifest, nil
}

// ParseManifest parses a playlist document. URIs are returned as written.
func ParseManifest(trackID string, content []byte) (*models.StreamManifest, error) {
	manifest := &models.StreamManifest{
		KeyID:          FallbackKeyID(trackID),
		InitSegmentURI: fmt.Sprintf(defaultInitPathFormat, trackID),
	}

	if match := keyIDPattern.FindSubmatch(content); match != nil {
		manifest.KeyID = strings.ToLower(string(match[1]))
	} else {
		zap.S().Debugf("manifest has no key id, using fallback %s", manifest.KeyID)
	}

	if match := protectionHeaderPattern.FindSubmatch(content); match != nil {
		header, err := base64.StdEncoding.DecodeString(string(match[1]))
		if err != nil {
			zap.S().Warnf("ignoring undecodable protection header: %v", err)
		} else {
			manifest.ProtectionHeader = header
		}
	}

	if match := initSegmentPattern.FindSubmatch(content); match != nil {
		manifest.InitSegmentURI = string(match[1])
	}

	segments, err := scanSegments(content)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return nil, &util.ManifestError{Reason: "no media segments found"}
	}
	manifest.MediaSegmentURIs = segments
	return manifest, nil
}

// scanSegments captures the first URI line after each segment
// announcement. comments and blank lines in between are skipped and
// repeated announcements without a URI collapse into one capture.
func scanSegments(content []byte) ([]string, error) {
	var segments []string
	state := scanIdle

	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, segmentTag):
			state = scanAwaitingURI
		case state == scanAwaitingURI && line != "" && !strings.HasPrefix(line, "#"):
			segments = append(segments, line)
			state = scanIdle
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &util.ManifestError{Reason: err.Error()}
	}
	return segments, nil
}

// FallbackKeyID derives a key id from the track id by stripping
// separators. it is a guess used for matching against license keys,
// not an authoritative id.
func FallbackKeyID(trackID string) string {
	return strings.ToLower(strings.ReplaceAll(trackID, "-", ""))
}

// ResolveStreamURI makes a manifest URI absolute against the
// streaming origin. absolute URIs are returned unchanged.
func ResolveStreamURI(origin string, uri string) string {
	if strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://") {
		return uri
	}
	root := strings.TrimRight(origin, "/")
	if originURL, err := url.Parse(origin); err == nil && originURL.Host != "" {
		root = originURL.Scheme + "://" + originURL.Host
	}
	if strings.HasPrefix(uri, "/") {
		return root + uri
	}
	return root + "/" + uri
}
