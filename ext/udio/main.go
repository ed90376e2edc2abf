package udio

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"musicdl/models"
	"musicdl/util"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	contextBefore = 2000
	contextAfter  = 500
)

var (
	nextPayloadPattern = regexp.MustCompile(`self\.__next_f\.push\(\s*\[.*?,\s*"((?:[^"\\]|\\.)*)"\s*\]\s*\)`)
	songPathPattern    = regexp.MustCompile(`"song_path"\s*:\s*"([^"]+)"`)
)

// Extractor reads track metadata from a server-rendered page payload.
// it is the fallback for any URL no other extractor claims.
var Extractor = &models.Extractor{
	Name:       "Udio",
	CodeName:   "udio",
	URLPattern: regexp.MustCompile(`https?://(?:www\.)?udio\.com/songs/(?P<id>[\w-]+)`),
	Host:       []string{"udio"},
	IsDRM:      true,
	IsDefault:  true,

	Run: func(ctx *models.ExtractContext) (*models.TrackInfo, error) {
		info := ExtractTrackInfo(string(ctx.Page))
		if info == nil {
			return nil, util.ErrMetadataNotFound
		}
		zap.S().Debugf("song path: %s", info.SourcePath)
		return info, nil
	},
}

// ExtractTrackInfo searches the decoded page payload first and the raw
// HTML second. nil means no song path was found.
func ExtractTrackInfo(html string) *models.TrackInfo {
	if info := findTrackInText(decodePayload(html)); info != nil {
		return info
	}
	return findTrackInText(html)
}

// decodePayload concatenates the string literals pushed into the
// streamed page payload.
func decodePayload(html string) string {
	var payload strings.Builder
	for _, match := range nextPayloadPattern.FindAllStringSubmatch(html, -1) {
		decoded := gjson.Parse(`"` + match[1] + `"`)
		if decoded.Type != gjson.String {
			continue
		}
		payload.WriteString(decoded.String())
	}
	return payload.String()
}

func findTrackInText(text string) *models.TrackInfo {
	loc := songPathPattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return nil
	}
	songPath := unescape(unescape(text[loc[2]:loc[3]]))

	start := max(0, loc[0]-contextBefore)
	end := min(len(text), loc[0]+contextAfter)
	window := text[start:end]

	return &models.TrackInfo{
		ID:         jsonString(window, "id"),
		Title:      jsonString(window, "title"),
		Artist:     jsonString(window, "artist"),
		SourcePath: songPath,
	}
}

func jsonString(text string, key string) string {
	pattern := regexp.MustCompile(fmt.Sprintf(`"%s"\s*:\s*"([^"]*)"`, regexp.QuoteMeta(key)))
	if match := pattern.FindStringSubmatch(text); match != nil {
		return match[1]
	}
	return models.UnknownField
}

func unescape(value string) string {
	unescaped, err := url.PathUnescape(value)
	if err != nil {
		return value
	}
	return unescaped
}
