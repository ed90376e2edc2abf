package suno

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"musicdl/models"
)

const cdnURLFormat = "https://cdn1.suno.ai/%s.mp3"

var (
	titlePattern       = regexp.MustCompile(`property="og:title"\s+content="([^"]*)"`)
	audioPattern       = regexp.MustCompile(`property="og:audio"\s+content="([^"]*)"`)
	descriptionPattern = regexp.MustCompile(`name="description"\s+content="([^"]*)"`)
	artistPattern      = regexp.MustCompile(` by (.+?)(?:\s*\(@.+?\))?\.?\s*(?:Listen|$)`)
)

// Extractor reads Open Graph tags. suno serves plain MP3 files only.
var Extractor = &models.Extractor{
	Name:       "Suno",
	CodeName:   "suno",
	URLPattern: regexp.MustCompile(`/song/(?P<id>[a-f0-9-]+)`),
	Host:       []string{"suno"},

	Run: func(ctx *models.ExtractContext) (*models.TrackInfo, error) {
		return ExtractTrackInfo(string(ctx.Page), ctx.MatchedGroups["id"]), nil
	},
}

func ExtractTrackInfo(page string, songID string) *models.TrackInfo {
	info := &models.TrackInfo{
		ID:     models.UnknownField,
		Title:  models.UnknownField,
		Artist: models.UnknownField,
	}
	if songID != "" {
		info.ID = songID
	}
	if match := titlePattern.FindStringSubmatch(page); match != nil {
		info.Title = html.UnescapeString(match[1])
	}
	if match := descriptionPattern.FindStringSubmatch(page); match != nil {
		description := html.UnescapeString(match[1])
		if artist := artistPattern.FindStringSubmatch(description); artist != nil {
			info.Artist = strings.TrimSpace(artist[1])
		}
	}
	if match := audioPattern.FindStringSubmatch(page); match != nil && match[1] != "" {
		info.SourcePath = html.UnescapeString(match[1])
	} else {
		info.SourcePath = fmt.Sprintf(cdnURLFormat, info.ID)
	}
	return info
}
