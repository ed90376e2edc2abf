package models

import "regexp"

type Extractor struct {
	Name       string
	CodeName   string
	URLPattern *regexp.Regexp
	Host       []string // registrable domain labels, e.g. "suno"
	IsDRM      bool     // tracks may fall back to protected streaming
	IsDefault  bool     // used when no other extractor matches

	Run func(*ExtractContext) (*TrackInfo, error)
}

type ExtractContext struct {
	PageURL       string
	Page          []byte
	MatchedGroups map[string]string
	Extractor     *Extractor
}
