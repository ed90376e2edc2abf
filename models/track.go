package models

import "musicdl/enums"

const UnknownField = "Unknown"

// TrackInfo is what an extractor pulls out of a track page.
type TrackInfo struct {
	ID         string
	Title      string
	Artist     string
	SourcePath string // advertised direct location, may be empty
}

func (info *TrackInfo) HasID() bool {
	return info.ID != "" && info.ID != UnknownField
}

// Source returns the direct reference advertised by the page.
// an empty source path means the track has no usable direct source.
func (info *TrackInfo) Source() *SourceReference {
	if info.SourcePath == "" {
		return nil
	}
	return &SourceReference{
		Kind:     enums.SourceKindDirect,
		Location: info.SourcePath,
	}
}

type SourceReference struct {
	Kind     enums.SourceKind
	Location string
}
