package ext

import (
	"context"
	"fmt"
	"slices"

	"musicdl/models"
	"musicdl/util"

	"go.uber.org/zap"
)

// ByURL picks the extractor whose host matches the page URL,
// falling back to the default extractor.
func ByURL(pageURL string) *models.Extractor {
	host, err := util.ExtractBaseHost(pageURL)
	if err != nil {
		zap.S().Debugf("could not determine host of %s: %v", pageURL, err)
	}
	var fallback *models.Extractor
	for _, extractor := range List {
		if host != "" && slices.Contains(extractor.Host, host) {
			return extractor
		}
		if extractor.IsDefault && fallback == nil {
			fallback = extractor
		}
	}
	return fallback
}

// Extract fetches the page and runs the matching extractor on it.
func Extract(
	ctx context.Context,
	client models.HTTPClient,
	pageURL string,
) (*models.Extractor, *models.TrackInfo, error) {
	extractor := ByURL(pageURL)
	if extractor == nil {
		return nil, nil, fmt.Errorf("no extractor for %s", pageURL)
	}
	zap.S().Debugf("using extractor %s", extractor.CodeName)

	page, err := util.FetchPage(ctx, client, pageURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	info, err := extractor.Run(&models.ExtractContext{
		PageURL:       pageURL,
		Page:          page,
		MatchedGroups: matchGroups(extractor, pageURL),
		Extractor:     extractor,
	})
	if err != nil {
		return nil, nil, err
	}
	return extractor, info, nil
}

func matchGroups(extractor *models.Extractor, pageURL string) map[string]string {
	groups := make(map[string]string)
	if extractor.URLPattern == nil {
		return groups
	}
	matches := extractor.URLPattern.FindStringSubmatch(pageURL)
	if matches == nil {
		return groups
	}
	for i, name := range extractor.URLPattern.SubexpNames() {
		if name != "" {
			groups[name] = matches[i]
		}
	}
	groups["match"] = matches[0]
	return groups
}
