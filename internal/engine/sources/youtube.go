// Package sources extracts video metadata from YouTube responses.
//
// YouTube implementation is split across files by responsibility:
//
//	youtube_detect.go    — response shape classification (embedded JSON vs markup)
//	youtube_json.go      — embedded state object extraction and path navigation
//	youtube_markup.go    — selector-based extraction from server-rendered pages
//	youtube_normalize.go — view counts, relative times, dates and durations
//	youtube_search.go    — platform client: URL building and page fetching
package sources

import (
	"errors"
	"log/slog"

	"github.com/anatolykoptev/go_tube/internal/engine"
)

// ParseSearchResults extracts the result list from a search response body.
// page is informational: it is logged but never changes the extraction.
// On success the slice is never nil.
func ParseSearchResults(body string, page int) ([]engine.SearchResultItem, error) {
	mode := DetectResponseMode(body)
	countMode(mode)

	var (
		items []engine.SearchResultItem
		err   error
	)
	if mode == ModeJSON {
		items, err = parseSearchJSON(body)
	} else {
		items, err = parseSearchMarkup(body)
	}
	if err != nil {
		countParseError(err)
		slog.Warn("youtube: search parse failed",
			slog.String("mode", mode.String()), slog.Int("page", page), slog.Any("error", err))
		return nil, err
	}

	slog.Debug("youtube: search parsed",
		slog.String("mode", mode.String()), slog.Int("page", page), slog.Int("results", len(items)))
	return items, nil
}

// ParseVideoPage extracts the single-video record from a watch page body.
func ParseVideoPage(body string) (engine.VideoMetadata, error) {
	mode := DetectResponseMode(body)
	countMode(mode)

	var (
		meta engine.VideoMetadata
		err  error
	)
	if mode == ModeJSON {
		meta, err = parseVideoPageJSON(body)
	} else {
		meta, err = parseVideoPageMarkup(body)
	}
	if err != nil {
		countParseError(err)
		slog.Warn("youtube: video page parse failed", slog.String("mode", mode.String()), slog.Any("error", err))
		return engine.VideoMetadata{}, err
	}
	return meta, nil
}

func countMode(mode ResponseMode) {
	if mode == ModeJSON {
		engine.IncrJSONResponses()
		return
	}
	engine.IncrMarkupResponses()
}

func countParseError(err error) {
	engine.IncrParseErrors()
	if errors.Is(err, ErrUnexpectedSchema) {
		engine.IncrSchemaDrift()
	}
}
