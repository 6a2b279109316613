package sources

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_tube/internal/engine"
)

// YouTube platform client: builds search and watch URLs, fetches them with the
// header set that selects the response shape, and hands the body to the engines.

var (
	videoIDRE     = regexp.MustCompile(`(?:youtube\.com/(?:watch\?(?:.*&)?v=|shorts/|embed/)|youtu\.be/)([a-zA-Z0-9_-]{11})`)
	bareVideoIDRE = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
)

// NormalizeVideoID accepts a bare 11-char video id or any YouTube URL form
// and returns the id, or "" if none can be found.
func NormalizeVideoID(input string) string {
	input = strings.TrimSpace(input)
	if bareVideoIDRE.MatchString(input) {
		return input
	}
	if m := videoIDRE.FindStringSubmatch(input); len(m) >= 2 {
		return m[1]
	}
	return ""
}

// SearchURL builds the results URL for query and page.
func SearchURL(query string, page int) string {
	q := url.Values{}
	q.Set("search_query", query)
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	return strings.TrimRight(engine.Cfg.YouTubeBaseURL, "/") + "/results?" + q.Encode()
}

// WatchURL builds the single-video page URL for id.
func WatchURL(id string) string {
	return strings.TrimRight(engine.Cfg.YouTubeBaseURL, "/") + "/watch?v=" + url.QueryEscape(id)
}

// requestHeaders selects the response shape: a desktop browser gets the
// script-tag payload, the crawler UA gets server-rendered markup.
func requestHeaders(forceJSON bool) map[string]string {
	if forceJSON {
		return engine.ChromeHeaders()
	}
	return map[string]string{
		"user-agent":      engine.UserAgentGooglebot,
		"accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"accept-language": "en-US,en;q=0.9",
	}
}

// fetchShape fetches pageURL asking for the chosen response shape. The JSON
// shape goes through the browser transport so headers and TLS fingerprint agree.
func fetchShape(ctx context.Context, pageURL string, forceJSON bool) (string, error) {
	headers := requestHeaders(forceJSON)
	if forceJSON {
		body, _, err := engine.FetchBrowserPage(ctx, pageURL, headers)
		return body, err
	}
	body, _, err := engine.FetchPage(ctx, pageURL, headers)
	return body, err
}

// SearchPage is one fetched and parsed search-results page.
type SearchPage struct {
	Query string
	Page  int
	Mode  ResponseMode
	Items []engine.SearchResultItem
}

// SearchVideos fetches one results page for query and extracts its items.
func SearchVideos(ctx context.Context, query string, page int, forceJSON bool) (SearchPage, error) {
	engine.IncrSearchRequests()

	body, err := fetchShape(ctx, SearchURL(query, page), forceJSON)
	if err != nil {
		return SearchPage{}, fmt.Errorf("youtube search %q: %w", query, err)
	}
	items, err := ParseSearchResults(body, page)
	if err != nil {
		return SearchPage{}, fmt.Errorf("youtube search %q: %w", query, err)
	}
	return SearchPage{
		Query: query,
		Page:  page,
		Mode:  DetectResponseMode(body),
		Items: items,
	}, nil
}

// VideoPage is one fetched and parsed single-video page.
type VideoPage struct {
	ID    string
	URL   string
	Mode  ResponseMode
	Video engine.VideoMetadata

	body string
}

// DescriptionMarkdown renders the description as Markdown. The embedded
// payload carries plain text only, so JSON pages return the description as is.
func (p VideoPage) DescriptionMarkdown() (string, error) {
	if p.Mode == ModeJSON || p.body == "" {
		return p.Video.Description, nil
	}
	return descriptionMarkdown(p.body)
}

// FetchVideo fetches the watch page of id and extracts its metadata.
func FetchVideo(ctx context.Context, id string, forceJSON bool) (VideoPage, error) {
	engine.IncrPageRequests()

	pageURL := WatchURL(id)
	body, err := fetchShape(ctx, pageURL, forceJSON)
	if err != nil {
		return VideoPage{}, fmt.Errorf("youtube video %s: %w", id, err)
	}
	meta, err := ParseVideoPage(body)
	if err != nil {
		return VideoPage{}, fmt.Errorf("youtube video %s: %w", id, err)
	}
	return VideoPage{
		ID:    id,
		URL:   pageURL,
		Mode:  DetectResponseMode(body),
		Video: meta,
		body:  body,
	}, nil
}
