package engine

// --- Canonical extraction records ---

// SearchResultItem is one discovered video in a search-results page.
// ID is always non-empty; every other string field falls back to a default
// ("Unknown", "00:00:00", "0d") when the source does not carry it.
type SearchResultItem struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	Thumbnail         string `json:"thumbnail"`
	DurationText      string `json:"duration_text"`
	ViewCount         int    `json:"view_count"`
	PublishedRelative string `json:"published_relative"` // compact token: 3y, 2mo, 5d, 1min ...
	OwnerChannel      string `json:"owner_channel"`
	OwnerThumbnail    string `json:"owner_thumbnail"`
}

// VideoMetadata is the record extracted from a single video page.
type VideoMetadata struct {
	Title         string `json:"title"`
	Description   string `json:"description"` // markup stripped, line breaks kept as \n
	ViewCount     int    `json:"view_count"`
	PublishedDate string `json:"published_date"` // textual, prefix words removed, not parsed
}

// --- MCP tool I/O ---

type VideoSearchInput struct {
	Query     string `json:"query" jsonschema:"Search query"`
	Page      int    `json:"page,omitempty" jsonschema:"Results page number (default: 1)"`
	ForceJSON *bool  `json:"force_json,omitempty" jsonschema:"Request the embedded JSON response shape instead of server-rendered markup (default: server setting)"`
}

type VideoSearchOutput struct {
	Query   string             `json:"query"`
	Page    int                `json:"page"`
	Mode    string             `json:"mode"` // json or markup: the engine that served the response
	Count   int                `json:"count"`
	Results []SearchResultItem `json:"results"`
}

type VideoPageInput struct {
	Video     string `json:"video" jsonschema:"Video id (11 chars) or any YouTube video URL"`
	ForceJSON *bool  `json:"force_json,omitempty" jsonschema:"Request the embedded JSON response shape instead of server-rendered markup (default: server setting)"`
	Format    string `json:"format,omitempty" jsonschema:"Description format: text (default) or markdown"`
}

type VideoPageOutput struct {
	ID    string        `json:"id"`
	URL   string        `json:"url"`
	Mode  string        `json:"mode"`
	Video VideoMetadata `json:"video"`
}

type VideoPagesInput struct {
	Videos    []string `json:"videos" jsonschema:"Video ids or URLs (max 10)"`
	ForceJSON *bool    `json:"force_json,omitempty" jsonschema:"Request the embedded JSON response shape instead of server-rendered markup (default: server setting)"`
}

type VideoPagesOutput struct {
	Videos []VideoPageOutput `json:"videos"`
	Errors map[string]string `json:"errors,omitempty"` // input → error message
}
