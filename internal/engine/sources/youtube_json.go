package sources

import (
	"log/slog"
	"strings"

	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/tidwall/gjson"
)

// payloadSentinel terminates the embedded state object: the script tag closes and the next opens.
const payloadSentinel = ";</script><script"

// pathStep is one named accessor into the decoded payload.
type pathStep struct {
	name string // reported in UnexpectedSchemaError
	key  string // gjson key or array index
}

var searchResultsPath = []pathStep{
	{"contents", "contents"},
	{"twoColumnSearchResultsRenderer", "twoColumnSearchResultsRenderer"},
	{"primaryContents", "primaryContents"},
	{"sectionListRenderer", "sectionListRenderer"},
	{"contents", "contents"},
	{"contents[0]", "0"},
	{"itemSectionRenderer", "itemSectionRenderer"},
	{"contents", "contents"},
}

var watchPagePath = []pathStep{
	{"contents", "contents"},
	{"twoColumnWatchNextResults", "twoColumnWatchNextResults"},
	{"results", "results"},
	{"results", "results"},
	{"contents", "contents"},
}

// initialDataMarkers precede the page-state object. Watch pages also embed the
// player response, which opens with the same signature, so these are tried first.
var initialDataMarkers = []string{"var ytInitialData = ", `window["ytInitialData"] = `}

// extractPayload cuts the embedded state object out of body and validates it.
// Candidates are the marker-anchored object, then every signature occurrence in
// order; the first valid one carrying "contents" wins, else the first valid one.
func extractPayload(body string) (gjson.Result, error) {
	offsets := payloadOffsets(body)
	if len(offsets) == 0 {
		return gjson.Result{}, &MalformedPayloadError{Offset: -1}
	}

	var fallback gjson.Result
	found := false
	for _, start := range offsets {
		raw, ok := cutPayload(body[start:])
		if !ok {
			continue
		}
		root := gjson.Parse(raw)
		if root.Get("contents").Exists() {
			return root, nil
		}
		if !found {
			fallback, found = root, true
		}
	}
	if found {
		return fallback, nil
	}

	first := offsets[0]
	raw := body[first:]
	if end := strings.Index(raw, payloadSentinel); end >= 0 {
		raw = raw[:end]
	}
	return gjson.Result{}, &MalformedPayloadError{Offset: first, Size: len(raw)}
}

// payloadOffsets lists candidate object starts, marker-anchored ones first, without duplicates.
func payloadOffsets(body string) []int {
	var offsets []int
	seen := make(map[int]bool)
	add := func(i int) {
		if !seen[i] {
			seen[i] = true
			offsets = append(offsets, i)
		}
	}
	for _, marker := range initialDataMarkers {
		if i := strings.Index(body, marker+payloadSignature); i >= 0 {
			add(i + len(marker))
		}
	}
	for from := 0; from < len(body); {
		i := strings.Index(body[from:], payloadSignature)
		if i < 0 {
			break
		}
		add(from + i)
		from += i + len(payloadSignature)
	}
	return offsets
}

// cutPayload ends the object at the script sentinel, or by brace depth when the
// sentinel is absent or leaves trailing script behind.
func cutPayload(s string) (string, bool) {
	if end := strings.Index(s, payloadSentinel); end >= 0 {
		if raw := s[:end]; gjson.Valid(raw) {
			return raw, true
		}
	}
	if obj := extractJSON(s); obj != "" && gjson.Valid(obj) {
		return obj, true
	}
	return "", false
}

// extractJSON returns the complete JSON object starting at s[0] == '{' by tracking brace depth.
func extractJSON(s string) string {
	if len(s) == 0 || s[0] != '{' {
		return ""
	}
	depth := 0
	inStr, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return ""
}

// walkPath resolves steps one by one, naming the first one that is absent.
func walkPath(root gjson.Result, steps []pathStep) (gjson.Result, error) {
	cur := root
	for i, step := range steps {
		next := cur.Get(step.key)
		if !next.Exists() {
			return gjson.Result{}, &UnexpectedSchemaError{Step: step.name, Path: stepNames(steps[:i])}
		}
		cur = next
	}
	return cur, nil
}

func stepNames(steps []pathStep) []string {
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = s.name
	}
	return names
}

// parseSearchJSON projects the search-results payload into canonical items.
// Non-video entries and video entries without an id are skipped.
func parseSearchJSON(body string) ([]engine.SearchResultItem, error) {
	root, err := extractPayload(body)
	if err != nil {
		return nil, err
	}
	entries, err := walkPath(root, searchResultsPath)
	if err != nil {
		return nil, err
	}
	if !entries.IsArray() {
		return nil, &UnexpectedSchemaError{
			Step:   "contents",
			Path:   stepNames(searchResultsPath[:len(searchResultsPath)-1]),
			Detail: "expected a list of entries",
		}
	}

	items := make([]engine.SearchResultItem, 0)
	skipped := 0
	entries.ForEach(func(_, entry gjson.Result) bool {
		vr := entry.Get("videoRenderer")
		if !vr.Exists() {
			return true
		}
		id := strings.TrimSpace(vr.Get("videoId").String())
		if id == "" {
			skipped++
			return true
		}
		items = append(items, videoRendererItem(id, vr))
		return true
	})
	if skipped > 0 {
		slog.Debug("youtube: video entries without id skipped", slog.Int("count", skipped))
		engine.AddRowsSkipped(skipped)
	}
	return items, nil
}

// videoRendererItem maps one videoRenderer object through the defaults and normalizers.
func videoRendererItem(id string, vr gjson.Result) engine.SearchResultItem {
	ownerThumb := vr.Get("channelThumbnailSupportedRenderers.channelThumbnailWithLinkRenderer.thumbnail.thumbnails.0.url")
	item := engine.SearchResultItem{
		ID:                id,
		Title:             resultOr(vr.Get("title.runs.0.text"), unknownValue),
		Thumbnail:         resultOr(vr.Get("thumbnail.thumbnails.0.url"), unknownValue),
		DurationText:      defaultDuration,
		ViewCount:         ViewsToInt(vr.Get("viewCountText.simpleText").String()),
		PublishedRelative: defaultPublished,
		OwnerChannel:      resultOr(vr.Get("ownerText.runs.0.text"), unknownValue),
		OwnerThumbnail:    resultOr(ownerThumb, unknownValue),
	}
	if length := vr.Get("lengthText.simpleText"); length.Exists() {
		item.DurationText = FormatDuration(length.String())
	}
	if published := resultOr(vr.Get("publishedTimeText.simpleText"), ""); published != "" {
		item.PublishedRelative = ConvertTime(published)
	}
	return item
}

// parseVideoPageJSON extracts the watch-page record from the primary and secondary info renderers.
func parseVideoPageJSON(body string) (engine.VideoMetadata, error) {
	root, err := extractPayload(body)
	if err != nil {
		return engine.VideoMetadata{}, err
	}
	contents, err := walkPath(root, watchPagePath)
	if err != nil {
		return engine.VideoMetadata{}, err
	}

	var primary, secondary gjson.Result
	contents.ForEach(func(_, entry gjson.Result) bool {
		if p := entry.Get("videoPrimaryInfoRenderer"); p.Exists() && !primary.Exists() {
			primary = p
		}
		if s := entry.Get("videoSecondaryInfoRenderer"); s.Exists() && !secondary.Exists() {
			secondary = s
		}
		return !primary.Exists() || !secondary.Exists()
	})
	if !primary.Exists() {
		return engine.VideoMetadata{}, &UnexpectedSchemaError{Step: "videoPrimaryInfoRenderer", Path: stepNames(watchPagePath)}
	}

	description := secondary.Get("attributedDescription.content").String()
	if description == "" {
		description = joinRuns(secondary.Get("description.runs"))
	}

	return engine.VideoMetadata{
		Title:         strings.TrimSpace(joinRuns(primary.Get("title.runs"))),
		Description:   strings.TrimSpace(description),
		ViewCount:     ViewsToInt(primary.Get("viewCount.videoViewCountRenderer.viewCount.simpleText").String()),
		PublishedDate: StripDatePrefix(primary.Get("dateText.simpleText").String()),
	}, nil
}

// joinRuns concatenates the text of a runs array.
func joinRuns(runs gjson.Result) string {
	var sb strings.Builder
	for _, run := range runs.Array() {
		sb.WriteString(run.Get("text").String())
	}
	return sb.String()
}
