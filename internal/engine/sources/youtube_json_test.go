package sources

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSearchJSONSkipsEntriesWithoutID(t *testing.T) {
	items, err := parseSearchJSON(searchJSONBody(rickEntry, noIDEntry))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "dQw4w9WgXcQ", items[0].ID)
}

func TestParseSearchJSONFields(t *testing.T) {
	items, err := parseSearchJSON(searchJSONBody(shelfEntry, rickEntry))
	require.NoError(t, err)
	require.Len(t, items, 1)

	got := items[0]
	assert.Equal(t, "Never Gonna Give You Up", got.Title)
	assert.Equal(t, "https://i.ytimg.com/vi/dQw4w9WgXcQ/hq720.jpg", got.Thumbnail)
	assert.Equal(t, "03:33", got.DurationText)
	assert.Equal(t, 1234567, got.ViewCount)
	assert.Equal(t, "14y", got.PublishedRelative)
	assert.Equal(t, "Rick Astley", got.OwnerChannel)
	assert.Equal(t, "https://yt3.ggpht.com/rick.jpg", got.OwnerThumbnail)
}

func TestParseSearchJSONDefaults(t *testing.T) {
	items, err := parseSearchJSON(searchJSONBody(`{"videoRenderer":{"videoId":"yPYZpwSpKmA"}}`))
	require.NoError(t, err)
	require.Len(t, items, 1)

	got := items[0]
	assert.Equal(t, "yPYZpwSpKmA", got.ID)
	assert.Equal(t, unknownValue, got.Title)
	assert.Equal(t, unknownValue, got.Thumbnail)
	assert.Equal(t, defaultDuration, got.DurationText)
	assert.Equal(t, 0, got.ViewCount)
	assert.Equal(t, defaultPublished, got.PublishedRelative)
	assert.Equal(t, unknownValue, got.OwnerChannel)
	assert.Equal(t, unknownValue, got.OwnerThumbnail)
}

func TestParseSearchJSONEmptyList(t *testing.T) {
	items, err := parseSearchJSON(searchJSONBody())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestParseSearchJSONMalformed(t *testing.T) {
	body := `<script>var ytInitialData = {"responseContext":{"broken": ;</script><script>`
	_, err := parseSearchJSON(body)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedPayload))

	var mpe *MalformedPayloadError
	require.True(t, errors.As(err, &mpe))
	assert.Equal(t, len(`<script>var ytInitialData = `), mpe.Offset)
}

func TestParseSearchJSONUnexpectedSchema(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantStep string
	}{
		{
			name:     "no contents",
			body:     `{"responseContext":{}};</script><script>`,
			wantStep: "contents",
		},
		{
			name:     "watch page payload",
			body:     `{"responseContext":{},"contents":{"twoColumnWatchNextResults":{}}};</script><script>`,
			wantStep: "twoColumnSearchResultsRenderer",
		},
		{
			name: "empty section list",
			body: `{"responseContext":{},"contents":{"twoColumnSearchResultsRenderer":{"primaryContents":` +
				`{"sectionListRenderer":{"contents":[]}}}}};</script><script>`,
			wantStep: "contents[0]",
		},
		{
			name: "entries not a list",
			body: `{"responseContext":{},"contents":{"twoColumnSearchResultsRenderer":{"primaryContents":` +
				`{"sectionListRenderer":{"contents":[{"itemSectionRenderer":{"contents":{}}}]}}}}};</script><script>`,
			wantStep: "contents",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseSearchJSON(tt.body)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnexpectedSchema))

			var use *UnexpectedSchemaError
			require.True(t, errors.As(err, &use))
			assert.Equal(t, tt.wantStep, use.Step)
		})
	}
}

func TestExtractPayloadWithoutSentinel(t *testing.T) {
	body := `<script>var ytInitialData = {"responseContext":{},"title":"a } and \" quote"};</script></body>`
	root, err := extractPayload(body)
	require.NoError(t, err)
	assert.Equal(t, `a } and " quote`, root.Get("title").String())
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", `{"a":1} trailing`, `{"a":1}`},
		{"nested", `{"a":{"b":{}}};x`, `{"a":{"b":{}}}`},
		{"brace in string", `{"a":"}"}rest`, `{"a":"}"}`},
		{"escaped backslash before quote", `{"a":"\\"}x`, `{"a":"\\"}`},
		{"unterminated", `{"a":1`, ""},
		{"not an object", `[1]`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSON(tt.in); got != tt.want {
				t.Errorf("extractJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseVideoPageJSON(t *testing.T) {
	got, err := parseVideoPageJSON(watchJSONBody)
	require.NoError(t, err)
	assert.Equal(t, "Never Gonna Give You Up", got.Title)
	assert.Equal(t, "Line one\nLine two", got.Description)
	assert.Equal(t, 1500000000, got.ViewCount)
	assert.Equal(t, "Oct 25 2009", got.PublishedDate)
}

func TestParseVideoPageJSONAfterPlayerResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"marked", watchJSONBodyWithPlayer},
		{"unmarked", watchJSONBodyUnmarked},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseVideoPageJSON(tt.body)
			require.NoError(t, err)
			assert.Equal(t, "Never Gonna Give You Up", got.Title)
			assert.Equal(t, "Line one\nLine two", got.Description)
			assert.Equal(t, 1500000000, got.ViewCount)
			assert.Equal(t, "Oct 25 2009", got.PublishedDate)
		})
	}
}

func TestPayloadOffsetsPrefersMarker(t *testing.T) {
	offsets := payloadOffsets(watchJSONBodyWithPlayer)
	require.Len(t, offsets, 2)
	marker := strings.Index(watchJSONBodyWithPlayer, "var ytInitialData = ") + len("var ytInitialData = ")
	assert.Equal(t, marker, offsets[0])
	assert.Less(t, offsets[1], offsets[0])
}

func TestParseVideoPageJSONMissingPrimary(t *testing.T) {
	body := `{"responseContext":{},"contents":{"twoColumnWatchNextResults":{"results":{"results":{"contents":[]}}}}};</script><script>`
	_, err := parseVideoPageJSON(body)

	var use *UnexpectedSchemaError
	require.True(t, errors.As(err, &use))
	assert.Equal(t, "videoPrimaryInfoRenderer", use.Step)
}

func TestUnexpectedSchemaErrorNamesPath(t *testing.T) {
	err := &UnexpectedSchemaError{Step: "primaryContents", Path: []string{"contents", "twoColumnSearchResultsRenderer"}}
	assert.Equal(t, `unexpected schema: "primaryContents" missing after contents → twoColumnSearchResultsRenderer`, err.Error())

	err = &UnexpectedSchemaError{Step: "contents"}
	assert.Equal(t, `unexpected schema: "contents" missing after root`, err.Error())
}
