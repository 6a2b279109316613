package sources

import (
	"fmt"
	"log/slog"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/anatolykoptev/go_tube/internal/engine"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Structural anchors of the server-rendered (legacy) page layout.
const (
	watchTitleSelector       = "#eow-title"
	watchDescriptionSelector = "#eow-description"
	watchViewCountSelector   = ".watch-view-count"
	watchDateSelector        = ".watch-time-text"

	searchContainerSelector = ".item-section"
	searchRowSelector       = "li"
	lockupLinkSelector      = ".yt-lockup-title > a"
	lockupDurationSelector  = ".video-time"
	lockupMetaSelector      = ".yt-lockup-meta-info li"
	lockupOwnerSelector     = ".yt-lockup-byline a"
)

// watchPathPrefix precedes the identifier in every result link.
const watchPathPrefix = "/watch?v="

// parseBody parses the response and returns its body region.
func parseBody(body string) (*goquery.Selection, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("goquery parse: %w", err)
	}
	return doc.Find("body"), nil
}

// requireOne selects the first match of selector or fails with ElementNotFoundError.
func requireOne(root *goquery.Selection, selector string) (*goquery.Selection, error) {
	sel := root.Find(selector).First()
	if sel.Length() == 0 {
		return nil, &ElementNotFoundError{Selector: selector}
	}
	return sel, nil
}

// parseVideoPageMarkup extracts the single-video record. Every anchor is required.
func parseVideoPageMarkup(body string) (engine.VideoMetadata, error) {
	root, err := parseBody(body)
	if err != nil {
		return engine.VideoMetadata{}, err
	}

	title, err := requireOne(root, watchTitleSelector)
	if err != nil {
		return engine.VideoMetadata{}, err
	}
	description, err := requireOne(root, watchDescriptionSelector)
	if err != nil {
		return engine.VideoMetadata{}, err
	}
	views, err := requireOne(root, watchViewCountSelector)
	if err != nil {
		return engine.VideoMetadata{}, err
	}
	date, err := requireOne(root, watchDateSelector)
	if err != nil {
		return engine.VideoMetadata{}, err
	}

	return engine.VideoMetadata{
		Title:         strings.TrimSpace(title.Text()),
		Description:   descriptionText(description),
		ViewCount:     ViewsToInt(views.Text()),
		PublishedDate: StripDatePrefix(date.Text()),
	}, nil
}

// descriptionText flattens the description block: <br> becomes \n, other tags are dropped.
func descriptionText(sel *goquery.Selection) string {
	var sb strings.Builder
	for _, n := range sel.Nodes {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			writeText(&sb, c)
		}
	}
	return strings.TrimSpace(sb.String())
}

func writeText(sb *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Br:
			sb.WriteByte('\n')
			return
		case atom.Script, atom.Style:
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(sb, c)
	}
}

// descriptionMarkdown renders the description block of a markup watch page as Markdown.
func descriptionMarkdown(body string) (string, error) {
	root, err := parseBody(body)
	if err != nil {
		return "", err
	}
	description, err := requireOne(root, watchDescriptionSelector)
	if err != nil {
		return "", err
	}
	inner, err := description.Html()
	if err != nil {
		return "", fmt.Errorf("render description: %w", err)
	}
	md, err := htmltomarkdown.ConvertString(inner)
	if err != nil {
		return "", fmt.Errorf("description to markdown: %w", err)
	}
	return strings.TrimSpace(md), nil
}

// parseSearchMarkup enumerates the row items directly under each result section;
// rows that fail extraction are dropped.
func parseSearchMarkup(body string) ([]engine.SearchResultItem, error) {
	root, err := parseBody(body)
	if err != nil {
		return nil, err
	}

	items := make([]engine.SearchResultItem, 0)
	skipped := 0
	root.Find(searchContainerSelector).ChildrenFiltered(searchRowSelector).Each(func(i int, row *goquery.Selection) {
		item, err := parseSearchRow(row)
		if err != nil {
			skipped++
			slog.Debug("youtube: search row skipped", slog.Int("row", i), slog.Any("error", err))
			return
		}
		items = append(items, item)
	})
	if skipped > 0 {
		engine.AddRowsSkipped(skipped)
	}
	return items, nil
}

// parseSearchRow reads the identifier and title from the lockup link, then fills
// the remaining fields best effort.
func parseSearchRow(row *goquery.Selection) (item engine.SearchResultItem, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("row extraction panicked: %v", r)
		}
	}()

	link := row.Find(lockupLinkSelector).First()
	if link.Length() == 0 {
		return item, &ElementNotFoundError{Selector: lockupLinkSelector}
	}
	href, ok := link.Attr("href")
	if !ok {
		return item, fmt.Errorf("%s: no href", lockupLinkSelector)
	}
	id := videoIDFromHref(href)
	if id == "" {
		return item, fmt.Errorf("%s: no video id in href %q", lockupLinkSelector, href)
	}
	title, _ := link.Attr("title")

	item = engine.SearchResultItem{
		ID:                id,
		Title:             orDefault(title, unknownValue),
		Thumbnail:         unknownValue,
		DurationText:      defaultDuration,
		PublishedRelative: defaultPublished,
		OwnerChannel:      orDefault(row.Find(lockupOwnerSelector).First().Text(), unknownValue),
		OwnerThumbnail:    unknownValue,
	}
	if d := strings.TrimSpace(row.Find(lockupDurationSelector).First().Text()); d != "" {
		item.DurationText = FormatDuration(d)
	}
	if img := row.Find("img").First(); img.Length() > 0 {
		thumb, _ := img.Attr("data-thumb")
		if strings.TrimSpace(thumb) == "" {
			thumb, _ = img.Attr("src")
		}
		item.Thumbnail = orDefault(thumb, unknownValue)
	}
	row.Find(lockupMetaSelector).Each(func(_ int, meta *goquery.Selection) {
		text := strings.TrimSpace(meta.Text())
		switch {
		case strings.HasSuffix(text, " ago"):
			item.PublishedRelative = ConvertTime(text)
		case strings.Contains(text, "view"):
			item.ViewCount = ViewsToInt(text)
		}
	})
	return item, nil
}

// videoIDFromHref strips the constant watch-path prefix and any trailing query parameters.
func videoIDFromHref(href string) string {
	if len(href) <= len(watchPathPrefix) {
		return ""
	}
	id := href[len(watchPathPrefix):]
	if i := strings.IndexByte(id, '&'); i >= 0 {
		id = id[:i]
	}
	return strings.TrimSpace(id)
}
