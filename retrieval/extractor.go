package retrieval

import (
	"fmt"
	"net/url"
	"strings"

	"searchbot/types"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"
)

// Extract turns a fetch result into at most limit fragments using the strategy for
// the source's kind. It never panics: parser failures yield no fragments.
func Extract(src types.Source, res types.FetchResult, limit int) (out types.ExtractedText) {
	if !res.Succeeded || strings.TrimSpace(res.Markup) == "" || limit <= 0 {
		return types.ExtractedText{}
	}

	defer func() {
		if r := recover(); r != nil {
			out = types.ExtractedText{}
		}
	}()

	switch src.EffectiveKind() {
	case types.KindFeed:
		return ExtractFeed(res.Markup, limit)
	case types.KindReadability:
		return ExtractReadable(res.Markup, res.URL, limit)
	default:
		return ExtractSelector(res.Markup, src.Selector, limit)
	}
}

// ExtractSelector returns the text of the first limit elements matching selector
func ExtractSelector(markup, selector string, limit int) types.ExtractedText {
	out := types.ExtractedText{}
	if strings.TrimSpace(markup) == "" || selector == "" || limit <= 0 {
		return out
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return out
	}

	doc.Find(selector).EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= limit {
			return false
		}
		if text := collapseSpace(s.Text()); text != "" {
			out = append(out, text)
		}
		return true
	})
	return out
}

// ExtractFeed parses an RSS/Atom document and returns "title: description" for the first limit items
func ExtractFeed(markup string, limit int) types.ExtractedText {
	out := types.ExtractedText{}
	feed, err := gofeed.NewParser().ParseString(markup)
	if err != nil || feed == nil {
		return out
	}

	for _, item := range feed.Items {
		if len(out) >= limit {
			break
		}
		if item == nil {
			continue
		}
		title := collapseSpace(item.Title)
		desc := stripTags(item.Description)
		switch {
		case title != "" && desc != "":
			out = append(out, fmt.Sprintf("%s: %s", title, desc))
		case title != "":
			out = append(out, title)
		case desc != "":
			out = append(out, desc)
		}
	}
	return out
}

// ExtractReadable runs readability over the page and returns its first limit paragraphs
func ExtractReadable(markup, pageURL string, limit int) types.ExtractedText {
	out := types.ExtractedText{}
	u, err := url.Parse(pageURL)
	if err != nil || u == nil {
		u = &url.URL{}
	}

	article, err := readability.FromReader(strings.NewReader(markup), u)
	if err != nil {
		return out
	}

	for _, line := range strings.Split(article.TextContent, "\n") {
		if len(out) >= limit {
			break
		}
		if text := collapseSpace(line); text != "" {
			out = append(out, text)
		}
	}
	return out
}

func stripTags(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return collapseSpace(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return collapseSpace(fragment)
	}
	return collapseSpace(doc.Text())
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
