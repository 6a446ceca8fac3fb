package wiki

import (
	"bytes"
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"

	"github.com/vidyasagar/wikisurf/internal/page"
)

// Article is a fetched page, ready to render. It implements nav.Document.
type Article struct {
	Title        page.Title
	DisplayTitle string
	Excerpt      string
	HTML         string // sanitised body
	Text         string // plain text, for find-in-page
	Sections     []Section
	Offline      bool
	FetchTime    time.Duration
}

// Section is a heading inside an article.
type Section struct {
	ID    string
	Title string
	Level int
}

// Cost is the article's weight in the page cache: the bytes it holds.
func (a *Article) Cost() int64 {
	n := int64(len(a.HTML) + len(a.Text))
	if n == 0 {
		return 1
	}
	return n
}

// Parsoid markup that is noise in a terminal.
const noise = "script, style, link, meta, .mw-editsection, sup.mw-ref, sup.reference, " +
	".navbox, .mw-empty-elt, .noprint, .mw-references-wrap, .metadata, figure[typeof~='mw:File/Thumb'] img"

var policy = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("colspan", "rowspan").OnElements("td", "th")
	return p
}()

// Extract turns REST API page HTML into an Article.
func Extract(raw []byte, t page.Title) (*Article, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", t.Text, err)
	}

	a := &Article{Title: t.WithFragment(""), DisplayTitle: t.Text}
	if title := strings.TrimSpace(doc.Find("head title").First().Text()); title != "" {
		a.DisplayTitle = strings.ReplaceAll(title, "_", " ")
	}

	doc.Find(noise).Remove()
	// Red links point at pages that do not exist yet.
	doc.Find("a.new").Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithSelection(s.Contents())
	})

	doc.Find("h2, h3, h4").Each(func(_ int, h *goquery.Selection) {
		text := strings.TrimSpace(h.Text())
		if text == "" {
			return
		}
		id, ok := h.Attr("id")
		if !ok || id == "" {
			id = text
		}
		a.Sections = append(a.Sections, Section{
			ID:    page.Anchor(id),
			Title: text,
			Level: int(goquery.NodeName(h)[1] - '0'),
		})
	})

	body, err := doc.Find("body").Html()
	if err != nil {
		return nil, fmt.Errorf("serializing %s: %w", t.Text, err)
	}
	a.HTML = policy.Sanitize(body)

	u, _ := url.Parse(t.URL())
	if art, err := readability.FromReader(bytes.NewReader(raw), u); err == nil {
		a.Excerpt = strings.TrimSpace(art.Excerpt)
		a.Text = strings.TrimSpace(art.TextContent)
	}
	if a.Text == "" {
		a.Text = strings.TrimSpace(doc.Find("body").Text())
	}

	return a, nil
}

// HasSection reports whether the article has a heading for fragment.
func (a *Article) HasSection(fragment string) bool {
	want := page.Anchor(fragment)
	for _, s := range a.Sections {
		if s.ID == want {
			return true
		}
	}
	return false
}

// Document returns the article as a standalone HTML document that Extract
// reads back unchanged. Saved pages are stored in this form.
func (a *Article) Document() string {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>")
	sb.WriteString(html.EscapeString(a.DisplayTitle))
	sb.WriteString("</title></head><body>")
	sb.WriteString(a.HTML)
	sb.WriteString("</body></html>\n")
	return sb.String()
}
