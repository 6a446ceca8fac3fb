package wiki

import (
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/x/ansi"

	"github.com/vidyasagar/wikisurf/internal/page"
	"github.com/vidyasagar/wikisurf/internal/theme"
)

const (
	defaultWidth = 80
	minWidth     = 20
	readingWidth = 100 // widest column at text size 0
)

// Cached glamour renderer, rebuilt when the width or style changes.
var (
	cachedRenderer      *glamour.TermRenderer
	cachedRendererWidth int
	cachedRendererStyle string
	rendererMu          sync.Mutex
)

var mdConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		table.NewTablePlugin(),
	),
)

// RenderOptions controls the layout of a rendered page.
type RenderOptions struct {
	Width    int // terminal columns
	TextSize int // -3..3, widens or narrows the reading column
}

// Link is a numbered link in a rendered page.
type Link struct {
	Index    int
	Text     string
	Href     string
	Title    page.Title // set for links to wiki pages
	Internal bool
}

// RenderedPage holds the final terminal-ready output.
type RenderedPage struct {
	Article *Article
	Content string
	Lines   []string
	Links   []Link
	Anchors map[string]int // section id -> line
}

// Line returns the first line of a section, if it was found.
func (r *RenderedPage) Line(fragment string) (int, bool) {
	n, ok := r.Anchors[page.Anchor(fragment)]
	return n, ok
}

// Link returns the link numbered n.
func (r *RenderedPage) Link(n int) (Link, bool) {
	if n < 1 || n > len(r.Links) {
		return Link{}, false
	}
	return r.Links[n-1], true
}

// ColumnWidth is the width of the reading column for a terminal width and
// text size.
func ColumnWidth(width, textSize int) int {
	if width <= 0 {
		width = defaultWidth
	}
	w := min(width-4, readingWidth+10*textSize)
	return max(w, minWidth)
}

// Render converts an Article into styled terminal text with numbered links.
func Render(a *Article, opts RenderOptions) (*RenderedPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(a.HTML))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", a.Title.Text, err)
	}

	links := numberLinks(doc, a.Title)

	body, err := doc.Find("body").Html()
	if err != nil {
		return nil, fmt.Errorf("serializing %s: %w", a.Title.Text, err)
	}
	md, err := mdConverter.ConvertString(body, converter.WithDomain("https://"+a.Title.Site))
	if err != nil {
		return nil, fmt.Errorf("converting %s: %w", a.Title.Text, err)
	}

	var sb strings.Builder
	sb.WriteString("# " + a.DisplayTitle + "\n\n")
	if a.Offline {
		sb.WriteString("*Saved copy*\n\n")
	}
	sb.WriteString(md)

	out, err := renderWithGlamour(sb.String(), ColumnWidth(opts.Width, opts.TextSize))
	if err != nil {
		return nil, err
	}

	lines := strings.Split(out, "\n")
	return &RenderedPage{
		Article: a,
		Content: out,
		Lines:   lines,
		Links:   links,
		Anchors: findAnchors(lines, a.Sections),
	}, nil
}

// numberLinks replaces every followable link with its text and a [n]
// marker, and returns the links in document order.
func numberLinks(doc *goquery.Document, self page.Title) []Link {
	var links []Link
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		text := strings.Join(strings.Fields(s.Text()), " ")
		if text == "" {
			s.Remove()
			return
		}

		l := Link{Index: len(links) + 1, Text: text, Href: href}
		switch {
		case strings.HasPrefix(href, "#"):
			l.Title, l.Internal = self.WithFragment(href[1:]), true
		default:
			if t, err := page.Parse(href, self.Site); err == nil {
				l.Title, l.Internal = t, true
			}
		}
		links = append(links, l)
		s.ReplaceWithHtml(fmt.Sprintf("%s <strong>[%d]</strong>", html.EscapeString(text), l.Index))
	})
	return links
}

// findAnchors locates section headings in the rendered lines. Glamour
// prefixes h2 and below with hashes; a wrapped heading matches on its
// first line. Headings appear in document order, so the search only
// moves forward.
func findAnchors(lines []string, sections []Section) map[string]int {
	anchors := make(map[string]int, len(sections))
	from := 0
	for _, s := range sections {
		want := strings.Join(strings.Fields(s.Title), " ")
		for i := from; i < len(lines); i++ {
			plain := strings.TrimSpace(ansi.Strip(lines[i]))
			if !strings.HasPrefix(plain, "#") {
				continue
			}
			got := strings.TrimSpace(strings.TrimLeft(plain, "#"))
			if got != "" && strings.HasPrefix(want, got) {
				if _, dup := anchors[s.ID]; !dup {
					anchors[s.ID] = i
				}
				from = i + 1
				break
			}
		}
	}
	return anchors
}

// renderWithGlamour renders markdown in the current theme's style.
func renderWithGlamour(markdown string, width int) (string, error) {
	rendererMu.Lock()
	defer rendererMu.Unlock()

	style := theme.Current.Glamour
	if cachedRenderer == nil || cachedRendererWidth != width || cachedRendererStyle != style {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return "", err
		}
		cachedRenderer = r
		cachedRendererWidth = width
		cachedRendererStyle = style
	}

	return cachedRenderer.Render(markdown)
}
