// Package page defines page identity for wiki sites: the site a page lives
// on, its canonical title and an optional section fragment.
package page

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// DefaultSite is the site used when a request does not name one.
const DefaultSite = "en.wikipedia.org"

// ErrInvalidTitle is returned for titles or sites that cannot address a page.
var ErrInvalidTitle = errors.New("invalid page title")

// illegalTitleChars can never appear in a MediaWiki title.
const illegalTitleChars = "#<>[]|{}"

// specialNamespaces are namespaces whose pages are not renderable articles.
var specialNamespaces = map[string]bool{
	"Special": true,
	"Media":   true,
}

// Title identifies a page. Two titles with the same Key address the same
// page; the fragment only says where to scroll.
type Title struct {
	Site     string
	Text     string
	Fragment string
}

// Key is the anchor-free identity of a page.
type Key struct {
	Site string
	Text string
}

func (k Key) String() string {
	return k.Site + "/" + k.Text
}

// New builds a normalized title. A "#fragment" suffix in text is split off.
func New(site, text string) (Title, error) {
	var frag string
	if i := strings.IndexByte(text, '#'); i >= 0 {
		text, frag = text[:i], text[i+1:]
	}
	t := Title{
		Site:     NormalizeSite(site),
		Text:     normalizeText(text),
		Fragment: normalizeFragment(frag),
	}
	if err := t.Validate(); err != nil {
		return Title{}, err
	}
	return t, nil
}

// MustNew is New for titles known to be valid.
func MustNew(site, text string) Title {
	t, err := New(site, text)
	if err != nil {
		panic(err)
	}
	return t
}

// Validate reports whether t can address a page.
func (t Title) Validate() error {
	if t.Site == "" || strings.ContainsAny(t.Site, " /") || !strings.Contains(t.Site, ".") {
		return fmt.Errorf("%w: bad site %q", ErrInvalidTitle, t.Site)
	}
	if t.Text == "" {
		return fmt.Errorf("%w: empty title", ErrInvalidTitle)
	}
	if strings.ContainsAny(t.Text, illegalTitleChars) {
		return fmt.Errorf("%w: %q contains an illegal character", ErrInvalidTitle, t.Text)
	}
	if !utf8.ValidString(t.Text) {
		return fmt.Errorf("%w: %q is not valid UTF-8", ErrInvalidTitle, t.Text)
	}
	return nil
}

// Key returns the anchor-free identity used for dedup and caching.
func (t Title) Key() Key {
	return Key{Site: t.Site, Text: t.Text}
}

// Same reports whether t and other address the same page, ignoring fragments.
func (t Title) Same(other Title) bool {
	return t.Key() == other.Key()
}

// WithFragment returns a copy of t pointing at another section.
func (t Title) WithFragment(frag string) Title {
	t.Fragment = normalizeFragment(frag)
	return t
}

// IsZero reports whether t is the zero Title.
func (t Title) IsZero() bool {
	return t == Title{}
}

// Namespace returns the namespace prefix of the title, or "" for articles.
func (t Title) Namespace() string {
	i := strings.IndexByte(t.Text, ':')
	if i <= 0 {
		return ""
	}
	return t.Text[:i]
}

// IsSpecial reports whether the title belongs to a namespace that cannot be
// rendered in the reader and must be opened elsewhere.
func (t Title) IsSpecial() bool {
	return specialNamespaces[t.Namespace()]
}

// Language returns the language code of the title's site.
func (t Title) Language() string {
	return SiteLanguage(t.Site)
}

// PathSegment returns the title in the underscore form used in URLs.
func (t Title) PathSegment() string {
	return url.PathEscape(strings.ReplaceAll(t.Text, " ", "_"))
}

// URL returns the canonical article URL.
func (t Title) URL() string {
	u := "https://" + t.Site + "/wiki/" + t.PathSegment()
	if t.Fragment != "" {
		u += "#" + url.PathEscape(t.Fragment)
	}
	return u
}

func (t Title) String() string {
	if t.Fragment != "" {
		return t.Text + "#" + t.Fragment
	}
	return t.Text
}

// normalizeText applies MediaWiki's default title rules: underscores are
// spaces, runs of whitespace collapse, the first letter is upper case and
// the namespace prefix is capitalized.
func normalizeText(s string) string {
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.Join(strings.Fields(s), " ")
	if i := strings.IndexByte(s, ':'); i > 0 {
		ns := upperFirst(strings.TrimSpace(s[:i]))
		if specialNamespaces[ns] || knownNamespace(ns) {
			return ns + ":" + upperFirst(strings.TrimSpace(s[i+1:]))
		}
	}
	return upperFirst(s)
}

// Anchor normalizes a section id the way fragments are normalized, so
// "Early_life" and "Early life" compare equal.
func Anchor(s string) string {
	return normalizeFragment(s)
}

func normalizeFragment(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "_", " "))
	return norm.NFC.String(s)
}

func upperFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}

func knownNamespace(ns string) bool {
	switch ns {
	case "Talk", "User", "Wikipedia", "File", "Template", "Help", "Category", "Portal":
		return true
	}
	return false
}
