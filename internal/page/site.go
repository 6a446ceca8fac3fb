package page

import (
	"fmt"
	"net/url"
	"strings"
)

// mainPages maps language codes to the title of that wiki's main page.
var mainPages = map[string]string{
	"en": "Main Page",
	"de": "Wikipedia:Hauptseite",
	"es": "Wikipedia:Portada",
	"fr": "Wikipédia:Accueil principal",
	"it": "Pagina principale",
	"ja": "メインページ",
	"nl": "Hoofdpagina",
	"pl": "Wikipedia:Strona główna",
	"pt": "Wikipédia:Página principal",
	"ru": "Заглавная страница",
	"sv": "Portal:Huvudsida",
	"zh": "Wikipedia:首页",
}

// SiteFor returns the site domain for a language code.
func SiteFor(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		return DefaultSite
	}
	return lang + ".wikipedia.org"
}

// SiteLanguage returns the language code of a site domain.
func SiteLanguage(site string) string {
	if i := strings.IndexByte(site, '.'); i > 0 {
		return site[:i]
	}
	return site
}

// NormalizeSite lowercases a host and folds the mobile domain onto the
// desktop one, so "en.m.wikipedia.org" and "en.wikipedia.org" are one site.
func NormalizeSite(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, ok := strings.Cut(host, ":"); ok {
		host = h
	}
	return strings.Replace(host, ".m.", ".", 1)
}

// MainPage returns the main page of a site.
func MainPage(site string) Title {
	site = NormalizeSite(site)
	if site == "" {
		site = DefaultSite
	}
	name, ok := mainPages[SiteLanguage(site)]
	if !ok {
		name = mainPages["en"]
	}
	return MustNew(site, name)
}

// Parse resolves a link or a bare title. Absolute URLs carry their own
// site; relative wiki links ("/wiki/Dog", "./Dog") and bare titles
// resolve against site.
func Parse(raw, site string) (Title, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Title{}, fmt.Errorf("%w: empty link", ErrInvalidTitle)
	}

	if !strings.Contains(raw, "://") && !strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "./") {
		return New(site, raw)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Title{}, fmt.Errorf("%w: %v", ErrInvalidTitle, err)
	}
	if u.Host != "" {
		if u.Scheme != "http" && u.Scheme != "https" {
			return Title{}, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidTitle, u.Scheme)
		}
		site = u.Host
	}

	var text string
	switch {
	case strings.HasPrefix(u.Path, "/wiki/"):
		text = strings.TrimPrefix(u.Path, "/wiki/")
	case strings.HasPrefix(u.Path, "./"):
		text = strings.TrimPrefix(u.Path, "./")
	case u.Query().Get("title") != "":
		text = u.Query().Get("title")
	default:
		return Title{}, fmt.Errorf("%w: %q is not a wiki page link", ErrInvalidTitle, raw)
	}

	t, err := New(site, text)
	if err != nil {
		return Title{}, err
	}
	return t.WithFragment(u.Fragment), nil
}
