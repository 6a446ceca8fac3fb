package page

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		raw      string
		wantSite string
		wantText string
		wantFrag string
	}{
		{"bare title", "Dog", "en.wikipedia.org", "Dog", ""},
		{"bare title with fragment", "Dog#Breeds", "en.wikipedia.org", "Dog", "Breeds"},
		{"desktop url", "https://de.wikipedia.org/wiki/Hund", "de.wikipedia.org", "Hund", ""},
		{"mobile url", "https://fr.m.wikipedia.org/wiki/Chat#Histoire", "fr.wikipedia.org", "Chat", "Histoire"},
		{"escaped url", "https://en.wikipedia.org/wiki/Caf%C3%A9_au_lait", "en.wikipedia.org", "Café au lait", ""},
		{"index.php title", "https://en.wikipedia.org/w/index.php?title=Cat", "en.wikipedia.org", "Cat", ""},
		{"relative wiki link", "/wiki/Wolf", "en.wikipedia.org", "Wolf", ""},
		{"rest api link", "./Gray_wolf", "en.wikipedia.org", "Gray wolf", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Parse(tt.raw, DefaultSite)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.raw, err)
			}
			if got.Site != tt.wantSite || got.Text != tt.wantText || got.Fragment != tt.wantFrag {
				t.Errorf("Parse(%q) = %+v", tt.raw, got)
			}
		})
	}
}

func TestParseInvalid(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "ftp://en.wikipedia.org/wiki/Dog", "https://example.org/about"} {
		if _, err := Parse(raw, DefaultSite); !errors.Is(err, ErrInvalidTitle) {
			t.Errorf("Parse(%q) error = %v, want ErrInvalidTitle", raw, err)
		}
	}
}

func TestMainPage(t *testing.T) {
	t.Parallel()

	if got := MainPage("en.wikipedia.org"); got.Text != "Main Page" {
		t.Errorf("MainPage(en) = %q", got.Text)
	}
	if got := MainPage("de.wikipedia.org"); got.Text != "Wikipedia:Hauptseite" {
		t.Errorf("MainPage(de) = %q", got.Text)
	}
	if got := MainPage("xx.wikipedia.org"); got.Text != "Main Page" || got.Site != "xx.wikipedia.org" {
		t.Errorf("MainPage(xx) = %+v", got)
	}
}

func TestSiteFor(t *testing.T) {
	t.Parallel()

	if got := SiteFor("DE"); got != "de.wikipedia.org" {
		t.Errorf("SiteFor(DE) = %q", got)
	}
	if got := SiteFor(""); got != DefaultSite {
		t.Errorf("SiteFor(\"\") = %q", got)
	}
	if got := SiteLanguage("ja.wikipedia.org"); got != "ja" {
		t.Errorf("SiteLanguage = %q", got)
	}
}
