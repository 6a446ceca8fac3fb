package nav

import (
	"strings"

	"github.com/vidyasagar/wikisurf/internal/page"
)

// IntentKind names an entry point into the reader.
type IntentKind int

const (
	// IntentMain opens the main page.
	IntentMain IntentKind = iota
	// IntentView opens a link given as a URI.
	IntentView
	// IntentPage opens a title with an explicit provenance.
	IntentPage
	// IntentSearch opens the page titled by the query.
	IntentSearch
	// IntentShare opens the search overlay with shared text.
	IntentShare
	// IntentSearchWidget is a tap on the search widget.
	IntentSearchWidget
	// IntentFeaturedWidget is a tap on the featured article widget.
	IntentFeaturedWidget
)

// Intent is a request arriving from outside the navigation surface.
type Intent struct {
	Kind       IntentKind
	URI        string
	Title      page.Title
	Provenance Provenance
	Query      string
}

func (c *Controller) handleIntent(in Intent) error {
	switch in.Kind {
	case IntentView:
		t, err := page.Parse(in.URI, c.site())
		if err != nil {
			return err
		}
		return c.navigate(t, FromExternalLink)

	case IntentPage:
		p := in.Provenance
		if p == NoProvenance {
			p = FromInternalLink
		}
		return c.navigate(in.Title, p)

	case IntentSearch:
		t, err := page.New(c.site(), in.Query)
		if err != nil {
			return err
		}
		return c.navigate(t, FromSearch)

	case IntentShare:
		c.ensurePage()
		c.openSearch(strings.TrimSpace(in.Query), false)
		return nil

	case IntentSearchWidget:
		c.ensurePage()
		c.observer.WidgetTapped(WidgetSearch)
		c.openSearch("", true)
		return nil

	case IntentFeaturedWidget:
		err := c.navigate(c.mainPage(), FromMainPage)
		c.observer.WidgetTapped(WidgetFeatured)
		return err

	default:
		return c.navigate(c.mainPage(), FromMainPage)
	}
}

// ensurePage puts the main page under overlays opened at launch.
func (c *Controller) ensurePage() {
	if len(c.stack) > 0 {
		return
	}
	if err := c.navigate(c.mainPage(), FromMainPage); err != nil {
		c.log.Error("cannot open main page", "site", c.site(), "error", err)
	}
}
