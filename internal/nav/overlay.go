package nav

// Overlays returns the current overlay state.
func (c *Controller) Overlays() Overlays {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.overlays
}

// OpenSearch shows the search overlay prefilled with query. Back from a
// search opened by the search widget leaves the app.
func (c *Controller) OpenSearch(query string, fromWidget bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.openSearch(query, fromWidget)
}

// CloseSearch hides the search overlay.
func (c *Controller) CloseSearch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.overlays.Search {
		return
	}
	c.overlays.Search, c.overlays.Query, c.overlays.FromWidget = false, "", false
	c.notify()
}

// OpenDrawer opens the navigation drawer, closing search and action mode.
func (c *Controller) OpenDrawer() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.overlays.Search, c.overlays.Query, c.overlays.FromWidget = false, "", false
	c.overlays.ActionMode = false
	c.overlays.Drawer = true
	c.notify()
}

// CloseDrawer closes the navigation drawer.
func (c *Controller) CloseDrawer() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setDrawer(false)
}

// StartActionMode marks a contextual action mode, such as a text
// selection, as active.
func (c *Controller) StartActionMode() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.overlays.ActionMode {
		return
	}
	c.overlays.ActionMode = true
	c.notify()
}

// FinishActionMode ends the action mode.
func (c *Controller) FinishActionMode() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.overlays.ActionMode {
		return
	}
	c.overlays.ActionMode = false
	c.notify()
}

func (c *Controller) openSearch(query string, fromWidget bool) {
	c.overlays.Drawer = false
	c.overlays.Search = true
	c.overlays.Query = query
	c.overlays.FromWidget = fromWidget
	c.notify()
}

func (c *Controller) setDrawer(open bool) {
	if c.overlays.Drawer == open {
		return
	}
	c.overlays.Drawer = open
	c.notify()
}

func (c *Controller) notify() {
	c.shell.OverlaysChanged(c.overlays)
}
