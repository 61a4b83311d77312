// Package selection owns the single "which email is open" value shared
// by the detail pane and the assistant. Readers observe it; only the
// controller's setters change it.
package selection

// Listener is notified after the selection changes. An empty id means
// nothing is selected.
type Listener func(prev, next string)

// Controller holds the current selection.
type Controller struct {
	current   string
	listeners []Listener
}

// Select sets the selection. Passing "" clears it. Listeners run
// synchronously, and only when the value actually changes.
func (c *Controller) Select(id string) {
	if id == c.current {
		return
	}
	prev := c.current
	c.current = id
	for _, l := range c.listeners {
		l(prev, id)
	}
}

// Clear is Select("").
func (c *Controller) Clear() { c.Select("") }

// Current returns the selected id and whether one is set.
func (c *Controller) Current() (string, bool) {
	return c.current, c.current != ""
}

// ID returns the selected id, or "" when none.
func (c *Controller) ID() string { return c.current }

// OnChange registers l to be called on every change.
func (c *Controller) OnChange(l Listener) {
	c.listeners = append(c.listeners, l)
}
