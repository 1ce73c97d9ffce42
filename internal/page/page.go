// Package page holds the portfolio's presentation state: navigation with
// scroll spy, the experience accordion, and the view model rendered by both
// the HTML page and the terminal viewer.
package page

// Section ids, in page order.
const (
	Home       = "home"
	About      = "about"
	Skills     = "skills"
	Experience = "experience"
	Projects   = "projects"
	Education  = "education"
	Contact    = "contact"
)

// SpyMargin is how far below the top edge a section may start and still
// count as the active one.
const SpyMargin = 100

// ScrolledThreshold is the scroll position beyond which the header is styled
// as scrolled.
const ScrolledThreshold = 50

// NavLink is one entry of the navigation bar.
type NavLink struct {
	ID    string
	Label string
}

// NavLinks lists the navigation bar entries in page order.
var NavLinks = []NavLink{
	{Home, "Home"},
	{About, "About"},
	{Skills, "Skills"},
	{Experience, "Experience"},
	{Projects, "Projects"},
	{Contact, "Contact"},
}

// ActiveSection returns the nav link highlighted for scrollPos. Links are
// scanned from last to first; the first one whose section starts at or
// above scrollPos+SpyMargin wins. Links missing from offsets are skipped.
// With no match the result is Home.
func ActiveSection(offsets map[string]int, scrollPos int) string {
	for i := len(NavLinks) - 1; i >= 0; i-- {
		off, ok := offsets[NavLinks[i].ID]
		if !ok {
			continue
		}
		if off <= scrollPos+SpyMargin {
			return NavLinks[i].ID
		}
	}
	return Home
}

// Scrolled reports whether the page is scrolled past the header threshold.
func Scrolled(scrollPos int) bool {
	return scrollPos > ScrolledThreshold
}

// Accordion tracks which entry of a list is expanded. At most one entry is
// expanded at a time. The zero value has nothing expanded.
type Accordion struct {
	size     int
	expanded int // index+1; 0 means none
}

// NewAccordion returns an accordion over size entries.
func NewAccordion(size int) *Accordion {
	return &Accordion{size: size}
}

// Toggle expands entry i, collapsing any other. Toggling the expanded entry
// collapses it. Out-of-range indices are ignored.
func (a *Accordion) Toggle(i int) {
	if i < 0 || i >= a.size {
		return
	}
	if a.expanded == i+1 {
		a.expanded = 0
		return
	}
	a.expanded = i + 1
}

// Expanded returns the expanded index and whether one is expanded.
func (a *Accordion) Expanded() (int, bool) {
	return a.expanded - 1, a.expanded != 0
}

// IsExpanded reports whether entry i is expanded.
func (a *Accordion) IsExpanded(i int) bool {
	return a.expanded != 0 && a.expanded-1 == i
}

// Collapse collapses every entry.
func (a *Accordion) Collapse() {
	a.expanded = 0
}

// Len returns the number of entries.
func (a *Accordion) Len() int { return a.size }
