package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/folio/internal/page"
)

// lineHeight converts terminal rows to the pixel scale the scroll spy uses.
const lineHeight = 20

var (
	nameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	avatarStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("99"))

	sectionTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("99"))

	entryTitleStyle = lipgloss.NewStyle().
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("24"))

	tagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("141"))
)

type itemKind int

const (
	itemExperience itemKind = iota
	itemProject
)

// item is a selectable entry of the page: an accordion entry or a project
// with a link.
type item struct {
	kind  itemKind
	index int
}

// pageLayout is the rendered page plus the line positions the viewer needs.
type pageLayout struct {
	content string
	offsets map[string]int // section id -> first line
	items   []int          // first line of each selectable item
}

// selectableItems lists experience entries first, then linked projects.
func selectableItems(v page.View) []item {
	var items []item
	for _, e := range v.Experience {
		items = append(items, item{kind: itemExperience, index: e.Index})
	}
	for i, p := range v.Projects {
		if p.Link != "" {
			items = append(items, item{kind: itemProject, index: i})
		}
	}
	return items
}

type lineWriter struct {
	lines []string
}

func (w *lineWriter) add(s string) {
	w.lines = append(w.lines, strings.Split(s, "\n")...)
}

func (w *lineWriter) blank() { w.lines = append(w.lines, "") }

func (w *lineWriter) line() int { return len(w.lines) }

// renderPage lays out v as text wrapped to width. Sections without data are
// skipped, the same as on the HTML page. cursor indexes selectableItems(v).
func renderPage(v page.View, width, cursor int) pageLayout {
	width = max(width, 20)
	out := pageLayout{offsets: make(map[string]int)}
	items := selectableItems(v)
	selected := func(kind itemKind, index int) bool {
		return cursor >= 0 && cursor < len(items) && items[cursor] == item{kind: kind, index: index}
	}

	var w lineWriter
	section := func(id, title string) {
		if w.line() > 0 {
			w.blank()
		}
		out.offsets[id] = w.line()
		w.add(sectionTitleStyle.Render(title))
		w.add(mutedStyle.Render(strings.Repeat("─", min(width, 40))))
	}

	out.offsets[page.Home] = 0
	w.add(avatarStyle.Render(page.Initials(v.Name)) + " " + nameStyle.Render(v.Name))
	if v.Title != "" {
		w.add(v.Title)
	}
	if v.Location != "" {
		w.add(mutedStyle.Render(v.Location))
	}

	if v.Summary != "" {
		section(page.About, "About Me")
		w.add(wordWrap(v.Summary, width))
		if len(v.Achievements) > 0 {
			w.blank()
			w.add(entryTitleStyle.Render("Achievements"))
			for _, a := range v.Achievements {
				w.add(wordWrap("• "+a, width))
			}
		}
		if len(v.Certifications) > 0 {
			w.blank()
			w.add(entryTitleStyle.Render("Certifications"))
			for _, c := range v.Certifications {
				w.add(wordWrap("• "+c, width))
			}
		}
	}

	if len(v.Skills) > 0 {
		section(page.Skills, "Skills")
		for _, c := range v.Skills {
			w.add(entryTitleStyle.Render(c.Name))
			w.add(tagStyle.Render(wordWrap(strings.Join(c.Items, " · "), width)))
		}
	}

	if len(v.Experience) > 0 {
		section(page.Experience, "Work Experience")
		for _, e := range v.Experience {
			marker := "▸"
			if e.Expanded {
				marker = "▾"
			}
			title := fmt.Sprintf("%s %s", marker, e.Role)
			if e.Company != "" {
				title += " at " + e.Company
			}
			out.items = append(out.items, w.line())
			if selected(itemExperience, e.Index) {
				w.add(selectedStyle.Render(title))
			} else {
				w.add(entryTitleStyle.Render(title))
			}
			if e.Period != "" {
				w.add(mutedStyle.Render("  " + e.Period))
			}
			if e.Expanded && e.Description != "" {
				w.add(indent(wordWrap(e.Description, width-2), "  "))
			}
		}
	}

	if len(v.Projects) > 0 {
		section(page.Projects, "Projects")
		for i, p := range v.Projects {
			if i > 0 {
				w.blank()
			}
			if p.Link != "" {
				out.items = append(out.items, w.line())
			}
			if selected(itemProject, i) {
				w.add(selectedStyle.Render(p.Name))
			} else {
				w.add(entryTitleStyle.Render(p.Name))
			}
			if p.Period != "" {
				w.add(mutedStyle.Render(p.Period))
			}
			if p.Description != "" {
				w.add(wordWrap(p.Description, width))
			}
			if len(p.Technologies) > 0 {
				w.add(tagStyle.Render(wordWrap(strings.Join(p.Technologies, " · "), width)))
			}
			if p.Link != "" {
				w.add(mutedStyle.Render("→ " + p.Link))
			}
		}
	}

	if len(v.Education) > 0 {
		section(page.Education, "Education")
		for _, e := range v.Education {
			w.add(entryTitleStyle.Render(e.Degree))
			meta := e.Institution
			if e.Period != "" {
				meta += " · " + e.Period
			}
			w.add(mutedStyle.Render(meta))
			if e.Details != "" {
				w.add(wordWrap(e.Details, width))
			}
		}
	}

	if len(v.Contacts) > 0 {
		section(page.Contact, "Get In Touch")
		for _, c := range v.Contacts {
			w.add(fmt.Sprintf("%s %s", entryTitleStyle.Render(c.Label+":"), c.Text))
		}
	}

	out.content = strings.Join(w.lines, "\n")
	return out
}

// spyOffsets converts section line offsets to the scroll spy's scale.
func spyOffsets(offsets map[string]int) map[string]int {
	scaled := make(map[string]int, len(offsets))
	for id, line := range offsets {
		scaled[id] = line * lineHeight
	}
	return scaled
}

func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

func wordWrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if lipgloss.Width(line)+1+lipgloss.Width(w) <= width {
			line += " " + w
		} else {
			lines = append(lines, line)
			line = w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
