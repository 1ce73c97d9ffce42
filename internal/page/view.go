package page

import (
	"strings"

	"github.com/amishk599/folio/internal/model"
)

// View is the render-ready portfolio. Sections without data are left empty
// and are skipped by renderers.
type View struct {
	Name     string
	Title    string
	Location string
	Summary  string

	Skills       []model.SkillCategory
	Experience   []ExperienceItem
	Projects     []model.Project
	Education    []model.Education
	Achievements []string

	Certifications []string
	Contacts       []ContactLink
}

// ExperienceItem is an accordion entry.
type ExperienceItem struct {
	model.Experience
	Index    int
	Expanded bool
}

// ContactLink is one way to reach the owner.
type ContactLink struct {
	Label string
	Text  string
	Href  string
}

// Build assembles the view of r with the experience entries expanded per acc.
// A nil accordion leaves every entry collapsed.
func Build(r model.Resume, acc *Accordion) View {
	v := View{
		Name:           r.Name,
		Title:          r.Title,
		Location:       r.Location,
		Summary:        r.Summary,
		Projects:       r.Projects,
		Education:      r.Education,
		Achievements:   r.Achievements,
		Certifications: r.Certifications,
	}

	for _, c := range r.Skills {
		if len(c.Items) > 0 {
			v.Skills = append(v.Skills, c)
		}
	}

	for i, e := range r.Experience {
		v.Experience = append(v.Experience, ExperienceItem{
			Experience: e,
			Index:      i,
			Expanded:   acc != nil && acc.IsExpanded(i),
		})
	}

	if r.Email != "" {
		v.Contacts = append(v.Contacts, ContactLink{Label: "Email", Text: r.Email, Href: "mailto:" + r.Email})
	}
	if r.Phone != "" {
		v.Contacts = append(v.Contacts, ContactLink{Label: "Phone", Text: r.Phone, Href: "tel:" + strings.ReplaceAll(r.Phone, " ", "")})
	}
	if r.LinkedIn != "" {
		v.Contacts = append(v.Contacts, ContactLink{Label: "LinkedIn", Text: r.LinkedIn, Href: AbsoluteURL(r.LinkedIn)})
	}
	if r.GitHub != "" {
		v.Contacts = append(v.Contacts, ContactLink{Label: "GitHub", Text: r.GitHub, Href: AbsoluteURL(r.GitHub)})
	}
	if r.Location != "" {
		v.Contacts = append(v.Contacts, ContactLink{Label: "Location", Text: r.Location})
	}
	return v
}

// Initials returns up to two initials of name for the hero avatar.
func Initials(name string) string {
	var out []rune
	for _, f := range strings.Fields(name) {
		out = append(out, []rune(strings.ToUpper(f))[0])
		if len(out) == 2 {
			break
		}
	}
	return string(out)
}

// AbsoluteURL prefixes scheme-less links with https://.
func AbsoluteURL(s string) string {
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return s
	}
	return "https://" + s
}
