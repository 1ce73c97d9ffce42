package server

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/amishk599/folio/internal/chat"
	"github.com/amishk599/folio/internal/model"
	"github.com/amishk599/folio/internal/page"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const indexTemplate = "index.html.tmpl"

var templateFuncs = template.FuncMap{
	"join": strings.Join,
	"href": contactHref,
	"abs":  page.AbsoluteURL,
}

// contactHref trusts the link schemes page.Build produces. html/template
// would otherwise rewrite tel: links.
func contactHref(s string) any {
	for _, scheme := range []string{"mailto:", "tel:", "https://", "http://"} {
		if strings.HasPrefix(s, scheme) {
			return template.URL(s)
		}
	}
	return s
}

func parseTemplates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse page templates: %w", err)
	}
	return tmpl, nil
}

// PageData is what the index template renders.
type PageData struct {
	page.View
	Nav      []page.NavLink
	Initials string
	Year     int

	// APIBase prefixes the chat widget's requests. Empty means same origin.
	APIBase  string
	Greeting string
	Apology  string
	History  int
}

// NewPageData prepares r for rendering with the experience accordion acc.
func NewPageData(r model.Resume, acc *page.Accordion, apiBase string) PageData {
	return PageData{
		View:     page.Build(r, acc),
		Nav:      page.NavLinks,
		Initials: page.Initials(r.Name),
		Year:     time.Now().Year(),
		APIBase:  strings.TrimRight(apiBase, "/"),
		Greeting: chat.Greeting,
		Apology:  chat.Apology,
		History:  model.MaxHistory,
	}
}

// Render writes the portfolio page to w. It is used by `folio export` to
// produce a static copy that talks to the API at data.APIBase.
func Render(w io.Writer, data PageData) error {
	tmpl, err := parseTemplates()
	if err != nil {
		return err
	}
	if err := tmpl.ExecuteTemplate(w, indexTemplate, data); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}
