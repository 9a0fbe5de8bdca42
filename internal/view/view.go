// Package view renders the dashboard pages from store snapshots. Everything
// here is a pure function of its inputs.
package view

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"strings"
	"time"

	"team-dashboard/backend/internal/models"
	"team-dashboard/backend/internal/shell"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"formatMessage": FormatMessage,
}).ParseFS(templatesFS, "templates/*.html"))

// Templates returns the parsed page and fragment templates
func Templates() *template.Template {
	return templates
}

// Static returns the page scripts and styles
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// PageData is the input of every page template
type PageData struct {
	Title   string
	Page    shell.Page
	PageID  string
	Sidebar shell.Sidebar

	Project  *models.Project
	Messages []MessageView

	Members []models.Role

	Tabs     []Tab
	Sections []SectionView
}

// MessageView is one rendered board entry
type MessageView struct {
	ID      string
	User    string
	Time    string
	Content template.HTML
}

// NewMessageView formats m for display
func NewMessageView(m models.Message) MessageView {
	return MessageView{ID: m.EffectiveID(), User: m.User, Time: m.Time, Content: FormatMessage(m.Content)}
}

// MessageViews formats a board in stored order
func MessageViews(messages []models.Message) []MessageView {
	out := make([]MessageView, 0, len(messages))
	for _, m := range messages {
		out = append(out, NewMessageView(m))
	}
	return out
}

// ResourceView is one gallery card. Src is only trusted for image and video
// data URIs.
type ResourceView struct {
	Collection models.Collection
	ID         string
	Name       string
	Type       string
	Src        any
	UploadedBy string
	UploadedAt string
	Image      bool
	Video      bool
}

// NewResourceView formats r; timeLayout is used for the upload date
func NewResourceView(c models.Collection, r models.Resource, timeLayout string) ResourceView {
	v := ResourceView{
		Collection: c,
		ID:         r.ID,
		Name:       r.Name,
		Type:       r.Type,
		Src:        r.Data,
		UploadedBy: r.UploadedBy,
		UploadedAt: r.UploadDate,
		Image:      r.IsImage(),
		Video:      r.IsVideo(),
	}
	if strings.HasPrefix(r.Data, "data:image/") || strings.HasPrefix(r.Data, "data:video/") {
		v.Src = template.URL(r.Data)
	}
	if t, err := time.Parse(time.RFC3339, r.UploadDate); err == nil {
		v.UploadedAt = t.Local().Format(timeLayout)
	}
	return v
}

// SectionView is one gallery section of the resources page
type SectionView struct {
	ID         string
	Title      string
	Collection models.Collection
	Visible    bool
	Resources  []ResourceView
}

// Tab is one filter of the resources page
type Tab struct {
	ID     string
	Text   string
	Active bool
}

// TabAll shows every gallery section
const TabAll = "all-resources"

var sectionTitles = map[models.Collection]string{
	models.CollectionScene:     "场景参考",
	models.CollectionCharacter: "人物参考",
}

// Tabs marks active; unknown values fall back to showing everything
func Tabs(active string) []Tab {
	if !knownTab(active) {
		active = TabAll
	}
	tabs := []Tab{{ID: TabAll, Text: "全部资源", Active: active == TabAll}}
	for _, c := range models.Collections {
		tabs = append(tabs, Tab{ID: c.Section(), Text: sectionTitles[c], Active: active == c.Section()})
	}
	return tabs
}

func knownTab(id string) bool {
	if id == TabAll {
		return true
	}
	for _, c := range models.Collections {
		if c.Section() == id {
			return true
		}
	}
	return false
}

// Sections builds the gallery sections and applies the tab filter
func Sections(active string, resources map[models.Collection][]models.Resource, timeLayout string) []SectionView {
	if !knownTab(active) {
		active = TabAll
	}
	sections := make([]SectionView, 0, len(models.Collections))
	for _, c := range models.Collections {
		views := make([]ResourceView, 0, len(resources[c]))
		for _, r := range resources[c] {
			views = append(views, NewResourceView(c, r, timeLayout))
		}
		sections = append(sections, SectionView{
			ID:         c.Section(),
			Title:      sectionTitles[c],
			Collection: c,
			Visible:    active == TabAll || active == c.Section(),
			Resources:  views,
		})
	}
	return sections
}

// PageTemplate returns the template name of page
func PageTemplate(page shell.Page) string {
	return string(page) + ".html"
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderMessage renders the board fragment of one message
func RenderMessage(m models.Message) (string, error) {
	return render("message", NewMessageView(m))
}

// RenderResource renders one gallery card
func RenderResource(v ResourceView) (string, error) {
	return render("resource_card", v)
}

// RenderPreview renders the overlay of a preview
func RenderPreview(p models.Preview) (string, error) {
	return render("preview", struct {
		OverlayID string
		Name      string
		Src       any
		Video     bool
		Autoplay  bool
	}{
		OverlayID: p.OverlayID,
		Name:      p.Resource.Name,
		Src:       NewResourceView("", p.Resource, time.RFC3339).Src,
		Video:     p.Video,
		Autoplay:  p.Autoplay,
	})
}
