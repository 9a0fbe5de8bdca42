// Package shell holds the parts shared by every page: the sidebar with its
// identity selector, the per-page navigation and the current identity label.
package shell

import (
	"path"
	"strings"

	"team-dashboard/backend/internal/models"
)

// Page is one of the known dashboard pages
type Page string

const (
	PageIndex     Page = "index"
	PageTeam      Page = "team"
	PageResources Page = "resources"
	PageUnknown   Page = ""
)

// Link is one navigation entry pointing at a section of the current page
type Link struct {
	Href string `json:"href"`
	Text string `json:"text"`
}

// ResolvePage maps a request path to a page
func ResolvePage(p string) Page {
	if p == "" || strings.HasSuffix(p, "/") {
		return PageIndex
	}
	switch path.Base(p) {
	case "index.html":
		return PageIndex
	case "team.html":
		return PageTeam
	case "resources.html":
		return PageResources
	}
	return PageUnknown
}

// NavLinks returns the section links of page; unknown pages get none
func NavLinks(page Page) []Link {
	switch page {
	case PageIndex:
		return []Link{
			{Href: "#project-section", Text: "项目管理"},
			{Href: "#discussion-section", Text: "团队讨论"},
		}
	case PageTeam:
		return []Link{
			{Href: "#team-members", Text: "团队成员"},
		}
	case PageResources:
		return []Link{
			{Href: "#" + models.CollectionScene.Section(), Text: "场景参考"},
			{Href: "#" + models.CollectionCharacter.Section(), Text: "人物参考"},
		}
	}
	return []Link{}
}
