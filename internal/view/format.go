package view

import (
	"html"
	"html/template"
	"regexp"
	"strings"
)

var urlPattern = regexp.MustCompile(`https?://[^\s]+`)

// FormatMessage renders message text as HTML. The text is escaped first, then
// bare http(s) URLs become links opening in a new tab and newlines become
// line breaks.
func FormatMessage(content string) template.HTML {
	escaped := html.EscapeString(content)
	linked := urlPattern.ReplaceAllStringFunc(escaped, func(u string) string {
		return `<a href="` + u + `" target="_blank">` + u + `</a>`
	})
	linked = strings.ReplaceAll(linked, "\r\n", "\n")
	return template.HTML(strings.ReplaceAll(linked, "\n", "<br>"))
}
