package export

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/vietscribe/vietscribe/app/models"
)

// Supported export formats.
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
	FormatText     = "txt"
)

func contentType(format string) string {
	switch format {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatText:
		return "text/plain; charset=utf-8"
	default:
		return "text/markdown; charset=utf-8"
	}
}

func fileExtension(format string) string {
	switch format {
	case FormatHTML:
		return ".html"
	case FormatText:
		return ".txt"
	default:
		return ".md"
	}
}

func orderedSections(sections []models.ProjectSection) []models.ProjectSection {
	out := make([]models.ProjectSection, len(sections))
	copy(out, sections)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

// RenderMarkdown renders a project with its sections and bibliography.
func RenderMarkdown(project *models.Project, sections []models.ProjectSection, citations []models.Citation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", project.Title)
	if project.Topic != "" {
		fmt.Fprintf(&b, "> %s\n\n", project.Topic)
	}
	for _, sec := range orderedSections(sections) {
		if sec.Title != "" {
			fmt.Fprintf(&b, "## %s\n\n", sec.Title)
		}
		if sec.Content != "" {
			b.WriteString(sec.Content)
			b.WriteString("\n\n")
		}
	}
	if len(citations) > 0 {
		b.WriteString("## Tài liệu tham khảo\n\n")
		for _, c := range citations {
			fmt.Fprintf(&b, "- %s\n", c.Formatted)
		}
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// RenderHTML renders a project as a standalone HTML document.
func RenderHTML(project *models.Project, sections []models.ProjectSection, citations []models.Citation) string {
	var b strings.Builder
	lang := project.Language
	if lang == "" {
		lang = "vi"
	}
	fmt.Fprintf(&b, "<!DOCTYPE html>\n<html lang=%q>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n", lang, html.EscapeString(project.Title))
	fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(project.Title))
	if project.Topic != "" {
		fmt.Fprintf(&b, "<p><em>%s</em></p>\n", html.EscapeString(project.Topic))
	}
	for _, sec := range orderedSections(sections) {
		if sec.Title != "" {
			fmt.Fprintf(&b, "<h2>%s</h2>\n", html.EscapeString(sec.Title))
		}
		for _, para := range strings.Split(sec.Content, "\n\n") {
			para = strings.TrimSpace(para)
			if para != "" {
				fmt.Fprintf(&b, "<p>%s</p>\n", html.EscapeString(para))
			}
		}
	}
	if len(citations) > 0 {
		b.WriteString("<h2>Tài liệu tham khảo</h2>\n<ul>\n")
		for _, c := range citations {
			fmt.Fprintf(&b, "<li>%s</li>\n", html.EscapeString(c.Formatted))
		}
		b.WriteString("</ul>\n")
	}
	b.WriteString("</body>\n</html>\n")
	return b.String()
}

// RenderText renders a project as plain text.
func RenderText(project *models.Project, sections []models.ProjectSection, citations []models.Citation) string {
	var b strings.Builder
	b.WriteString(project.Title)
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", len([]rune(project.Title))))
	b.WriteString("\n\n")
	for _, sec := range orderedSections(sections) {
		if sec.Title != "" {
			b.WriteString(sec.Title)
			b.WriteString("\n\n")
		}
		if sec.Content != "" {
			b.WriteString(sec.Content)
			b.WriteString("\n\n")
		}
	}
	if len(citations) > 0 {
		b.WriteString("Tài liệu tham khảo\n\n")
		for _, c := range citations {
			fmt.Fprintf(&b, "- %s\n", c.Formatted)
		}
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}
