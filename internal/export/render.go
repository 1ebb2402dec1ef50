package export

import (
	"fmt"
	"html"
	"strings"

	"plume/internal/project"
	"plume/internal/sediment"
)

func renderMarkdown(proj *project.Project, document []sediment.DocumentSection) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", proj.Title)
	fmt.Fprintf(&b, "*%s — %s*\n\n", proj.DocType, proj.Discipline)
	for _, section := range document {
		fmt.Fprintf(&b, "## %s\n\n", section.Title)
		b.WriteString(section.Body)
		b.WriteString("\n\n")
		if len(section.Citations) > 0 {
			b.WriteString("### Références\n\n")
			for _, citation := range section.Citations {
				b.WriteString("- ")
				b.WriteString(formatCitation(citation))
				b.WriteString("\n")
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func renderHTML(proj *project.Project, document []sediment.DocumentSection) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"fr\">\n<head>\n")
	b.WriteString("<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(proj.Title))
	b.WriteString("</head>\n<body>\n")
	fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(proj.Title))
	fmt.Fprintf(&b, "<p><em>%s — %s</em></p>\n",
		html.EscapeString(string(proj.DocType)), html.EscapeString(string(proj.Discipline)))
	for _, section := range document {
		fmt.Fprintf(&b, "<h2>%s</h2>\n", html.EscapeString(section.Title))
		for _, paragraph := range strings.Split(section.Body, "\n\n") {
			paragraph = strings.TrimSpace(paragraph)
			if paragraph == "" {
				continue
			}
			fmt.Fprintf(&b, "<p>%s</p>\n", html.EscapeString(paragraph))
		}
		if len(section.Citations) > 0 {
			b.WriteString("<h3>Références</h3>\n<ul>\n")
			for _, citation := range section.Citations {
				fmt.Fprintf(&b, "<li>%s</li>\n", html.EscapeString(formatCitation(citation)))
			}
			b.WriteString("</ul>\n")
		}
	}
	b.WriteString("</body>\n</html>\n")
	return b.String()
}

func renderLaTeX(proj *project.Project, document []sediment.DocumentSection) string {
	var b strings.Builder
	b.WriteString("\\documentclass[12pt]{article}\n")
	b.WriteString("\\usepackage[utf8]{inputenc}\n")
	b.WriteString("\\usepackage[french]{babel}\n")
	fmt.Fprintf(&b, "\\title{%s}\n", escapeLaTeX(proj.Title))
	b.WriteString("\\begin{document}\n\\maketitle\n\n")
	for _, section := range document {
		fmt.Fprintf(&b, "\\section{%s}\n\n", escapeLaTeX(section.Title))
		b.WriteString(escapeLaTeX(section.Body))
		b.WriteString("\n\n")
		if len(section.Citations) > 0 {
			b.WriteString("\\begin{itemize}\n")
			for _, citation := range section.Citations {
				fmt.Fprintf(&b, "\\item %s\n", escapeLaTeX(formatCitation(citation)))
			}
			b.WriteString("\\end{itemize}\n\n")
		}
	}
	b.WriteString("\\end{document}\n")
	return b.String()
}

func formatCitation(citation project.Citation) string {
	formatted := citation.Text
	if citation.Source != "" {
		formatted += ", " + citation.Source
	}
	if citation.Locator != "" {
		formatted += ", " + citation.Locator
	}
	return formatted
}

var latexReplacer = strings.NewReplacer(
	"\\", "\\textbackslash{}",
	"&", "\\&",
	"%", "\\%",
	"$", "\\$",
	"#", "\\#",
	"_", "\\_",
	"{", "\\{",
	"}", "\\}",
	"~", "\\textasciitilde{}",
	"^", "\\textasciicircum{}",
)

func escapeLaTeX(text string) string {
	return latexReplacer.Replace(text)
}
