package render

import (
	"datalens/domain/report"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// HTML renders the Markdown form of a report as a standalone HTML page.
func HTML(res *report.Result) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(Markdown(res)))

	r := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage | html.HrefTargetBlank,
		Title: "Analysis report: " + res.Report.DatasetHandle,
	})
	return markdown.Render(doc, r)
}
