package extract

import (
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

// newMarkdownConverter builds a reusable, goroutine-safe Converter: ATX
// headings, fenced code blocks, "-" bullets, "*" emphasis, and minimally
// padded table cells, matching spec §4.9 step 9's conversion rules.
func newMarkdownConverter() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(
				table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
			),
		),
	)
}

// ToMarkdown converts sanitised HTML to Markdown. domain resolves any
// remaining relative URLs the converter encounters in <a>/<img> against the
// source page.
func ToMarkdown(conv *converter.Converter, htmlContent, domain string) (string, error) {
	return conv.ConvertString(htmlContent, converter.WithDomain(domain))
}
