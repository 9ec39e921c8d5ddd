package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/qyinm/offtui/browse"
	"github.com/qyinm/offtui/types"
)

// detailMarkdown renders a product as the markdown shown in the detail pane.
func detailMarkdown(p types.Product) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", escapeMarkdown(p.Title()))
	fmt.Fprintf(&b, "**Barcode:** %s  \n", p.Code())
	if p.Brands() != "" {
		fmt.Fprintf(&b, "**Brands:** %s  \n", escapeMarkdown(p.Brands()))
	}
	fmt.Fprintf(&b, "**Nutrition Grade:** %s  \n", p.GradeLabel())
	if cats := p.CategoryList(); len(cats) > 0 {
		fmt.Fprintf(&b, "**Categories:** %s  \n", escapeMarkdown(strings.Join(cats, ", ")))
	}
	if p.ImageURL() != "" {
		fmt.Fprintf(&b, "**Image:** %s  \n", p.ImageURL())
	}

	b.WriteString("\n## Ingredients\n\n")
	if p.Ingredients() != "" {
		b.WriteString(escapeMarkdown(p.Ingredients()))
	} else {
		b.WriteString("_Not available_")
	}
	b.WriteString("\n\n## Nutritional Values (per 100 g)\n\n")
	b.WriteString("| Nutrient | Amount |\n|---|---|\n")
	for _, row := range p.Nutriments().Rows() {
		fmt.Fprintf(&b, "| %s | %s |\n", row.Name, row.Amount)
	}

	if labels := p.DisplayLabels(); len(labels) > 0 {
		b.WriteString("\n## Labels\n\n")
		for _, l := range labels {
			fmt.Fprintf(&b, "- %s\n", escapeMarkdown(l))
		}
	}
	return b.String()
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"|", `\|`,
	"#", `\#`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// renderDetail returns the terminal text for a settled detail. Failed
// lookups read the same as unknown barcodes.
func renderDetail(renderer *glamour.TermRenderer, d browse.Detail) string {
	if !d.Found() {
		return DetailMissingStyle.Render(browse.NotFoundMessage)
	}
	md := detailMarkdown(d.Product)
	if renderer == nil {
		return md
	}
	out, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return out
}

func newRenderer(width int) *glamour.TermRenderer {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return r
}
