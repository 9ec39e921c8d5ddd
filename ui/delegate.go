package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/qyinm/offtui/types"
)

// ProductDelegate is a custom list delegate for rendering Product items
type ProductDelegate struct{}

// Height returns the height of a list item (3 lines)
func (d ProductDelegate) Height() int {
	return 3
}

// Spacing returns the spacing between list items
func (d ProductDelegate) Spacing() int {
	return 0
}

// Update handles updates for the delegate (no-op for products)
func (d ProductDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd {
	return nil
}

// Render renders a single product item
func (d ProductDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	product, ok := item.(types.Product)
	if !ok {
		return
	}
	isSelected := index == m.Index()

	// Line 1: Grade badge + Name + Barcode
	// Format: "[A] Name                                    3017620422003"
	grade := fmt.Sprintf("[%s]", product.GradeLabel())
	gradeWidth := 6 // "[N/A] "
	code := product.Code()
	codeWidth := ansi.StringWidth(code) + 1
	availableForName := max(m.Width()-gradeWidth-codeWidth, 1)

	name := ansi.Truncate(product.Title(), availableForName, "…")
	name += strings.Repeat(" ", max(availableForName-ansi.StringWidth(name), 0))

	gradeStyle := GradeStyle(product.GradeLabel())
	nameStyle := lipgloss.NewStyle().Foreground(DraculaCyan)
	codeStyle := lipgloss.NewStyle().Foreground(DraculaComment)
	if isSelected {
		nameStyle = nameStyle.Foreground(DraculaPink).Bold(true)
		codeStyle = codeStyle.Foreground(DraculaCyan)
	}
	line1 := gradeStyle.Render(fmt.Sprintf("%-*s", gradeWidth, grade)) + nameStyle.Render(name) + " " + codeStyle.Render(code)

	// Line 2: Brands (indented)
	indent := "      "
	available := max(m.Width()-len(indent), 1)
	brands := product.Brands()
	if brands == "" {
		brands = "Unknown brand"
	}
	line2 := indent + lipgloss.NewStyle().Foreground(DraculaForeground).Render(ansi.Truncate(brands, available, "…"))

	// Line 3: Categories (indented, dimmed)
	categories := strings.Join(product.CategoryList(), " • ")
	line3 := indent + lipgloss.NewStyle().Foreground(DraculaComment).Render(ansi.Truncate(categories, available, "…"))

	fmt.Fprint(w, line1+"\n"+line2+"\n"+line3)
}

// newCategoryDelegate renders the picker rows: name, then id and product count.
func newCategoryDelegate() list.DefaultDelegate {
	d := list.NewDefaultDelegate()
	d.Styles.SelectedTitle = d.Styles.SelectedTitle.Foreground(DraculaPink).BorderForeground(DraculaPink)
	d.Styles.SelectedDesc = d.Styles.SelectedDesc.Foreground(DraculaCyan).BorderForeground(DraculaPink)
	return d
}

// categoryItem decorates a category with its product count for the picker.
type categoryItem struct {
	types.Category
}

func (c categoryItem) Description() string {
	if c.ID() == "" {
		return "show every product"
	}
	if c.Products() > 0 {
		return fmt.Sprintf("%s · %s products", c.ID(), formatCount(c.Products()))
	}
	return c.ID()
}

// formatCount formats a count with K/M suffixes
// 1000 -> "1.0K", 1422 -> "1.4K", 1000000 -> "1.0M"
func formatCount(count int) string {
	if count >= 1000000 {
		return fmt.Sprintf("%.1fM", float64(count)/1000000)
	}
	if count >= 1000 {
		return fmt.Sprintf("%.1fK", float64(count)/1000)
	}
	return fmt.Sprintf("%d", count)
}
