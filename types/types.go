package types

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrProductNotFound is returned by ProductSource.GetProduct when the
// catalog has no product for a barcode.
var ErrProductNotFound = errors.New("product not found")

// Nutriments holds per-100g nutrient amounts. A nil field means the
// catalog did not report it.
type Nutriments struct {
	Energy        *float64
	Fat           *float64
	Carbohydrates *float64
	Proteins      *float64
}

// NutrientRow is one nutrient amount ready for display.
type NutrientRow struct {
	Name   string
	Amount string
}

// Rows returns energy in kJ and the macronutrients in grams, with
// "N/A" for amounts the catalog did not report.
func (n Nutriments) Rows() []NutrientRow {
	return []NutrientRow{
		{Name: "Energy", Amount: formatAmount(n.Energy, "kJ")},
		{Name: "Fat", Amount: formatAmount(n.Fat, "g")},
		{Name: "Carbohydrates", Amount: formatAmount(n.Carbohydrates, "g")},
		{Name: "Proteins", Amount: formatAmount(n.Proteins, "g")},
	}
}

func formatAmount(v *float64, unit string) string {
	if v == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64) + " " + unit
}

// Product represents one catalog record
type Product struct {
	code        string
	name        string
	categories  string
	grade       string
	ingredients string
	imageURL    string
	brands      string
	labels      []string
	nutriments  Nutriments
}

// NewProduct creates a new Product with the given fields
func NewProduct(code, name, categories, grade, ingredients, imageURL, brands string, labels []string, nutriments Nutriments) Product {
	return Product{
		code:        code,
		name:        name,
		categories:  categories,
		grade:       grade,
		ingredients: ingredients,
		imageURL:    imageURL,
		brands:      brands,
		labels:      labels,
		nutriments:  nutriments,
	}
}

// Getters for Product fields
func (p Product) Code() string           { return p.code }
func (p Product) Name() string           { return p.name }
func (p Product) Categories() string     { return p.categories }
func (p Product) Grade() string          { return p.grade }
func (p Product) Ingredients() string    { return p.ingredients }
func (p Product) ImageURL() string       { return p.imageURL }
func (p Product) Brands() string         { return p.brands }
func (p Product) Labels() []string       { return p.labels }
func (p Product) Nutriments() Nutriments { return p.nutriments }

// GradeLabel returns the upper-case nutrition grade, or "N/A".
func (p Product) GradeLabel() string {
	g := strings.TrimSpace(p.grade)
	if len(g) != 1 {
		return "N/A"
	}
	return strings.ToUpper(g)
}

// CategoryList splits the comma separated category string.
func (p Product) CategoryList() []string {
	var out []string
	for _, c := range strings.Split(p.categories, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// DisplayLabels returns the label tags in human form:
// "en:fair-trade" -> "Fair Trade".
func (p Product) DisplayLabels() []string {
	out := make([]string, 0, len(p.labels))
	for _, tag := range p.labels {
		if l := LabelDisplay(tag); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// LabelDisplay strips the language prefix from a tag and title-cases it.
func LabelDisplay(tag string) string {
	tag = strings.TrimSpace(tag)
	if i := strings.Index(tag, ":"); i >= 0 {
		tag = tag[i+1:]
	}
	tag = strings.ReplaceAll(tag, "-", " ")
	if tag == "" {
		return ""
	}
	// Casers carry state; build one per call.
	return cases.Title(language.English).String(tag)
}

// list.Item interface implementation
func (p Product) Title() string {
	if p.name == "" {
		return p.code
	}
	return p.name
}
func (p Product) Description() string { return p.categories }
func (p Product) FilterValue() string { return p.name }

// Compile-time check that Product implements list.Item
var _ list.Item = Product{}

// Category is a catalog category; ID is the tag used in category URLs
// (e.g. "en:beverages").
type Category struct {
	id       string
	name     string
	products int
}

// NewCategory creates a new Category
func NewCategory(id, name string, products int) Category {
	return Category{id: id, name: name, products: products}
}

func (c Category) ID() string    { return c.id }
func (c Category) Name() string  { return c.name }
func (c Category) Products() int { return c.products }

// list.Item interface implementation
func (c Category) Title() string       { return c.name }
func (c Category) Description() string { return c.id }
func (c Category) FilterValue() string { return c.name + " " + c.id }

var _ list.Item = Category{}

// ProductPage is one page of a list response. Count is the total number
// of matches reported by the catalog, not len(Products).
type ProductPage struct {
	Products []Product
	Count    int
	Page     int
}

// SearchQuery selects the keyword search endpoint. Category, when set,
// narrows the search to one category tag.
type SearchQuery struct {
	Term     string
	Category string
	Page     int
}

// ProductSource is the core abstraction for data access.
// No bubbletea dependency; the TUI, web UI and MCP server all call it.
type ProductSource interface {
	Categories(ctx context.Context) ([]Category, error)
	SearchProducts(ctx context.Context, q SearchQuery) (ProductPage, error)
	CategoryProducts(ctx context.Context, categoryID string, page int) (ProductPage, error)
	GetProduct(ctx context.Context, barcode string) (Product, error)
}
