package dto

import (
	"github.com/qyinm/offtui/browse"
	"github.com/qyinm/offtui/types"
)

func FromProduct(p types.Product) Product {
	categories := p.CategoryList()
	if categories == nil {
		categories = []string{}
	}
	return Product{
		Code:           p.Code(),
		Name:           p.Title(),
		Brands:         p.Brands(),
		NutritionGrade: p.GradeLabel(),
		Categories:     categories,
		ImageURL:       p.ImageURL(),
	}
}

func FromProducts(products []types.Product) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		out = append(out, FromProduct(p))
	}
	return out
}

func FromCategory(c types.Category) Category {
	return Category{ID: c.ID(), Name: c.Name(), Products: c.Products()}
}

func FromCategories(categories []types.Category) []Category {
	out := make([]Category, 0, len(categories))
	for _, c := range categories {
		out = append(out, FromCategory(c))
	}
	return out
}

func FromProductDetail(p types.Product) ProductDetail {
	n := p.Nutriments()
	return ProductDetail{
		Product:     FromProduct(p),
		Ingredients: p.Ingredients(),
		Labels:      p.DisplayLabels(),
		Nutriments: Nutriments{
			EnergyKJ:      n.Energy,
			Fat:           n.Fat,
			Carbohydrates: n.Carbohydrates,
			Proteins:      n.Proteins,
		},
	}
}

// FromView converts a rendered list view. Sort is "none" when the server
// order is kept.
func FromView(v browse.View) ProductList {
	return ProductList{
		Query: Query{
			Term:      v.Query.SearchTerm,
			Category:  v.Query.Category,
			Sort:      v.Sort.Key.String(),
			Direction: v.Sort.Dir.String(),
		},
		Page: Page{
			Current: v.Page.Current,
			Total:   v.Page.Total,
			HasPrev: v.HasPrev,
			HasNext: v.HasNext,
		},
		Items: FromProducts(v.Products),
	}
}
