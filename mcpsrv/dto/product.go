package dto

type Product struct {
	Code           string   `json:"code"`
	Name           string   `json:"name"`
	Brands         string   `json:"brands"`
	NutritionGrade string   `json:"nutrition_grade"`
	Categories     []string `json:"categories"`
	ImageURL       string   `json:"image_url"`
}

type Category struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Products int    `json:"products"`
}

type Query struct {
	Term      string `json:"term"`
	Category  string `json:"category"`
	Sort      string `json:"sort"`
	Direction string `json:"direction"`
}

type Page struct {
	Current int  `json:"current"`
	Total   int  `json:"total"`
	HasPrev bool `json:"has_prev"`
	HasNext bool `json:"has_next"`
}

// ProductList is one sorted page of results.
type ProductList struct {
	Query Query     `json:"query"`
	Page  Page      `json:"page"`
	Items []Product `json:"items"`
}
