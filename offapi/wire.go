package offapi

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/qyinm/offtui/types"
)

// flexNumber accepts a JSON number, a numeric string, or null.
// The catalog is inconsistent about which one it sends for counts and
// nutriment amounts.
type flexNumber struct {
	value float64
	valid bool
}

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*n = flexNumber{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			// Non-numeric strings ("", "traces") mean the amount is unknown.
			*n = flexNumber{}
			return nil
		}
		*n = flexNumber{value: f, valid: true}
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		*n = flexNumber{}
		return nil
	}
	*n = flexNumber{value: f, valid: true}
	return nil
}

func (n flexNumber) ptr() *float64 {
	if !n.valid {
		return nil
	}
	v := n.value
	return &v
}

func (n flexNumber) asInt() int {
	if !n.valid || n.value < 0 {
		return 0
	}
	return int(n.value)
}

type wireNutriments struct {
	Energy        flexNumber `json:"energy"`
	Fat           flexNumber `json:"fat"`
	Carbohydrates flexNumber `json:"carbohydrates"`
	Proteins      flexNumber `json:"proteins"`
}

type wireProduct struct {
	Code                         string          `json:"code"`
	ProductName                  string          `json:"product_name"`
	ImageURL                     string          `json:"image_url"`
	Categories                   string          `json:"categories"`
	NutritionGrades              string          `json:"nutrition_grades"`
	IngredientsText              string          `json:"ingredients_text"`
	IngredientsTextWithAllergens string          `json:"ingredients_text_with_allergens"`
	Brands                       string          `json:"brands"`
	LabelsTags                   []string        `json:"labels_tags"`
	Nutriments                   *wireNutriments `json:"nutriments"`
}

type wireListResponse struct {
	Products []wireProduct `json:"products"`
	Count    flexNumber    `json:"count"`
	Page     flexNumber    `json:"page"`
}

type wireCategory struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Products flexNumber `json:"products"`
}

type wireCategoriesResponse struct {
	Tags []wireCategory `json:"tags"`
}

type wireProductResponse struct {
	Status  flexNumber   `json:"status"`
	Product *wireProduct `json:"product"`
}

func (w wireProduct) toProduct() types.Product {
	var n types.Nutriments
	if w.Nutriments != nil {
		n = types.Nutriments{
			Energy:        w.Nutriments.Energy.ptr(),
			Fat:           w.Nutriments.Fat.ptr(),
			Carbohydrates: w.Nutriments.Carbohydrates.ptr(),
			Proteins:      w.Nutriments.Proteins.ptr(),
		}
	}

	ingredients := w.IngredientsText
	if strings.TrimSpace(ingredients) == "" {
		ingredients = w.IngredientsTextWithAllergens
	}

	return types.NewProduct(
		strings.TrimSpace(w.Code),
		cleanText(w.ProductName),
		strings.TrimSpace(w.Categories),
		strings.ToLower(strings.TrimSpace(w.NutritionGrades)),
		cleanText(ingredients),
		strings.TrimSpace(w.ImageURL),
		strings.TrimSpace(w.Brands),
		w.LabelsTags,
		n,
	)
}

func (r wireListResponse) toPage(requested int) types.ProductPage {
	products := make([]types.Product, 0, len(r.Products))
	for _, p := range r.Products {
		products = append(products, p.toProduct())
	}
	page := r.Page.asInt()
	if page <= 0 {
		page = requested
	}
	return types.ProductPage{
		Products: products,
		Count:    r.Count.asInt(),
		Page:     page,
	}
}

// cleanText reduces catalog text that may carry markup (allergen spans,
// entities) to plain text.
func cleanText(s string) string {
	s = strings.TrimSpace(s)
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
