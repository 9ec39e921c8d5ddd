package dto

type ProductDetail struct {
	Product
	Ingredients string     `json:"ingredients"`
	Labels      []string   `json:"labels"`
	Nutriments  Nutriments `json:"nutriments"`
}

// Nutriments are per 100 g; energy in kJ, the rest in grams. Null means
// not reported.
type Nutriments struct {
	EnergyKJ      *float64 `json:"energy_kj"`
	Fat           *float64 `json:"fat_g"`
	Carbohydrates *float64 `json:"carbohydrates_g"`
	Proteins      *float64 `json:"proteins_g"`
}
