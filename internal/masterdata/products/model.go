package products

// Product is one linen product type (sheet, pillowcase, gown...).
type Product struct {
	ID           int64    `json:"id"`
	Code         string   `json:"code"`
	Name         string   `json:"name"`
	CategoryID   int64    `json:"category_id"`
	CategoryName string   `json:"category_name,omitempty"`
	SizeSpec     *string  `json:"size_spec,omitempty"`
	UnitName     *string  `json:"unit_name,omitempty"`
	WeightKg     *float64 `json:"standard_weight_kg,omitempty"`
}
