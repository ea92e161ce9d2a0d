package core

// Product is a catalog record. JSON keys follow the storefront's column names.
type Product struct {
	SKU         string  `json:"SKU" yaml:"sku"`
	Name        string  `json:"name" yaml:"name"`
	Price       float64 `json:"price" yaml:"price"`
	Aisle       string  `json:"aisle,omitempty" yaml:"aisle"`
	Description string  `json:"description,omitempty" yaml:"description"`
	URL         string  `json:"URL,omitempty" yaml:"url"`
}
