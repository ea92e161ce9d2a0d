package tools

import "github.com/NelaStaffing/hardware-store-bot/catalog"

// Default wires the three storefront tools to a catalog.
func Default(c *catalog.Catalog) *Registry {
	r, err := NewRegistry(
		NewSearchInventory(c),
		NewOpenProductDetail(c),
		NewFileSearch(),
	)
	if err != nil {
		panic(err)
	}
	return r
}
