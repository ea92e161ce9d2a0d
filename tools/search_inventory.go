package tools

import (
	"context"

	"github.com/NelaStaffing/hardware-store-bot/catalog"
	"github.com/NelaStaffing/hardware-store-bot/core"
)

type Searcher interface {
	Search(ctx context.Context, query string, topK int) ([]core.Product, error)
}

type SearchInventoryTool struct {
	catalog Searcher
}

type SearchResult struct {
	Products []core.Product `json:"products"`
}

func NewSearchInventory(s Searcher) *SearchInventoryTool {
	return &SearchInventoryTool{catalog: s}
}

func (t *SearchInventoryTool) Name() Name {
	return SearchInventory
}

func (t *SearchInventoryTool) Description() string {
	return "Search inventory by free-text query (name or SKU). Returns up to topK products."
}

func (t *SearchInventoryTool) Params() Params {
	return Params{
		{Name: "query", Type: TypeString, Description: "Search query text", Required: true},
		{Name: "topK", Type: TypeInteger, Description: "Max number of items to return", Default: catalog.DefaultTopK},
	}
}

func (t *SearchInventoryTool) Execute(ctx context.Context, args Args) (any, error) {
	products, err := t.catalog.Search(ctx, args.String("query"), args.Int("topK"))
	if err != nil {
		return nil, err
	}
	return SearchResult{Products: products}, nil
}
