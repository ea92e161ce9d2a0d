package tools

import (
	"context"
	"errors"

	"github.com/NelaStaffing/hardware-store-bot/catalog"
	"github.com/NelaStaffing/hardware-store-bot/core"
)

const ProductNotFound = "Product not found"

type Resolver interface {
	Resolve(ctx context.Context, raw string) (*catalog.Match, error)
}

type OpenProductDetailTool struct {
	resolver Resolver
}

type DetailResult struct {
	Product *core.Product `json:"product,omitempty"`
	Error   string        `json:"error,omitempty"`
}

func (r DetailResult) Failed() bool {
	return r.Product == nil
}

func NewOpenProductDetail(r Resolver) *OpenProductDetailTool {
	return &OpenProductDetailTool{resolver: r}
}

func (t *OpenProductDetailTool) Name() Name {
	return OpenProductDetail
}

func (t *OpenProductDetailTool) Description() string {
	return "Open detailed product view by SKU or exact identifier."
}

func (t *OpenProductDetailTool) Params() Params {
	return Params{
		{Name: "id", Type: TypeString, Description: "Product SKU or identifier", Required: true},
	}
}

func (t *OpenProductDetailTool) Execute(ctx context.Context, args Args) (any, error) {
	m, err := t.resolver.Resolve(ctx, args.String("id"))
	switch {
	case errors.Is(err, core.ErrNoMatch), errors.Is(err, core.ErrEmptyIdentifier):
		return DetailResult{Error: ProductNotFound}, nil
	case err != nil:
		return nil, err
	}
	return DetailResult{Product: &m.Product}, nil
}
