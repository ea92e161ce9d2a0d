package reply

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/NelaStaffing/hardware-store-bot/core"
)

const ProductNotFound = "Product not found."

type toolDirective struct {
	Tool      string `json:"tool"`
	ToolInput struct {
		ID string `json:"id"`
	} `json:"tool_input"`
}

// ParseToolDirective reports whether the whole reply is a bare
// {"tool":"openProductDetail","tool_input":{"id":...}} object and returns the id.
func ParseToolDirective(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") {
		return "", false
	}
	var d toolDirective
	if err := json.Unmarshal([]byte(trimmed), &d); err != nil {
		return "", false
	}
	if d.Tool != "openProductDetail" || d.ToolInput.ID == "" {
		return "", false
	}
	return d.ToolInput.ID, true
}

// FormatProductDetails renders a product as the plain-text detail card.
func FormatProductDetails(p core.Product) string {
	var b strings.Builder
	b.WriteString("Product Details\n")
	b.WriteString("Name: " + p.Name + "\n")
	b.WriteString("SKU: " + p.SKU + "\n")
	b.WriteString("Price: $" + strconv.FormatFloat(p.Price, 'f', -1, 64) + "\n")
	if p.Description != "" {
		b.WriteString("Description: " + p.Description + "\n")
	}
	if p.URL != "" {
		b.WriteString("URL: " + p.URL)
	}
	return b.String()
}
