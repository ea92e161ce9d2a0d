// Package catalog locates products in a store whose identifier column is
// spelled inconsistently.
package catalog

import (
	"context"
	"strings"

	"github.com/NelaStaffing/hardware-store-bot/core"
)

// IdentifierColumns are the spellings of the SKU column tried, in order.
var IdentifierColumns = []string{"sku", "SKU", "Sku"}

const (
	NameColumn  = "name"
	DefaultTopK = 8
)

// Querier is the read side of a product store.
type Querier interface {
	// Equal returns the first product whose column equals value exactly,
	// or nil when there is none.
	Equal(ctx context.Context, column, value string) (*core.Product, error)
	// Like returns up to limit products whose column matches pattern
	// case-insensitively. Pattern uses SQL LIKE wildcards with backslash as
	// the escape character.
	Like(ctx context.Context, column, pattern string, limit int) ([]core.Product, error)
}

// Catalog resolves identifiers and searches products through a Querier.
type Catalog struct {
	q       Querier
	columns []string
}

func New(q Querier) *Catalog {
	return &Catalog{q: q, columns: IdentifierColumns}
}

// WithColumns overrides the identifier column spellings.
func (c *Catalog) WithColumns(columns ...string) *Catalog {
	c.columns = columns
	return c
}

func (c *Catalog) Columns() []string {
	return c.columns
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match only itself inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func contains(s string) string {
	return "%" + escapeLike(s) + "%"
}
