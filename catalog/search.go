package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/NelaStaffing/hardware-store-bot/core"
)

// Search returns up to topK products matching query. Identifier columns are
// tried first and the first one with any hit ends the search; only when none
// match is the name column consulted. A blank query returns an empty list.
func (c *Catalog) Search(ctx context.Context, query string, topK int) ([]core.Product, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return []core.Product{}, nil
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	for _, col := range c.columns {
		ps, err := c.q.Like(ctx, col, contains(q), topK)
		if err != nil {
			log.Debug().Err(err).Str("component", "catalog").Str("column", col).Msg("search attempt failed")
			continue
		}
		if len(ps) > 0 {
			return ps, nil
		}
	}

	ps, err := c.q.Like(ctx, NameColumn, contains(q), topK)
	if err != nil {
		return nil, fmt.Errorf("search by name: %w", err)
	}
	if ps == nil {
		ps = []core.Product{}
	}
	return ps, nil
}
