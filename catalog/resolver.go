package catalog

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/NelaStaffing/hardware-store-bot/core"
)

// Tier identifies which rung of the resolution ladder produced a match.
type Tier int

const (
	TierNone Tier = iota
	TierExact
	TierCaseInsensitive
	TierContains
)

func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierCaseInsensitive:
		return "case-insensitive"
	case TierContains:
		return "contains"
	default:
		return "none"
	}
}

// Match is a resolved product and how it was found.
type Match struct {
	Product core.Product
	Tier    Tier
	Column  string
}

// Resolve finds the product for a raw identifier. A blank identifier returns
// core.ErrEmptyIdentifier without touching the store; exhausting every tier
// returns core.ErrNoMatch. Store errors on individual attempts are skipped.
func (c *Catalog) Resolve(ctx context.Context, raw string) (*Match, error) {
	sku := strings.TrimSpace(raw)
	if sku == "" {
		return nil, core.ErrEmptyIdentifier
	}

	for _, col := range c.columns {
		p, err := c.q.Equal(ctx, col, sku)
		if c.hit(err, p != nil, TierExact, col) {
			return &Match{Product: *p, Tier: TierExact, Column: col}, nil
		}
	}

	for _, col := range c.columns {
		ps, err := c.q.Like(ctx, col, escapeLike(sku), 1)
		if c.hit(err, len(ps) > 0, TierCaseInsensitive, col) {
			return &Match{Product: ps[0], Tier: TierCaseInsensitive, Column: col}, nil
		}
	}

	for _, col := range c.columns {
		ps, err := c.q.Like(ctx, col, contains(sku), 1)
		if c.hit(err, len(ps) > 0, TierContains, col) {
			return &Match{Product: ps[0], Tier: TierContains, Column: col}, nil
		}
	}

	return nil, core.ErrNoMatch
}

func (c *Catalog) hit(err error, found bool, tier Tier, col string) bool {
	if err != nil {
		log.Debug().Err(err).Str("component", "catalog").Str("tier", tier.String()).Str("column", col).Msg("lookup attempt failed")
		return false
	}
	return found
}
