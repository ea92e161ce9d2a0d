package reply

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

// Extraction is a reply split around its structured block. When no block
// could be recovered, Block is nil and Intro holds the whole reply.
type Extraction struct {
	Intro string `json:"intro"`
	Block *Block `json:"productList,omitempty"`
	Outro string `json:"outro"`
}

func (e Extraction) HasBlock() bool {
	return e.Block != nil
}

var typeMarker = regexp.MustCompile(`(?:"|'|&quot;)type(?:"|'|&quot;)\s*:\s*(?:"|'|&quot;)product_list(?:"|'|&quot;)`)

// Extract finds the first product_list object in text. Each candidate runs
// from an opening brace before the type marker to the nearest closing brace
// after it that yields a parseable object. It never fails; an unrecoverable
// block leaves the reply as plain prose.
func Extract(text string) Extraction {
	plain := Extraction{Intro: text}

	loc := typeMarker.FindStringIndex(text)
	if loc == nil {
		return plain
	}

	starts := indexesOf(text[:loc[0]], '{', 0)
	ends := indexesOf(text[loc[1]:], '}', loc[1])

	for _, s := range starts {
		for _, e := range ends {
			b, ok := parseBlock(text[s : e+1])
			if !ok {
				continue
			}
			return Extraction{
				Intro: strings.TrimSpace(text[:s]),
				Block: b,
				Outro: strings.TrimSpace(text[e+1:]),
			}
		}
	}
	return plain
}

func indexesOf(s string, c byte, offset int) []int {
	var out []int
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			out = append(out, i+offset)
		}
	}
	return out
}

// parseBlock tries the candidate as-is, then after each repair pass in turn.
func parseBlock(candidate string) (*Block, bool) {
	if b, ok := decode(candidate); ok {
		return b, true
	}
	for _, pass := range repairs {
		candidate = pass.apply(candidate)
		if b, ok := decode(candidate); ok {
			log.Debug().Str("component", "reply").Str("repair", pass.name).Msg("recovered product block")
			return b, true
		}
	}
	return nil, false
}

func decode(s string) (*Block, bool) {
	var b Block
	if err := json.Unmarshal([]byte(s), &b); err != nil {
		return nil, false
	}
	if b.Type != BlockType {
		return nil, false
	}
	return &b, true
}
