package reply

import (
	"regexp"
	"strings"
)

type repair struct {
	name  string
	apply func(string) string
}

var trailingComma = regexp.MustCompile(`,(\s*[}\]])`)

// repairs run in order, each on the output of the previous one.
var repairs = []repair{
	{name: "trailing-commas", apply: func(s string) string {
		return trailingComma.ReplaceAllString(s, "$1")
	}},
	{name: "single-quotes", apply: func(s string) string {
		return strings.ReplaceAll(s, "'", `"`)
	}},
	{name: "html-quotes", apply: func(s string) string {
		return strings.ReplaceAll(s, "&quot;", `"`)
	}},
}
