// Package reply splits an assistant reply into prose and the single embedded
// product_list block.
package reply

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

const BlockType = "product_list"

// Block is the structured payload the assistant embeds in its reply.
type Block struct {
	Type     string `json:"type"`
	Products []Item `json:"products"`
}

type Item struct {
	Name  string     `json:"name"`
	SKU   FlexString `json:"SKU"`
	Price FlexFloat  `json:"price"`
	Aisle FlexString `json:"aisle"`
}

// FlexString accepts a JSON string or number.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = FlexString(n.String())
	return nil
}

// FlexFloat accepts a JSON number or a numeric string such as "$12.50".
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		v = strings.TrimPrefix(strings.TrimSpace(v), "$")
		if v == "" {
			*f = 0
			return nil
		}
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		*f = FlexFloat(p)
		return nil
	}
	var p float64
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*f = FlexFloat(p)
	return nil
}
