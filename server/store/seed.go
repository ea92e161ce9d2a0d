package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/NelaStaffing/hardware-store-bot/core"
)

// LoadProducts reads a product list from a .yaml, .yml, .xlsx or .csv file.
// Spreadsheets need a header row naming at least the sku column.
func LoadProducts(path string) ([]core.Product, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return loadYAML(path)
	case ".xlsx":
		rows, err := xlsxRows(path)
		if err != nil {
			return nil, err
		}
		return productsFromRows(rows)
	case ".csv":
		rows, err := csvRows(path)
		if err != nil {
			return nil, err
		}
		return productsFromRows(rows)
	default:
		return nil, fmt.Errorf("unsupported product file %q", filepath.Base(path))
	}
}

func loadYAML(path string) ([]core.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read products: %w", err)
	}

	var list []core.Product
	if err := yaml.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var doc struct {
		Products []core.Product `yaml:"products"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse products: %w", err)
	}
	return doc.Products, nil
}

func xlsxRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}
	return rows, nil
}

func csvRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return rows, nil
}

func productsFromRows(rows [][]string) ([]core.Product, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("product sheet is empty")
	}

	idx := map[string]int{}
	for i, h := range rows[0] {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := idx["sku"]; !ok {
		return nil, fmt.Errorf("product sheet has no sku column")
	}

	cell := func(row []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	products := make([]core.Product, 0, len(rows)-1)
	for n, row := range rows[1:] {
		p := core.Product{
			SKU:         cell(row, "sku"),
			Name:        cell(row, "name"),
			Aisle:       cell(row, "aisle"),
			Description: cell(row, "description"),
			URL:         cell(row, "url"),
		}
		if p.SKU == "" {
			continue
		}
		if raw := strings.TrimPrefix(cell(row, "price"), "$"); raw != "" {
			price, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid price %q", n+2, raw)
			}
			p.Price = price
		}
		products = append(products, p)
	}
	return products, nil
}
