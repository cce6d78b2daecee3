// Package catalog holds the static product table the bot sells from.
// It is read-only once loaded.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultCatalog []byte

// Product is a sellable item; UnitPrice is in whole pesos per pack.
type Product struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	UnitPrice int64  `yaml:"unit_price"`
	Pack      string `yaml:"pack"`
}

// Catalog maps product ids to products and remembers menu order. Ids match
// case-insensitively.
type Catalog struct {
	Business string
	products map[string]Product
	order    []string
}

type file struct {
	Business string    `yaml:"business"`
	Products []Product `yaml:"products"`
}

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded default is invalid: %v", err))
	}
	return c
}

// Load reads a catalog from path, or returns the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(f.Business, f.Products...)
}

// New builds a catalog from products, keeping their order for menus.
func New(business string, products ...Product) (*Catalog, error) {
	if len(products) == 0 {
		return nil, errors.New("catalog has no products")
	}
	c := &Catalog{
		Business: business,
		products: make(map[string]Product, len(products)),
		order:    make([]string, 0, len(products)),
	}
	for _, p := range products {
		p.ID = strings.TrimSpace(p.ID)
		switch {
		case p.ID == "":
			return nil, fmt.Errorf("product %q has no id", p.Name)
		case p.UnitPrice <= 0:
			return nil, fmt.Errorf("product %s has non-positive price %d", p.ID, p.UnitPrice)
		}
		key := foldID(p.ID)
		if _, dup := c.products[key]; dup {
			return nil, fmt.Errorf("duplicate product id %s", p.ID)
		}
		c.products[key] = p
		c.order = append(c.order, key)
	}
	return c, nil
}

// Lookup returns the product with the given id, ignoring case.
func (c *Catalog) Lookup(id string) (Product, bool) {
	p, ok := c.products[foldID(id)]
	return p, ok
}

func foldID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// Products returns all products in menu order.
func (c *Catalog) Products() []Product {
	out := make([]Product, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.products[id])
	}
	return out
}
