// Package shop sells lesson packs and merchandise for points earned in
// quizzes, or through the billing provider for paid packages.
package shop

import (
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Kind tells digital items from ones that need shipping
type Kind string

const (
	Digital  Kind = "digital"
	Physical Kind = "physical"
)

// Item is something for sale
type Item struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
	Kind  Kind   `yaml:"kind"`
	// Price in points per unit. Ignored when Package is set.
	Price int `yaml:"price"`
	// Package is the billing package id for items sold for money
	Package string `yaml:"package,omitempty"`
	// Entitlement granted when a digital item is bought
	Entitlement string `yaml:"entitlement,omitempty"`
}

// Paid reports whether the item goes through the billing provider
func (i Item) Paid() bool {
	return i.Package != ""
}

// Catalog is the set of items for sale, keyed by id
type Catalog struct {
	items map[string]Item
}

type catalogFile struct {
	Items []Item `yaml:"items"`
}

// NewCatalog builds a catalog, rejecting duplicate or malformed items
func NewCatalog(items ...Item) (*Catalog, error) {
	c := &Catalog{items: make(map[string]Item, len(items))}
	for _, it := range items {
		if it.ID == "" {
			return nil, errors.New("catalog item without id")
		}
		if _, dup := c.items[it.ID]; dup {
			return nil, errors.Errorf("duplicate catalog item %q", it.ID)
		}
		switch it.Kind {
		case Digital, Physical:
		case "":
			it.Kind = Digital
		default:
			return nil, errors.Errorf("item %q: unknown kind %q", it.ID, it.Kind)
		}
		if !it.Paid() && it.Price <= 0 {
			return nil, errors.Errorf("item %q: price must be positive", it.ID)
		}
		c.items[it.ID] = it
	}
	return c, nil
}

// DefaultCatalog is the built-in store offering
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(
		Item{ID: "rhythm-atlas", Title: "Rhythm strip atlas", Kind: Digital, Price: 50, Entitlement: "atlas"},
		Item{ID: "stemi-pack", Title: "STEMI recognition pack", Kind: Digital, Price: 80, Entitlement: "stemi"},
		Item{ID: "pro-bundle", Title: "All lesson packs", Kind: Digital, Package: "pro_bundle", Entitlement: "pro"},
		Item{ID: "calipers", Title: "ECG calipers", Kind: Physical, Price: 120},
		Item{ID: "pocket-card", Title: "Pocket reference card", Kind: Physical, Price: 30},
	)
	if err != nil {
		panic(err)
	}
	return c
}

// ReadCatalog decodes a YAML catalog
func ReadCatalog(r io.Reader) (*Catalog, error) {
	var f catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, errors.Wrap(err, "decode catalog")
	}
	return NewCatalog(f.Items...)
}

// LoadCatalog reads a YAML catalog file
func LoadCatalog(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open catalog")
	}
	defer f.Close()
	return ReadCatalog(f)
}

// Find returns the item with the given id
func (c *Catalog) Find(id string) (Item, bool) {
	it, ok := c.items[id]
	return it, ok
}

// Items returns all items sorted by id
func (c *Catalog) Items() []Item {
	out := make([]Item, 0, len(c.items))
	for _, it := range c.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Packages maps billing package ids to the entitlements their items grant,
// in the shape backend.NewMemoryBilling expects.
func (c *Catalog) Packages() map[string][]string {
	pk := make(map[string][]string)
	for _, it := range c.items {
		if !it.Paid() {
			continue
		}
		if it.Entitlement != "" {
			pk[it.Package] = append(pk[it.Package], it.Entitlement)
		} else if _, ok := pk[it.Package]; !ok {
			pk[it.Package] = nil
		}
	}
	return pk
}
