// Package catalog holds the fixed set of items the counter sells.
package catalog

import (
	"github.com/go-faster/errors"
)

// Kind separates dishes from drinks. It is resolved once when the catalog is
// built and drives every dish/drink partition downstream.
type Kind uint8

const (
	// KindDish is any food item: mains, soups, desserts.
	KindDish Kind = iota + 1
	// KindDrink is a beverage that may carry temperature and sweetness options.
	KindDrink
)

func (k Kind) String() string {
	switch k {
	case KindDish:
		return "dish"
	case KindDrink:
		return "drink"
	default:
		return "unknown"
	}
}

// Category groups items on the menu.
type Category string

const (
	CategoryMains    Category = "mains"
	CategorySoups    Category = "soups"
	CategoryDesserts Category = "desserts"
	CategoryDrinks   Category = "drinks"
)

// Kind reports the item kind implied by the category.
func (c Category) Kind() Kind {
	if c == CategoryDrinks {
		return KindDrink
	}
	return KindDish
}

// Item is a sellable catalog entry. Prices are whole currency units.
type Item struct {
	ID       string
	Name     string
	Price    int64
	Category Category
	Kind     Kind
}

// Section is one menu category with its items in menu order.
type Section struct {
	Category Category
	Items    []Item
}

// Catalog is an immutable id -> Item lookup. The zero value is empty; build
// one with New or Default.
type Catalog struct {
	items []Item
	byID  map[string]int
}

// New builds a catalog from items in menu order. Item kinds are derived from
// their categories.
func New(items ...Item) (*Catalog, error) {
	c := &Catalog{
		items: make([]Item, 0, len(items)),
		byID:  make(map[string]int, len(items)),
	}
	for _, it := range items {
		if it.ID == "" {
			return nil, errors.New("item id is empty")
		}
		if it.Price <= 0 {
			return nil, errors.Errorf("item %s: price must be positive", it.ID)
		}
		if _, dup := c.byID[it.ID]; dup {
			return nil, errors.Errorf("item %s: duplicate id", it.ID)
		}
		it.Kind = it.Category.Kind()
		c.byID[it.ID] = len(c.items)
		c.items = append(c.items, it)
	}
	return c, nil
}

// MustNew is like New but panics on error.
func MustNew(items ...Item) *Catalog {
	c, err := New(items...)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the item with the given id.
func (c *Catalog) Lookup(id string) (Item, bool) {
	if c == nil {
		return Item{}, false
	}
	i, ok := c.byID[id]
	if !ok {
		return Item{}, false
	}
	return c.items[i], true
}

// Items returns a copy of all items in menu order.
func (c *Catalog) Items() []Item {
	if c == nil {
		return nil
	}
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of items.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// Sections groups items by category, keeping the order in which categories
// first appear.
func (c *Catalog) Sections() []Section {
	if c == nil {
		return nil
	}
	var sections []Section
	idx := make(map[Category]int)
	for _, it := range c.items {
		i, ok := idx[it.Category]
		if !ok {
			i = len(sections)
			idx[it.Category] = i
			sections = append(sections, Section{Category: it.Category})
		}
		sections[i].Items = append(sections[i].Items, it)
	}
	return sections
}
