package analytics

import (
	"slices"
	"strings"

	"github.com/go-faster/errors"

	"github.com/xenking/cat-canteen/internal/domain/order"
)

// NoPreference is reported as MostPopular when no drink carries the attribute.
const NoPreference = "N/A"

// Attribute selects the drink option a preference rollup is computed over.
type Attribute string

const (
	AttributeTemperature Attribute = "ice_level"
	AttributeSweetness   Attribute = "sweetness"
)

// ParseAttribute accepts the attribute names and the URL path forms
// "ice-level", "temperature".
func ParseAttribute(s string) (Attribute, error) {
	switch s {
	case "ice_level", "ice-level", "temperature":
		return AttributeTemperature, nil
	case "sweetness":
		return AttributeSweetness, nil
	}
	return "", errors.Errorf("unknown drink attribute %q", s)
}

// options returns the attribute's known values in menu order.
func (a Attribute) options() []string {
	var out []string
	switch a {
	case AttributeTemperature:
		for _, t := range order.Temperatures {
			out = append(out, string(t))
		}
	case AttributeSweetness:
		for _, s := range order.Sweetnesses {
			out = append(out, string(s))
		}
	}
	return out
}

func (a Attribute) value(d order.DrinkLineItem) string {
	if a == AttributeTemperature {
		return string(d.Temperature)
	}
	return string(d.Sweetness)
}

// PreferenceStat is the quantity-weighted share of one option value.
type PreferenceStat struct {
	Option     string
	Count      int
	Percentage float64
}

// PreferenceReport is the distribution of one drink attribute.
type PreferenceReport struct {
	Attribute   Attribute
	Range       Range
	Data        []PreferenceStat
	TotalDrinks int
	MostPopular string
}

// Preferences counts drink option values weighted by quantity. Drinks without
// a value for the attribute are skipped. Results are sorted by count
// descending; equal counts follow menu order, unknown values last.
func Preferences(orders []order.Order, r Range, attr Attribute) PreferenceReport {
	counts := make(map[string]int)
	total := 0
	for _, o := range orders {
		for _, d := range o.Drinks {
			v := attr.value(d)
			if v == "" {
				continue
			}
			counts[v] += d.Quantity
			total += d.Quantity
		}
	}

	rank := make(map[string]int)
	for i, opt := range attr.options() {
		rank[opt] = i
	}
	rankOf := func(v string) int {
		if i, ok := rank[v]; ok {
			return i
		}
		return len(rank)
	}

	rep := PreferenceReport{
		Attribute:   attr,
		Range:       r,
		Data:        make([]PreferenceStat, 0, len(counts)),
		TotalDrinks: total,
		MostPopular: NoPreference,
	}
	for v, n := range counts {
		rep.Data = append(rep.Data, PreferenceStat{Option: v, Count: n})
	}
	slices.SortFunc(rep.Data, func(a, b PreferenceStat) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		if ra, rb := rankOf(a.Option), rankOf(b.Option); ra != rb {
			return ra - rb
		}
		return strings.Compare(a.Option, b.Option)
	})
	for i := range rep.Data {
		rep.Data[i].Percentage = percentage(int64(rep.Data[i].Count), int64(total))
	}
	if len(rep.Data) > 0 {
		rep.MostPopular = rep.Data[0].Option
	}
	return rep
}
