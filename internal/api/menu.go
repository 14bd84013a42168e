package api

import (
	"github.com/go-faster/jx"

	"github.com/xenking/cat-canteen/internal/domain/catalog"
)

// MenuItem is a single catalog item.
type MenuItem catalog.Item

// Encode implements Encoder.
func (r *MenuItem) Encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(r.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(r.Name) })
		e.Field("price", func(e *jx.Encoder) { e.Int64(r.Price) })
		e.Field("category", func(e *jx.Encoder) { e.Str(string(r.Category)) })
	})
}

// Menu is the catalog grouped by category: {"mains": [...], "soups": [...]}.
type Menu []catalog.Section

// Encode implements Encoder.
func (r Menu) Encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		for _, s := range r {
			e.Field(string(s.Category), func(e *jx.Encoder) {
				e.Arr(func(e *jx.Encoder) {
					for _, it := range s.Items {
						item := MenuItem(it)
						item.Encode(e)
					}
				})
			})
		}
	})
}
