package order

import (
	"strings"
	"unicode/utf8"

	"github.com/xenking/cat-canteen/internal/domain/catalog"
)

// Input limits. Text lengths count runes of the trimmed text as submitted;
// escaping may make the stored text longer.
const (
	MaxItems           = 50
	MinQuantity        = 1
	MaxQuantity        = 99
	MaxCustomerNameLen = 50
	MaxNoteLen         = 200
)

// ItemInput is a line item as submitted by the client. Price is a claim that
// is checked against the catalog; Name is informational only.
type ItemInput struct {
	ID          string
	Name        string
	Quantity    int
	Price       int64
	Temperature string
	Sweetness   string
}

// PlaceOrderRequest holds the input for placing an order.
type PlaceOrderRequest struct {
	CustomerName string
	PickupMethod string
	Note         string
	Items        []ItemInput
	TotalAmount  int64
}

// Validated is the result of a successful validation: sanitized text, typed
// pickup method, partitioned line items and the confirmed total.
type Validated struct {
	CustomerName string
	PickupMethod PickupMethod
	Note         string
	Dishes       []LineItem
	Drinks       []DrinkLineItem
	TotalAmount  int64
}

var htmlEscaper = strings.NewReplacer(
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2F;",
)

// Sanitize trims s and escapes the characters < > " ' / as HTML entities.
// Stored text is never encoded again, so this is the only escaping point.
func Sanitize(s string) string {
	return htmlEscaper.Replace(strings.TrimSpace(s))
}

// Validator checks orders against a catalog. It holds no mutable state.
type Validator struct {
	catalog *catalog.Catalog
}

// NewValidator returns a Validator for the given catalog.
func NewValidator(c *catalog.Catalog) *Validator {
	return &Validator{catalog: c}
}

// Validate runs every check and returns the validated order contents. Nothing
// is returned unless all checks pass.
func (v *Validator) Validate(req PlaceOrderRequest) (*Validated, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	if len(req.Items) > MaxItems {
		return nil, ErrTooManyItems
	}
	if req.TotalAmount <= 0 {
		return nil, ErrInvalidTotal
	}

	name := strings.TrimSpace(req.CustomerName)
	if n := utf8.RuneCountInString(name); n == 0 || n > MaxCustomerNameLen {
		return nil, ErrInvalidCustomerName
	}
	note := strings.TrimSpace(req.Note)
	if utf8.RuneCountInString(note) > MaxNoteLen {
		return nil, ErrNoteTooLong
	}

	out := &Validated{
		CustomerName: Sanitize(name),
		Note:         Sanitize(note),
	}

	// Catalog membership and price claims.
	items := make([]catalog.Item, len(req.Items))
	for i, in := range req.Items {
		it, ok := v.catalog.Lookup(in.ID)
		if !ok {
			return nil, &UnknownItemError{ItemID: in.ID}
		}
		if in.Quantity < MinQuantity || in.Quantity > MaxQuantity {
			return nil, &InvalidQuantityError{ItemID: in.ID, Quantity: in.Quantity}
		}
		if in.Price != it.Price {
			return nil, &PriceMismatchError{ItemID: in.ID, Name: it.Name, Claimed: in.Price, Expected: it.Price}
		}
		if it.Kind == catalog.KindDrink {
			if err := checkDrinkOptions(in); err != nil {
				return nil, err
			}
		}
		items[i] = it
	}

	method, ok := ParsePickupMethod(req.PickupMethod)
	if !ok {
		return nil, ErrInvalidPickupMethod
	}
	out.PickupMethod = method

	var total int64
	for _, in := range req.Items {
		total += in.Price * int64(in.Quantity)
	}
	if total != req.TotalAmount {
		return nil, &TotalMismatchError{Declared: req.TotalAmount, Calculated: total}
	}
	out.TotalAmount = total

	for i, in := range req.Items {
		li := LineItem{
			ItemID:    items[i].ID,
			Name:      items[i].Name,
			Quantity:  in.Quantity,
			UnitPrice: items[i].Price,
		}
		switch items[i].Kind {
		case catalog.KindDrink:
			out.Drinks = append(out.Drinks, DrinkLineItem{
				LineItem:    li,
				Temperature: Temperature(in.Temperature),
				Sweetness:   Sweetness(in.Sweetness),
			})
		default:
			out.Dishes = append(out.Dishes, li)
		}
	}

	return out, nil
}

func checkDrinkOptions(in ItemInput) error {
	if in.Temperature != "" && !Temperature(in.Temperature).Valid() {
		return &InvalidDrinkOptionError{ItemID: in.ID, Field: "temperature", Value: in.Temperature}
	}
	if in.Sweetness != "" && !Sweetness(in.Sweetness).Valid() {
		return &InvalidDrinkOptionError{ItemID: in.ID, Field: "sweetness", Value: in.Sweetness}
	}
	return nil
}
