package order

import (
	"strings"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/cat-canteen/internal/domain/catalog"
)

func validRequest() PlaceOrderRequest {
	return PlaceOrderRequest{
		CustomerName: "王小明",
		PickupMethod: "內用",
		Note:         "不要香菜",
		Items: []ItemInput{
			{ID: "m1", Name: "貓爪咖哩飯", Quantity: 1, Price: 120},
			{ID: "dr1", Name: "貓爪拿鐵", Quantity: 1, Price: 80, Temperature: "熱", Sweetness: "正常糖"},
		},
		TotalAmount: 200,
	}
}

func TestValidate_Accepts(t *testing.T) {
	v := NewValidator(catalog.Default())

	got, err := v.Validate(validRequest())
	require.NoError(t, err)

	assert.Equal(t, "王小明", got.CustomerName)
	assert.Equal(t, PickupDineIn, got.PickupMethod)
	assert.Equal(t, int64(200), got.TotalAmount)
	require.Len(t, got.Dishes, 1)
	assert.Equal(t, "m1", got.Dishes[0].ItemID)
	require.Len(t, got.Drinks, 1)
	assert.Equal(t, "dr1", got.Drinks[0].ItemID)
	assert.Equal(t, TemperatureHot, got.Drinks[0].Temperature)
	assert.Equal(t, SweetnessNormal, got.Drinks[0].Sweetness)
}

func TestValidate_TotalMismatch(t *testing.T) {
	v := NewValidator(catalog.Default())
	req := validRequest()
	req.TotalAmount = 199

	_, err := v.Validate(req)

	var tmErr *TotalMismatchError
	require.ErrorAs(t, err, &tmErr)
	assert.Equal(t, int64(199), tmErr.Declared)
	assert.Equal(t, int64(200), tmErr.Calculated)
	assert.ErrorIs(t, err, ErrInvalidOrder)
}

func TestValidate_PriceMismatch(t *testing.T) {
	v := NewValidator(catalog.Default())
	req := validRequest()
	req.Items[1].Price = 79
	req.TotalAmount = 199

	_, err := v.Validate(req)

	var pmErr *PriceMismatchError
	require.ErrorAs(t, err, &pmErr)
	assert.Equal(t, "dr1", pmErr.ItemID)
	assert.Equal(t, int64(80), pmErr.Expected)
	assert.ErrorIs(t, err, ErrInvalidOrder)
}

func TestValidate_UnknownItem(t *testing.T) {
	v := NewValidator(catalog.Default())
	req := validRequest()
	req.Items[0].ID = "m9"

	_, err := v.Validate(req)

	var uiErr *UnknownItemError
	require.ErrorAs(t, err, &uiErr)
	assert.Equal(t, "m9", uiErr.ItemID)
}

func TestValidate_PickupMethod(t *testing.T) {
	v := NewValidator(catalog.Default())

	for _, method := range []string{"內用", "外帶", "dine_in", "takeout"} {
		req := validRequest()
		req.PickupMethod = method
		_, err := v.Validate(req)
		assert.NoError(t, err, method)
	}

	for _, method := range []string{"", "delivery", "內用 ", "DINE_IN"} {
		req := validRequest()
		req.PickupMethod = method
		_, err := v.Validate(req)
		assert.ErrorIs(t, err, ErrInvalidPickupMethod, method)
	}
}

func TestValidate_Sanitizes(t *testing.T) {
	v := NewValidator(catalog.Default())
	req := validRequest()
	req.CustomerName = "  <b>Tom's</b>  "
	req.Note = ` "hi" `

	got, err := v.Validate(req)
	require.NoError(t, err)
	assert.Equal(t, "&lt;b&gt;Tom&#x27;s&lt;&#x2F;b&gt;", got.CustomerName)
	assert.Equal(t, "&quot;hi&quot;", got.Note)
}

func TestValidate_InputLimits(t *testing.T) {
	v := NewValidator(catalog.Default())

	tests := []struct {
		name   string
		mutate func(*PlaceOrderRequest)
		want   error
	}{
		{"NoItems", func(r *PlaceOrderRequest) { r.Items = nil }, ErrEmptyItems},
		{"TooManyItems", func(r *PlaceOrderRequest) {
			r.Items = make([]ItemInput, MaxItems+1)
		}, ErrTooManyItems},
		{"BlankName", func(r *PlaceOrderRequest) { r.CustomerName = "   " }, ErrInvalidCustomerName},
		{"LongName", func(r *PlaceOrderRequest) { r.CustomerName = strings.Repeat("貓", 51) }, ErrInvalidCustomerName},
		{"LongNote", func(r *PlaceOrderRequest) { r.Note = strings.Repeat("a", 201) }, ErrNoteTooLong},
		{"ZeroTotal", func(r *PlaceOrderRequest) { r.TotalAmount = 0 }, ErrInvalidTotal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			_, err := v.Validate(req)
			require.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, ErrInvalidOrder)
		})
	}
}

func TestValidate_NameLengthCountsRunes(t *testing.T) {
	v := NewValidator(catalog.Default())
	req := validRequest()
	req.CustomerName = strings.Repeat("貓", 50)

	_, err := v.Validate(req)
	require.NoError(t, err)
}

func TestValidate_LengthLimitsApplyBeforeEscaping(t *testing.T) {
	v := NewValidator(catalog.Default())
	req := validRequest()
	req.CustomerName = strings.Repeat("/", MaxCustomerNameLen)
	req.Note = strings.Repeat("<", MaxNoteLen)

	got, err := v.Validate(req)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("&#x2F;", MaxCustomerNameLen), got.CustomerName)
	assert.Equal(t, strings.Repeat("&lt;", MaxNoteLen), got.Note)

	req.CustomerName = strings.Repeat("/", MaxCustomerNameLen+1)
	_, err = v.Validate(req)
	require.ErrorIs(t, err, ErrInvalidCustomerName)
}

func TestValidate_Quantity(t *testing.T) {
	v := NewValidator(catalog.Default())

	for _, qty := range []int{0, -1, 100} {
		req := validRequest()
		req.Items = []ItemInput{{ID: "s1", Quantity: qty, Price: 30}}
		req.TotalAmount = 30
		_, err := v.Validate(req)

		var iqErr *InvalidQuantityError
		require.ErrorAs(t, err, &iqErr, "qty %d", qty)
		assert.Equal(t, "s1", iqErr.ItemID)
	}

	req := validRequest()
	req.Items = []ItemInput{{ID: "s1", Quantity: 99, Price: 30}}
	req.TotalAmount = 99 * 30
	_, err := v.Validate(req)
	require.NoError(t, err)
}

func TestValidate_DrinkOptions(t *testing.T) {
	v := NewValidator(catalog.Default())

	req := validRequest()
	req.Items[1].Temperature = "lava"
	_, err := v.Validate(req)
	var optErr *InvalidDrinkOptionError
	require.ErrorAs(t, err, &optErr)
	assert.Equal(t, "temperature", optErr.Field)

	req = validRequest()
	req.Items[1].Sweetness = "extra"
	_, err = v.Validate(req)
	require.ErrorAs(t, err, &optErr)
	assert.Equal(t, "sweetness", optErr.Field)

	req = validRequest()
	req.Items[1].Temperature = ""
	req.Items[1].Sweetness = ""
	got, err := v.Validate(req)
	require.NoError(t, err)
	assert.Empty(t, got.Drinks[0].Temperature)
	assert.Empty(t, got.Drinks[0].Sweetness)
}

func TestValidate_PartitionsByKind(t *testing.T) {
	v := NewValidator(catalog.Default())
	req := validRequest()
	req.Items = []ItemInput{
		{ID: "dr2", Quantity: 2, Price: 90},
		{ID: "d1", Quantity: 1, Price: 60},
		{ID: "s3", Quantity: 3, Price: 50},
		{ID: "dr5", Quantity: 1, Price: 60},
	}
	req.TotalAmount = 180 + 60 + 150 + 60

	got, err := v.Validate(req)
	require.NoError(t, err)

	require.Len(t, got.Dishes, 2)
	assert.Equal(t, "d1", got.Dishes[0].ItemID)
	assert.Equal(t, "s3", got.Dishes[1].ItemID)
	require.Len(t, got.Drinks, 2)
	assert.Equal(t, "dr2", got.Drinks[0].ItemID)
	assert.Equal(t, "dr5", got.Drinks[1].ItemID)
	assert.Equal(t, "焦糖瑪奇朵", got.Drinks[0].Name)
}

func TestValidate_ChecksItemsBeforeTotal(t *testing.T) {
	v := NewValidator(catalog.Default())
	req := validRequest()
	req.Items[0].Price = 1
	req.TotalAmount = 5

	_, err := v.Validate(req)

	var pmErr *PriceMismatchError
	assert.True(t, errors.As(err, &pmErr))
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "", Sanitize("   "))
	assert.Equal(t, "a &lt; b", Sanitize(" a < b "))
	assert.Equal(t, "http:&#x2F;&#x2F;x", Sanitize("http://x"))
}
