package validate_test

import (
	"encoding/json"
	"strings"
	"testing"

	"fieldsales-service/internal/apperr"
	"fieldsales-service/internal/validate"

	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, body string) validate.Payload {
	t.Helper()
	p := validate.Payload{}
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&p))
	return p
}

func TestRequired_ReportsFirstMissingFieldInOrder(t *testing.T) {
	p := decode(t, `{"name": "  ", "amount": 0, "type": null}`)

	err := validate.Required(p, "code", "name", "amount", "type")
	require.Equal(t, apperr.MissingField, apperr.KindOf(err))
	require.Equal(t, "code is required", apperr.Message(err))

	p["code"] = "C1"
	err = validate.Required(p, "code", "name", "amount", "type")
	require.Equal(t, "name is required", apperr.Message(err))

	p["name"] = "Ravi"
	err = validate.Required(p, "code", "name", "amount", "type")
	require.Equal(t, "type is required", apperr.Message(err), "zero is a present value")
}

func TestDecimal(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want string
		err  bool
	}{
		{name: "json number", in: json.Number("12.50"), want: "12.5"},
		{name: "numeric string", in: " 3 ", want: "3"},
		{name: "leading point", in: ".5", want: "0.5"},
		{name: "negative leading point", in: "-.5", want: "-0.5"},
		{name: "trailing point", in: "5.", want: "5"},
		{name: "float", in: 2.25, want: "2.25"},
		{name: "bare point", in: ".", err: true},
		{name: "letters", in: "abc", err: true},
		{name: "bool", in: true, err: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := validate.Decimal("quantity", tt.in)
			if tt.err {
				require.Equal(t, apperr.InvalidFormat, apperr.KindOf(err))
				require.Equal(t, "Invalid quantity", apperr.Message(err))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, d.String())
		})
	}
}

func TestPositiveWhole(t *testing.T) {
	d, err := validate.PositiveWhole("quantity", "4")
	require.NoError(t, err)
	require.Equal(t, "4", d.String())

	for _, in := range []interface{}{"0", "-1", "1.5"} {
		_, err := validate.PositiveWhole("quantity", in)
		require.Equal(t, apperr.InvalidRange, apperr.KindOf(err), in)
	}
}

func TestCoordinates(t *testing.T) {
	lat, lng, err := validate.Coordinates("12.9716", json.Number("77.5946"))
	require.NoError(t, err)
	require.Equal(t, "12.9716", lat.String())
	require.Equal(t, "77.5946", lng.String())

	_, _, err = validate.Coordinates("95", "10")
	require.Equal(t, apperr.InvalidRange, apperr.KindOf(err))
	require.Equal(t, "Invalid coordinate values", apperr.Message(err))

	_, _, err = validate.Coordinates("abc", "10")
	require.Equal(t, apperr.InvalidFormat, apperr.KindOf(err))
	require.Equal(t, "Invalid coordinate format", apperr.Message(err))

	_, _, err = validate.Coordinates("-90", "180")
	require.NoError(t, err)
	_, _, err = validate.Coordinates("0", "180.0001")
	require.Equal(t, apperr.InvalidRange, apperr.KindOf(err))
}

func TestItems(t *testing.T) {
	_, err := validate.Payload{}.Items("items")
	require.Equal(t, "items list is required", apperr.Message(err))

	_, err = decode(t, `{"items": [1]}`).Items("items")
	require.Equal(t, apperr.InvalidFormat, apperr.KindOf(err))

	items, err := decode(t, `{"items": [{"product_name": "Tea"}]}`).Items("items")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "Tea", items[0].String("product_name"))
}

func TestBool(t *testing.T) {
	p := decode(t, `{"a": true, "b": "no", "c": 1, "d": "maybe"}`)

	v, ok := p.Bool("a")
	require.True(t, ok)
	require.True(t, v)

	v, ok = p.Bool("b")
	require.True(t, ok)
	require.False(t, v)

	v, ok = p.Bool("c")
	require.True(t, ok)
	require.True(t, v)

	_, ok = p.Bool("d")
	require.False(t, ok)
	_, ok = p.Bool("missing")
	require.False(t, ok)
}
