package filter

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Encode(t *testing.T) {
	testCases := []struct {
		name string
		spec Spec
		page int
		want string
	}{
		{
			name: "empty filter keeps every segment",
			page: 1,
			want: "fec|d=|c=|s=|col=|p=|pg=1",
		},
		{
			name: "full filter",
			spec: Spec{Department: "Men", Category: "Clothing", Sizes: []string{"XL", "M"}, Colors: []string{"White", "Black"}, PriceRange: priceRange(0, 50)},
			page: 3,
			want: "fec|d=Men|c=Clothing|s=M,XL|col=Black,White|p=0-50|pg=3",
		},
		{
			name: "separators inside values are escaped",
			spec: Spec{Colors: []string{"Navy|Blue", "Sea,Green"}},
			page: 1,
			want: "fec|d=|c=|s=|col=Navy%7CBlue,Sea%2CGreen|p=|pg=1",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Encode(tc.spec, tc.page))
		})
	}
}

func Test_Encode_OrderIndependent(t *testing.T) {
	// given
	a := Spec{Sizes: []string{"S", "M", "L"}, Colors: []string{"Red", "Blue", "Green"}}
	b := Spec{Sizes: []string{"L", "S", "M"}, Colors: []string{"Green", "Red", "Blue"}}

	// when / then
	for page := 1; page <= 3; page++ {
		assert.Equal(t, Encode(a, page), Encode(b, page))
	}
	assert.NotEqual(t, Encode(a, 1), Encode(a, 2))
}

func Test_Encode_NoFieldCollisions(t *testing.T) {
	keys := map[string]Spec{}
	specs := []Spec{
		{},
		{Department: "Men"},
		{Category: "Shoes"},
		{Sizes: []string{"M"}},
		{Colors: []string{"M"}},
		{Colors: []string{"Red,Blue"}},
		{Colors: []string{"Red", "Blue"}},
		{PriceRange: priceRange(0, 50)},
	}
	for _, s := range specs {
		key := Encode(s, 1)
		_, dup := keys[key]
		assert.False(t, dup, "duplicate key %s", key)
		keys[key] = s
	}
}

func Test_Values_RoundTrip(t *testing.T) {
	// given
	spec := Spec{Department: "Kids", Sizes: []string{"S", "M"}, Colors: []string{"Blue"}, PriceRange: priceRange(0, 50)}

	// when
	v := Values(spec)
	back, err := FromValues(v)

	// then
	require.NoError(t, err)
	assert.Equal(t, "Kids", v.Get("department"))
	assert.Equal(t, "M,S", v.Get("sizes"))
	assert.Equal(t, "0-50", v.Get("priceRange"))
	assert.Empty(t, v.Get("category"))
	assert.True(t, spec.Equal(back))
}

func Test_FromValues_InvalidPrice(t *testing.T) {
	_, err := FromValues(url.Values{"priceRange": {"cheap"}})
	assert.Error(t, err)
}
