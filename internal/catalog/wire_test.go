package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_decodePage(t *testing.T) {
	testCases := []struct {
		name      string
		body      string
		requested int
		limit     int
		expected  PageResult
		wantErr   bool
	}{
		{
			name:      "envelope",
			body:      `{"products":[{"_id":"1"},{"_id":"2"}],"page":1,"totalCount":5,"totalPages":3,"hasMore":true}`,
			requested: 1,
			limit:     2,
			expected:  PageResult{Products: []Product{{ID: "1"}, {ID: "2"}}, Page: 1, TotalCount: 5, HasMore: true},
		},
		{
			name:      "envelope last page",
			body:      `{"products":[{"_id":"3"}],"page":3,"totalCount":5,"totalPages":3,"hasMore":false}`,
			requested: 3,
			limit:     2,
			expected:  PageResult{Products: []Product{{ID: "3"}}, Page: 3, TotalCount: 5, HasMore: false},
		},
		{
			name:      "envelope without hasMore derives it",
			body:      `{"products":[{"_id":"3"},{"_id":"4"}],"page":2,"totalCount":5}`,
			requested: 2,
			limit:     2,
			expected:  PageResult{Products: []Product{{ID: "3"}, {ID: "4"}}, Page: 2, TotalCount: 5, HasMore: true},
		},
		{
			name:      "envelope without page uses requested",
			body:      `{"products":[],"totalCount":0,"hasMore":false}`,
			requested: 4,
			limit:     12,
			expected:  PageResult{Products: []Product{}, Page: 4, TotalCount: 0, HasMore: false},
		},
		{
			name:      "legacy bare array is a complete page",
			body:      ` [{"_id":"1"},{"_id":"2"},{"_id":"3"}]`,
			requested: 1,
			limit:     12,
			expected:  PageResult{Products: []Product{{ID: "1"}, {ID: "2"}, {ID: "3"}}, Page: 1, TotalCount: 3, HasMore: false},
		},
		{
			name:      "legacy empty array",
			body:      `[]`,
			requested: 1,
			limit:     12,
			expected:  PageResult{Products: []Product{}, Page: 1, TotalCount: 0, HasMore: false},
		},
		{
			name:    "scalar",
			body:    `"oops"`,
			wantErr: true,
		},
		{
			name:    "empty",
			body:    ``,
			wantErr: true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := decodePage([]byte(tc.body), tc.requested, tc.limit)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func Test_Product_JSON(t *testing.T) {
	// given
	raw := `{"_id":"1","name":"Classic White Tee","price":29.99,"category":"Clothing","department":"Men",
		"sizes":["S","M"],"colors":[{"name":"White","hex":"#FFFFFF"}],"images":["https://img/1.jpg"],"isTrending":true,"inStock":true}`

	// when
	var p Product
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	back, err := json.Marshal(p)
	require.NoError(t, err)

	// then
	assert.Equal(t, "1", p.GetID())
	assert.True(t, p.Price.Equal(NewMoney("29.99").Decimal))
	assert.Equal(t, CategoryClothing, p.Category)
	assert.Equal(t, DepartmentMen, p.Department)
	assert.Contains(t, string(back), `"price":29.99`)
}
