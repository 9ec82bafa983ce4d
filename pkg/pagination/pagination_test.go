package pagination

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRequest_Defaults(t *testing.T) {
	p := FromRequest(httptest.NewRequest(http.MethodGet, "/products", nil))

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.Size)
	assert.Equal(t, 0, p.Offset)
	assert.Nil(t, p.Sort)
}

func TestFromRequest_CustomValues(t *testing.T) {
	p := FromRequest(httptest.NewRequest(http.MethodGet, "/products?page=3&size=50&sort=price,desc", nil))

	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 50, p.Size)
	assert.Equal(t, 100, p.Offset)
	require.NotNil(t, p.Sort)
	assert.Equal(t, "price", p.Sort.Field)
	assert.Equal(t, Desc, p.Sort.Direction)
}

func TestFromRequest_OutOfRangeFallsBack(t *testing.T) {
	tests := []struct {
		query  string
		page   int
		size   int
		offset int
	}{
		{"page=-1", 1, 20, 0},
		{"page=0", 1, 20, 0},
		{"page=abc", 1, 20, 0},
		{"page=922337203685477581&size=20", 1, 20, 0},
		{"page=99999999999999999999", 1, 20, 0},
		{"size=0", 1, 20, 0},
		{"size=101", 1, 20, 0},
		{"size=100", 1, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			p := FromRequest(httptest.NewRequest(http.MethodGet, "/products?"+tt.query, nil))
			assert.Equal(t, tt.page, p.Page)
			assert.Equal(t, tt.size, p.Size)
			assert.Equal(t, tt.offset, p.Offset)
		})
	}
}

func TestFromRequest_LargestPageKeepsOffsetPositive(t *testing.T) {
	q := "/products?size=100&page=" + strconv.Itoa(MaxPage)
	p := FromRequest(httptest.NewRequest(http.MethodGet, q, nil))

	assert.Equal(t, MaxPage, p.Page)
	assert.Positive(t, p.Offset)
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		raw  string
		want *Sort
	}{
		{"", nil},
		{"  ", nil},
		{",desc", nil},
		{"name", &Sort{Field: "name", Direction: Asc}},
		{"name,asc", &Sort{Field: "name", Direction: Asc}},
		{"price,DESC", &Sort{Field: "price", Direction: Desc}},
		{"price, desc", &Sort{Field: "price", Direction: Desc}},
		{"price,sideways", &Sort{Field: "price", Direction: Asc}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSort(tt.raw))
		})
	}
}

// --- Page ---

func TestNewPage(t *testing.T) {
	tests := []struct {
		total      int
		page       int
		totalPages int
		hasNext    bool
		hasPrev    bool
	}{
		{0, 1, 0, false, false},
		{20, 1, 1, false, false},
		{21, 1, 2, true, false},
		{45, 2, 3, true, true},
		{45, 3, 3, false, true},
	}

	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.total), func(t *testing.T) {
			p := NewPage([]int{1}, tt.total, Params{Page: tt.page, Size: 20})
			assert.Equal(t, tt.totalPages, p.TotalPages)
			assert.Equal(t, tt.hasNext, p.HasNext)
			assert.Equal(t, tt.hasPrev, p.HasPrev)
			assert.Equal(t, tt.total, p.TotalElements)
		})
	}
}

func TestNewPage_NilContentBecomesEmpty(t *testing.T) {
	p := NewPage[string](nil, 0, DefaultParams())
	assert.NotNil(t, p.Content)
	assert.Empty(t, p.Content)
}

func TestMap(t *testing.T) {
	p := NewPage([]int{1, 2, 3}, 43, Params{Page: 2, Size: 3})
	out := Map(p, func(v int) string { return strconv.Itoa(v * 10) })

	assert.Equal(t, []string{"10", "20", "30"}, out.Content)
	assert.Equal(t, p.TotalPages, out.TotalPages)
	assert.Equal(t, 43, out.TotalElements)
}
