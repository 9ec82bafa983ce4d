package pagination

import (
	"math"
	"net/http"
	"strconv"
	"strings"
)

const (
	DefaultPage = 1
	DefaultSize = 20
	MaxSize     = 100

	// MaxPage keeps (page-1)*size within an int for any accepted size.
	MaxPage = math.MaxInt / MaxSize
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Sort is a caller-supplied sort request. Field is unvalidated: callers must
// check it against their own allow-list.
type Sort struct {
	Field     string
	Direction Direction
}

// Params holds pagination parameters extracted from query strings.
type Params struct {
	Page   int   `json:"page"`
	Size   int   `json:"size"`
	Offset int   `json:"-"`
	Sort   *Sort `json:"-"`
}

// DefaultParams returns the default first page.
func DefaultParams() Params {
	return Params{Page: DefaultPage, Size: DefaultSize}
}

// FromRequest reads page, size and sort from the query string. Out of range
// page and size values fall back to the defaults. sort has the form
// "field,direction"; a missing or unknown direction means ascending.
func FromRequest(r *http.Request) Params {
	q := r.URL.Query()
	p := DefaultParams()

	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 && v <= MaxPage {
		p.Page = v
	}
	if v, err := strconv.Atoi(q.Get("size")); err == nil && v > 0 && v <= MaxSize {
		p.Size = v
	}
	p.Sort = ParseSort(q.Get("sort"))
	p.Offset = (p.Page - 1) * p.Size
	return p
}

// ParseSort parses "field,direction". It returns nil for an empty value.
func ParseSort(raw string) *Sort {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	field, dir, _ := strings.Cut(raw, ",")
	s := &Sort{Field: strings.TrimSpace(field), Direction: Asc}
	if strings.EqualFold(strings.TrimSpace(dir), string(Desc)) {
		s.Direction = Desc
	}
	if s.Field == "" {
		return nil
	}
	return s
}

// Page is one page of results.
type Page[T any] struct {
	Content       []T  `json:"content"`
	Page          int  `json:"page"`
	Size          int  `json:"size"`
	TotalElements int  `json:"totalElements"`
	TotalPages    int  `json:"totalPages"`
	HasNext       bool `json:"hasNext"`
	HasPrev       bool `json:"hasPrev"`
}

// NewPage creates a page from the items and the total count across all pages.
func NewPage[T any](content []T, total int, params Params) Page[T] {
	size := params.Size
	if size <= 0 {
		size = DefaultSize
	}
	totalPages := total / size
	if total%size > 0 {
		totalPages++
	}
	if content == nil {
		content = []T{}
	}

	return Page[T]{
		Content:       content,
		Page:          params.Page,
		Size:          size,
		TotalElements: total,
		TotalPages:    totalPages,
		HasNext:       params.Page < totalPages,
		HasPrev:       params.Page > 1,
	}
}

// Map converts a page of one type into a page of another, keeping the counts.
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := make([]U, len(p.Content))
	for i, item := range p.Content {
		out[i] = fn(item)
	}
	return Page[U]{
		Content:       out,
		Page:          p.Page,
		Size:          p.Size,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
		HasNext:       p.HasNext,
		HasPrev:       p.HasPrev,
	}
}
