package catalog

import (
	"fmt"
	"strings"

	apperrors "github.com/dungpham-npc/storefront/pkg/errors"
	"github.com/dungpham-npc/storefront/pkg/pagination"
)

var sortable = map[string]Column{
	"name":      ColumnName,
	"price":     ColumnPrice,
	"createdAt": ColumnCreatedAt,
	"updatedAt": ColumnUpdatedAt,
	"id":        ColumnID,
}

// Sort is a validated product ordering.
type Sort struct {
	Column    Column
	Direction pagination.Direction
}

// DefaultSort orders newest first.
var DefaultSort = Sort{Column: ColumnCreatedAt, Direction: pagination.Desc}

// ParseSort checks a requested sort against the allow-list. A nil request
// yields DefaultSort.
func ParseSort(s *pagination.Sort) (Sort, error) {
	if s == nil {
		return DefaultSort, nil
	}
	col, ok := sortable[s.Field]
	if !ok {
		return Sort{}, apperrors.InvalidArgument("sort", fmt.Sprintf("unsupported field %q", s.Field))
	}
	dir := pagination.Asc
	if s.Direction == pagination.Desc {
		dir = pagination.Desc
	}
	return Sort{Column: col, Direction: dir}, nil
}

// OrderBy renders the ORDER BY clause. Rows with equal sort keys are
// ordered by id so that pages are stable.
func (s Sort) OrderBy() string {
	if s.Column == "" {
		s = DefaultSort
	}
	clause := fmt.Sprintf("ORDER BY %s %s", s.Column, strings.ToUpper(string(s.Direction)))
	if s.Column != ColumnID {
		clause += fmt.Sprintf(", %s ASC", ColumnID)
	}
	return clause
}
