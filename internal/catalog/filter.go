// Package catalog builds the SQL conditions used to filter and sort products.
package catalog

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Column is a product column that predicates and sorts may reference.
// Values are qualified with the products table alias used by the repository.
type Column string

const (
	ColumnID         Column = "p.id"
	ColumnName       Column = "p.name"
	ColumnPrice      Column = "p.price"
	ColumnCategoryID Column = "p.category_id"
	ColumnActive     Column = "p.is_active"
	ColumnFeatured   Column = "p.is_featured"
	ColumnCreatedAt  Column = "p.created_at"
	ColumnUpdatedAt  Column = "p.updated_at"
)

// Builder accumulates conditions and their positional arguments.
type Builder struct {
	conditions []string
	args       []any
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Where appends "<col> <op> $n" and binds arg to the new placeholder.
func (b *Builder) Where(col Column, op string, arg any) {
	b.conditions = append(b.conditions, fmt.Sprintf("%s %s %s", col, op, b.Bind(arg)))
}

// Bind appends arg and returns its placeholder, e.g. "$3".
func (b *Builder) Bind(arg any) string {
	b.args = append(b.args, arg)
	return fmt.Sprintf("$%d", len(b.args))
}

// Clause renders the WHERE clause, or an empty string when nothing was added.
func (b *Builder) Clause() string {
	if len(b.conditions) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(b.conditions, " AND ")
}

// Args returns the bound arguments in placeholder order.
func (b *Builder) Args() []any {
	return b.args
}

// Predicate adds zero or more conditions to a builder.
type Predicate func(*Builder)

func pass(*Builder) {}

// And composes predicates; the resulting conditions are joined with AND.
func And(preds ...Predicate) Predicate {
	return func(b *Builder) {
		for _, p := range preds {
			if p != nil {
				p(b)
			}
		}
	}
}

// NameContains matches products whose name contains name, ignoring case.
// LIKE wildcards in name are matched literally.
func NameContains(name *string) Predicate {
	if name == nil || strings.TrimSpace(*name) == "" {
		return pass
	}
	pattern := "%" + escapeLike(strings.TrimSpace(*name)) + "%"
	return func(b *Builder) {
		b.conditions = append(b.conditions, fmt.Sprintf(`%s ILIKE %s ESCAPE '\'`, ColumnName, b.Bind(pattern)))
	}
}

// PriceAtLeast matches products priced at or above min.
func PriceAtLeast(min *decimal.Decimal) Predicate {
	if min == nil {
		return pass
	}
	v := *min
	return func(b *Builder) { b.Where(ColumnPrice, ">=", v) }
}

// PriceAtMost matches products priced at or below max.
func PriceAtMost(max *decimal.Decimal) Predicate {
	if max == nil {
		return pass
	}
	v := *max
	return func(b *Builder) { b.Where(ColumnPrice, "<=", v) }
}

// InCategory matches products of one category. Nil or empty matches all.
func InCategory(categoryID *string) Predicate {
	if categoryID == nil || *categoryID == "" {
		return pass
	}
	v := *categoryID
	return func(b *Builder) { b.Where(ColumnCategoryID, "=", v) }
}

// ActiveIs matches on the active flag when it is set.
func ActiveIs(active *bool) Predicate {
	if active == nil {
		return pass
	}
	v := *active
	return func(b *Builder) { b.Where(ColumnActive, "=", v) }
}

// FeaturedIs matches on the featured flag when it is set.
func FeaturedIs(featured *bool) Predicate {
	if featured == nil {
		return pass
	}
	v := *featured
	return func(b *Builder) { b.Where(ColumnFeatured, "=", v) }
}

// Filter holds the optional product criteria. Nil fields do not filter.
type Filter struct {
	Name       *string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	CategoryID *string
	Active     *bool
	Featured   *bool
}

// Predicate combines every set criterion with AND.
func (f Filter) Predicate() Predicate {
	return And(
		NameContains(f.Name),
		PriceAtLeast(f.MinPrice),
		PriceAtMost(f.MaxPrice),
		InCategory(f.CategoryID),
		ActiveIs(f.Active),
		FeaturedIs(f.Featured),
	)
}

// Build renders a predicate into a WHERE clause and its arguments.
func Build(p Predicate) (string, []any) {
	b := NewBuilder()
	if p != nil {
		p(b)
	}
	return b.Clause(), b.Args()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
