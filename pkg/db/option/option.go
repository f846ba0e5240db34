// Package option provides composable gorm query options used by the
// generic repository.
package option

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// QueryOption mutates a gorm statement before execution.
type QueryOption interface {
	Apply(db *gorm.DB) *gorm.DB
}

// Operator is a SQL comparison operator for filter conditions.
type Operator string

const (
	EQ  Operator = "="
	GT  Operator = ">"
	GTE Operator = ">="
	LT  Operator = "<"
	LTE Operator = "<="
)

// Condition is a single field comparison applied as a WHERE clause.
type Condition struct {
	Field    string
	Operator Operator
	Value    any
}

type operatorOption struct {
	cond Condition
}

func (o operatorOption) Apply(db *gorm.DB) *gorm.DB {
	if o.cond.Field == "" || o.cond.Operator == "" {
		return db
	}
	return db.Where(fmt.Sprintf("%s %s ?", o.cond.Field, o.cond.Operator), o.cond.Value)
}

// ApplyOperator builds a QueryOption from a Condition.
func ApplyOperator(cond Condition) QueryOption {
	return operatorOption{cond: cond}
}

// QuerySortBy describes a requested sort with an allow-list of columns.
type QuerySortBy struct {
	SortBy  string
	OrderBy string
	Allow   map[string]bool
}

// WithQuerySortBy normalizes user-supplied sort parameters against an allow-list.
func WithQuerySortBy(sortBy, orderBy string, allow map[string]bool) QuerySortBy {
	return QuerySortBy{
		SortBy:  strings.TrimSpace(sortBy),
		OrderBy: strings.TrimSpace(orderBy),
		Allow:   allow,
	}
}

type sortOption struct {
	sort QuerySortBy
}

func (o sortOption) Apply(db *gorm.DB) *gorm.DB {
	column := o.sort.SortBy
	if column == "" || !o.sort.Allow[column] {
		column = "created_at"
	}

	direction := strings.ToLower(o.sort.OrderBy)
	if direction != "asc" && direction != "desc" {
		direction = "asc"
	}

	return db.Order(column + " " + direction)
}

// WithSortBy builds an ORDER BY option, defaulting to created_at ascending.
func WithSortBy(sort QuerySortBy) QueryOption {
	return sortOption{sort: sort}
}

type limitOption struct {
	limit int
}

func (o limitOption) Apply(db *gorm.DB) *gorm.DB {
	if o.limit <= 0 {
		return db
	}
	return db.Limit(o.limit)
}

// WithLimit caps the number of returned rows.
func WithLimit(limit int) QueryOption {
	return limitOption{limit: limit}
}
