// Package member orders all body declarations of a type: methods by the
// method comparator, everything else by category and source position.
package member

import (
	"fmt"
	"strings"

	"github.com/panbanda/stepdown/pkg/ast"
)

// Category groups members for coarse ordering.
type Category string

const (
	CategoryEnumConstants      Category = "enum-constants"
	CategoryTypes              Category = "types"
	CategoryStaticInitializers Category = "static-initializers"
	CategoryFields             Category = "fields"
	CategoryInitializers       Category = "initializers"
	CategoryConstructors       Category = "constructors"
	CategoryMethods            Category = "methods"
	CategoryAnnotationMembers  Category = "annotation-members"
)

// Categories lists every category in the default order.
var Categories = []Category{
	CategoryEnumConstants,
	CategoryTypes,
	CategoryStaticInitializers,
	CategoryFields,
	CategoryInitializers,
	CategoryConstructors,
	CategoryMethods,
	CategoryAnnotationMembers,
}

// CategoryOrder maps categories to ranks, lower first.
type CategoryOrder map[Category]int

// DefaultCategoryOrder places annotation-type elements with methods and
// otherwise follows Categories.
func DefaultCategoryOrder() CategoryOrder {
	order := make(CategoryOrder, len(Categories))
	for i, c := range Categories {
		order[c] = i
	}
	order[CategoryAnnotationMembers] = order[CategoryMethods]
	return order
}

// ParseCategoryOrder builds an order from category names listed first to
// last. Categories not named keep their default rank after the listed ones.
func ParseCategoryOrder(names []string) (CategoryOrder, error) {
	order := DefaultCategoryOrder()
	if len(names) == 0 {
		return order, nil
	}

	known := make(map[Category]bool, len(Categories))
	for _, c := range Categories {
		known[c] = true
	}

	listed := make(map[Category]bool)
	for i, name := range names {
		c := Category(strings.ToLower(strings.TrimSpace(name)))
		if !known[c] {
			return nil, fmt.Errorf("unknown member category %q", name)
		}
		order[c] = i
		listed[c] = true
	}
	for _, c := range Categories {
		if !listed[c] {
			order[c] = len(names) + order[c]
		}
	}
	return order, nil
}

// Rank returns the rank of a category; unknown categories rank last.
func (o CategoryOrder) Rank(c Category) int {
	if r, ok := o[c]; ok {
		return r
	}
	return len(Categories)
}

// Of returns the category of a member.
func Of(m *ast.Member) Category {
	switch m.Kind {
	case ast.MemberMethod:
		if m.IsConstructor() {
			return CategoryConstructors
		}
		return CategoryMethods
	case ast.MemberField:
		return CategoryFields
	case ast.MemberInitializer:
		if m.IsStatic() {
			return CategoryStaticInitializers
		}
		return CategoryInitializers
	case ast.MemberType:
		return CategoryTypes
	case ast.MemberEnumConstant:
		return CategoryEnumConstants
	default:
		return CategoryAnnotationMembers
	}
}
