package repository

import "strings"

// OrderBy is one sort term of an ORDER BY clause.
type OrderBy struct {
	Field string
	Desc  bool
}

// ParseOrderBy parses a comma list like "+email,-created_at,id" into sort
// terms. Fields outside the allowed set are dropped, never an error: the
// query surface tolerates junk ordering input.
func ParseOrderBy(s string, allowed map[string]bool) []OrderBy {
	var orders []OrderBy
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		desc := false
		if stripped, ok := strings.CutPrefix(part, "+"); ok {
			part = stripped
		} else if stripped, ok := strings.CutPrefix(part, "-"); ok {
			part = stripped
			desc = true
		}

		if !allowed[part] {
			continue
		}
		orders = append(orders, OrderBy{Field: part, Desc: desc})
	}
	return orders
}

// orderClause renders sort terms into SQL, appending a stable id tiebreaker
// so pagination stays disjoint across pages.
func orderClause(orders []OrderBy) string {
	var b strings.Builder
	b.WriteString(" ORDER BY ")
	for i, o := range orders {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(o.Field)
		if o.Desc {
			b.WriteString(" DESC")
		}
	}
	if len(orders) == 0 {
		b.WriteString("id")
		return b.String()
	}
	b.WriteString(", id")
	return b.String()
}
