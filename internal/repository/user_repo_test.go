package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildUserSearchQueryNoFilters(t *testing.T) {
	query, args := buildUserSearchQuery(SearchParams{})

	assert.Contains(t, query, "FROM users")
	assert.NotContains(t, query, "WHERE")
	assert.Contains(t, query, "ORDER BY id")
	assert.NotContains(t, query, "LIMIT")
	assert.Empty(t, args)
}

func TestBuildUserSearchQueryFilters(t *testing.T) {
	query, args := buildUserSearchQuery(SearchParams{
		Email:     "john",
		FirstName: "Jo",
		LastName:  "Doe",
	})

	assert.Contains(t, query, "email ILIKE $1")
	assert.Contains(t, query, "first_name ILIKE $2")
	assert.Contains(t, query, "last_name ILIKE $3")
	assert.Equal(t, []any{"%john%", "%Jo%", "%Doe%"}, args)
}

func TestBuildUserSearchQueryIDs(t *testing.T) {
	query, args := buildUserSearchQuery(SearchParams{IDs: []int{1, 2, 3}})

	assert.Contains(t, query, "id = ANY($1)")
	assert.Equal(t, []any{[]int{1, 2, 3}}, args)
}

func TestBuildUserSearchQueryPagination(t *testing.T) {
	query, args := buildUserSearchQuery(SearchParams{Page: 3, PageSize: 10})

	assert.Contains(t, query, "LIMIT $1")
	assert.Contains(t, query, "OFFSET $2")
	assert.Equal(t, []any{10, 20}, args)
}

func TestBuildUserSearchQueryOrdering(t *testing.T) {
	query, _ := buildUserSearchQuery(SearchParams{
		OrderBy: []OrderBy{{Field: "email", Desc: true}},
	})

	assert.Contains(t, query, "ORDER BY email DESC, id")
}

func TestCalculateOffset(t *testing.T) {
	tests := []struct {
		page, pageSize, want int
	}{
		{0, 10, 0},
		{1, 10, 0},
		{2, 10, 10},
		{5, 25, 100},
		{-1, 10, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, calculateOffset(tt.page, tt.pageSize))
	}
}
