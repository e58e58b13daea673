package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOrderBy(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []OrderBy
	}{
		{
			name:  "single ascending",
			input: "+created_at",
			want:  []OrderBy{{Field: "created_at"}},
		},
		{
			name:  "single descending",
			input: "-id",
			want:  []OrderBy{{Field: "id", Desc: true}},
		},
		{
			name:  "no prefix means ascending",
			input: "email",
			want:  []OrderBy{{Field: "email"}},
		},
		{
			name:  "mixed list",
			input: "+first_name,-created_at",
			want:  []OrderBy{{Field: "first_name"}, {Field: "created_at", Desc: true}},
		},
		{
			name:  "unknown fields dropped",
			input: "password_hash,-email",
			want:  []OrderBy{{Field: "email", Desc: true}},
		},
		{
			name:  "empty parts ignored",
			input: " , -id , ",
			want:  []OrderBy{{Field: "id", Desc: true}},
		},
		{
			name:  "all junk",
			input: "drop table users",
			want:  nil,
		},
		{
			name:  "empty string",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseOrderBy(tt.input, UserOrderFields))
		})
	}
}

func TestOrderClause(t *testing.T) {
	assert.Equal(t, " ORDER BY id", orderClause(nil))
	assert.Equal(t, " ORDER BY email, id",
		orderClause([]OrderBy{{Field: "email"}}))
	assert.Equal(t, " ORDER BY created_at DESC, email, id",
		orderClause([]OrderBy{{Field: "created_at", Desc: true}, {Field: "email"}}))
}
