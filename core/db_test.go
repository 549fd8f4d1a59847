package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOrdering(t *testing.T) {
	allowed := []string{"title", "created_at", "updated_at"}
	tests := []struct {
		name string
		val  string
		want []DBOrdering
	}{
		{name: "empty", val: ""},
		{name: "single asc", val: "title", want: []DBOrdering{{Field: "title", Ascending: true}}},
		{
			name: "multiple", val: "-updated_at, title",
			want: []DBOrdering{{Field: "updated_at"}, {Field: "title", Ascending: true}},
		},
		{name: "unknown field dropped", val: "password_hash,-title", want: []DBOrdering{{Field: "title"}}},
		{name: "lone dash", val: "-", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseOrdering(tt.val, allowed...))
		})
	}
}

func TestDBOrdering_String(t *testing.T) {
	assert.Equal(t, "title ASC", DBOrdering{Field: "title", Ascending: true}.String())
	assert.Equal(t, "title DESC", DBOrdering{Field: "title"}.String())
}
