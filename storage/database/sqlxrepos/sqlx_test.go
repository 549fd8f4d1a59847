package sqlxrepos

import (
	"database/sql"
	"testing"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/cddtech/lessonhub/core"
	"github.com/cddtech/lessonhub/core/course"
)

func TestOrderBy(t *testing.T) {
	tests := []struct {
		name     string
		ordering []core.DBOrdering
		want     string
	}{
		{name: "none", want: " ORDER BY id ASC"},
		{
			name:     "allowed",
			ordering: core.ParseOrdering("-updated_at,title", course.OrderingFields...),
			want:     " ORDER BY updated_at DESC, title ASC, id ASC",
		},
		{
			name:     "unknown fields dropped",
			ordering: []core.DBOrdering{{Field: "id; DROP TABLE course"}, {Field: "grade", Ascending: true}},
			want:     " ORDER BY grade ASC, id ASC",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, orderBy(tt.ordering, course.OrderingFields, "id ASC"))
		})
	}
}

func TestUUIDs(t *testing.T) {
	id := newID()
	assert.True(t, isUUID(id))
	assert.False(t, isUUID("legacy-1"))
	assert.Equal(t, []string{id}, uuids([]string{"", id, "nope"}))
}

func TestTrapNoRowsErr(t *testing.T) {
	assert.Equal(t, course.ErrNotFound, trapNoRowsErr(sql.ErrNoRows, course.ErrNotFound, "finding course"))
	assert.Equal(t, course.ErrNotFound, trapNoRowsErr(errors.Wrap(sql.ErrNoRows, "scanning"), course.ErrNotFound, "finding course"))

	err := trapNoRowsErr(errors.New("conn reset"), course.ErrNotFound, "finding course")
	assert.EqualError(t, err, "finding course: conn reset")
}

func TestIsForeignKeyViolation(t *testing.T) {
	assert.True(t, isForeignKeyViolation(&pq.Error{Code: foreignKeyViolation}))
	assert.True(t, isForeignKeyViolation(errors.Wrap(&pq.Error{Code: foreignKeyViolation}, "inserting")))
	assert.False(t, isForeignKeyViolation(&pq.Error{Code: "23505"}))
	assert.False(t, isForeignKeyViolation(sql.ErrNoRows))
}
