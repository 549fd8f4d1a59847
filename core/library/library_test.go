package library_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cddtech/lessonhub/core/course"
	"github.com/cddtech/lessonhub/testutil"
)

func TestService_Toggle(t *testing.T) {
	env := testutil.Setup(t)
	ctx := context.Background()
	ada := testutil.CreateTeacher(t, env.Repos.User, "Ada", "ada@test.cd")
	bob := testutil.CreateTeacher(t, env.Repos.User, "Bob", "bob@test.cd")
	shared := testutil.CreateCourse(t, env.Repos.Course, ada, "Fractions", true)
	private := testutil.CreateCourse(t, env.Repos.Course, ada, "Private", false)

	_, err := env.Svcs.Library.Toggle(ctx, bob, "unknown")
	assert.Equal(t, course.ErrNotFound, err)
	_, err = env.Svcs.Library.Toggle(ctx, bob, private.ID)
	assert.Equal(t, course.ErrNotFound, err)

	saved, err := env.Svcs.Library.Toggle(ctx, bob, shared.ID)
	require.NoError(t, err)
	assert.True(t, saved)
	counts, err := env.Repos.Library.CountSaves(ctx, shared.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[shared.ID])

	saved, err = env.Svcs.Library.Toggle(ctx, bob, shared.ID)
	require.NoError(t, err)
	assert.False(t, saved)
	ids, err := env.Repos.Library.SavedCourseIDs(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)

	// owners may keep their private courses too
	saved, err = env.Svcs.Library.Toggle(ctx, ada, private.ID)
	require.NoError(t, err)
	assert.True(t, saved)
}

func TestService_List(t *testing.T) {
	env := testutil.Setup(t)
	ctx := context.Background()
	ada := testutil.CreateTeacher(t, env.Repos.User, "Ada", "ada@test.cd")
	bob := testutil.CreateTeacher(t, env.Repos.User, "Bob", "bob@test.cd")
	first := testutil.CreateCourse(t, env.Repos.Course, ada, "Fractions", true)
	second := testutil.CreateCourse(t, env.Repos.Course, ada, "Geometry", true)
	unshared := testutil.CreateCourse(t, env.Repos.Course, ada, "Algebra", true)

	now := time.Now().UTC()
	require.NoError(t, env.Repos.Library.AddItem(ctx, bob.ID, first.ID, now.Add(-2*time.Hour)))
	require.NoError(t, env.Repos.Library.AddItem(ctx, bob.ID, second.ID, now.Add(-time.Hour)))
	require.NoError(t, env.Repos.Library.AddItem(ctx, bob.ID, unshared.ID, now))

	_, err := env.Svcs.Course.SetVisibility(ctx, ada, unshared.ID, false)
	require.NoError(t, err)

	saved, err := env.Svcs.Library.List(ctx, bob)
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, second.ID, saved[0].ID)
	assert.Equal(t, now.Add(-time.Hour), saved[0].SavedAt)
	assert.Equal(t, first.ID, saved[1].ID)

	mine, err := env.Svcs.Library.List(ctx, ada)
	require.NoError(t, err)
	assert.Empty(t, mine)
}
