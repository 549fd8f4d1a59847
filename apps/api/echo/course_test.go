package echoapi_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cddtech/lessonhub/core/course"
	"github.com/cddtech/lessonhub/core/lesson"
	"github.com/cddtech/lessonhub/core/user"
	"github.com/cddtech/lessonhub/testutil"
)

func Test_courseApi(t *testing.T) {
	env, app := setup(t)
	ctx := context.Background()
	owner := testutil.CreateTeacher(t, env.Repos.User, "Ada", "ada@test.cd")
	other := testutil.CreateTeacher(t, env.Repos.User, "Bob", "bob@test.cd")
	nobody := testutil.CreateUser(t, env.Repos.User, "Nobody", "nobody@test.cd", "", nil, true)
	private := testutil.CreateCourse(t, env.Repos.Course, owner, "Private", false)
	public := testutil.CreateCourse(t, env.Repos.Course, owner, "Public", true)
	ownerToken := getToken(t, env, owner)
	otherToken := getToken(t, env, other)

	runHTTPTests(t, app, []httpTest{
		{name: "auth required", path: "/v1/courses", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "create: teachers only", method: http.MethodPost, path: "/v1/courses", token: getToken(t, env, nobody),
			body: []byte(`{"title": "Fractions", "subject": "Math", "grade": "5"}`), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		},
		{
			name: "create: invalid", method: http.MethodPost, path: "/v1/courses", token: ownerToken,
			body: []byte(`{"title": "ab", "subject": "Math"}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"title": "title must be at least 3 characters in length",
				"grade": "this field is required",
			}),
		},
		{name: "get: unknown", path: "/v1/courses/unknown", token: ownerToken, wantCode: http.StatusNotFound},
		{
			name: "get: private course of another teacher", path: "/v1/courses/" + private.ID, token: otherToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "course not found"}),
		},
		{name: "get: own private course", path: "/v1/courses/" + private.ID, token: ownerToken, wantCode: http.StatusOK, wantData: marchallObj(t, private)},
		{name: "get: shared course", path: "/v1/courses/" + public.ID, token: otherToken, wantCode: http.StatusOK, wantData: marchallObj(t, public)},
		{
			name: "update: not owner", method: http.MethodPut, path: "/v1/courses/" + public.ID, token: otherToken,
			body: []byte(`{"title": "Hacked", "subject": "Math", "grade": "5"}`), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		},
		{
			name: "visibility: not owner", method: http.MethodPut, path: "/v1/courses/" + public.ID + "/visibility", token: otherToken,
			body: []byte(`{"is_public": false}`), wantCode: http.StatusForbidden,
		},
		{name: "delete: not owner", method: http.MethodDelete, path: "/v1/courses/" + public.ID, token: otherToken, wantCode: http.StatusForbidden},
	})

	t.Run("create", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses", ownerToken,
			[]byte(`{"title": " Fractions ", "subject": "Math", "grade": "5", "is_public": true}`))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)

		var c course.Course
		unmarshal(t, rec, &c)
		assert.Equal(t, "Fractions", c.Title)
		assert.Equal(t, owner.ID, c.TeacherID)
		assert.Equal(t, course.DefaultColor, c.Color)
		assert.True(t, c.IsShared())
	})

	t.Run("update", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/courses/"+private.ID, ownerToken,
			[]byte(`{"title": "Still private", "subject": "Math", "grade": "6", "published": false}`))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var c course.Course
		unmarshal(t, rec, &c)
		assert.Equal(t, "Still private", c.Title)
		assert.Equal(t, "6", c.Grade)
		assert.False(t, c.Published)
	})

	t.Run("visibility", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/courses/"+private.ID+"/visibility", ownerToken, []byte(`{"is_public": true}`))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var c course.Course
		unmarshal(t, rec, &c)
		assert.True(t, c.IsPublic)
	})

	t.Run("delete", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/courses/"+public.ID, ownerToken)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code)

		_, err := env.Repos.Course.GetCourseByID(ctx, public.ID)
		assert.Equal(t, course.ErrNotFound, err)
	})
}

func Test_courseApi_listings(t *testing.T) {
	env, app := setup(t)
	ctx := context.Background()
	ada := testutil.CreateTeacher(t, env.Repos.User, "Ada", "ada@test.cd")
	bob := testutil.CreateTeacher(t, env.Repos.User, "Bob", "bob@test.cd")
	now := time.Now()
	fractions := testutil.CreateCourse(t, env.Repos.Course, ada, "Fractions", true, now.Add(-2*time.Hour))
	algebra := testutil.CreateCourse(t, env.Repos.Course, ada, "Algebra", false, now.Add(-time.Hour))
	geometry := testutil.CreateCourse(t, env.Repos.Course, bob, "Geometry", true, now)
	testutil.CreateLesson(t, env.Repos.Lesson, fractions, "Halves", "")
	require.NoError(t, env.Repos.Library.AddItem(ctx, bob.ID, fractions.ID, now))

	listing := func(c course.Course, lessons, saves int, saved bool, teacher *user.User) course.Listing {
		l := course.Listing{Course: c, LessonCount: lessons, SaveCount: saves, Saved: saved}
		if teacher != nil {
			summary := teacher.Summary()
			l.Teacher = &summary
		}
		return l
	}

	runHTTPTests(t, app, []httpTest{
		{
			name: "dashboard", path: "/v1/courses", token: getToken(t, env, ada), wantCode: http.StatusOK,
			wantData: marchallList(t, listing(algebra, 0, 0, false, nil), listing(fractions, 1, 1, false, nil)),
		},
		{
			name: "dashboard search", path: "/v1/courses?q=FRAC", token: getToken(t, env, ada), wantCode: http.StatusOK,
			wantData: marchallList(t, listing(fractions, 1, 1, false, nil)),
		},
		{
			name: "community", path: "/v1/courses/community", token: getToken(t, env, bob), wantCode: http.StatusOK,
			wantData: marchallList(t, listing(geometry, 0, 0, false, &bob), listing(fractions, 1, 1, true, &ada)),
		},
		{
			name: "community ordering", path: "/v1/courses/community?ordering=title,unknown", token: getToken(t, env, bob),
			wantCode: http.StatusOK,
			wantData: marchallList(t, listing(fractions, 1, 1, true, &ada), listing(geometry, 0, 0, false, &bob)),
		},
		{
			name: "community filters", path: "/v1/courses/community?q=geo&grade=5", token: getToken(t, env, ada), wantCode: http.StatusOK,
			wantData: marchallList(t, listing(geometry, 0, 0, false, &bob)),
		},
		{
			name: "community filters (empty)", path: "/v1/courses/community?subject=History", token: getToken(t, env, ada),
			wantCode: http.StatusOK, wantData: marchallList(t),
		},
	})
}

func Test_courseApi_lessons(t *testing.T) {
	env, app := setup(t)
	owner := testutil.CreateTeacher(t, env.Repos.User, "Ada", "ada@test.cd")
	other := testutil.CreateTeacher(t, env.Repos.User, "Bob", "bob@test.cd")
	c := testutil.CreateCourse(t, env.Repos.Course, owner, "Fractions", false)
	legacy := testutil.CreateLesson(t, env.Repos.Lesson, c, "Halves", "<p>Old</p>")

	runHTTPTests(t, app, []httpTest{
		{name: "list: hidden course", path: "/v1/courses/" + c.ID + "/lessons", token: getToken(t, env, other), wantCode: http.StatusNotFound},
		{
			name: "list", path: "/v1/courses/" + c.ID + "/lessons", token: getToken(t, env, owner),
			wantCode: http.StatusOK, wantData: marchallList(t, legacy.Detail()),
		},
		{
			name: "create: not owner", method: http.MethodPost, path: "/v1/courses/" + c.ID + "/lessons", token: getToken(t, env, other),
			body: []byte(`{"title": "Thirds"}`), wantCode: http.StatusNotFound,
		},
		{
			name: "create: invalid", method: http.MethodPost, path: "/v1/courses/" + c.ID + "/lessons", token: getToken(t, env, owner),
			body:     []byte(`{"title": "Thirds", "quizzes": [{"question": "1+1?", "options": ["1", "2"], "correct_option": 5}]}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"correct_option": "correct option must be one of the options"}),
		},
		{
			name: "create: duplicate block ids", method: http.MethodPost, path: "/v1/courses/" + c.ID + "/lessons", token: getToken(t, env, owner),
			body:     []byte(`{"title": "Thirds", "blocks": [{"id": "a", "type": "text", "content": ""}, {"id": "a", "type": "text", "content": ""}]}`),
			wantCode: http.StatusBadRequest,
		},
	})

	req, rec := newAuthRequest(http.MethodPost, "/v1/courses/"+c.ID+"/lessons", getToken(t, env, owner), []byte(`{
		"title": "Thirds",
		"game_url": "<iframe src=\"https://games.test/embed/3\"></iframe>",
		"blocks": [
			{"id": "t1", "type": "text", "content": "<p>One third</p>"},
			{"id": "m1", "type": "media", "url": "https://img.test/third.png", "mediaType": "image"}
		],
		"quizzes": [{"question": "3 x 1/3?", "options": ["1", "3"], "correct_option": 0}]
	}`))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created lesson.Detail
	unmarshal(t, rec, &created)
	assert.Equal(t, "thirds", created.Slug)
	assert.Equal(t, "https://games.test/embed/3", created.GameURL)
	assert.Equal(t, 1, created.Order)
	assert.Equal(t, []string{"t1", "m1"}, created.Blocks.IDs())
	require.Len(t, created.Media, 1)
	assert.Equal(t, "m1", created.Media[0].ID)
	require.Len(t, created.Quizzes, 1)
	assert.NotEmpty(t, created.Quizzes[0].ID)
}
