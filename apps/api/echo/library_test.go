package echoapi_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/cddtech/lessonhub/apps/api/echo"
	"github.com/cddtech/lessonhub/core/library"
	"github.com/cddtech/lessonhub/core/notification"
	"github.com/cddtech/lessonhub/testutil"
)

func Test_libraryApi(t *testing.T) {
	env, app := setup(t)
	ada := testutil.CreateTeacher(t, env.Repos.User, "Ada", "ada@test.cd")
	bob := testutil.CreateTeacher(t, env.Repos.User, "Bob", "bob@test.cd")
	shared := testutil.CreateCourse(t, env.Repos.Course, ada, "Fractions", true)
	private := testutil.CreateCourse(t, env.Repos.Course, ada, "Private", false)
	bobToken := getToken(t, env, bob)

	runHTTPTests(t, app, []httpTest{
		{name: "empty", path: "/v1/library", token: bobToken, wantCode: http.StatusOK, wantData: marchallList(t)},
		{
			name: "toggle: hidden course", method: http.MethodPost, path: "/v1/library/" + private.ID, token: bobToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "course not found"}),
		},
		{
			name: "toggle: save", method: http.MethodPost, path: "/v1/library/" + shared.ID, token: bobToken,
			wantCode: http.StatusOK, wantData: marchallObj(t, ToggleResponse{Saved: true}),
		},
	})

	req, rec := newAuthRequest(http.MethodGet, "/v1/library", bobToken)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var saved []library.SavedCourse
	unmarshal(t, rec, &saved)
	require.Len(t, saved, 1)
	assert.Equal(t, shared.ID, saved[0].ID)
	assert.False(t, saved[0].SavedAt.IsZero())

	runHTTPTests(t, app, []httpTest{
		{
			name: "toggle: unsave", method: http.MethodPost, path: "/v1/library/" + shared.ID, token: bobToken,
			wantCode: http.StatusOK, wantData: marchallObj(t, ToggleResponse{Saved: false}),
		},
		{name: "empty again", path: "/v1/library", token: bobToken, wantCode: http.StatusOK, wantData: marchallList(t)},
	})
}

func Test_notificationApi(t *testing.T) {
	env, app := setup(t)
	ctx := context.Background()
	ada := testutil.CreateTeacher(t, env.Repos.User, "Ada", "ada@test.cd")
	bob := testutil.CreateTeacher(t, env.Repos.User, "Bob", "bob@test.cd")
	adaToken := getToken(t, env, ada)

	older, err := env.Repos.Notification.CreateNotification(ctx, notification.Notification{
		UserID: ada.ID, Title: "Welcome", Message: "Hello Ada", CreatedAt: time.Now().UTC().Add(-time.Hour),
	})
	require.NoError(t, err)
	newer, err := env.Repos.Notification.CreateNotification(ctx, notification.Notification{
		UserID: ada.ID, Title: "Lesson Posted", Message: "You did it", CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	read := older
	read.Read = true

	runHTTPTests(t, app, []httpTest{
		{name: "auth required", path: "/v1/notifications", wantCode: http.StatusUnauthorized},
		{name: "list", path: "/v1/notifications", token: adaToken, wantCode: http.StatusOK, wantData: marchallList(t, newer, older)},
		{name: "list: none", path: "/v1/notifications", token: getToken(t, env, bob), wantCode: http.StatusOK, wantData: marchallList(t)},
		{
			name: "mark read: not mine", method: http.MethodPut, path: "/v1/notifications/" + older.ID + "/read", token: getToken(t, env, bob),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "notification not found"}),
		},
		{
			name: "mark read", method: http.MethodPut, path: "/v1/notifications/" + older.ID + "/read", token: adaToken,
			wantCode: http.StatusOK, wantData: marchallObj(t, read),
		},
		{name: "list after read", path: "/v1/notifications", token: adaToken, wantCode: http.StatusOK, wantData: marchallList(t, newer, read)},
	})
}
