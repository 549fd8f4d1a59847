package echoapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/cddtech/lessonhub/core"
	"github.com/cddtech/lessonhub/core/upload"
	"github.com/cddtech/lessonhub/testutil"
)

func TestAppHTTPErrorHandler(t *testing.T) {
	env := testutil.Setup(t)
	s := NewServer(ServerDeps{
		Conf:       env.Conf,
		Logger:     env.Logger,
		Svcs:       env.Svcs,
		Validate:   env.Validate,
		Translator: env.Translator,
	})

	tests := []struct {
		name         string
		err          error
		wantCode     int
		wantBody     string
		wantShutdown bool
	}{
		{name: "forbidden", err: errors.Wrap(core.ErrForbidden, "updating course"), wantCode: http.StatusForbidden, wantBody: `{"error":"permission denied"}`},
		{name: "not found", err: core.NewNotFoundError("course"), wantCode: http.StatusNotFound, wantBody: `{"error":"course not found"}`},
		{
			name:     "validation without fields",
			err:      core.NewValidationError(errors.New("nothing to save")),
			wantCode: http.StatusBadRequest, wantBody: `{"error":"nothing to save"}`,
		},
		{name: "no file", err: upload.ErrNoFile, wantCode: http.StatusBadRequest, wantBody: `{"error":"no file uploaded"}`},
		{name: "http error", err: echo.NewHTTPError(http.StatusTeapot, "short and stout"), wantCode: http.StatusTeapot, wantBody: `{"error":"short and stout"}`},
		{name: "unexpected", err: errors.New("db is on fire"), wantCode: http.StatusInternalServerError, wantBody: `{"error":"Internal Server Error"}`},
		{
			name: "shutdown", err: errors.Wrap(core.NewShutdownError("integrity issue"), "saving lesson"),
			wantCode: http.StatusInternalServerError, wantBody: `{"error":"Internal Server Error"}`, wantShutdown: true,
		},
	}
	for i, tt := range tests {
		path := "/boom/" + string(rune('a'+i))
		err := tt.err
		s.app.GET(path, func(echo.Context) error { return err })

		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())

			select {
			case <-s.ShutdownSignal():
				assert.True(t, tt.wantShutdown, "unexpected shutdown signal")
			case <-time.After(10 * time.Millisecond):
				assert.False(t, tt.wantShutdown, "no shutdown signal")
			}
		})
	}
	assert.Contains(t, env.Logger.Messages, "Internal Server Error")
}
