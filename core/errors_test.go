package core

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestIsNotFound(t *testing.T) {
	errCourseNotFound := NewNotFoundError("course")

	assert.True(t, IsNotFound(errCourseNotFound))
	assert.True(t, IsNotFound(errors.Wrap(errCourseNotFound, "getting course")))
	assert.False(t, IsNotFound(errors.New("boom")))
	assert.Equal(t, "course not found", errCourseNotFound.Error())
}

func TestIsShutdown(t *testing.T) {
	err := NewShutdownError("integrity issue")

	assert.True(t, IsShutdown(errors.Wrap(err, "saving")))
	assert.False(t, IsShutdown(ErrForbidden))
}

func TestValidationError(t *testing.T) {
	err := NewValidationError(errors.New("invalid"), FieldError{Field: "email", Error: "taken"})

	var vErr *ValidationError
	assert.True(t, errors.As(err, &vErr))
	assert.Equal(t, "invalid", err.Error())
	assert.Len(t, vErr.Fields, 1)
	assert.Equal(t, "", NewValidationError(nil).Error())
}
