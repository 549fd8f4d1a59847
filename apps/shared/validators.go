// Package shared wires what every LessonHub app needs: validation, repositories and services.
package shared

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/cddtech/lessonhub/core"
	"github.com/cddtech/lessonhub/core/lesson"
	"github.com/cddtech/lessonhub/core/user"
)

// NewValidator returns a validator knowing every domain validation, and its english translator.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate, translator := core.NewValidator()
	user.RegisterValidators(validate, translator)
	lesson.RegisterValidators(validate, translator)
	return validate, translator
}
