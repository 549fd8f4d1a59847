package lesson

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/cddtech/lessonhub/core"
)

var (
	correctOptionTag  = "correctoption"
	correctOptionText = "correct option must be one of the options"

	errMediaTypeRequired = errors.New("media type is required for media blocks")
)

// RegisterValidators registers the lesson validations and their translations.
func RegisterValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(quizStructValidation, Quiz{})
	core.RegisterCustomTranslation(validate, translator, correctOptionTag, correctOptionText)
}

// quizStructValidation checks that the correct option points into the options.
func quizStructValidation(sl validator.StructLevel) {
	quiz, ok := sl.Current().Interface().(Quiz)
	if !ok || len(quiz.Options) < 2 {
		return // reported by `min`
	}
	if quiz.CorrectOption >= len(quiz.Options) {
		sl.ReportError(quiz.CorrectOption, "correct_option", "CorrectOption", correctOptionTag, "")
	}
}
