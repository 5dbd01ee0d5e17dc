// Package validator checks untrusted input before any mutation is built.
// Failures come back as an apperr validation error keyed by JSON field path.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/fr"
	ut "github.com/go-playground/universal-translator"
	playgroundvalidator "github.com/go-playground/validator/v10"
	fr_translations "github.com/go-playground/validator/v10/translations/fr"

	"ndara/internal/apperr"
	"ndara/internal/models"
)

// custom validation tags
const (
	lectureTypeTag   = "lecture_type"
	resourceTypeTag  = "resource_type"
	permissionKeyTag = "permission_key"
	oneCorrectTag    = "one_correct"
)

// Validator wraps go-playground/validator with French messages
type Validator struct {
	validate *playgroundvalidator.Validate
	trans    ut.Translator
}

// New creates a validator with every schema rule registered
func New() *Validator {
	v := playgroundvalidator.New()

	locale := fr.New()
	uni := ut.New(locale, locale)
	trans, _ := uni.GetTranslator("fr")
	_ = fr_translations.RegisterDefaultTranslations(v, trans)

	// Use JSON tag names for errors instead of Go struct names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation(lectureTypeTag, validateLectureType)
	_ = v.RegisterValidation(resourceTypeTag, validateResourceType)
	_ = v.RegisterValidation(permissionKeyTag, validatePermissionKey)
	v.RegisterStructValidation(questionStructValidation, QuestionInput{})

	noop := func(ut.Translator) error { return nil }
	for _, tag := range []string{lectureTypeTag, resourceTypeTag, permissionKeyTag, oneCorrectTag, "required_if"} {
		_ = v.RegisterTranslation(tag, trans, noop, translateCustom)
	}

	return &Validator{validate: v, trans: trans}
}

// Validate implements echo.Validator
func (cv *Validator) Validate(i interface{}) error {
	err := cv.validate.Struct(i)
	if err == nil {
		return nil
	}
	var validationErrors playgroundvalidator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return apperr.Validation(cv.formatValidationErrors(validationErrors))
	}
	return apperr.Internal(err)
}

// formatValidationErrors formats validation errors into a map keyed by JSON path
func (cv *Validator) formatValidationErrors(errs playgroundvalidator.ValidationErrors) map[string]string {
	errMap := make(map[string]string, len(errs))
	for _, fe := range errs {
		key := fe.Namespace()
		if i := strings.Index(key, "."); i >= 0 {
			key = key[i+1:]
		}
		if _, seen := errMap[key]; seen {
			continue
		}
		msg := fe.Translate(cv.trans)
		if msg == "" || strings.HasPrefix(msg, "Key: ") {
			msg = fallbackMessage(fe)
		}
		errMap[key] = msg
	}
	return errMap
}

func translateCustom(_ ut.Translator, fe playgroundvalidator.FieldError) string {
	switch fe.Tag() {
	case lectureTypeTag:
		return fmt.Sprintf("%s doit être video, text ou pdf", fe.Field())
	case resourceTypeTag:
		return fmt.Sprintf("%s doit être link, file ou video", fe.Field())
	case permissionKeyTag:
		return fmt.Sprintf("permission inconnue : %v", fe.Value())
	case oneCorrectTag:
		return "au moins une option doit être correcte"
	case "required_if":
		return fmt.Sprintf("%s est obligatoire pour ce type", fe.Field())
	default:
		return ""
	}
}

func fallbackMessage(fe playgroundvalidator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s est obligatoire", fe.Field())
	case "min":
		return fmt.Sprintf("%s doit valoir au moins %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s doit valoir au plus %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s doit être l'une des valeurs [%s]", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s est invalide (%s)", fe.Field(), fe.Tag())
	}
}

// Custom validation functions

func validateLectureType(fl playgroundvalidator.FieldLevel) bool {
	switch models.LectureType(fl.Field().String()) {
	case models.LectureTypeVideo, models.LectureTypeText, models.LectureTypePDF:
		return true
	}
	return false
}

func validateResourceType(fl playgroundvalidator.FieldLevel) bool {
	switch models.ResourceType(fl.Field().String()) {
	case models.ResourceTypeLink, models.ResourceTypeFile, models.ResourceTypeVideo:
		return true
	}
	return false
}

func validatePermissionKey(fl playgroundvalidator.FieldLevel) bool {
	return models.Permission(fl.Field().String()).Valid()
}

// questionStructValidation requires at least one correct option
func questionStructValidation(sl playgroundvalidator.StructLevel) {
	q, ok := sl.Current().Interface().(QuestionInput)
	if !ok || len(q.Options) < 2 {
		return
	}
	for _, o := range q.Options {
		if o.IsCorrect {
			return
		}
	}
	sl.ReportError(q.Options, "options", "Options", oneCorrectTag, "")
}
