// Package validation turns raw, string-typed form submissions into typed
// inputs. Rule violations are reported as values keyed by form field name,
// never as panics or Go errors.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// FieldErrors maps a form field name to its human-readable violations.
type FieldErrors map[string][]string

func (e FieldErrors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Failure describes a rejected submission.
type Failure struct {
	// Message is the first violation in field order.
	Message string
	Fields  FieldErrors
}

func (f *Failure) Error() string { return f.Message }

// Validator holds the configured rule set. It is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

// fieldMessages overrides the generic translation for specific field/tag pairs.
var fieldMessages = map[string]string{
	"title.required": "Task title is required",
	"name.required":  "Project name is required",
}

var indexSuffix = regexp.MustCompile(`\[\d+\]$`)

func New() *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(fieldName)

	english := en.New()
	trans, _ := ut.New(english, english).GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		panic(err)
	}

	v := &Validator{validate: validate, trans: trans}
	v.mustRegister("task_priority", validPriority, "Priority must be one of LOW, MEDIUM, HIGH, URGENT")
	v.mustRegister("task_status", validStatus, "Status must be one of BACKLOG, TODO, IN_PROGRESS, COMPLETED")
	v.mustRegister("calendar_date", validDate, "Invalid date format")
	v.mustTranslate("http_url", "{0} must be a valid http(s) URL")
	v.mustTranslate(tagProjectRequired, "Project ID is required when task is not private")
	v.mustTranslate(tagDateOrder, "End date must not be before due date")

	validate.RegisterStructValidation(taskRules, TaskFields{})
	return v
}

// fieldName reports fields by their form key, falling back to the json key.
func fieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
	if name == "" || name == "-" {
		name = strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	}
	if name == "-" {
		return ""
	}
	return name
}

func (v *Validator) mustRegister(tag string, fn validator.Func, message string) {
	if err := v.validate.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
	v.mustTranslate(tag, message)
}

func (v *Validator) mustTranslate(tag, message string) {
	err := v.validate.RegisterTranslation(tag, v.trans,
		func(t ut.Translator) error {
			return t.Add(tag, message, true)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			msg, err := t.T(tag, fe.Field())
			if err != nil {
				return fe.Error()
			}
			return msg
		},
	)
	if err != nil {
		panic(err)
	}
}

// check runs the struct rules and folds violations into a Failure.
func (v *Validator) check(s any) *Failure {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &Failure{Message: "Invalid input data", Fields: FieldErrors{}}
	}

	failure := &Failure{Fields: FieldErrors{}}
	for _, fe := range verrs {
		field := indexSuffix.ReplaceAllString(fe.Field(), "")
		msg, ok := fieldMessages[field+"."+fe.Tag()]
		if !ok {
			msg = fe.Translate(v.trans)
		}
		if failure.Message == "" {
			failure.Message = msg
		}
		failure.Fields.Add(field, msg)
	}
	return failure
}
