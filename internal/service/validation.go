package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/libvisit-api/internal/models"
	appErrors "github.com/noah-isme/libvisit-api/pkg/errors"
)

// NewValidator returns a validator that reports JSON field names and knows the
// level-dependent visit rules.
func NewValidator() *validator.Validate {
	v := validator.New()
	registerVisitRules(v)
	return v
}

func registerVisitRules(v *validator.Validate) {
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	v.RegisterStructValidation(visitRequestRules, models.VisitRequest{})
}

// visitRequestRules enforces: JC needs jc_year and jc_stream, UG/PG need course.
func visitRequestRules(sl validator.StructLevel) {
	req := sl.Current().Interface().(models.VisitRequest)
	level, ok := models.ParseLevel(req.Level)
	if req.Level != "" && !ok {
		sl.ReportError(req.Level, "level", "Level", "level", "")
		return
	}
	switch level {
	case models.LevelJC:
		if req.JcYear == "" {
			sl.ReportError(req.JcYear, "jc_year", "JcYear", "required_jc", "")
		}
		if req.JcStream == "" {
			sl.ReportError(req.JcStream, "jc_stream", "JcStream", "required_jc", "")
		}
	case models.LevelUG, models.LevelPG:
		if req.Course == "" {
			sl.ReportError(req.Course, "course", "Course", "required_degree", "")
		}
	}
}

// validationError converts validator output into a VALIDATION_ERROR with a readable message.
func validationError(err error, message string) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeField(fe))
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, strings.Join(msgs, "; "))
}

func describeField(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "required_jc":
		return fmt.Sprintf("%s is required for JC visitors", fe.Field())
	case "required_degree":
		return fmt.Sprintf("%s is required for UG/PG visitors", fe.Field())
	case "level":
		return "level must be one of JC, UG, PG"
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must contain at least %s item(s)", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
