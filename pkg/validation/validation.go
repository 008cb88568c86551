// Package validation checks engine inputs with struct tags and reports
// failures as *models.ValidationError.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/chris/clothing-swap-settlement/pkg/models"
	"github.com/go-playground/validator/v10"
)

var (
	conditions = map[models.Condition]bool{
		models.ConditionLikeNew:   true,
		models.ConditionExcellent: true,
		models.ConditionGood:      true,
		models.ConditionFair:      true,
	}
	categories = map[models.Category]bool{
		models.CategoryTops:        true,
		models.CategoryBottoms:     true,
		models.CategoryDresses:     true,
		models.CategoryOuterwear:   true,
		models.CategoryFootwear:    true,
		models.CategoryAccessories: true,
		models.CategoryActivewear:  true,
		models.CategoryFormal:      true,
		models.CategoryOther:       true,
	}
	reasons = map[models.ReportReason]bool{
		models.ReasonInappropriate: true,
		models.ReasonCounterfeit:   true,
		models.ReasonMisleading:    true,
		models.ReasonWrongCategory: true,
		models.ReasonOther:         true,
	}
)

// Validator wraps a configured validator.Validate. It is safe for concurrent use.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator that knows the item condition, item category and
// report reason tags and names fields after their json tags.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("condition", func(fl validator.FieldLevel) bool {
		return conditions[models.Condition(fl.Field().String())]
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return categories[models.Category(fl.Field().String())]
	})
	_ = v.RegisterValidation("report_reason", func(fl validator.FieldLevel) bool {
		return reasons[models.ReportReason(fl.Field().String())]
	})

	return &Validator{v: v}
}

// Struct validates s and converts tag failures into a *models.ValidationError.
func (v *Validator) Struct(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate input: %w", err)
	}

	out := &models.ValidationError{}
	for _, fe := range verrs {
		out.Errors = append(out.Errors, models.FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s entries", fe.Param())
		}
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at most %s entries", fe.Param())
		}
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gt":
		return "must be positive"
	case "condition":
		return "must be one of Like New, Excellent, Good, Fair"
	case "category":
		return "is not a known category"
	case "report_reason":
		return "is not a known report reason"
	default:
		return "is invalid"
	}
}
