package financial

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/andresuchdata/dpr-report/backend-go/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// validate is safe for concurrent use and caches struct metadata.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})

	decimalRules := map[string]func(cmp int) bool{
		"dec_gt":  func(cmp int) bool { return cmp > 0 },
		"dec_gte": func(cmp int) bool { return cmp >= 0 },
		"dec_lte": func(cmp int) bool { return cmp <= 0 },
	}
	for tag, accept := range decimalRules {
		if err := v.RegisterValidation(tag, compareDecimal(accept)); err != nil {
			panic(err)
		}
	}
	return v
}

// compareDecimal compares a decimal field with the tag parameter exactly,
// so values too small for a float64 are still ordered correctly.
func compareDecimal(accept func(cmp int) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		d, ok := fl.Field().Interface().(decimal.Decimal)
		if !ok {
			return false
		}
		bound, err := decimal.NewFromString(fl.Param())
		if err != nil {
			return false
		}
		return accept(d.Cmp(bound))
	}
}

// ValidateInputs checks that all three groups are present and within bounds.
func ValidateInputs(investment *domain.InvestmentProfile, economics *domain.UnitEconomics, costs *domain.MonthlyCostProfile) error {
	if investment == nil {
		return &MissingInputError{Group: "investment profile"}
	}
	if economics == nil {
		return &MissingInputError{Group: "unit economics"}
	}
	if costs == nil {
		return &MissingInputError{Group: "monthly cost profile"}
	}

	if err := validateGroup("investment", investment); err != nil {
		return err
	}
	if err := validateGroup("economics", economics); err != nil {
		return err
	}
	return validateGroup("costs", costs)
}

func validateGroup(group string, v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validate %s: %w", group, err)
	}

	fe := fieldErrs[0]
	return &InvalidValueError{
		Field:  group + "." + fe.Field(),
		Value:  fmt.Sprint(fe.Value()),
		Reason: describeConstraint(fe.Tag(), fe.Param()),
	}
}

func describeConstraint(tag, param string) string {
	switch tag {
	case "gt", "dec_gt":
		return "must be greater than " + param
	case "gte", "dec_gte":
		return "must not be less than " + param
	case "lte", "dec_lte":
		return "must not exceed " + param
	default:
		return "fails " + tag
	}
}
