package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/jayansh1208/marketly/apperror"
	"github.com/jayansh1208/marketly/models"
)

var phonePattern = regexp.MustCompile(`^[\d\s\-\+\(\)]+$`)

var (
	once     sync.Once
	instance *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return phonePattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
			return models.Category(fl.Field().String()).Valid()
		})
		instance = v
	})
	return instance
}

// Struct validates v and returns a *apperror.ValidationError listing every
// failing field, or nil. Field paths use json names relative to v.
func Struct(v any) error {
	err := engine().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &apperror.ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, apperror.FieldError{
			Field:   fieldPath(fe.Namespace()),
			Message: message(fe),
		})
	}
	return out
}

// Prefix rewrites field paths of a validation error, e.g. "phone" to
// "shippingAddress.phone".
func Prefix(err error, prefix string) error {
	var verr *apperror.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	out := &apperror.ValidationError{Fields: make([]apperror.FieldError, len(verr.Fields))}
	for i, f := range verr.Fields {
		out.Fields[i] = apperror.FieldError{Field: prefix + "." + f.Field, Message: f.Message}
	}
	return out
}

func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

var labels = map[string]string{
	"fullName":    "Full name",
	"address":     "Address",
	"city":        "City",
	"postalCode":  "Postal code",
	"country":     "Country",
	"phone":       "Phone number",
	"name":        "Name",
	"description": "Description",
	"price":       "Price",
	"category":    "Category",
	"stock":       "Stock",
	"rating":      "Rating",
	"email":       "Email",
	"password":    "Password",
	"quantity":    "Quantity",
	"productId":   "Product",
	"amount":      "Amount",
}

func label(field string) string {
	if l, ok := labels[field]; ok {
		return l
	}
	return field
}

func message(fe validator.FieldError) string {
	name := label(fe.Field())
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "phone":
		return "Please provide a valid phone number"
	case "category":
		return "Please select a valid category"
	case "email":
		return "Please provide a valid email"
	case "min", "max":
		if fe.Kind() == reflect.String {
			if fe.Field() == "phone" {
				return "Phone number must be between 7 and 20 characters"
			}
			if fe.Tag() == "min" {
				return fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
			}
			return fmt.Sprintf("%s cannot exceed %s characters", name, fe.Param())
		}
		if fe.Tag() == "min" {
			return fmt.Sprintf("%s must be at least %s", name, fe.Param())
		}
		return fmt.Sprintf("%s cannot be more than %s", name, fe.Param())
	case "gte":
		if fe.Param() == "0" {
			return name + " cannot be negative"
		}
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", name, fe.Param())
	case "lte":
		return fmt.Sprintf("%s cannot be more than %s", name, fe.Param())
	default:
		return name + " is invalid"
	}
}
