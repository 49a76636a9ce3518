package validate

import (
	"errors"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"

	"storefront/internal/apperr"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

	v = newValidator()
)

// OrderLine is one requested {product_id, quantity} pair.
type OrderLine struct {
	ProductID int64 `json:"product_id" validate:"gt=0"`
	Quantity  int64 `json:"quantity" validate:"gt=0"`
}

// PlaceOrderRequest is the payload for POST /api/orders
type PlaceOrderRequest struct {
	Items []OrderLine `json:"items" validate:"required,min=1,dive"`
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,max=254,email_addr"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type CreateProductRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	PriceCents  *int64 `json:"price_cents" validate:"required,gte=0"`
	Inventory   *int64 `json:"inventory" validate:"omitempty,gte=0"`
	IsActive    *bool  `json:"is_active"`
}

// UpdateProductRequest: absent fields are left unchanged.
type UpdateProductRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	PriceCents  *int64  `json:"price_cents" validate:"omitempty,gte=0"`
	Inventory   *int64  `json:"inventory" validate:"omitempty,gte=0"`
	IsActive    *bool   `json:"is_active"`
}

func newValidator() *validatorv10.Validate {
	val := validatorv10.New()
	// Report JSON names ("items[0].product_id") instead of Go field names.
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = val.RegisterValidation("email_addr", func(fl validatorv10.FieldLevel) bool {
		_, ok := Email(fl.Field().String())
		return ok
	})
	return val
}

// Struct validates s and converts failures into an apperr Invalid error.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var ve validatorv10.ValidationErrors
	if !errors.As(err, &ve) {
		return apperr.Invalidf("invalid request")
	}
	return apperr.InvalidFields("validation failed", fieldErrors(ve))
}

func fieldErrors(ve validatorv10.ValidationErrors) map[string]string {
	out := map[string]string{}
	for _, fe := range ve {
		// Namespace is "PlaceOrderRequest.items[0].product_id"; drop the type name.
		key := fe.Namespace()
		if i := strings.IndexByte(key, '.'); i >= 0 {
			key = key[i+1:]
		}
		out[key] = message(fe)
	}
	return out
}

func message(fe validatorv10.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		if fe.Param() == "0" {
			return "must be a positive integer"
		}
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "min":
		if fe.Kind() == reflect.Slice {
			return "must contain at least " + fe.Param() + " item(s)"
		}
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "email_addr":
		return "must be a valid email address"
	}
	return "is invalid"
}

func Email(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) == 0 || len(s) > 254 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// ID parses a positive integer resource identifier from a path segment.
func ID(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// IDList parses "1,2,3" into distinct positive ids, keeping first-seen order.
func IDList(s string, max int) ([]int64, bool) {
	var out []int64
	seen := map[int64]bool{}
	for _, part := range strings.Split(s, ",") {
		id, ok := ID(part)
		if !ok {
			return nil, false
		}
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	if len(out) == 0 || len(out) > max {
		return nil, false
	}
	return out, true
}

// Page clamps a 1-based page number; anything unparsable is page 1.
func Page(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Limit clamps a page size to 1..50, defaulting to 10.
func Limit(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 10
	}
	if n < 1 {
		return 1
	}
	if n > 50 {
		return 50
	} // clamp to avoid abuse
	return n
}
