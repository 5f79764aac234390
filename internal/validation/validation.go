package validation

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"shortener/internal/domain/models"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

type longURLInput struct {
	URL string `validate:"required,max=2048,absurl"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("absurl", validateAbsoluteURL); err != nil {
		panic(fmt.Sprintf("register absurl validation: %v", err))
	}
	return v
}

// validateAbsoluteURL accepts anything url.Parse understands as long as it
// carries a scheme: https://x, ftp://x and mailto:x are fine, "notaurl" is not.
func validateAbsoluteURL(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if strings.TrimSpace(raw) != raw {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme != ""
}

// LongURL checks a URL submitted for shortening. Any failure is reported as
// models.ErrInvalidURL with the failing rule attached.
func LongURL(raw string) error {
	err := validate.Struct(longURLInput{URL: raw})
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return fmt.Errorf("%w: %s", models.ErrInvalidURL, describe(fieldErrs[0]))
	}
	return fmt.Errorf("%w: %v", models.ErrInvalidURL, err)
}

func describe(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "url is required"
	case "max":
		return fmt.Sprintf("url must be at most %s characters", err.Param())
	case "absurl":
		return "url must be absolute with a scheme"
	default:
		return "url is invalid"
	}
}
