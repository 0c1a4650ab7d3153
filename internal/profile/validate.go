package profile

import (
	"errors"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/kazz187/agentregistry/pkg/cerr"
)

const (
	msgInvalidEmail     = "Invalid email format"
	msgInvalidFirstName = "first_name can only contain letters, numbers, hyphens, and underscores (will be used as user ID)"
)

// validate is shared; building a validator caches struct metadata.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	must(v.RegisterValidation("profile_email", func(fl validator.FieldLevel) bool {
		return isEmail(fl.Field().String())
	}))
	must(v.RegisterValidation("profile_user_id", func(fl validator.FieldLevel) bool {
		return isUserIDName(fl.Field().String())
	}))
	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// isEmail reports whether s has an "@" with a "." somewhere after the last "@".
func isEmail(s string) bool {
	at := strings.LastIndex(s, "@")
	return at >= 0 && strings.Contains(s[at+1:], ".")
}

// isUserIDName reports whether s consists of letters and digits, optionally
// mixed with "-" and "_", and has at least one letter or digit.
func isUserIDName(s string) bool {
	stripped := strings.NewReplacer("-", "", "_", "").Replace(s)
	if stripped == "" {
		return false
	}
	for _, r := range stripped {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// Validate checks p and reports the first failing rule: missing required
// fields first (email, first_name, last_name), then the email format, then
// the first_name character set.
func Validate(p *Profile) error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return cerr.NewError(cerr.Internal, "server error", err)
	}
	first := fieldErrs[0]
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			first = fe
			break
		}
	}
	return invalid(messageFor(first), err)
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "profile_email":
		return msgInvalidEmail
	case "profile_user_id":
		return msgInvalidFirstName
	default:
		return fe.Error()
	}
}

func invalid(msg string, err error) error {
	return cerr.NewError(cerr.InvalidArgument, msg, err).WithReason(cerr.ReasonInvalidRequest)
}
