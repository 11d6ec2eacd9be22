package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// Pattern table for write-time field validation. Patterns are evaluated
// all-or-nothing per write; the first failing field aborts the operation.
var (
	namePattern     = regexp.MustCompile(`^[a-zA-Z0-9_.@\- '()]*$`)
	addressPattern  = regexp.MustCompile(`^[a-zA-Z0-9 ,.'-]+$`)
	ratingPattern   = regexp.MustCompile(`^[0-5](\.[0-9])?$`)
	phonePattern    = regexp.MustCompile(`^[0-9]{10}$`)
	emailPattern    = regexp.MustCompile(`^[\w-]+(\.[\w-]+)*@([\w-]+\.)+[a-zA-Z]{2,7}$`)
	genderPattern   = regexp.MustCompile(`^(Male|Female|Other)$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z]+$|^\d{10}$`)
	pincodePattern  = regexp.MustCompile(`^[0-9]{6}$`)
	pricePattern    = regexp.MustCompile(`^[0-9]+(\.[0-9]{1,2})?$`)
	imagePattern    = regexp.MustCompile(`^[^\s]+\.(?i:jpg|jpeg|png|gif|bmp|webp)$`)

	passwordSymbols = "@#$%^&+=!"
)

// FieldError names the offending field so the caller can surface it.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func fieldErr(field, reason string) error {
	return &FieldError{Field: field, Reason: reason}
}

// Username accepts letters-only names or exactly 10 digits.
func Username(v string) error {
	if !usernamePattern.MatchString(v) {
		return fieldErr("username", "must be letters only or exactly 10 digits")
	}
	return nil
}

func Email(v string) error {
	if !emailPattern.MatchString(v) {
		return fieldErr("email", "must be a valid email address")
	}
	return nil
}

func Phone(v string) error {
	if !phonePattern.MatchString(v) {
		return fieldErr("mobileNo", "must be exactly 10 digits")
	}
	return nil
}

func Name(v string) error {
	if !namePattern.MatchString(v) {
		return fieldErr("fullname", "contains disallowed characters")
	}
	return nil
}

func Address(v string) error {
	if !addressPattern.MatchString(v) {
		return fieldErr("address", "contains disallowed characters")
	}
	return nil
}

func Gender(v string) error {
	if !genderPattern.MatchString(v) {
		return fieldErr("gender", "must be Male, Female or Other")
	}
	return nil
}

func Rating(v string) error {
	if !ratingPattern.MatchString(v) {
		return fieldErr("rating", "must be between 0 and 5 with at most one decimal")
	}
	return nil
}

func Pincode(v string) error {
	if !pincodePattern.MatchString(v) {
		return fieldErr("pincode", "must be exactly 6 digits")
	}
	return nil
}

func Price(v string) error {
	if !pricePattern.MatchString(v) {
		return fieldErr("price", "must be a number with at most 2 decimal places")
	}
	return nil
}

// ImageFilename enforces the extension allow-list, case-insensitive.
func ImageFilename(v string) error {
	if !imagePattern.MatchString(v) {
		return fieldErr("image", "only jpg, jpeg, png, gif, bmp and webp files are allowed")
	}
	return nil
}

// Password requires 6-20 chars drawn from letters, digits and the symbol
// set, with at least one of each class. Go's regexp has no lookahead, so
// the class checks are done procedurally.
func Password(v string) error {
	if len(v) < 6 || len(v) > 20 {
		return fieldErr("password", "must be 6 to 20 characters")
	}
	var hasLetter, hasDigit, hasSymbol bool
	for _, r := range v {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			hasLetter = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, r):
			hasSymbol = true
		default:
			return fieldErr("password", "contains disallowed characters")
		}
	}
	if !hasLetter || !hasDigit || !hasSymbol {
		return fieldErr("password", "needs at least one letter, one digit and one symbol")
	}
	return nil
}
