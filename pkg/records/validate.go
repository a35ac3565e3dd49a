package records

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	maxKeyLength   = 50
	maxValueLength = 1000

	// forbiddenKeyChars would break keys used as path segments or as
	// file names on common filesystems.
	forbiddenKeyChars = `<>:"/\|?*`
)

// ValidationError rejects a request before any store mutation happens.
// Handlers map it to http 400.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func invalidf(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

func validateNewRecord(key, value string) error {
	if key == "" || value == "" {
		return invalidf("key and value are required")
	}
	if utf8.RuneCountInString(key) > maxKeyLength {
		return invalidf("key must be %d characters or less", maxKeyLength)
	}
	if strings.ContainsAny(key, forbiddenKeyChars) {
		return invalidf("key contains invalid characters")
	}
	return validateValue(value)
}

func validateValue(value string) error {
	if value == "" {
		return invalidf("value is required")
	}
	if utf8.RuneCountInString(value) > maxValueLength {
		return invalidf("value must be %d characters or less", maxValueLength)
	}
	return nil
}
