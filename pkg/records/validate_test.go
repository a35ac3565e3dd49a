package records

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateNewRecord(t *testing.T) {
	assert.NoError(t, validateNewRecord("greeting", "hello"))
	assert.NoError(t, validateNewRecord(strings.Repeat("k", 50), strings.Repeat("v", 1000)))

	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"missing key", "", "hello"},
		{"missing value", "greeting", ""},
		{"key too long", strings.Repeat("k", 51), "hello"},
		{"value too long", "greeting", strings.Repeat("v", 1001)},
		{"slash", "a/b", "hello"},
		{"backslash", `a\b`, "hello"},
		{"angle brackets", "<key>", "hello"},
		{"colon", "a:b", "hello"},
		{"quote", `a"b`, "hello"},
		{"pipe", "a|b", "hello"},
		{"question mark", "a?b", "hello"},
		{"asterisk", "a*b", "hello"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateNewRecord(tc.key, tc.value)
			assert.Error(t, err)
			var ve *ValidationError
			assert.True(t, errors.As(err, &ve))
		})
	}
}

func TestValidateValue(t *testing.T) {
	assert.NoError(t, validateValue("hello"))
	assert.Error(t, validateValue(""))
	assert.Error(t, validateValue(strings.Repeat("v", 1001)))
}

func TestValidateCountsCharactersNotBytes(t *testing.T) {
	assert.NoError(t, validateNewRecord(strings.Repeat("键", 50), strings.Repeat("值", 1000)))
	assert.Error(t, validateNewRecord(strings.Repeat("键", 51), "hello"))
}
