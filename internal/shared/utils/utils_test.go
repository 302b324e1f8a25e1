package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "alice_01", false},
		{"dotted", "a.b-c", false},
		{"too short", "ab", true},
		{"too long", strings.Repeat("a", MaxUsernameLength+1), true},
		{"spaces", "al ice", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	assert.Error(t, ValidatePassword("12345"))
	assert.NoError(t, ValidatePassword("123456"))
	assert.Error(t, ValidatePassword(strings.Repeat("x", MaxPasswordLength+1)))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("", false))
	assert.Error(t, ValidateEmail("", true))
	assert.NoError(t, ValidateEmail("a@example.com", false))
	assert.Error(t, ValidateEmail("not-an-email", false))
}

func TestValidateContent(t *testing.T) {
	assert.Error(t, ValidateContent("   ", MaxContentLength))
	assert.Error(t, ValidateContent("a\x00b", MaxContentLength))
	assert.Error(t, ValidateContent(strings.Repeat("é", MaxContentLength+1), MaxContentLength))
	assert.NoError(t, ValidateContent(strings.Repeat("é", MaxContentLength), MaxContentLength))
}

func TestValidateHashtags(t *testing.T) {
	assert.NoError(t, ValidateHashtags(nil))
	assert.NoError(t, ValidateHashtags([]string{"#go"}))
	assert.Error(t, ValidateHashtags([]string{""}))
	assert.Error(t, ValidateHashtags(make([]string, MaxHashtagCount+1)))
}

func TestHasher(t *testing.T) {
	h := DefaultHasher()
	assert.Len(t, h.HashString("x"), 64)
	assert.Equal(t, h.HashFields("a", "b"), h.HashFields("b", "a"))

	a, err := h.HashJSON(map[string]int{"b": 2, "a": 1})
	assert.NoError(t, err)
	b, err := h.HashJSON(map[string]int{"a": 1, "b": 2})
	assert.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestETag(t *testing.T) {
	tag := ETag(strings.Repeat("f", 64))
	assert.Equal(t, `"`+strings.Repeat("f", 32)+`"`, tag)
}
