package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type pageInput struct {
	Key string `validate:"required,page_key"`
}

func TestPageKeyValidation(t *testing.T) {
	tests := []struct {
		key   string
		valid bool
	}{
		{"dashboard", true},
		{"ticket_management", true},
		{"kds2", true},
		{"", false},
		{"Dashboard", false},
		{"2fa", false},
		{"kitchen-display", false},
		{"x", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			errs := ValidateStruct(&pageInput{Key: tt.key})
			assert.Equal(t, tt.valid, len(errs) == 0, "errors: %v", errs)
		})
	}
}

func TestValidateStructReportsField(t *testing.T) {
	type req struct {
		Email string `validate:"required,email"`
	}
	errs := ValidateStruct(&req{Email: "nope"})
	if assert.Len(t, errs, 1) {
		assert.Equal(t, "req.Email", errs[0].FailedField)
		assert.Equal(t, "email", errs[0].Tag)
	}
}
