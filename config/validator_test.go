package config

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestValidateEnvironment(t *testing.T) {
	type envHolder struct {
		Env string `validate:"env"`
	}

	tests := []struct {
		env  string
		want bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"prod", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			err := validate.Struct(envHolder{Env: tt.env})
			if (err == nil) != tt.want {
				t.Errorf("env %q: got err %v, want valid=%v", tt.env, err, tt.want)
			}
		})
	}
}

func TestFormatValidationError(t *testing.T) {
	type sample struct {
		Name  string  `validate:"required"`
		Count int     `validate:"min=1"`
		Level string  `validate:"oneof=a b"`
		Rate  float64 `validate:"max=1"`
	}

	err := validate.Struct(sample{Level: "c", Rate: 2})
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		t.Fatalf("expected validator.ValidationErrors, got %T", err)
	}

	want := map[string]string{
		"Name":  "this field is required",
		"Count": "must be at least 1",
		"Level": "must be one of [a b]",
		"Rate":  "must be at most 1",
	}
	for _, fe := range fieldErrs {
		if got := formatValidationError(fe); got != want[fe.Field()] {
			t.Errorf("%s: got %q, want %q", fe.Field(), got, want[fe.Field()])
		}
	}
}
