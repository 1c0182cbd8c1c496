package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 50
	minPasswordLength = 6
	maxPasswordLength = 128
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

type credentials struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (c credentials) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name,
			validation.Required,
			validation.Length(minUsernameLength, maxUsernameLength).
				Error(fmt.Sprintf("Username must be %d-%d characters", minUsernameLength, maxUsernameLength)),
			validation.Match(usernamePattern).
				Error("Username can only contain letters, numbers, and underscores"),
		),
		validation.Field(&c.Password,
			validation.Required,
			validation.RuneLength(minPasswordLength, maxPasswordLength).
				Error(fmt.Sprintf("Password must be %d-%d characters", minPasswordLength, maxPasswordLength)),
		),
	)
}

func validateCredentials(name, password string) error {
	err := credentials{Name: name, Password: password}.Validate()
	if err == nil {
		return nil
	}

	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: validate: %w", ErrInternal, err)
	}
	fields := make(map[string]string, len(fieldErrs))
	for field, fieldErr := range fieldErrs {
		fields[field] = fieldErr.Error()
	}
	return &ValidationError{Fields: fields}
}

func normalizeUsername(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
