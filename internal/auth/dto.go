package auth

import (
	"net/mail"
	"strings"

	errors "github.com/frahmantamala/shopping-list/internal"
	"github.com/frahmantamala/shopping-list/internal/core/common/validation"
)

const minPasswordLength = 6

type RegisterDTO struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Normalize trims the name and lowercases the email.
func (d RegisterDTO) Normalize() RegisterDTO {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	return d
}

func (d RegisterDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(100)
	v.Field("email", d.Email).Required().MaxLength(255).Custom(validEmail("email"))
	v.Field("password", d.Password).Required().MinLength(minPasswordLength)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (d LoginDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("email", d.Email).Required()
	v.Field("password", d.Password).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refreshToken"`
}

func (d RefreshTokenDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("refreshToken", d.RefreshToken).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

func validEmail(field string) func(interface{}) *errors.AppError {
	return func(value interface{}) *errors.AppError {
		s, _ := value.(string)
		if s == "" {
			return nil
		}
		if _, err := mail.ParseAddress(s); err != nil {
			return errors.NewValidationFieldError(field, "email is not valid", errors.ErrCodeValidationFailed)
		}
		return nil
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
