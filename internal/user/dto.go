package user

import (
	"strings"

	errors "github.com/frahmantamala/shopping-list/internal"
	"github.com/frahmantamala/shopping-list/internal/core/common/validation"
)

const SearchLimit = 10

type UpdateProfileDTO struct {
	Name   *string `json:"name"`
	Avatar *string `json:"avatar"`
}

// Normalize trims the supplied fields; empty values mean "leave unchanged".
func (d UpdateProfileDTO) Normalize() UpdateProfileDTO {
	d.Name = trimmed(d.Name)
	d.Avatar = trimmed(d.Avatar)
	return d
}

func (d UpdateProfileDTO) Validate() error {
	v := validation.NewValidator()
	if d.Name != nil {
		v.Field("name", *d.Name).MaxLength(100)
	}
	if d.Avatar != nil {
		v.Field("avatar", *d.Avatar).MaxLength(500)
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

func (d UpdateProfileDTO) Empty() bool {
	return d.Name == nil && d.Avatar == nil
}

type UpdatePreferencesDTO struct {
	Language             *string `json:"language"`
	Theme                *string `json:"theme"`
	NotificationsEnabled *bool   `json:"notificationsEnabled"`
}

func (d UpdatePreferencesDTO) Validate() error {
	if d.Language == nil && d.Theme == nil && d.NotificationsEnabled == nil {
		return errors.NewValidationError("no preferences supplied", errors.ErrCodeValidationFailed)
	}
	v := validation.NewValidator()
	if d.Language != nil {
		v.Field("language", *d.Language).Required().MaxLength(10)
	}
	v.Field("theme", d.Theme).OneOf(errors.ErrCodeValidationFailed, ThemeLight, ThemeDark, ThemeSystem)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type AddContactDTO struct {
	UserID string `json:"userId"`
}

func (d AddContactDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("userId", d.UserID).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type UsersResponse struct {
	Users []Summary `json:"users"`
	Count int       `json:"count"`
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
