package list

import (
	errors "github.com/frahmantamala/shopping-list/internal"
	"github.com/frahmantamala/shopping-list/internal/core/common/validation"
)

type CreateListDTO struct {
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	Type              string   `json:"type"`
	Tags              []string `json:"tags"`
	ShoppingFrequency int      `json:"shoppingFrequency"`
}

func (d CreateListDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(100)
	v.Field("description", d.Description).MaxLength(1000)
	v.Field("type", d.Type).OneOf(errors.ErrCodeInvalidListType, string(TypePermanent), string(TypeOneTime))
	v.Field("shoppingFrequency", d.ShoppingFrequency).MinInt(0, errors.ErrCodeValidationFailed)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// UpdateListDTO carries a partial update; nil fields are left alone. Owner
// and shares cannot be changed here.
type UpdateListDTO struct {
	Name              *string   `json:"name,omitempty"`
	Description       *string   `json:"description,omitempty"`
	Type              *string   `json:"type,omitempty"`
	Tags              *[]string `json:"tags,omitempty"`
	ShoppingFrequency *int      `json:"shoppingFrequency,omitempty"`
}

func (d UpdateListDTO) Validate() error {
	v := validation.NewValidator()
	if d.Name != nil {
		v.Field("name", d.Name).Required()
		v.Field("name", *d.Name).MaxLength(100)
	}
	if d.Description != nil {
		v.Field("description", *d.Description).MaxLength(1000)
	}
	if d.Type != nil {
		v.Field("type", d.Type).Required().OneOf(errors.ErrCodeInvalidListType, string(TypePermanent), string(TypeOneTime))
	}
	v.Field("shoppingFrequency", d.ShoppingFrequency).MinInt(0, errors.ErrCodeValidationFailed)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type UpdateStatusDTO struct {
	Status string `json:"status"`
}

func (d UpdateStatusDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("status", d.Status).
		Required().
		OneOf(errors.ErrCodeInvalidStatus, string(StatusActive), string(StatusShopping), string(StatusCompleted))
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type ShareListDTO struct {
	Users []ShareRequest `json:"users"`
}

// Normalize defaults a missing permission to view.
func (d ShareListDTO) Normalize() ShareListDTO {
	out := ShareListDTO{Users: make([]ShareRequest, len(d.Users))}
	for i, u := range d.Users {
		if u.Permission == "" {
			u.Permission = PermissionView
		}
		out.Users[i] = u
	}
	return out
}

func (d ShareListDTO) Validate() error {
	if len(d.Users) == 0 {
		return errors.NewValidationFieldError("users", "at least one user is required", errors.ErrCodeValidationFailed)
	}
	v := validation.NewValidator()
	for _, u := range d.Users {
		v.Field("users.userId", u.UserID).Required()
		v.Field("users.permission", string(u.Permission)).
			OneOf(errors.ErrCodeInvalidPerm, string(PermissionView), string(PermissionEdit), string(PermissionAdmin))
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type ListsResponse struct {
	Lists []*List `json:"lists"`
	Count int     `json:"count"`
}

type CompleteResponse struct {
	List       *List `json:"list"`
	Type       Type  `json:"type"`
	ItemsCount int64 `json:"itemsCount"`
	ResetCount int64 `json:"resetCount"`
}
