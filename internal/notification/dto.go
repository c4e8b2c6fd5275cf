package notification

import (
	"strings"

	errors "github.com/frahmantamala/shopping-list/internal"
	"github.com/frahmantamala/shopping-list/internal/core/common/validation"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type CreateDTO struct {
	UserID    string
	Type      Kind
	Message   string
	RelatedID string
	ActionURL string
}

func (d CreateDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("userId", d.UserID).Required()
	v.Field("type", string(d.Type)).Required().
		OneOf(errors.ErrCodeValidationFailed, string(KindShare), string(KindReminder), string(KindSystem))
	v.Field("message", strings.TrimSpace(d.Message)).Required().MaxLength(500)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type ListQuery struct {
	UnreadOnly bool
	Page       int
	Limit      int
}

func (q ListQuery) Normalize() ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	return q
}

func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

type ListResponse struct {
	Notifications []*Notification `json:"notifications"`
	Pagination    Pagination      `json:"pagination"`
	UnreadCount   int64           `json:"unreadCount"`
}
