package notification

import (
	"context"
	"log/slog"
	"math"
	"time"

	errors "github.com/frahmantamala/shopping-list/internal"
	"github.com/frahmantamala/shopping-list/internal/core/events"
)

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	GetByID(ctx context.Context, id string) (*Notification, error)
	ListByUser(ctx context.Context, userID string, q ListQuery) ([]*Notification, int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, id string) error
	ExistsSince(ctx context.Context, userID string, kind Kind, relatedID string, since time.Time) (bool, error)
}

type ServiceAPI interface {
	Create(ctx context.Context, dto CreateDTO) (*Notification, error)
	List(ctx context.Context, userID string, q ListQuery) (*ListResponse, error)
	MarkRead(ctx context.Context, id, userID string) (*Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, id, userID string) error
}

type Service struct {
	repo      Repository
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo Repository, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create stores the notification and announces it for realtime delivery.
func (s *Service) Create(ctx context.Context, dto CreateDTO) (*Notification, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	n := New(dto, s.now())
	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error("failed to store notification", "error", err, "user_id", dto.UserID)
		return nil, errors.WrapStorage(err)
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, events.NewNotificationCreatedEvent(n.UserID, n)); err != nil {
			s.logger.Warn("failed to publish notification", "error", err, "notification_id", n.ID)
		}
	}
	return n, nil
}

func (s *Service) List(ctx context.Context, userID string, q ListQuery) (*ListResponse, error) {
	q = q.Normalize()

	items, total, err := s.repo.ListByUser(ctx, userID, q)
	if err != nil {
		s.logger.Error("failed to list notifications", "error", err, "user_id", userID)
		return nil, errors.WrapStorage(err)
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, errors.WrapStorage(err)
	}
	if items == nil {
		items = []*Notification{}
	}

	return &ListResponse{
		Notifications: items,
		Pagination: Pagination{
			Total:      total,
			Page:       q.Page,
			Limit:      q.Limit,
			TotalPages: int(math.Ceil(float64(total) / float64(q.Limit))),
		},
		UnreadCount: unread,
	}, nil
}

// owned loads the notification and refuses anyone but its recipient.
func (s *Service) owned(ctx context.Context, id, userID string) (*Notification, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.WrapStorage(err)
	}
	if n.UserID != userID {
		s.logger.Warn("notification access denied", "notification_id", id, "user_id", userID)
		return nil, errors.ErrNoAccess.WithMessage("notification belongs to another user")
	}
	return n, nil
}

func (s *Service) MarkRead(ctx context.Context, id, userID string) (*Notification, error) {
	n, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if n.Read {
		return n, nil
	}
	if err := s.repo.MarkRead(ctx, id); err != nil {
		return nil, errors.WrapStorage(err)
	}
	n.Read = true
	return n, nil
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		s.logger.Error("failed to mark notifications read", "error", err, "user_id", userID)
		return 0, errors.WrapStorage(err)
	}
	return n, nil
}

func (s *Service) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.owned(ctx, id, userID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.WrapStorage(err)
	}
	return nil
}
