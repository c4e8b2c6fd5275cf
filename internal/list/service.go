package list

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	errors "github.com/frahmantamala/shopping-list/internal"
	"github.com/frahmantamala/shopping-list/internal/core/events"
)

const NotificationKindShare = "share"

// Repository persists lists. GetByID returns errors.ErrListNotFound when absent.
type Repository interface {
	Create(ctx context.Context, l *List) error
	GetByID(ctx context.Context, id string) (*List, error)
	Save(ctx context.Context, l *List) error
	Delete(ctx context.Context, id string) error
	ListByOwner(ctx context.Context, ownerID string) ([]*List, error)
	ListSharedWith(ctx context.Context, userID string) ([]*List, error)
}

// ItemStore is the slice of item storage the list lifecycle needs.
type ItemStore interface {
	CountByListID(ctx context.Context, listID string) (int64, error)
	UncheckAll(ctx context.Context, listID string) (int64, error)
	DeleteByListID(ctx context.Context, listID string) error
}

// Notifier delivers a message to a user. Delivery is best effort and never
// reports back.
type Notifier interface {
	Notify(ctx context.Context, userID, kind, message, relatedListID string)
}

// UserDirectory resolves display names; unknown ids are absent from the map.
type UserDirectory interface {
	DisplayNames(ctx context.Context, ids []string) (map[string]string, error)
}

// Recorder receives domain counters.
type Recorder interface {
	ListCreated(listType string)
	ListShared(count int)
	ShoppingCompleted(listType string, resetCount int64)
}

type ServiceAPI interface {
	CreateList(ctx context.Context, ownerID string, dto CreateListDTO) (*List, error)
	GetLists(ctx context.Context, ownerID string) ([]*List, error)
	GetSharedLists(ctx context.Context, userID string) ([]*List, error)
	GetList(ctx context.Context, id, requesterID string) (*List, error)
	UpdateList(ctx context.Context, id, requesterID string, dto UpdateListDTO) (*List, error)
	DeleteList(ctx context.Context, id, requesterID string) error
	UpdateStatus(ctx context.Context, id, requesterID string, dto UpdateStatusDTO) (*List, error)
	Share(ctx context.Context, id, requesterID string, dto ShareListDTO) (*List, error)
	Unshare(ctx context.Context, id, requesterID, targetUserID string) (*List, error)
	CompleteShopping(ctx context.Context, id, requesterID string) (*CompleteResponse, error)
}

type Service struct {
	repo      Repository
	items     ItemStore
	users     UserDirectory
	notifier  Notifier
	publisher events.Publisher
	recorder  Recorder
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo Repository, items ItemStore, users UserDirectory, notifier Notifier, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		items:     items,
		users:     users,
		notifier:  notifier,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithRecorder attaches a metrics recorder.
func (s *Service) WithRecorder(r Recorder) *Service {
	s.recorder = r
	return s
}

// WithClock overrides the time source; tests use it to pin timestamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) CreateList(ctx context.Context, ownerID string, dto CreateListDTO) (*List, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("list validation failed", "error", err, "owner_id", ownerID)
		return nil, err
	}

	l := New(ownerID, dto, s.now())
	if err := s.repo.Create(ctx, l); err != nil {
		s.logger.Error("failed to create list", "error", err, "owner_id", ownerID)
		return nil, errors.WrapStorage(err)
	}

	if s.recorder != nil {
		s.recorder.ListCreated(string(l.Type))
	}
	s.logger.Info("list created", "list_id", l.ID, "owner_id", ownerID, "type", l.Type)
	return l, nil
}

// GetLists returns the lists owned by ownerID, most recently modified first.
func (s *Service) GetLists(ctx context.Context, ownerID string) ([]*List, error) {
	lists, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("failed to get lists", "error", err, "owner_id", ownerID)
		return nil, errors.WrapStorage(err)
	}
	sortByLastModified(lists)
	return lists, nil
}

func (s *Service) GetSharedLists(ctx context.Context, userID string) ([]*List, error) {
	lists, err := s.repo.ListSharedWith(ctx, userID)
	if err != nil {
		s.logger.Error("failed to get shared lists", "error", err, "user_id", userID)
		return nil, errors.WrapStorage(err)
	}
	sortByLastModified(lists)
	return lists, nil
}

func (s *Service) GetList(ctx context.Context, id, requesterID string) (*List, error) {
	return s.LoadAuthorized(ctx, id, requesterID, OpView)
}

// LoadAuthorized fetches the list and checks op for requesterID.
func (s *Service) LoadAuthorized(ctx context.Context, id, requesterID string, op Operation) (*List, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if !errors.IsType(err, errors.ErrorTypeNotFound) {
			s.logger.Error("failed to load list", "error", err, "list_id", id)
		}
		return nil, errors.WrapStorage(err)
	}
	if err := Authorize(requesterID, l, op); err != nil {
		s.logger.Warn("list access denied",
			"list_id", id,
			"user_id", requesterID,
			"operation", op,
			"required", RequiredPermission(op))
		return nil, err
	}
	return l, nil
}

func (s *Service) UpdateList(ctx context.Context, id, requesterID string, dto UpdateListDTO) (*List, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	l, err := s.LoadAuthorized(ctx, id, requesterID, OpUpdate)
	if err != nil {
		return nil, err
	}

	next, changed := applyUpdate(l, dto)
	next = next.WithHistory(ActionUpdate, requesterID, s.now(), changed)

	if err := s.repo.Save(ctx, next); err != nil {
		s.logger.Error("failed to update list", "error", err, "list_id", id)
		return nil, errors.WrapStorage(err)
	}

	s.publish(ctx, events.NewListChangedEvent(next.ID, ActionUpdate, requesterID, next))
	s.logger.Info("list updated", "list_id", id, "user_id", requesterID, "fields", len(changed))
	return next, nil
}

// applyUpdate returns a copy with dto applied plus the changed fields.
func applyUpdate(l *List, dto UpdateListDTO) (*List, map[string]interface{}) {
	next := l.Clone()
	changed := make(map[string]interface{})

	if dto.Name != nil && *dto.Name != l.Name {
		next.Name = *dto.Name
		changed["name"] = *dto.Name
	}
	if dto.Description != nil && *dto.Description != l.Description {
		next.Description = *dto.Description
		changed["description"] = *dto.Description
	}
	if dto.Type != nil && Type(*dto.Type) != l.Type {
		next.Type = Type(*dto.Type)
		changed["type"] = *dto.Type
	}
	if dto.Tags != nil {
		next.Tags = append([]string{}, (*dto.Tags)...)
		changed["tags"] = next.Tags
	}
	if dto.ShoppingFrequency != nil && *dto.ShoppingFrequency != l.ShoppingFrequency {
		next.ShoppingFrequency = *dto.ShoppingFrequency
		changed["shoppingFrequency"] = *dto.ShoppingFrequency
	}
	return next, changed
}

// DeleteList removes the list after its items. Only the owner may delete,
// even though admin sharers pass the permission check.
func (s *Service) DeleteList(ctx context.Context, id, requesterID string) error {
	l, err := s.LoadAuthorized(ctx, id, requesterID, OpDelete)
	if err != nil {
		return err
	}
	if l.OwnerID != requesterID {
		s.logger.Warn("delete denied: not owner", "list_id", id, "user_id", requesterID)
		return errors.ErrNotOwner
	}

	if err := s.items.DeleteByListID(ctx, id); err != nil {
		s.logger.Error("failed to delete list items", "error", err, "list_id", id)
		return errors.WrapStorage(err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete list", "error", err, "list_id", id)
		return errors.WrapStorage(err)
	}

	s.publish(ctx, events.NewListChangedEvent(id, ActionDelete, requesterID, nil))
	s.logger.Info("list deleted", "list_id", id, "user_id", requesterID)
	return nil
}

func (s *Service) UpdateStatus(ctx context.Context, id, requesterID string, dto UpdateStatusDTO) (*List, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	l, err := s.LoadAuthorized(ctx, id, requesterID, OpUpdateStatus)
	if err != nil {
		return nil, err
	}

	next := l.Clone()
	next.Status = Status(dto.Status)
	next = next.WithHistory(ActionStatusChange, requesterID, s.now(), map[string]interface{}{
		"status": dto.Status,
	})

	if err := s.repo.Save(ctx, next); err != nil {
		s.logger.Error("failed to update list status", "error", err, "list_id", id)
		return nil, errors.WrapStorage(err)
	}

	s.publish(ctx, events.NewListChangedEvent(next.ID, ActionStatusChange, requesterID, next))
	return next, nil
}

// Share grants or updates permissions. Newly added users are notified after
// the list is stored; a failed notification does not undo the share.
func (s *Service) Share(ctx context.Context, id, requesterID string, dto ShareListDTO) (*List, error) {
	dto = dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	l, err := s.LoadAuthorized(ctx, id, requesterID, OpShare)
	if err != nil {
		return nil, err
	}

	ids := []string{requesterID}
	for _, u := range dto.Users {
		ids = append(ids, u.UserID)
	}
	names, err := s.users.DisplayNames(ctx, ids)
	if err != nil {
		s.logger.Error("failed to resolve share targets", "error", err, "list_id", id)
		return nil, errors.WrapStorage(err)
	}
	for _, u := range dto.Users {
		if _, ok := names[u.UserID]; !ok {
			return nil, errors.ErrUserNotFound.WithMessage(fmt.Sprintf("user %s not found", u.UserID))
		}
	}

	res := ApplyShares(l, dto.Users, s.now())
	processed := make([]map[string]interface{}, len(res.Processed))
	for i, p := range res.Processed {
		processed[i] = map[string]interface{}{"userId": p.UserID, "permission": string(p.Permission)}
	}
	next := res.List.WithHistory(ActionShare, requesterID, s.now(), map[string]interface{}{
		"users": processed,
	})

	if err := s.repo.Save(ctx, next); err != nil {
		s.logger.Error("failed to save shares", "error", err, "list_id", id)
		return nil, errors.WrapStorage(err)
	}

	message := fmt.Sprintf("%s shared a shopping list with you: %s", names[requesterID], next.Name)
	for _, userID := range res.Added {
		s.notifier.Notify(ctx, userID, NotificationKindShare, message, next.ID)
	}

	if s.recorder != nil {
		s.recorder.ListShared(len(res.Added))
	}
	s.publish(ctx, events.NewListChangedEvent(next.ID, ActionShare, requesterID, next))
	s.logger.Info("list shared",
		"list_id", id,
		"user_id", requesterID,
		"processed", len(res.Processed),
		"added", len(res.Added))
	return next, nil
}

// Unshare removes targetUserID. Owners and admin sharers may remove anyone;
// any member may remove themself.
func (s *Service) Unshare(ctx context.Context, id, requesterID, targetUserID string) (*List, error) {
	op := OpUnshareOther
	if requesterID == targetUserID {
		op = OpView
	}
	l, err := s.LoadAuthorized(ctx, id, requesterID, op)
	if err != nil {
		return nil, err
	}

	next, removed := RemoveShare(l, targetUserID)
	if !removed {
		return nil, errors.ErrUserNotFound.WithMessage("user is not shared on this list")
	}
	next = next.WithHistory(ActionUnshare, requesterID, s.now(), map[string]interface{}{
		"userId": targetUserID,
	})

	if err := s.repo.Save(ctx, next); err != nil {
		s.logger.Error("failed to remove share", "error", err, "list_id", id)
		return nil, errors.WrapStorage(err)
	}

	s.publish(ctx, events.NewListChangedEvent(next.ID, ActionUnshare, requesterID, next))
	s.logger.Info("list unshared", "list_id", id, "user_id", requesterID, "target_user_id", targetUserID)
	return next, nil
}

// RecordItemChange registers categoryCode on the list (if new) and bumps
// lastModified. It is called after an item mutation has been stored.
func (s *Service) RecordItemChange(ctx context.Context, l *List, categoryCode string) (*List, error) {
	next, _ := RegisterCategory(l, categoryCode)
	next = next.Clone()
	next.LastModified = s.now()
	if err := s.repo.Save(ctx, next); err != nil {
		s.logger.Error("failed to refresh list after item change", "error", err, "list_id", l.ID)
		return nil, errors.WrapStorage(err)
	}
	return next, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event", "error", err, "event_type", event.EventType())
	}
}

func sortByLastModified(lists []*List) {
	sort.SliceStable(lists, func(i, j int) bool {
		return lists[i].LastModified.After(lists[j].LastModified)
	})
}
