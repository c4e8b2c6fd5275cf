package listitem

import (
	"context"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/shopping-list/internal"
	"github.com/frahmantamala/shopping-list/internal/catalog"
	"github.com/frahmantamala/shopping-list/internal/core/events"
	"github.com/frahmantamala/shopping-list/internal/list"
)

// Item change actions carried on ItemChangedEvent.
const (
	ActionAdd    = "add"
	ActionUpdate = "update"
	ActionCheck  = "check"
	ActionDelete = "delete"
)

// Repository persists items. Lookups are scoped to the list so an item id
// from another list reads as errors.ErrItemNotFound.
type Repository interface {
	Create(ctx context.Context, item *Item) error
	GetByID(ctx context.Context, listID, itemID string) (*Item, error)
	Save(ctx context.Context, item *Item) error
	Delete(ctx context.Context, listID, itemID string) error
	ListByListID(ctx context.Context, listID string) ([]*Item, error)
}

// ListAccess authorizes against the parent list and records item changes on it.
type ListAccess interface {
	LoadAuthorized(ctx context.Context, id, requesterID string, op list.Operation) (*list.List, error)
	RecordItemChange(ctx context.Context, l *list.List, categoryCode string) (*list.List, error)
}

type ProductFinder interface {
	Lookup(ctx context.Context, id string) (*catalog.Product, error)
}

type Recorder interface {
	ItemChecked(checked bool)
}

type ServiceAPI interface {
	GetItems(ctx context.Context, listID, requesterID string) ([]*Item, error)
	AddItem(ctx context.Context, listID, requesterID string, dto AddItemDTO) (*Item, error)
	UpdateItem(ctx context.Context, listID, itemID, requesterID string, dto UpdateItemDTO) (*Item, error)
	DeleteItem(ctx context.Context, listID, itemID, requesterID string) error
	ToggleCheck(ctx context.Context, listID, itemID, requesterID string, desired *bool) (*Item, error)
}

type Service struct {
	repo      Repository
	lists     ListAccess
	products  ProductFinder
	publisher events.Publisher
	recorder  Recorder
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo Repository, lists ListAccess, products ProductFinder, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		lists:     lists,
		products:  products,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) WithRecorder(r Recorder) *Service {
	s.recorder = r
	return s
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// GetItems returns the list's items grouped by main category, then custom
// order, then add time.
func (s *Service) GetItems(ctx context.Context, listID, requesterID string) ([]*Item, error) {
	if _, err := s.lists.LoadAuthorized(ctx, listID, requesterID, list.OpListItems); err != nil {
		return nil, err
	}

	items, err := s.repo.ListByListID(ctx, listID)
	if err != nil {
		s.logger.Error("failed to get list items", "error", err, "list_id", listID)
		return nil, errors.WrapStorage(err)
	}
	Sort(items)
	return items, nil
}

func (s *Service) AddItem(ctx context.Context, listID, requesterID string, dto AddItemDTO) (*Item, error) {
	l, err := s.lists.LoadAuthorized(ctx, listID, requesterID, list.OpAddItem)
	if err != nil {
		return nil, err
	}

	dto = dto.Normalize()
	if dto.ProductID != nil && s.products != nil {
		product, err := s.products.Lookup(ctx, *dto.ProductID)
		switch {
		case err == nil:
			dto = dto.FillFrom(product)
		case errors.IsType(err, errors.ErrorTypeNotFound):
			s.logger.Warn("item references unknown product", "product_id", *dto.ProductID, "list_id", listID)
		default:
			return nil, errors.WrapStorage(err)
		}
	}
	if err := dto.Validate(); err != nil {
		s.logger.Warn("item validation failed", "error", err, "list_id", listID)
		return nil, err
	}

	item := New(listID, requesterID, dto, s.now())
	if err := s.repo.Create(ctx, item); err != nil {
		s.logger.Error("failed to create list item", "error", err, "list_id", listID)
		return nil, errors.WrapStorage(err)
	}
	if _, err := s.lists.RecordItemChange(ctx, l, item.Category.Main); err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewItemChangedEvent(listID, item.ID, ActionAdd, requesterID, item))
	s.logger.Info("list item added", "list_id", listID, "item_id", item.ID, "user_id", requesterID)
	return item, nil
}

func (s *Service) UpdateItem(ctx context.Context, listID, itemID, requesterID string, dto UpdateItemDTO) (*Item, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	l, err := s.lists.LoadAuthorized(ctx, listID, requesterID, list.OpUpdateItem)
	if err != nil {
		return nil, err
	}
	item, err := s.repo.GetByID(ctx, listID, itemID)
	if err != nil {
		return nil, errors.WrapStorage(err)
	}

	next, newCategory := applyUpdate(item, dto)
	if err := s.repo.Save(ctx, next); err != nil {
		s.logger.Error("failed to update list item", "error", err, "item_id", itemID)
		return nil, errors.WrapStorage(err)
	}
	if _, err := s.lists.RecordItemChange(ctx, l, newCategory); err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewItemChangedEvent(listID, itemID, ActionUpdate, requesterID, next))
	return next, nil
}

// applyUpdate returns the updated copy and the new main category when it
// changed.
func applyUpdate(item *Item, dto UpdateItemDTO) (*Item, string) {
	next := item.Clone()
	newCategory := ""

	if dto.Name != nil {
		next.Name = *dto.Name
	}
	if dto.Category != nil {
		if dto.Category.Main != item.Category.Main {
			newCategory = dto.Category.Main
		}
		next.Category = *dto.Category
	}
	if dto.Quantity != nil {
		next.Quantity = *dto.Quantity
	}
	if dto.Unit != nil {
		next.Unit = *dto.Unit
	}
	if dto.Price != nil {
		p := *dto.Price
		next.Price = &p
	}
	if dto.IsPermanent != nil {
		next.IsPermanent = *dto.IsPermanent
	}
	if dto.CustomOrder != nil {
		next.CustomOrder = *dto.CustomOrder
	}
	if dto.Notes != nil {
		next.Notes = *dto.Notes
	}
	return next, newCategory
}

func (s *Service) DeleteItem(ctx context.Context, listID, itemID, requesterID string) error {
	l, err := s.lists.LoadAuthorized(ctx, listID, requesterID, list.OpDeleteItem)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, listID, itemID); err != nil {
		if !errors.IsType(err, errors.ErrorTypeNotFound) {
			s.logger.Error("failed to delete list item", "error", err, "item_id", itemID)
		}
		return errors.WrapStorage(err)
	}
	if _, err := s.lists.RecordItemChange(ctx, l, ""); err != nil {
		return err
	}

	s.publish(ctx, events.NewItemChangedEvent(listID, itemID, ActionDelete, requesterID, nil))
	s.logger.Info("list item deleted", "list_id", listID, "item_id", itemID, "user_id", requesterID)
	return nil
}

// ToggleCheck needs only view access so any member can tick items off while
// shopping. Without desired the current state is flipped.
func (s *Service) ToggleCheck(ctx context.Context, listID, itemID, requesterID string, desired *bool) (*Item, error) {
	if _, err := s.lists.LoadAuthorized(ctx, listID, requesterID, list.OpToggleCheck); err != nil {
		return nil, err
	}
	item, err := s.repo.GetByID(ctx, listID, itemID)
	if err != nil {
		return nil, errors.WrapStorage(err)
	}

	next, changed := Toggle(item, desired, s.now())
	if !changed {
		return next, nil
	}
	if err := s.repo.Save(ctx, next); err != nil {
		s.logger.Error("failed to toggle list item", "error", err, "item_id", itemID)
		return nil, errors.WrapStorage(err)
	}

	if s.recorder != nil {
		s.recorder.ItemChecked(next.IsChecked)
	}
	s.publish(ctx, events.NewItemChangedEvent(listID, itemID, ActionCheck, requesterID, next))
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
