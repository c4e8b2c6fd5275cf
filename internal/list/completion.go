package list

import (
	"context"

	errors "github.com/frahmantamala/shopping-list/internal"
	"github.com/frahmantamala/shopping-list/internal/core/events"
)

// CompleteShopping closes a shopping run. Permanent lists get their checked
// items reset so the list can be reused; one-time lists keep their checked
// state as a record of the run.
func (s *Service) CompleteShopping(ctx context.Context, id, requesterID string) (*CompleteResponse, error) {
	l, err := s.LoadAuthorized(ctx, id, requesterID, OpComplete)
	if err != nil {
		return nil, err
	}

	next := l.Clone()
	next.Status = StatusCompleted

	itemsCount, err := s.items.CountByListID(ctx, id)
	if err != nil {
		s.logger.Error("failed to count list items", "error", err, "list_id", id)
		return nil, errors.WrapStorage(err)
	}

	var resetCount int64
	switch next.Type {
	case TypePermanent:
		resetCount, err = s.items.UncheckAll(ctx, id)
		if err != nil {
			s.logger.Error("failed to reset checked items", "error", err, "list_id", id)
			return nil, errors.WrapStorage(err)
		}
	case TypeOneTime:
		// checked state stays as the record of this run
	}

	next = next.WithHistory(ActionCompleteShopping, requesterID, s.now(), map[string]interface{}{
		"itemsCount": itemsCount,
		"resetCount": resetCount,
	})

	if err := s.repo.Save(ctx, next); err != nil {
		s.logger.Error("failed to save completed list", "error", err, "list_id", id)
		return nil, errors.WrapStorage(err)
	}

	if s.recorder != nil {
		s.recorder.ShoppingCompleted(string(next.Type), resetCount)
	}
	s.publish(ctx, events.NewListChangedEvent(next.ID, ActionCompleteShopping, requesterID, next))
	s.logger.Info("shopping completed",
		"list_id", id,
		"user_id", requesterID,
		"type", next.Type,
		"items_count", itemsCount,
		"reset_count", resetCount)

	return &CompleteResponse{
		List:       next,
		Type:       next.Type,
		ItemsCount: itemsCount,
		ResetCount: resetCount,
	}, nil
}
