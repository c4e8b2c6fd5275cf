package user

import (
	"context"
	"log/slog"
	"strings"

	errors "github.com/frahmantamala/shopping-list/internal"
)

// Repository reads and updates user rows. GetByID returns
// errors.ErrUserNotFound when absent.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Profile, error)
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
	Search(ctx context.Context, query, excludeID string, limit int) ([]Summary, error)
	ListContacts(ctx context.Context, userID string) ([]Summary, error)
	AddContact(ctx context.Context, userID, contactID string) error
	RemoveContact(ctx context.Context, userID, contactID string) error
	DisplayNames(ctx context.Context, ids []string) (map[string]string, error)
}

type ServiceAPI interface {
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	UpdateProfile(ctx context.Context, userID string, dto UpdateProfileDTO) (*Profile, error)
	UpdatePreferences(ctx context.Context, userID string, dto UpdatePreferencesDTO) (*Preferences, error)
	Search(ctx context.Context, userID, query string) ([]Summary, error)
	Contacts(ctx context.Context, userID string) ([]Summary, error)
	AddContact(ctx context.Context, userID string, dto AddContactDTO) (*Summary, error)
	RemoveContact(ctx context.Context, userID, contactID string) error
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	p, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.WrapStorage(err)
	}
	return p, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, dto UpdateProfileDTO) (*Profile, error) {
	dto = dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if dto.Empty() {
		return s.GetProfile(ctx, userID)
	}

	fields := map[string]interface{}{}
	if dto.Name != nil {
		fields["name"] = *dto.Name
	}
	if dto.Avatar != nil {
		fields["avatar"] = *dto.Avatar
	}
	if err := s.repo.UpdateFields(ctx, userID, fields); err != nil {
		s.logger.Error("failed to update profile", "error", err, "user_id", userID)
		return nil, errors.WrapStorage(err)
	}

	s.logger.Info("profile updated", "user_id", userID)
	return s.GetProfile(ctx, userID)
}

func (s *Service) UpdatePreferences(ctx context.Context, userID string, dto UpdatePreferencesDTO) (*Preferences, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if dto.Language != nil {
		fields["language"] = strings.TrimSpace(*dto.Language)
	}
	if dto.Theme != nil {
		fields["theme"] = *dto.Theme
	}
	if dto.NotificationsEnabled != nil {
		fields["notifications_enabled"] = *dto.NotificationsEnabled
	}
	if err := s.repo.UpdateFields(ctx, userID, fields); err != nil {
		s.logger.Error("failed to update preferences", "error", err, "user_id", userID)
		return nil, errors.WrapStorage(err)
	}

	p, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &p.Preferences, nil
}

// Search matches name or email case-insensitively and never returns the caller.
func (s *Service) Search(ctx context.Context, userID, query string) ([]Summary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.NewValidationFieldError("q", "search query is required", errors.ErrCodeValidationFailed)
	}

	users, err := s.repo.Search(ctx, query, userID, SearchLimit)
	if err != nil {
		s.logger.Error("failed to search users", "error", err, "user_id", userID)
		return nil, errors.WrapStorage(err)
	}
	return nonNil(users), nil
}

func (s *Service) Contacts(ctx context.Context, userID string) ([]Summary, error) {
	contacts, err := s.repo.ListContacts(ctx, userID)
	if err != nil {
		return nil, errors.WrapStorage(err)
	}
	return nonNil(contacts), nil
}

func (s *Service) AddContact(ctx context.Context, userID string, dto AddContactDTO) (*Summary, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if dto.UserID == userID {
		return nil, errors.NewValidationError("cannot add yourself as a contact", errors.ErrCodeInvalidContact)
	}

	contact, err := s.repo.GetByID(ctx, dto.UserID)
	if err != nil {
		return nil, errors.WrapStorage(err)
	}
	if err := s.repo.AddContact(ctx, userID, contact.ID); err != nil {
		if !errors.IsType(err, errors.ErrorTypeConflict) {
			s.logger.Error("failed to add contact", "error", err, "user_id", userID)
		}
		return nil, errors.WrapStorage(err)
	}

	s.logger.Info("contact added", "user_id", userID, "contact_id", contact.ID)
	return &Summary{ID: contact.ID, Name: contact.Name, Email: contact.Email, Avatar: contact.Avatar}, nil
}

func (s *Service) RemoveContact(ctx context.Context, userID, contactID string) error {
	if err := s.repo.RemoveContact(ctx, userID, contactID); err != nil {
		return errors.WrapStorage(err)
	}
	s.logger.Info("contact removed", "user_id", userID, "contact_id", contactID)
	return nil
}

// DisplayNames lets the list service resolve sharer names.
func (s *Service) DisplayNames(ctx context.Context, ids []string) (map[string]string, error) {
	return s.repo.DisplayNames(ctx, ids)
}

func nonNil(users []Summary) []Summary {
	if users == nil {
		return []Summary{}
	}
	return users
}
