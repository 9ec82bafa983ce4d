package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dungpham-npc/storefront/internal/domain"
	"github.com/dungpham-npc/storefront/internal/repository"
	apperrors "github.com/dungpham-npc/storefront/pkg/errors"
)

// RecipientService manages a user's delivery addresses.
type RecipientService struct {
	repo   repository.RecipientRepository
	logger *slog.Logger
	now    func() time.Time
}

func NewRecipientService(repo repository.RecipientRepository, logger *slog.Logger) *RecipientService {
	return &RecipientService{repo: repo, logger: logger, now: utcNow}
}

// RecipientInput holds the address fields of a recipient.
type RecipientInput struct {
	Name        string
	Phone       string
	AddressLine string
	City        string
	Country     string
	IsDefault   bool
}

func (s *RecipientService) List(ctx context.Context, userID string) ([]domain.Recipient, error) {
	return s.repo.ListByUserID(ctx, userID)
}

// Add creates a recipient. A user's first recipient is always the default.
func (s *RecipientService) Add(ctx context.Context, userID string, input RecipientInput) (*domain.Recipient, error) {
	count, err := s.repo.CountByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	rc := &domain.Recipient{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        input.Name,
		Phone:       input.Phone,
		AddressLine: input.AddressLine,
		City:        input.City,
		Country:     input.Country,
		IsDefault:   input.IsDefault || count == 0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, rc); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "recipient added",
		slog.String("user_id", userID),
		slog.String("recipient_id", rc.ID),
	)
	return rc, nil
}

// Update changes the address fields. Setting IsDefault also makes the
// recipient the default; clearing it is ignored.
func (s *RecipientService) Update(ctx context.Context, userID, id string, input RecipientInput) (*domain.Recipient, error) {
	rc, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	rc.Name = input.Name
	rc.Phone = input.Phone
	rc.AddressLine = input.AddressLine
	rc.City = input.City
	rc.Country = input.Country
	rc.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, rc); err != nil {
		return nil, err
	}
	if input.IsDefault && !rc.IsDefault {
		if err := s.repo.SetDefault(ctx, userID, id); err != nil {
			return nil, err
		}
		rc.IsDefault = true
	}
	return rc, nil
}

// Delete removes a recipient. When the default is removed, the oldest
// remaining recipient becomes the default.
func (s *RecipientService) Delete(ctx context.Context, userID, id string) error {
	rc, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if rc.IsDefault {
		remaining, err := s.repo.ListByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if len(remaining) > 0 {
			if err := s.repo.SetDefault(ctx, userID, remaining[0].ID); err != nil {
				return err
			}
		}
	}

	s.logger.InfoContext(ctx, "recipient deleted",
		slog.String("user_id", userID),
		slog.String("recipient_id", id),
	)
	return nil
}

func (s *RecipientService) SetDefault(ctx context.Context, userID, id string) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	return s.repo.SetDefault(ctx, userID, id)
}

// owned loads a recipient and hides other users' recipients as not found.
func (s *RecipientService) owned(ctx context.Context, userID, id string) (*domain.Recipient, error) {
	rc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rc.UserID != userID {
		return nil, apperrors.NotFound("Recipient")
	}
	return rc, nil
}
