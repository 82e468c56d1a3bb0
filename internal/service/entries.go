package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/atinyakov/HydroPal/internal/metrics"
	"github.com/atinyakov/HydroPal/internal/models"
	"github.com/atinyakov/HydroPal/internal/repository"
	"github.com/atinyakov/HydroPal/internal/validation"
	"github.com/google/uuid"
)

// EntryRepository defines the persistence operations needed by the EntryService.
type EntryRepository interface {
	// CreateEntry stores e and fills in its timestamps.
	CreateEntry(ctx context.Context, e *models.Entry) error
	// ListEntries returns the user's entries newest first, optionally filtered by type.
	ListEntries(ctx context.Context, userID string, logType models.LogType) ([]models.Entry, error)
	// GetEntry fetches an entry; a non-empty ownerID restricts it to that owner.
	GetEntry(ctx context.Context, id, ownerID string) (*models.Entry, error)
	// UpdateEntryData replaces the payload of an entry owned by ownerID.
	UpdateEntryData(ctx context.Context, id, ownerID string, data models.Data, amount float64) (*models.Entry, error)
	// DeleteEntry removes an entry; a non-empty ownerID restricts it to that owner.
	DeleteEntry(ctx context.Context, id, ownerID string) error
}

// EntryService implements CRUD over tracking entries scoped by ownership and role.
type EntryService struct {
	// repo is the underlying persistence repository.
	repo EntryRepository
}

// NewEntryService constructs an EntryService with the provided EntryRepository.
func NewEntryService(repo EntryRepository) *EntryService {
	return &EntryService{repo: repo}
}

// validateEntry checks logType and the payload rules for that type, and
// fills in defaults. It returns the normalized payload.
func validateEntry(logType models.LogType, data models.Data) (models.Data, error) {
	if !logType.Valid() {
		return data, invalid("logType", "logType must be one of [water plastic]")
	}
	if verr := validation.ValidateStruct(&data); verr != nil {
		return data, invalidFields("data", verr)
	}
	if logType == models.Water {
		if len(data.Items) > 0 {
			return data, invalid("data.items", "data.items is only allowed for plastic entries")
		}
		if data.Unit == "" {
			data.Unit = models.Millilitre
		}
		if ml := data.Quantity(logType); !(ml <= MaxWaterAmount) {
			return data, invalid("data.amount", fmt.Sprintf("data.amount must not exceed %d ml", MaxWaterAmount))
		}
	}
	return data, nil
}

// ownerFilter is the owner restriction applied for actor: none for admins.
func ownerFilter(actor models.Identity) string {
	if actor.IsAdmin() {
		return ""
	}
	return actor.UserID
}

// List returns the actor's own entries, newest first. An empty logType lists every type.
func (s *EntryService) List(ctx context.Context, actor models.Identity, logType models.LogType) ([]models.Entry, error) {
	if logType != "" && !logType.Valid() {
		return nil, invalid("type", "type must be one of [water plastic]")
	}
	entries, err := s.repo.ListEntries(ctx, actor.UserID, logType)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

// Get returns entry id if the actor owns it or is an admin.
func (s *EntryService) Get(ctx context.Context, actor models.Identity, id string) (*models.Entry, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	e, err := s.repo.GetEntry(ctx, id, ownerFilter(actor))
	if err != nil {
		return nil, notFound(err, "get entry")
	}
	return e, nil
}

// Create stores a new entry owned by the actor.
func (s *EntryService) Create(ctx context.Context, actor models.Identity, logType models.LogType, data models.Data) (*models.CreatedEntry, error) {
	data, err := validateEntry(logType, data)
	if err != nil {
		return nil, err
	}

	e := &models.Entry{
		ID:      uuid.NewString(),
		UserID:  actor.UserID,
		LogType: logType,
		Data:    data,
		Amount:  data.Quantity(logType),
	}
	if err := s.repo.CreateEntry(ctx, e); err != nil {
		return nil, fmt.Errorf("create entry: %w", err)
	}
	metrics.RecordEntryCreated(e.LogType, e.Amount)

	return &models.CreatedEntry{
		ID:     e.ID,
		Type:   e.LogType,
		Amount: e.Data.AmountValue(),
		Date:   e.CreatedAt,
	}, nil
}

// Update replaces the payload of an entry owned by the actor. Admins get no
// override here: only owners update.
func (s *EntryService) Update(ctx context.Context, actor models.Identity, id string, data models.Data) (*models.Entry, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	current, err := s.repo.GetEntry(ctx, id, actor.UserID)
	if err != nil {
		return nil, notFound(err, "get entry")
	}

	data, err = validateEntry(current.LogType, data)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateEntryData(ctx, id, actor.UserID, data, data.Quantity(current.LogType))
	if err != nil {
		return nil, notFound(err, "update entry")
	}
	return updated, nil
}

// Delete removes entry id if the actor owns it or is an admin.
func (s *EntryService) Delete(ctx context.Context, actor models.Identity, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	if err := s.repo.DeleteEntry(ctx, id, ownerFilter(actor)); err != nil {
		return notFound(err, "delete entry")
	}
	return nil
}

// notFound maps repository.ErrNotFound to ErrNotFound and wraps anything else with op.
func notFound(err error, op string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
