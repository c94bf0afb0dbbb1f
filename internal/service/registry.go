package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"unicode/utf8"

	"cookstove_tracker/internal/models"
	"cookstove_tracker/internal/repository"

	"github.com/google/uuid"
)

const (
	maxStoveIDLen   = 50
	maxModelLen     = 100
	pairingCodeLen  = 6
	pairingAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// RegistryService owns the stove lifecycle: registration, pairing and API key lookup.
type RegistryService struct {
	stoves   repository.StoveRepo
	activity activityRecorder
	newCode  func() string
	newKey   func() string
}

func NewRegistryService(stoves repository.StoveRepo, activity activityRecorder) *RegistryService {
	return &RegistryService{
		stoves:   stoves,
		activity: activity,
		newCode:  PairingCode,
		newKey:   uuid.NewString,
	}
}

// PairingCode returns a fresh 6 character code over A-Z0-9.
func PairingCode() string {
	b := make([]byte, pairingCodeLen)
	for i := range b {
		b[i] = pairingAlphabet[rand.IntN(len(pairingAlphabet))]
	}
	return string(b)
}

// RegisterStove creates an unpaired stove and returns it with its plaintext pairing code.
func (s *RegistryService) RegisterStove(ctx context.Context, stoveID, model string) (models.Stove, error) {
	stoveID = strings.TrimSpace(stoveID)
	model = strings.TrimSpace(model)
	if stoveID == "" || model == "" {
		return models.Stove{}, newError(ErrValidation, "stoveId and model are required")
	}
	if utf8.RuneCountInString(stoveID) > maxStoveIDLen {
		return models.Stove{}, newError(ErrValidation, "stoveId must be at most %d characters", maxStoveIDLen)
	}
	if utf8.RuneCountInString(model) > maxModelLen {
		return models.Stove{}, newError(ErrValidation, "model must be at most %d characters", maxModelLen)
	}

	_, err := s.stoves.GetByStoveID(ctx, stoveID)
	switch {
	case err == nil:
		return models.Stove{}, newError(ErrConflict, "stove already registered")
	case !errors.Is(err, repository.ErrNotFound):
		return models.Stove{}, err
	}

	stove, err := s.stoves.Create(ctx, stoveID, model, s.newCode())
	if errors.Is(err, repository.ErrDuplicate) {
		return models.Stove{}, newError(ErrConflict, "stove already registered")
	}
	if err != nil {
		return models.Stove{}, err
	}

	s.activity.Record(ctx, models.ActivityEvent{
		OccurredAt:  stove.CreatedAt,
		Type:        models.EventStoveRegistered,
		StoveID:     stove.StoveID,
		Description: fmt.Sprintf("Stove %s registered", stove.StoveID),
		Metadata:    map[string]any{"model": stove.Model},
	})
	return stove, nil
}

// PairStove binds an unpaired stove to userID and mints its API key.
// The code must match exactly.
func (s *RegistryService) PairStove(ctx context.Context, stoveID, code string, userID int) (models.PairedStove, error) {
	stoveID = strings.TrimSpace(stoveID)
	if stoveID == "" || strings.TrimSpace(code) == "" {
		return models.PairedStove{}, newError(ErrValidation, "stoveId and pairingCode are required")
	}

	stove, err := s.stoves.GetByPairing(ctx, stoveID, code)
	if errors.Is(err, repository.ErrNotFound) {
		return models.PairedStove{}, newError(ErrNotFound, "invalid stove ID or pairing code")
	}
	if err != nil {
		return models.PairedStove{}, err
	}
	if stove.Status != models.StoveStatusUnpaired {
		return models.PairedStove{}, newError(ErrConflict, "stove already paired")
	}

	apiKey := s.newKey()
	ok, err := s.stoves.Pair(ctx, stoveID, code, userID, apiKey)
	if err != nil {
		return models.PairedStove{}, err
	}
	if !ok {
		return models.PairedStove{}, newError(ErrConflict, "stove already paired")
	}

	s.activity.Record(ctx, models.ActivityEvent{
		Type:        models.EventStovePaired,
		StoveID:     stove.StoveID,
		Description: fmt.Sprintf("Stove %s paired to user %d", stove.StoveID, userID),
		Metadata:    map[string]any{"userId": userID},
	})
	return models.PairedStove{StoveID: stove.StoveID, Model: stove.Model, APIKey: apiKey}, nil
}

func (s *RegistryService) ListUserStoves(ctx context.Context, userID int) ([]models.Stove, error) {
	return s.stoves.ListByOwner(ctx, userID, true)
}

// GetStove returns a registered stove, paired or not.
func (s *RegistryService) GetStove(ctx context.Context, stoveID string) (models.Stove, error) {
	stoveID = strings.TrimSpace(stoveID)
	if stoveID == "" {
		return models.Stove{}, newError(ErrValidation, "stoveId is required")
	}
	stove, err := s.stoves.GetByStoveID(ctx, stoveID)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Stove{}, newError(ErrNotFound, "stove not found")
	}
	return stove, err
}

// ResolveAPIKey returns the paired stove holding key.
func (s *RegistryService) ResolveAPIKey(ctx context.Context, key string) (models.Stove, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return models.Stove{}, newError(ErrUnauthorized, "invalid API key")
	}
	stove, err := s.stoves.GetPairedByAPIKey(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Stove{}, newError(ErrUnauthorized, "invalid API key")
	}
	return stove, err
}
