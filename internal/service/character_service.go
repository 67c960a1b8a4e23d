package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dom/groupbuilder/internal/domain"
	"github.com/dom/groupbuilder/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxCharacterNameLength = 64

var (
	ErrInvalidCharacterName = errors.New("character name must be 1-64 characters")
	ErrCharacterNotFound    = errors.New("character not found")
)

type CharacterService struct {
	characterRepo repository.CharacterRepository
	tx            repository.Transactor
	notifier      Notifier
	log           *zap.Logger
}

func NewCharacterService(characterRepo repository.CharacterRepository, tx repository.Transactor, opts Options) *CharacterService {
	opts = opts.withDefaults()
	return &CharacterService{
		characterRepo: characterRepo,
		tx:            tx,
		notifier:      opts.Notifier,
		log:           opts.Logger,
	}
}

func (s *CharacterService) AddCharacter(ctx context.Context, userID uuid.UUID, name string) (*domain.Character, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxCharacterNameLength {
		return nil, ErrInvalidCharacterName
	}

	character := &domain.Character{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		CreatedAt: time.Now(),
	}
	if err := s.characterRepo.Create(ctx, character); err != nil {
		return nil, err
	}

	s.log.Info("character added",
		zap.String("user_id", userID.String()),
		zap.String("character_id", character.ID.String()),
	)
	return character, nil
}

func (s *CharacterService) ListCharacters(ctx context.Context, userID uuid.UUID) ([]*domain.Character, error) {
	return s.characterRepo.GetByUserID(ctx, userID)
}

// DeleteCharacter removes a character and its entries. Missing or foreign
// characters are a silent no-op.
func (s *CharacterService) DeleteCharacter(ctx context.Context, userID, characterID uuid.UUID) error {
	deleted := false
	err := s.tx.WithinTransaction(ctx, func(r *repository.Repositories) error {
		if _, err := r.Character.GetByIDAndUserID(ctx, characterID, userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if err := r.Entry.DeleteByCharacterID(ctx, characterID); err != nil {
			return err
		}
		if err := r.Character.Delete(ctx, characterID); err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if err != nil {
		s.log.Error("failed to delete character",
			zap.String("user_id", userID.String()),
			zap.String("character_id", characterID.String()),
			zap.Error(err),
		)
		return err
	}

	if deleted {
		s.log.Info("character deleted",
			zap.String("user_id", userID.String()),
			zap.String("character_id", characterID.String()),
		)
		s.notifier.DashboardChanged(userID, "character_deleted")
	}
	return nil
}
