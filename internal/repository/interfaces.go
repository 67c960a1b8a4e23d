package repository

import (
	"context"
	"time"

	"github.com/dom/groupbuilder/internal/domain"
	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByDisplayName(ctx context.Context, displayName string) (*domain.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *domain.UserSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.UserSession, error)
	// Delete reports how many sessions it removed so a refresh can claim a
	// session exactly once.
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type CharacterRepository interface {
	Create(ctx context.Context, character *domain.Character) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Character, error)
	GetByIDAndUserID(ctx context.Context, id, userID uuid.UUID) (*domain.Character, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Character, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}

type EntryRepository interface {
	Create(ctx context.Context, entry *domain.Entry) error
	Update(ctx context.Context, entry *domain.Entry) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Entry, error)
	GetByTuple(ctx context.Context, userID, characterID uuid.UUID, spec string, weekday domain.Weekday) ([]*domain.Entry, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Entry, error)
	GetMatchCandidates(ctx context.Context, userID uuid.UUID, keys []domain.MatchKey) ([]*domain.Entry, error)
	GetAll(ctx context.Context) ([]*domain.Entry, error)
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error)
	// DeleteUnchanged removes the given entries only where their created_date
	// still matches the loaded value; rows rewritten since the read survive.
	DeleteUnchanged(ctx context.Context, entries []*domain.Entry) (int64, error)
	DeleteOwned(ctx context.Context, id, userID uuid.UUID) (int64, error)
	DeleteByCharacterID(ctx context.Context, characterID uuid.UUID) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
	// LockTuple serializes reconcile-or-insert for one tuple key until the
	// surrounding transaction ends.
	LockTuple(ctx context.Context, key string) error
}

// Transactor runs fn against repositories bound to a single transaction.
// Returning an error from fn rolls everything back.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(repos *Repositories) error) error
}

type Repositories struct {
	User      UserRepository
	Session   SessionRepository
	Character CharacterRepository
	Entry     EntryRepository
	Tx        Transactor
}
