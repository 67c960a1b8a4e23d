package postgres

import (
	"context"

	"github.com/dom/groupbuilder/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type entryRepository struct {
	db *gorm.DB
}

func NewEntryRepository(db *gorm.DB) *entryRepository {
	return &entryRepository{db: db}
}

func (r *entryRepository) Create(ctx context.Context, entry *domain.Entry) error {
	return r.db.WithContext(ctx).Omit("User", "Character").Create(entry).Error
}

func (r *entryRepository) Update(ctx context.Context, entry *domain.Entry) error {
	return r.db.WithContext(ctx).Omit("User", "Character").Save(entry).Error
}

func (r *entryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Entry, error) {
	var entry domain.Entry
	err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *entryRepository) GetByTuple(ctx context.Context, userID, characterID uuid.UUID, spec string, weekday domain.Weekday) ([]*domain.Entry, error) {
	var entries []*domain.Entry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND character_id = ? AND spec = ? AND weekday = ?", userID, characterID, spec, weekday).
		Order("start_time").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *entryRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Entry, error) {
	var entries []*domain.Entry
	err := r.db.WithContext(ctx).
		Preload("Character").
		Where("user_id = ?", userID).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	domain.SortEntries(entries)
	return entries, nil
}

// GetMatchCandidates returns entries of other users sharing any of the given
// (weekday, keystone) keys, with owner and character loaded.
func (r *entryRepository) GetMatchCandidates(ctx context.Context, userID uuid.UUID, keys []domain.MatchKey) ([]*domain.Entry, error) {
	if len(keys) == 0 {
		return []*domain.Entry{}, nil
	}

	pairs := make([][]interface{}, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, []interface{}{string(k.Weekday), k.Keystone})
	}

	var entries []*domain.Entry
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Character").
		Where("user_id <> ?", userID).
		Where("(weekday, keystone) IN ?", pairs).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *entryRepository) GetAll(ctx context.Context) ([]*domain.Entry, error) {
	var entries []*domain.Entry
	if err := r.db.WithContext(ctx).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *entryRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Delete(&domain.Entry{}, "id IN ?", ids)
	return result.RowsAffected, result.Error
}

func (r *entryRepository) DeleteUnchanged(ctx context.Context, entries []*domain.Entry) (int64, error) {
	byDate := make(map[string][]uuid.UUID)
	for _, e := range entries {
		date := e.Created().Format(domain.DateLayout)
		byDate[date] = append(byDate[date], e.ID)
	}

	var removed int64
	for date, ids := range byDate {
		result := r.db.WithContext(ctx).Delete(&domain.Entry{}, "id IN ? AND created_date = ?", ids, date)
		if result.Error != nil {
			return removed, result.Error
		}
		removed += result.RowsAffected
	}
	return removed, nil
}

func (r *entryRepository) DeleteOwned(ctx context.Context, id, userID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&domain.Entry{}, "id = ? AND user_id = ?", id, userID)
	return result.RowsAffected, result.Error
}

func (r *entryRepository) DeleteByCharacterID(ctx context.Context, characterID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Entry{}, "character_id = ?", characterID).Error
}

func (r *entryRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Entry{}, "user_id = ?", userID).Error
}

func (r *entryRepository) LockTuple(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", key).Error
}
