package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dom/groupbuilder/internal/domain"
	"github.com/dom/groupbuilder/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AvailabilityService struct {
	entryRepo repository.EntryRepository
	tx        repository.Transactor
	clock     Clock
	notifier  Notifier
	log       *zap.Logger
}

func NewAvailabilityService(entryRepo repository.EntryRepository, tx repository.Transactor, opts Options) *AvailabilityService {
	opts = opts.withDefaults()
	return &AvailabilityService{
		entryRepo: entryRepo,
		tx:        tx,
		clock:     opts.Clock,
		notifier:  opts.Notifier,
		log:       opts.Logger,
	}
}

// SubmitInput is one availability submission covering one or more weekdays.
type SubmitInput struct {
	CharacterID uuid.UUID
	Weekdays    []string
	Start       string
	End         string
	Spec        string
	Keystone    string
}

// Dashboard is everything the requesting user sees on their overview.
type Dashboard struct {
	OwnEntries []*domain.Entry
	Matches    []domain.MatchRecord
	Characters []*domain.Character
}

func (s *AvailabilityService) today() datatypes.Date {
	return datatypes.Date(domain.DateOf(s.clock()))
}

// Submit stores the window for every requested weekday. A stored window of
// the same (user, character, spec, weekday) that overlaps the new one is
// overwritten in place; otherwise a new entry is created. Nothing is written
// unless every weekday succeeds.
func (s *AvailabilityService) Submit(ctx context.Context, userID uuid.UUID, input SubmitInput) ([]*domain.Entry, error) {
	if err := domain.ValidateWindow(input.Start, input.End); err != nil {
		return nil, err
	}
	if err := domain.ValidateLabel("spec", input.Spec); err != nil {
		return nil, err
	}
	if err := domain.ValidateLabel("keystone", input.Keystone); err != nil {
		return nil, err
	}
	weekdays, err := parseWeekdays(input.Weekdays)
	if err != nil {
		return nil, err
	}

	created := s.today()
	window := domain.Window{Start: input.Start, End: input.End}
	stored := make([]*domain.Entry, 0, len(weekdays))
	var inserted, replaced, absorbed int

	err = s.tx.WithinTransaction(ctx, func(r *repository.Repositories) error {
		if _, err := r.Character.GetByIDAndUserID(ctx, input.CharacterID, userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCharacterNotFound
			}
			return err
		}

		for _, wd := range weekdays {
			if err := r.Entry.LockTuple(ctx, domain.TupleKey(userID, input.CharacterID, input.Spec, wd)); err != nil {
				return fmt.Errorf("lock %s: %w", wd, err)
			}

			existing, err := r.Entry.GetByTuple(ctx, userID, input.CharacterID, input.Spec, wd)
			if err != nil {
				return err
			}

			var target *domain.Entry
			var extra []uuid.UUID
			for _, e := range existing {
				if !e.Window().OverlapsHalfOpen(window) {
					continue
				}
				if target == nil {
					target = e
				} else {
					extra = append(extra, e.ID)
				}
			}

			if target != nil {
				target.StartTime = input.Start
				target.EndTime = input.End
				target.Keystone = input.Keystone
				target.CreatedDate = created
				if err := r.Entry.Update(ctx, target); err != nil {
					return err
				}
				replaced++
			} else {
				target = &domain.Entry{
					ID:          uuid.New(),
					UserID:      userID,
					CharacterID: input.CharacterID,
					Weekday:     wd,
					StartTime:   input.Start,
					EndTime:     input.End,
					Spec:        input.Spec,
					Keystone:    input.Keystone,
					CreatedDate: created,
				}
				if err := r.Entry.Create(ctx, target); err != nil {
					return err
				}
				inserted++
			}

			// Further windows overlapping the new range are folded into it so
			// the tuple never holds two overlapping windows.
			n, err := r.Entry.DeleteByIDs(ctx, extra)
			if err != nil {
				return err
			}
			absorbed += int(n)

			stored = append(stored, target)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrCharacterNotFound) {
			s.log.Error("failed to store availability",
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
		}
		return nil, err
	}

	s.log.Info("availability stored",
		zap.String("user_id", userID.String()),
		zap.String("character_id", input.CharacterID.String()),
		zap.Int("inserted", inserted),
		zap.Int("replaced", replaced),
		zap.Int("absorbed", absorbed),
	)
	s.notifier.DashboardChanged(userID, "entries_submitted")
	return stored, nil
}

func parseWeekdays(raw []string) ([]domain.Weekday, error) {
	seen := make(map[domain.Weekday]bool, len(raw))
	weekdays := make([]domain.Weekday, 0, len(raw))
	for _, s := range raw {
		wd, err := domain.ParseWeekday(s)
		if err != nil {
			return nil, err
		}
		if !seen[wd] {
			seen[wd] = true
			weekdays = append(weekdays, wd)
		}
	}
	if len(weekdays) == 0 {
		return nil, domain.ErrNoWeekdays
	}
	return weekdays, nil
}

// DeleteEntry removes one of the user's own entries. Missing or foreign
// entries are a silent no-op.
func (s *AvailabilityService) DeleteEntry(ctx context.Context, userID, entryID uuid.UUID) error {
	n, err := s.entryRepo.DeleteOwned(ctx, entryID, userID)
	if err != nil {
		s.log.Error("failed to delete entry",
			zap.String("user_id", userID.String()),
			zap.String("entry_id", entryID.String()),
			zap.Error(err),
		)
		return err
	}
	if n > 0 {
		s.notifier.DashboardChanged(userID, "entry_deleted")
	}
	return nil
}

// Sweep deletes every entry whose weekday occurrence lies before today and
// returns how many were removed.
func (s *AvailabilityService) Sweep(ctx context.Context) (int64, error) {
	var removed int64
	err := s.tx.WithinTransaction(ctx, func(r *repository.Repositories) error {
		var err error
		removed, err = s.sweep(ctx, r)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.afterSweep(removed)
	return removed, nil
}

func (s *AvailabilityService) sweep(ctx context.Context, r *repository.Repositories) (int64, error) {
	entries, err := r.Entry.GetAll(ctx)
	if err != nil {
		return 0, err
	}

	today := domain.DateOf(s.clock())
	expired := make([]*domain.Entry, 0)
	for _, e := range entries {
		if e.IsExpired(today) {
			expired = append(expired, e)
		}
	}
	// A concurrent submit may rewrite an expired row in place before this
	// delete runs; matching on the loaded created_date leaves that row alone.
	return r.Entry.DeleteUnchanged(ctx, expired)
}

func (s *AvailabilityService) afterSweep(removed int64) {
	if removed == 0 {
		return
	}
	s.log.Info("expired entries swept", zap.Int64("removed", removed))
	s.notifier.DashboardChanged(uuid.Nil, "entries_expired")
}

// GetDashboard sweeps expired entries and then reads the user's entries,
// characters and matches, all in one transaction.
func (s *AvailabilityService) GetDashboard(ctx context.Context, userID uuid.UUID) (*Dashboard, error) {
	var dash Dashboard
	var removed int64

	err := s.tx.WithinTransaction(ctx, func(r *repository.Repositories) error {
		var err error
		if removed, err = s.sweep(ctx, r); err != nil {
			return fmt.Errorf("sweep: %w", err)
		}

		if dash.OwnEntries, err = r.Entry.GetByUserID(ctx, userID); err != nil {
			return err
		}
		if dash.Characters, err = r.Character.GetByUserID(ctx, userID); err != nil {
			return err
		}

		candidates, err := r.Entry.GetMatchCandidates(ctx, userID, domain.MatchKeys(dash.OwnEntries))
		if err != nil {
			return err
		}
		dash.Matches = domain.FindMatches(dash.OwnEntries, candidates)
		return nil
	})
	if err != nil {
		s.log.Error("failed to build dashboard",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	s.afterSweep(removed)
	return &dash, nil
}
