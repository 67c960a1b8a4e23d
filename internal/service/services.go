package service

import (
	"time"

	"github.com/dom/groupbuilder/internal/config"
	"github.com/dom/groupbuilder/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Services struct {
	Auth         *AuthService
	Character    *CharacterService
	Availability *AvailabilityService
}

// Clock returns the current time. Services derive "today" from it.
type Clock func() time.Time

// Notifier is told when stored windows changed so connected dashboards can
// refresh. userID is the actor, or uuid.Nil for system sweeps.
type Notifier interface {
	DashboardChanged(userID uuid.UUID, reason string)
}

type nopNotifier struct{}

func (nopNotifier) DashboardChanged(uuid.UUID, string) {}

type Options struct {
	Clock    Clock
	Notifier Notifier
	Logger   *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Clock == nil {
		o.Clock = time.Now
	}
	if o.Notifier == nil {
		o.Notifier = nopNotifier{}
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

func NewServices(repos *repository.Repositories, cfg *config.Config, opts Options) *Services {
	opts = opts.withDefaults()
	return &Services{
		Auth:         NewAuthService(repos.User, repos.Session, repos.Tx, cfg, opts),
		Character:    NewCharacterService(repos.Character, repos.Tx, opts),
		Availability: NewAvailabilityService(repos.Entry, repos.Tx, opts),
	}
}
