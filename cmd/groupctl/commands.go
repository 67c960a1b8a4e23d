package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dom/groupbuilder/internal/logger"
	"github.com/dom/groupbuilder/internal/repository"
	"github.com/dom/groupbuilder/internal/repository/postgres"
	"github.com/dom/groupbuilder/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

type app struct {
	db    *gorm.DB
	repos *repository.Repositories
	log   *zap.Logger
}

func newApp(databaseURL, logLevel string) (*app, error) {
	log, err := logger.New(logLevel)
	if err != nil {
		return nil, err
	}
	db, err := postgres.NewConnection(databaseURL, gormLogger.Warn)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return &app{db: db, repos: postgres.NewRepositories(db), log: log}, nil
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(a *app) error {
	// AutoMigrate is idempotent; opening the connection has already run it once.
	if err := postgres.Migrate(a.db); err != nil {
		return err
	}
	fmt.Println("schema up to date")
	return nil
}

type SweepCmd struct {
	Today   string        `help:"Evaluate expiry as of this date (YYYY-MM-DD). Defaults to the current date."`
	Timeout time.Duration `help:"Give up after this long." default:"30s"`
}

func (c *SweepCmd) Run(a *app) error {
	clock := service.Clock(time.Now)
	if c.Today != "" {
		t, err := time.Parse("2006-01-02", c.Today)
		if err != nil {
			return fmt.Errorf("invalid --today: %w", err)
		}
		clock = func() time.Time { return t }
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()

	svc := service.NewAvailabilityService(a.repos.Entry, a.repos.Tx, service.Options{Clock: clock, Logger: a.log})
	removed, err := svc.Sweep(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("removed %d expired entries\n", removed)

	auth := service.NewAuthService(a.repos.User, a.repos.Session, a.repos.Tx, nil, service.Options{Logger: a.log})
	pruned, err := auth.PruneSessions(ctx, clock())
	if err != nil {
		return err
	}
	fmt.Printf("removed %d expired sessions\n", pruned)
	return nil
}

type DeleteUserCmd struct {
	Name string `arg:"" help:"Display name of the user to delete."`
}

func (c *DeleteUserCmd) Run(a *app) error {
	ctx := context.Background()
	user, err := a.repos.User.GetByDisplayName(ctx, c.Name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("no user named %q", c.Name)
		}
		return err
	}

	// Tokens are never issued from here, so the auth config stays empty.
	auth := service.NewAuthService(a.repos.User, a.repos.Session, a.repos.Tx, nil, service.Options{Logger: a.log})
	if err := auth.DeleteAccount(ctx, user.ID); err != nil {
		return err
	}
	fmt.Printf("deleted user %s (%s)\n", c.Name, user.ID)
	return nil
}
