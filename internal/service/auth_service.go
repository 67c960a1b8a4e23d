package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dom/groupbuilder/internal/config"
	"github.com/dom/groupbuilder/internal/domain"
	"github.com/dom/groupbuilder/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDisplayNameExists  = errors.New("display name already exists")
	ErrUserNotFound       = errors.New("user not found")
	// ErrSessionEnded rejects an access token whose session is gone or expired.
	ErrSessionEnded        = errors.New("session ended")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

const sessionLifetime = 7 * 24 * time.Hour

type AuthService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	tx          repository.Transactor
	cfg         *config.Config
	notifier    Notifier
	log         *zap.Logger
}

func NewAuthService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository, tx repository.Transactor, cfg *config.Config, opts Options) *AuthService {
	opts = opts.withDefaults()
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		tx:          tx,
		cfg:         cfg,
		notifier:    opts.Notifier,
		log:         opts.Logger,
	}
}

type RegisterInput struct {
	Password    string
	DisplayName string
}

type LoginInput struct {
	DisplayName string
	Password    string
}

type AuthResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	existing, err := s.userRepo.GetByDisplayName(ctx, input.DisplayName)
	if err == nil && existing != nil {
		return nil, ErrDisplayNameExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.New(),
		PasswordHash: string(hashedPassword),
		DisplayName:  input.DisplayName,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// A registration racing this one won the unique index.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDisplayNameExists
		}
		return nil, err
	}

	s.log.Info("user registered", zap.String("user_id", user.ID.String()))
	return s.generateTokens(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.GetByDisplayName(ctx, input.DisplayName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.generateTokens(ctx, user)
}

// issueTokens opens a new session and returns tokens bound to it. The refresh
// token is "<session id>.<secret>"; only the secret's hash is stored.
func (s *AuthService) issueTokens(ctx context.Context, sessions repository.SessionRepository, user *domain.User) (*AuthResult, error) {
	secret := uuid.New().String()
	hashedSecret, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session := &domain.UserSession{
		ID:               uuid.New(),
		UserID:           user.ID,
		RefreshTokenHash: string(hashedSecret),
		ExpiresAt:        now.Add(sessionLifetime),
		CreatedAt:        now,
	}
	if err := sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	accessToken, err := s.generateAccessToken(user, session.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: session.ID.String() + "." + secret,
	}, nil
}

func (s *AuthService) generateTokens(ctx context.Context, user *domain.User) (*AuthResult, error) {
	return s.issueTokens(ctx, s.sessionRepo, user)
}

func (s *AuthService) generateAccessToken(user *domain.User, sessionID uuid.UUID) (string, error) {
	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"sid":  sessionID.String(),
		"name": user.DisplayName,
		"exp":  time.Now().Add(time.Duration(s.cfg.JWTExpirationHours) * time.Hour).Unix(),
		"iat":  time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// RefreshTokens trades a refresh token for a fresh pair. The presented
// session is consumed, so each refresh token works once.
func (s *AuthService) RefreshTokens(ctx context.Context, refreshToken string) (*AuthResult, error) {
	rawID, secret, ok := strings.Cut(refreshToken, ".")
	if !ok {
		return nil, ErrInvalidRefreshToken
	}
	sessionID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	var result *AuthResult
	err = s.tx.WithinTransaction(ctx, func(r *repository.Repositories) error {
		session, err := r.Session.GetByID(ctx, sessionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidRefreshToken
			}
			return err
		}
		if !session.ExpiresAt.After(time.Now()) {
			return ErrInvalidRefreshToken
		}
		if err := bcrypt.CompareHashAndPassword([]byte(session.RefreshTokenHash), []byte(secret)); err != nil {
			return ErrInvalidRefreshToken
		}

		user, err := r.User.GetByID(ctx, session.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidRefreshToken
			}
			return err
		}

		claimed, err := r.Session.Delete(ctx, session.ID)
		if err != nil {
			return err
		}
		if claimed == 0 {
			// Another refresh consumed it first.
			return ErrInvalidRefreshToken
		}

		result, err = s.issueTokens(ctx, r.Session, user)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("session rotated", zap.String("user_id", result.User.ID.String()))
	return result, nil
}

func (s *AuthService) ValidateToken(tokenString string) (*jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.JWTSecret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return &claims, nil
	}

	return nil, errors.New("invalid token")
}

// Authenticate verifies an access token and that its session is still open,
// returning the user and session it belongs to.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (uuid.UUID, uuid.UUID, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	userID, err := uuidClaim(*claims, "sub")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	sessionID, err := uuidClaim(*claims, "sid")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, uuid.Nil, ErrSessionEnded
		}
		return uuid.Nil, uuid.Nil, err
	}
	if session.UserID != userID || !session.ExpiresAt.After(time.Now()) {
		return uuid.Nil, uuid.Nil, ErrSessionEnded
	}
	return userID, sessionID, nil
}

func uuidClaim(claims jwt.MapClaims, name string) (uuid.UUID, error) {
	raw, ok := claims[name].(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("missing '%s' claim", name)
	}
	return uuid.Parse(raw)
}

func (s *AuthService) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// Logout ends one session; its access and refresh tokens stop working.
func (s *AuthService) Logout(ctx context.Context, sessionID uuid.UUID) error {
	_, err := s.sessionRepo.Delete(ctx, sessionID)
	return err
}

// DeleteAccount removes the user together with everything it owns, in
// dependency order: entries, characters, sessions, then the user row.
// Deleting an account that no longer exists is a no-op.
func (s *AuthService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	err := s.tx.WithinTransaction(ctx, func(r *repository.Repositories) error {
		if err := r.Entry.DeleteByUserID(ctx, userID); err != nil {
			return err
		}
		if err := r.Character.DeleteByUserID(ctx, userID); err != nil {
			return err
		}
		if err := r.Session.DeleteByUserID(ctx, userID); err != nil {
			return err
		}
		return r.User.Delete(ctx, userID)
	})
	if err != nil {
		s.log.Error("failed to delete account", zap.String("user_id", userID.String()), zap.Error(err))
		return err
	}

	s.log.Info("account deleted", zap.String("user_id", userID.String()))
	s.notifier.DashboardChanged(userID, "account_deleted")
	return nil
}

// PruneSessions drops every session whose refresh window has closed.
func (s *AuthService) PruneSessions(ctx context.Context, now time.Time) (int64, error) {
	removed, err := s.sessionRepo.DeleteExpired(ctx, now)
	if err != nil {
		s.log.Error("failed to prune sessions", zap.Error(err))
		return 0, err
	}
	if removed > 0 {
		s.log.Info("expired sessions pruned", zap.Int64("removed", removed))
	}
	return removed, nil
}
