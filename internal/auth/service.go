package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/karimelbaz/sallati-backend/internal/session"
	pkgauth "github.com/karimelbaz/sallati-backend/pkg/auth"
	authsession "github.com/karimelbaz/sallati-backend/pkg/auth/session"
	"github.com/karimelbaz/sallati-backend/pkg/config"
	"github.com/karimelbaz/sallati-backend/pkg/db/models"
	"github.com/karimelbaz/sallati-backend/pkg/enums"
	pkgerrors "github.com/karimelbaz/sallati-backend/pkg/errors"
	"github.com/karimelbaz/sallati-backend/pkg/logger"
	"github.com/karimelbaz/sallati-backend/pkg/security"
)

type userRepo interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type refreshSessions interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

type sessionPublisher interface {
	Publish(sess *session.Session)
}

// TokenPair is what clients receive on sign-in, registration, and refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// RegisterInput carries validated registration fields.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Phone    *string
	Locale   string
}

// Service implements email/password authentication and token lifecycle.
type Service struct {
	users     userRepo
	sessions  refreshSessions
	publisher sessionPublisher
	jwtCfg    config.JWTConfig
	pwCfg     config.PasswordConfig
	logg      *logger.Logger
	now       func() time.Time
}

func NewService(users userRepo, sessions refreshSessions, publisher sessionPublisher, jwtCfg config.JWTConfig, pwCfg config.PasswordConfig, logg *logger.Logger) *Service {
	return &Service{
		users:     users,
		sessions:  sessions,
		publisher: publisher,
		jwtCfg:    jwtCfg,
		pwCfg:     pwCfg,
		logg:      logg,
		now:       time.Now,
	}
}

// Register creates a customer account and signs it in.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*models.User, *TokenPair, error) {
	email := normalizeEmail(input.Email)

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		return nil, nil, err
	}

	hash, err := security.HashPassword(input.Password, s.pwCfg)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}

	locale := input.Locale
	if locale == "" {
		locale = "en"
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(input.FullName),
		Phone:        input.Phone,
		Role:         enums.UserRoleCustomer,
		Locale:       locale,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	pair, err := s.issue(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.logg.Info(s.logg.WithUserID(ctx, user.ID.String()), "user registered")
	return user, pair, nil
}

// Login verifies credentials and issues a token pair.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			return nil, nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, nil, err
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verifying password")
	}
	if !ok {
		return nil, nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	pair, err := s.issue(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.logg.Info(s.logg.WithUserID(ctx, user.ID.String()), "user logged in")
	return user, pair, nil
}

// Refresh rotates the refresh token and mints a fresh access token.
func (s *Service) Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenPair, error) {
	claims, err := pkgauth.ParseAccessTokenAllowExpired(s.jwtCfg, accessToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid access token")
	}

	newAccessID, newRefresh, err := s.sessions.Rotate(ctx, claims.ID, refreshToken)
	if err != nil {
		if errors.Is(err, authsession.ErrInvalidRefreshToken) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotating refresh session")
	}

	// re-read the account so a role change lands on the next token
	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	signed, err := pkgauth.MintAccessToken(s.jwtCfg, s.now(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		JTI:    newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting access token")
	}

	pair := &TokenPair{AccessToken: signed, RefreshToken: newRefresh}
	s.publish(user, signed)
	return pair, nil
}

// Logout revokes the refresh session for the token's access id and signals
// sign-out to session subscribers.
func (s *Service) Logout(ctx context.Context, accessID string) error {
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoking session")
	}
	if s.publisher != nil {
		s.publisher.Publish(nil)
	}
	return nil
}

func (s *Service) issue(ctx context.Context, user *models.User) (*TokenPair, error) {
	accessID := authsession.NewAccessID()

	signed, err := pkgauth.MintAccessToken(s.jwtCfg, s.now(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		JTI:    accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting access token")
	}

	refresh, err := s.sessions.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating refresh session")
	}

	s.publish(user, signed)
	return &TokenPair{AccessToken: signed, RefreshToken: refresh}, nil
}

func (s *Service) publish(user *models.User, accessToken string) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(&session.Session{
		AccessToken: accessToken,
		User: &session.User{
			ID:    user.ID,
			Email: user.Email,
		},
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
