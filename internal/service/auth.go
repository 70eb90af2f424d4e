package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/idea_drop/internal/events"
	"github.com/Skotchmaster/idea_drop/internal/logging"
	"github.com/Skotchmaster/idea_drop/internal/models"
	"github.com/Skotchmaster/idea_drop/internal/repo"
	"github.com/Skotchmaster/idea_drop/internal/tokens"
)

const publishTimeout = 5 * time.Second

type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	CreateUser(ctx context.Context, name, email, password string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
}

type TokenManager interface {
	Issue(userID string, ttl time.Duration) (tokens.Issued, error)
	Verify(token string) (*tokens.Claims, error)
}

// AuthService holds no per-request state; one value serves all requests.
//
// The refresh path issues access tokens with the same AccessTTL as login and
// register, and does not rotate the refresh token.
type AuthService struct {
	Repo       UserStore
	Tokens     TokenManager
	Events     events.Publisher
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
	User         *models.User
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if err := in.Validate(); err != nil {
		l.Warn("register_failed", "status", 400, "reason", "validation", "error", err)
		return nil, validationError(err)
	}

	if _, err := s.Repo.FindByEmail(ctx, in.Email); err == nil {
		l.Warn("register_failed", "status", 400, "reason", "user_exists")
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, repo.ErrUserNotFound) {
		l.Error("register_failed", "status", 500, "reason", "db_error", "error", err)
		return nil, err
	}

	user, err := s.Repo.CreateUser(ctx, in.Name, in.Email, in.Password)
	if err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			l.Warn("register_failed", "status", 400, "reason", "user_exists")
			return nil, ErrDuplicateEmail
		}
		l.Error("register_failed", "status", 500, "reason", "db_error", "error", err)
		return nil, err
	}

	res, err := s.issuePair(user)
	if err != nil {
		l.Error("register_failed", "status", 500, "reason", "cannot create token", "error", err)
		return nil, err
	}

	s.publish(ctx, events.UserRegistered, user.ID)
	l.Info("register_success", "user_id", user.ID)
	return res, nil
}

// Login fails with ErrInvalidCredentials whether the email is unknown or the
// password is wrong; both branches do the same bcrypt work.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	if err := in.Validate(); err != nil {
		l.Warn("login_failed", "status", 400, "reason", "validation", "error", err)
		return nil, validationError(err)
	}

	user, err := s.Repo.FindByEmail(ctx, in.Email)
	if err != nil && !errors.Is(err, repo.ErrUserNotFound) {
		l.Error("login_failed", "status", 500, "reason", "db_error", "error", err)
		return nil, err
	}

	if !s.Repo.VerifyPassword(user, in.Password) {
		l.Warn("login_failed", "status", 401, "reason", "invalid credentials")
		return nil, ErrInvalidCredentials
	}

	res, err := s.issuePair(user)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot create token", "error", err)
		return nil, err
	}

	s.publish(ctx, events.UserLoggedIn, user.ID)
	l.Info("login_successful", "user_id", user.ID)
	return res, nil
}

// Refresh exchanges a refresh token for a new access token. RefreshToken in the
// result is always empty.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	user, err := s.Authenticate(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	access, err := s.Tokens.Issue(user.ID.String(), s.AccessTTL)
	if err != nil {
		l.Error("refresh_failed", "status", 500, "reason", "cannot create token", "error", err)
		return nil, err
	}

	l.Info("refresh_successful", "user_id", user.ID)
	return &LoginResult{
		AccessToken: access.Value,
		AccessExp:   access.ExpiresAt,
		User:        user,
	}, nil
}

// Authenticate resolves a bearer token to its user. Every failure, including a
// valid token for a user that no longer exists, is ErrUnauthenticated; store
// outages are returned as is.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.authenticate")

	if token == "" {
		l.Info("auth_failed", "status", 401, "reason", "missing token")
		return nil, ErrUnauthenticated
	}

	claims, err := s.Tokens.Verify(token)
	if err != nil {
		l.Info("auth_failed", "status", 401, "reason", err.Error())
		return nil, ErrUnauthenticated
	}

	return s.CurrentUser(ctx, claims.UserID())
}

func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.current_user")

	id, err := uuid.Parse(userID)
	if err != nil {
		l.Info("auth_failed", "status", 401, "reason", "bad subject")
		return nil, ErrUnauthenticated
	}

	user, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			l.Info("auth_failed", "status", 401, "reason", "unknown subject")
			return nil, ErrUnauthenticated
		}
		l.Error("auth_failed", "status", 500, "reason", "db_error", "error", err)
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issuePair(user *models.User) (*LoginResult, error) {
	access, err := s.Tokens.Issue(user.ID.String(), s.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.Tokens.Issue(user.ID.String(), s.RefreshTTL)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken:  access.Value,
		RefreshToken: refresh.Value,
		AccessExp:    access.ExpiresAt,
		RefreshExp:   refresh.ExpiresAt,
		User:         user,
	}, nil
}

func (s *AuthService) publish(ctx context.Context, typ string, userID uuid.UUID) {
	if s.Events == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	event := events.UserEvent{
		Type:       typ,
		UserID:     userID.String(),
		OccurredAt: time.Now().UTC(),
	}
	if err := s.Events.PublishEvent(ctx, userID.String(), event); err != nil {
		logging.FromContext(ctx).Error("kafka publish error", "type", typ, "error", err)
	}
}
