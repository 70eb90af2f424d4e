package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/idea_drop/internal/events"
	"github.com/Skotchmaster/idea_drop/internal/models"
	"github.com/Skotchmaster/idea_drop/internal/repo"
	"github.com/Skotchmaster/idea_drop/internal/testutil"
	"github.com/Skotchmaster/idea_drop/internal/tokens"
)

const (
	accessTTL  = 15 * time.Minute
	refreshTTL = 30 * 24 * time.Hour
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.UserEvent
	err    error
}

func (p *recordingPublisher) PublishEvent(_ context.Context, _ string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := event.(events.UserEvent); ok {
		p.events = append(p.events, e)
	}
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type testEnv struct {
	svc    *AuthService
	repo   *repo.GormRepo
	tokens *tokens.Manager
	events *recordingPublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tm, err := tokens.NewManager([]byte("test-jwt-secret"))
	require.NoError(t, err)

	rp := repo.New(testutil.NewDB(t))
	pub := &recordingPublisher{}

	return &testEnv{
		svc: &AuthService{
			Repo:       rp,
			Tokens:     tm,
			Events:     pub,
			AccessTTL:  accessTTL,
			RefreshTTL: refreshTTL,
		},
		repo:   rp,
		tokens: tm,
		events: pub,
	}
}

var ann = RegisterInput{Name: "Ann", Email: "a@x.com", Password: "secret1"}

func TestAuthService_RegisterThenLogin_SubjectIsUserID(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	reg, err := env.svc.Register(ctx, ann)
	require.NoError(t, err)
	require.NotNil(t, reg.User)
	require.NotEmpty(t, reg.AccessToken)
	require.NotEmpty(t, reg.RefreshToken)
	assert.WithinDuration(t, time.Now().Add(accessTTL), reg.AccessExp, 5*time.Second)
	assert.WithinDuration(t, time.Now().Add(refreshTTL), reg.RefreshExp, 5*time.Second)

	login, err := env.svc.Login(ctx, LoginInput{Email: ann.Email, Password: ann.Password})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)

	for _, raw := range []string{reg.AccessToken, reg.RefreshToken, login.AccessToken, login.RefreshToken} {
		claims, err := env.tokens.Verify(raw)
		require.NoError(t, err)
		assert.Equal(t, reg.User.ID.String(), claims.UserID())
	}

	assert.Equal(t, []string{events.UserRegistered, events.UserLoggedIn}, env.events.types())
}

func TestAuthService_Register_Validation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name  string
		in    RegisterInput
		field string
	}{
		{name: "empty name", in: RegisterInput{Email: "a@x.com", Password: "secret1"}, field: "name"},
		{name: "empty email", in: RegisterInput{Name: "Ann", Password: "secret1"}, field: "email"},
		{name: "bad email", in: RegisterInput{Name: "Ann", Email: "not-an-email", Password: "secret1"}, field: "email"},
		{name: "empty password", in: RegisterInput{Name: "Ann", Email: "a@x.com"}, field: "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := env.svc.Register(context.Background(), tt.in)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, ErrValidation)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Register(ctx, ann)
	require.NoError(t, err)

	res, err := env.svc.Register(ctx, RegisterInput{Name: "Ann 2", Email: ann.Email, Password: "other-pass"})
	require.ErrorIs(t, err, ErrDuplicateEmail)
	assert.Nil(t, res)

	var count int64
	require.NoError(t, env.repo.DB.Model(&models.User{}).Where("email = ?", ann.Email).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestAuthService_Login_Validation(t *testing.T) {
	env := newTestEnv(t)

	for _, in := range []LoginInput{{Password: "secret1"}, {Email: "a@x.com"}, {}} {
		res, err := env.svc.Login(context.Background(), in)
		require.ErrorIs(t, err, ErrValidation)
		assert.Nil(t, res)
	}
}

func TestAuthService_Login_UnknownEmailAndWrongPasswordAreIndistinguishable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Register(ctx, ann)
	require.NoError(t, err)

	_, wrongPass := env.svc.Login(ctx, LoginInput{Email: ann.Email, Password: "wrong"})
	_, noUser := env.svc.Login(ctx, LoginInput{Email: "nouser@x.com", Password: "whatever"})

	require.ErrorIs(t, wrongPass, ErrInvalidCredentials)
	require.ErrorIs(t, noUser, ErrInvalidCredentials)
	assert.Equal(t, wrongPass, noUser)
	assert.Equal(t, wrongPass.Error(), noUser.Error())
}

func TestAuthService_Refresh_IssuesAccessTokenOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	reg, err := env.svc.Register(ctx, ann)
	require.NoError(t, err)

	res, err := env.svc.Refresh(ctx, reg.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Empty(t, res.RefreshToken)
	assert.Equal(t, reg.User.ID, res.User.ID)
	assert.WithinDuration(t, time.Now().Add(accessTTL), res.AccessExp, 5*time.Second)

	claims, err := env.tokens.Verify(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID.String(), claims.UserID())
}

func TestAuthService_Refresh_FailuresAreUniform(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	reg, err := env.svc.Register(ctx, ann)
	require.NoError(t, err)

	past, err := tokens.NewManager([]byte("test-jwt-secret"), tokens.WithClock(func() time.Time {
		return time.Now().Add(-2 * refreshTTL)
	}))
	require.NoError(t, err)
	expired, err := past.Issue(reg.User.ID.String(), refreshTTL)
	require.NoError(t, err)

	otherSecret, err := tokens.NewManager([]byte("another-secret"))
	require.NoError(t, err)
	forged, err := otherSecret.Issue(reg.User.ID.String(), refreshTTL)
	require.NoError(t, err)

	ghost, err := env.tokens.Issue(uuid.NewString(), refreshTTL)
	require.NoError(t, err)

	notUUID, err := env.tokens.Issue("not-a-uuid", refreshTTL)
	require.NoError(t, err)

	cases := map[string]string{
		"empty":        "",
		"malformed":    "not-a-valid-jwt",
		"expired":      expired.Value,
		"wrong secret": forged.Value,
		"unknown user": ghost.Value,
		"bad subject":  notUUID.Value,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			res, err := env.svc.Refresh(ctx, raw)
			assert.Nil(t, res)
			assert.Equal(t, ErrUnauthenticated, err)
		})
	}
}

func TestAuthService_PublishErrorDoesNotFailRequest(t *testing.T) {
	env := newTestEnv(t)
	env.events.err = errors.New("broker down")

	res, err := env.svc.Register(context.Background(), ann)
	require.NoError(t, err)
	assert.NotNil(t, res)
}

func TestAuthService_NilPublisher(t *testing.T) {
	env := newTestEnv(t)
	env.svc.Events = nil

	_, err := env.svc.Register(context.Background(), ann)
	require.NoError(t, err)
}

func TestAuthService_CurrentUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	reg, err := env.svc.Register(ctx, ann)
	require.NoError(t, err)

	user, err := env.svc.CurrentUser(ctx, reg.User.ID.String())
	require.NoError(t, err)
	assert.Equal(t, ann.Email, user.Email)

	_, err = env.svc.CurrentUser(ctx, uuid.NewString())
	assert.Equal(t, ErrUnauthenticated, err)
}
