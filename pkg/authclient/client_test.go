package authclient_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/idea_drop/internal/cookie"
	"github.com/Skotchmaster/idea_drop/internal/events"
	"github.com/Skotchmaster/idea_drop/internal/httpserver"
	"github.com/Skotchmaster/idea_drop/internal/logging"
	"github.com/Skotchmaster/idea_drop/internal/repo"
	"github.com/Skotchmaster/idea_drop/internal/service"
	"github.com/Skotchmaster/idea_drop/internal/testutil"
	"github.com/Skotchmaster/idea_drop/internal/tokens"
	"github.com/Skotchmaster/idea_drop/pkg/authclient"
)

func newAuthServer(t *testing.T) (*httptest.Server, *service.AuthService) {
	t.Helper()

	tm, err := tokens.NewManager([]byte("test-jwt-secret"))
	require.NoError(t, err)

	svc := &service.AuthService{
		Repo:       repo.New(testutil.NewDB(t)),
		Tokens:     tm,
		Events:     events.Nop{},
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 30 * 24 * time.Hour,
	}
	e := httpserver.New(&httpserver.Deps{
		AuthHandler: &httpserver.AuthHTTP{Svc: svc, Cookies: cookie.PolicyFor(cookie.Development, 30*24*time.Hour)},
		Verifier:    tm,
		Logger:      logging.NewWithWriter(io.Discard, "error"),
	})

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv, svc
}

func TestClient_RefreshAndMe(t *testing.T) {
	srv, svc := newAuthServer(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, service.RegisterInput{Name: "Ann", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	c := authclient.NewClient(srv.URL + "/")

	res, err := c.Refresh(ctx, reg.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, reg.User.ID.String(), res.User.ID)
	assert.Equal(t, "a@x.com", res.User.Email)

	me, err := c.Me(ctx, res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "Ann", me.Name)
}

func TestClient_Unauthorized(t *testing.T) {
	srv, _ := newAuthServer(t)
	c := authclient.NewClient(srv.URL)

	_, err := c.Refresh(context.Background(), "not-a-valid-jwt")
	require.ErrorIs(t, err, authclient.ErrUnauthorized)

	_, err = c.Me(context.Background(), "not-a-valid-jwt")
	require.ErrorIs(t, err, authclient.ErrUnauthorized)
}

func TestClient_UnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	_, err := authclient.NewClient(srv.URL).Refresh(context.Background(), "x")
	require.Error(t, err)
	assert.NotErrorIs(t, err, authclient.ErrUnauthorized)
}
