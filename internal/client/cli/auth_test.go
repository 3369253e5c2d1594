package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_Success(t *testing.T) {
	h := newHarness(t)
	stubInputs(t, []string{"alice", "alice@example.org"}, []byte("secret-pass"))

	require.NoError(t, h.app.Register(context.Background(), nil))

	assert.Equal(t, "alice", h.users.regUser)
	assert.Equal(t, "alice@example.org", h.users.regEmail)
	assert.Equal(t, "secret-pass", h.users.regPass)
	assert.Contains(t, h.out.String(), "Registered alice")
	assert.Empty(t, h.sessions.userID, "register must not log in")
}

func TestRegister_ErrorPropagates(t *testing.T) {
	h := newHarness(t)
	h.users.regErr = common.ErrConflict
	stubInputs(t, []string{"alice", "alice@example.org"}, []byte("secret-pass"))

	err := h.app.Register(context.Background(), nil)
	require.ErrorIs(t, err, common.ErrConflict)
}

func TestLogin_StoresSession(t *testing.T) {
	h := newHarness(t)
	stubInputs(t, []string{"bob"}, []byte("hunter22"))

	require.NoError(t, h.app.Login(context.Background(), nil))

	assert.Equal(t, "bob", h.users.loginUser)
	assert.Equal(t, "hunter22", h.users.loginPass)
	assert.Equal(t, "u-bob", h.sessions.userID)
	assert.Equal(t, "tok-bob", h.sessions.token)
	assert.True(t, h.app.isLoggedIn())
	assert.Equal(t, "(bob)", h.app.getStatus())
}

func TestLogin_BadCredentials(t *testing.T) {
	h := newHarness(t)
	h.users.loginErr = common.ErrorUnauthorized
	stubInputs(t, []string{"bob"}, []byte("wrong"))

	err := h.app.Login(context.Background(), nil)
	require.ErrorIs(t, err, common.ErrorUnauthorized)
	assert.Empty(t, h.sessions.userID)
	assert.False(t, h.app.isLoggedIn())
}

func TestLogin_SessionStoreFailure(t *testing.T) {
	h := newHarness(t)
	h.sessions.beginErr = common.ErrStoreFailure
	stubInputs(t, []string{"bob"}, []byte("hunter22"))

	err := h.app.Login(context.Background(), nil)
	require.ErrorIs(t, err, common.ErrStoreFailure)
	assert.False(t, h.app.isLoggedIn())
}

func TestLogout(t *testing.T) {
	h := newHarness(t)
	h.loggedIn(&models.User{ID: "u1", UserName: "carol"})
	h.app.userName = "carol"

	require.NoError(t, h.app.Logout(context.Background(), nil))
	assert.True(t, h.sessions.endCalled)
	assert.False(t, h.app.isLoggedIn())
	assert.Equal(t, "(anonymous)", h.app.getStatus())
}

func TestLogout_ErrorPropagates(t *testing.T) {
	h := newHarness(t)
	h.sessions.endErr = errors.New("clean-fail")

	require.Error(t, h.app.Logout(context.Background(), nil))
}

func TestWhoAmI(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.app.WhoAmI(context.Background(), nil))
	assert.Contains(t, h.out.String(), "anonymous")

	h.out.Reset()
	h.loggedIn(&models.User{ID: "u1", UserName: "carol", Email: "carol@example.org"})

	require.NoError(t, h.app.WhoAmI(context.Background(), nil))
	assert.Contains(t, h.out.String(), "carol <carol@example.org>")
	assert.Contains(t, h.out.String(), "id: u1")
	assert.Equal(t, "carol", h.app.userName)
}

func TestPrincipal(t *testing.T) {
	h := newHarness(t)

	p, err := h.app.principal(context.Background())
	require.NoError(t, err)
	assert.True(t, p.IsAnonymous())

	// an expired token in the slot reads as no session
	h.sessions.currentErr = errors.Join(common.ErrNoSession, common.ErrTokenExpired)
	p, err = h.app.principal(context.Background())
	require.NoError(t, err)
	assert.True(t, p.IsAnonymous())

	h.sessions.currentErr = common.ErrStoreFailure
	_, err = h.app.principal(context.Background())
	require.ErrorIs(t, err, common.ErrStoreFailure)

	h.sessions.currentErr = nil
	h.sessions.userID = "u9"
	p, err = h.app.principal(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.Principal("u9"), p)
}

func TestRefreshUserName(t *testing.T) {
	h := newHarness(t)
	h.loggedIn(&models.User{ID: "u1", UserName: "dave"})

	h.app.refreshUserName(context.Background())
	assert.Equal(t, "dave", h.app.userName)

	h.sessions.userID = ""
	h.app.refreshUserName(context.Background())
	assert.Empty(t, h.app.userName)
}
