package comdirect_test

import (
	"context"
	"testing"
	"time"

	"github.com/finzlab/go-comdirect"
	"github.com/finzlab/go-comdirect/server"
	"github.com/stretchr/testify/require"
)

func TestPasswordGrant(t *testing.T) {
	_, m := newServerAndManager(t, nil)

	auth, err := m.PasswordGrant(context.Background(), "username", "password", "")
	require.NoError(t, err)

	require.NotEmpty(t, auth.AccessToken)
	require.NotEmpty(t, auth.RefreshToken)
	require.Equal(t, 3600, auth.ExpiresIn)
	require.Equal(t, comdirect.ScopeSessionRW, auth.Scope)
	require.NotEmpty(t, auth.CustomerID)
	require.NotEmpty(t, auth.BusinessPartnerID)
	require.NotEmpty(t, auth.ContactID)
}

func TestPasswordGrant_Expiry(t *testing.T) {
	_, m := newServerAndManager(t, nil, comdirect.WithTANWaitPolicy(10*time.Millisecond, 5))

	// The token lives an hour; the state's expiry must land 30 seconds
	// short of that, bracketed by the call itself.
	before := time.Now()
	_, state := login(t, m)
	after := time.Now()

	require.False(t, state.ExpiresAt.Before(before.Add(time.Hour-30*time.Second)))
	require.False(t, state.ExpiresAt.After(after.Add(time.Hour-30*time.Second)))
	require.False(t, state.Expired())
}

func TestPasswordGrant_BadCredentials(t *testing.T) {
	_, m := newServerAndManager(t, nil)

	_, err := m.PasswordGrant(context.Background(), "username", "wrong", "")

	var apiErr *comdirect.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, 400, apiErr.Status)
	require.Equal(t, "invalid_grant", apiErr.Code)
}

func TestPasswordGrant_NoCredentials(t *testing.T) {
	_, m := newServerAndManager(t, nil)

	_, err := m.PasswordGrant(context.Background(), "", "", "")
	require.ErrorIs(t, err, comdirect.ErrNoCredentials)
}

func TestPasswordGrant_BadClientKey(t *testing.T) {
	s := server.New(server.WithClientKey("real-id", "real-secret"))
	defer s.Close()

	_, err := s.CreateUser("username", "password")
	require.NoError(t, err)

	m := comdirect.New(
		comdirect.WithHostURL(s.GetHostURL()),
		comdirect.WithTransport(comdirect.InsecureTransport()),
		comdirect.WithClientKey("other-id", "other-secret"),
	)
	defer m.Close()

	_, err = m.PasswordGrant(context.Background(), "username", "password", "")

	var apiErr *comdirect.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, 401, apiErr.Status)
}

func TestRefreshAuth(t *testing.T) {
	_, m := newServerAndManager(t, nil)

	auth, err := m.PasswordGrant(context.Background(), "username", "password", "")
	require.NoError(t, err)

	refreshed, err := m.RefreshAuth(context.Background(), auth.RefreshToken)
	require.NoError(t, err)

	require.NotEmpty(t, refreshed.AccessToken)
	require.NotEqual(t, auth.AccessToken, refreshed.AccessToken)
}

func TestRefreshAuth_NoToken(t *testing.T) {
	_, m := newServerAndManager(t, nil)

	_, err := m.RefreshAuth(context.Background(), "")
	require.ErrorIs(t, err, comdirect.ErrNoRefreshToken)
}

func TestSecondaryGrant_NoPrimaryToken(t *testing.T) {
	s, m := newServerAndManager(t, nil)

	var calls int

	s.AddCallWatcher(func(server.Call) { calls++ }, "/oauth/token")

	_, err := m.SecondaryGrant(context.Background(), "")
	require.ErrorIs(t, err, comdirect.ErrNoPrimaryToken)

	// The sequencing error must be caught before any HTTP call.
	require.Zero(t, calls)
}

func TestSecondaryGrant_RequiresActivatedSession(t *testing.T) {
	_, m := newServerAndManager(t, nil)

	auth, err := m.PasswordGrant(context.Background(), "username", "password", "")
	require.NoError(t, err)

	// Without a finished TAN handshake the secondary grant is refused.
	_, err = m.SecondaryGrant(context.Background(), auth.AccessToken)

	var apiErr *comdirect.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, 400, apiErr.Status)
}
