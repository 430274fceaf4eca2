package comdirect_test

import (
	"context"
	"testing"

	"github.com/finzlab/go-comdirect"
	"github.com/stretchr/testify/require"
)

func TestEstablishSession(t *testing.T) {
	_, m := newServerAndManager(t, nil)

	auth, err := m.PasswordGrant(context.Background(), "username", "password", "")
	require.NoError(t, err)

	session, err := m.EstablishSession(context.Background(), auth.AccessToken)
	require.NoError(t, err)

	// The locally generated identifier is replaced by the canonical one.
	require.Len(t, session.ID, 32)
	require.False(t, session.TANActive)
	require.False(t, session.TwoFAActive)
}

func TestEstablishSession_Repeated(t *testing.T) {
	_, m := newServerAndManager(t, nil)

	auth, err := m.PasswordGrant(context.Background(), "username", "password", "")
	require.NoError(t, err)

	// Re-establishing adopts the server's canonical identifier each
	// time; no stale local state accumulates.
	first, err := m.EstablishSession(context.Background(), auth.AccessToken)
	require.NoError(t, err)

	second, err := m.EstablishSession(context.Background(), auth.AccessToken)
	require.NoError(t, err)

	require.Equal(t, first.ID, second.ID)
}

func TestEstablishSession_NoToken(t *testing.T) {
	_, m := newServerAndManager(t, nil)

	_, err := m.EstablishSession(context.Background(), "")
	require.ErrorIs(t, err, comdirect.ErrNoPrimaryToken)
}
