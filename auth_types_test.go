package comdirect

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAuthUnmarshal(t *testing.T) {
	// The token endpoint delivers the customer identifiers sometimes as
	// strings, sometimes as bare numbers.
	tests := []struct {
		name string
		body string
	}{
		{
			name: "string identifiers",
			body: `{
				"access_token": "a", "refresh_token": "r", "expires_in": 599,
				"scope": "SESSION_RW",
				"kdnr": "12345678", "bpid": "9876543210", "kontaktId": "1122334455"
			}`,
		},
		{
			name: "numeric identifiers",
			body: `{
				"access_token": "a", "refresh_token": "r", "expires_in": 599,
				"scope": "SESSION_RW",
				"kdnr": 12345678, "bpid": 9876543210, "kontaktId": 1122334455
			}`,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var auth Auth

			require.NoError(t, json.Unmarshal([]byte(test.body), &auth))

			require.Equal(t, "a", auth.AccessToken)
			require.Equal(t, 599, auth.ExpiresIn)
			require.Equal(t, FlexStr("12345678"), auth.CustomerID)
			require.Equal(t, FlexStr("9876543210"), auth.BusinessPartnerID)
			require.Equal(t, FlexStr("1122334455"), auth.ContactID)
		})
	}
}

func TestFlexStrNull(t *testing.T) {
	var auth Auth

	require.NoError(t, json.Unmarshal([]byte(`{"access_token": "a", "kdnr": null}`), &auth))
	require.Empty(t, auth.CustomerID)
}

func TestAuthExpiresAt(t *testing.T) {
	auth := Auth{ExpiresIn: 599}

	before := time.Now()
	expiry := auth.expiresAt()
	after := time.Now()

	// 599 seconds minus the 30 second safety margin.
	require.False(t, expiry.Before(before.Add(569*time.Second)))
	require.False(t, expiry.After(after.Add(569*time.Second)))
}

func TestAuthStateTransitions(t *testing.T) {
	state := AuthState{}.withAuth(Auth{
		AccessToken:  "primary",
		RefreshToken: "refresh",
		ExpiresIn:    599,
		Scope:        ScopeSessionRW,
		CustomerID:   "12345678",
	})

	require.Equal(t, "primary", state.PrimaryToken)
	require.Empty(t, state.SessionToken)
	require.Empty(t, state.BankingToken)
	require.False(t, state.Expired())

	state = state.withSession(Session{ID: "session-1"})

	require.Equal(t, "session-1", state.SessionID)
	require.Equal(t, "primary", state.SessionToken)

	state = state.withBanking(Auth{
		AccessToken:  "banking",
		RefreshToken: "refresh-2",
		Scope:        "BANKING_RW",
	})

	// The banking grant replaces neither the primary nor the session
	// token; it only adds the banking token and rotates the refresh token.
	require.Equal(t, "primary", state.PrimaryToken)
	require.Equal(t, "primary", state.SessionToken)
	require.Equal(t, "banking", state.BankingToken)
	require.Equal(t, "refresh-2", state.RefreshToken)
	require.Equal(t, "BANKING_RW", state.Scope)
	require.Equal(t, "12345678", state.CustomerID)
}

func TestAuthStateExpired(t *testing.T) {
	require.True(t, AuthState{}.Expired())
	require.True(t, AuthState{ExpiresAt: time.Now().Add(-time.Second)}.Expired())
	require.False(t, AuthState{ExpiresAt: time.Now().Add(time.Minute)}.Expired())
}
