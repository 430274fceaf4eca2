package comdirect_test

import (
	"context"
	"testing"
	"time"

	"github.com/finzlab/go-comdirect"
	"github.com/stretchr/testify/require"
)

func TestNewClientWithLogin(t *testing.T) {
	notified := make(chan comdirect.TANChallenge, 1)

	s, m := newServerAndManager(t, nil,
		comdirect.WithTANWaitPolicy(10*time.Millisecond, 10),
		comdirect.WithTANNotify(func(challenge comdirect.TANChallenge) {
			notified <- challenge
		}),
	)

	s.SetTANPendingPolls(2)

	c, state, err := m.NewClientWithLogin(context.Background(), "username", "password")
	require.NoError(t, err)
	defer c.Close()

	// The caller was told to approve the challenge before polling began.
	select {
	case challenge := <-notified:
		require.NotEmpty(t, challenge.ID)
	default:
		t.Fatal("TAN notification was not delivered")
	}

	// The state holds the full token set of one authorization cycle.
	require.NotEmpty(t, state.PrimaryToken)
	require.NotEmpty(t, state.BankingToken)
	require.NotEqual(t, state.PrimaryToken, state.BankingToken)
	require.Equal(t, state.PrimaryToken, state.SessionToken)
	require.NotEmpty(t, state.RefreshToken)
	require.Len(t, state.SessionID, 32)
	require.Contains(t, state.Scope, "BANKING")
	require.NotEmpty(t, state.CustomerID)
}

func TestNewClientWithLogin_BadPassword(t *testing.T) {
	_, m := newServerAndManager(t, nil)

	_, _, err := m.NewClientWithLogin(context.Background(), "username", "wrong")

	var apiErr *comdirect.APIError
	require.ErrorAs(t, err, &apiErr)
}

func TestNewClientWithLogin_TANTimeout(t *testing.T) {
	s, m := newServerAndManager(t, nil, comdirect.WithTANWaitPolicy(10*time.Millisecond, 2))

	s.SetTANPendingPolls(1000)

	// A TAN that is never approved aborts the whole flow.
	_, _, err := m.NewClientWithLogin(context.Background(), "username", "password")

	var timeoutErr *comdirect.TANTimeoutError
	require.ErrorAs(t, err, &timeoutErr)
}
