package comdirect

import (
	"context"

	"github.com/sirupsen/logrus"
)

// NewClientWithLogin runs the complete authorization flow and returns a
// client holding a banking-capable token:
//
//  1. password grant for the primary token,
//  2. session establishment,
//  3. TAN handshake (initiate, wait for out-of-band approval, activate),
//  4. secondary grant for the banking/brokerage token.
//
// The stages run strictly in order; any failure aborts the whole flow.
// Expect the call to block for however long the user takes to approve
// the push notification on their device.
func (m *Manager) NewClientWithLogin(ctx context.Context, username, password string) (*Client, AuthState, error) {
	auth, err := m.PasswordGrant(ctx, username, password, ScopeSessionRW)
	if err != nil {
		return nil, AuthState{}, err
	}

	state := AuthState{}.withAuth(auth)

	session, err := m.EstablishSession(ctx, state.PrimaryToken)
	if err != nil {
		return nil, AuthState{}, err
	}

	challenge, err := m.InitiateTANChallenge(ctx, session, state.PrimaryToken)
	if err != nil {
		return nil, AuthState{}, err
	}

	m.notifyTAN(challenge)

	if err := m.WaitForTANConfirmation(ctx, challenge, session, state.PrimaryToken); err != nil {
		return nil, AuthState{}, err
	}

	activated, err := m.ActivateSessionTAN(ctx, challenge, session, state.PrimaryToken)
	if err != nil {
		return nil, AuthState{}, err
	}

	state = state.withSession(activated)

	secondary, err := m.SecondaryGrant(ctx, state.PrimaryToken)
	if err != nil {
		return nil, AuthState{}, err
	}

	state = state.withBanking(secondary)

	return newClient(m).withAuth(state), state, nil
}

// NewClient resumes a client from a previously obtained AuthState, for
// example one persisted after an earlier NewClientWithLogin. The tokens
// are used as-is; expired ones are refreshed on the first call.
func (m *Manager) NewClient(state AuthState) *Client {
	return newClient(m).withAuth(state)
}

// notifyTAN tells the caller that out-of-band approval is required
// before the polling loop starts.
func (m *Manager) notifyTAN(challenge TANChallenge) {
	logrus.WithFields(logrus.Fields{
		"pkg":       "go-comdirect",
		"challenge": challenge.ID,
		"type":      challenge.Type,
	}).Info("TAN challenge issued, approve it on your device")

	if m.tanNotify != nil {
		m.tanNotify(challenge)
	}
}
