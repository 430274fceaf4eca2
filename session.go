package comdirect

import (
	"context"
)

const sessionPath = "/api/session/clients/user/v1/sessions"

// EstablishSession creates a session context for the TAN handshake. A
// fresh identifier is generated locally, sent in the correlation
// header, and then replaced by the canonical identifier from the
// server. Calling it again simply yields the latest server state.
func (m *Manager) EstablishSession(ctx context.Context, primaryToken string) (Session, error) {
	if primaryToken == "" {
		return Session{}, ErrNoPrimaryToken
	}

	var sessions []Session

	if _, err := m.r(ctx).
		SetAuthToken(primaryToken).
		SetHeader(hdrRequestInfo, newRequestInfo(newSessionID())).
		SetResult(&sessions).
		Get(sessionPath); err != nil {
		return Session{}, err
	}

	if len(sessions) == 0 {
		return Session{}, &ProtocolError{Reason: "session status returned an empty list"}
	}

	return sessions[0], nil
}
