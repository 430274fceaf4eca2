package comdirect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// InitiateTANChallenge asks the server to issue a TAN challenge for the
// session. The server answers 201 with a placeholder body; the actual
// challenge (id, type, confirmation link) is carried in the
// x-once-authentication-info response header.
func (m *Manager) InitiateTANChallenge(ctx context.Context, session Session, primaryToken string) (TANChallenge, error) {
	if primaryToken == "" {
		return TANChallenge{}, ErrNoPrimaryToken
	}

	if session.ID == "" {
		return TANChallenge{}, ErrNoSession
	}

	res, err := m.r(ctx).
		SetAuthToken(primaryToken).
		SetHeader(hdrRequestInfo, newRequestInfo(session.ID)).
		SetBody(sessionChangeReq{
			Identifier:   session.ID,
			TANActive:    true,
			Activated2FA: true,
		}).
		Post(sessionPath + "/" + session.ID + "/validate")
	if err != nil {
		return TANChallenge{}, err
	}

	return parseTANHeader(res.Header().Get(hdrOnceAuthInfo))
}

// WaitForTANConfirmation polls the challenge's confirmation link until
// the user approves it out-of-band. The wait between polls is
// cancellable through the context.
//
// An AUTHENTICATED status ends the wait successfully. PENDING and
// ACTIVE keep the loop going. Any other status is a terminal contract
// violation and fails immediately, as does a 404 (the challenge expired
// server-side). Transport errors and other HTTP failures count as
// transient and are retried until the attempts are exhausted.
func (m *Manager) WaitForTANConfirmation(ctx context.Context, challenge TANChallenge, session Session, primaryToken string) error {
	if primaryToken == "" {
		return ErrNoPrimaryToken
	}

	if challenge.Link.Href == "" {
		return &ProtocolError{Reason: "TAN challenge has no confirmation link"}
	}

	policy := m.tanWait
	start := time.Now()

	var lastErr error

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		var status tanStatus

		res, err := m.r(ctx).
			SetAuthToken(primaryToken).
			SetHeader(hdrRequestInfo, newRequestInfo(session.ID)).
			SetResult(&status).
			Get(challenge.Link.Href)

		switch {
		case err == nil:
			switch status.Status {
			case TANStatusAuthenticated:
				return nil

			case TANStatusPending, TANStatusActive:
				lastErr = nil

				logrus.WithFields(logrus.Fields{
					"pkg":     "go-comdirect",
					"attempt": attempt,
					"status":  status.Status,
				}).Debug("TAN confirmation still pending")

			default:
				return &ProtocolError{Reason: fmt.Sprintf("unexpected TAN status %q", status.Status)}
			}

		case res != nil && res.StatusCode() == http.StatusNotFound:
			// The challenge is gone server-side; polling further can
			// never succeed.
			return &TANTimeoutError{Attempts: attempt, Elapsed: time.Since(start), Expired: true}

		case ctx.Err() != nil:
			return ctx.Err()

		default:
			lastErr = err

			logrus.WithFields(logrus.Fields{
				"pkg":     "go-comdirect",
				"attempt": attempt,
			}).WithError(err).Warn("TAN status check failed, retrying")
		}

		if attempt < policy.MaxAttempts {
			if err := sleepCtx(ctx, policy.Interval); err != nil {
				return err
			}
		}
	}

	if lastErr != nil {
		return lastErr
	}

	return &TANTimeoutError{Attempts: policy.MaxAttempts, Elapsed: time.Since(start)}
}

// ActivateSessionTAN finishes the handshake after a confirmed
// challenge. The challenge id travels in the x-once-authentication-info
// request header. Activation is not idempotent-safe, so a failure here
// is never retried blindly.
func (m *Manager) ActivateSessionTAN(ctx context.Context, challenge TANChallenge, session Session, primaryToken string) (Session, error) {
	if primaryToken == "" {
		return Session{}, ErrNoPrimaryToken
	}

	if session.ID == "" {
		return Session{}, ErrNoSession
	}

	once, err := json.Marshal(onceAuthInfo{ID: challenge.ID})
	if err != nil {
		return Session{}, err
	}

	var activated Session

	if _, err := m.r(ctx).
		SetAuthToken(primaryToken).
		SetHeader(hdrRequestInfo, newRequestInfo(session.ID)).
		SetHeader(hdrOnceAuthInfo, string(once)).
		SetBody(sessionChangeReq{
			Identifier:   session.ID,
			TANActive:    true,
			Activated2FA: true,
		}).
		SetResult(&activated).
		Patch(sessionPath + "/" + session.ID); err != nil {
		return Session{}, err
	}

	return activated, nil
}
