package comdirect_test

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/finzlab/go-comdirect"
	"github.com/finzlab/go-comdirect/server"
	"github.com/stretchr/testify/require"
)

func startTANFlow(t *testing.T, m *comdirect.Manager) (comdirect.TANChallenge, comdirect.Session, string) {
	t.Helper()

	auth, err := m.PasswordGrant(context.Background(), "username", "password", "")
	require.NoError(t, err)

	session, err := m.EstablishSession(context.Background(), auth.AccessToken)
	require.NoError(t, err)

	challenge, err := m.InitiateTANChallenge(context.Background(), session, auth.AccessToken)
	require.NoError(t, err)

	return challenge, session, auth.AccessToken
}

func TestInitiateTANChallenge(t *testing.T) {
	_, m := newServerAndManager(t, nil)

	challenge, _, _ := startTANFlow(t, m)

	require.NotEmpty(t, challenge.ID)
	require.Equal(t, comdirect.TANTypePush, challenge.Type)
	require.Contains(t, challenge.AvailableTypes, comdirect.TANTypePush)
	require.True(t, strings.HasPrefix(challenge.Link.Href, "/api/session/"))
}

func TestInitiateTANChallenge_MissingHeader(t *testing.T) {
	s, m := newServerAndManager(t, nil)

	s.DropValidateHeader()

	auth, err := m.PasswordGrant(context.Background(), "username", "password", "")
	require.NoError(t, err)

	session, err := m.EstablishSession(context.Background(), auth.AccessToken)
	require.NoError(t, err)

	_, err = m.InitiateTANChallenge(context.Background(), session, auth.AccessToken)

	var protoErr *comdirect.ProtocolError
	require.ErrorAs(t, err, &protoErr)
	require.Contains(t, protoErr.Reason, "missing")
}

func TestInitiateTANChallenge_MalformedHeader(t *testing.T) {
	s, m := newServerAndManager(t, nil)

	s.SetValidateHeader(`{"id": "C1", "link"`)

	auth, err := m.PasswordGrant(context.Background(), "username", "password", "")
	require.NoError(t, err)

	session, err := m.EstablishSession(context.Background(), auth.AccessToken)
	require.NoError(t, err)

	_, err = m.InitiateTANChallenge(context.Background(), session, auth.AccessToken)

	var protoErr *comdirect.ProtocolError
	require.ErrorAs(t, err, &protoErr)
	require.Contains(t, protoErr.Reason, "malformed")
	require.Error(t, protoErr.Err)
}

func TestWaitForTAN_ImmediateApproval(t *testing.T) {
	s, m := newServerAndManager(t, nil, comdirect.WithTANWaitPolicy(10*time.Millisecond, 5))

	challenge, session, token := startTANFlow(t, m)

	var polls int

	s.AddCallWatcher(func(server.Call) { polls++ }, challenge.Link.Href)

	// An AUTHENTICATED status on the very first poll ends the wait.
	require.NoError(t, m.WaitForTANConfirmation(context.Background(), challenge, session, token))
	require.Equal(t, 1, polls)
}

func TestWaitForTAN_TimedOut(t *testing.T) {
	s, m := newServerAndManager(t, nil, comdirect.WithTANWaitPolicy(10*time.Millisecond, 3))

	// The challenge never leaves PENDING.
	s.SetTANPendingPolls(1000)

	challenge, session, token := startTANFlow(t, m)

	var polls int

	s.AddCallWatcher(func(server.Call) { polls++ }, challenge.Link.Href)

	err := m.WaitForTANConfirmation(context.Background(), challenge, session, token)

	var timeoutErr *comdirect.TANTimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	require.Equal(t, 3, timeoutErr.Attempts)
	require.False(t, timeoutErr.Expired)
	require.Equal(t, 3, polls)
}

func TestWaitForTAN_Rejected(t *testing.T) {
	s, m := newServerAndManager(t, nil, comdirect.WithTANWaitPolicy(10*time.Millisecond, 10))

	s.SetTANStatus("REJECTED")

	challenge, session, token := startTANFlow(t, m)

	var polls int

	s.AddCallWatcher(func(server.Call) { polls++ }, challenge.Link.Href)

	// A rejected challenge can never become confirmed; the loop must
	// fail fast instead of burning the remaining attempts.
	err := m.WaitForTANConfirmation(context.Background(), challenge, session, token)

	var protoErr *comdirect.ProtocolError
	require.ErrorAs(t, err, &protoErr)
	require.Contains(t, protoErr.Reason, "REJECTED")
	require.Equal(t, 1, polls)
}

func TestWaitForTAN_Expired(t *testing.T) {
	s, m := newServerAndManager(t, nil, comdirect.WithTANWaitPolicy(10*time.Millisecond, 10))

	challenge, session, token := startTANFlow(t, m)

	s.ExpireTANChallenges()

	var polls int

	s.AddCallWatcher(func(server.Call) { polls++ }, challenge.Link.Href)

	err := m.WaitForTANConfirmation(context.Background(), challenge, session, token)

	var timeoutErr *comdirect.TANTimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	require.True(t, timeoutErr.Expired)
	require.Equal(t, 1, polls)
}

func TestWaitForTAN_TransientServerError(t *testing.T) {
	s, m := newServerAndManager(t, nil, comdirect.WithTANWaitPolicy(10*time.Millisecond, 2))

	challenge, session, token := startTANFlow(t, m)

	s.SetOffline(true)

	// Every attempt fails with a 5xx; the last attempt's error is
	// surfaced once the attempts are exhausted.
	err := m.WaitForTANConfirmation(context.Background(), challenge, session, token)

	var apiErr *comdirect.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
}

func TestWaitForTAN_RecoversAfterOutage(t *testing.T) {
	s, m := newServerAndManager(t, nil, comdirect.WithTANWaitPolicy(10*time.Millisecond, 50))

	challenge, session, token := startTANFlow(t, m)

	s.SetOffline(true)

	go func() {
		time.Sleep(50 * time.Millisecond)
		s.SetOffline(false)
	}()

	require.NoError(t, m.WaitForTANConfirmation(context.Background(), challenge, session, token))
}

func TestWaitForTAN_DialFailure(t *testing.T) {
	ctl := comdirect.NewNetCtl()
	dialer := comdirect.NewDialer(ctl, &tls.Config{InsecureSkipVerify: true})

	s := server.New()
	defer s.Close()

	_, err := s.CreateUser("username", "password")
	require.NoError(t, err)

	m := comdirect.New(
		comdirect.WithHostURL(s.GetHostURL()),
		comdirect.WithTransport(dialer.GetRoundTripper()),
		comdirect.WithClientKey("client-id", "client-secret"),
		comdirect.WithRetryCount(0),
		comdirect.WithTANWaitPolicy(10*time.Millisecond, 2),
	)
	defer m.Close()

	challenge, session, token := startTANFlow(t, m)

	// Cut connectivity; polling treats dial failures as transient and
	// re-raises the last one after the attempts are exhausted.
	ctl.SetCanDial(false)
	m.Close()

	err = m.WaitForTANConfirmation(context.Background(), challenge, session, token)
	require.Error(t, err)
	require.Contains(t, err.Error(), "cannot dial")
}

func TestWaitForTAN_Cancelled(t *testing.T) {
	s, m := newServerAndManager(t, nil, comdirect.WithTANWaitPolicy(time.Second, 30))

	s.SetTANPendingPolls(1000)

	challenge, session, token := startTANFlow(t, m)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()

	err := m.WaitForTANConfirmation(ctx, challenge, session, token)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// The wait must end with the context, not with the polling budget.
	require.Less(t, time.Since(start), 10*time.Second)
}

func TestActivateSessionTAN(t *testing.T) {
	s, m := newServerAndManager(t, nil, comdirect.WithTANWaitPolicy(10*time.Millisecond, 10))

	s.SetTANPendingPolls(1)

	challenge, session, token := startTANFlow(t, m)

	var (
		patches     int
		patchHeader string
	)

	s.AddCallWatcher(func(call server.Call) {
		if call.Method == http.MethodPatch {
			patches++
			patchHeader = call.RequestHeader.Get("x-once-authentication-info")
		}
	})

	require.NoError(t, m.WaitForTANConfirmation(context.Background(), challenge, session, token))

	activated, err := m.ActivateSessionTAN(context.Background(), challenge, session, token)
	require.NoError(t, err)

	require.True(t, activated.TANActive)
	require.True(t, activated.TwoFAActive)
	require.Equal(t, session.ID, activated.ID)

	// Exactly one activation PATCH, carrying the challenge id in the
	// header side-channel.
	require.Equal(t, 1, patches)

	var once struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal([]byte(patchHeader), &once))
	require.Equal(t, challenge.ID, once.ID)
}

func TestActivateSessionTAN_Unconfirmed(t *testing.T) {
	s, m := newServerAndManager(t, nil)

	s.SetTANPendingPolls(1000)

	challenge, session, token := startTANFlow(t, m)

	// Activating without a confirmed challenge is refused.
	_, err := m.ActivateSessionTAN(context.Background(), challenge, session, token)

	var apiErr *comdirect.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
}
