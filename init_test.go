package comdirect_test

import (
	"context"
	"testing"

	"github.com/finzlab/go-comdirect"
	"github.com/finzlab/go-comdirect/server"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

// newServerAndManager spins up a fake API with one registered user
// ("username"/"password") and a manager pointed at it.
func newServerAndManager(t *testing.T, sOpts []server.Option, mOpts ...comdirect.Option) (*server.Server, *comdirect.Manager) {
	t.Helper()

	s := server.New(sOpts...)
	t.Cleanup(s.Close)

	_, err := s.CreateUser("username", "password")
	require.NoError(t, err)

	m := comdirect.New(append([]comdirect.Option{
		comdirect.WithHostURL(s.GetHostURL()),
		comdirect.WithTransport(comdirect.InsecureTransport()),
		comdirect.WithClientKey("client-id", "client-secret"),
	}, mOpts...)...)
	t.Cleanup(m.Close)

	return s, m
}

// login runs the full authorization flow with immediate TAN approval.
func login(t *testing.T, m *comdirect.Manager) (*comdirect.Client, comdirect.AuthState) {
	t.Helper()

	c, state, err := m.NewClientWithLogin(context.Background(), "username", "password")
	require.NoError(t, err)

	t.Cleanup(c.Close)

	return c, state
}
