package comdirect

import (
	"context"

	"github.com/go-resty/resty/v2"
)

// Manager holds the shared HTTP client and the API client key. It
// performs the unauthenticated OAuth2 exchanges and the session/TAN
// handshake; authenticated data access happens through a Client.
type Manager struct {
	rc *resty.Client

	clientID     string
	clientSecret string

	tanWait   TANWaitPolicy
	tanNotify func(TANChallenge)

	docPoolSize int
}

// New creates a new manager with the given options.
func New(opts ...Option) *Manager {
	builder := newManagerBuilder()

	for _, opt := range opts {
		opt.config(builder)
	}

	return builder.build()
}

func (m *Manager) r(ctx context.Context) *resty.Request {
	return m.rc.R().SetContext(ctx)
}

// Close closes the manager's idle connections.
func (m *Manager) Close() {
	m.rc.GetClient().CloseIdleConnections()
}
