// Package server provides a fake comdirect API for tests: the OAuth
// token endpoint, the session/TAN handshake with its header
// side-channel, and the read-only banking/brokerage/postbox routes.
package server

import (
	"net/http/httptest"
	"sync"
	"time"

	"github.com/finzlab/go-comdirect/server/backend"
	"github.com/gin-gonic/gin"
)

type Server struct {
	// r is the gin router.
	r *gin.Engine

	// s is the underlying server.
	s *httptest.Server

	// b is the server backend, which manages accounts, tokens, sessions
	// and TAN challenges.
	b *backend.Backend

	// callWatchers records callWatchers received by the server.
	callWatchers     []callWatcher
	callWatchersLock sync.RWMutex

	// clientID/clientSecret are the only accepted API client key when set.
	clientID     string
	clientSecret string

	// validateHeader overrides the x-once-authentication-info response
	// header on the validate route; dropValidateHeader suppresses it.
	validateHeader     string
	dropValidateHeader bool

	// offline is whether to pretend the server is offline and return 5xx errors.
	offline bool
}

func New(opts ...Option) *Server {
	builder := newServerBuilder()

	for _, opt := range opts {
		opt.config(builder)
	}

	return builder.build()
}

func (s *Server) GetHostURL() string {
	return s.s.URL
}

func (s *Server) AddCallWatcher(fn func(Call), paths ...string) {
	s.callWatchersLock.Lock()
	defer s.callWatchersLock.Unlock()

	s.callWatchers = append(s.callWatchers, newCallWatcher(fn, paths...))
}

// CreateUser registers an account with seeded banking, brokerage and
// postbox data and returns its user ID.
func (s *Server) CreateUser(username, password string) (string, error) {
	return s.b.CreateUser(username, password)
}

// SetAuthLife sets the lifetime of tokens issued from now on.
func (s *Server) SetAuthLife(authLife time.Duration) {
	s.b.SetAuthLife(authLife)
}

// RevokeTokens invalidates every token issued so far; authenticated
// calls answer 401 until the caller obtains fresh tokens.
func (s *Server) RevokeTokens() {
	s.b.RevokeTokens()
}

// SetTANPendingPolls makes challenges report PENDING for the first n
// status polls before turning terminal.
func (s *Server) SetTANPendingPolls(n int) {
	s.b.SetTANPendingPolls(n)
}

// SetTANStatus sets the terminal status challenges report once past
// their pending polls, e.g. REJECTED.
func (s *Server) SetTANStatus(status string) {
	s.b.SetTANStatus(status)
}

// ExpireTANChallenges makes the polling endpoint answer 404, as the
// real API does once a challenge timed out server-side.
func (s *Server) ExpireTANChallenges() {
	s.b.SetTANExpired(true)
}

// SetValidateHeader overrides the x-once-authentication-info response
// header of the next validate calls, e.g. with malformed JSON.
func (s *Server) SetValidateHeader(header string) {
	s.validateHeader = header
}

// DropValidateHeader suppresses the x-once-authentication-info response
// header entirely.
func (s *Server) DropValidateHeader() {
	s.dropValidateHeader = true
}

// SetOffline sets whether the server should pretend to be offline and
// answer 503 to everything.
func (s *Server) SetOffline(offline bool) {
	s.offline = offline
}

func (s *Server) Close() {
	s.s.Close()
}
