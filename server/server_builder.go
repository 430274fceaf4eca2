package server

import (
	"io"
	"net/http/httptest"
	"os"
	"time"

	"github.com/finzlab/go-comdirect/server/backend"
	"github.com/gin-gonic/gin"
)

type serverBuilder struct {
	withTLS      bool
	logger       io.Writer
	authLife     time.Duration
	clientID     string
	clientSecret string
}

func newServerBuilder() *serverBuilder {
	var logger io.Writer

	if os.Getenv("GO_COMDIRECT_SERVER_LOGGER_ENABLED") != "" {
		logger = gin.DefaultWriter
	} else {
		logger = io.Discard
	}

	return &serverBuilder{
		withTLS:  true,
		logger:   logger,
		authLife: time.Hour,
	}
}

func (builder *serverBuilder) build() *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		r: gin.New(),
		b: backend.New(builder.authLife),

		clientID:     builder.clientID,
		clientSecret: builder.clientSecret,
	}

	if builder.withTLS {
		s.s = httptest.NewTLSServer(s.r)
	} else {
		s.s = httptest.NewServer(s.r)
	}

	s.r.Use(
		gin.LoggerWithConfig(gin.LoggerConfig{Output: builder.logger}),
		gin.Recovery(),
		s.logCalls(),
		s.handleOffline(),
	)

	initRouter(s)

	return s
}

// Option represents a type that can be used to configure the server.
type Option interface {
	config(*serverBuilder)
}

// WithTLS controls whether the server should serve over TLS.
func WithTLS(tls bool) Option {
	return &withTLS{
		withTLS: tls,
	}
}

type withTLS struct {
	withTLS bool
}

func (opt withTLS) config(builder *serverBuilder) {
	builder.withTLS = opt.withTLS
}

// WithAuthLife sets the lifetime of issued tokens.
func WithAuthLife(authLife time.Duration) Option {
	return &withAuthLife{
		authLife: authLife,
	}
}

type withAuthLife struct {
	authLife time.Duration
}

func (opt withAuthLife) config(builder *serverBuilder) {
	builder.authLife = opt.authLife
}

// WithClientKey pins the API client key the token endpoint accepts.
// Without it, any non-empty key is accepted.
func WithClientKey(clientID, clientSecret string) Option {
	return &withClientKey{
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

type withClientKey struct {
	clientID, clientSecret string
}

func (opt withClientKey) config(builder *serverBuilder) {
	builder.clientID = opt.clientID
	builder.clientSecret = opt.clientSecret
}
