package comdirect

import (
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	// DefaultHostURL is the default host of the API. Both the REST base
	// (/api/...) and the OAuth token endpoint (/oauth/token) live on it.
	DefaultHostURL = "https://api.comdirect.de"

	// DefaultTANInterval is the default delay between two confirmation polls.
	DefaultTANInterval = 2 * time.Second

	// DefaultTANAttempts is the default number of confirmation polls
	// before giving up. Together with the interval this bounds the wait
	// to roughly a minute, which matches push approval latency.
	DefaultTANAttempts = 30
)

type managerBuilder struct {
	hostURL      string
	transport    http.RoundTripper
	cookieJar    http.CookieJar
	retryCount   int
	logger       resty.Logger
	debug        bool
	clientID     string
	clientSecret string
	tanWait      TANWaitPolicy
	tanNotify    func(TANChallenge)
	docPoolSize  int
}

func newManagerBuilder() *managerBuilder {
	return &managerBuilder{
		hostURL:    DefaultHostURL,
		transport:  http.DefaultTransport,
		cookieJar:  nil,
		retryCount: 3,
		logger:     nil,
		debug:      false,
		tanWait: TANWaitPolicy{
			Interval:    DefaultTANInterval,
			MaxAttempts: DefaultTANAttempts,
		},
		docPoolSize: 4,
	}
}

func (builder *managerBuilder) build() *Manager {
	m := &Manager{
		rc: resty.New(),

		clientID:     builder.clientID,
		clientSecret: builder.clientSecret,

		tanWait:   builder.tanWait,
		tanNotify: builder.tanNotify,

		docPoolSize: builder.docPoolSize,
	}

	// Set the API host.
	m.rc.SetBaseURL(builder.hostURL)

	// Set the transport.
	m.rc.SetTransport(builder.transport)

	// Set the cookie jar.
	m.rc.SetCookieJar(builder.cookieJar)

	// Set the logger.
	if builder.logger != nil {
		m.rc.SetLogger(builder.logger)
	}

	// Set the debug flag.
	m.rc.SetDebug(builder.debug)

	// The API redirects to the web frontend on some error conditions;
	// following those would hide the actual status code.
	m.rc.SetRedirectPolicy(resty.NoRedirectPolicy())

	// Set middleware.
	m.rc.OnAfterResponse(catchAPIError)

	// Configure retry mechanism.
	m.rc.SetRetryCount(builder.retryCount)
	m.rc.SetRetryMaxWaitTime(time.Minute)
	m.rc.AddRetryCondition(catchTooManyRequests)
	m.rc.AddRetryCondition(catchDialError)
	m.rc.SetRetryAfter(catchRetryAfter)

	// Set the data type of API errors.
	m.rc.SetError(&APIError{})

	return m
}
