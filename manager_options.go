package comdirect

import (
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Option represents a type that can be used to configure the manager.
type Option interface {
	config(*managerBuilder)
}

// WithClientKey sets the OAuth2 client id and secret issued for the API
// client. Both are required for any token exchange.
func WithClientKey(clientID, clientSecret string) Option {
	return &withClientKey{
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

type withClientKey struct {
	clientID, clientSecret string
}

func (opt withClientKey) config(builder *managerBuilder) {
	builder.clientID = opt.clientID
	builder.clientSecret = opt.clientSecret
}

// WithHostURL sets the API host to make requests to.
func WithHostURL(hostURL string) Option {
	return &withHostURL{
		hostURL: hostURL,
	}
}

type withHostURL struct {
	hostURL string
}

func (opt withHostURL) config(builder *managerBuilder) {
	builder.hostURL = opt.hostURL
}

// WithTransport sets the transport to use when making requests.
func WithTransport(transport http.RoundTripper) Option {
	return &withTransport{
		transport: transport,
	}
}

type withTransport struct {
	transport http.RoundTripper
}

func (opt withTransport) config(builder *managerBuilder) {
	builder.transport = opt.transport
}

// WithCookieJar sets the cookie jar to use when making requests.
func WithCookieJar(jar http.CookieJar) Option {
	return &withCookieJar{
		jar: jar,
	}
}

type withCookieJar struct {
	jar http.CookieJar
}

func (opt withCookieJar) config(builder *managerBuilder) {
	builder.cookieJar = opt.jar
}

// WithRetryCount sets the number of times a request will be retried on
// transient failures (connection drops, 429).
func WithRetryCount(retryCount int) Option {
	return &withRetryCount{
		retryCount: retryCount,
	}
}

type withRetryCount struct {
	retryCount int
}

func (opt withRetryCount) config(builder *managerBuilder) {
	builder.retryCount = opt.retryCount
}

// WithLogger sets the logger the HTTP client logs to.
func WithLogger(logger resty.Logger) Option {
	return &withLogger{
		logger: logger,
	}
}

type withLogger struct {
	logger resty.Logger
}

func (opt withLogger) config(builder *managerBuilder) {
	builder.logger = opt.logger
}

// WithDebug sets whether debug information should be printed for requests/responses.
func WithDebug(debug bool) Option {
	return &withDebug{
		debug: debug,
	}
}

type withDebug struct {
	debug bool
}

func (opt withDebug) config(builder *managerBuilder) {
	builder.debug = opt.debug
}

// WithTANWaitPolicy sets the interval between confirmation polls and
// the number of polls before the TAN handshake gives up.
func WithTANWaitPolicy(interval time.Duration, maxAttempts int) Option {
	return &withTANWaitPolicy{
		policy: TANWaitPolicy{
			Interval:    interval,
			MaxAttempts: maxAttempts,
		},
	}
}

type withTANWaitPolicy struct {
	policy TANWaitPolicy
}

func (opt withTANWaitPolicy) config(builder *managerBuilder) {
	builder.tanWait = opt.policy
}

// WithTANNotify registers a callback invoked once a TAN challenge has
// been issued and out-of-band approval is required. Use this to tell
// the user to check their device; polling starts right after.
func WithTANNotify(notify func(TANChallenge)) Option {
	return &withTANNotify{
		notify: notify,
	}
}

type withTANNotify struct {
	notify func(TANChallenge)
}

func (opt withTANNotify) config(builder *managerBuilder) {
	builder.tanNotify = opt.notify
}

// WithDocumentPoolSize sets the number of parallel workers used when
// downloading several postbox documents at once.
func WithDocumentPoolSize(size int) Option {
	return &withDocumentPoolSize{
		size: size,
	}
}

type withDocumentPoolSize struct {
	size int
}

func (opt withDocumentPoolSize) config(builder *managerBuilder) {
	builder.docPoolSize = opt.size
}
