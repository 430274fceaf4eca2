package comdirect

import (
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// Sentinel errors returned when a call is attempted before its
// prerequisite token or session is available. No HTTP request is issued
// in these cases.
var (
	ErrNoCredentials  = errors.New("no credentials provided")
	ErrNoPrimaryToken = errors.New("no primary access token available, authenticate first")
	ErrNoRefreshToken = errors.New("no refresh token available, authenticate first")
	ErrNoBankingToken = errors.New("no banking access token available, request secondary access first")
	ErrNoSession      = errors.New("no session established")
)

// APIError is returned when the API answers with a non-2xx status.
// The token endpoint reports OAuth error codes; other endpoints usually
// leave them empty.
type APIError struct {
	Status  int
	Code    string `json:"error"`
	Message string `json:"error_description"`
}

func (err *APIError) Error() string {
	if err.Code != "" {
		return fmt.Sprintf("%v: %v (%v)", err.Status, err.Code, err.Message)
	}

	return fmt.Sprintf("%v: %v", err.Status, http.StatusText(err.Status))
}

// ProtocolError indicates that a response violates the expected API
// contract: a missing or malformed x-once-authentication-info header, a
// challenge without id or link, an empty session list, or an unexpected
// terminal TAN status. These are never retried.
type ProtocolError struct {
	Reason string
	Err    error
}

func (err *ProtocolError) Error() string {
	if err.Err != nil {
		return fmt.Sprintf("%v: %v", err.Reason, err.Err)
	}

	return err.Reason
}

func (err *ProtocolError) Unwrap() error {
	return err.Err
}

// TANTimeoutError is returned when TAN polling gives up: either the
// configured attempts were exhausted without a terminal status, or the
// challenge expired server-side (404 on the polling endpoint).
type TANTimeoutError struct {
	Attempts int
	Elapsed  time.Duration
	Expired  bool
}

func (err *TANTimeoutError) Error() string {
	if err.Expired {
		return fmt.Sprintf("TAN challenge expired after %d attempt(s) (%v)", err.Attempts, err.Elapsed)
	}

	return fmt.Sprintf("TAN confirmation timed out after %d attempt(s) (%v)", err.Attempts, err.Elapsed)
}

func catchAPIError(_ *resty.Client, res *resty.Response) error {
	if !res.IsError() {
		return nil
	}

	if apiErr, ok := res.Error().(*APIError); ok && apiErr != nil {
		apiErr.Status = res.StatusCode()
		return apiErr
	}

	return &APIError{Status: res.StatusCode()}
}

// nolint:gosec
func catchRetryAfter(_ *resty.Client, res *resty.Response) (time.Duration, error) {
	// 0 and no error means default behaviour which is exponential backoff with jitter.
	if res.StatusCode() != http.StatusTooManyRequests {
		return 0, nil
	}

	// Parse the Retry-After header, or fallback to 10 seconds.
	after, err := strconv.Atoi(res.Header().Get("Retry-After"))
	if err != nil {
		after = 10
	}

	// Add some jitter to the delay.
	after += rand.Intn(10)

	logrus.WithFields(logrus.Fields{
		"pkg":    "go-comdirect",
		"status": res.StatusCode(),
		"url":    res.Request.URL,
		"method": res.Request.Method,
		"after":  after,
	}).Warn("Too many requests, retrying after delay")

	return time.Duration(after) * time.Second, nil
}

func catchTooManyRequests(res *resty.Response, _ error) bool {
	return res.StatusCode() == http.StatusTooManyRequests
}

func catchDialError(res *resty.Response, err error) bool {
	return res.RawResponse == nil
}
