package comdirect

import (
	"encoding/json"
	"time"
)

// TAN confirmation statuses reported by the polling endpoint. Anything
// else is treated as a terminal contract violation.
const (
	TANStatusAuthenticated = "AUTHENTICATED"
	TANStatusPending       = "PENDING"
	TANStatusActive        = "ACTIVE"
)

// TANType values seen in the wild.
const (
	TANTypePush   = "P_TAN_PUSH"
	TANTypePhoto  = "P_TAN"
	TANTypeMobile = "M_TAN"
)

// Link is a relative URL reference, resolved against the API host.
type Link struct {
	Href string `json:"href"`
}

// TANChallenge is a server-issued, time-bounded request for out-of-band
// confirmation. It is only valid between initiation and activation.
type TANChallenge struct {
	ID             string   `json:"id"`
	Type           string   `json:"typ"`
	AvailableTypes []string `json:"availableTypes"`

	// Link is polled for the confirmation status. The challenge payload
	// arrives in the x-once-authentication-info response header, not in
	// the response body.
	Link Link `json:"link"`
}

type tanStatus struct {
	Status string `json:"status"`
}

// onceAuthInfo is the request header payload carrying the challenge id
// on the activation call.
type onceAuthInfo struct {
	ID string `json:"id"`
}

// TANWaitPolicy bounds the confirmation polling loop.
type TANWaitPolicy struct {
	Interval    time.Duration
	MaxAttempts int
}

// parseTANHeader decodes the challenge metadata from the
// x-once-authentication-info response header. The challenge is NOT in
// the response body; a missing or defective header means the server
// speaks a different contract and is never retried.
func parseTANHeader(header string) (TANChallenge, error) {
	if header == "" {
		return TANChallenge{}, &ProtocolError{Reason: "missing " + hdrOnceAuthInfo + " header"}
	}

	var challenge TANChallenge

	if err := json.Unmarshal([]byte(header), &challenge); err != nil {
		return TANChallenge{}, &ProtocolError{Reason: "malformed " + hdrOnceAuthInfo + " header", Err: err}
	}

	if challenge.ID == "" {
		return TANChallenge{}, &ProtocolError{Reason: "TAN challenge has no id"}
	}

	if challenge.Link.Href == "" {
		return TANChallenge{}, &ProtocolError{Reason: "TAN challenge has no confirmation link"}
	}

	return challenge, nil
}
