package comdirect

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// hdrRequestInfo carries the request correlation payload expected on
	// every authenticated call.
	hdrRequestInfo = "x-http-request-info"

	// hdrOnceAuthInfo is the header side-channel used by the TAN
	// endpoints: challenge metadata on responses, the challenge id on
	// the activation request.
	hdrOnceAuthInfo = "x-once-authentication-info"
)

type clientKey struct{}

// WithClient marks the context as belonging to the client with the given ID.
func WithClient(ctx context.Context, clientID uint64) context.Context {
	return context.WithValue(ctx, clientKey{}, clientID)
}

// ClientIDFromContext returns the ID of the client the context belongs to, if any.
func ClientIDFromContext(ctx context.Context) (uint64, bool) {
	clientID, ok := ctx.Value(clientKey{}).(uint64)

	return clientID, ok
}

type clientRequestID struct {
	SessionID string `json:"sessionId"`
	RequestID string `json:"requestId"`
}

type requestInfo struct {
	ClientRequestID clientRequestID `json:"clientRequestId"`
}

// newRequestInfo builds the x-http-request-info value for one request:
// the session identifier plus a fresh timestamp-derived request id.
func newRequestInfo(sessionID string) string {
	b, err := json.Marshal(requestInfo{
		ClientRequestID: clientRequestID{
			SessionID: sessionID,
			RequestID: newRequestID(),
		},
	})
	if err != nil {
		panic(err)
	}

	return string(b)
}

// newRequestID returns a 9-digit request id as required by the API.
func newRequestID() string {
	return fmt.Sprintf("%09d", time.Now().UnixMilli()%1e9)
}

// newSessionID returns a locally generated 32-hex-character session
// identifier. It is replaced by the server's canonical identifier on
// the first session status call.
func newSessionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
