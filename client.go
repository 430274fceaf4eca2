package comdirect

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
)

// clientID is a unique identifier for a client.
var clientID uint64

// AuthHandler is given the new state whenever the client refreshed its
// tokens because the old ones expired.
type AuthHandler func(AuthState)

// Handler is a generic function that can be registered for a certain event (e.g. deauth).
type Handler func()

// Client performs the authenticated banking/brokerage calls. It owns
// one AuthState and keeps it usable: when the primary token expires it
// is refreshed and, because the banking token cannot be refreshed on
// its own, the banking token is derived again with a fresh secondary
// grant.
type Client struct {
	m *Manager

	// clientID is this client's unique ID.
	clientID uint64

	state    AuthState
	authLock sync.RWMutex

	authHandlers   []AuthHandler
	deauthHandlers []Handler
	hookLock       sync.RWMutex

	deauthOnce sync.Once
}

func newClient(m *Manager) *Client {
	return &Client{
		m:        m,
		clientID: atomic.AddUint64(&clientID, 1),
	}
}

func (c *Client) withAuth(state AuthState) *Client {
	c.state = state

	return c
}

// AuthState returns a copy of the client's current authorization state.
func (c *Client) AuthState() AuthState {
	c.authLock.RLock()
	defer c.authLock.RUnlock()

	return c.state
}

func (c *Client) AddAuthHandler(handler AuthHandler) {
	c.hookLock.Lock()
	defer c.hookLock.Unlock()

	c.authHandlers = append(c.authHandlers, handler)
}

func (c *Client) AddDeauthHandler(handler Handler) {
	c.hookLock.Lock()
	defer c.hookLock.Unlock()

	c.deauthHandlers = append(c.deauthHandlers, handler)
}

func (c *Client) AddPreRequestHook(hook resty.RequestMiddleware) {
	c.hookLock.Lock()
	defer c.hookLock.Unlock()

	c.m.rc.OnBeforeRequest(func(rc *resty.Client, r *resty.Request) error {
		if clientID, ok := ClientIDFromContext(r.Context()); !ok || clientID != c.clientID {
			return nil
		}

		return hook(rc, r)
	})
}

func (c *Client) AddPostRequestHook(hook resty.ResponseMiddleware) {
	c.hookLock.Lock()
	defer c.hookLock.Unlock()

	c.m.rc.OnAfterResponse(func(rc *resty.Client, r *resty.Response) error {
		if clientID, ok := ClientIDFromContext(r.Request.Context()); !ok || clientID != c.clientID {
			return nil
		}

		return hook(rc, r)
	})
}

// Close discards the client's local token and session state. The
// server-side session simply expires; nothing is persisted.
func (c *Client) Close() {
	c.authLock.Lock()
	defer c.authLock.Unlock()

	c.state = AuthState{}

	c.hookLock.Lock()
	defer c.hookLock.Unlock()

	c.authHandlers = nil
	c.deauthHandlers = nil
}

func (c *Client) do(ctx context.Context, fn func(*resty.Request) (*resty.Response, error)) error {
	if _, err := c.doRes(ctx, fn); err != nil {
		return err
	}

	return nil
}

func (c *Client) doRes(ctx context.Context, fn func(*resty.Request) (*resty.Response, error)) (*resty.Response, error) {
	c.hookLock.RLock()
	defer c.hookLock.RUnlock()

	req, err := c.newReq(ctx)
	if err != nil {
		return nil, err
	}

	// Perform the request.
	res, err := fn(req)

	// If we receive no response, we can't do anything.
	if res.RawResponse == nil {
		return nil, fmt.Errorf("received no response from API: %w", err)
	}

	// If we receive a 401, notify deauth handlers.
	if res.StatusCode() == http.StatusUnauthorized {
		c.deauthOnce.Do(func() {
			for _, handler := range c.deauthHandlers {
				handler()
			}
		})
	}

	return res, err
}

func (c *Client) newReq(ctx context.Context) (*resty.Request, error) {
	c.authLock.Lock()
	defer c.authLock.Unlock()

	r := c.m.r(WithClient(ctx, c.clientID))

	r.SetHeader(hdrRequestInfo, newRequestInfo(c.state.SessionID))

	if time.Now().After(c.state.ExpiresAt) {
		auth, err := c.m.RefreshAuth(ctx, c.state.RefreshToken)
		if err != nil {
			return nil, err
		}

		c.state = c.state.withAuth(auth)

		// The refresh only renews the primary token. A banking token
		// issued for the old primary token is stale now and must be
		// derived again.
		if c.state.BankingToken != "" {
			secondary, err := c.m.SecondaryGrant(ctx, c.state.PrimaryToken)
			if err != nil {
				return nil, err
			}

			c.state = c.state.withBanking(secondary)
		}

		if err := c.handleAuth(c.state); err != nil {
			return nil, err
		}
	}

	if c.state.BankingToken != "" {
		r.SetAuthToken(c.state.BankingToken)
	} else if c.state.PrimaryToken != "" {
		r.SetAuthToken(c.state.PrimaryToken)
	}

	return r, nil
}

func (c *Client) handleAuth(state AuthState) error {
	c.hookLock.RLock()
	defer c.hookLock.RUnlock()

	for _, handler := range c.authHandlers {
		handler(state)
	}

	return nil
}
