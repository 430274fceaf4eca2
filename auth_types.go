package comdirect

import (
	"encoding/json"
	"time"
)

// ScopeSessionRW is the scope requested for the primary token. It
// permits session management only; banking/brokerage access requires
// the secondary token.
const ScopeSessionRW = "SESSION_RW"

// expiryMargin is subtracted from expires_in so tokens are refreshed
// shortly before the server would reject them.
const expiryMargin = 30 * time.Second

// Auth is the result of one token exchange on /oauth/token.
type Auth struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope"`

	CustomerID        FlexStr `json:"kdnr"`
	BusinessPartnerID FlexStr `json:"bpid"`
	ContactID         FlexStr `json:"kontaktId"`
}

// expiresAt returns the moment at which the token should be considered
// expired, including the safety margin.
func (auth Auth) expiresAt() time.Time {
	return time.Now().Add(time.Duration(auth.ExpiresIn)*time.Second - expiryMargin)
}

// FlexStr decodes JSON strings and numbers alike. The token endpoint is
// not consistent about the wire type of the customer identifiers.
type FlexStr string

func (s *FlexStr) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}

	if len(b) > 0 && b[0] == '"' {
		var v string

		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}

		*s = FlexStr(v)

		return nil
	}

	var n json.Number

	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}

	*s = FlexStr(n.String())

	return nil
}

// AuthState is the authorization produced by one login flow. It is an
// explicit value passed between stages and into the client; nothing
// shares it implicitly. One AuthState belongs to one credential set.
type AuthState struct {
	// PrimaryToken is scoped for session management. After TAN
	// activation it also backs the secondary grant.
	PrimaryToken string

	// SessionToken is set once the session TAN has been activated.
	SessionToken string

	// BankingToken is scoped for banking/brokerage reads. It is never
	// refreshed on its own: after a primary refresh it must be derived
	// again with a fresh secondary grant.
	BankingToken string

	RefreshToken string
	ExpiresAt    time.Time
	Scope        string

	CustomerID        string
	BusinessPartnerID string
	ContactID         string

	SessionID string
}

// Expired reports whether the primary token has passed its (margin
// adjusted) expiry.
func (state AuthState) Expired() bool {
	return !time.Now().Before(state.ExpiresAt)
}

// withAuth applies a password or refresh grant result.
func (state AuthState) withAuth(auth Auth) AuthState {
	state.PrimaryToken = auth.AccessToken
	state.RefreshToken = auth.RefreshToken
	state.ExpiresAt = auth.expiresAt()
	state.Scope = auth.Scope
	state.CustomerID = string(auth.CustomerID)
	state.BusinessPartnerID = string(auth.BusinessPartnerID)
	state.ContactID = string(auth.ContactID)

	return state
}

// withBanking applies a secondary (cd_secondary) grant result.
func (state AuthState) withBanking(auth Auth) AuthState {
	state.BankingToken = auth.AccessToken
	state.Scope = auth.Scope

	if auth.RefreshToken != "" {
		state.RefreshToken = auth.RefreshToken
	}

	return state
}

// withSession records the activated session.
func (state AuthState) withSession(session Session) AuthState {
	state.SessionID = session.ID
	state.SessionToken = state.PrimaryToken

	return state
}
