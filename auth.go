package comdirect

import "context"

const tokenPath = "/oauth/token"

// PasswordGrant performs the OAuth2 password grant and returns the
// primary token. The scope defaults to ScopeSessionRW when empty.
func (m *Manager) PasswordGrant(ctx context.Context, username, password, scope string) (Auth, error) {
	if username == "" || password == "" {
		return Auth{}, ErrNoCredentials
	}

	if scope == "" {
		scope = ScopeSessionRW
	}

	return m.tokenExchange(ctx, map[string]string{
		"grant_type": "password",
		"username":   username,
		"password":   password,
		"scope":      scope,
	})
}

// RefreshAuth exchanges a refresh token for a new primary token. The
// banking token is not refreshed by this; it has to be derived again
// with SecondaryGrant once the primary token was renewed.
func (m *Manager) RefreshAuth(ctx context.Context, refreshToken string) (Auth, error) {
	if refreshToken == "" {
		return Auth{}, ErrNoRefreshToken
	}

	return m.tokenExchange(ctx, map[string]string{
		"grant_type":    "refresh_token",
		"refresh_token": refreshToken,
	})
}

// SecondaryGrant upgrades a session-TAN-activated primary token into a
// token scoped for banking/brokerage access (grant type cd_secondary).
func (m *Manager) SecondaryGrant(ctx context.Context, primaryToken string) (Auth, error) {
	if primaryToken == "" {
		return Auth{}, ErrNoPrimaryToken
	}

	return m.tokenExchange(ctx, map[string]string{
		"grant_type": "cd_secondary",
		"token":      primaryToken,
	})
}

func (m *Manager) tokenExchange(ctx context.Context, form map[string]string) (Auth, error) {
	form["client_id"] = m.clientID
	form["client_secret"] = m.clientSecret

	var auth Auth

	if _, err := m.r(ctx).SetFormData(form).SetResult(&auth).Post(tokenPath); err != nil {
		return Auth{}, err
	}

	return auth, nil
}
