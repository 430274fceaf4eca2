package comdirect

// Session is the server-tracked correlation context required for TAN
// operations. It is created fresh for every login flow and never
// persisted.
type Session struct {
	// ID is generated locally for the first status call and replaced by
	// the canonical identifier the server returns.
	ID string `json:"identifier"`

	TANActive   bool `json:"sessionTanActive"`
	TwoFAActive bool `json:"activated2FA"`
}

// sessionChangeReq is the body of the TAN validate and activate calls.
type sessionChangeReq struct {
	Identifier   string `json:"identifier"`
	TANActive    bool   `json:"sessionTanActive"`
	Activated2FA bool   `json:"activated2FA,omitempty"`
}
