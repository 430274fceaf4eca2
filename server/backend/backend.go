// Package backend holds the state of the fake comdirect API server:
// user accounts, issued tokens, sessions, TAN challenges and the seeded
// banking/brokerage/postbox data.
package backend

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/finzlab/go-comdirect"
	"github.com/google/uuid"
)

// Token scopes issued by the fake token endpoint.
const (
	scopeSession = "SESSION_RW"
	scopeBanking = "BANKING_RW BROKERAGE_RW MESSAGES_RO"
)

type Backend struct {
	accounts map[string]*account
	accLock  sync.RWMutex

	tokens  map[string]*token
	tokLock sync.RWMutex

	sessions map[string]*session
	sesLock  sync.RWMutex

	challenges map[string]*challenge
	chaLock    sync.RWMutex

	authLife time.Duration

	// tanPendingPolls is how many PENDING answers a challenge gives
	// before it reports its terminal status.
	tanPendingPolls int

	// tanStatus is the terminal status a challenge reports once it is
	// past its pending polls.
	tanStatus string

	// tanExpired makes the polling endpoint answer 404 for every
	// challenge, as the real API does once a challenge timed out.
	tanExpired bool
}

type account struct {
	userID   string
	username string
	password string

	customerID        string
	businessPartnerID string
	contactID         string

	balances     []comdirect.AccountBalance
	transactions map[string][]comdirect.AccountTransaction

	depots    []comdirect.Depot
	positions map[string][]comdirect.DepotPosition
	depotTx   map[string][]comdirect.DepotTransaction

	instruments map[string]comdirect.Instrument

	documents []comdirect.Document
	docData   map[string][]byte
}

type token struct {
	value   string
	refresh string
	userID  string
	scope   string
	expires time.Time

	// tanActivated is set once the session TAN handshake finished for
	// this token; only then is the cd_secondary grant allowed.
	tanActivated bool
}

type session struct {
	id     string
	userID string

	tanActive   bool
	activated2F bool
}

type challenge struct {
	id        string
	sessionID string

	polls int
}

func New(authLife time.Duration) *Backend {
	return &Backend{
		accounts:   make(map[string]*account),
		tokens:     make(map[string]*token),
		sessions:   make(map[string]*session),
		challenges: make(map[string]*challenge),

		authLife:  authLife,
		tanStatus: comdirect.TANStatusAuthenticated,
	}
}

func (b *Backend) SetAuthLife(authLife time.Duration) {
	b.authLife = authLife
}

func (b *Backend) SetTANPendingPolls(polls int) {
	b.chaLock.Lock()
	defer b.chaLock.Unlock()

	b.tanPendingPolls = polls
}

func (b *Backend) SetTANStatus(status string) {
	b.chaLock.Lock()
	defer b.chaLock.Unlock()

	b.tanStatus = status
}

func (b *Backend) SetTANExpired(expired bool) {
	b.chaLock.Lock()
	defer b.chaLock.Unlock()

	b.tanExpired = expired
}

// CreateUser registers an account and seeds it with sample banking,
// brokerage and postbox data.
func (b *Backend) CreateUser(username, password string) (string, error) {
	b.accLock.Lock()
	defer b.accLock.Unlock()

	for _, acc := range b.accounts {
		if acc.username == username {
			return "", fmt.Errorf("user %s already exists", username)
		}
	}

	userID := uuid.NewString()

	acc := newAccount(userID, username, password)

	seedData(acc)

	b.accounts[userID] = acc

	return userID, nil
}

func newAccount(userID, username, password string) *account {
	return &account{
		userID:   userID,
		username: username,
		password: password,

		customerID:        newDigits(8),
		businessPartnerID: newDigits(10),
		contactID:         newDigits(10),

		transactions: make(map[string][]comdirect.AccountTransaction),
		positions:    make(map[string][]comdirect.DepotPosition),
		depotTx:      make(map[string][]comdirect.DepotTransaction),
		instruments:  make(map[string]comdirect.Instrument),
		docData:      make(map[string][]byte),
	}
}

// NewAuth performs the password grant.
func (b *Backend) NewAuth(username, password string) (comdirect.Auth, error) {
	b.accLock.RLock()
	defer b.accLock.RUnlock()

	for _, acc := range b.accounts {
		if acc.username == username && acc.password == password {
			return b.issueToken(acc, scopeSession, false), nil
		}
	}

	return comdirect.Auth{}, fmt.Errorf("invalid credentials")
}

// RefreshAuth performs the refresh_token grant. The new primary token
// loses any TAN activation; the banking token has to be derived again.
func (b *Backend) RefreshAuth(refreshToken string) (comdirect.Auth, error) {
	b.tokLock.Lock()

	var found *token

	for _, tok := range b.tokens {
		if tok.refresh == refreshToken {
			found = tok
			break
		}
	}

	b.tokLock.Unlock()

	if found == nil {
		return comdirect.Auth{}, fmt.Errorf("unknown refresh token")
	}

	b.accLock.RLock()
	acc := b.accounts[found.userID]
	b.accLock.RUnlock()

	return b.issueToken(acc, scopeSession, found.tanActivated), nil
}

// SecondaryAuth performs the cd_secondary grant. It requires a primary
// token whose session TAN handshake has completed.
func (b *Backend) SecondaryAuth(primaryToken string) (comdirect.Auth, error) {
	b.tokLock.RLock()
	tok, ok := b.tokens[primaryToken]
	b.tokLock.RUnlock()

	if !ok || time.Now().After(tok.expires) {
		return comdirect.Auth{}, fmt.Errorf("unknown or expired token")
	}

	if !tok.tanActivated {
		return comdirect.Auth{}, fmt.Errorf("session TAN not activated")
	}

	b.accLock.RLock()
	acc := b.accounts[tok.userID]
	b.accLock.RUnlock()

	return b.issueToken(acc, scopeBanking, true), nil
}

func (b *Backend) issueToken(acc *account, scope string, tanActivated bool) comdirect.Auth {
	b.tokLock.Lock()
	defer b.tokLock.Unlock()

	tok := &token{
		value:        uuid.NewString(),
		refresh:      uuid.NewString(),
		userID:       acc.userID,
		scope:        scope,
		expires:      time.Now().Add(b.authLife),
		tanActivated: tanActivated,
	}

	b.tokens[tok.value] = tok

	return comdirect.Auth{
		AccessToken:  tok.value,
		RefreshToken: tok.refresh,
		ExpiresIn:    int(b.authLife / time.Second),
		Scope:        scope,

		CustomerID:        comdirect.FlexStr(acc.customerID),
		BusinessPartnerID: comdirect.FlexStr(acc.businessPartnerID),
		ContactID:         comdirect.FlexStr(acc.contactID),
	}
}

// RevokeTokens invalidates every token issued so far.
func (b *Backend) RevokeTokens() {
	b.tokLock.Lock()
	defer b.tokLock.Unlock()

	b.tokens = make(map[string]*token)
}

// VerifyToken resolves a bearer token. Banking routes additionally
// require the banking scope.
func (b *Backend) VerifyToken(value string, needBanking bool) (string, error) {
	b.tokLock.RLock()
	defer b.tokLock.RUnlock()

	tok, ok := b.tokens[value]
	if !ok {
		return "", fmt.Errorf("unknown token")
	}

	if time.Now().After(tok.expires) {
		return "", fmt.Errorf("token expired")
	}

	if needBanking && !strings.Contains(tok.scope, "BANKING") {
		return "", fmt.Errorf("token lacks banking scope")
	}

	return tok.userID, nil
}

// GetSessions returns the session list for the token's user, creating
// the canonical session on first call.
func (b *Backend) GetSessions(userID string) []comdirect.Session {
	b.sesLock.Lock()
	defer b.sesLock.Unlock()

	for _, ses := range b.sessions {
		if ses.userID == userID {
			return []comdirect.Session{{ID: ses.id, TANActive: ses.tanActive, TwoFAActive: ses.activated2F}}
		}
	}

	ses := &session{
		id:     strings.ReplaceAll(uuid.NewString(), "-", ""),
		userID: userID,
	}

	b.sessions[ses.id] = ses

	return []comdirect.Session{{ID: ses.id}}
}

// NewChallenge issues a TAN challenge for the session.
func (b *Backend) NewChallenge(sessionID, userID string) (string, error) {
	b.sesLock.RLock()
	ses, ok := b.sessions[sessionID]
	b.sesLock.RUnlock()

	if !ok || ses.userID != userID {
		return "", fmt.Errorf("unknown session %s", sessionID)
	}

	b.chaLock.Lock()
	defer b.chaLock.Unlock()

	cha := &challenge{
		id:        newDigits(9),
		sessionID: sessionID,
	}

	b.challenges[cha.id] = cha

	return cha.id, nil
}

// PollChallenge reports the confirmation status of a challenge. The
// second return value is false when the challenge is gone (expired).
func (b *Backend) PollChallenge(challengeID string) (string, bool) {
	b.chaLock.Lock()
	defer b.chaLock.Unlock()

	cha, ok := b.challenges[challengeID]
	if !ok || b.tanExpired {
		return "", false
	}

	cha.polls++

	if cha.polls <= b.tanPendingPolls {
		return comdirect.TANStatusPending, true
	}

	return b.tanStatus, true
}

// ActivateSession finishes the TAN handshake: the challenge must exist,
// belong to the session, and have been confirmed.
func (b *Backend) ActivateSession(sessionID, challengeID, tokenValue string) (comdirect.Session, error) {
	b.chaLock.Lock()
	cha, ok := b.challenges[challengeID]

	confirmed := ok && cha.sessionID == sessionID && cha.polls > b.tanPendingPolls && b.tanStatus == comdirect.TANStatusAuthenticated

	// The challenge is single-use; drop it regardless of the outcome.
	delete(b.challenges, challengeID)
	b.chaLock.Unlock()

	if !confirmed {
		return comdirect.Session{}, fmt.Errorf("challenge %s is not confirmed for session %s", challengeID, sessionID)
	}

	b.sesLock.Lock()
	ses := b.sessions[sessionID]
	ses.tanActive = true
	ses.activated2F = true
	b.sesLock.Unlock()

	b.tokLock.Lock()
	if tok, ok := b.tokens[tokenValue]; ok {
		tok.tanActivated = true
	}
	b.tokLock.Unlock()

	return comdirect.Session{ID: sessionID, TANActive: true, TwoFAActive: true}, nil
}

func (b *Backend) withAccount(userID string, fn func(*account) error) error {
	b.accLock.RLock()
	defer b.accLock.RUnlock()

	acc, ok := b.accounts[userID]
	if !ok {
		return fmt.Errorf("user %s does not exist", userID)
	}

	return fn(acc)
}

// GetAccountBalances returns all balances of the user.
func (b *Backend) GetAccountBalances(userID string) (comdirect.AccountBalances, error) {
	var res comdirect.AccountBalances

	err := b.withAccount(userID, func(acc *account) error {
		res = comdirect.AccountBalances{
			Paging: comdirect.Paging{Matches: len(acc.balances)},
			Values: acc.balances,
		}

		return nil
	})

	return res, err
}

// GetAccountBalance returns the balance of one account.
func (b *Backend) GetAccountBalance(userID, accountID string) (comdirect.AccountBalance, error) {
	var res comdirect.AccountBalance

	err := b.withAccount(userID, func(acc *account) error {
		for _, balance := range acc.balances {
			if balance.AccountID == accountID {
				res = balance
				return nil
			}
		}

		return fmt.Errorf("account %s does not exist", accountID)
	})

	return res, err
}

// GetAccountTransactions returns the bookings of one account.
func (b *Backend) GetAccountTransactions(userID, accountID, bookingStatus string) (comdirect.AccountTransactions, error) {
	var res comdirect.AccountTransactions

	err := b.withAccount(userID, func(acc *account) error {
		all, ok := acc.transactions[accountID]
		if !ok {
			return fmt.Errorf("account %s does not exist", accountID)
		}

		var values []comdirect.AccountTransaction

		for _, tx := range all {
			if bookingStatus == "" || bookingStatus == comdirect.BookingStatusBoth || tx.BookingStatus == bookingStatus {
				values = append(values, tx)
			}
		}

		res = comdirect.AccountTransactions{
			Paging: comdirect.Paging{Matches: len(values)},
			Values: values,
		}

		return nil
	})

	return res, err
}

// GetDepots returns the user's depots.
func (b *Backend) GetDepots(userID string) (comdirect.Depots, error) {
	var res comdirect.Depots

	err := b.withAccount(userID, func(acc *account) error {
		res = comdirect.Depots{
			Paging: comdirect.Paging{Matches: len(acc.depots)},
			Values: acc.depots,
		}

		return nil
	})

	return res, err
}

// GetDepotPositions returns the holdings of one depot.
func (b *Backend) GetDepotPositions(userID, depotID string) (comdirect.DepotPositions, error) {
	var res comdirect.DepotPositions

	err := b.withAccount(userID, func(acc *account) error {
		positions, ok := acc.positions[depotID]
		if !ok {
			return fmt.Errorf("depot %s does not exist", depotID)
		}

		res = comdirect.DepotPositions{
			Paging: comdirect.Paging{Matches: len(positions)},
			Values: positions,
		}

		return nil
	})

	return res, err
}

// GetDepotTransactions returns the bookings of one depot.
func (b *Backend) GetDepotTransactions(userID, depotID string) (comdirect.DepotTransactions, error) {
	var res comdirect.DepotTransactions

	err := b.withAccount(userID, func(acc *account) error {
		transactions, ok := acc.depotTx[depotID]
		if !ok {
			return fmt.Errorf("depot %s does not exist", depotID)
		}

		res = comdirect.DepotTransactions{
			Paging: comdirect.Paging{Matches: len(transactions)},
			Values: transactions,
		}

		return nil
	})

	return res, err
}

// GetInstrument looks up one instrument.
func (b *Backend) GetInstrument(userID, instrumentID string) (comdirect.Instruments, error) {
	var res comdirect.Instruments

	err := b.withAccount(userID, func(acc *account) error {
		instrument, ok := acc.instruments[instrumentID]
		if !ok {
			return fmt.Errorf("instrument %s does not exist", instrumentID)
		}

		res = comdirect.Instruments{
			Paging: comdirect.Paging{Matches: 1},
			Values: []comdirect.Instrument{instrument},
		}

		return nil
	})

	return res, err
}

// GetDocuments returns a page of the user's postbox documents.
func (b *Backend) GetDocuments(userID string, first, count int) (comdirect.Documents, error) {
	var res comdirect.Documents

	err := b.withAccount(userID, func(acc *account) error {
		docs := acc.documents

		if first > len(docs) {
			first = len(docs)
		}

		last := len(docs)
		if count > 0 && first+count < last {
			last = first + count
		}

		res = comdirect.Documents{
			Paging: comdirect.Paging{Index: first, Matches: len(docs)},
			Values: docs[first:last],
		}

		return nil
	})

	return res, err
}

// GetDocumentBlob returns the content of one document.
func (b *Backend) GetDocumentBlob(userID, documentID string) ([]byte, error) {
	var res []byte

	err := b.withAccount(userID, func(acc *account) error {
		data, ok := acc.docData[documentID]
		if !ok {
			return fmt.Errorf("document %s does not exist", documentID)
		}

		res = data

		return nil
	})

	return res, err
}
