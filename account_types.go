package comdirect

import "github.com/shopspring/decimal"

// Paging is the index/matches pair the list endpoints return.
type Paging struct {
	Index   int `json:"index"`
	Matches int `json:"matches"`
}

// AmountValue is a monetary amount with its ISO 4217 unit. Values are
// decoded as decimals; the API serializes them as strings.
type AmountValue struct {
	Value decimal.Decimal `json:"value"`
	Unit  string          `json:"unit"`
}

// EnumText is a coded value with its display text.
type EnumText struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// Account describes one bank account.
type Account struct {
	AccountID        string      `json:"accountId"`
	AccountDisplayID string      `json:"accountDisplayId"`
	Currency         string      `json:"currency"`
	ClientID         string      `json:"clientId"`
	AccountType      EnumText    `json:"accountType"`
	IBAN             string      `json:"iban"`
	BIC              string      `json:"bic"`
	CreditLimit      AmountValue `json:"creditLimit"`
}

// AccountBalance is one balance entry.
type AccountBalance struct {
	Account                Account     `json:"account"`
	AccountID              string      `json:"accountId"`
	Balance                AmountValue `json:"balance"`
	BalanceEUR             AmountValue `json:"balanceEUR"`
	AvailableCashAmount    AmountValue `json:"availableCashAmount"`
	AvailableCashAmountEUR AmountValue `json:"availableCashAmountEUR"`
}

// AccountBalances is the balances list response.
type AccountBalances struct {
	Paging Paging           `json:"paging"`
	Values []AccountBalance `json:"values"`
}
