package comdirect

// Booking statuses of a transaction.
const (
	BookingStatusBooked    = "BOOKED"
	BookingStatusNotBooked = "NOTBOOKED"
	BookingStatusBoth      = "BOTH"
)

// AccountParty is the remitter/debtor/creditor of a transaction.
type AccountParty struct {
	HolderName string `json:"holderName"`
	IBAN       string `json:"iban"`
	BIC        string `json:"bic"`
}

// AccountTransaction is one booking on a bank account.
type AccountTransaction struct {
	Reference             string        `json:"reference"`
	BookingStatus         string        `json:"bookingStatus"`
	BookingDate           string        `json:"bookingDate"`
	Amount                AmountValue   `json:"amount"`
	Remitter              *AccountParty `json:"remitter"`
	Debtor                *AccountParty `json:"deptor"`
	Creditor              *AccountParty `json:"creditor"`
	ValutaDate            string        `json:"valutaDate"`
	DirectDebitCreditorID string        `json:"directDebitCreditorId"`
	DirectDebitMandateID  string        `json:"directDebitMandateId"`
	EndToEndReference     string        `json:"endToEndReference"`
	NewTransaction        bool          `json:"newTransaction"`
	RemittanceInfo        string        `json:"remittanceInfo"`
	TransactionType       EnumText      `json:"transactionType"`
}

// AccountTransactions is the account transaction list response.
type AccountTransactions struct {
	Paging Paging               `json:"paging"`
	Values []AccountTransaction `json:"values"`
}

// DepotTransaction is one booking on a securities depot.
type DepotTransaction struct {
	TransactionID        string      `json:"transactionId"`
	BookingStatus        string      `json:"bookingStatus"`
	BookingDate          string      `json:"bookingDate"`
	SettlementDate       string      `json:"settlementDate"`
	BusinessDate         string      `json:"businessDate"`
	Quantity             AmountValue `json:"quantity"`
	InstrumentID         string      `json:"instrumentId"`
	Instrument           *Instrument `json:"instrument"`
	ExecutionPrice       AmountValue `json:"executionPrice"`
	TransactionValue     AmountValue `json:"transactionValue"`
	TransactionDirection string      `json:"transactionDirection"`
	TransactionType      string      `json:"transactionType"`
}

// DepotTransactions is the depot transaction list response.
type DepotTransactions struct {
	Paging Paging             `json:"paging"`
	Values []DepotTransaction `json:"values"`
}
