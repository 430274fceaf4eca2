package comdirect

// Depot describes one securities depot.
type Depot struct {
	DepotID                    string   `json:"depotId"`
	DepotDisplayID             string   `json:"depotDisplayId"`
	ClientID                   string   `json:"clientId"`
	DepotType                  string   `json:"depotType"`
	DefaultSettlementAccountID string   `json:"defaultSettlementAccountId"`
	SettlementAccountIDs       []string `json:"settlementAccountIds"`
	TargetMarket               string   `json:"targetMarket"`
}

// Depots is the depot list response.
type Depots struct {
	Paging Paging  `json:"paging"`
	Values []Depot `json:"values"`
}

// DepotPosition is one holding inside a depot.
type DepotPosition struct {
	DepotID           string      `json:"depotId"`
	PositionID        string      `json:"positionId"`
	WKN               string      `json:"wkn"`
	Quantity          AmountValue `json:"quantity"`
	AvailableQuantity AmountValue `json:"availableQuantity"`
	CurrentPrice      Price       `json:"currentPrice"`
	PurchasePrice     AmountValue `json:"purchasePrice"`
	CurrentValue      AmountValue `json:"currentValue"`
	PurchaseValue     AmountValue `json:"purchaseValue"`
	Instrument        *Instrument `json:"instrument"`
}

// DepotPositions is the depot position list response, including the
// aggregated depot totals.
type DepotPositions struct {
	Paging     Paging          `json:"paging"`
	Aggregated *DepotAggregate `json:"aggregated"`
	Values     []DepotPosition `json:"values"`
}

// DepotAggregate carries depot-level totals.
type DepotAggregate struct {
	Depot                      Depot       `json:"depot"`
	PrevDayValue               AmountValue `json:"prevDayValue"`
	CurrentValue               AmountValue `json:"currentValue"`
	PurchaseValue              AmountValue `json:"purchaseValue"`
	ProfitLossPurchaseAbsolute AmountValue `json:"profitLossPurchaseAbs"`
}
