package comdirect

// Price is a quote with its timestamp.
type Price struct {
	Price         AmountValue `json:"price"`
	PriceDateTime string      `json:"priceDateTime"`
}

// StaticData is the static part of an instrument.
type StaticData struct {
	Notation       string `json:"notation"`
	Currency       string `json:"currency"`
	InstrumentType string `json:"instrumentType"`
}

// Instrument describes a tradable security.
type Instrument struct {
	InstrumentID string      `json:"instrumentId"`
	WKN          string      `json:"wkn"`
	ISIN         string      `json:"isin"`
	Mnemonic     string      `json:"mnemonic"`
	Name         string      `json:"name"`
	ShortName    string      `json:"shortName"`
	StaticData   *StaticData `json:"staticData"`
}

// Instruments is the instrument list response.
type Instruments struct {
	Paging Paging       `json:"paging"`
	Values []Instrument `json:"values"`
}
