package backend

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/finzlab/go-comdirect"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// nolint:gosec
func newDigits(n int) string {
	var sb strings.Builder

	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "%d", rand.Intn(10))
	}

	return sb.String()
}

func eur(value string) comdirect.AmountValue {
	return comdirect.AmountValue{
		Value: decimal.RequireFromString(value),
		Unit:  "EUR",
	}
}

func pieces(value string) comdirect.AmountValue {
	return comdirect.AmountValue{
		Value: decimal.RequireFromString(value),
		Unit:  "XXX",
	}
}

// seedData fills a fresh account with one giro account, one depot with
// two positions, a handful of bookings and two postbox documents.
func seedData(acc *account) {
	accountID := uuid.NewString()

	giro := comdirect.Account{
		AccountID:        accountID,
		AccountDisplayID: newDigits(10),
		Currency:         "EUR",
		ClientID:         acc.userID,
		AccountType:      comdirect.EnumText{Key: "CA", Text: "Girokonto"},
		IBAN:             "DE75512108001245126199",
		BIC:              "COBADEHD055",
		CreditLimit:      eur("500"),
	}

	acc.balances = []comdirect.AccountBalance{{
		Account:                giro,
		AccountID:              accountID,
		Balance:                eur("1234.56"),
		BalanceEUR:             eur("1234.56"),
		AvailableCashAmount:    eur("1734.56"),
		AvailableCashAmountEUR: eur("1734.56"),
	}}

	acc.transactions[accountID] = []comdirect.AccountTransaction{
		{
			Reference:       newDigits(12),
			BookingStatus:   comdirect.BookingStatusBooked,
			BookingDate:     "2023-02-01",
			Amount:          eur("-42.23"),
			Creditor:        &comdirect.AccountParty{HolderName: "Stadtwerke", IBAN: "DE02120300000000202051", BIC: "BYLADEM1001"},
			ValutaDate:      "2023-02-01",
			RemittanceInfo:  "Abschlag Strom",
			TransactionType: comdirect.EnumText{Key: "DIRECT_DEBIT", Text: "Lastschrift"},
		},
		{
			Reference:       newDigits(12),
			BookingStatus:   comdirect.BookingStatusNotBooked,
			BookingDate:     "2023-02-03",
			Amount:          eur("2500.00"),
			Remitter:        &comdirect.AccountParty{HolderName: "ACME GmbH"},
			ValutaDate:      "2023-02-03",
			NewTransaction:  true,
			RemittanceInfo:  "Gehalt",
			TransactionType: comdirect.EnumText{Key: "TRANSFER", Text: "Überweisung"},
		},
	}

	depotID := uuid.NewString()

	depot := comdirect.Depot{
		DepotID:                    depotID,
		DepotDisplayID:             newDigits(10),
		ClientID:                   acc.userID,
		DepotType:                  "STANDARD_DEPOT",
		DefaultSettlementAccountID: accountID,
		SettlementAccountIDs:       []string{accountID},
		TargetMarket:               "DE",
	}

	acc.depots = []comdirect.Depot{depot}

	msci := comdirect.Instrument{
		InstrumentID: uuid.NewString(),
		WKN:          "A1JX52",
		ISIN:         "IE00B3RBWM25",
		Mnemonic:     "VWRL",
		Name:         "Vanguard FTSE All-World UCITS ETF",
		ShortName:    "VANG.FTSE A.-WO.U.ETF DLD",
		StaticData:   &comdirect.StaticData{Notation: "piece", Currency: "EUR", InstrumentType: "FUND"},
	}

	bond := comdirect.Instrument{
		InstrumentID: uuid.NewString(),
		WKN:          "110243",
		ISIN:         "DE0001102432",
		Name:         "Bundesrep.Deutschland Anl.v.2017",
		ShortName:    "BUND 17/27",
		StaticData:   &comdirect.StaticData{Notation: "percent", Currency: "EUR", InstrumentType: "BOND"},
	}

	acc.instruments[msci.InstrumentID] = msci
	acc.instruments[bond.InstrumentID] = bond

	acc.positions[depotID] = []comdirect.DepotPosition{
		{
			DepotID:           depotID,
			PositionID:        uuid.NewString(),
			WKN:               msci.WKN,
			Quantity:          pieces("120"),
			AvailableQuantity: pieces("120"),
			CurrentPrice:      comdirect.Price{Price: eur("104.62"), PriceDateTime: time.Now().Format(time.RFC3339)},
			PurchasePrice:     eur("91.10"),
			CurrentValue:      eur("12554.40"),
			PurchaseValue:     eur("10932.00"),
			Instrument:        &msci,
		},
		{
			DepotID:           depotID,
			PositionID:        uuid.NewString(),
			WKN:               bond.WKN,
			Quantity:          pieces("50"),
			AvailableQuantity: pieces("50"),
			CurrentPrice:      comdirect.Price{Price: eur("96.22"), PriceDateTime: time.Now().Format(time.RFC3339)},
			PurchasePrice:     eur("98.91"),
			CurrentValue:      eur("4811.00"),
			PurchaseValue:     eur("4945.50"),
			Instrument:        &bond,
		},
	}

	acc.depotTx[depotID] = []comdirect.DepotTransaction{{
		TransactionID:        uuid.NewString(),
		BookingStatus:        comdirect.BookingStatusBooked,
		BookingDate:          "2023-01-16",
		BusinessDate:         "2023-01-14",
		Quantity:             pieces("10"),
		InstrumentID:         msci.InstrumentID,
		Instrument:           &msci,
		ExecutionPrice:       eur("101.20"),
		TransactionValue:     eur("1012.00"),
		TransactionDirection: "IN",
		TransactionType:      "BUY",
	}}

	acc.documents = []comdirect.Document{
		{
			DocumentID:   strings.ReplaceAll(uuid.NewString(), "-", ""),
			Name:         "Finanzreport Nr. 01",
			DateCreation: "2023-01-05",
			MimeType:     "application/pdf",
			Metadata:     &comdirect.DocumentMetadata{},
		},
		{
			DocumentID:   strings.ReplaceAll(uuid.NewString(), "-", ""),
			Name:         "Steuermitteilung",
			DateCreation: "2023-01-20",
			MimeType:     "application/pdf",
			Deletable:    true,
			Metadata:     &comdirect.DocumentMetadata{AlreadyRead: true, DateRead: "2023-01-21"},
		},
	}

	for _, doc := range acc.documents {
		acc.docData[doc.DocumentID] = []byte("%PDF-1.4 " + doc.Name)
	}
}
