package comdirect

import (
	"context"
	"strconv"

	"github.com/go-resty/resty/v2"
)

// GetAccountBalances returns the balances of all accounts.
func (c *Client) GetAccountBalances(ctx context.Context) (AccountBalances, error) {
	var res AccountBalances

	if err := c.do(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.SetResult(&res).Get("/api/banking/clients/user/v2/accounts/balances")
	}); err != nil {
		return AccountBalances{}, err
	}

	return res, nil
}

// GetAccountBalance returns the balance of a single account.
func (c *Client) GetAccountBalance(ctx context.Context, accountID string) (AccountBalance, error) {
	var res AccountBalance

	if err := c.do(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.SetResult(&res).Get("/api/banking/v2/accounts/" + accountID + "/balances")
	}); err != nil {
		return AccountBalance{}, err
	}

	return res, nil
}

// TransactionFilter narrows a transaction listing.
type TransactionFilter struct {
	// BookingStatus filters by BOOKED/NOTBOOKED/BOTH; empty means BOTH.
	BookingStatus string

	// PagingFirst is the index of the first entry to return.
	PagingFirst int
}

// GetAccountTransactions returns the bookings of one account, newest first.
func (c *Client) GetAccountTransactions(ctx context.Context, accountID string, filter TransactionFilter) (AccountTransactions, error) {
	var res AccountTransactions

	if err := c.do(ctx, func(r *resty.Request) (*resty.Response, error) {
		if filter.BookingStatus != "" {
			r.SetQueryParam("transactionState", filter.BookingStatus)
		}

		if filter.PagingFirst > 0 {
			r.SetQueryParam("paging-first", strconv.Itoa(filter.PagingFirst))
		}

		return r.SetResult(&res).Get("/api/banking/v1/accounts/" + accountID + "/transactions")
	}); err != nil {
		return AccountTransactions{}, err
	}

	return res, nil
}
