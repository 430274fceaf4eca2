package comdirect

import (
	"context"

	"github.com/go-resty/resty/v2"
)

// GetDepots returns all securities depots.
func (c *Client) GetDepots(ctx context.Context) (Depots, error) {
	var res Depots

	if err := c.do(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.SetResult(&res).Get("/api/brokerage/clients/user/v3/depots")
	}); err != nil {
		return Depots{}, err
	}

	return res, nil
}

// GetDepotPositions returns the holdings of one depot, including the
// aggregated depot totals and instrument data.
func (c *Client) GetDepotPositions(ctx context.Context, depotID string) (DepotPositions, error) {
	var res DepotPositions

	if err := c.do(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.
			SetQueryParam("with-attr", "instrument").
			SetResult(&res).
			Get("/api/brokerage/v3/depots/" + depotID + "/positions")
	}); err != nil {
		return DepotPositions{}, err
	}

	return res, nil
}

// GetDepotTransactions returns the bookings of one depot.
func (c *Client) GetDepotTransactions(ctx context.Context, depotID string, filter TransactionFilter) (DepotTransactions, error) {
	var res DepotTransactions

	if err := c.do(ctx, func(r *resty.Request) (*resty.Response, error) {
		if filter.BookingStatus != "" {
			r.SetQueryParam("bookingStatus", filter.BookingStatus)
		}

		return r.SetResult(&res).Get("/api/brokerage/v3/depots/" + depotID + "/transactions")
	}); err != nil {
		return DepotTransactions{}, err
	}

	return res, nil
}
