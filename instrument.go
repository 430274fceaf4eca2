package comdirect

import (
	"context"

	"github.com/go-resty/resty/v2"
)

// GetInstrument looks up a single instrument by its id, WKN or ISIN.
func (c *Client) GetInstrument(ctx context.Context, instrumentID string) (Instrument, error) {
	var res Instruments

	if err := c.do(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.SetResult(&res).Get("/api/brokerage/v1/instruments/" + instrumentID)
	}); err != nil {
		return Instrument{}, err
	}

	if len(res.Values) == 0 {
		return Instrument{}, &ProtocolError{Reason: "instrument lookup returned an empty list"}
	}

	return res.Values[0], nil
}
