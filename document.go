package comdirect

import (
	"context"
	"strconv"

	"github.com/go-resty/resty/v2"
)

// GetDocuments lists the postbox documents, newest first.
func (c *Client) GetDocuments(ctx context.Context, first, count int) (Documents, error) {
	var res Documents

	if err := c.do(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.
			SetQueryParam("paging-first", strconv.Itoa(first)).
			SetQueryParam("paging-count", strconv.Itoa(count)).
			SetResult(&res).
			Get("/api/messages/clients/user/v2/documents")
	}); err != nil {
		return Documents{}, err
	}

	return res, nil
}

// GetDocumentBlob downloads the content of one document. The Accept
// header must name the document's native mime type or the API answers 406.
func (c *Client) GetDocumentBlob(ctx context.Context, document Document) ([]byte, error) {
	res, err := c.doRes(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.
			SetHeader("Accept", document.MimeType).
			Get("/api/messages/v2/documents/" + document.DocumentID)
	})
	if err != nil {
		return nil, err
	}

	return res.Body(), nil
}

// GetDocumentBlobs downloads several documents in parallel, bounded by
// the manager's document pool size. Results keep the input order.
func (c *Client) GetDocumentBlobs(ctx context.Context, documents []Document) ([][]byte, error) {
	return newPool(c.m.docPoolSize, c.GetDocumentBlob).Process(ctx, documents)
}
