package docstore

import (
	"context"

	"github.com/imroc/req/v3"
)

const (
	v1Documents       = "/api/v1/documents"
	v1DocumentContent = "/api/v1/documents/{id}/content"
)

type DocumentsAPI struct {
	client *req.Client
}

func newDocumentsAPI(client *req.Client) *DocumentsAPI {
	return &DocumentsAPI{
		client: client,
	}
}

// Create creates a document under the given parent folder.
func (d *DocumentsAPI) Create(ctx context.Context, params *CreateDocumentParams) (doc *Node, err error) {
	resp, err := d.client.R().
		SetContext(ctx).
		SetBody(params).
		SetSuccessResult(&doc).
		Post(v1Documents)

	if err := handleAPIError(resp, err, "document create"); err != nil {
		return nil, err
	}

	return doc, nil
}

// Replace swaps the entire document body for the given content. The
// store drops every existing section before inserting the new content,
// so the document ends up exactly mirroring the payload. Partial merges
// are not supported.
func (d *DocumentsAPI) Replace(ctx context.Context, id string, params *ReplaceContentParams) error {
	resp, err := d.client.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetBody(params).
		Put(v1DocumentContent)

	return handleAPIError(resp, err, "document replace")
}
