package docstore

import (
	"context"

	"github.com/imroc/req/v3"
)

const (
	v1Node = "/api/v1/nodes/{id}"
)

type NodesAPI struct {
	client *req.Client
}

func newNodesAPI(client *req.Client) *NodesAPI {
	return &NodesAPI{
		client: client,
	}
}

// Delete removes a node (folder or document). The store rejects
// deleting a non-empty folder, so callers must delete children first.
func (n *NodesAPI) Delete(ctx context.Context, id string) error {
	resp, err := n.client.R().
		SetContext(ctx).
		SetPathParam("id", id).
		Delete(v1Node)

	return handleAPIError(resp, err, "node delete")
}
