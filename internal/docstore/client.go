package docstore

import (
	"context"
	"time"

	"github.com/docpush/docpush/internal/version"
	"github.com/imroc/req/v3"
)

const (
	HeaderUserAgent = "User-Agent"
)

// Client is the document-store API client. Retry and rate-limit policy
// live with the caller (sync.Mutator), so the transport itself does not
// retry.
type Client struct {
	http      *req.Client
	baseURL   string
	Folders   *FoldersAPI
	Documents *DocumentsAPI
	Nodes     *NodesAPI
}

// New creates a new document-store client for the given API base URL.
func New(baseURL string) (*Client, error) {
	if baseURL == "" {
		return nil, ErrNoBaseURL
	}

	http := req.C().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetCommonRetryCount(0).
		SetCommonHeader(HeaderUserAgent, "DocPush/"+version.Version).
		SetCommonErrorResult(&APIError{}).
		SetJsonMarshal(jsonMarshal).
		SetJsonUnmarshal(jsonUnmarshal)

	return &Client{
		http:      http,
		baseURL:   baseURL,
		Folders:   newFoldersAPI(http),
		Documents: newDocumentsAPI(http),
		Nodes:     newNodesAPI(http),
	}, nil
}

// SetAuth sets the bearer token used for all API calls.
func (c *Client) SetAuth(token string) {
	c.http.SetCommonBearerAuthToken(token)
}

// Close releases idle transport connections.
func (c *Client) Close() {
	c.http.GetTransport().CloseIdleConnections()
}

// The flat methods below are what the sync engine programs against; it
// never touches the sub-API types.

func (c *Client) CreateFolder(ctx context.Context, parentID, name string) (string, error) {
	folder, err := c.Folders.Create(ctx, &CreateFolderParams{ParentID: parentID, Name: name})
	if err != nil {
		return "", err
	}
	return folder.ID, nil
}

func (c *Client) CreateDocument(ctx context.Context, parentID, title, content string) (string, error) {
	doc, err := c.Documents.Create(ctx, &CreateDocumentParams{
		ParentID: parentID,
		Title:    title,
		Content:  content,
		Format:   FormatMarkdown,
	})
	if err != nil {
		return "", err
	}
	return doc.ID, nil
}

func (c *Client) ReplaceContent(ctx context.Context, docID, content string) error {
	return c.Documents.Replace(ctx, docID, &ReplaceContentParams{
		Content: content,
		Format:  FormatMarkdown,
	})
}

func (c *Client) DeleteNode(ctx context.Context, id string) error {
	return c.Nodes.Delete(ctx, id)
}

func (c *Client) ListFolder(ctx context.Context, id string) ([]NodeRef, error) {
	view, err := c.Folders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return view.Children, nil
}
