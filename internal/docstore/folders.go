package docstore

import (
	"context"

	"github.com/imroc/req/v3"
)

const (
	v1Folders = "/api/v1/folders"
	v1Folder  = "/api/v1/folders/{id}"
)

type FoldersAPI struct {
	client *req.Client
}

func newFoldersAPI(client *req.Client) *FoldersAPI {
	return &FoldersAPI{
		client: client,
	}
}

// Create creates a folder under the given parent and returns its node.
func (f *FoldersAPI) Create(ctx context.Context, params *CreateFolderParams) (folder *Node, err error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetBody(params).
		SetSuccessResult(&folder).
		Post(v1Folders)

	if err := handleAPIError(resp, err, "folder create"); err != nil {
		return nil, err
	}

	return folder, nil
}

// Get returns a folder and its immediate children.
func (f *FoldersAPI) Get(ctx context.Context, id string) (view *FolderView, err error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetSuccessResult(&view).
		Get(v1Folder)

	if err := handleAPIError(resp, err, "folder get"); err != nil {
		return nil, err
	}

	return view, nil
}
