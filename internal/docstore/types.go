package docstore

// NodeKind discriminates folder and document nodes.
type NodeKind string

const (
	KindFolder   NodeKind = "folder"
	KindDocument NodeKind = "document"
)

// Document content formats accepted by the store.
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// Node is a folder or document in the remote tree. IDs are opaque and
// stable across renames.
type Node struct {
	ID       string   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Title    string   `json:"title"`
	ParentID string   `json:"parent_id"`
}

// NodeRef is a child reference inside a folder listing. Exactly one of
// FolderID/DocumentID is set.
type NodeRef struct {
	FolderID   string `json:"folder_id,omitempty"`
	DocumentID string `json:"document_id,omitempty"`
	Title      string `json:"title"`
}

// ID returns whichever identifier the reference carries.
func (r NodeRef) ID() string {
	if r.FolderID != "" {
		return r.FolderID
	}
	return r.DocumentID
}

// IsFolder reports whether the reference points at a folder.
func (r NodeRef) IsFolder() bool {
	return r.FolderID != ""
}

// FolderView is a folder node together with its immediate children.
type FolderView struct {
	Folder   Node      `json:"folder"`
	Children []NodeRef `json:"children"`
}

type CreateFolderParams struct {
	ParentID string `json:"parent_id"`
	Name     string `json:"name"`
}

type CreateDocumentParams struct {
	ParentID string `json:"parent_id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Format   string `json:"format"`
}

type ReplaceContentParams struct {
	Content string `json:"content"`
	Format  string `json:"format"`
}
