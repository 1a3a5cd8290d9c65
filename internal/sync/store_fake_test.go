package sync

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/docpush/docpush/internal/docstore"
)

// fakeStore is an in-memory document store. DeleteNode rejects
// non-empty folders like the real API does, so apply-order mistakes
// surface as test failures.
type fakeStore struct {
	nodes   map[string]*fakeNode
	seq     int
	calls   []string
	stubbed map[string][]error // method -> queued errors, popped per call
}

type fakeNode struct {
	id      string
	parent  string
	title   string
	content string
	folder  bool
}

func newFakeStore() *fakeStore {
	fs := &fakeStore{
		nodes:   make(map[string]*fakeNode),
		stubbed: make(map[string][]error),
	}
	fs.nodes["root"] = &fakeNode{id: "root", folder: true, title: "root"}
	return fs
}

func (f *fakeStore) stub(method string, errs ...error) {
	f.stubbed[method] = append(f.stubbed[method], errs...)
}

func (f *fakeStore) pop(method string) error {
	queue := f.stubbed[method]
	if len(queue) == 0 {
		return nil
	}
	err := queue[0]
	f.stubbed[method] = queue[1:]
	return err
}

func (f *fakeStore) record(method, arg string) {
	f.calls = append(f.calls, method+" "+arg)
}

func (f *fakeStore) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s%d", prefix, f.seq)
}

func (f *fakeStore) CreateFolder(ctx context.Context, parentID, name string) (string, error) {
	f.record("CreateFolder", name)
	if err := f.pop("CreateFolder"); err != nil {
		return "", err
	}
	if _, ok := f.nodes[parentID]; !ok {
		return "", docstore.NewAPIError(http.StatusNotFound, docstore.CodeNotFound, "no such parent")
	}
	id := f.nextID("F")
	f.nodes[id] = &fakeNode{id: id, parent: parentID, title: name, folder: true}
	return id, nil
}

func (f *fakeStore) CreateDocument(ctx context.Context, parentID, title, content string) (string, error) {
	f.record("CreateDocument", title)
	if err := f.pop("CreateDocument"); err != nil {
		return "", err
	}
	if _, ok := f.nodes[parentID]; !ok {
		return "", docstore.NewAPIError(http.StatusNotFound, docstore.CodeNotFound, "no such parent")
	}
	id := f.nextID("D")
	f.nodes[id] = &fakeNode{id: id, parent: parentID, title: title, content: content}
	return id, nil
}

func (f *fakeStore) ReplaceContent(ctx context.Context, docID, content string) error {
	f.record("ReplaceContent", docID)
	if err := f.pop("ReplaceContent"); err != nil {
		return err
	}
	node, ok := f.nodes[docID]
	if !ok || node.folder {
		return docstore.NewAPIError(http.StatusNotFound, docstore.CodeNotFound, "no such document")
	}
	node.content = content
	return nil
}

func (f *fakeStore) DeleteNode(ctx context.Context, id string) error {
	f.record("DeleteNode", id)
	if err := f.pop("DeleteNode"); err != nil {
		return err
	}
	node, ok := f.nodes[id]
	if !ok {
		return docstore.NewAPIError(http.StatusNotFound, docstore.CodeNotFound, "no such node")
	}
	if node.folder {
		for _, n := range f.nodes {
			if n.parent == id {
				return docstore.NewAPIError(http.StatusConflict, docstore.CodeInvalidRequest, "folder not empty")
			}
		}
	}
	delete(f.nodes, id)
	return nil
}

func (f *fakeStore) ListFolder(ctx context.Context, id string) ([]docstore.NodeRef, error) {
	f.record("ListFolder", id)
	if err := f.pop("ListFolder"); err != nil {
		return nil, err
	}
	if _, ok := f.nodes[id]; !ok {
		return nil, docstore.NewAPIError(http.StatusNotFound, docstore.CodeNotFound, "no such folder")
	}
	var refs []docstore.NodeRef
	for _, n := range f.nodes {
		if n.parent != id {
			continue
		}
		if n.folder {
			refs = append(refs, docstore.NodeRef{FolderID: n.id, Title: n.title})
		} else {
			refs = append(refs, docstore.NodeRef{DocumentID: n.id, Title: n.title})
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].ID() < refs[j].ID() })
	return refs, nil
}

// mutationCalls filters the call log down to mutating API calls.
func (f *fakeStore) mutationCalls() []string {
	var out []string
	for _, c := range f.calls {
		if !strings.HasPrefix(c, "ListFolder") {
			out = append(out, c)
		}
	}
	return out
}
