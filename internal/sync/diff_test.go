package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(path, fingerprint string) *LocalDocument {
	return &LocalDocument{
		Path:        path,
		Title:       titleOf(path),
		Dir:         parentDir(path),
		Fingerprint: fingerprint,
	}
}

func titleOf(path string) string {
	base := path
	if i := lastSlash(path); i >= 0 {
		base = path[i+1:]
	}
	if n := len(base); n > 3 && base[n-3:] == ".md" {
		return base[:n-3]
	}
	return base
}

func lastSlash(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '/' {
			return i
		}
	}
	return -1
}

func opSummaries(ops []*Operation) []string {
	var out []string
	for _, op := range ops {
		out = append(out, op.Type.String()+" "+op.Path)
	}
	return out
}

func TestDiffCreateNewDocument(t *testing.T) {
	// empty cache, one local file -> a single document create
	plan := Diff([]*LocalDocument{doc("a.md", "H1")}, nil)

	require.Len(t, plan.Ops, 1)
	assert.Equal(t, OpCreateDocument, plan.Ops[0].Type)
	assert.Equal(t, "a.md", plan.Ops[0].Path)
	assert.Equal(t, "H1", plan.Ops[0].Fingerprint)
	assert.Empty(t, plan.Unchanged)
}

func TestDiffUpdateChangedDocument(t *testing.T) {
	cache := map[string]*CacheEntry{
		"a.md": {Fingerprint: "H1", NodeID: "R1", ParentID: "root"},
	}
	plan := Diff([]*LocalDocument{doc("a.md", "H2")}, cache)

	require.Len(t, plan.Ops, 1)
	assert.Equal(t, OpUpdateDocument, plan.Ops[0].Type)
	assert.Equal(t, "R1", plan.Ops[0].NodeID)
}

func TestDiffUnchangedDocumentEmitsNothing(t *testing.T) {
	cache := map[string]*CacheEntry{
		"a.md": {Fingerprint: "H1", NodeID: "R1", ParentID: "root"},
	}
	plan := Diff([]*LocalDocument{doc("a.md", "H1")}, cache)

	assert.Empty(t, plan.Ops)
	assert.Equal(t, []string{"a.md"}, plan.Unchanged)
}

func TestDiffDeleteRemovedDocument(t *testing.T) {
	cache := map[string]*CacheEntry{
		"a.md": {Fingerprint: "H1", NodeID: "R1", ParentID: "root"},
	}
	plan := Diff(nil, cache)

	require.Len(t, plan.Ops, 1)
	assert.Equal(t, OpDeleteNode, plan.Ops[0].Type)
	assert.Equal(t, "R1", plan.Ops[0].NodeID)

	// exactly one operation references R1
	count := 0
	for _, op := range plan.Ops {
		if op.NodeID == "R1" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestDiffFolderCreatesPrecedeDocuments(t *testing.T) {
	plan := Diff([]*LocalDocument{
		doc("guides/deep/setup.md", "H1"),
		doc("guides/intro.md", "H2"),
	}, nil)

	assert.Equal(t, []string{
		"CreateFolder guides",
		"CreateFolder guides/deep",
		"CreateDocument guides/deep/setup.md",
		"CreateDocument guides/intro.md",
	}, opSummaries(plan.Ops))
}

func TestDiffFolderCreatedOncePerRun(t *testing.T) {
	plan := Diff([]*LocalDocument{
		doc("guides/a.md", "H1"),
		doc("guides/b.md", "H2"),
	}, nil)

	folderCreates := 0
	for _, op := range plan.Ops {
		if op.Type == OpCreateFolder {
			folderCreates++
		}
	}
	assert.Equal(t, 1, folderCreates)
}

func TestDiffKnownFolderNotRecreated(t *testing.T) {
	cache := map[string]*CacheEntry{
		"guides": {NodeID: "F1", ParentID: "root"},
	}
	plan := Diff([]*LocalDocument{doc("guides/a.md", "H1")}, cache)

	require.Len(t, plan.Ops, 1)
	assert.Equal(t, OpCreateDocument, plan.Ops[0].Type)
	assert.Equal(t, "guides", plan.Ops[0].Dir)
}

func TestDiffDeletesDocumentsBeforeFolders(t *testing.T) {
	cache := map[string]*CacheEntry{
		"guides":           {NodeID: "F1", ParentID: "root"},
		"guides/deep":      {NodeID: "F2", ParentID: "F1"},
		"guides/deep/a.md": {Fingerprint: "H1", NodeID: "R1", ParentID: "F2"},
		"guides/b.md":      {Fingerprint: "H2", NodeID: "R2", ParentID: "F1"},
	}
	plan := Diff(nil, cache)

	assert.Equal(t, []string{
		"DeleteNode guides/deep/a.md",
		"DeleteNode guides/b.md",
		"DeleteNode guides/deep",
		"DeleteNode guides",
	}, opSummaries(plan.Ops))
}

func TestDiffFolderKeptWhileDocumentsRemain(t *testing.T) {
	cache := map[string]*CacheEntry{
		"guides":      {NodeID: "F1", ParentID: "root"},
		"guides/a.md": {Fingerprint: "H1", NodeID: "R1", ParentID: "F1"},
		"guides/b.md": {Fingerprint: "H2", NodeID: "R2", ParentID: "F1"},
	}
	// b.md gone, a.md still there: the folder stays
	plan := Diff([]*LocalDocument{doc("guides/a.md", "H1")}, cache)

	assert.Equal(t, []string{"DeleteNode guides/b.md"}, opSummaries(plan.Ops))
}

func TestDiffMixedTreeOrdering(t *testing.T) {
	cache := map[string]*CacheEntry{
		"old":         {NodeID: "F9", ParentID: "root"},
		"old/gone.md": {Fingerprint: "H9", NodeID: "R9", ParentID: "F9"},
		"keep.md":     {Fingerprint: "H1", NodeID: "R1", ParentID: "root"},
		"changed.md":  {Fingerprint: "H2", NodeID: "R2", ParentID: "root"},
		"notes":       {NodeID: "F1", ParentID: "root"},
		"notes/c.md":  {Fingerprint: "H3", NodeID: "R3", ParentID: "F1"},
	}
	plan := Diff([]*LocalDocument{
		doc("changed.md", "H2x"),
		doc("keep.md", "H1"),
		doc("new/fresh.md", "H4"),
		doc("notes/c.md", "H3"),
	}, cache)

	assert.Equal(t, []string{
		"CreateFolder new",
		"UpdateDocument changed.md",
		"CreateDocument new/fresh.md",
		"DeleteNode old/gone.md",
		"DeleteNode old",
	}, opSummaries(plan.Ops))
	assert.ElementsMatch(t, []string{"keep.md", "notes/c.md"}, plan.Unchanged)
}

func TestDiffPureDoesNotMutateInputs(t *testing.T) {
	cache := map[string]*CacheEntry{
		"a.md": {Fingerprint: "H1", NodeID: "R1", ParentID: "root"},
	}
	docs := []*LocalDocument{doc("b.md", "H2")}

	_ = Diff(docs, cache)

	assert.Len(t, cache, 1)
	assert.Equal(t, "H1", cache["a.md"].Fingerprint)
	assert.Equal(t, "b.md", docs[0].Path)
}
