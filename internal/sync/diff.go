package sync

import (
	"path"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// Plan is the ordered outcome of one diff pass.
type Plan struct {
	Ops       []*Operation
	Unchanged []string
}

// Diff compares the current scan against the cache and derives the
// operations that bring the remote tree in line with the local tree.
// Pure: no IO, no clock, no mutation of its inputs.
//
// Emission order honors the apply-time dependencies:
//  1. folder creates, ascending by path (parents before children)
//  2. document creates and updates, ascending by path
//  3. document deletes, descending by path
//  4. folder deletes, descending by path (children before parents)
//
// Creates reference their parent folder by dir path, not id: the
// reconciler resolves ids through the cache as folder creates succeed,
// so a folder created earlier in the same pass is reused by every later
// operation under it.
func Diff(docs []*LocalDocument, cache map[string]*CacheEntry) *Plan {
	plan := &Plan{}

	scanned := mapset.NewThreadUnsafeSet[string]()
	liveDirs := mapset.NewThreadUnsafeSet[string]()
	for _, doc := range docs {
		scanned.Add(doc.Path)
		for _, dir := range ancestors(doc.Dir) {
			liveDirs.Add(dir)
		}
	}

	// 1. folders that exist locally but have no remote id yet
	newDirs := make([]string, 0)
	for dir := range liveDirs.Iter() {
		if _, ok := cache[dir]; !ok {
			newDirs = append(newDirs, dir)
		}
	}
	sort.Strings(newDirs)
	for _, dir := range newDirs {
		plan.Ops = append(plan.Ops, &Operation{
			Type:  OpCreateFolder,
			Path:  dir,
			Title: path.Base(dir),
			Dir:   parentDir(dir),
		})
	}

	// 2. document creates and updates, docs are already path-sorted
	for _, doc := range docs {
		entry, ok := cache[doc.Path]
		switch {
		case !ok:
			plan.Ops = append(plan.Ops, &Operation{
				Type:        OpCreateDocument,
				Path:        doc.Path,
				Title:       doc.Title,
				Dir:         doc.Dir,
				Fingerprint: doc.Fingerprint,
				AbsPath:     doc.AbsPath,
				Size:        doc.Size,
			})
		case entry.Fingerprint != doc.Fingerprint:
			plan.Ops = append(plan.Ops, &Operation{
				Type:        OpUpdateDocument,
				Path:        doc.Path,
				Title:       doc.Title,
				Dir:         doc.Dir,
				NodeID:      entry.NodeID,
				Fingerprint: doc.Fingerprint,
				AbsPath:     doc.AbsPath,
				Size:        doc.Size,
			})
		default:
			plan.Unchanged = append(plan.Unchanged, doc.Path)
		}
	}

	// 3+4. cached paths gone from the scan
	var staleDocs, staleDirs []string
	for cached, entry := range cache {
		if entry.IsFolder() {
			if !liveDirs.Contains(cached) {
				staleDirs = append(staleDirs, cached)
			}
		} else if !scanned.Contains(cached) {
			staleDocs = append(staleDocs, cached)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(staleDocs)))
	sort.Sort(sort.Reverse(sort.StringSlice(staleDirs)))

	for _, p := range staleDocs {
		plan.Ops = append(plan.Ops, &Operation{
			Type:   OpDeleteNode,
			Path:   p,
			NodeID: cache[p].NodeID,
		})
	}
	for _, p := range staleDirs {
		plan.Ops = append(plan.Ops, &Operation{
			Type:   OpDeleteNode,
			Path:   p,
			NodeID: cache[p].NodeID,
		})
	}

	return plan
}

// ancestors lists every dir between the root and rel dir, nearest the
// root first. The root itself (".") is never listed: it always exists
// remotely and is never created or deleted.
func ancestors(dir string) []string {
	if dir == "." || dir == "" {
		return nil
	}
	var out []string
	for cur := dir; cur != "." && cur != ""; cur = parentDir(cur) {
		out = append(out, cur)
	}
	// reverse to root-first
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
