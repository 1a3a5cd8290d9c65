package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/docpush/docpush/internal/docstore"
	"github.com/google/uuid"
)

// Phase is the reconciler's position in its run lifecycle. Failed is
// terminal and only reachable from setup; once Applying starts,
// per-operation failures are recorded and the run completes.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseScanning
	PhaseDiffing
	PhaseApplying
	PhasePersisting
	PhaseDone
	PhaseFailed
)

var phaseNames = []string{
	"Idle",
	"Scanning",
	"Diffing",
	"Applying",
	"Persisting",
	"Done",
	"Failed",
}

func (p Phase) String() string {
	return phaseNames[p]
}

// persistEvery is the cache checkpoint cadence during Applying. The
// cache is always persisted once more at the end of the run, and on any
// early termination.
const persistEvery = 10

var ErrNoRootFolder = errors.New("remote root folder id missing")

// Reconciler drives one run: load cache, scan, diff, apply in order,
// persist, report. It exclusively owns the cache for the run's duration
// and is its only writer.
type Reconciler struct {
	scanner *Scanner
	cache   *Cache
	mutator *Mutator
	rootID  string
	clean   bool
	phase   Phase
}

func NewReconciler(scanner *Scanner, cache *Cache, mutator *Mutator, rootID string, clean bool) *Reconciler {
	return &Reconciler{
		scanner: scanner,
		cache:   cache,
		mutator: mutator,
		rootID:  rootID,
		clean:   clean,
		phase:   PhaseIdle,
	}
}

// Phase returns the reconciler's current lifecycle phase.
func (r *Reconciler) Phase() Phase {
	return r.phase
}

func (r *Reconciler) setPhase(p Phase) {
	slog.Debug("reconciler phase", "from", r.phase, "to", p)
	r.phase = p
}

// Run executes one reconciliation pass. It returns an error only for
// setup failures (missing root folder, locked or unreadable cache,
// unwalkable root); everything after that is partial-failure territory
// recorded in the summary. Cancellation stops issuing new operations
// but still persists progress made so far.
func (r *Reconciler) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{RunID: uuid.NewString()}
	tstart := time.Now()
	defer func() { summary.Took = time.Since(tstart) }()

	if r.rootID == "" {
		r.setPhase(PhaseFailed)
		return nil, ErrNoRootFolder
	}
	if err := r.cache.Lock(); err != nil {
		r.setPhase(PhaseFailed)
		return nil, err
	}
	defer r.cache.Unlock()

	if err := r.cache.Load(); err != nil {
		r.setPhase(PhaseFailed)
		return nil, err
	}
	summary.CacheRecovered = r.cache.Corrupted()

	// from here on, progress must never be lost
	persist := func() {
		if err := r.cache.Save(); err != nil {
			slog.Error("cache persist failed", "error", err)
		}
	}
	defer persist()

	if r.clean {
		slog.Info("clean sync: clearing remote folder", "folder", r.rootID)
		if err := r.cleanRemote(ctx, summary); err != nil {
			r.setPhase(PhaseFailed)
			return nil, fmt.Errorf("clean remote: %w", err)
		}
		if err := r.cache.Reset(); err != nil {
			r.setPhase(PhaseFailed)
			return nil, err
		}
	}

	r.setPhase(PhaseScanning)
	docs, scanErrs, err := r.scanner.Scan(ctx)
	if err != nil {
		r.setPhase(PhaseFailed)
		return nil, err
	}
	for _, se := range scanErrs {
		summary.Failed++
		summary.Failures = append(summary.Failures, Failure{Path: se.Path, Op: "scan", Err: se.Err})
	}

	r.setPhase(PhaseDiffing)
	plan := Diff(docs, r.cache.Entries())
	summary.Unchanged = len(plan.Unchanged)
	slog.Info("diff", "run", summary.RunID, "ops", len(plan.Ops), "unchanged", summary.Unchanged)

	r.setPhase(PhaseApplying)
	applied := 0
	for _, op := range plan.Ops {
		if ctx.Err() != nil {
			slog.Warn("run cancelled, persisting progress", "remaining", len(plan.Ops)-applied)
			break
		}

		if err := r.apply(ctx, op, summary); err != nil {
			if errors.Is(err, context.Canceled) {
				continue // loop exits on the next ctx check
			}
			slog.Error("apply failed", "op", op.Type, "path", op.Path, "error", err)
			summary.Failed++
			summary.Failures = append(summary.Failures, Failure{Path: op.Path, Op: op.Type.String(), Err: err})
			continue
		}

		slog.Info("applied", "op", op.Type, "path", op.Path)
		applied++
		if applied%persistEvery == 0 {
			persist()
		}
	}

	r.setPhase(PhasePersisting)
	if err := r.cache.Save(); err != nil {
		return summary, err
	}

	r.setPhase(PhaseDone)
	return summary, nil
}

// apply executes one operation and, only after the remote confirms it,
// folds the result into the cache. A failed operation never mutates the
// cache, so the cache always reflects remote state as last observed.
func (r *Reconciler) apply(ctx context.Context, op *Operation, summary *Summary) error {
	switch op.Type {
	case OpCreateFolder:
		parentID, err := r.parentID(op.Dir)
		if err != nil {
			return err
		}
		id, err := r.mutator.CreateFolder(ctx, parentID, op.Title)
		if err != nil {
			return err
		}
		r.cache.Set(op.Path, &CacheEntry{NodeID: id, ParentID: parentID})
		summary.Created++

	case OpCreateDocument:
		parentID, err := r.parentID(op.Dir)
		if err != nil {
			return err
		}
		content, err := readContent(op)
		if err != nil {
			return err
		}
		id, err := r.mutator.CreateDocument(ctx, parentID, op.Title, content)
		if err != nil {
			return err
		}
		r.cache.Set(op.Path, &CacheEntry{Fingerprint: op.Fingerprint, NodeID: id, ParentID: parentID})
		summary.Created++
		summary.Bytes += op.Size

	case OpUpdateDocument:
		content, err := readContent(op)
		if err != nil {
			return err
		}
		if err := r.mutator.ReplaceContent(ctx, op.NodeID, content); err != nil {
			return err
		}
		entry, _ := r.cache.Get(op.Path)
		parentID := ""
		if entry != nil {
			parentID = entry.ParentID
		}
		r.cache.Set(op.Path, &CacheEntry{Fingerprint: op.Fingerprint, NodeID: op.NodeID, ParentID: parentID})
		summary.Updated++
		summary.Bytes += op.Size

	case OpDeleteNode:
		if err := r.mutator.DeleteNode(ctx, op.NodeID); err != nil {
			return err
		}
		r.cache.Delete(op.Path)
		summary.Deleted++

	default:
		return fmt.Errorf("unknown operation %d", op.Type)
	}

	return nil
}

// parentID resolves an operation's parent folder through the cache.
// Folder ids created earlier in the same pass are already in the cache,
// so they are reused instead of re-created.
func (r *Reconciler) parentID(dir string) (string, error) {
	if dir == "." || dir == "" {
		return r.rootID, nil
	}
	entry, ok := r.cache.Get(dir)
	if !ok || entry.NodeID == "" {
		return "", fmt.Errorf("parent folder %s has no remote id (create failed earlier?)", dir)
	}
	return entry.NodeID, nil
}

func readContent(op *Operation) (string, error) {
	doc := &LocalDocument{Path: op.Path, AbsPath: op.AbsPath}
	content, err := doc.Content()
	if err != nil {
		return "", fmt.Errorf("local io: %w", err)
	}
	return content, nil
}

// cleanRemote deletes everything under the root folder, documents of a
// folder before its subfolders, each subfolder depth-first before the
// subfolder itself. The root folder is never deleted. Per-node delete
// failures are recorded and skipped; only a failure to enumerate the
// root aborts.
func (r *Reconciler) cleanRemote(ctx context.Context, summary *Summary) error {
	children, err := r.mutator.ListFolder(ctx, r.rootID)
	if err != nil {
		return err
	}
	r.cleanChildren(ctx, children, summary)
	return nil
}

func (r *Reconciler) cleanChildren(ctx context.Context, children []docstore.NodeRef, summary *Summary) {
	for _, ref := range children {
		if ref.IsFolder() || ctx.Err() != nil {
			continue
		}
		if err := r.mutator.DeleteNode(ctx, ref.ID()); err != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, Failure{Path: ref.Title, Op: "CleanDelete", Err: err})
			continue
		}
		slog.Info("clean: deleted document", "title", ref.Title)
		summary.Deleted++
	}

	for _, ref := range children {
		if !ref.IsFolder() || ctx.Err() != nil {
			continue
		}
		sub, err := r.mutator.ListFolder(ctx, ref.FolderID)
		if err != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, Failure{Path: ref.Title, Op: "CleanList", Err: err})
			continue
		}
		r.cleanChildren(ctx, sub, summary)
		if err := r.mutator.DeleteNode(ctx, ref.FolderID); err != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, Failure{Path: ref.Title, Op: "CleanDelete", Err: err})
			continue
		}
		slog.Info("clean: deleted folder", "title", ref.Title)
		summary.Deleted++
	}
}
