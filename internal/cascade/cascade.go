// Package cascade deletes an entity together with every document beneath it
// in the declared hierarchy, at any depth.
package cascade

import (
	"context"
	"fmt"

	"ndara/internal/apperr"
	"ndara/internal/models"
	"ndara/internal/mutation"
	"ndara/internal/store"
	console "ndara/internal/utils/logger"
)

var log = console.New("CASCADE")

// Node declares a child collection and what lives beneath its documents.
type Node struct {
	Collection string
	Children   []Node
}

// Declared hierarchy, from the leaves up.
var (
	QuizTree       = []Node{{Collection: models.CollQuestions}}
	AssignmentTree = []Node{{Collection: models.CollSubmissions}}
	SectionTree    = []Node{
		{Collection: models.CollLectures},
		{Collection: models.CollQuizzes, Children: QuizTree},
		{Collection: models.CollAssignments, Children: AssignmentTree},
	}
	CourseTree = []Node{
		{Collection: models.CollSections, Children: SectionTree},
		{Collection: models.CollResources},
	}
)

// Report tells the caller what a delete actually did. Atomic is false when
// the descendants did not fit in one batch: earlier batches stay applied if
// a later one fails.
type Report struct {
	Deleted int
	Batches int
	Atomic  bool
	// Removed holds the deleted descendants, deepest first.
	Removed []*store.Document
}

type Resolver struct {
	store store.DocumentStore
}

func NewResolver(st store.DocumentStore) *Resolver {
	return &Resolver{store: st}
}

// Descendants lists every document under root, children before their parent.
func (r *Resolver) Descendants(ctx context.Context, root string, tree []Node) ([]*store.Document, error) {
	var out []*store.Document
	for _, node := range tree {
		docs, err := r.store.Query(ctx, store.Query{Collection: store.Doc(root, node.Collection)})
		if err != nil {
			return nil, mutation.Classify(err)
		}
		for _, doc := range docs {
			if len(node.Children) > 0 {
				below, err := r.Descendants(ctx, doc.Path, node.Children)
				if err != nil {
					return nil, err
				}
				out = append(out, below...)
			}
			out = append(out, doc)
		}
	}
	return out, nil
}

// Delete removes root and its descendants together with plan, which must
// carry the audit entry. When everything fits in one batch the whole delete
// is atomic. Otherwise descendants are removed deepest first in sequential
// batches and the final batch holds the remaining descendants, root, and
// plan, so the audit entry is only written once the delete completes.
func (r *Resolver) Delete(ctx context.Context, root string, tree []Node, plan *mutation.Plan) (Report, error) {
	descendants, err := r.Descendants(ctx, root, tree)
	if err != nil {
		return Report{}, err
	}

	limit := r.store.BatchLimit()
	room := limit - plan.Len() - 1
	if room < 0 {
		return Report{}, apperr.Internal(fmt.Errorf("mutation for %s needs %d operations, limit is %d", root, plan.Len()+1, limit))
	}

	report := Report{Atomic: len(descendants) <= room, Removed: descendants}
	split := 0
	if !report.Atomic {
		split = len(descendants) - room
		log.Warn("Deleting %s in several batches: %d descendants exceed the limit of %d", root, len(descendants), limit)
	}

	for start := 0; start < split; start += limit {
		end := min(start+limit, split)
		batch := r.store.Batch()
		for _, doc := range descendants[start:end] {
			batch.Delete(doc.Path)
		}
		if err := batch.Commit(ctx); err != nil {
			report.Removed = descendants[:report.Deleted]
			if report.Deleted == 0 {
				return report, mutation.Classify(err)
			}
			return report, partialFailure(root, report.Deleted, mutation.Classify(err))
		}
		report.Batches++
		report.Deleted += end - start
	}

	for _, doc := range descendants[split:] {
		plan.Delete(doc.Path)
	}
	plan.Delete(root)
	if err := plan.Commit(ctx, r.store); err != nil {
		report.Removed = descendants[:report.Deleted]
		if report.Deleted > 0 {
			return report, partialFailure(root, report.Deleted, err)
		}
		return report, err
	}
	report.Batches++
	report.Deleted += len(descendants) - split + 1
	return report, nil
}

func partialFailure(root string, deleted int, err error) error {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		kind = apperr.KindStoreWriteFailed
	}
	return &apperr.Error{
		Kind:    kind,
		Message: fmt.Sprintf("suppression partielle de %s : %d documents supprimés avant l'échec (%v)", root, deleted, err),
		Err:     err,
	}
}
