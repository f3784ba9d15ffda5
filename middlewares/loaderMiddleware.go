package middlewares

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/models"
	"github.com/gin-gonic/gin"
	"github.com/graph-gophers/dataloader/v7"
)

type ctxKey string

const (
	loadersKey = ctxKey("dataloaders")
)

// BatchWait is how long a loader collects keys before querying.
var BatchWait = time.Millisecond

// ReferenceSummaries is implemented by store.ReferenceResolver.
type ReferenceSummaries interface {
	Summaries(ctx context.Context, kind models.ReferenceKind, ids []int) (map[int]models.RefSummary, error)
}

var loaderKinds = []models.ReferenceKind{
	models.ReferenceKindCustomer,
	models.ReferenceKindSupplier,
	models.ReferenceKindStaff,
	models.ReferenceKindProduct,
	models.ReferenceKindUnit,
	models.ReferenceKindCategory,
	models.ReferenceKindBrand,
}

// Loaders holds one batched reference loader per kind, scoped to a request.
type Loaders struct {
	references map[models.ReferenceKind]*dataloader.Loader[int, models.RefSummary]
}

type referenceReader struct {
	source ReferenceSummaries
	kind   models.ReferenceKind
}

func (r *referenceReader) getSummaries(ctx context.Context, ids []int) []*dataloader.Result[models.RefSummary] {
	found, err := r.source.Summaries(ctx, r.kind, ids)
	if err != nil {
		return handleError[models.RefSummary](len(ids), err)
	}

	results := make([]*dataloader.Result[models.RefSummary], 0, len(ids))
	for _, id := range ids {
		summary, ok := found[id]
		if !ok {
			// deleted or inactive rows still render with their id
			summary = models.RefSummary{Id: id}
		}
		results = append(results, &dataloader.Result[models.RefSummary]{Data: summary})
	}
	return results
}

func NewLoaders(source ReferenceSummaries) *Loaders {
	l := &Loaders{references: make(map[models.ReferenceKind]*dataloader.Loader[int, models.RefSummary], len(loaderKinds))}
	for _, kind := range loaderKinds {
		reader := &referenceReader{source: source, kind: kind}
		l.references[kind] = dataloader.NewBatchedLoader(reader.getSummaries, dataloader.WithWait[int, models.RefSummary](BatchWait))
	}
	return l
}

func LoaderMiddleware(source ReferenceSummaries) gin.HandlerFunc {
	return func(c *gin.Context) {
		loader := NewLoaders(source)
		ctx := context.WithValue(c.Request.Context(), loadersKey, loader)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func WithLoaders(ctx context.Context, loaders *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey, loaders)
}

func For(ctx context.Context) *Loaders {
	return ctx.Value(loadersKey).(*Loaders)
}

// LoadReference queues id on the kind's loader; the thunk blocks until the
// batch has run.
func LoadReference(ctx context.Context, kind models.ReferenceKind, id int) dataloader.Thunk[models.RefSummary] {
	return For(ctx).references[kind].Load(ctx, id)
}

func GetReference(ctx context.Context, kind models.ReferenceKind, id int) (models.RefSummary, error) {
	return LoadReference(ctx, kind, id)()
}

func GetReferences(ctx context.Context, kind models.ReferenceKind, ids []int) ([]models.RefSummary, []error) {
	return For(ctx).references[kind].LoadMany(ctx, ids)()
}

// PrimeReference seeds the cache with an already resolved summary.
func PrimeReference(ctx context.Context, kind models.ReferenceKind, id int, summary models.RefSummary) {
	For(ctx).references[kind].Prime(ctx, id, summary)
}

// handleError creates array of result with the same error repeated for as many items requested
func handleError[T any](itemsLength int, err error) []*dataloader.Result[T] {
	result := make([]*dataloader.Result[T], itemsLength)
	for i := 0; i < itemsLength; i++ {
		result[i] = &dataloader.Result[T]{Error: err}
	}
	return result
}
