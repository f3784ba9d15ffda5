package workflow

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/models"
)

type TransactionStore interface {
	Create(ctx context.Context, tx *models.Transaction) error
	FindById(ctx context.Context, id int) (*models.Transaction, error)
	FindOne(ctx context.Context, filter models.TransactionFilter) (*models.Transaction, error)
	List(ctx context.Context, filter models.TransactionFilter) ([]*models.Transaction, error)
	// Save must apply the header change and insert new schedule rows atomically,
	// failing with ErrConflict when the stored version differs from tx.Version.
	Save(ctx context.Context, tx *models.Transaction) error
}

// PreferenceStore.FindOne returns nil, nil when nothing is configured.
type PreferenceStore interface {
	FindOne(ctx context.Context) (*models.Preference, error)
	Upsert(ctx context.Context, pref models.Preference) (*models.Preference, error)
}

type ReferenceResolver interface {
	Missing(ctx context.Context, kind models.ReferenceKind, ids []int) ([]int, error)
	Summaries(ctx context.Context, kind models.ReferenceKind, ids []int) (map[int]models.RefSummary, error)
}

type NumberGenerator interface {
	Next(ctx context.Context, txType models.TransactionType, at time.Time) (string, error)
}
