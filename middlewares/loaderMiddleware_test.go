package middlewares

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSummaries struct {
	mu      sync.Mutex
	names   map[int]string
	err     error
	batches [][]int
}

func (f *fakeSummaries) Summaries(_ context.Context, kind models.ReferenceKind, ids []int) (map[int]models.RefSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	batch := append([]int(nil), ids...)
	sort.Ints(batch)
	f.batches = append(f.batches, batch)
	if f.err != nil {
		return nil, f.err
	}
	out := map[int]models.RefSummary{}
	for _, id := range ids {
		if name, ok := f.names[id]; ok {
			out[id] = models.RefSummary{Id: id, Name: name}
		}
	}
	return out, nil
}

func withBatchWait(t *testing.T, d time.Duration) {
	prev := BatchWait
	BatchWait = d
	t.Cleanup(func() { BatchWait = prev })
}

func TestLoaders_BatchAndFillMissing(t *testing.T) {
	withBatchWait(t, 20*time.Millisecond)
	source := &fakeSummaries{names: map[int]string{11: "Beras 5kg"}}
	ctx := WithLoaders(context.Background(), NewLoaders(source))

	first := LoadReference(ctx, models.ReferenceKindProduct, 11)
	second := LoadReference(ctx, models.ReferenceKindProduct, 12)

	got, err := first()
	require.NoError(t, err)
	assert.Equal(t, models.RefSummary{Id: 11, Name: "Beras 5kg"}, got)

	got, err = second()
	require.NoError(t, err)
	assert.Equal(t, models.RefSummary{Id: 12}, got)

	// cached for the rest of the request
	_, err = GetReference(ctx, models.ReferenceKindProduct, 11)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{11, 12}}, source.batches)
}

func TestLoaders_PrimeSkipsTheSource(t *testing.T) {
	source := &fakeSummaries{}
	ctx := WithLoaders(context.Background(), NewLoaders(source))

	PrimeReference(ctx, models.ReferenceKindCustomer, 3, models.RefSummary{Id: 3, Name: "Budi"})
	got, err := GetReference(ctx, models.ReferenceKindCustomer, 3)

	require.NoError(t, err)
	assert.Equal(t, "Budi", got.Name)
	assert.Empty(t, source.batches)
}

func TestLoaders_ErrorReachesEveryKey(t *testing.T) {
	source := &fakeSummaries{err: errors.New("db down")}
	ctx := WithLoaders(context.Background(), NewLoaders(source))

	_, errs := GetReferences(ctx, models.ReferenceKindStaff, []int{1, 2, 3})

	require.Len(t, errs, 3)
	for _, err := range errs {
		assert.EqualError(t, err, "db down")
	}
}

func TestLoaderMiddleware_FreshLoadersPerRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	source := &fakeSummaries{names: map[int]string{1: "Siti"}}
	r := gin.New()
	r.Use(LoaderMiddleware(source))
	r.GET("/staff", func(c *gin.Context) {
		s, err := GetReference(c.Request.Context(), models.ReferenceKindStaff, 1)
		if err != nil {
			c.String(http.StatusInternalServerError, err.Error())
			return
		}
		c.String(http.StatusOK, s.Name)
	})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/staff", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Siti", w.Body.String())
	}
	assert.Len(t, source.batches, 2)
}
