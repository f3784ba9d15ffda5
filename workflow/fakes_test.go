package workflow_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/models"
	"bitbucket.org/mmdatafocus/pos_backend/workflow"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// memoryStore keeps copies of transactions and enforces the version check
// the way the gorm store does.
type memoryStore struct {
	mu      sync.Mutex
	rows    map[int]*models.Transaction
	nextId  int
	nextRec int

	creates int
	finds   int
	saves   int

	saveErr error
	// createErrs are returned by successive Create calls before any insert
	createErrs []error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{rows: map[int]*models.Transaction{}}
}

func cloneTx(tx *models.Transaction) *models.Transaction {
	c := *tx
	c.PaymentSchedule = append([]models.PaymentRecord(nil), tx.PaymentSchedule...)
	c.LineItems = append([]models.LineItem(nil), tx.LineItems...)
	return &c
}

func (s *memoryStore) put(tx *models.Transaction) *models.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextId++
	tx.ID = s.nextId
	if tx.Version == 0 {
		tx.Version = 1
	}
	for i := range tx.PaymentSchedule {
		s.nextRec++
		tx.PaymentSchedule[i].ID = s.nextRec
		tx.PaymentSchedule[i].TransactionId = tx.ID
	}
	s.rows[tx.ID] = cloneTx(tx)
	return tx
}

func (s *memoryStore) get(id int) *models.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneTx(s.rows[id])
}

func (s *memoryStore) Create(ctx context.Context, tx *models.Transaction) error {
	s.mu.Lock()
	s.creates++
	if len(s.createErrs) > 0 {
		err := s.createErrs[0]
		s.createErrs = s.createErrs[1:]
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()
	s.put(tx)
	return nil
}

func (s *memoryStore) FindById(ctx context.Context, id int) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finds++
	tx, ok := s.rows[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return cloneTx(tx), nil
}

func (s *memoryStore) FindOne(ctx context.Context, filter models.TransactionFilter) (*models.Transaction, error) {
	list, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, models.ErrNotFound
	}
	return list[0], nil
}

func (s *memoryStore) List(ctx context.Context, filter models.TransactionFilter) ([]*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finds++
	var out []*models.Transaction
	for id := 1; id <= s.nextId; id++ {
		tx, ok := s.rows[id]
		if !ok || !matches(tx, filter) {
			continue
		}
		out = append(out, cloneTx(tx))
	}
	return out, nil
}

func matches(tx *models.Transaction, f models.TransactionFilter) bool {
	if f.ID > 0 && tx.ID != f.ID {
		return false
	}
	if f.Status != "" && tx.Status != f.Status {
		return false
	}
	if len(f.Statuses) > 0 && !contains(f.Statuses, tx.Status) {
		return false
	}
	if len(f.PaymentMethods) > 0 && !contains(f.PaymentMethods, tx.PaymentMethod) {
		return false
	}
	if f.CreatedBefore != nil && tx.CreatedAt.After(*f.CreatedBefore) {
		return false
	}
	return true
}

func contains[T comparable](list []T, v T) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func (s *memoryStore) Save(ctx context.Context, tx *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	stored, ok := s.rows[tx.ID]
	if !ok {
		return models.ErrNotFound
	}
	if stored.Version != tx.Version {
		return models.ErrConflict.Withf("transaction %d was modified concurrently, retry", tx.ID)
	}
	for i := range tx.PaymentSchedule {
		if tx.PaymentSchedule[i].ID == 0 {
			s.nextRec++
			tx.PaymentSchedule[i].ID = s.nextRec
			tx.PaymentSchedule[i].TransactionId = tx.ID
		}
	}
	tx.Version++
	s.rows[tx.ID] = cloneTx(tx)
	return nil
}

type memoryPreferences struct {
	pref *models.Preference
	err  error
}

func (p *memoryPreferences) FindOne(ctx context.Context) (*models.Preference, error) {
	if p.err != nil {
		return nil, p.err
	}
	if p.pref == nil {
		return nil, nil
	}
	c := *p.pref
	return &c, nil
}

func (p *memoryPreferences) Upsert(ctx context.Context, pref models.Preference) (*models.Preference, error) {
	p.pref = &pref
	return &pref, nil
}

// fakeResolver knows every id listed in names; everything else is missing.
type fakeResolver struct {
	names map[models.ReferenceKind]map[int]string
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{names: map[models.ReferenceKind]map[int]string{
		models.ReferenceKindCustomer: {3: "Budi"},
		models.ReferenceKindSupplier: {4: "PT Sumber Makmur"},
		models.ReferenceKindStaff:    {1: "Kasir Satu", 9: "Admin", 5: "Joko"},
		models.ReferenceKindProduct:  {1: "Beras 5kg", 2: "Minyak Goreng"},
		models.ReferenceKindUnit:     {1: "Karung"},
		models.ReferenceKindCategory: {1: "Sembako"},
		models.ReferenceKindBrand:    {1: "Cap Bunga"},
	}}
}

func (r *fakeResolver) Missing(ctx context.Context, kind models.ReferenceKind, ids []int) ([]int, error) {
	var missing []int
	for _, id := range ids {
		if _, ok := r.names[kind][id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func (r *fakeResolver) Summaries(ctx context.Context, kind models.ReferenceKind, ids []int) (map[int]models.RefSummary, error) {
	out := map[int]models.RefSummary{}
	for _, id := range ids {
		if name, ok := r.names[kind][id]; ok {
			out[id] = models.RefSummary{Id: id, Name: name}
		}
	}
	return out, nil
}

type counterNumbers struct {
	mu sync.Mutex
	n  int
}

func (c *counterNumbers) Next(ctx context.Context, txType models.TransactionType, at time.Time) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return fmt.Sprintf("%s-%04d-%06d", txType.NumberPrefix(), at.Year(), c.n), nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []workflow.SettlementEvent
	err    error
}

func (p *recordingPublisher) PublishSettlement(ctx context.Context, event workflow.SettlementEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type harness struct {
	wf        *workflow.TransactionWorkflow
	store     *memoryStore
	prefs     *memoryPreferences
	publisher *recordingPublisher
	logs      *test.Hook
	now       time.Time
}

var (
	cashier = models.Actor{Id: 1, Role: models.UserRoleCashier}
	admin   = models.Actor{Id: 9, Role: models.UserRoleAdmin}
)

func newHarness() *harness {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	h := &harness{
		store:     newMemoryStore(),
		prefs:     &memoryPreferences{pref: &models.Preference{ID: 1, MaxPelunasanHari: 30}},
		publisher: &recordingPublisher{},
		logs:      hook,
		now:       time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
	}
	h.wf = workflow.NewTransactionWorkflow(workflow.Dependencies{
		Transactions: h.store,
		Preferences:  h.prefs,
		References:   newFakeResolver(),
		Numbers:      &counterNumbers{},
		Locker:       workflow.NewKeyedMutex(),
		Publisher:    h.publisher,
		Logger:       logger,
		Now:          func() time.Time { return h.now },
	})
	return h
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// seedDeferred stores an unpaid transaction created on createdAt.
func (h *harness) seedDeferred(method models.PaymentMethod, total, down string, createdAt time.Time) *models.Transaction {
	return h.store.put(&models.Transaction{
		TransactionNumber: "SL-2024-000001",
		TransactionType:   models.TransactionTypeSale,
		PaymentMethod:     method,
		Status:            models.TransactionStatusUnpaid,
		TotalPrice:        dec(total),
		DownPayment:       dec(down),
		PaidTotal:         dec(down),
		CashierId:         1,
		CustomerId:        3,
		CreatedAt:         createdAt,
	})
}
