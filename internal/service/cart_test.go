package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/modacart/backend/internal/catalog"
	"github.com/modacart/backend/internal/domain"
	"github.com/modacart/backend/internal/event"
	apperrors "github.com/modacart/backend/pkg/errors"
	pkgkafka "github.com/modacart/backend/pkg/kafka"
)

// --- Mock Repositories ---

type mockCartLineRepository struct {
	mock.Mock
}

func (m *mockCartLineRepository) FindLine(ctx context.Context, customer, product, size string) (*domain.CartLine, error) {
	args := m.Called(ctx, customer, product, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CartLine), args.Error(1)
}

func (m *mockCartLineRepository) FindByID(ctx context.Context, customer, id string) (*domain.CartLine, error) {
	args := m.Called(ctx, customer, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CartLine), args.Error(1)
}

func (m *mockCartLineRepository) ListByCustomer(ctx context.Context, customer string) ([]domain.CartLine, error) {
	args := m.Called(ctx, customer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CartLine), args.Error(1)
}

func (m *mockCartLineRepository) ListAll(ctx context.Context) ([]domain.CartLine, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CartLine), args.Error(1)
}

func (m *mockCartLineRepository) Insert(ctx context.Context, line *domain.CartLine) error {
	args := m.Called(ctx, line)
	return args.Error(0)
}

func (m *mockCartLineRepository) UpdateQuantity(ctx context.Context, id string, quantity int) (*domain.CartLine, error) {
	args := m.Called(ctx, id, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CartLine), args.Error(1)
}

func (m *mockCartLineRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockCartLineRepository) DeleteByCustomer(ctx context.Context, customer string) (int64, error) {
	args := m.Called(ctx, customer)
	return args.Get(0).(int64), args.Error(1)
}

type mockRemovedLineRepository struct {
	mock.Mock
}

func (m *mockRemovedLineRepository) Insert(ctx context.Context, rec *domain.RemovedCartLine) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *mockRemovedLineRepository) InsertMany(ctx context.Context, recs []domain.RemovedCartLine) error {
	args := m.Called(ctx, recs)
	return args.Error(0)
}

func (m *mockRemovedLineRepository) ListAll(ctx context.Context) ([]domain.RemovedCartLine, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RemovedCartLine), args.Error(1)
}

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*domain.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*domain.Product), args.Error(1)
}

type mockSizeRepository struct {
	mock.Mock
}

func (m *mockSizeRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*domain.Size, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*domain.Size), args.Error(1)
}

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*domain.User), args.Error(1)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

type testDeps struct {
	lines    *mockCartLineRepository
	removed  *mockRemovedLineRepository
	products *mockProductRepository
	sizes    *mockSizeRepository
	users    *mockUserRepository
}

func newTestService(t *testing.T) (*CartService, *testDeps) {
	t.Helper()
	logger := newTestLogger()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	deps := &testDeps{
		lines:    &mockCartLineRepository{},
		removed:  &mockRemovedLineRepository{},
		products: &mockProductRepository{},
		sizes:    &mockSizeRepository{},
		users:    &mockUserRepository{},
	}

	cat := catalog.NewService(deps.products, deps.sizes, catalog.NewCache(client, time.Minute), logger)

	// Kafka producer pointing at nothing; publishes fail and get logged.
	kafkaProducer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig([]string{"localhost:9092"}), logger)
	producer := event.NewProducer(kafkaProducer, logger)

	return NewCartService(deps.lines, deps.removed, cat, producer, logger), deps
}

func stockedProduct(id string, stock int) *domain.Product {
	return &domain.Product{
		ID:          id,
		Name:        "Classic Tee",
		Variants:    []domain.Variant{{Size: "size-m", Price: 2599, Stock: stock}},
		IsAvailable: true,
		Status:      domain.LifecycleActive,
	}
}

func existingLine(customer string, qty int) *domain.CartLine {
	now := time.Now().UTC()
	return &domain.CartLine{
		ID:            "line-1",
		Customer:      customer,
		Product:       "prod-1",
		Size:          "size-m",
		Quantity:      qty,
		PriceAtAdding: 2599,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// stubLineStore is an in-memory single-line store for concurrency tests.
// FindLine pauses after taking its snapshot so that, without the tuple
// lock, overlapping calls would all observe the same quantity and the
// merged total could overshoot the stock.
type stubLineStore struct {
	mu   sync.Mutex
	line *domain.CartLine
}

func (s *stubLineStore) FindLine(ctx context.Context, customer, product, size string) (*domain.CartLine, error) {
	s.mu.Lock()
	var snapshot *domain.CartLine
	if s.line != nil {
		copied := *s.line
		snapshot = &copied
	}
	s.mu.Unlock()

	time.Sleep(2 * time.Millisecond)

	if snapshot == nil {
		return nil, apperrors.NotFoundMsg("cart item not found")
	}
	return snapshot, nil
}

func (s *stubLineStore) Insert(ctx context.Context, line *domain.CartLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.line != nil {
		return apperrors.AlreadyExists("cart item", "product/size", line.Product+"/"+line.Size)
	}
	copied := *line
	s.line = &copied
	return nil
}

func (s *stubLineStore) UpdateQuantity(ctx context.Context, id string, quantity int) (*domain.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.line == nil || s.line.ID != id {
		return nil, apperrors.NotFoundMsg("cart item not found")
	}
	s.line.Quantity = quantity
	copied := *s.line
	return &copied, nil
}

func (s *stubLineStore) FindByID(ctx context.Context, customer, id string) (*domain.CartLine, error) {
	return nil, apperrors.NotFoundMsg("cart item not found")
}

func (s *stubLineStore) ListByCustomer(ctx context.Context, customer string) ([]domain.CartLine, error) {
	return nil, nil
}

func (s *stubLineStore) ListAll(ctx context.Context) ([]domain.CartLine, error) {
	return nil, nil
}

func (s *stubLineStore) Delete(ctx context.Context, id string) error {
	return apperrors.NotFoundMsg("cart item not found")
}

func (s *stubLineStore) DeleteByCustomer(ctx context.Context, customer string) (int64, error) {
	return 0, nil
}

func (s *stubLineStore) quantity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.line == nil {
		return 0
	}
	return s.line.Quantity
}

// --- AddLine ---

func TestAddLine_NewLineCapturesPrice(t *testing.T) {
	svc, deps := newTestService(t)
	ctx := context.Background()

	deps.products.On("FindByID", mock.Anything, "prod-1").Return(stockedProduct("prod-1", 10), nil)
	deps.lines.On("FindLine", mock.Anything, "cust-1", "prod-1", "size-m").
		Return(nil, apperrors.NotFoundMsg("cart item not found"))
	deps.lines.On("Insert", mock.Anything, mock.MatchedBy(func(l *domain.CartLine) bool {
		return l.Customer == "cust-1" && l.Quantity == 3 && l.PriceAtAdding == 2599
	})).Return(nil)

	line, err := svc.AddLine(ctx, "cust-1", AddLineInput{Product: "prod-1", Size: "size-m", Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, line.Quantity)
	assert.Equal(t, int64(2599), line.PriceAtAdding)
	assert.NotEmpty(t, line.ID)

	deps.lines.AssertExpectations(t)
}

func TestAddLine_ClientPriceWins(t *testing.T) {
	svc, deps := newTestService(t)
	ctx := context.Background()

	deps.products.On("FindByID", mock.Anything, "prod-1").Return(stockedProduct("prod-1", 10), nil)
	deps.lines.On("FindLine", mock.Anything, "cust-1", "prod-1", "size-m").
		Return(nil, apperrors.NotFoundMsg("cart item not found"))
	deps.lines.On("Insert", mock.Anything, mock.MatchedBy(func(l *domain.CartLine) bool {
		return l.PriceAtAdding == 2099
	})).Return(nil)

	line, err := svc.AddLine(ctx, "cust-1", AddLineInput{Product: "prod-1", Size: "size-m", Quantity: 1, Price: 2099})
	require.NoError(t, err)
	assert.Equal(t, int64(2099), line.PriceAtAdding)
}

func TestAddLine_MergesExistingLine(t *testing.T) {
	svc, deps := newTestService(t)
	ctx := context.Background()

	existing := existingLine("cust-1", 2)
	merged := existingLine("cust-1", 5)

	deps.products.On("FindByID", mock.Anything, "prod-1").Return(stockedProduct("prod-1", 10), nil)
	deps.lines.On("FindLine", mock.Anything, "cust-1", "prod-1", "size-m").Return(existing, nil)
	deps.lines.On("UpdateQuantity", mock.Anything, "line-1", 5).Return(merged, nil)

	line, err := svc.AddLine(ctx, "cust-1", AddLineInput{Product: "prod-1", Size: "size-m", Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, 5, line.Quantity)
	// The merge keeps the price captured at first add.
	assert.Equal(t, int64(2599), line.PriceAtAdding)

	deps.lines.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestAddLine_CapacityExceededReportsRemaining(t *testing.T) {
	svc, deps := newTestService(t)
	ctx := context.Background()

	deps.products.On("FindByID", mock.Anything, "prod-1").Return(stockedProduct("prod-1", 5), nil)
	deps.lines.On("FindLine", mock.Anything, "cust-1", "prod-1", "size-m").
		Return(existingLine("cust-1", 3), nil)

	_, err := svc.AddLine(ctx, "cust-1", AddLineInput{Product: "prod-1", Size: "size-m", Quantity: 3})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrCapacityExceeded)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Only 2 items left in stock", appErr.Message)

	deps.lines.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddLine_RemainingClampedToZero(t *testing.T) {
	svc, deps := newTestService(t)
	ctx := context.Background()

	// Stock shrank below what the cart already holds.
	deps.products.On("FindByID", mock.Anything, "prod-1").Return(stockedProduct("prod-1", 2), nil)
	deps.lines.On("FindLine", mock.Anything, "cust-1", "prod-1", "size-m").
		Return(existingLine("cust-1", 3), nil)

	_, err := svc.AddLine(ctx, "cust-1", AddLineInput{Product: "prod-1", Size: "size-m", Quantity: 1})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Only 0 items left in stock", appErr.Message)
}

func TestAddLine_ExactStockSucceeds(t *testing.T) {
	svc, deps := newTestService(t)
	ctx := context.Background()

	deps.products.On("FindByID", mock.Anything, "prod-1").Return(stockedProduct("prod-1", 5), nil)
	deps.lines.On("FindLine", mock.Anything, "cust-1", "prod-1", "size-m").
		Return(existingLine("cust-1", 2), nil)
	deps.lines.On("UpdateQuantity", mock.Anything, "line-1", 5).Return(existingLine("cust-1", 5), nil)

	line, err := svc.AddLine(ctx, "cust-1", AddLineInput{Product: "prod-1", Size: "size-m", Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, 5, line.Quantity)
}

func TestAddLine_UnknownSizeIsInvalidInput(t *testing.T) {
	svc, deps := newTestService(t)
	ctx := context.Background()

	deps.products.On("FindByID", mock.Anything, "prod-1").Return(stockedProduct("prod-1", 5), nil)

	_, err := svc.AddLine(ctx, "cust-1", AddLineInput{Product: "prod-1", Size: "size-xxl", Quantity: 1})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestAddLine_UnavailableProduct(t *testing.T) {
	svc, deps := newTestService(t)
	ctx := context.Background()

	p := stockedProduct("prod-1", 5)
	p.IsAvailable = false
	deps.products.On("FindByID", mock.Anything, "prod-1").Return(p, nil)

	_, err := svc.AddLine(ctx, "cust-1", AddLineInput{Product: "prod-1", Size: "size-m", Quantity: 1})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAddLine_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		customer string
		input    AddLineInput
	}{
		{"missing customer", "", AddLineInput{Product: "p", Size: "s", Quantity: 1}},
		{"missing product", "cust-1", AddLineInput{Size: "s", Quantity: 1}},
		{"missing size", "cust-1", AddLineInput{Product: "p", Quantity: 1}},
		{"zero quantity", "cust-1", AddLineInput{Product: "p", Size: "s"}},
		{"negative quantity", "cust-1", AddLineInput{Product: "p", Size: "s", Quantity: -2}},
		{"excessive quantity", "cust-1", AddLineInput{Product: "p", Size: "s", Quantity: MaxQuantityPerLine + 1}},
		{"negative price", "cust-1", AddLineInput{Product: "p", Size: "s", Quantity: 1, Price: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AddLine(ctx, tc.customer, tc.input)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}
}

func TestAddLine_ConcurrentAddsRespectStock(t *testing.T) {
	logger := newTestLogger()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	products := &mockProductRepository{}
	sizes := &mockSizeRepository{}
	products.On("FindByID", mock.Anything, "prod-1").Return(stockedProduct("prod-1", 5), nil)

	cat := catalog.NewService(products, sizes, catalog.NewCache(client, time.Minute), logger)
	kafkaProducer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig([]string{"localhost:9092"}), logger)
	producer := event.NewProducer(kafkaProducer, logger)

	lines := &stubLineStore{}
	svc := NewCartService(lines, &mockRemovedLineRepository{}, cat, producer, logger)

	// Four concurrent adds of 2 against a stock of 5: serialized on the
	// tuple lock, exactly two merge in (2, then 4) and two are rejected.
	// Without serialization the stale snapshots would let the merged
	// quantity overshoot the stock.
	const callers = 4
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.AddLine(context.Background(), "cust-1", AddLineInput{
				Product:  "prod-1",
				Size:     "size-m",
				Quantity: 2,
			})
		}(i)
	}
	wg.Wait()

	succeeded, rejected := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, apperrors.ErrCapacityExceeded):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 2, succeeded)
	assert.Equal(t, 2, rejected)
	assert.Equal(t, 4, lines.quantity())
}

// --- UpdateQuantity ---

func TestUpdateQuantity_ReplacesWithinStock(t *testing.T) {
	svc, deps := newTestService(t)
	ctx := context.Background()

	deps.lines.On("FindByID", mock.Anything, "cust-1", "line-1").Return(existingLine("cust-1", 2), nil)
	deps.products.On("FindByID", mock.Anything, "prod-1").Return(stockedProduct("prod-1", 5), nil)
	deps.lines.On("UpdateQuantity", mock.Anything, "line-1", 4).Return(existingLine("cust-1", 4), nil)

	line, err := svc.UpdateQuantity(ctx, "cust-1", "line-1", UpdateQuantityInput{Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, 4, line.Quantity)
}

func TestUpdateQuantity_ChecksWholeQuantityNotDelta(t *testing.T) {
	svc, deps := newTestService(t)
	ctx := context.Background()

	deps.lines.On("FindByID", mock.Anything, "cust-1", "line-1").Return(existingLine("cust-1", 2), nil)
	deps.products.On("FindByID", mock.Anything, "prod-1").Return(stockedProduct("prod-1", 5), nil)

	_, err := svc.UpdateQuantity(ctx, "cust-1", "line-1", UpdateQuantityInput{Quantity: 6})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrCapacityExceeded)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Only 5 items available in stock", appErr.Message)
}

func TestUpdateQuantity_DroppedVariantCountsAsZeroStock(t *testing.T) {
	svc, deps := newTestService(t)
	ctx := context.Background()

	// The product no longer sells size-m.
	p := stockedProduct("prod-1", 5)
	p.Variants = []domain.Variant{{Size: "size-l", Price: 2599, Stock: 5}}

	deps.lines.On("FindByID", mock.Anything, "cust-1", "line-1").Return(existingLine("cust-1", 2), nil)
	deps.products.On("FindByID", mock.Anything, "prod-1").Return(p, nil)

	_, err := svc.UpdateQuantity(ctx, "cust-1", "line-1", UpdateQuantityInput{Quantity: 1})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Only 0 items available in stock", appErr.Message)
}

func TestUpdateQuantity_LineNotFound(t *testing.T) {
	svc, deps := newTestService(t)
	ctx := context.Background()

	deps.lines.On("FindByID", mock.Anything, "cust-1", "missing").
		Return(nil, apperrors.NotFoundMsg("cart item not found"))

	_, err := svc.UpdateQuantity(ctx, "cust-1", "missing", UpdateQuantityInput{Quantity: 1})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateQuantity_ZeroQuantityRejected(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.UpdateQuantity(context.Background(), "cust-1", "line-1", UpdateQuantityInput{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

// --- RemoveLine ---

func TestRemoveLine_WritesLedgerBeforeDelete(t *testing.T) {
	svc, deps := newTestService(t)
	ctx := context.Background()

	line := existingLine("cust-1", 2)
	deps.lines.On("FindByID", mock.Anything, "cust-1", "line-1").Return(line, nil)

	ledgerWritten := false
	deps.removed.On("Insert", mock.Anything, mock.MatchedBy(func(r *domain.RemovedCartLine) bool {
		return r.Customer == "cust-1" && r.Quantity == 2 && r.PriceAtRemoving == line.PriceAtAdding
	})).Run(func(args mock.Arguments) { ledgerWritten = true }).Return(nil)
	deps.lines.On("Delete", mock.Anything, "line-1").Run(func(args mock.Arguments) {
		assert.True(t, ledgerWritten, "line deleted before ledger record was written")
	}).Return(nil)

	rec, err := svc.RemoveLine(ctx, "cust-1", "line-1")
	require.NoError(t, err)
	assert.Equal(t, line.PriceAtAdding, rec.PriceAtRemoving)
	assert.False(t, rec.RemovedAt.IsZero())

	deps.removed.AssertExpectations(t)
	deps.lines.AssertExpectations(t)
}

func TestRemoveLine_LedgerFailureLeavesLine(t *testing.T) {
	svc, deps := newTestService(t)
	ctx := context.Background()

	deps.lines.On("FindByID", mock.Anything, "cust-1", "line-1").Return(existingLine("cust-1", 2), nil)
	deps.removed.On("Insert", mock.Anything, mock.Anything).Return(assert.AnError)

	_, err := svc.RemoveLine(ctx, "cust-1", "line-1")
	require.Error(t, err)

	deps.lines.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestRemoveLine_NotFound(t *testing.T) {
	svc, deps := newTestService(t)

	deps.lines.On("FindByID", mock.Anything, "cust-1", "missing").
		Return(nil, apperrors.NotFoundMsg("cart item not found"))

	_, err := svc.RemoveLine(context.Background(), "cust-1", "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// --- ClearCart ---

func TestClearCart_SnapshotsAllLinesFirst(t *testing.T) {
	svc, deps := newTestService(t)
	ctx := context.Background()

	lines := []domain.CartLine{
		*existingLine("cust-1", 2),
		{ID: "line-2", Customer: "cust-1", Product: "prod-2", Size: "size-s", Quantity: 1, PriceAtAdding: 999},
	}
	deps.lines.On("ListByCustomer", mock.Anything, "cust-1").Return(lines, nil)

	deps.removed.On("InsertMany", mock.Anything, mock.MatchedBy(func(recs []domain.RemovedCartLine) bool {
		return len(recs) == 2 &&
			recs[0].PriceAtRemoving == 2599 &&
			recs[1].PriceAtRemoving == 999
	})).Return(nil)
	deps.lines.On("DeleteByCustomer", mock.Anything, "cust-1").Return(int64(2), nil)

	deleted, err := svc.ClearCart(ctx, "cust-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	deps.removed.AssertExpectations(t)
}

func TestClearCart_EmptyCartIsNoop(t *testing.T) {
	svc, deps := newTestService(t)

	deps.lines.On("ListByCustomer", mock.Anything, "cust-1").Return([]domain.CartLine{}, nil)

	deleted, err := svc.ClearCart(context.Background(), "cust-1")
	require.NoError(t, err)
	assert.Zero(t, deleted)

	deps.removed.AssertNotCalled(t, "InsertMany", mock.Anything, mock.Anything)
	deps.lines.AssertNotCalled(t, "DeleteByCustomer", mock.Anything, mock.Anything)
}

func TestClearCart_LedgerFailureAbortsDelete(t *testing.T) {
	svc, deps := newTestService(t)

	deps.lines.On("ListByCustomer", mock.Anything, "cust-1").
		Return([]domain.CartLine{*existingLine("cust-1", 2)}, nil)
	deps.removed.On("InsertMany", mock.Anything, mock.Anything).Return(assert.AnError)

	_, err := svc.ClearCart(context.Background(), "cust-1")
	require.Error(t, err)

	deps.lines.AssertNotCalled(t, "DeleteByCustomer", mock.Anything, mock.Anything)
}

// --- SyncCart ---

func TestSyncCart_AppliesValidSkipsFailing(t *testing.T) {
	svc, deps := newTestService(t)
	ctx := context.Background()

	// prod-1 has stock; prod-2 is sold out; prod-3 does not exist.
	deps.products.On("FindByID", mock.Anything, "prod-1").Return(stockedProduct("prod-1", 10), nil)
	deps.products.On("FindByID", mock.Anything, "prod-2").Return(stockedProduct("prod-2", 0), nil)
	deps.products.On("FindByID", mock.Anything, "prod-3").Return(nil, apperrors.NotFoundMsg("product not found"))

	deps.lines.On("FindLine", mock.Anything, "cust-1", "prod-1", "size-m").
		Return(nil, apperrors.NotFoundMsg("cart item not found"))
	deps.lines.On("FindLine", mock.Anything, "cust-1", "prod-2", "size-m").
		Return(nil, apperrors.NotFoundMsg("cart item not found"))
	deps.lines.On("Insert", mock.Anything, mock.Anything).Return(nil)

	result, err := svc.SyncCart(ctx, "cust-1", SyncInput{Items: []SyncItem{
		{Product: "prod-1", Size: "size-m", Quantity: 2},
		{Product: "prod-2", Size: "size-m", Quantity: 1},
		{Product: "prod-3", Size: "size-m", Quantity: 1},
		{Product: "", Size: "size-m", Quantity: 1},
	}})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Applied)
	require.Len(t, result.Skipped, 3)
	assert.Equal(t, "Only 0 items left in stock", result.Skipped[0].Reason)
	assert.Equal(t, "product not found", result.Skipped[1].Reason)
	assert.Equal(t, "product and size are required", result.Skipped[2].Reason)
}

func TestSyncCart_MergesIntoExistingLines(t *testing.T) {
	svc, deps := newTestService(t)
	ctx := context.Background()

	deps.products.On("FindByID", mock.Anything, "prod-1").Return(stockedProduct("prod-1", 10), nil)
	deps.lines.On("FindLine", mock.Anything, "cust-1", "prod-1", "size-m").
		Return(existingLine("cust-1", 2), nil)
	deps.lines.On("UpdateQuantity", mock.Anything, "line-1", 5).Return(existingLine("cust-1", 5), nil)

	result, err := svc.SyncCart(ctx, "cust-1", SyncInput{Items: []SyncItem{
		{Product: "prod-1", Size: "size-m", Quantity: 3},
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Applied)
	assert.Empty(t, result.Skipped)
}

func TestSyncCart_EmptyInputIsNoop(t *testing.T) {
	svc, _ := newTestService(t)

	result, err := svc.SyncCart(context.Background(), "cust-1", SyncInput{})
	require.NoError(t, err)
	assert.Zero(t, result.Applied)
	assert.Empty(t, result.Skipped)
}

// --- GetCart ---

func TestGetCart_PopulatesDisplayRefs(t *testing.T) {
	svc, deps := newTestService(t)
	ctx := context.Background()

	deps.lines.On("ListByCustomer", mock.Anything, "cust-1").
		Return([]domain.CartLine{*existingLine("cust-1", 2)}, nil)
	deps.products.On("FindByIDs", mock.Anything, []string{"prod-1"}).
		Return(map[string]*domain.Product{"prod-1": stockedProduct("prod-1", 5)}, nil)
	deps.sizes.On("FindByIDs", mock.Anything, []string{"size-m"}).
		Return(map[string]*domain.Size{"size-m": {ID: "size-m", Name: "M"}}, nil)

	views, err := svc.GetCart(ctx, "cust-1")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Classic Tee", views[0].Product.Name)
	assert.Equal(t, "M", views[0].Size.Name)
	assert.Equal(t, int64(2599), views[0].PriceAtAdding)
}

func TestGetCart_EmptyCart(t *testing.T) {
	svc, deps := newTestService(t)

	deps.lines.On("ListByCustomer", mock.Anything, "cust-1").Return([]domain.CartLine{}, nil)
	deps.products.On("FindByIDs", mock.Anything, mock.Anything).Return(map[string]*domain.Product{}, nil).Maybe()
	deps.sizes.On("FindByIDs", mock.Anything, mock.Anything).Return(map[string]*domain.Size{}, nil).Maybe()

	views, err := svc.GetCart(context.Background(), "cust-1")
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestGetCart_DeletedProductFallsBackToID(t *testing.T) {
	svc, deps := newTestService(t)
	ctx := context.Background()

	deps.lines.On("ListByCustomer", mock.Anything, "cust-1").
		Return([]domain.CartLine{*existingLine("cust-1", 2)}, nil)
	deps.products.On("FindByIDs", mock.Anything, []string{"prod-1"}).
		Return(map[string]*domain.Product{}, nil)
	deps.sizes.On("FindByIDs", mock.Anything, []string{"size-m"}).
		Return(map[string]*domain.Size{}, nil)

	views, err := svc.GetCart(ctx, "cust-1")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, domain.ProductRef{ID: "prod-1"}, views[0].Product)
}
