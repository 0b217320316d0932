package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/modacart/backend/internal/catalog"
	"github.com/modacart/backend/internal/domain"
	"github.com/modacart/backend/internal/event"
	"github.com/modacart/backend/internal/repository"
	apperrors "github.com/modacart/backend/pkg/errors"
)

// MaxQuantityPerLine is the upper bound for a single cart line, independent
// of stock, to prevent abuse.
const MaxQuantityPerLine = 100

// AddLineInput holds the parameters for adding a product variant to the cart.
// Price is the price the customer saw; it is captured on the new line and
// never updated afterwards. Merges keep the price captured at first add.
type AddLineInput struct {
	Product  string `json:"product" validate:"required"`
	Size     string `json:"size" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gte=1"`
	Price    int64  `json:"price_at_adding" validate:"gte=0"`
}

// UpdateQuantityInput holds the parameters for replacing a line's quantity.
type UpdateQuantityInput struct {
	Quantity int `json:"quantity" validate:"required,gte=1"`
}

// SyncItem is one (product, size, quantity) tuple from a client-side cart.
type SyncItem struct {
	Product  string `json:"product" validate:"required"`
	Size     string `json:"size" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gte=1"`
	Price    int64  `json:"price_at_adding" validate:"gte=0"`
}

// SyncInput holds a client-side cart to merge into the stored one.
type SyncInput struct {
	Items []SyncItem `json:"items" validate:"required,dive"`
}

// SkippedItem reports a sync tuple that could not be applied.
type SkippedItem struct {
	Product  string `json:"product"`
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
	Reason   string `json:"reason"`
}

// SyncResult summarizes a cart sync: how many tuples were applied and which
// were skipped, with the reason each failed.
type SyncResult struct {
	Applied int           `json:"applied"`
	Skipped []SkippedItem `json:"skipped"`
}

// CartService reconciles customer carts against per-variant stock. Every
// write re-reads the variant's stock from the store and serializes on the
// line tuple, so a line's quantity never exceeds the stock observed at
// write time.
type CartService struct {
	lines    repository.CartLineRepository
	removed  repository.RemovedLineRepository
	catalog  *catalog.Service
	producer *event.Producer
	logger   *slog.Logger
	locks    *lineLocks
}

func NewCartService(
	lines repository.CartLineRepository,
	removed repository.RemovedLineRepository,
	catalog *catalog.Service,
	producer *event.Producer,
	logger *slog.Logger,
) *CartService {
	return &CartService{
		lines:    lines,
		removed:  removed,
		catalog:  catalog,
		producer: producer,
		logger:   logger,
		locks:    newLineLocks(),
	}
}

// GetCart returns the customer's cart lines with catalog display data
// populated. A customer with no lines gets an empty slice, not an error.
func (s *CartService) GetCart(ctx context.Context, customer string) ([]domain.CartLineView, error) {
	if customer == "" {
		return nil, apperrors.InvalidInput("customer id is required")
	}

	lines, err := s.lines.ListByCustomer(ctx, customer)
	if err != nil {
		return nil, fmt.Errorf("list cart lines: %w", err)
	}
	return s.assembleViews(ctx, lines)
}

// AddLine adds a quantity of a product variant to the cart. An existing
// line for the same (product, size) merges by increasing quantity. The
// merged quantity must not exceed the variant's current stock.
func (s *CartService) AddLine(ctx context.Context, customer string, input AddLineInput) (*domain.CartLine, error) {
	if customer == "" {
		return nil, apperrors.InvalidInput("customer id is required")
	}
	if input.Product == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if input.Size == "" {
		return nil, apperrors.InvalidInput("size id is required")
	}
	if input.Quantity < 1 {
		return nil, apperrors.InvalidInput("quantity must be greater than 0")
	}
	if input.Quantity > MaxQuantityPerLine {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerLine))
	}
	if input.Price < 0 {
		return nil, apperrors.InvalidInput("price must not be negative")
	}

	unlock := s.locks.lock(customer, input.Product, input.Size)
	defer unlock()

	line, merged, err := s.addLine(ctx, customer, input)
	if err != nil {
		return nil, err
	}

	cartLinesAdded.WithLabelValues(fmt.Sprintf("%t", merged)).Inc()

	if err := s.producer.PublishLineAdded(ctx, line, merged); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.line_added event",
			slog.String("customer_id", customer),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "cart line added",
		slog.String("customer_id", customer),
		slog.String("product_id", input.Product),
		slog.String("size_id", input.Size),
		slog.Int("quantity", line.Quantity),
		slog.Bool("merged", merged),
	)

	return line, nil
}

// addLine is the reconciliation core shared by AddLine and SyncCart. The
// caller holds the tuple lock.
func (s *CartService) addLine(ctx context.Context, customer string, input AddLineInput) (*domain.CartLine, bool, error) {
	_, variant, err := s.catalog.Availability(ctx, input.Product, input.Size)
	if err != nil {
		return nil, false, err
	}
	if variant == nil {
		return nil, false, apperrors.InvalidInput("product is not available in the selected size")
	}

	existing, err := s.lines.FindLine(ctx, customer, input.Product, input.Size)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, false, fmt.Errorf("find cart line: %w", err)
	}

	existingQty := 0
	if existing != nil {
		existingQty = existing.Quantity
	}

	if existingQty+input.Quantity > variant.Stock {
		remaining := variant.Stock - existingQty
		if remaining < 0 {
			remaining = 0
		}
		cartCapacityRejections.WithLabelValues("add").Inc()
		return nil, false, apperrors.CapacityExceeded(fmt.Sprintf("Only %d items left in stock", remaining))
	}

	if existing != nil {
		line, err := s.lines.UpdateQuantity(ctx, existing.ID, existingQty+input.Quantity)
		if err != nil {
			return nil, false, fmt.Errorf("merge cart line: %w", err)
		}
		return line, true, nil
	}

	// The client sends the price it displayed; fall back to the catalog
	// price when it is omitted.
	price := input.Price
	if price == 0 {
		price = variant.Price
	}

	now := time.Now().UTC()
	line := &domain.CartLine{
		ID:            uuid.NewString(),
		Customer:      customer,
		Product:       input.Product,
		Size:          input.Size,
		Quantity:      input.Quantity,
		PriceAtAdding: price,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.lines.Insert(ctx, line); err != nil {
		return nil, false, fmt.Errorf("insert cart line: %w", err)
	}
	return line, false, nil
}

// UpdateQuantity replaces a cart line's quantity. Unlike AddLine it does
// not merge: the new quantity is checked against the variant's stock as a
// whole. A variant the product no longer sells counts as zero stock.
func (s *CartService) UpdateQuantity(ctx context.Context, customer, lineID string, input UpdateQuantityInput) (*domain.CartLine, error) {
	if customer == "" {
		return nil, apperrors.InvalidInput("customer id is required")
	}
	if lineID == "" {
		return nil, apperrors.InvalidInput("cart item id is required")
	}
	if input.Quantity < 1 {
		return nil, apperrors.InvalidInput("quantity must be greater than 0")
	}
	if input.Quantity > MaxQuantityPerLine {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerLine))
	}

	line, err := s.lines.FindByID(ctx, customer, lineID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(customer, line.Product, line.Size)
	defer unlock()

	_, variant, err := s.catalog.Availability(ctx, line.Product, line.Size)
	if err != nil {
		return nil, err
	}

	stock := 0
	if variant != nil {
		stock = variant.Stock
	}
	if input.Quantity > stock {
		cartCapacityRejections.WithLabelValues("update").Inc()
		return nil, apperrors.CapacityExceeded(fmt.Sprintf("Only %d items available in stock", stock))
	}

	updated, err := s.lines.UpdateQuantity(ctx, line.ID, input.Quantity)
	if err != nil {
		return nil, fmt.Errorf("update cart line: %w", err)
	}

	s.logger.InfoContext(ctx, "cart line quantity updated",
		slog.String("customer_id", customer),
		slog.String("line_id", lineID),
		slog.Int("quantity", input.Quantity),
	)

	return updated, nil
}

// RemoveLine removes a cart line. The removal is recorded in the ledger
// before the line is deleted, so a crash between the two steps leaves an
// extra ledger record rather than a silent loss of history.
func (s *CartService) RemoveLine(ctx context.Context, customer, lineID string) (*domain.RemovedCartLine, error) {
	if customer == "" {
		return nil, apperrors.InvalidInput("customer id is required")
	}
	if lineID == "" {
		return nil, apperrors.InvalidInput("cart item id is required")
	}

	line, err := s.lines.FindByID(ctx, customer, lineID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(customer, line.Product, line.Size)
	defer unlock()

	rec := line.Removal(uuid.NewString(), time.Now().UTC())
	if err := s.removed.Insert(ctx, &rec); err != nil {
		return nil, fmt.Errorf("record removal: %w", err)
	}
	if err := s.lines.Delete(ctx, line.ID); err != nil {
		return nil, fmt.Errorf("delete cart line: %w", err)
	}

	cartLinesRemoved.WithLabelValues("removed").Inc()

	if err := s.producer.PublishLineRemoved(ctx, &rec); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.line_removed event",
			slog.String("customer_id", customer),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "cart line removed",
		slog.String("customer_id", customer),
		slog.String("line_id", lineID),
		slog.String("product_id", line.Product),
	)

	return &rec, nil
}

// ClearCart removes every line in the customer's cart, ledger-first. An
// already-empty cart clears to zero without error.
func (s *CartService) ClearCart(ctx context.Context, customer string) (int64, error) {
	if customer == "" {
		return 0, apperrors.InvalidInput("customer id is required")
	}

	lines, err := s.lines.ListByCustomer(ctx, customer)
	if err != nil {
		return 0, fmt.Errorf("list cart lines: %w", err)
	}
	if len(lines) == 0 {
		return 0, nil
	}

	removedAt := time.Now().UTC()
	recs := make([]domain.RemovedCartLine, len(lines))
	for i := range lines {
		recs[i] = lines[i].Removal(uuid.NewString(), removedAt)
	}
	if err := s.removed.InsertMany(ctx, recs); err != nil {
		return 0, fmt.Errorf("record removals: %w", err)
	}

	deleted, err := s.lines.DeleteByCustomer(ctx, customer)
	if err != nil {
		return 0, fmt.Errorf("clear cart: %w", err)
	}

	cartLinesRemoved.WithLabelValues("cleared").Add(float64(deleted))

	if err := s.producer.PublishCartCleared(ctx, customer, deleted); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
			slog.String("customer_id", customer),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "cart cleared",
		slog.String("customer_id", customer),
		slog.Int64("lines_removed", deleted),
	)

	return deleted, nil
}

// SyncCart merges a client-side cart into the stored one. Each tuple goes
// through the same stock reconciliation as AddLine; tuples that fail it are
// skipped with a reason and the rest still apply, so one stale client line
// cannot block the whole merge.
func (s *CartService) SyncCart(ctx context.Context, customer string, input SyncInput) (*SyncResult, error) {
	if customer == "" {
		return nil, apperrors.InvalidInput("customer id is required")
	}

	result := &SyncResult{Skipped: []SkippedItem{}}
	for _, item := range input.Items {
		skipped := s.syncItem(ctx, customer, item)
		if skipped != nil {
			result.Skipped = append(result.Skipped, *skipped)
			cartSyncLines.WithLabelValues("skipped").Inc()
			continue
		}
		result.Applied++
		cartSyncLines.WithLabelValues("applied").Inc()
	}

	if err := s.producer.PublishCartSynced(ctx, customer, result.Applied, len(result.Skipped)); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.synced event",
			slog.String("customer_id", customer),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "cart synced",
		slog.String("customer_id", customer),
		slog.Int("applied", result.Applied),
		slog.Int("skipped", len(result.Skipped)),
	)

	return result, nil
}

func (s *CartService) syncItem(ctx context.Context, customer string, item SyncItem) *SkippedItem {
	skip := func(reason string) *SkippedItem {
		return &SkippedItem{Product: item.Product, Size: item.Size, Quantity: item.Quantity, Reason: reason}
	}

	if item.Product == "" || item.Size == "" {
		return skip("product and size are required")
	}
	if item.Quantity < 1 {
		return skip("quantity must be greater than 0")
	}
	if item.Quantity > MaxQuantityPerLine {
		return skip(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerLine))
	}
	if item.Price < 0 {
		return skip("price must not be negative")
	}

	unlock := s.locks.lock(customer, item.Product, item.Size)
	defer unlock()

	line, merged, err := s.addLine(ctx, customer, AddLineInput(item))
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			s.logger.WarnContext(ctx, "cart sync item skipped",
				slog.String("customer_id", customer),
				slog.String("product_id", item.Product),
				slog.String("size_id", item.Size),
				slog.String("reason", appErr.Message),
			)
			return skip(appErr.Message)
		}
		s.logger.ErrorContext(ctx, "cart sync item failed",
			slog.String("customer_id", customer),
			slog.String("product_id", item.Product),
			slog.String("error", err.Error()),
		)
		return skip("internal error")
	}

	if err := s.producer.PublishLineAdded(ctx, line, merged); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.line_added event",
			slog.String("customer_id", customer),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

// assembleViews joins catalog display projections onto cart lines.
func (s *CartService) assembleViews(ctx context.Context, lines []domain.CartLine) ([]domain.CartLineView, error) {
	productIDs := make([]string, 0, len(lines))
	sizeIDs := make([]string, 0, len(lines))
	for _, l := range lines {
		productIDs = append(productIDs, l.Product)
		sizeIDs = append(sizeIDs, l.Size)
	}

	productRefs, sizeRefs, err := s.catalog.DisplayRefs(ctx, productIDs, sizeIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve display refs: %w", err)
	}

	views := make([]domain.CartLineView, len(lines))
	for i, l := range lines {
		views[i] = domain.CartLineView{
			ID:            l.ID,
			Product:       productRefs[l.Product],
			Size:          sizeRefs[l.Size],
			Quantity:      l.Quantity,
			PriceAtAdding: l.PriceAtAdding,
			CreatedAt:     l.CreatedAt,
			UpdatedAt:     l.UpdatedAt,
		}
	}
	return views, nil
}
