package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/modacart/backend/internal/catalog"
	"github.com/modacart/backend/internal/domain"
	"github.com/modacart/backend/internal/repository"
)

// AdminService serves the back-office views: every customer's cart and the
// full removal ledger, grouped per customer with account details joined on.
type AdminService struct {
	lines   repository.CartLineRepository
	removed repository.RemovedLineRepository
	users   repository.UserRepository
	catalog *catalog.Service
	logger  *slog.Logger
}

func NewAdminService(
	lines repository.CartLineRepository,
	removed repository.RemovedLineRepository,
	users repository.UserRepository,
	catalog *catalog.Service,
	logger *slog.Logger,
) *AdminService {
	return &AdminService{
		lines:   lines,
		removed: removed,
		users:   users,
		catalog: catalog,
		logger:  logger,
	}
}

// ListAllCarts returns every customer's cart lines grouped by customer,
// ordered by customer id. Customers whose account was deleted still appear,
// with only their id.
func (s *AdminService) ListAllCarts(ctx context.Context) ([]domain.CustomerCart, error) {
	lines, err := s.lines.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cart lines: %w", err)
	}

	byCustomer := make(map[string][]domain.CartLine)
	for _, l := range lines {
		byCustomer[l.Customer] = append(byCustomer[l.Customer], l)
	}

	customers, err := s.customerSummaries(ctx, keysOf(byCustomer))
	if err != nil {
		return nil, err
	}

	productRefs, sizeRefs, err := s.displayRefsForLines(ctx, lines)
	if err != nil {
		return nil, err
	}

	groups := make([]domain.CustomerCart, 0, len(byCustomer))
	for customerID, customerLines := range byCustomer {
		items := make([]domain.CartLineView, len(customerLines))
		for i, l := range customerLines {
			items[i] = domain.CartLineView{
				ID:            l.ID,
				Product:       productRefs[l.Product],
				Size:          sizeRefs[l.Size],
				Quantity:      l.Quantity,
				PriceAtAdding: l.PriceAtAdding,
				CreatedAt:     l.CreatedAt,
				UpdatedAt:     l.UpdatedAt,
			}
		}
		groups = append(groups, domain.CustomerCart{
			Customer: customers[customerID],
			Items:    items,
		})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Customer.ID < groups[j].Customer.ID })
	return groups, nil
}

// ListRemovedItems returns the full removal ledger grouped by customer,
// ordered by customer id. Within a group records keep the ledger's most
// recent first order.
func (s *AdminService) ListRemovedItems(ctx context.Context) ([]domain.CustomerRemovedItems, error) {
	recs, err := s.removed.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list removed lines: %w", err)
	}

	byCustomer := make(map[string][]domain.RemovedCartLine)
	for _, r := range recs {
		byCustomer[r.Customer] = append(byCustomer[r.Customer], r)
	}

	customers, err := s.customerSummaries(ctx, keysOf(byCustomer))
	if err != nil {
		return nil, err
	}

	productIDs := make([]string, 0, len(recs))
	sizeIDs := make([]string, 0, len(recs))
	for _, r := range recs {
		productIDs = append(productIDs, r.Product)
		sizeIDs = append(sizeIDs, r.Size)
	}
	productRefs, sizeRefs, err := s.catalog.DisplayRefs(ctx, productIDs, sizeIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve display refs: %w", err)
	}

	groups := make([]domain.CustomerRemovedItems, 0, len(byCustomer))
	for customerID, customerRecs := range byCustomer {
		items := make([]domain.RemovedLineView, len(customerRecs))
		for i, r := range customerRecs {
			items[i] = domain.RemovedLineView{
				ID:              r.ID,
				Product:         productRefs[r.Product],
				Size:            sizeRefs[r.Size],
				Quantity:        r.Quantity,
				PriceAtRemoving: r.PriceAtRemoving,
				RemovedAt:       r.RemovedAt,
			}
		}
		groups = append(groups, domain.CustomerRemovedItems{
			Customer:     customers[customerID],
			RemovedItems: items,
		})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Customer.ID < groups[j].Customer.ID })
	return groups, nil
}

// customerSummaries resolves customer ids to account summaries, falling
// back to an id-only summary for deleted accounts.
func (s *AdminService) customerSummaries(ctx context.Context, ids []string) (map[string]domain.CustomerSummary, error) {
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("find customers: %w", err)
	}

	out := make(map[string]domain.CustomerSummary, len(ids))
	for _, id := range ids {
		if u, ok := users[id]; ok {
			out[id] = u.Summary()
			continue
		}
		s.logger.WarnContext(ctx, "cart references unknown customer",
			slog.String("customer_id", id),
		)
		out[id] = domain.CustomerSummary{ID: id}
	}
	return out, nil
}

func (s *AdminService) displayRefsForLines(ctx context.Context, lines []domain.CartLine) (map[string]domain.ProductRef, map[string]domain.SizeRef, error) {
	productIDs := make([]string, 0, len(lines))
	sizeIDs := make([]string, 0, len(lines))
	for _, l := range lines {
		productIDs = append(productIDs, l.Product)
		sizeIDs = append(sizeIDs, l.Size)
	}
	productRefs, sizeRefs, err := s.catalog.DisplayRefs(ctx, productIDs, sizeIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve display refs: %w", err)
	}
	return productRefs, sizeRefs, nil
}

func keysOf[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
