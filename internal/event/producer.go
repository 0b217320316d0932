package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/modacart/backend/internal/domain"
	pkgkafka "github.com/modacart/backend/pkg/kafka"
)

// Kafka topics for cart domain events.
var (
	TopicLineAdded   = pkgkafka.Topic("cart", "line_added")
	TopicLineRemoved = pkgkafka.Topic("cart", "line_removed")
	TopicCartCleared = pkgkafka.Topic("cart", "cleared")
	TopicCartSynced  = pkgkafka.Topic("cart", "synced")
)

const (
	aggregateTypeCart = "cart"
	sourceBackend     = "modacart-backend"
)

// LineAddedData is the payload for a cart.line_added event. Merged is true
// when the add bumped an existing line instead of creating one.
type LineAddedData struct {
	Customer string `json:"customer"`
	LineID   string `json:"line_id"`
	Product  string `json:"product"`
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
	Merged   bool   `json:"merged"`
}

// LineRemovedData is the payload for a cart.line_removed event.
type LineRemovedData struct {
	Customer        string    `json:"customer"`
	LineID          string    `json:"line_id"`
	Product         string    `json:"product"`
	Size            string    `json:"size"`
	Quantity        int       `json:"quantity"`
	PriceAtRemoving int64     `json:"price_at_removing"`
	RemovedAt       time.Time `json:"removed_at"`
}

// CartClearedData is the payload for a cart.cleared event.
type CartClearedData struct {
	Customer     string `json:"customer"`
	LinesRemoved int64  `json:"lines_removed"`
}

// CartSyncedData is the payload for a cart.synced event.
type CartSyncedData struct {
	Customer string `json:"customer"`
	Applied  int    `json:"applied"`
	Skipped  int    `json:"skipped"`
}

// Producer publishes cart domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishLineAdded publishes a cart.line_added event.
func (p *Producer) PublishLineAdded(ctx context.Context, line *domain.CartLine, merged bool) error {
	data := LineAddedData{
		Customer: line.Customer,
		LineID:   line.ID,
		Product:  line.Product,
		Size:     line.Size,
		Quantity: line.Quantity,
		Price:    line.PriceAtAdding,
		Merged:   merged,
	}

	event, err := pkgkafka.NewEvent(TopicLineAdded, line.Customer, aggregateTypeCart, sourceBackend, data)
	if err != nil {
		return fmt.Errorf("create cart.line_added event: %w", err)
	}
	if err := p.kafka.Publish(ctx, TopicLineAdded, event); err != nil {
		return fmt.Errorf("publish cart.line_added event: %w", err)
	}

	p.logger.DebugContext(ctx, "published cart.line_added event",
		slog.String("customer_id", line.Customer),
		slog.String("line_id", line.ID),
	)
	return nil
}

// PublishLineRemoved publishes a cart.line_removed event.
func (p *Producer) PublishLineRemoved(ctx context.Context, rec *domain.RemovedCartLine) error {
	data := LineRemovedData{
		Customer:        rec.Customer,
		LineID:          rec.ID,
		Product:         rec.Product,
		Size:            rec.Size,
		Quantity:        rec.Quantity,
		PriceAtRemoving: rec.PriceAtRemoving,
		RemovedAt:       rec.RemovedAt,
	}

	event, err := pkgkafka.NewEvent(TopicLineRemoved, rec.Customer, aggregateTypeCart, sourceBackend, data)
	if err != nil {
		return fmt.Errorf("create cart.line_removed event: %w", err)
	}
	if err := p.kafka.Publish(ctx, TopicLineRemoved, event); err != nil {
		return fmt.Errorf("publish cart.line_removed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published cart.line_removed event",
		slog.String("customer_id", rec.Customer),
	)
	return nil
}

// PublishCartCleared publishes a cart.cleared event.
func (p *Producer) PublishCartCleared(ctx context.Context, customer string, linesRemoved int64) error {
	data := CartClearedData{Customer: customer, LinesRemoved: linesRemoved}

	event, err := pkgkafka.NewEvent(TopicCartCleared, customer, aggregateTypeCart, sourceBackend, data)
	if err != nil {
		return fmt.Errorf("create cart.cleared event: %w", err)
	}
	if err := p.kafka.Publish(ctx, TopicCartCleared, event); err != nil {
		return fmt.Errorf("publish cart.cleared event: %w", err)
	}

	p.logger.DebugContext(ctx, "published cart.cleared event",
		slog.String("customer_id", customer),
	)
	return nil
}

// PublishCartSynced publishes a cart.synced event.
func (p *Producer) PublishCartSynced(ctx context.Context, customer string, applied, skipped int) error {
	data := CartSyncedData{Customer: customer, Applied: applied, Skipped: skipped}

	event, err := pkgkafka.NewEvent(TopicCartSynced, customer, aggregateTypeCart, sourceBackend, data)
	if err != nil {
		return fmt.Errorf("create cart.synced event: %w", err)
	}
	if err := p.kafka.Publish(ctx, TopicCartSynced, event); err != nil {
		return fmt.Errorf("publish cart.synced event: %w", err)
	}

	p.logger.DebugContext(ctx, "published cart.synced event",
		slog.String("customer_id", customer),
		slog.Int("applied", applied),
		slog.Int("skipped", skipped),
	)
	return nil
}
