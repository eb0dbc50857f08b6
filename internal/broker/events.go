package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"emarket/internal/models"
	"emarket/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventPublisher publishes storefront events through a Producer
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishBookListed publishes BookListed event
func (ep *EventPublisher) PublishBookListed(ctx context.Context, event *models.BookListedEvent) error {
	return ep.producer.PublishEvent(ctx, "book-"+event.BookID, event)
}

// PublishPurchaseConfirmed publishes PurchaseConfirmed event
func (ep *EventPublisher) PublishPurchaseConfirmed(ctx context.Context, event *models.PurchaseConfirmedEvent) error {
	return ep.producer.PublishEvent(ctx, "book-"+event.BookID, event)
}

// PublishReviewPosted publishes ReviewPosted event
func (ep *EventPublisher) PublishReviewPosted(ctx context.Context, event *models.ReviewPostedEvent) error {
	return ep.producer.PublishEvent(ctx, "book-"+event.BookID, event)
}

// NopPublisher drops every event. It stands in when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishBookListed(context.Context, *models.BookListedEvent) error { return nil }

func (NopPublisher) PublishPurchaseConfirmed(context.Context, *models.PurchaseConfirmedEvent) error {
	return nil
}

func (NopPublisher) PublishReviewPosted(context.Context, *models.ReviewPostedEvent) error { return nil }

// EventHandler routes incoming events to registered callbacks
type EventHandler struct {
	onBookListed        func(context.Context, *models.BookListedEvent) error
	onPurchaseConfirmed func(context.Context, *models.PurchaseConfirmedEvent) error
	onReviewPosted      func(context.Context, *models.ReviewPostedEvent) error
	logger              *zap.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{logger: util.GetLogger()}
}

// OnBookListed registers a handler for BookListed events
func (eh *EventHandler) OnBookListed(handler func(context.Context, *models.BookListedEvent) error) {
	eh.onBookListed = handler
}

// OnPurchaseConfirmed registers a handler for PurchaseConfirmed events
func (eh *EventHandler) OnPurchaseConfirmed(handler func(context.Context, *models.PurchaseConfirmedEvent) error) {
	eh.onPurchaseConfirmed = handler
}

// OnReviewPosted registers a handler for ReviewPosted events
func (eh *EventHandler) OnReviewPosted(handler func(context.Context, *models.ReviewPostedEvent) error) {
	eh.onReviewPosted = handler
}

// HandleMessage routes messages to appropriate handlers. Events without a
// handler are acknowledged.
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var base models.BaseEvent
	if err := json.Unmarshal(msg.Value, &base); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	eh.logger.Debug("Handling event",
		zap.String("event_type", base.EventType),
		zap.String("event_id", base.EventID))

	switch base.EventType {
	case models.EventTypeBookListed:
		if eh.onBookListed != nil {
			var event models.BookListedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal BookListed event: %w", err)
			}
			return eh.onBookListed(ctx, &event)
		}

	case models.EventTypePurchaseConfirmed:
		if eh.onPurchaseConfirmed != nil {
			var event models.PurchaseConfirmedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal PurchaseConfirmed event: %w", err)
			}
			return eh.onPurchaseConfirmed(ctx, &event)
		}

	case models.EventTypeReviewPosted:
		if eh.onReviewPosted != nil {
			var event models.ReviewPostedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal ReviewPosted event: %w", err)
			}
			return eh.onReviewPosted(ctx, &event)
		}

	default:
		eh.logger.Warn("Unhandled event type", zap.String("event_type", base.EventType))
	}

	return nil
}
