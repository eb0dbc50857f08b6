package service

import (
	"context"

	"emarket/internal/models"
)

// EventPublisher publishes storefront domain events
type EventPublisher interface {
	PublishBookListed(ctx context.Context, event *models.BookListedEvent) error
	PublishPurchaseConfirmed(ctx context.Context, event *models.PurchaseConfirmedEvent) error
	PublishReviewPosted(ctx context.Context, event *models.ReviewPostedEvent) error
}
