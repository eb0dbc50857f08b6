package worker

import (
	"context"

	"emarket/internal/broker"
	"emarket/internal/models"
	"emarket/internal/service"
	"emarket/internal/util"

	"go.uber.org/zap"
)

// HookWorker pre-generates the marketing hook of every newly listed book so
// the first preview is served from cache
type HookWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	reading      *service.ReadingService
	logger       *zap.Logger
}

// NewHookWorker creates a new hook worker
func NewHookWorker(consumer *broker.Consumer, reading *service.ReadingService) *HookWorker {
	w := &HookWorker{
		consumer:     consumer,
		eventHandler: broker.NewEventHandler(),
		reading:      reading,
		logger:       util.GetLogger(),
	}
	w.eventHandler.OnBookListed(w.HandleBookListed)
	return w
}

// HandleBookListed generates and caches the hook of the listed book
func (w *HookWorker) HandleBookListed(ctx context.Context, event *models.BookListedEvent) error {
	ctx, span := util.StartSpan(ctx, "HookWorker.HandleBookListed")
	defer span.End()

	hook := w.reading.Hook(ctx, models.Book{
		ID:     event.BookID,
		Title:  event.Title,
		Author: event.Author,
	})
	w.logger.Info("Hook prepared",
		zap.String("book_id", event.BookID),
		zap.Int("length", len(hook)))
	return nil
}

// Start starts the worker
func (w *HookWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting hook worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *HookWorker) Stop() error {
	w.logger.Info("Stopping hook worker")
	return w.consumer.Close()
}

// SalesWorker tracks confirmed sales per seller and notifies the seller
type SalesWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	logger       *zap.Logger
}

// NewSalesWorker creates a new sales worker
func NewSalesWorker(consumer *broker.Consumer) *SalesWorker {
	w := &SalesWorker{
		consumer:     consumer,
		eventHandler: broker.NewEventHandler(),
		logger:       util.GetLogger(),
	}
	w.eventHandler.OnPurchaseConfirmed(w.HandlePurchaseConfirmed)
	return w
}

// HandlePurchaseConfirmed counts the sale against the seller
func (w *SalesWorker) HandlePurchaseConfirmed(ctx context.Context, event *models.PurchaseConfirmedEvent) error {
	_, span := util.StartSpan(ctx, "SalesWorker.HandlePurchaseConfirmed")
	defer span.End()

	category := event.Category
	if category == "" {
		category = service.DefaultCategory
	}
	util.CategorySalesTotal.WithLabelValues(category).Inc()
	w.logger.Info("Seller notified of sale",
		zap.String("seller", event.SellerMobile),
		zap.String("book_id", event.BookID),
		zap.String("title", event.Title),
		zap.String("category", category),
		zap.Float64("amount", event.Amount),
		zap.String("status", event.Status))
	return nil
}

// Start starts the worker
func (w *SalesWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting sales worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *SalesWorker) Stop() error {
	w.logger.Info("Stopping sales worker")
	return w.consumer.Close()
}
