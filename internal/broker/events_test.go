package broker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"emarket/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func message(t *testing.T, event interface{}) kafka.Message {
	t.Helper()
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Value: payload}
}

func TestHandleMessageRoutesByType(t *testing.T) {
	h := NewEventHandler()

	var listed *models.BookListedEvent
	var confirmed *models.PurchaseConfirmedEvent
	h.OnBookListed(func(_ context.Context, e *models.BookListedEvent) error {
		listed = e
		return nil
	})
	h.OnPurchaseConfirmed(func(_ context.Context, e *models.PurchaseConfirmedEvent) error {
		confirmed = e
		return nil
	})

	ctx := context.Background()
	require.NoError(t, h.HandleMessage(ctx, message(t, &models.BookListedEvent{
		BaseEvent: models.BaseEvent{EventID: "e1", EventType: models.EventTypeBookListed, Timestamp: time.Now()},
		BookID:    "b1",
		Title:     "Beacon",
	})))
	require.NoError(t, h.HandleMessage(ctx, message(t, &models.PurchaseConfirmedEvent{
		BaseEvent:    models.BaseEvent{EventID: "e2", EventType: models.EventTypePurchaseConfirmed},
		BookID:       "b1",
		Amount:       400,
		SellerMobile: "9000000000",
	})))

	require.NotNil(t, listed)
	assert.Equal(t, "Beacon", listed.Title)
	require.NotNil(t, confirmed)
	assert.Equal(t, "9000000000", confirmed.SellerMobile)
	assert.Equal(t, float64(400), confirmed.Amount)
}

func TestHandleMessageWithoutHandlerIsAcknowledged(t *testing.T) {
	h := NewEventHandler()

	err := h.HandleMessage(context.Background(), message(t, &models.ReviewPostedEvent{
		BaseEvent: models.BaseEvent{EventType: models.EventTypeReviewPosted},
	}))
	assert.NoError(t, err)

	err = h.HandleMessage(context.Background(), message(t, &models.BaseEvent{EventType: "SOMETHING_ELSE"}))
	assert.NoError(t, err)
}

func TestHandleMessageSurfacesHandlerErrors(t *testing.T) {
	h := NewEventHandler()
	h.OnReviewPosted(func(context.Context, *models.ReviewPostedEvent) error {
		return errors.New("boom")
	})

	err := h.HandleMessage(context.Background(), message(t, &models.ReviewPostedEvent{
		BaseEvent: models.BaseEvent{EventType: models.EventTypeReviewPosted},
	}))
	assert.EqualError(t, err, "boom")

	err = h.HandleMessage(context.Background(), kafka.Message{Value: []byte("{")})
	assert.Error(t, err)
}

func TestNopPublisher(t *testing.T) {
	var p NopPublisher
	ctx := context.Background()
	assert.NoError(t, p.PublishBookListed(ctx, &models.BookListedEvent{}))
	assert.NoError(t, p.PublishPurchaseConfirmed(ctx, &models.PurchaseConfirmedEvent{}))
	assert.NoError(t, p.PublishReviewPosted(ctx, &models.ReviewPostedEvent{}))
}
