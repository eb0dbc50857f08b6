package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"emarket/internal/models"
	"emarket/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func putProof(t *testing.T, objects *storage.MemoryStore, key string) {
	t.Helper()
	require.NoError(t, objects.Put(context.Background(), key, strings.NewReader("png"), 3, "image/png"))
}

func hasObject(objects *storage.MemoryStore, key string) bool {
	_, _, ok := objects.Object(key)
	return ok
}

func TestCheckoutHappyPath(t *testing.T) {
	sf, _, _ := newTestStorefront(t)
	svc := NewCheckoutService(sf, AutoApprove{}, nil, 0)
	ctx := context.Background()

	co, err := svc.Begin(ctx, "u1", "3")
	require.NoError(t, err)
	assert.Equal(t, StatePaymentPending, co.State)
	assert.Equal(t, MethodUPI, co.Method)

	require.NoError(t, co.SelectMethod(MethodBank))
	require.NoError(t, co.SelectMethod(MethodUPI))
	require.NoError(t, co.MarkPaid())
	require.NoError(t, svc.AttachProof(ctx, co, "proof/p.png"))
	require.NoError(t, co.StartConfirm())
	assert.Equal(t, StateConfirming, co.State)

	p, err := svc.Confirm(ctx, co, "u1")
	require.NoError(t, err)
	assert.Equal(t, StateConfirmed, co.State)
	assert.Equal(t, models.PurchaseStatusApproved, p.Status)
	assert.Equal(t, "u1", p.BuyerID)
	assert.Len(t, sf.Purchases(), 1)
	assert.True(t, sf.IsOwned("u1", "3"))
	assert.False(t, sf.IsOwned("u2", "3"))
}

func TestCheckoutConfirmWithoutProofIsRejected(t *testing.T) {
	sf, _, _ := newTestStorefront(t)
	svc := NewCheckoutService(sf, AutoApprove{}, nil, 0)
	ctx := context.Background()

	co, err := svc.Begin(ctx, "u1", "3")
	require.NoError(t, err)
	require.NoError(t, co.MarkPaid())

	assert.ErrorIs(t, co.StartConfirm(), models.ErrProofRequired)
	assert.Equal(t, StateProofUploaded, co.State)
	assert.Empty(t, sf.Purchases())

	assert.ErrorIs(t, svc.AttachProof(ctx, co, ""), models.ErrProofRequired)
}

func TestCheckoutTransitionsAreOrdered(t *testing.T) {
	sf, _, _ := newTestStorefront(t)
	svc := NewCheckoutService(sf, AutoApprove{}, nil, 0)
	ctx := context.Background()

	co, err := svc.Begin(ctx, "u1", "3")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.AttachProof(ctx, co, "proof/p.png"), models.ErrInvalidTransition)
	assert.ErrorIs(t, co.StartConfirm(), models.ErrInvalidTransition)
	_, err = svc.Confirm(ctx, co, "u1")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	require.NoError(t, co.MarkPaid())
	assert.ErrorIs(t, co.SelectMethod(MethodBank), models.ErrInvalidTransition)
	assert.ErrorIs(t, co.MarkPaid(), models.ErrInvalidTransition)
	assert.ErrorIs(t, co.SelectMethod("cash"), models.ErrInvalidTransition)

	require.NoError(t, svc.AttachProof(ctx, co, "proof/p.png"))
	_, err = svc.Confirm(ctx, co, "u1")
	assert.ErrorIs(t, err, models.ErrInvalidTransition, "confirm needs a claimed checkout")
	assert.Empty(t, sf.Purchases())
}

func TestCheckoutRejectsUnknownMethod(t *testing.T) {
	sf, _, _ := newTestStorefront(t)
	svc := NewCheckoutService(sf, AutoApprove{}, nil, 0)

	co, err := svc.Begin(context.Background(), "u1", "3")
	require.NoError(t, err)
	assert.ErrorIs(t, co.SelectMethod("cash"), models.ErrValidation)
	assert.Equal(t, MethodUPI, co.Method)
}

func TestCheckoutBeginGuards(t *testing.T) {
	sf, _, _ := newTestStorefront(t)
	svc := NewCheckoutService(sf, AutoApprove{}, nil, 0)
	ctx := context.Background()

	_, err := svc.Begin(ctx, "u1", "missing")
	assert.ErrorIs(t, err, models.ErrBookNotFound)

	_, err = sf.RecordPurchase(ctx, "u1", "1", "proof/a.png", models.PurchaseStatusApproved)
	require.NoError(t, err)
	_, err = svc.Begin(ctx, "u1", "1")
	assert.ErrorIs(t, err, models.ErrAlreadyOwned)

	_, err = svc.Begin(ctx, "u2", "1")
	assert.NoError(t, err, "another buyer may still buy the book")
}

func TestCheckoutCancelPersistsNothing(t *testing.T) {
	sf, _, _ := newTestStorefront(t)
	objects := storage.NewMemoryStore()
	svc := NewCheckoutService(sf, AutoApprove{}, objects, 0)
	ctx := context.Background()

	co, err := svc.Begin(ctx, "u1", "3")
	require.NoError(t, err)
	require.NoError(t, co.MarkPaid())
	putProof(t, objects, "proof/p.png")
	require.NoError(t, svc.AttachProof(ctx, co, "proof/p.png"))
	require.NoError(t, svc.Cancel(ctx, co))

	assert.Empty(t, sf.Purchases())
	assert.False(t, hasObject(objects, "proof/p.png"))
}

func TestCheckoutCannotCancelWhileConfirmingOrAfterConfirm(t *testing.T) {
	sf, _, _ := newTestStorefront(t)
	svc := NewCheckoutService(sf, AutoApprove{}, nil, 0)
	ctx := context.Background()

	co, err := svc.Begin(ctx, "u1", "3")
	require.NoError(t, err)
	require.NoError(t, co.MarkPaid())
	require.NoError(t, svc.AttachProof(ctx, co, "proof/p.png"))
	require.NoError(t, co.StartConfirm())

	assert.ErrorIs(t, svc.Cancel(ctx, co), models.ErrInvalidTransition)
	assert.ErrorIs(t, co.StartConfirm(), models.ErrInvalidTransition)

	_, err = svc.Confirm(ctx, co, "u1")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Cancel(ctx, co), models.ErrInvalidTransition)
	_, err = svc.Confirm(ctx, co, "u1")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
	assert.Len(t, sf.Purchases(), 1)
}

func TestCheckoutReleaseAfterFailedVerification(t *testing.T) {
	sf, _, _ := newTestStorefront(t)
	svc := NewCheckoutService(sf, AutoApprove{Delay: time.Second}, nil, 0)

	co, err := svc.Begin(context.Background(), "u1", "3")
	require.NoError(t, err)
	require.NoError(t, co.MarkPaid())
	require.NoError(t, svc.AttachProof(context.Background(), co, "proof/p.png"))
	require.NoError(t, co.StartConfirm())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.Confirm(ctx, co, "u1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateConfirming, co.State)

	co.Release()
	assert.Equal(t, StateProofUploaded, co.State)
	assert.Empty(t, sf.Purchases())
}

func TestAttachProofManagesObjects(t *testing.T) {
	sf, _, _ := newTestStorefront(t)
	objects := storage.NewMemoryStore()
	svc := NewCheckoutService(sf, AutoApprove{}, objects, 0)
	ctx := context.Background()

	co, err := svc.Begin(ctx, "u1", "3")
	require.NoError(t, err)

	putProof(t, objects, "proof/early.png")
	assert.ErrorIs(t, svc.AttachProof(ctx, co, "proof/early.png"), models.ErrInvalidTransition)
	assert.False(t, hasObject(objects, "proof/early.png"), "a proof that cannot be attached is discarded")

	require.NoError(t, co.MarkPaid())
	putProof(t, objects, "proof/first.png")
	require.NoError(t, svc.AttachProof(ctx, co, "proof/first.png"))
	putProof(t, objects, "proof/second.png")
	require.NoError(t, svc.AttachProof(ctx, co, "proof/second.png"))

	assert.Equal(t, "proof/second.png", co.ProofRef)
	assert.False(t, hasObject(objects, "proof/first.png"), "a replaced proof is discarded")
	assert.True(t, hasObject(objects, "proof/second.png"))
}

func TestAttachProofDiscardsUploadWhenInterrupted(t *testing.T) {
	sf, _, _ := newTestStorefront(t)
	objects := storage.NewMemoryStore()
	svc := NewCheckoutService(sf, AutoApprove{}, objects, time.Second)

	co, err := svc.Begin(context.Background(), "u1", "3")
	require.NoError(t, err)
	require.NoError(t, co.MarkPaid())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	putProof(t, objects, "proof/p.png")
	assert.ErrorIs(t, svc.AttachProof(ctx, co, "proof/p.png"), context.Canceled)
	assert.Empty(t, co.ProofRef)
	assert.False(t, hasObject(objects, "proof/p.png"))
}

func TestManualReviewRecordsPending(t *testing.T) {
	sf, _, _ := newTestStorefront(t)
	svc := NewCheckoutService(sf, NewProofVerifier(VerificationManual, 0), nil, 0)
	ctx := context.Background()

	co, err := svc.Begin(ctx, "u1", "4")
	require.NoError(t, err)
	require.NoError(t, co.MarkPaid())
	require.NoError(t, svc.AttachProof(ctx, co, "proof/p.png"))
	require.NoError(t, co.StartConfirm())

	p, err := svc.Confirm(ctx, co, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.PurchaseStatusPending, p.Status)
	assert.True(t, sf.IsOwned("u1", "4"))
}

func TestVerifierHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := AutoApprove{Delay: 1e9}.Verify(ctx, models.Book{}, "proof/p.png")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPaymentInstructions(t *testing.T) {
	book := models.Book{
		ID:    "7",
		Price: 249.5,
		Seller: models.SellerInfo{
			Mobile:        "9000000000",
			UpiID:         "bo@upi",
			AccountHolder: "Bo Lee",
			BankAccount:   "123",
			IFSC:          "SBIN0000001",
		},
	}
	co := &Checkout{Book: book, Method: MethodUPI, State: StatePaymentPending}

	in := co.Instructions()
	assert.Equal(t, "upi://pay?pa=bo@upi&pn=Bo%20Lee&am=249.5&cu=INR&tn=Book-7", in.UpiLink)
	assert.Contains(t, in.QRCodeURL, "https://api.qrserver.com/v1/create-qr-code/?size=200x200&data=upi%3A%2F%2Fpay")
	assert.True(t, in.HasBank)
	assert.Equal(t, 249.5, in.Amount)

	co.Book.Seller.QRCodeURL = "qr/own.png"
	assert.Equal(t, "qr/own.png", co.Instructions().QRCodeURL)

	co.Book.Seller = models.SellerInfo{Mobile: "9000000000"}
	in = co.Instructions()
	assert.Empty(t, in.UpiLink)
	assert.Empty(t, in.QRCodeURL)
	assert.False(t, in.HasBank)
}

func TestUPILinkDefaultsHolder(t *testing.T) {
	b := models.Book{ID: "9", Price: 100, Seller: models.SellerInfo{UpiID: "x@upi"}}
	assert.Equal(t, "upi://pay?pa=x@upi&pn=Seller&am=100&cu=INR&tn=Book-9", UPILink(b))
}
