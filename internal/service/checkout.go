package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"emarket/internal/models"
	"emarket/internal/storage"
	"emarket/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Checkout states
const (
	StatePaymentPending = "payment_pending"
	StateProofUploaded  = "proof_uploaded"
	StateConfirming     = "confirming"
	StateConfirmed      = "confirmed"
)

// Payment methods
const (
	MethodUPI  = "upi"
	MethodBank = "bank"
)

const qrServiceURL = "https://api.qrserver.com/v1/create-qr-code/?size=200x200&data="

// Checkout is one buyer's purchase flow for a single book. A session holds
// at most one; discarding it returns the session to browsing.
type Checkout struct {
	ID        string           `json:"id"`
	Book      models.Book      `json:"book"`
	State     string           `json:"state"`
	Method    string           `json:"method"`
	ProofRef  string           `json:"proofRef,omitempty"`
	Purchase  *models.Purchase `json:"purchase,omitempty"`
	StartedAt time.Time        `json:"startedAt"`
}

// SelectMethod switches the payment method while payment is pending
func (c *Checkout) SelectMethod(method string) error {
	if c.State != StatePaymentPending {
		return fmt.Errorf("%w: cannot change method in state %s", models.ErrInvalidTransition, c.State)
	}
	if method != MethodUPI && method != MethodBank {
		return models.NewValidationError("method", "Unsupported payment method.")
	}
	c.Method = method
	return nil
}

// MarkPaid records the buyer's claim of having paid and moves to the proof
// upload step
func (c *Checkout) MarkPaid() error {
	if c.State != StatePaymentPending {
		return fmt.Errorf("%w: cannot mark paid in state %s", models.ErrInvalidTransition, c.State)
	}
	c.State = StateProofUploaded
	return nil
}

// StartConfirm claims the checkout for confirmation. A claimed checkout
// cannot be cancelled, replaced or confirmed again until Release.
func (c *Checkout) StartConfirm() error {
	if c.State != StateProofUploaded {
		return fmt.Errorf("%w: cannot confirm in state %s", models.ErrInvalidTransition, c.State)
	}
	if strings.TrimSpace(c.ProofRef) == "" {
		return models.ErrProofRequired
	}
	c.State = StateConfirming
	return nil
}

// Release returns a claimed checkout to the proof upload step after a
// failed confirmation
func (c *Checkout) Release() {
	if c.State == StateConfirming {
		c.State = StateProofUploaded
	}
}

// PaymentInstructions tells the buyer how to pay the seller directly
type PaymentInstructions struct {
	Method        string  `json:"method"`
	Amount        float64 `json:"amount"`
	Mobile        string  `json:"mobile"`
	UpiID         string  `json:"upiId,omitempty"`
	UpiLink       string  `json:"upiLink,omitempty"`
	QRCodeURL     string  `json:"qrCodeUrl,omitempty"`
	HasBank       bool    `json:"hasBank"`
	AccountHolder string  `json:"accountHolder,omitempty"`
	BankAccount   string  `json:"bankAccount,omitempty"`
	IFSC          string  `json:"ifsc,omitempty"`
}

// Instructions derives the payment details of the checkout's book. The
// seller's own QR image wins over a generated one.
func (c *Checkout) Instructions() PaymentInstructions {
	seller := c.Book.Seller
	in := PaymentInstructions{
		Method:        c.Method,
		Amount:        c.Book.Price,
		Mobile:        seller.Mobile,
		UpiID:         seller.UpiID,
		HasBank:       seller.BankAccount != "",
		AccountHolder: seller.AccountHolder,
		BankAccount:   seller.BankAccount,
		IFSC:          seller.IFSC,
	}
	if seller.UpiID != "" {
		in.UpiLink = UPILink(c.Book)
		in.QRCodeURL = qrServiceURL + url.QueryEscape(in.UpiLink)
	}
	if seller.QRCodeURL != "" {
		in.QRCodeURL = seller.QRCodeURL
	}
	return in
}

// UPILink builds the UPI deep link paying the seller of b
func UPILink(b models.Book) string {
	holder := b.Seller.AccountHolder
	if holder == "" {
		holder = "Seller"
	}
	return fmt.Sprintf("upi://pay?pa=%s&pn=%s&am=%s&cu=INR&tn=Book-%s",
		b.Seller.UpiID,
		url.PathEscape(holder),
		strconv.FormatFloat(b.Price, 'f', -1, 64),
		b.ID)
}

// CheckoutService drives checkouts against the storefront ledger. It owns
// the uploaded proof objects of open checkouts.
type CheckoutService struct {
	storefront  *Storefront
	verifier    ProofVerifier
	objects     storage.ObjectStore
	uploadDelay time.Duration
	logger      *zap.Logger
}

// NewCheckoutService creates a checkout service. objects may be nil, in
// which case proofs are never deleted.
func NewCheckoutService(storefront *Storefront, verifier ProofVerifier, objects storage.ObjectStore, uploadDelay time.Duration) *CheckoutService {
	return &CheckoutService{
		storefront:  storefront,
		verifier:    verifier,
		objects:     objects,
		uploadDelay: uploadDelay,
		logger:      util.GetLogger(),
	}
}

// Begin opens a checkout for a catalog book buyerID does not own yet
func (s *CheckoutService) Begin(ctx context.Context, buyerID, bookID string) (*Checkout, error) {
	_, span := util.StartSpan(ctx, "CheckoutService.Begin")
	defer span.End()

	book, err := s.storefront.Book(bookID)
	if err != nil {
		return nil, err
	}
	if s.storefront.IsOwned(buyerID, bookID) {
		return nil, models.ErrAlreadyOwned
	}

	util.CheckoutsStartedTotal.Inc()
	co := &Checkout{
		ID:        uuid.New().String(),
		Book:      book,
		State:     StatePaymentPending,
		Method:    MethodUPI,
		StartedAt: time.Now(),
	}
	s.logger.Info("Checkout started",
		zap.String("checkout_id", co.ID),
		zap.String("book_id", bookID),
		zap.String("buyer_id", buyerID))
	return co, nil
}

// AttachProof stores the reference of the uploaded payment screenshot. The
// object behind proofRef is deleted when it cannot be attached, and the
// object of a replaced proof is deleted once the new one is attached.
func (s *CheckoutService) AttachProof(ctx context.Context, co *Checkout, proofRef string) error {
	ctx, span := util.StartSpan(ctx, "CheckoutService.AttachProof")
	defer span.End()

	if strings.TrimSpace(proofRef) == "" {
		return models.ErrProofRequired
	}
	if co.State != StateProofUploaded {
		s.discardProof(ctx, proofRef)
		return fmt.Errorf("%w: cannot attach proof in state %s", models.ErrInvalidTransition, co.State)
	}
	if err := wait(ctx, s.uploadDelay); err != nil {
		s.discardProof(ctx, proofRef)
		return fmt.Errorf("failed to attach proof: %w", err)
	}

	previous := co.ProofRef
	co.ProofRef = proofRef
	if previous != "" && previous != proofRef {
		s.discardProof(ctx, previous)
	}
	return nil
}

// Confirm verifies the proof of a claimed checkout and records exactly one
// purchase for buyerID. On failure the checkout stays claimed; the caller
// releases it.
func (s *CheckoutService) Confirm(ctx context.Context, co *Checkout, buyerID string) (models.Purchase, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.Confirm")
	defer span.End()

	if co.State != StateConfirming {
		return models.Purchase{}, fmt.Errorf("%w: cannot confirm in state %s", models.ErrInvalidTransition, co.State)
	}
	if strings.TrimSpace(co.ProofRef) == "" {
		return models.Purchase{}, models.ErrProofRequired
	}

	status, err := s.verifier.Verify(ctx, co.Book, co.ProofRef)
	if err != nil {
		return models.Purchase{}, fmt.Errorf("failed to verify payment proof: %w", err)
	}

	purchase, err := s.storefront.RecordPurchase(ctx, buyerID, co.Book.ID, co.ProofRef, status)
	if err != nil {
		return models.Purchase{}, err
	}

	co.State = StateConfirmed
	co.Purchase = &purchase
	s.logger.Info("Checkout confirmed",
		zap.String("checkout_id", co.ID),
		zap.String("purchase_id", purchase.ID))
	return purchase, nil
}

// Cancel abandons a checkout that is neither confirmed nor being confirmed
// and deletes its proof object
func (s *CheckoutService) Cancel(ctx context.Context, co *Checkout) error {
	switch co.State {
	case StateConfirmed:
		return fmt.Errorf("%w: checkout already confirmed", models.ErrInvalidTransition)
	case StateConfirming:
		return fmt.Errorf("%w: checkout is being confirmed", models.ErrInvalidTransition)
	}
	if co.ProofRef != "" {
		s.discardProof(ctx, co.ProofRef)
	}
	util.CheckoutsCancelledTotal.Inc()
	s.logger.Info("Checkout cancelled", zap.String("checkout_id", co.ID), zap.String("state", co.State))
	return nil
}

func (s *CheckoutService) discardProof(ctx context.Context, ref string) {
	if s.objects == nil {
		return
	}
	if err := s.objects.Delete(ctx, ref); err != nil {
		s.logger.Warn("Failed to delete payment proof", zap.String("key", ref), zap.Error(err))
	}
}
