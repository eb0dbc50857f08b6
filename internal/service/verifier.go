package service

import (
	"context"
	"time"

	"emarket/internal/models"
)

// Verification modes
const (
	VerificationAuto   = "auto"
	VerificationManual = "manual"
)

// ProofVerifier decides the status a confirmed purchase is recorded with
type ProofVerifier interface {
	Verify(ctx context.Context, book models.Book, proofRef string) (string, error)
}

// AutoApprove accepts every uploaded proof
type AutoApprove struct {
	Delay time.Duration
}

// Verify waits the simulated delay and approves
func (a AutoApprove) Verify(ctx context.Context, _ models.Book, _ string) (string, error) {
	if err := wait(ctx, a.Delay); err != nil {
		return "", err
	}
	return models.PurchaseStatusApproved, nil
}

// ManualReview leaves the purchase pending for a seller to check
type ManualReview struct {
	Delay time.Duration
}

// Verify waits the simulated delay and records the purchase as pending
func (m ManualReview) Verify(ctx context.Context, _ models.Book, _ string) (string, error) {
	if err := wait(ctx, m.Delay); err != nil {
		return "", err
	}
	return models.PurchaseStatusPending, nil
}

// NewProofVerifier picks the verifier for mode. Unknown modes auto-approve.
func NewProofVerifier(mode string, delay time.Duration) ProofVerifier {
	if mode == VerificationManual {
		return ManualReview{Delay: delay}
	}
	return AutoApprove{Delay: delay}
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
