// Package identity adapts the external identity provider and issues the
// session tokens the HTTP API authenticates with.
package identity

import (
	"context"
	"errors"

	"emarket/internal/models"
)

// Credentials for email/password authentication
type Credentials struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName,omitempty"`
}

// Provider is the external identity provider
type Provider interface {
	SignIn(ctx context.Context, creds Credentials) (models.Identity, error)
	SignUp(ctx context.Context, creds Credentials) (models.Identity, error)
	SignInWithProvider(ctx context.Context, idToken string) (models.Identity, error)
	SignOut(ctx context.Context, id models.Identity) error
}

// ProviderError carries a provider message meant to be shown verbatim
type ProviderError struct {
	Message string
}

func (e *ProviderError) Error() string {
	return e.Message
}

// UserMessage extracts the message to show for a provider failure
func UserMessage(err error, fallback string) string {
	var pe *ProviderError
	if errors.As(err, &pe) && pe.Message != "" {
		return pe.Message
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return fallback
}
