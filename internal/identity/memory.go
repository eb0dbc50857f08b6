package identity

import (
	"context"
	"strings"
	"sync"

	"emarket/internal/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type memoryAccount struct {
	identity     models.Identity
	passwordHash []byte
}

// MemoryProvider is an in-process identity provider for development and tests
type MemoryProvider struct {
	mu       sync.RWMutex
	accounts map[string]memoryAccount
	external map[string]models.Identity
}

// NewMemoryProvider creates an empty provider
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		accounts: make(map[string]memoryAccount),
		external: make(map[string]models.Identity),
	}
}

// RegisterProviderToken makes idToken resolve to id on SignInWithProvider
func (m *MemoryProvider) RegisterProviderToken(idToken string, id models.Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.external[idToken] = id
}

// SignUp creates an account
func (m *MemoryProvider) SignUp(_ context.Context, creds Credentials) (models.Identity, error) {
	email := strings.ToLower(strings.TrimSpace(creds.Email))
	if email == "" || !strings.Contains(email, "@") {
		return models.Identity{}, &ProviderError{Message: "Invalid email address."}
	}
	if len(creds.Password) < 6 {
		return models.Identity{}, &ProviderError{Message: "Password should be at least 6 characters."}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.Identity{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.accounts[email]; exists {
		return models.Identity{}, &ProviderError{Message: "Email already in use."}
	}
	id := models.Identity{ID: uuid.New().String(), DisplayName: strings.TrimSpace(creds.DisplayName)}
	m.accounts[email] = memoryAccount{identity: id, passwordHash: hash}
	return id, nil
}

// SignIn checks email and password
func (m *MemoryProvider) SignIn(_ context.Context, creds Credentials) (models.Identity, error) {
	email := strings.ToLower(strings.TrimSpace(creds.Email))

	m.mu.RLock()
	acct, ok := m.accounts[email]
	m.mu.RUnlock()

	if !ok || bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(creds.Password)) != nil {
		return models.Identity{}, &ProviderError{Message: "Invalid email or password."}
	}
	return acct.identity, nil
}

// SignInWithProvider resolves a registered federated token
func (m *MemoryProvider) SignInWithProvider(_ context.Context, idToken string) (models.Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.external[idToken]
	if !ok {
		return models.Identity{}, &ProviderError{Message: "Google Sign-In failed"}
	}
	return id, nil
}

// SignOut is a no-op; sessions are revoked by the token issuer
func (m *MemoryProvider) SignOut(context.Context, models.Identity) error {
	return nil
}
