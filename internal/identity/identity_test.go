package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"emarket/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryProviderSignUpAndSignIn(t *testing.T) {
	p := NewMemoryProvider()
	ctx := context.Background()

	created, err := p.SignUp(ctx, Credentials{Email: "Reader@Example.com", Password: "secret1", DisplayName: "Reader One"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Reader One", created.DisplayName)

	got, err := p.SignIn(ctx, Credentials{Email: "reader@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = p.SignIn(ctx, Credentials{Email: "reader@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, "Invalid email or password.", UserMessage(err, "Authentication failed"))

	_, err = p.SignUp(ctx, Credentials{Email: "reader@example.com", Password: "secret1"})
	assert.Equal(t, "Email already in use.", UserMessage(err, ""))
}

func TestMemoryProviderFederatedToken(t *testing.T) {
	p := NewMemoryProvider()
	p.RegisterProviderToken("google-token", models.Identity{ID: "g1", DisplayName: "G"})

	id, err := p.SignInWithProvider(context.Background(), "google-token")
	require.NoError(t, err)
	assert.Equal(t, "g1", id.ID)

	_, err = p.SignInWithProvider(context.Background(), "unknown")
	assert.Equal(t, "Google Sign-In failed", UserMessage(err, ""))
}

func TestUserMessageFallback(t *testing.T) {
	assert.Equal(t, "fallback", UserMessage(nil, "fallback"))
	assert.Equal(t, "boom", UserMessage(errors.New("boom"), "fallback"))
}

func TestTokenIssuerRoundTripAndRevoke(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	id := models.Identity{ID: "u1", DisplayName: "Reader", PhotoURL: "https://img/x.png"}

	token, err := issuer.Issue(id)
	require.NoError(t, err)

	got, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	require.NoError(t, issuer.Revoke(token))
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuerRejectsForeignAndExpiredTokens(t *testing.T) {
	issuer := NewTokenIssuer("secret-a", time.Hour)
	other := NewTokenIssuer("secret-b", time.Hour)

	token, err := other.Issue(models.Identity{ID: "u1"})
	require.NoError(t, err)
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewTokenIssuer("secret-a", -time.Minute)
	token, err = expired.Issue(models.Identity{ID: "u1"})
	require.NoError(t, err)
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestWatcherSubscribeUnsubscribe(t *testing.T) {
	w := NewWatcher()
	var got []Change
	unsubscribe := w.Subscribe(func(c Change) { got = append(got, c) })

	w.Publish(Change{Identity: models.Identity{ID: "u1"}, SignedIn: true})
	unsubscribe()
	unsubscribe()
	w.Publish(Change{Identity: models.Identity{ID: "u1"}, SignedIn: false})

	require.Len(t, got, 1)
	assert.True(t, got[0].SignedIn)
}

func TestFirebaseProviderSignUpSetsDisplayName(t *testing.T) {
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, strings.TrimPrefix(r.URL.Path, "/"))
		assert.Equal(t, "api-key", r.URL.Query().Get("key"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		switch r.URL.Path {
		case "/accounts:signUp":
			_, _ = w.Write([]byte(`{"localId":"fb-1","idToken":"tok"}`))
		case "/accounts:update":
			assert.Equal(t, "tok", body["idToken"])
			assert.Equal(t, "Reader", body["displayName"])
			_, _ = w.Write([]byte(`{"localId":"fb-1","displayName":"Reader"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	p, err := NewFirebaseProvider("api-key")
	require.NoError(t, err)
	p.WithBaseURL(srv.URL)

	id, err := p.SignUp(context.Background(), Credentials{Email: "a@b.c", Password: "secret1", DisplayName: "Reader"})
	require.NoError(t, err)
	assert.Equal(t, models.Identity{ID: "fb-1", DisplayName: "Reader"}, id)
	assert.Equal(t, []string{"accounts:signUp", "accounts:update"}, calls)
}

func TestFirebaseProviderSurfacesErrorVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"INVALID_LOGIN_CREDENTIALS"}}`))
	}))
	defer srv.Close()

	p, err := NewFirebaseProvider("api-key")
	require.NoError(t, err)
	p.WithBaseURL(srv.URL)

	_, err = p.SignIn(context.Background(), Credentials{Email: "a@b.c", Password: "x"})
	require.Error(t, err)
	assert.Equal(t, "INVALID_LOGIN_CREDENTIALS", UserMessage(err, "Authentication failed"))
}
