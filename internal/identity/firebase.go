package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"emarket/internal/models"
)

const defaultFirebaseBaseURL = "https://identitytoolkit.googleapis.com/v1"

// FirebaseProvider talks to the Firebase Identity Toolkit REST API
type FirebaseProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewFirebaseProvider constructs a provider for the project owning apiKey
func NewFirebaseProvider(apiKey string) (*FirebaseProvider, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("firebase api key required")
	}
	return &FirebaseProvider{
		apiKey:     apiKey,
		baseURL:    defaultFirebaseBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// WithBaseURL points the provider at another endpoint (emulator, tests)
func (f *FirebaseProvider) WithBaseURL(baseURL string) *FirebaseProvider {
	f.baseURL = strings.TrimRight(baseURL, "/")
	return f
}

// SignIn authenticates with email and password
func (f *FirebaseProvider) SignIn(ctx context.Context, creds Credentials) (models.Identity, error) {
	var resp authResponse
	err := f.call(ctx, "accounts:signInWithPassword", map[string]any{
		"email":             creds.Email,
		"password":          creds.Password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return models.Identity{}, err
	}
	return resp.identity(), nil
}

// SignUp creates an account and sets its display name
func (f *FirebaseProvider) SignUp(ctx context.Context, creds Credentials) (models.Identity, error) {
	var resp authResponse
	err := f.call(ctx, "accounts:signUp", map[string]any{
		"email":             creds.Email,
		"password":          creds.Password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return models.Identity{}, err
	}

	if name := strings.TrimSpace(creds.DisplayName); name != "" {
		var upd authResponse
		err := f.call(ctx, "accounts:update", map[string]any{
			"idToken":           resp.IDToken,
			"displayName":       name,
			"returnSecureToken": false,
		}, &upd)
		if err != nil {
			return models.Identity{}, err
		}
		resp.DisplayName = name
	}
	return resp.identity(), nil
}

// SignInWithProvider exchanges a Google id token for a Firebase identity
func (f *FirebaseProvider) SignInWithProvider(ctx context.Context, idToken string) (models.Identity, error) {
	var resp authResponse
	err := f.call(ctx, "accounts:signInWithIdp", map[string]any{
		"postBody":            "id_token=" + url.QueryEscape(idToken) + "&providerId=google.com",
		"requestUri":          "http://localhost",
		"returnSecureToken":   true,
		"returnIdpCredential": true,
	}, &resp)
	if err != nil {
		return models.Identity{}, err
	}
	return resp.identity(), nil
}

// SignOut has nothing to revoke on the provider side
func (f *FirebaseProvider) SignOut(context.Context, models.Identity) error {
	return nil
}

func (f *FirebaseProvider) call(ctx context.Context, method string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	endpoint := fmt.Sprintf("%s/%s?key=%s", f.baseURL, method, url.QueryEscape(f.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("firebase %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp firebaseError
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error.Message != "" {
			return &ProviderError{Message: errResp.Error.Message}
		}
		return &ProviderError{Message: "Authentication failed"}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type authResponse struct {
	LocalID     string `json:"localId"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoUrl"`
	IDToken     string `json:"idToken"`
}

func (r authResponse) identity() models.Identity {
	return models.Identity{ID: r.LocalID, DisplayName: r.DisplayName, PhotoURL: r.PhotoURL}
}

type firebaseError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}
