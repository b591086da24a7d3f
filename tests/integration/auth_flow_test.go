package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/openhaus-labs/openhaus/backend/internal/auth"
	"github.com/openhaus-labs/openhaus/backend/internal/catalog"
	"github.com/openhaus-labs/openhaus/backend/internal/database"
	"github.com/openhaus-labs/openhaus/backend/internal/server"
	"github.com/openhaus-labs/openhaus/backend/internal/users"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenSigningSecret = "integration-secret"
	clientURL          = "http://client.example"
	jsonContentType    = "application/json"
)

type stubGoogleProvider struct {
	profile auth.GoogleProfile
}

func (s stubGoogleProvider) AuthCodeURL(state string) string {
	return "https://accounts.google.com/o/oauth2/auth?state=" + state
}

func (s stubGoogleProvider) Exchange(context.Context, string) (auth.GoogleProfile, error) {
	return s.profile, nil
}

func buildHandler(testContext *testing.T, databaseName string) http.Handler {
	testContext.Helper()

	db, err := database.OpenSQLite("file:"+databaseName+"?mode=memory&cache=shared", zap.NewNop())
	if err != nil {
		testContext.Fatalf("failed to open database: %v", err)
	}

	store, err := users.NewStore(db)
	if err != nil {
		testContext.Fatalf("failed to build user store: %v", err)
	}
	identityService, err := users.NewService(users.ServiceConfig{
		Store:  store,
		Hasher: auth.NewPasswordHasherWithCost(bcrypt.MinCost),
		Logger: zap.NewNop(),
	})
	if err != nil {
		testContext.Fatalf("failed to build identity service: %v", err)
	}
	tokenService, err := auth.NewTokenService(auth.TokenServiceConfig{SigningSecret: []byte(tokenSigningSecret)})
	if err != nil {
		testContext.Fatalf("failed to build token service: %v", err)
	}
	catalogService, err := catalog.NewService(catalog.ServiceConfig{
		Database:   db,
		IDProvider: users.NewUUIDProvider(),
		Logger:     zap.NewNop(),
	})
	if err != nil {
		testContext.Fatalf("failed to build catalog service: %v", err)
	}

	handler, err := server.NewHTTPHandler(server.Dependencies{
		Identity:  identityService,
		Tokens:    tokenService,
		Google:    stubGoogleProvider{profile: auth.GoogleProfile{Subject: "g-1", Email: "fed@example.com", Name: "Fed"}},
		Catalog:   catalogService,
		Logger:    zap.NewNop(),
		ClientURL: clientURL,
	})
	if err != nil {
		testContext.Fatalf("failed to build handler: %v", err)
	}
	return handler
}

func postJSON(testContext *testing.T, serverURL, path string, payload map[string]string) *http.Response {
	testContext.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		testContext.Fatalf("failed to marshal payload: %v", err)
	}
	response, err := http.Post(serverURL+path, jsonContentType, bytes.NewReader(body))
	if err != nil {
		testContext.Fatalf("request to %s failed: %v", path, err)
	}
	return response
}

func decodeAuthResponse(testContext *testing.T, response *http.Response) (token, userID string) {
	testContext.Helper()
	defer response.Body.Close()

	var result struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
		User    struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := json.NewDecoder(response.Body).Decode(&result); err != nil {
		testContext.Fatalf("failed to decode response: %v", err)
	}
	if !result.Success {
		testContext.Fatalf("expected a successful envelope")
	}
	return result.Token, result.User.ID
}

func TestSignupLoginProfileFlow(testContext *testing.T) {
	gin.SetMode(gin.TestMode)

	handler := buildHandler(testContext, "integration_auth_flow")
	testServer := httptest.NewServer(handler)
	defer testServer.Close()

	signupResponse := postJSON(testContext, testServer.URL, "/auth/signup", map[string]string{
		"email":    "ann@example.com",
		"password": "s3cret-pass",
		"name":     "Ann",
	})
	if signupResponse.StatusCode != http.StatusCreated {
		testContext.Fatalf("unexpected signup status: %d", signupResponse.StatusCode)
	}
	signupToken, signupUserID := decodeAuthResponse(testContext, signupResponse)
	if signupToken == "" || signupUserID == "" {
		testContext.Fatalf("expected signup to return a token and user id")
	}

	loginResponse := postJSON(testContext, testServer.URL, "/auth/login", map[string]string{
		"email":    "ann@example.com",
		"password": "s3cret-pass",
	})
	if loginResponse.StatusCode != http.StatusOK {
		testContext.Fatalf("unexpected login status: %d", loginResponse.StatusCode)
	}
	loginToken, loginUserID := decodeAuthResponse(testContext, loginResponse)
	if loginUserID != signupUserID {
		testContext.Fatalf("expected login to resolve the signed-up user")
	}

	profileRequest, _ := http.NewRequest(http.MethodGet, testServer.URL+"/auth/me", nil)
	profileRequest.Header.Set("Authorization", "Bearer "+loginToken)
	profileResponse, err := http.DefaultClient.Do(profileRequest)
	if err != nil {
		testContext.Fatalf("profile request failed: %v", err)
	}
	defer profileResponse.Body.Close()
	if profileResponse.StatusCode != http.StatusOK {
		testContext.Fatalf("unexpected profile status: %d", profileResponse.StatusCode)
	}
	var profileResult struct {
		User struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	if err := json.NewDecoder(profileResponse.Body).Decode(&profileResult); err != nil {
		testContext.Fatalf("failed to decode profile: %v", err)
	}
	if profileResult.User.ID != signupUserID || profileResult.User.Email != "ann@example.com" {
		testContext.Fatalf("unexpected profile %+v", profileResult.User)
	}

	refreshResponse := postJSON(testContext, testServer.URL, "/auth/refresh", map[string]string{
		"token": loginToken,
	})
	defer refreshResponse.Body.Close()
	if refreshResponse.StatusCode != http.StatusOK {
		testContext.Fatalf("unexpected refresh status: %d", refreshResponse.StatusCode)
	}
	var refreshResult struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(refreshResponse.Body).Decode(&refreshResult); err != nil {
		testContext.Fatalf("failed to decode refresh response: %v", err)
	}
	if refreshResult.Token == "" {
		testContext.Fatalf("expected a refreshed token")
	}
}

func TestFederatedCallbackLinksLocalAccount(testContext *testing.T) {
	gin.SetMode(gin.TestMode)

	handler := buildHandler(testContext, "integration_google_link")
	testServer := httptest.NewServer(handler)
	defer testServer.Close()

	// A local account with the federated email already exists.
	signupResponse := postJSON(testContext, testServer.URL, "/auth/signup", map[string]string{
		"email":    "fed@example.com",
		"password": "s3cret-pass",
		"name":     "Fed",
	})
	if signupResponse.StatusCode != http.StatusCreated {
		testContext.Fatalf("unexpected signup status: %d", signupResponse.StatusCode)
	}
	_, localUserID := decodeAuthResponse(testContext, signupResponse)

	httpClient := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	callbackRequest, _ := http.NewRequest(http.MethodGet, testServer.URL+"/auth/google/callback?state=state-1&code=code-1", nil)
	callbackRequest.AddCookie(&http.Cookie{Name: "oauth_state", Value: "state-1"})
	callbackResponse, err := httpClient.Do(callbackRequest)
	if err != nil {
		testContext.Fatalf("callback request failed: %v", err)
	}
	defer callbackResponse.Body.Close()

	if callbackResponse.StatusCode != http.StatusFound {
		testContext.Fatalf("unexpected callback status: %d", callbackResponse.StatusCode)
	}
	redirectTarget, err := callbackResponse.Location()
	if err != nil {
		testContext.Fatalf("failed to read redirect target: %v", err)
	}
	query := redirectTarget.Query()
	if query.Get("error") != "" {
		testContext.Fatalf("unexpected error marker %q", query.Get("error"))
	}
	if query.Get("id") != localUserID {
		testContext.Fatalf("expected the federated login to link the local account, got id %q", query.Get("id"))
	}

	// The local password must still work after the link.
	loginResponse := postJSON(testContext, testServer.URL, "/auth/login", map[string]string{
		"email":    "fed@example.com",
		"password": "s3cret-pass",
	})
	defer loginResponse.Body.Close()
	if loginResponse.StatusCode != http.StatusOK {
		testContext.Fatalf("unexpected login status after linking: %d", loginResponse.StatusCode)
	}
}
