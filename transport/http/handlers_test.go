package http

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-webauthn/webauthn/protocol"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/layer-3/garuda/adapters/challenge"
	"github.com/layer-3/garuda/adapters/ledger"
	"github.com/layer-3/garuda/adapters/sessions"
	"github.com/layer-3/garuda/adapters/tokenizer"
	"github.com/layer-3/garuda/core"
	"github.com/layer-3/garuda/service"
)

// stubVerifier accepts credential payloads of the form
// "credentialID|signedChallenge" so the transport can be exercised without
// a real authenticator.
type stubVerifier struct {
	newCount uint32
}

func (s *stubVerifier) RegistrationOptions(account *core.Account, ch core.Challenge) (*protocol.CredentialCreation, error) {
	return &protocol.CredentialCreation{
		Response: protocol.PublicKeyCredentialCreationOptions{
			Challenge: protocol.URLEncodedBase64(ch.Nonce),
		},
	}, nil
}

func (s *stubVerifier) AuthenticationOptions(account *core.Account, ch core.Challenge) (*protocol.CredentialAssertion, error) {
	return &protocol.CredentialAssertion{
		Response: protocol.PublicKeyCredentialRequestOptions{
			Challenge: protocol.URLEncodedBase64(ch.Nonce),
		},
	}, nil
}

func (s *stubVerifier) parse(body []byte) (string, string, error) {
	var payload string
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", "", core.ErrVerificationFailed
	}
	id, signed, ok := strings.Cut(payload, "|")
	if !ok {
		return "", "", core.ErrVerificationFailed
	}
	return id, signed, nil
}

func (s *stubVerifier) ParseRegistration(body []byte) (*protocol.ParsedCredentialCreationData, error) {
	id, signed, err := s.parse(body)
	if err != nil {
		return nil, err
	}
	return &protocol.ParsedCredentialCreationData{
		ParsedPublicKeyCredential: protocol.ParsedPublicKeyCredential{RawID: []byte(id)},
		Response: protocol.ParsedAttestationResponse{
			CollectedClientData: protocol.CollectedClientData{Challenge: signed},
		},
	}, nil
}

func (s *stubVerifier) ParseAssertion(body []byte) (*protocol.ParsedCredentialAssertionData, error) {
	id, signed, err := s.parse(body)
	if err != nil {
		return nil, err
	}
	return &protocol.ParsedCredentialAssertionData{
		ParsedPublicKeyCredential: protocol.ParsedPublicKeyCredential{RawID: []byte(id)},
		Response: protocol.ParsedAssertionResponse{
			CollectedClientData: protocol.CollectedClientData{Challenge: signed},
		},
	}, nil
}

func (s *stubVerifier) VerifyRegistration(account *core.Account, ch core.Challenge, parsed *protocol.ParsedCredentialCreationData) (*core.Credential, error) {
	if parsed.Response.CollectedClientData.Challenge != ch.Encoded() {
		return nil, core.ErrChallengeMismatch
	}
	return &core.Credential{ID: parsed.RawID, PublicKey: []byte("pk")}, nil
}

func (s *stubVerifier) VerifyAssertion(account *core.Account, ch core.Challenge, parsed *protocol.ParsedCredentialAssertionData) (uint32, error) {
	if parsed.Response.CollectedClientData.Challenge != ch.Encoded() {
		return 0, core.ErrChallengeMismatch
	}
	s.newCount++
	return s.newCount, nil
}

type nopPublisher struct{}

func (nopPublisher) PublishRegistered(ctx context.Context, identity, credentialID string) error {
	return nil
}
func (nopPublisher) PublishLogin(ctx context.Context, identity, sessionID string) error { return nil }
func (nopPublisher) PublishLogout(ctx context.Context, identity, sessionID string) error {
	return nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	signKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	sessionService := service.NewSessionService(
		tokenizer.NewJWTTokenizer(signKey),
		sessions.NewMemoryStore(),
		nopPublisher{},
		zap.NewNop(),
		time.Hour,
	)
	ceremonyService := service.NewCeremonyService(
		ledger.NewMemoryLedger(),
		challenge.NewRandSource(),
		&stubVerifier{},
		sessionService,
		nopPublisher{},
		zap.NewNop(),
	)

	return SetupRouter(ceremonyService, sessionService)
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// registerAccount walks a full registration through the HTTP surface.
func registerAccount(t *testing.T, router *gin.Engine, identity, credentialID string) {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/register-options", gin.H{"identity": identity})
	require.Equal(t, http.StatusCreated, w.Code)

	var options struct {
		PublicKey struct {
			Challenge string `json:"challenge"`
		} `json:"publicKey"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &options))
	require.NotEmpty(t, options.PublicKey.Challenge)

	w = doJSON(t, router, http.MethodPost, "/register", gin.H{
		"identity":   identity,
		"credential": fmt.Sprintf("%s|%s", credentialID, options.PublicKey.Challenge),
	})
	require.Equal(t, http.StatusCreated, w.Code)
}

// authenticate walks a full authentication and returns the session token.
func authenticate(t *testing.T, router *gin.Engine, identity, credentialID string) string {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/authenticate-options", gin.H{"identity": identity})
	require.Equal(t, http.StatusCreated, w.Code)

	var options struct {
		PublicKey struct {
			Challenge string `json:"challenge"`
		} `json:"publicKey"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &options))

	w = doJSON(t, router, http.MethodPost, "/authenticate", gin.H{
		"identity":   identity,
		"credential": fmt.Sprintf("%s|%s", credentialID, options.PublicKey.Challenge),
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestRegistrationEndpoints(t *testing.T) {
	router := newTestRouter(t)

	registerAccount(t, router, "a@x.com", "cred-1")

	// Duplicate registration is a conflict
	w := doJSON(t, router, http.MethodPost, "/register-options", gin.H{"identity": "a@x.com"})
	require.Equal(t, http.StatusConflict, w.Code)

	// Completing without a pending ceremony
	w = doJSON(t, router, http.MethodPost, "/register", gin.H{
		"identity":   "a@x.com",
		"credential": "cred-1|whatever",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown account
	w = doJSON(t, router, http.MethodPost, "/register", gin.H{
		"identity":   "nobody@x.com",
		"credential": "cred-1|whatever",
	})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthenticationEndpoints(t *testing.T) {
	router := newTestRouter(t)

	// Unknown account and uncredentialed account both 404 on options
	w := doJSON(t, router, http.MethodPost, "/authenticate-options", gin.H{"identity": "nobody@x.com"})
	require.Equal(t, http.StatusNotFound, w.Code)

	registerAccount(t, router, "a@x.com", "cred-1")
	authenticate(t, router, "a@x.com", "cred-1")
}

func TestAuthenticateCredentialMismatch(t *testing.T) {
	router := newTestRouter(t)
	registerAccount(t, router, "a@x.com", "cred-1")

	w := doJSON(t, router, http.MethodPost, "/authenticate-options", gin.H{"identity": "a@x.com"})
	require.Equal(t, http.StatusCreated, w.Code)

	var options struct {
		PublicKey struct {
			Challenge string `json:"challenge"`
		} `json:"publicKey"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &options))

	w = doJSON(t, router, http.MethodPost, "/authenticate", gin.H{
		"identity":   "a@x.com",
		"credential": fmt.Sprintf("cred-other|%s", options.PublicKey.Challenge),
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRestrictedContent(t *testing.T) {
	router := newTestRouter(t)
	registerAccount(t, router, "a@x.com", "cred-1")
	token := authenticate(t, router, "a@x.com", "cred-1")

	// No credential presented at all
	req := httptest.NewRequest(http.MethodGet, "/restricted-content", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// A token nobody issued
	req = httptest.NewRequest(http.MethodGet, "/restricted-content", nil)
	req.Header.Set("Authorization", "made-up-token")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)

	// The real thing, both bare and Bearer-prefixed
	for _, header := range []string{token, "Bearer " + token} {
		req = httptest.NewRequest(http.MethodGet, "/restricted-content", nil)
		req.Header.Set("Authorization", header)
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), "a@x.com")
	}
}

func TestLogout(t *testing.T) {
	router := newTestRouter(t)
	registerAccount(t, router, "a@x.com", "cred-1")
	token := authenticate(t, router, "a@x.com", "cred-1")

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.Header.Set("Authorization", token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// The session is gone
	req = httptest.NewRequest(http.MethodGet, "/restricted-content", nil)
	req.Header.Set("Authorization", token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)
}
