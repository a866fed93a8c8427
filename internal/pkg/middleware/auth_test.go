package middleware

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/vietscribe/vietscribe/app/models"
	"github.com/vietscribe/vietscribe/internal/pkg/auth"
	"github.com/vietscribe/vietscribe/internal/pkg/usercontext"
)

const (
	testIssuer   = "https://id.vietscribe.vn/"
	testAudience = "https://api.vietscribe.vn"
)

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[string]*models.User
	nextID uint
	fail   bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*models.User{}, nextID: 1}
}

func (r *fakeUserRepo) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = r.nextID
	r.nextID++
	r.users[user.Subject] = user
	return nil
}

func (r *fakeUserRepo) GetByID(id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetBySubject(subject string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[subject]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByEmail(email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetOrCreateBySubject(subject, email, name string) (*models.User, error) {
	if r.fail {
		return nil, errors.New("database down")
	}
	if u, err := r.GetBySubject(subject); err == nil {
		return u, nil
	}
	u := &models.User{Subject: subject, Email: email, Name: name, Role: models.ROLE_USER, Status: models.STATUS_ACTIVE}
	if err := r.Create(u); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *fakeUserRepo) Update(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.Subject] = user
	return nil
}

func (r *fakeUserRepo) TouchLastLogin(id uint) error { return nil }

func (r *fakeUserRepo) List(offset, limit int) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *fakeUserRepo) Count() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

func newTestVerifier(t *testing.T) (*auth.Verifier, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to create key: %v", err)
	}

	jwks := newJWKS(key, "test-key")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(jwks)
	}))
	t.Cleanup(server.Close)

	verifier, err := auth.NewVerifier(testIssuer, testAudience, server.URL)
	if err != nil {
		t.Fatalf("failed to create verifier: %v", err)
	}
	return verifier, key
}

func signToken(t *testing.T, key *rsa.PrivateKey, subject string) string {
	t.Helper()
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss":   testIssuer,
		"aud":   testAudience,
		"sub":   subject,
		"email": "minh.tran@example.vn",
		"name":  "Trần Văn Minh",
		"exp":   now.Add(10 * time.Minute).Unix(),
		"iat":   now.Unix(),
	})
	token.Header["kid"] = "test-key"
	tokenString, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return tokenString
}

func protectedApp(verifier *auth.Verifier, users *fakeUserRepo) *fiber.App {
	app := fiber.New()
	app.Use(BearerAuth(verifier, users))
	app.Get("/protected", func(c *fiber.Ctx) error {
		uc := usercontext.Get(c)
		if !uc.IsLoggedIn || uc.UserID == 0 {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		return c.JSON(fiber.Map{"user_id": uc.UserID, "subject": uc.Subject})
	})
	return app
}

func TestBearerAuthMissingToken(t *testing.T) {
	verifier, _ := newTestVerifier(t)
	app := protectedApp(verifier, newFakeUserRepo())

	resp, err := app.Test(httptest.NewRequest("GET", "/protected", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestBearerAuthMalformedHeader(t *testing.T) {
	verifier, _ := newTestVerifier(t)
	app := protectedApp(verifier, newFakeUserRepo())

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestBearerAuthInvalidToken(t *testing.T) {
	verifier, _ := newTestVerifier(t)
	app := protectedApp(verifier, newFakeUserRepo())

	badKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to create key: %v", err)
	}
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, badKey, "auth0|intruder"))

	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestBearerAuthCreatesUserOnFirstLogin(t *testing.T) {
	verifier, key := newTestVerifier(t)
	users := newFakeUserRepo()
	app := protectedApp(verifier, users)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, key, "auth0|user-456"))

	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	user, err := users.GetBySubject("auth0|user-456")
	if err != nil {
		t.Fatalf("expected user to be created: %v", err)
	}
	if user.Email != "minh.tran@example.vn" {
		t.Fatalf("unexpected email %q", user.Email)
	}
}

func TestBearerAuthRejectsDisabledUser(t *testing.T) {
	verifier, key := newTestVerifier(t)
	users := newFakeUserRepo()
	_ = users.Create(&models.User{Subject: "auth0|banned", Email: "banned@example.vn", Status: models.STATUS_DISABLED})
	app := protectedApp(verifier, users)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, key, "auth0|banned"))

	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestBearerAuthUserLookupFailure(t *testing.T) {
	verifier, key := newTestVerifier(t)
	users := newFakeUserRepo()
	users.fail = true
	app := protectedApp(verifier, users)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, key, "auth0|user-789"))

	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}

type jwksPayload struct {
	Keys []jwk `json:"keys"`
}

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func newJWKS(key *rsa.PrivateKey, kid string) jwksPayload {
	n := base64.RawURLEncoding.EncodeToString(key.PublicKey.N.Bytes())
	e := base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.PublicKey.E)).Bytes())
	return jwksPayload{
		Keys: []jwk{{
			Kty: "RSA",
			Kid: kid,
			Use: "sig",
			Alg: "RS256",
			N:   n,
			E:   e,
		}},
	}
}
