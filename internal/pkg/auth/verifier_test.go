// Package auth tests token verification against a mock JWKS endpoint.
package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	testIssuer   = "https://id.vietscribe.vn/"
	testAudience = "https://api.vietscribe.vn"
)

func newTestVerifier(t *testing.T) (*Verifier, *rsa.PrivateKey) {
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

	verifier, err := NewVerifier(testIssuer, testAudience, server.URL)
	if err != nil {
		t.Fatalf("failed to create verifier: %v", err)
	}
	return verifier, key
}

func signToken(t *testing.T, key *rsa.PrivateKey, kid string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	tokenString, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return tokenString
}

func defaultClaims() jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"iss":   testIssuer,
		"aud":   testAudience,
		"sub":   "auth0|user-123",
		"email": "lan.nguyen@example.vn",
		"name":  "Nguyễn Thị Lan",
		"exp":   now.Add(10 * time.Minute).Unix(),
		"iat":   now.Unix(),
	}
}

func TestVerifyValidToken(t *testing.T) {
	verifier, key := newTestVerifier(t)
	tokenString := signToken(t, key, "test-key", defaultClaims())

	claims, err := verifier.Verify(tokenString)
	if err != nil {
		t.Fatalf("expected valid token, got %v", err)
	}
	if claims.Subject != "auth0|user-123" {
		t.Fatalf("unexpected subject %q", claims.Subject)
	}
	if claims.Email != "lan.nguyen@example.vn" {
		t.Fatalf("unexpected email %q", claims.Email)
	}
	if claims.Name != "Nguyễn Thị Lan" {
		t.Fatalf("unexpected name %q", claims.Name)
	}
	if len(claims.Audience) != 1 || claims.Audience[0] != testAudience {
		t.Fatalf("unexpected audience %v", claims.Audience)
	}
	if claims.ExpiresAt.Before(time.Now()) {
		t.Fatalf("expected future expiry, got %v", claims.ExpiresAt)
	}
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	verifier, _ := newTestVerifier(t)

	badKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to create key: %v", err)
	}
	tokenString := signToken(t, badKey, "test-key", defaultClaims())

	if _, err := verifier.Verify(tokenString); err == nil {
		t.Fatal("expected verification to fail for foreign key")
	}
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	verifier, key := newTestVerifier(t)
	claims := defaultClaims()
	claims["iss"] = "https://evil.example.com/"
	tokenString := signToken(t, key, "test-key", claims)

	if _, err := verifier.Verify(tokenString); err == nil {
		t.Fatal("expected verification to fail for wrong issuer")
	}
}

func TestVerifyRejectsWrongAudience(t *testing.T) {
	verifier, key := newTestVerifier(t)
	claims := defaultClaims()
	claims["aud"] = "https://other.api"
	tokenString := signToken(t, key, "test-key", claims)

	if _, err := verifier.Verify(tokenString); err == nil {
		t.Fatal("expected verification to fail for wrong audience")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	verifier, key := newTestVerifier(t)
	claims := defaultClaims()
	claims["exp"] = time.Now().Add(-time.Hour).Unix()
	tokenString := signToken(t, key, "test-key", claims)

	if _, err := verifier.Verify(tokenString); err == nil {
		t.Fatal("expected verification to fail for expired token")
	}
}

func TestVerifyRejectsMissingSubject(t *testing.T) {
	verifier, key := newTestVerifier(t)
	claims := defaultClaims()
	delete(claims, "sub")
	tokenString := signToken(t, key, "test-key", claims)

	if _, err := verifier.Verify(tokenString); err == nil {
		t.Fatal("expected verification to fail without sub claim")
	}
}

func TestNormalizeIssuer(t *testing.T) {
	cases := map[string]string{
		"https://id.example.com":  "https://id.example.com/",
		"https://id.example.com/": "https://id.example.com/",
		"  ":                      "",
	}
	for in, want := range cases {
		if got := normalizeIssuer(in); got != want {
			t.Fatalf("normalizeIssuer(%q) = %q, want %q", in, got, want)
		}
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
