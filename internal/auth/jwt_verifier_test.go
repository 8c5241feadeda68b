package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"testing"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"github.com/Priya-753/notion-clone/internal/domain"
)

const testKID = "test-key"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestVerifier(t *testing.T) (*SupabaseJWTVerifier, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	enc := base64.RawURLEncoding
	set := map[string]any{
		"keys": []map[string]string{{
			"kty": "RSA",
			"kid": testKID,
			"alg": "RS256",
			"use": "sig",
			"n":   enc.EncodeToString(key.N.Bytes()),
			"e":   enc.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
		}},
	}
	raw, err := json.Marshal(set)
	if err != nil {
		t.Fatalf("marshal jwks: %v", err)
	}
	kf, err := keyfunc.NewJWKSetJSON(raw)
	if err != nil {
		t.Fatalf("keyfunc: %v", err)
	}
	return NewVerifierWithKeyfunc(kf, testLogger()), key
}

func sign(t *testing.T, key *rsa.PrivateKey, claims *Claims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = testKID
	s, err := tok.SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func claimsFor(sub, role string, exp time.Time) *Claims {
	c := &Claims{Role: role, Email: sub + "@example.com"}
	c.Subject = sub
	c.ExpiresAt = jwt.NewNumericDate(exp)
	c.IssuedAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	return c
}

func TestVerifyToken(t *testing.T) {
	v, key := newTestVerifier(t)
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	future := time.Now().Add(time.Hour)

	hs := jwt.NewWithClaims(jwt.SigningMethodHS256, claimsFor("user-1", "authenticated", future))
	hs.Header["kid"] = testKID
	hsToken, err := hs.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign hs256: %v", err)
	}

	tests := []struct {
		name    string
		token   string
		wantSub string
	}{
		{"valid", sign(t, key, claimsFor("user-1", "authenticated", future)), "user-1"},
		{"expired", sign(t, key, claimsFor("user-1", "authenticated", time.Now().Add(-time.Hour))), ""},
		{"anonymous role", sign(t, key, claimsFor("user-1", "anon", future)), ""},
		{"missing subject", sign(t, key, claimsFor("", "authenticated", future)), ""},
		{"wrong key", sign(t, other, claimsFor("user-1", "authenticated", future)), ""},
		{"symmetric algorithm", hsToken, ""},
		{"garbage", "not-a-token", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := v.VerifyToken(tt.token)
			if tt.wantSub == "" {
				if !errors.Is(err, domain.ErrUnauthorized) {
					t.Fatalf("expected ErrUnauthorized, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("VerifyToken: %v", err)
			}
			if claims.UserID() != tt.wantSub {
				t.Errorf("user id = %q, want %q", claims.UserID(), tt.wantSub)
			}
		})
	}
}

func TestDevVerifier(t *testing.T) {
	v := NewDevVerifier(testLogger())

	claims, err := v.VerifyToken(" alice ")
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if claims.UserID() != "alice" {
		t.Errorf("user id = %q, want alice", claims.UserID())
	}

	if _, err := v.VerifyToken("  "); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized for blank token, got %v", err)
	}
}

func TestNewJWTVerifierRequiresURL(t *testing.T) {
	if _, err := NewJWTVerifier(t.Context(), "", testLogger()); err == nil {
		t.Fatal("expected error for empty JWKS URL")
	}
}
