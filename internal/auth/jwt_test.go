package auth

import (
	"testing"
	"time"
)

const testAddress = "0:b5f1a2c3000000000000000000000000000000000000000000000000000000aa"

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT("secret", testAddress, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	claims, err := ParseJWT("secret", token)
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if claims.Address != testAddress {
		t.Errorf("address = %q, want %q", claims.Address, testAddress)
	}
}

func TestJWTWrongSecret(t *testing.T) {
	token, err := GenerateJWT("secret", testAddress, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	if _, err := ParseJWT("other-secret", token); err == nil {
		t.Error("expected error for wrong secret")
	}
}

func TestJWTExpired(t *testing.T) {
	token, err := GenerateJWT("secret", testAddress, time.Nanosecond)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	time.Sleep(10 * time.Millisecond)
	if _, err := ParseJWT("secret", token); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestJWTGarbage(t *testing.T) {
	if _, err := ParseJWT("secret", "not-a-token"); err == nil {
		t.Error("expected error for malformed token")
	}
}
