package jwt

import (
	"errors"
	"testing"
	"time"
)

func TestValidateToken(t *testing.T) {
	m := NewManager("test-secret", "wavecast", time.Hour)

	token, err := m.GenerateToken("u1", "alice", "Alice", "broadcaster", "")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != "u1" || claims.Username != "alice" || claims.Role != "broadcaster" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	issuer := NewManager("secret-a", "wavecast", time.Hour)
	verifier := NewManager("secret-b", "wavecast", time.Hour)

	token, err := issuer.GenerateToken("u1", "alice", "Alice", "viewer", "")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := verifier.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestValidateTokenWrongIssuer(t *testing.T) {
	issuer := NewManager("test-secret", "someone-else", time.Hour)
	verifier := NewManager("test-secret", "wavecast", time.Hour)

	token, err := issuer.GenerateToken("u1", "alice", "Alice", "viewer", "")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := verifier.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestValidateTokenExpired(t *testing.T) {
	m := NewManager("test-secret", "wavecast", -time.Minute)

	token, err := m.GenerateToken("u1", "alice", "Alice", "viewer", "")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := m.ValidateToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("err = %v, want ErrExpiredToken", err)
	}
}

func TestValidateTokenGarbage(t *testing.T) {
	m := NewManager("test-secret", "wavecast", time.Hour)

	if _, err := m.ValidateToken("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}
