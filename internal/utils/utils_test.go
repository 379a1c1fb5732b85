package utils

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("s3cret", 42, 15)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if d := time.Until(tok.Exp); d < 14*time.Minute || d > 15*time.Minute {
		t.Fatalf("exp in %v", d)
	}
	id, err := ParseAccessToken("s3cret", tok.Token)
	if err != nil || id != 42 {
		t.Fatalf("parse = %d, %v", id, err)
	}
	if _, err := ParseAccessToken("other", tok.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong secret: %v", err)
	}
	if _, err := ParseAccessToken("s3cret", "garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("garbage: %v", err)
	}
}

func TestRefreshToken(t *testing.T) {
	rt, err := NewRefreshToken(7)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if len(rt.Raw) != 96 {
		t.Fatalf("raw length = %d", len(rt.Raw))
	}
	if rt.Exp.Before(time.Now().Add(6 * 24 * time.Hour)) {
		t.Fatalf("exp too early: %v", rt.Exp)
	}
	h := HashRefreshRaw(rt.Raw)
	if len(h) != 64 || h == rt.Raw || h != HashRefreshRaw(rt.Raw) {
		t.Fatalf("hash = %q", h)
	}
	other, _ := NewRefreshToken(7)
	if strings.EqualFold(other.Raw, rt.Raw) {
		t.Fatal("two refresh tokens collided")
	}
}

func TestPassword(t *testing.T) {
	h, err := HashPassword("pw", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !VerifyPassword(h, "pw") || VerifyPassword(h, "nope") {
		t.Fatal("verify mismatch")
	}
}
