package security

import (
	"testing"
	"time"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	signed, err := GenerateAccessToken("secret", "user-1", "sess-1", "device-1", "user", time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ParseAccessToken(signed, "secret")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "user-1" || claims.SessionID != "sess-1" || claims.DeviceID != "device-1" || claims.Role != "user" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestAccessTokenWrongSecret(t *testing.T) {
	signed, err := GenerateAccessToken("secret", "user-1", "sess-1", "device-1", "user", time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ParseAccessToken(signed, "other-secret"); err == nil {
		t.Fatal("token verified with the wrong secret")
	}
}

func TestAccessTokenExpired(t *testing.T) {
	signed, err := GenerateAccessToken("secret", "user-1", "sess-1", "device-1", "user", -time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ParseAccessToken(signed, "secret"); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestRefreshToken(t *testing.T) {
	token, hash, err := GenerateRefreshToken(64)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if token == "" || len(hash) != 32 {
		t.Fatalf("token = %q, hash len = %d", token, len(hash))
	}

	if got := HashRefreshToken(token); string(got) != string(hash) {
		t.Fatal("hash of the issued token does not match")
	}
	if got := HashRefreshToken("tampered"); string(got) == string(hash) {
		t.Fatal("different tokens hash identically")
	}

	other, _, err := GenerateRefreshToken(64)
	if err != nil {
		t.Fatalf("generate second: %v", err)
	}
	if other == token {
		t.Fatal("two refresh tokens are identical")
	}
}

func TestWebhookSignature(t *testing.T) {
	body := []byte(`{"eventId":"evt-1","productId":"paintsnap_credits_5"}`)
	sig := SignWebhookBody("whsec", body)

	if !ValidateWebhookSignature("whsec", sig, body) {
		t.Fatal("valid signature rejected")
	}
	if ValidateWebhookSignature("whsec", sig, []byte(`{"eventId":"evt-2"}`)) {
		t.Fatal("signature accepted for a different body")
	}
	if ValidateWebhookSignature("other", sig, body) {
		t.Fatal("signature accepted with the wrong secret")
	}
	if ValidateWebhookSignature("whsec", "", body) {
		t.Fatal("empty signature accepted")
	}
}
