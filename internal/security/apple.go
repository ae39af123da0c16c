package security

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
)

// AppleIdentity is the subset of an Apple identity token this service
// cares about. Subject is Apple's stable opaque user identifier.
type AppleIdentity struct {
	Subject string
	Email   string
}

// AppleVerifier validates Sign in with Apple identity tokens against
// Apple's OIDC issuer.
type AppleVerifier struct {
	verifier *oidc.IDTokenVerifier
}

func NewAppleVerifier(ctx context.Context, issuer string, clientID string) (*AppleVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("apple oidc provider: %w", err)
	}

	return &AppleVerifier{
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

func (v *AppleVerifier) Verify(ctx context.Context, rawToken string) (AppleIdentity, error) {
	idToken, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return AppleIdentity{}, fmt.Errorf("verify identity token: %w", err)
	}

	var claims struct {
		Email string `json:"email"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return AppleIdentity{}, fmt.Errorf("decode claims: %w", err)
	}

	return AppleIdentity{
		Subject: idToken.Subject,
		Email:   claims.Email,
	}, nil
}
