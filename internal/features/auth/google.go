package auth

import (
	"context"
	"fmt"

	"google.golang.org/api/idtoken"
)

// GoogleUser holds the claims we use from a validated Google ID token
type GoogleUser struct {
	UID           string
	Email         string
	Name          string
	Picture       string
	EmailVerified bool
}

// VerifyGoogleToken validates the Google ID token against the configured
// OAuth client ID.
func VerifyGoogleToken(ctx context.Context, idToken string, clientID string) (*GoogleUser, error) {
	payload, err := idtoken.Validate(ctx, idToken, clientID)
	if err != nil {
		return nil, fmt.Errorf("invalid google token: %w", err)
	}

	googleUser := &GoogleUser{
		UID: payload.Subject,
	}

	if email, ok := payload.Claims["email"].(string); ok {
		googleUser.Email = email
	}
	if name, ok := payload.Claims["name"].(string); ok {
		googleUser.Name = name
	}
	if picture, ok := payload.Claims["picture"].(string); ok {
		googleUser.Picture = picture
	}
	if verified, ok := payload.Claims["email_verified"].(bool); ok {
		googleUser.EmailVerified = verified
	}

	return googleUser, nil
}
