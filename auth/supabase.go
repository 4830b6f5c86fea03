package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

const supabaseAudience = "authenticated"

var ErrSupabaseDisabled = errors.New("supabase authentication is not configured")

// SupabaseIdentity is the subset of a Supabase access token we rely on.
type SupabaseIdentity struct {
	ID    string
	Email string
	Name  string
}

type SupabaseVerifier struct {
	secret []byte
}

// NewSupabaseVerifier returns nil when no secret is configured.
func NewSupabaseVerifier(secret string) *SupabaseVerifier {
	if secret == "" {
		return nil
	}
	return &SupabaseVerifier{secret: []byte(secret)}
}

// Verify checks the token signature locally with the project's JWT secret.
func (v *SupabaseVerifier) Verify(token string) (*SupabaseIdentity, error) {
	if v == nil {
		return nil, ErrSupabaseDisabled
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithAudience(supabaseAudience), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	identity := &SupabaseIdentity{
		ID:    stringClaim(claims, "sub"),
		Email: strings.ToLower(stringClaim(claims, "email")),
	}
	if meta, ok := claims["user_metadata"].(map[string]interface{}); ok {
		if name, ok := meta["full_name"].(string); ok {
			identity.Name = name
		} else if name, ok := meta["name"].(string); ok {
			identity.Name = name
		}
	}
	if identity.ID == "" || identity.Email == "" {
		return nil, ErrInvalidToken
	}
	return identity, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
