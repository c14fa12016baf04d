package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Identity is the principal resolved from a bearer token.
type Identity struct {
	UserID   int
	Username string
}

// TokenVerifier resolves a bearer token into an identity. Token minting is
// owned by the auth service; this side only verifies.
type TokenVerifier interface {
	ResolveIdentity(ctx context.Context, token string) (Identity, error)
}

// JWTVerifier validates HS256 tokens issued by the auth service.
type JWTVerifier struct {
	signingKey []byte
}

// NewJWTVerifier constructs a JWTVerifier.
func NewJWTVerifier(signingKey []byte) *JWTVerifier {
	return &JWTVerifier{signingKey: signingKey}
}

// ResolveIdentity parses and validates the token and extracts the principal.
func (v *JWTVerifier) ResolveIdentity(_ context.Context, token string) (Identity, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return v.signingKey, nil
	})
	if err != nil || !parsed.Valid {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	userID, ok := claims["user_id"].(float64)
	if !ok || userID == 0 {
		return Identity{}, ErrInvalidToken
	}
	username, ok := claims["username"].(string)
	if !ok || username == "" {
		return Identity{}, ErrInvalidToken
	}

	return Identity{UserID: int(userID), Username: username}, nil
}

// SignToken mints a token for the given identity. The service itself never
// issues tokens; this exists for local development and tests.
func SignToken(signingKey []byte, id Identity, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  id.UserID,
		"username": id.Username,
		"exp":      time.Now().Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
}
