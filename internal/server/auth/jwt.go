// Package auth resolves the caller identity carried by a bearer token. Tokens
// are issued by the external identity provider; this package only verifies
// them (GenerateToken exists for tests and local tooling).
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/recipeshare/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Identity is what the identity provider knows about the caller.
type Identity struct {
	ExternalID string
	Email      string
	Name       string
	PictureURL string
}

// Claims carries the registered claims plus the profile fields the provider
// puts in the token. Subject is the external id.
type Claims struct {
	jwt.RegisteredClaims
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

func GenerateToken(id Identity, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ExternalID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		Email:   id.Email,
		Name:    id.Name,
		Picture: id.PictureURL,
	})

	return token.SignedString(secretKey)
}

// ParseIdentity verifies tokenString and returns the identity inside.
// Expired tokens yield common.ErrTokenExpired; anything else that fails
// verification wraps common.ErrInvalidToken.
func ParseIdentity(tokenString string, secretKey []byte) (Identity, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, common.ErrTokenExpired
		}
		return Identity{}, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject == "" {
		return Identity{}, common.ErrInvalidToken
	}

	return Identity{
		ExternalID: claims.Subject,
		Email:      claims.Email,
		Name:       claims.Name,
		PictureURL: claims.Picture,
	}, nil
}

// BearerToken extracts the token from an Authorization header value of the
// form "Bearer <token>". The scheme is case-insensitive.
func BearerToken(header string) (string, error) {
	fields := strings.Fields(header)
	if len(fields) != 2 || !strings.EqualFold(fields[0], "bearer") {
		return "", common.ErrInvalidToken
	}
	return fields[1], nil
}
