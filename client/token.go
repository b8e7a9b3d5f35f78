package client

import (
	"errors"
	"fmt"

	"github.com/dgrijalva/jwt-go"
)

type Claims struct {
	Name string `json:"name"`
	jwt.StandardClaims
}

// UsernameFromToken reads the name claim of an access token. The signature
// is not checked here; the server verifies the token it receives.
func UsernameFromToken(token string) (string, error) {
	claims := &Claims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}
	if claims.Name == "" {
		return "", errors.New("token has no name claim")
	}
	return claims.Name, nil
}
