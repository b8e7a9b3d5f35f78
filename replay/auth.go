package replay

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/argon2"

	"github.com/SvenDH/go-card-client/client"
)

type contextKey string

const (
	DefaultTokenTTL = 7 * 24 * time.Hour

	userContextKey = contextKey("user")
)

var errMalformedHash = errors.New("malformed password hash")

// argonParams are the argon2id cost settings stored alongside each hash.
type argonParams struct {
	memory  uint32
	time    uint32
	threads uint8
	keyLen  uint32
}

var defaultParams = argonParams{memory: 64 * 1024, time: 1, threads: 4, keyLen: 32}

func (p argonParams) key(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, p.time, p.memory, p.threads, p.keyLen)
}

// encode renders $argon2id$v=19$m=..,t=..,p=..$salt$key.
func (p argonParams) encode(salt, key []byte) string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.memory, p.time, p.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key))
}

func parseHash(encoded string) (p argonParams, salt, key []byte, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return p, nil, nil, errMalformedHash
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return p, nil, nil, fmt.Errorf("%w: %v", errMalformedHash, err)
	}
	if salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return p, nil, nil, fmt.Errorf("%w: salt: %v", errMalformedHash, err)
	}
	if key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return p, nil, nil, fmt.Errorf("%w: key: %v", errMalformedHash, err)
	}
	if len(key) == 0 {
		return p, nil, nil, errMalformedHash
	}
	p.keyLen = uint32(len(key))
	return p, salt, key, nil
}

// HashPassword returns an encoded argon2id hash of a game password.
func HashPassword(password string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	return defaultParams.encode(salt, defaultParams.key(password, salt)), nil
}

// ValidatePassword checks password against a hash from HashPassword. The
// cost settings are read from the hash, not from the current defaults.
func ValidatePassword(password, encoded string) (bool, error) {
	p, salt, key, err := parseHash(encoded)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(key, p.key(password, salt)) == 1, nil
}

// CreateToken signs an HS256 token carrying the player name.
func CreateToken(name, secret string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, client.Claims{
		Name: name,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(ttl).Unix(),
		},
	})
	return token.SignedString([]byte(secret))
}

func ValidateToken(tokenString, secret string) (*client.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &client.Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*client.Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// AuthMiddleware requires a valid ?token= whose name claim matches the
// {user} path segment. An empty secret disables the check.
func AuthMiddleware(secret string, f http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if secret == "" {
			f(w, r)
			return
		}
		token := r.URL.Query().Get("token")
		if token == "" {
			respondWithError(w, http.StatusBadRequest, "token required")
			return
		}
		claims, err := ValidateToken(token, secret)
		if err != nil || claims.Name != r.PathValue("user") {
			respondWithError(w, http.StatusForbidden, "invalid token")
			return
		}
		ctx := context.WithValue(r.Context(), userContextKey, claims.Name)
		f(w, r.WithContext(ctx))
	}
}
