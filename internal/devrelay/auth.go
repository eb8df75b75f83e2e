package devrelay

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/domain"
)

const (
	tokenIssuer   = "lawmate-devrelay"
	ctxUserKey    = "user_id"
	defaultTTL    = 24 * time.Hour
	minSecretSize = 16
)

// ErrWeakSecret is returned for signing secrets shorter than 16 bytes.
var ErrWeakSecret = errors.New("jwt secret must be at least 16 bytes")

// IssueToken signs a bearer token for userID. A zero ttl means 24 hours.
func IssueToken(secret string, userID domain.UserID, ttl time.Duration) (string, error) {
	if len(secret) < minSecretSize {
		return "", ErrWeakSecret
	}
	if userID == "" {
		return "", errors.New("issue token: empty user id")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return s, nil
}

// parseToken validates a bearer token and returns its subject.
func parseToken(secret, token string) (domain.UserID, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return domain.UserID(claims.Subject), nil
}

// authMiddleware rejects requests without a valid bearer token and stores
// the authenticated user id in the gin context.
func authMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization header required")
			return
		}
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || scheme != "Bearer" || token == "" {
			fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid authorization header format")
			return
		}
		userID, err := parseToken(secret, token)
		if err != nil {
			fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token")
			return
		}
		c.Set(ctxUserKey, userID)
		c.Next()
	}
}

func currentUser(c *gin.Context) domain.UserID {
	v, _ := c.Get(ctxUserKey)
	u, _ := v.(domain.UserID)
	return u
}
