package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"custodia/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// JWTAuthenticator turns a Bearer token into the actor recorded in the
// ledger. The token is issued by the identity provider; this layer verifies
// the signature and reads the claims, it never re-derives identity.
type JWTAuthenticator struct {
	Secret []byte
}

func NewJWTAuthenticator(secret string) *JWTAuthenticator {
	return &JWTAuthenticator{Secret: []byte(secret)}
}

func (a *JWTAuthenticator) Authenticate(c *gin.Context) (domain.Actor, error) {
	if a == nil || len(a.Secret) == 0 {
		return domain.Actor{}, errors.New("jwt secret not configured")
	}
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return domain.Actor{}, fmt.Errorf("%w: missing bearer token", domain.ErrUnauthorized)
	}
	raw := strings.TrimPrefix(header, "Bearer ")

	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.Secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return domain.Actor{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return domain.Actor{}, fmt.Errorf("%w: malformed claims", domain.ErrUnauthorized)
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return domain.Actor{}, fmt.Errorf("%w: subject claim required", domain.ErrUnauthorized)
	}
	role, _ := claims["role"].(string)
	if role == "" {
		role = domain.RoleUser
	}
	return domain.Actor{ID: sub, Role: role}, nil
}

// IssueToken signs a short-lived HS256 token for an actor. Used by tooling
// and tests; production tokens come from the identity provider.
func IssueToken(secret string, actor domain.Actor, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  actor.ID,
		"role": actor.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	})
	return token.SignedString([]byte(secret))
}
