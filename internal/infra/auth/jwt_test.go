package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"custodia/internal/domain"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func ginContextWithAuth(header string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		c.Request.Header.Set("Authorization", header)
	}
	return c
}

func TestAuthenticateRoundTrip(t *testing.T) {
	token, err := IssueToken("secret", domain.Actor{ID: "analyst-1", Role: domain.RoleForensicAnalyst}, time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	actor, err := NewJWTAuthenticator("secret").Authenticate(ginContextWithAuth("Bearer " + token))
	if err != nil {
		t.Fatal(err)
	}
	if actor.ID != "analyst-1" || actor.Role != domain.RoleForensicAnalyst {
		t.Fatalf("actor = %+v", actor)
	}
}

func TestAuthenticateMissingHeader(t *testing.T) {
	_, err := NewJWTAuthenticator("secret").Authenticate(ginContextWithAuth(""))
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("got %v, want ErrUnauthorized", err)
	}
}

func TestAuthenticateWrongSecret(t *testing.T) {
	token, err := IssueToken("secret", domain.Actor{ID: "analyst-1"}, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	_, err = NewJWTAuthenticator("other").Authenticate(ginContextWithAuth("Bearer " + token))
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("got %v, want ErrUnauthorized", err)
	}
}

func TestAuthenticateExpiredToken(t *testing.T) {
	token, err := IssueToken("secret", domain.Actor{ID: "analyst-1"}, -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	_, err = NewJWTAuthenticator("secret").Authenticate(ginContextWithAuth("Bearer " + token))
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("got %v, want ErrUnauthorized", err)
	}
}

func TestAuthenticateDefaultsRole(t *testing.T) {
	token, err := IssueToken("secret", domain.Actor{ID: "someone"}, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	actor, err := NewJWTAuthenticator("secret").Authenticate(ginContextWithAuth("Bearer " + token))
	if err != nil {
		t.Fatal(err)
	}
	if actor.Role != domain.RoleUser {
		t.Fatalf("role = %s, want default user", actor.Role)
	}
}
