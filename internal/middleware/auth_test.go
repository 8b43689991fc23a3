package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/gympoint/class-scheduler/internal/model"
)

const testSecret = "test-secret"

// buildTestApp wires a protected probe route behind JWTAuth and RequireRole,
// echoing back the injected identity so tests can assert on it.
func buildTestApp(roles ...string) *echo.Echo {
	e := echo.New()
	g := e.Group("/v1", JWTAuth(testSecret), RequireRole(roles...))
	g.GET("/probe", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"user_id": c.Get("user_id"),
			"role":    c.Get("role"),
		})
	})
	return e
}

// signTestToken returns an HS256 token with the claims JWTAuth expects.
func signTestToken(t *testing.T, userID uint64, role string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func probe(e *echo.Echo, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/v1/probe", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthRejectsMissingToken(t *testing.T) {
	e := buildTestApp(model.RoleMember)
	if rec := probe(e, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthRejectsBadSignature(t *testing.T) {
	e := buildTestApp(model.RoleMember)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": uint64(1), "role": model.RoleMember,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte("wrong-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	if rec := probe(e, signed); rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong secret: status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthRejectsExpiredToken(t *testing.T) {
	e := buildTestApp(model.RoleMember)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": uint64(1), "role": model.RoleMember,
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	if rec := probe(e, signed); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expired token: status = %d, want 401", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	e := buildTestApp(model.RoleAdmin, model.RoleInstructor)

	if rec := probe(e, signTestToken(t, 7, model.RoleAdmin)); rec.Code != http.StatusOK {
		t.Fatalf("admin: status = %d, want 200", rec.Code)
	}
	if rec := probe(e, signTestToken(t, 8, model.RoleInstructor)); rec.Code != http.StatusOK {
		t.Fatalf("instructor: status = %d, want 200", rec.Code)
	}
	if rec := probe(e, signTestToken(t, 9, model.RoleMember)); rec.Code != http.StatusForbidden {
		t.Fatalf("member on staff route: status = %d, want 403", rec.Code)
	}
	if rec := probe(e, signTestToken(t, 9, "JANITOR")); rec.Code != http.StatusForbidden {
		t.Fatalf("unknown role: status = %d, want 403", rec.Code)
	}
}
