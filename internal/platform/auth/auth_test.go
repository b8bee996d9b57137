package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"patient", "doctor", "admin"} {
		role, err := ParseRole(valid)
		if err != nil {
			t.Errorf("ParseRole(%q): %v", valid, err)
		}
		if role.String() != valid {
			t.Errorf("ParseRole(%q) = %q", valid, role)
		}
	}

	if _, err := ParseRole("superuser"); err == nil {
		t.Error("expected error for unknown role")
	}
	if _, err := ParseRole(""); err == nil {
		t.Error("expected error for empty role")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), time.Hour)
	accountID := uuid.New()

	token, err := issuer.Issue(accountID, RoleDoctor, "Dr. Grey")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Subject != accountID.String() {
		t.Errorf("subject = %q, want %q", claims.Subject, accountID)
	}
	if claims.Role != "doctor" {
		t.Errorf("role = %q, want doctor", claims.Role)
	}
	if claims.Name != "Dr. Grey" {
		t.Errorf("name = %q", claims.Name)
	}
}

func TestTokenRejectedWithWrongSecret(t *testing.T) {
	issuer := NewTokenIssuer([]byte("secret-a"), time.Hour)
	other := NewTokenIssuer([]byte("secret-b"), time.Hour)

	token, err := issuer.Issue(uuid.New(), RolePatient, "")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := other.Verify(token); err == nil {
		t.Error("expected verification failure with wrong secret")
	}
}

func TestTokenExpiry(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), -time.Minute)

	token, err := issuer.Issue(uuid.New(), RolePatient, "")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := issuer.Verify(token); err == nil {
		t.Error("expected expired token to be rejected")
	}
}

func TestMiddlewareAttachesIdentity(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), time.Hour)
	accountID := uuid.New()
	token, err := issuer.Issue(accountID, RoleAdmin, "Root")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got Identity
	h := Middleware(issuer)(func(c echo.Context) error {
		got, _ = IdentityFromContext(c.Request().Context())
		return nil
	})

	if err := h(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if got.AccountID != accountID {
		t.Errorf("account = %s, want %s", got.AccountID, accountID)
	}
	if got.Role != RoleAdmin {
		t.Errorf("role = %s, want admin", got.Role)
	}
}

func TestMiddlewareRejectsMissingHeader(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), time.Hour)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := Middleware(issuer)(func(c echo.Context) error { return nil })
	err := h(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestMiddlewareRejectsGarbageToken(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), time.Hour)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := Middleware(issuer)(func(c echo.Context) error { return nil })
	err := h(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func requireRoleRequest(t *testing.T, ident *Identity, roles ...Role) error {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if ident != nil {
		req = req.WithContext(WithIdentity(req.Context(), *ident))
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := RequireRole(roles...)(func(c echo.Context) error { return nil })
	return h(c)
}

func TestRequireRole(t *testing.T) {
	patient := Identity{AccountID: uuid.New(), Role: RolePatient}
	admin := Identity{AccountID: uuid.New(), Role: RoleAdmin}

	if err := requireRoleRequest(t, &patient, RolePatient); err != nil {
		t.Errorf("patient accessing patient route: %v", err)
	}

	err := requireRoleRequest(t, &patient, RoleDoctor)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Errorf("patient accessing doctor route: expected 403, got %v", err)
	}

	// Admins pass every role check.
	if err := requireRoleRequest(t, &admin, RoleDoctor); err != nil {
		t.Errorf("admin accessing doctor route: %v", err)
	}

	err = requireRoleRequest(t, nil, RolePatient)
	httpErr, ok = err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated request: expected 401, got %v", err)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "s3cret" {
		t.Fatal("hash must not equal plaintext")
	}
	if !CheckPassword(hash, "s3cret") {
		t.Error("expected matching password to verify")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("expected mismatched password to fail")
	}

	if _, err := HashPassword(""); err == nil {
		t.Error("expected error for empty password")
	}
}
