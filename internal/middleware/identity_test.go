package middleware_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"winsbygroup.com/prodreg/internal/middleware"
)

const testSecret = "storefront-test-secret"

func runUserAuth(t *testing.T, c echo.Context, secret string) int64 {
	t.Helper()
	var got int64 = -1
	handler := middleware.UserAuth(secret)(func(c echo.Context) error {
		got = middleware.UserID(c)
		return c.String(http.StatusOK, "OK")
	})
	if err := handler(c); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	return got
}

func TestUserAuth(t *testing.T) {
	valid, err := middleware.IssueUserToken(testSecret, 99, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	t.Run("bearer header", func(t *testing.T) {
		c, _ := newContext(http.MethodPost, "/reg/register")
		c.Request().Header.Set("Authorization", "Bearer "+valid)

		if id := runUserAuth(t, c, testSecret); id != 99 {
			t.Errorf("expected user 99, got %d", id)
		}
	})

	t.Run("cookie", func(t *testing.T) {
		c, _ := newContext(http.MethodGet, "/reg/")
		c.Request().AddCookie(&http.Cookie{Name: middleware.UserTokenCookie, Value: valid})

		if id := runUserAuth(t, c, testSecret); id != 99 {
			t.Errorf("expected user 99, got %d", id)
		}
	})

	t.Run("no token is anonymous", func(t *testing.T) {
		c, _ := newContext(http.MethodGet, "/reg/")
		if id := runUserAuth(t, c, testSecret); id != 0 {
			t.Errorf("expected anonymous, got %d", id)
		}
	})

	t.Run("wrong secret is anonymous", func(t *testing.T) {
		c, _ := newContext(http.MethodGet, "/reg/")
		c.Request().Header.Set("Authorization", "Bearer "+valid)
		if id := runUserAuth(t, c, "other-secret"); id != 0 {
			t.Errorf("expected anonymous, got %d", id)
		}
	})

	t.Run("expired token is anonymous", func(t *testing.T) {
		expired, err := middleware.IssueUserToken(testSecret, 99, -time.Minute)
		if err != nil {
			t.Fatalf("issue token: %v", err)
		}
		c, _ := newContext(http.MethodGet, "/reg/")
		c.Request().Header.Set("Authorization", "Bearer "+expired)
		if id := runUserAuth(t, c, testSecret); id != 0 {
			t.Errorf("expected anonymous, got %d", id)
		}
	})

	t.Run("token without expiry is anonymous", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "99"})
		raw, err := tok.SignedString([]byte(testSecret))
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		c, _ := newContext(http.MethodGet, "/reg/")
		c.Request().Header.Set("Authorization", "Bearer "+raw)
		if id := runUserAuth(t, c, testSecret); id != 0 {
			t.Errorf("expected anonymous, got %d", id)
		}
	})

	t.Run("non numeric subject is anonymous", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject:   "jdoe",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})
		raw, _ := tok.SignedString([]byte(testSecret))
		c, _ := newContext(http.MethodGet, "/reg/")
		c.Request().Header.Set("Authorization", "Bearer "+raw)
		if id := runUserAuth(t, c, testSecret); id != 0 {
			t.Errorf("expected anonymous, got %d", id)
		}
	})

	t.Run("unsigned token is anonymous", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
			Subject:   "99",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})
		raw, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		c, _ := newContext(http.MethodGet, "/reg/")
		c.Request().Header.Set("Authorization", "Bearer "+raw)
		if id := runUserAuth(t, c, testSecret); id != 0 {
			t.Errorf("expected anonymous, got %d", id)
		}
	})

	t.Run("empty secret disables identity", func(t *testing.T) {
		c, _ := newContext(http.MethodGet, "/reg/")
		c.Request().Header.Set("Authorization", "Bearer "+valid)
		if id := runUserAuth(t, c, ""); id != 0 {
			t.Errorf("expected anonymous, got %d", id)
		}
	})
}
