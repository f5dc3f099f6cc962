package middleware

import (
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// UserTokenCookie carries the storefront identity when no Authorization
// header is sent.
const UserTokenCookie = "prodreg_token"

const userIDKey = "user_id"

// UserAuth reads an HS256 JWT from the Authorization header or the
// UserTokenCookie and stores its subject as the storefront user id. A
// missing or bad token leaves the request anonymous.
func UserAuth(secret string) echo.MiddlewareFunc {
	key := []byte(secret)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c)
			if raw == "" || len(key) == 0 {
				return next(c)
			}

			id, err := parseUserToken(raw, key)
			if err != nil {
				log.Printf("user token rejected: %v", err)
				return next(c)
			}

			c.Set(userIDKey, id)
			return next(c)
		}
	}
}

// UserID returns the authenticated storefront user, or 0.
func UserID(c echo.Context) int64 {
	id, _ := c.Get(userIDKey).(int64)
	return id
}

// IssueUserToken signs a token for userID. The storefront that owns the
// customer accounts uses it to hand identities to this server.
func IssueUserToken(secret string, userID int64, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func bearerToken(c echo.Context) string {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); h != "" {
		if after, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(after)
		}
	}
	if cookie, err := c.Cookie(UserTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

func parseUserToken(raw string, key []byte) (int64, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return 0, err
	}
	if claims.ExpiresAt == nil {
		return 0, errors.New("token has no expiry")
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("token subject is not a user id")
	}
	return id, nil
}
