package jwtx

import (
	"errors"

	jwtutil "bagrental/util/jwt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ContextKey is where echo-jwt stores the parsed token.
const ContextKey = "user"

var ErrNoToken = errors.New("no jwt token in context")

func Claims(c echo.Context) (*jwtutil.Claims, error) {
	tok, ok := c.Get(ContextKey).(*jwt.Token)
	if !ok || tok == nil {
		return nil, ErrNoToken
	}
	claims, ok := tok.Claims.(*jwtutil.Claims)
	if !ok {
		return nil, errors.New("invalid jwt claims")
	}
	return claims, nil
}

// Set stores claims the same way echo-jwt does; used by optional auth and tests.
func Set(c echo.Context, claims *jwtutil.Claims) {
	c.Set(ContextKey, &jwt.Token{Claims: claims, Valid: true})
}

func UserIDFromContext(c echo.Context) (uuid.UUID, error) {
	claims, err := Claims(c)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, errors.New("sub missing in claims")
	}
	return id, nil
}

func EmailFromContext(c echo.Context) (string, error) {
	claims, err := Claims(c)
	if err != nil {
		return "", err
	}
	if claims.Email == "" {
		return "", errors.New("email missing in claims")
	}
	return claims.Email, nil
}
