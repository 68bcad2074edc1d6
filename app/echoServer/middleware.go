package echoServer

import (
	"context"
	"net/http"
	"strings"
	"time"

	"bagrental/app/echoServer/controller/webhook"
	"bagrental/app/echoServer/jwtx"
	jwtutil "bagrental/util/jwt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func RegisterMiddlewares(e *echo.Echo, log *zap.Logger, corsOrigins []string) {

	e.Use(middleware.Recover())

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: corsOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization, webhook.TokenHeader},
	}))

	e.Use(RequestLogger(log))
}

func RequestLogger(log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			log.Info("http",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Int("status", c.Response().Status),
				zap.Int64("latency_ms", time.Since(start).Milliseconds()),
				zap.String("req_id", rid),
				zap.String("ip", c.RealIP()),
			)
			return nil
		}
	}
}

// JWTAuth validates the bearer token and stores *jwtutil.Claims under jwtx.ContextKey.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(secret),
		SigningMethod: "HS256",
		ContextKey:    jwtx.ContextKey,
		NewClaimsFunc: func(c echo.Context) jwt.Claims { return &jwtutil.Claims{} },
		TokenLookup:   "header:Authorization:Bearer ",
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
		},
	})
}

// OptionalAuth attaches claims when a valid token is present and never rejects.
func OptionalAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if h := c.Request().Header.Get(echo.HeaderAuthorization); h != "" {
				if claims, err := jwtutil.ParseAuth(h, secret); err == nil {
					jwtx.Set(c, claims)
				}
			}
			return next(c)
		}
	}
}

// AdminChecker reports whether the user's profile carries the admin role.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
}

// RequireAdmin trusts only the server side: the profile role or the ADMIN_EMAILS list.
// The role claim in the token is ignored.
func RequireAdmin(checker AdminChecker, adminEmails []string, log *zap.Logger) echo.MiddlewareFunc {
	allow := map[string]struct{}{}
	for _, e := range adminEmails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			allow[e] = struct{}{}
		}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := jwtx.Claims(c)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			if _, ok := allow[strings.ToLower(claims.Email)]; ok {
				return next(c)
			}
			uid, err := uuid.Parse(claims.Subject)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			ok, err := checker.IsAdmin(c.Request().Context(), uid)
			if err != nil {
				log.Error("admin check failed", zap.Error(err))
				return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
			}
			if !ok {
				return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
			}
			return next(c)
		}
	}
}

// RateLimit caps public write endpoints per client IP.
func RateLimit(perMinute int) echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(float64(perMinute) / 60),
			Burst:     perMinute,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) { return c.RealIP(), nil },
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return c.JSON(http.StatusTooManyRequests, echo.Map{"message": "too many requests"})
		},
	})
}
