package middleware

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"accountsvc/internal/auth"
	apperrors "accountsvc/internal/errors"
)

// Authenticate validates the Bearer token and attaches the parsed claims
// to the request context. A missing Authorization header and a bad token
// are reported separately, both as 401.
func Authenticate(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(secret),
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if c.Request().Header.Get(echo.HeaderAuthorization) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
					Message: "missing authorization header",
					Code:    "MISSING_AUTHORIZATION",
				})
			}
			return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
				Message: "invalid token",
				Code:    "INVALID_TOKEN",
			})
		},
	})
}

// ClaimsFrom extracts the authenticated claims set by Authenticate.
func ClaimsFrom(c echo.Context) (*auth.Claims, bool) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil, false
	}
	claims, ok := token.Claims.(*auth.Claims)
	return claims, ok
}

// RequireAdmin halts the request with 403 unless the caller is an admin.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := ClaimsFrom(c)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
				Message: "invalid token",
				Code:    "INVALID_TOKEN",
			})
		}
		if !claims.IsAdmin {
			return echo.NewHTTPError(http.StatusForbidden, apperrors.ErrorResponse{
				Message: "admin access required",
				Code:    "FORBIDDEN",
			})
		}
		return next(c)
	}
}

// RequireSelfOrAdmin halts the request with 403 unless the caller is an
// admin or the :id path parameter matches the caller's own identifier.
func RequireSelfOrAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := ClaimsFrom(c)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
				Message: "invalid token",
				Code:    "INVALID_TOKEN",
			})
		}

		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
				Message: "invalid user ID",
				Code:    "INVALID_UUID",
			})
		}

		if !claims.IsAdmin && claims.UserID != id {
			return echo.NewHTTPError(http.StatusForbidden, apperrors.ErrorResponse{
				Message: "not the record owner",
				Code:    "FORBIDDEN",
			})
		}
		return next(c)
	}
}
