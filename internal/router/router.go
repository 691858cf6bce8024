package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"accountsvc/internal/config"
	"accountsvc/internal/handler"
	authmw "accountsvc/internal/middleware"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Public routes
	e.POST("/users", authHandler.Register)
	e.POST("/login", authHandler.Login)

	// Secured routes (require JWT authentication)
	secured := e.Group("", authmw.Authenticate(cfg.JWTSecret))

	secured.GET("/users", userHandler.List, authmw.RequireAdmin)
	secured.GET("/users/profile", userHandler.Profile)
	secured.PATCH("/users/:id", userHandler.Update, authmw.RequireSelfOrAdmin)
	secured.DELETE("/users/:id", userHandler.Delete, authmw.RequireSelfOrAdmin)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
