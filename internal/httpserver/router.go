package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Deps struct {
	AuthHandler *AuthHTTP
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	e.POST("/signup", d.AuthHandler.Signup)
	e.POST("/login", d.AuthHandler.Login)
	e.POST("/instructor-login", d.AuthHandler.InstructorLogin)
	e.PUT("/update-location", d.AuthHandler.UpdateLocation)
	e.POST("/forgot-password", d.AuthHandler.ForgotPassword)
	e.POST("/reset-password", d.AuthHandler.ResetPassword)
	e.GET("/me", d.AuthHandler.Me)
}
