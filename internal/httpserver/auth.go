package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/coursehub/auth-service/internal/logging"
	"github.com/coursehub/auth-service/internal/service"
	"github.com/coursehub/auth-service/internal/session"
)

type AuthHTTP struct {
	Svc        *service.AuthService
	Production bool
}

func (h *AuthHTTP) Signup(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "signup")

	var req struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		Role      string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("signup_error", "status", 400, "error", err)
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "All fields are required."})
	}

	loc, err := h.Svc.Signup(ctx, c.Request(), service.SignupInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "All fields are required."})
		case errors.Is(err, service.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"message": "Email already registered."})
		default:
			l.Error("signup_error", "status", 500, "error", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error."})
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message":  "User registered successfully.",
		"location": loc,
	})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "login")

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid credentials"})
	}

	res, err := h.Svc.Login(ctx, c.Request(), req.Email, req.Password)
	if err != nil {
		// Unknown email and wrong password answer identically.
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid credentials"})
		}
		l.Error("login_error", "status", 500, "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}

	c.SetCookie(SessionCookie(UserCookie, res.Token, res.ExpiresAt, h.Production))
	return c.JSON(http.StatusOK, echo.Map{
		"message":  "Login successful",
		"package":  res.Package,
		"userId":   res.UserID,
		"token":    res.Token,
		"location": res.Location,
	})
}

func (h *AuthHTTP) InstructorLogin(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "instructor_login")

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("instructor_login_error", "status", 400, "error", err)
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid credentials"})
	}

	res, err := h.Svc.InstructorLogin(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid credentials"})
		}
		l.Error("instructor_login_error", "status", 500, "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}

	c.SetCookie(SessionCookie(InstructorCookie, res.Token, res.ExpiresAt, h.Production))
	return c.JSON(http.StatusOK, echo.Map{
		"message":      "Instructor login successful",
		"isInstructor": true,
		"instructorId": res.InstructorID,
		"token":        res.Token,
	})
}

func (h *AuthHTTP) UpdateLocation(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "update_location")

	token, ok := session.FromRequest(c.Request(), UserCookie)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "No token"})
	}

	loc, err := h.Svc.RefreshLocation(ctx, c.Request(), token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthenticated):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid token"})
		case errors.Is(err, service.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
		default:
			l.Error("update_location_error", "status", 500, "error", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error updating location"})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"message":  "Location updated successfully",
		"location": loc,
	})
}

func (h *AuthHTTP) ForgotPassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "forgot_password")

	var req struct {
		Email    string `json:"email"`
		Language string `json:"language"`
	}
	if err := c.Bind(&req); err != nil || req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Email is required."})
	}

	if err := h.Svc.RequestPasswordReset(ctx, req.Email, req.Language); err != nil {
		if errors.Is(err, service.ErrMailDelivery) {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error sending reset email."})
		}
		l.Error("forgot_password_error", "status", 500, "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error."})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "If that email exists, a reset link has been sent."})
}

func (h *AuthHTTP) ResetPassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "reset_password")

	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.Bind(&req); err != nil || req.Token == "" || req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Token and new password are required."})
	}

	if err := h.Svc.ResetPassword(ctx, req.Token, req.NewPassword); err != nil {
		if !errors.Is(err, service.ErrInvalidResetToken) {
			l.Error("reset_password_error", "error", err)
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid or expired token."})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Password has been reset successfully."})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()

	token, ok := session.FromRequest(c.Request(), UserCookie)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "No token"})
	}

	user, err := h.Svc.Authenticate(ctx, token)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
		}
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid token"})
	}

	courses := user.Courses
	if courses == nil {
		courses = []string{}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"email":     user.Email,
		"package":   user.Package,
		"courses":   courses,
		"firstName": user.FirstName,
		"lastName":  user.LastName,
		"role":      user.Role,
	})
}
