package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coursehub/auth-service/internal/events"
	"github.com/coursehub/auth-service/internal/geo"
	"github.com/coursehub/auth-service/internal/hash"
	"github.com/coursehub/auth-service/internal/logging"
	"github.com/coursehub/auth-service/internal/mail"
	"github.com/coursehub/auth-service/internal/models"
	"github.com/coursehub/auth-service/internal/repo"
	"github.com/coursehub/auth-service/internal/tokens"
)

var (
	ErrValidation         = errors.New("missing required fields")
	ErrConflict           = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("invalid or missing session token")
	ErrNotFound           = errors.New("account not found")
	// ErrInvalidResetToken coalesces every reset rejection cause: expiry,
	// signature, prior consumption. Callers must not learn which one fired.
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
	ErrMailDelivery      = errors.New("reset email delivery failed")
)

type AuthService struct {
	Repo     *repo.GormRepo
	Secret   []byte
	Locator  geo.Locator
	Mailer   mail.Mailer
	Producer *events.Producer
}

type SignupInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      string
}

type LoginResult struct {
	Token     string
	UserID    string
	Package   string
	Location  models.Location
	ExpiresAt time.Time
}

type InstructorLoginResult struct {
	Token        string
	InstructorID string
	ExpiresAt    time.Time
}

func (s *AuthService) Signup(ctx context.Context, r *http.Request, in SignupInput) (models.Location, error) {
	l := logging.FromContext(ctx).With("svc", "auth.signup")

	if in.FirstName == "" || in.LastName == "" || in.Email == "" || in.Password == "" {
		return models.Location{}, ErrValidation
	}

	if _, err := s.Repo.FindUserByEmail(ctx, in.Email); err == nil {
		return models.Location{}, ErrConflict
	} else if !errors.Is(err, repo.ErrNotFound) {
		l.Error("signup_failed", "reason", "lookup error", "error", err)
		return models.Location{}, err
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		l.Error("signup_failed", "reason", "cannot hash password", "error", err)
		return models.Location{}, err
	}

	role := in.Role
	if role == "" {
		role = "user"
	}

	loc := s.Locator.Locate(ctx, r)
	user := models.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: pwHash,
		Role:         role,
		City:         loc.City,
		State:        loc.State,
		Country:      loc.Country,
	}

	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return models.Location{}, ErrConflict
		}
		l.Error("signup_failed", "reason", "create error", "error", err)
		return models.Location{}, err
	}

	s.publish(ctx, events.TypeUserRegistered, user.ID, map[string]any{"email": user.Email})
	l.Info("signup_successful", "user_id", user.ID)

	return loc, nil
}

func (s *AuthService) Login(ctx context.Context, r *http.Request, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	// Location is only derived when it was never determined; a later
	// /update-location always rewrites it.
	if user.Location().Undetermined() {
		loc := s.Locator.Locate(ctx, r)
		if err := s.Repo.SaveUserLocation(ctx, user.ID, loc); err != nil {
			return nil, err
		}
		user.City, user.State, user.Country = loc.City, loc.State, loc.Country
	}

	token, err := tokens.Issue(tokens.KindUser, user.ID, tokens.SessionTTL, s.Secret)
	if err != nil {
		l.Error("login_failed", "reason", "cannot sign token", "error", err)
		return nil, err
	}

	l.Info("login_successful", "user_id", user.ID)
	return &LoginResult{
		Token:     token,
		UserID:    user.ID,
		Package:   user.Package,
		Location:  user.Location(),
		ExpiresAt: time.Now().Add(tokens.SessionTTL),
	}, nil
}

func (s *AuthService) InstructorLogin(ctx context.Context, email, password string) (*InstructorLoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.instructor_login")

	instructor, err := s.Repo.FindInstructorByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !hash.CheckPassword(instructor.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	token, err := tokens.Issue(tokens.KindInstructor, instructor.ID, tokens.SessionTTL, s.Secret)
	if err != nil {
		l.Error("instructor_login_failed", "reason", "cannot sign token", "error", err)
		return nil, err
	}

	l.Info("instructor_login_successful", "instructor_id", instructor.ID)
	return &InstructorLoginResult{
		Token:        token,
		InstructorID: instructor.ID,
		ExpiresAt:    time.Now().Add(tokens.SessionTTL),
	}, nil
}

// Authenticate resolves a raw end-user session token to its account.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	userID, err := tokens.Validate(token, tokens.KindUser, s.Secret)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	user, err := s.Repo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// RefreshLocation re-derives and persists the location unconditionally,
// unlike login's fill-in-when-unknown behavior.
func (s *AuthService) RefreshLocation(ctx context.Context, r *http.Request, token string) (models.Location, error) {
	user, err := s.Authenticate(ctx, token)
	if err != nil {
		return models.Location{}, err
	}

	loc := s.Locator.Locate(ctx, r)
	if err := s.Repo.SaveUserLocation(ctx, user.ID, loc); err != nil {
		return models.Location{}, err
	}
	return loc, nil
}

func (s *AuthService) RequestPasswordReset(ctx context.Context, email, language string) error {
	l := logging.FromContext(ctx).With("svc", "auth.forgot_password")

	user, err := s.Repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			// Unknown emails still look successful to the caller.
			l.Info("reset_requested_unknown_email")
			return nil
		}
		return err
	}

	token, err := tokens.Issue(tokens.KindUser, user.ID, tokens.ResetTTL, s.Secret)
	if err != nil {
		return err
	}

	// Persist before any email goes out: a stored token the user never
	// received is harmless, a delivered token that was never stored is not.
	expiresAt := time.Now().Add(tokens.ResetTTL)
	if err := s.Repo.SetResetToken(ctx, user.ID, token, expiresAt); err != nil {
		return err
	}

	if err := s.Mailer.SendPasswordReset(user.Email, user.FirstName, token, language); err != nil {
		l.Error("reset_email_failed", "user_id", user.ID, "error", err)
		return fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}

	s.publish(ctx, events.TypePasswordReset, user.ID, map[string]any{"stage": "requested"})
	l.Info("reset_email_sent", "user_id", user.ID)
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	l := logging.FromContext(ctx).With("svc", "auth.reset_password")

	if token == "" || newPassword == "" {
		return ErrValidation
	}

	userID, err := tokens.Validate(token, tokens.KindUser, s.Secret)
	if err != nil {
		return ErrInvalidResetToken
	}

	pwHash, err := hash.HashPassword(newPassword)
	if err != nil {
		return err
	}

	// Both the embedded expiry (checked above) and the stored expiry must
	// hold, and the stored token must still equal this exact string: a
	// consumed or superseded token fails here even while cryptographically
	// valid.
	ok, err := s.Repo.ConsumeResetToken(ctx, userID, token, pwHash, time.Now())
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidResetToken
	}

	s.publish(ctx, events.TypePasswordReset, userID, map[string]any{"stage": "completed"})
	l.Info("password_reset", "user_id", userID)
	return nil
}

func (s *AuthService) publish(ctx context.Context, eventType, key string, payload map[string]any) {
	if err := s.Producer.Publish(ctx, eventType, key, payload); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "type", eventType, "error", err)
	}
}
