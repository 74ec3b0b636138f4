package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/coursehub/auth-service/internal/hash"
	"github.com/coursehub/auth-service/internal/models"
	"github.com/coursehub/auth-service/internal/repo"
	"github.com/coursehub/auth-service/internal/service"
	"github.com/coursehub/auth-service/internal/tokens"
)

type fakeLocator struct {
	loc   models.Location
	calls int
}

func (f *fakeLocator) Locate(ctx context.Context, r *http.Request) models.Location {
	f.calls++
	return f.loc
}

type fakeMailer struct {
	token string
	calls int
}

func (f *fakeMailer) SendPasswordReset(to, firstName, token, language string) error {
	f.calls++
	f.token = token
	return nil
}

type testEnv struct {
	T       *testing.T
	E       *echo.Echo
	H       *AuthHTTP
	DB      *gorm.DB
	Locator *fakeLocator
	Mailer  *fakeMailer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Instructor{}))

	locator := &fakeLocator{loc: models.Location{City: "Berlin", State: "BE", Country: "Germany"}}
	mailer := &fakeMailer{}

	env := &testEnv{
		T:  t,
		E:  echo.New(),
		DB: db,
		H: &AuthHTTP{
			Svc: &service.AuthService{
				Repo:    &repo.GormRepo{DB: db},
				Secret:  []byte("test-jwt-secret"),
				Locator: locator,
				Mailer:  mailer,
			},
		},
		Locator: locator,
		Mailer:  mailer,
	}
	Register(env.E, &Deps{AuthHandler: env.H})
	return env
}

func (env *testEnv) doJSON(method, path string, body any, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, m := range mutate {
		m(req)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) signup(email string) {
	rec := env.doJSON(http.MethodPost, "/signup", map[string]string{
		"firstName": "A",
		"lastName":  "B",
		"email":     email,
		"password":  "secret1",
	})
	require.Equal(env.T, http.StatusCreated, rec.Code)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func sessionCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func TestSignup_CreatedThenConflict(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(http.MethodPost, "/signup", map[string]string{
		"firstName": "A", "lastName": "B", "email": "a@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "User registered successfully.", body["message"])
	loc, ok := body["location"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Berlin", loc["city"])

	rec = env.doJSON(http.MethodPost, "/signup", map[string]string{
		"firstName": "Other", "lastName": "Name", "email": "a@x.com", "password": "different",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Email already registered.", decodeBody(t, rec)["message"])
}

func TestSignup_MissingFields(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(http.MethodPost, "/signup", map[string]string{
		"firstName": "A", "email": "a@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "All fields are required.", decodeBody(t, rec)["message"])
}

func TestLogin_SetsCookieAndReturnsToken(t *testing.T) {
	env := newTestEnv(t)
	env.signup("a@x.com")

	rec := env.doJSON(http.MethodPost, "/login", map[string]string{
		"email": "a@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "Login successful", body["message"])
	assert.NotEmpty(t, body["token"])
	assert.NotEmpty(t, body["userId"])
	loc, ok := body["location"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Berlin", loc["city"])

	ck := sessionCookie(rec, UserCookie)
	require.NotNil(t, ck)
	assert.Equal(t, body["token"], ck.Value)
	assert.True(t, ck.HttpOnly)
	assert.False(t, ck.Secure)
	assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)
}

func TestLogin_InvalidCredentials_IdenticalBodies(t *testing.T) {
	env := newTestEnv(t)
	env.signup("a@x.com")

	wrongPassword := env.doJSON(http.MethodPost, "/login", map[string]string{
		"email": "a@x.com", "password": "wrong",
	})
	unknownEmail := env.doJSON(http.MethodPost, "/login", map[string]string{
		"email": "nobody@x.com", "password": "secret1",
	})

	require.Equal(t, http.StatusBadRequest, wrongPassword.Code)
	require.Equal(t, http.StatusBadRequest, unknownEmail.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestProductionCookieAttributes(t *testing.T) {
	env := newTestEnv(t)
	env.H.Production = true
	env.signup("a@x.com")

	rec := env.doJSON(http.MethodPost, "/login", map[string]string{
		"email": "a@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	ck := sessionCookie(rec, UserCookie)
	require.NotNil(t, ck)
	assert.True(t, ck.Secure)
	assert.Equal(t, http.SameSiteNoneMode, ck.SameSite)
}

func TestMe_CookieAndBearerAgree(t *testing.T) {
	env := newTestEnv(t)
	env.signup("a@x.com")

	login := env.doJSON(http.MethodPost, "/login", map[string]string{
		"email": "a@x.com", "password": "secret1",
	})
	token := decodeBody(t, login)["token"].(string)

	viaCookie := env.doJSON(http.MethodGet, "/me", nil, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: UserCookie, Value: token})
	})
	viaHeader := env.doJSON(http.MethodGet, "/me", nil, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	})

	require.Equal(t, http.StatusOK, viaCookie.Code)
	require.Equal(t, http.StatusOK, viaHeader.Code)
	assert.Equal(t, viaCookie.Body.String(), viaHeader.Body.String())

	body := decodeBody(t, viaCookie)
	assert.Equal(t, "a@x.com", body["email"])
	assert.Equal(t, "A", body["firstName"])
	assert.Equal(t, "user", body["role"])
	_, leaked := body["passwordHash"]
	assert.False(t, leaked)
}

func TestMe_Unauthenticated(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(http.MethodGet, "/me", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "No token", decodeBody(t, rec)["error"])

	rec = env.doJSON(http.MethodGet, "/me", nil, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer not-a-token")
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid token", decodeBody(t, rec)["error"])
}

func TestMe_InstructorTokenRejected(t *testing.T) {
	env := newTestEnv(t)

	token, err := tokens.Issue(tokens.KindInstructor, "i-1", tokens.SessionTTL, env.H.Svc.Secret)
	require.NoError(t, err)

	rec := env.doJSON(http.MethodGet, "/me", nil, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateLocation_AlwaysRewrites(t *testing.T) {
	env := newTestEnv(t)
	env.signup("a@x.com")

	login := env.doJSON(http.MethodPost, "/login", map[string]string{
		"email": "a@x.com", "password": "secret1",
	})
	token := decodeBody(t, login)["token"].(string)

	env.Locator.loc = models.Location{City: "Paris", State: "IDF", Country: "France"}
	rec := env.doJSON(http.MethodPut, "/update-location", nil, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: UserCookie, Value: token})
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	loc := body["location"].(map[string]any)
	assert.Equal(t, "Paris", loc["city"])

	var user models.User
	require.NoError(t, env.DB.Where("email = ?", "a@x.com").First(&user).Error)
	assert.Equal(t, "Paris", user.City)
}

func TestUpdateLocation_UserGone(t *testing.T) {
	env := newTestEnv(t)

	token, err := tokens.Issue(tokens.KindUser, "vanished", tokens.SessionTTL, env.H.Svc.Secret)
	require.NoError(t, err)

	rec := env.doJSON(http.MethodPut, "/update-location", nil, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: UserCookie, Value: token})
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", decodeBody(t, rec)["error"])
}

func TestInstructorLogin_SetsOwnCookie(t *testing.T) {
	env := newTestEnv(t)

	pwHash, err := hash.HashPassword("secret1")
	require.NoError(t, err)
	require.NoError(t, env.DB.Create(&models.Instructor{
		ID: "i-1", FirstName: "C", LastName: "D", Email: "teach@x.com", PasswordHash: pwHash,
	}).Error)

	rec := env.doJSON(http.MethodPost, "/instructor-login", map[string]string{
		"email": "teach@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "Instructor login successful", body["message"])
	assert.Equal(t, true, body["isInstructor"])
	assert.Equal(t, "i-1", body["instructorId"])

	require.NotNil(t, sessionCookie(rec, InstructorCookie))
	assert.Nil(t, sessionCookie(rec, UserCookie))
}

func TestForgotPassword_UnknownEmailStillOK(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(http.MethodPost, "/forgot-password", map[string]string{
		"email": "nobody@x.com",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "If that email exists, a reset link has been sent.", decodeBody(t, rec)["message"])
	assert.Zero(t, env.Mailer.calls)
}

func TestForgotPassword_MissingEmail(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(http.MethodPost, "/forgot-password", map[string]string{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email is required.", decodeBody(t, rec)["message"])
}

func TestResetPassword_FullFlow(t *testing.T) {
	env := newTestEnv(t)
	env.signup("a@x.com")

	rec := env.doJSON(http.MethodPost, "/forgot-password", map[string]string{"email": "a@x.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, env.Mailer.calls)
	resetToken := env.Mailer.token

	rec = env.doJSON(http.MethodPost, "/reset-password", map[string]string{
		"token": resetToken, "newPassword": "newsecret",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Password has been reset successfully.", decodeBody(t, rec)["message"])

	oldLogin := env.doJSON(http.MethodPost, "/login", map[string]string{
		"email": "a@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusBadRequest, oldLogin.Code)

	newLogin := env.doJSON(http.MethodPost, "/login", map[string]string{
		"email": "a@x.com", "password": "newsecret",
	})
	require.Equal(t, http.StatusOK, newLogin.Code)

	// Spent tokens keep failing with the coalesced message.
	rec = env.doJSON(http.MethodPost, "/reset-password", map[string]string{
		"token": resetToken, "newPassword": "another",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid or expired token.", decodeBody(t, rec)["message"])
}

func TestResetPassword_MissingFields(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(http.MethodPost, "/reset-password", map[string]string{"token": "x"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Token and new password are required.", decodeBody(t, rec)["message"])
}
