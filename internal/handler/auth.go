package handler

import (
	"context"
	"errors"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/history-museum/internal/middleware"
	"github.com/iliyamo/history-museum/internal/model"
	"github.com/iliyamo/history-museum/internal/service"
	"github.com/iliyamo/history-museum/internal/session"
	"github.com/iliyamo/history-museum/internal/utils"
)

// Localized messages shown by the sign-in, sign-up and profile forms.
const (
	msgEmailExists        = "Пользователь с таким email уже существует"
	msgInvalidCredentials = "Неверный email или пароль"
	msgUserNotFound       = "Пользователь не найден"
	msgEmailTaken         = "Этот email уже используется"
	msgPasswordMismatch   = "Пароли не совпадают"
	msgPasswordTooShort   = "Пароль должен содержать минимум 6 символов"
	msgPasswordTooLong    = "Пароль слишком длинный"
	msgRequiredFields     = "Заполните все обязательные поля"
	msgInvalidBody        = "Некорректный запрос"
	msgInternal           = "Внутренняя ошибка сервера"
)

// AuthHandler bundles dependencies for auth and profile endpoints.
type AuthHandler struct {
	Accounts     *service.Accounts
	SecureCookie bool
	Now          func() time.Time
}

func NewAuthHandler(accounts *service.Accounts, secureCookie bool) *AuthHandler {
	return &AuthHandler{Accounts: accounts, SecureCookie: secureCookie}
}

// ----- DTOs -----

type signUpReq struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Patronymic      string `json:"patronymic"`
}

type signInReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profileReq struct {
	Email      *string `json:"email"`
	FirstName  *string `json:"firstName"`
	LastName   *string `json:"lastName"`
	Patronymic *string `json:"patronymic"`
}

// AuthResult is the body of every auth and profile response.
type AuthResult struct {
	Success bool              `json:"success"`
	Error   string            `json:"error,omitempty"`
	User    *model.PublicUser `json:"user,omitempty"`
}

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, AuthResult{Success: false, Error: msg})
}

func succeed(c echo.Context, status int, u model.User) error {
	pu := u.Public()
	return c.JSON(status, AuthResult{Success: true, User: &pu})
}

// SignUp creates an account and signs the visitor in.
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req signUpReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, msgInvalidBody)
	}
	// confirmPassword is optional; when sent it must match.
	if req.ConfirmPassword != "" && req.ConfirmPassword != req.Password {
		return fail(c, http.StatusBadRequest, msgPasswordMismatch)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, tok, err := h.Accounts.SignUp(ctx, service.SignUpInput{
		Email:      req.Email,
		Password:   req.Password,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Patronymic: req.Patronymic,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateEmail):
			return fail(c, http.StatusConflict, msgEmailExists)
		case errors.Is(err, service.ErrInvalidInput):
			// Pick the message the form would show for the first failed rule.
			switch {
			case req.Email == "" || req.FirstName == "" || req.LastName == "" || req.Password == "":
				return fail(c, http.StatusBadRequest, msgRequiredFields)
			case utf8.RuneCountInString(req.Password) < utils.MinPasswordLength:
				return fail(c, http.StatusBadRequest, msgPasswordTooShort)
			case len(req.Password) > utils.MaxPasswordBytes:
				return fail(c, http.StatusBadRequest, msgPasswordTooLong)
			}
			return fail(c, http.StatusBadRequest, msgRequiredFields)
		}
		// Anything else is a store or codec failure.
		c.Logger().Errorf("signup: %v", err)
		return fail(c, http.StatusInternalServerError, msgInternal)
	}
	// New accounts are signed in straight away.
	c.SetCookie(session.NewCookie(tok, h.SecureCookie, h.now()))
	return succeed(c, http.StatusCreated, u)
}

// SignIn verifies the credentials and sets the session cookie.
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req signInReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, msgInvalidBody)
	}
	if req.Email == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, msgRequiredFields)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, tok, err := h.Accounts.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		// Unknown email and wrong password share one message.
		if errors.Is(err, service.ErrInvalidCredentials) {
			return fail(c, http.StatusUnauthorized, msgInvalidCredentials)
		}
		c.Logger().Errorf("signin: %v", err)
		return fail(c, http.StatusInternalServerError, msgInternal)
	}
	c.SetCookie(session.NewCookie(tok, h.SecureCookie, h.now()))
	return succeed(c, http.StatusOK, u)
}

// SignOut revokes the presented token and always clears the cookie.
func (h *AuthHandler) SignOut(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// A failed revocation is logged only; the visitor is signed out locally
	// either way.
	if err := h.Accounts.SignOut(ctx, session.FromRequest(c.Request())); err != nil {
		c.Logger().Warnf("signout: %v", err)
	}
	c.SetCookie(session.ClearCookie(h.SecureCookie))
	return c.NoContent(http.StatusNoContent)
}

// Me returns the signed-in user.  RequireUser guards the route.
func (h *AuthHandler) Me(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, middleware.MsgUnauthenticated)
	}
	return succeed(c, http.StatusOK, u)
}

// UpdateProfile applies a partial profile update.  Absent JSON fields keep
// their stored values.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	var req profileReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, msgInvalidBody)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Accounts.UpdateProfile(ctx, middleware.SessionToken(c), service.ProfilePatch{
		Email:      req.Email,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Patronymic: req.Patronymic,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthenticated):
			// The session was valid but its user has since disappeared.
			if _, ok := middleware.CurrentUser(c); ok {
				return fail(c, http.StatusUnauthorized, msgUserNotFound)
			}
			return fail(c, http.StatusUnauthorized, middleware.MsgUnauthenticated)
		case errors.Is(err, service.ErrEmailTaken):
			return fail(c, http.StatusConflict, msgEmailTaken)
		case errors.Is(err, service.ErrInvalidInput):
			return fail(c, http.StatusBadRequest, msgRequiredFields)
		}
		c.Logger().Errorf("update profile: %v", err)
		return fail(c, http.StatusInternalServerError, msgInternal)
	}
	return succeed(c, http.StatusOK, u)
}

func (h *AuthHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}
