package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/history-museum/internal/catalog"
	"github.com/iliyamo/history-museum/internal/handler"
	"github.com/iliyamo/history-museum/internal/queue"
	"github.com/iliyamo/history-museum/internal/repository"
	"github.com/iliyamo/history-museum/internal/service"
	"github.com/iliyamo/history-museum/internal/session"
)

func newServer(t *testing.T, codec session.Codec) *echo.Echo {
	t.Helper()
	cat, err := catalog.Load("")
	require.NoError(t, err)
	store := repository.NewMemoryStore()
	require.NoError(t, repository.SeedDemo(context.Background(), store, bcrypt.MinCost))
	accounts := service.NewAccounts(store, codec, queue.NopPublisher{}, bcrypt.MinCost)

	e := echo.New()
	RegisterRoutes(e, Deps{
		Accounts:  accounts,
		Public:    &handler.PublicHandler{Catalog: cat, Accounts: accounts},
		Auth:      handler.NewAuthHandler(accounts, false),
		Favorites: &handler.FavoritesHandler{Accounts: accounts},
	})
	return e
}

func jwtCodec() session.Codec {
	return session.NewJWTCodec("test-secret", time.Hour, session.NewMemoryRevocations())
}

// client keeps the auth_token cookie between requests like a browser.
type client struct {
	t     *testing.T
	e     *echo.Echo
	token string
}

func (c *client) do(method, path, body string) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if c.token != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: c.token})
	}
	rec := httptest.NewRecorder()
	c.e.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == session.CookieName {
			c.token = ck.Value
			if ck.MaxAge < 0 {
				c.token = ""
			}
		}
	}
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), rec.Body.String())
	return m
}

func items(t *testing.T, rec *httptest.ResponseRecorder) []any {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	list, ok := decode(t, rec)["items"].([]any)
	require.True(t, ok)
	return list
}

func TestHealthAndMetrics(t *testing.T) {
	c := &client{t: t, e: newServer(t, jwtCodec())}

	rec := c.do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	c.do(http.MethodGet, "/v1/halls", "")
	rec = c.do(http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "museum_catalog_requests_total")
}

func TestCatalogRoutes(t *testing.T) {
	c := &client{t: t, e: newServer(t, jwtCodec())}

	halls := items(t, c.do(http.MethodGet, "/v1/halls", ""))
	require.Len(t, halls, 7)
	first := halls[0].(map[string]any)
	assert.Equal(t, "kievan-rus", first["id"])
	assert.EqualValues(t, 3, first["exhibitsCount"])

	rec := c.do(http.MethodGet, "/v1/halls/kievan-rus", "")
	require.Equal(t, http.StatusOK, rec.Code)
	hall := decode(t, rec)
	assert.Equal(t, "kievan-rus", hall["id"])
	assert.Equal(t, false, hall["isFavorite"])
	assert.EqualValues(t, 15, hall["visitMinutes"])
	assert.Len(t, hall["otherHalls"], 6)

	rec = c.do(http.MethodGet, "/v1/halls/atlantis", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Зал не найден", decode(t, rec)["error"])

	assert.Len(t, items(t, c.do(http.MethodGet, "/v1/halls/kievan-rus/exhibits", "")), 3)
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/v1/halls/atlantis/exhibits", "").Code)

	assert.Len(t, items(t, c.do(http.MethodGet, "/v1/exhibits", "")), 17)
	assert.Len(t, items(t, c.do(http.MethodGet, "/v1/developers", "")), 3)

	rec = c.do(http.MethodGet, "/v1/exhibits/civil-war", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1917-1922", decode(t, rec)["dateLabel"])
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/v1/exhibits/unknown", "").Code)
}

func TestHallExhibitNavigation(t *testing.T) {
	c := &client{t: t, e: newServer(t, jwtCodec())}

	rec := c.do(http.MethodGet, "/v1/halls/kievan-rus/exhibits/baptism-of-rus", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "baptism-of-rus", body["exhibit"].(map[string]any)["id"])
	assert.Equal(t, "988", body["exhibit"].(map[string]any)["dateLabel"])
	assert.Equal(t, "kievan-rus", body["hall"].(map[string]any)["id"])
	assert.Equal(t, "calling-of-varangians", body["prev"].(map[string]any)["id"])
	assert.Equal(t, "russkaya-pravda", body["next"].(map[string]any)["id"])

	body = decode(t, c.do(http.MethodGet, "/v1/halls/kievan-rus/exhibits/calling-of-varangians", ""))
	assert.Nil(t, body["prev"])

	// An exhibit reached through the wrong hall does not exist.
	rec = c.do(http.MethodGet, "/v1/halls/tsardom/exhibits/baptism-of-rus", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Экспонат не найден", decode(t, rec)["error"])
}

func TestTimelineIsSortedByStartDate(t *testing.T) {
	c := &client{t: t, e: newServer(t, jwtCodec())}

	list := items(t, c.do(http.MethodGet, "/v1/timeline", ""))
	require.Len(t, list, 17)
	prev := -1.0
	for _, it := range list {
		ex := it.(map[string]any)
		start := ex["startDate"].(float64)
		assert.GreaterOrEqual(t, start, prev)
		assert.NotEmpty(t, ex["dateLabel"])
		prev = start
	}
	assert.Equal(t, "calling-of-varangians", list[0].(map[string]any)["id"])
}

func TestDemoScenarioOverHTTP(t *testing.T) {
	for name, codec := range map[string]session.Codec{"mock": session.MockCodec{}, "jwt": jwtCodec()} {
		t.Run(name, func(t *testing.T) {
			c := &client{t: t, e: newServer(t, codec)}

			rec := c.do(http.MethodPost, "/v1/auth/signin", `{"email":"admin@museum.ru","password":"admin123"}`)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			res := decode(t, rec)
			assert.Equal(t, true, res["success"])
			assert.Equal(t, "1", res["user"].(map[string]any)["id"])
			assert.NotContains(t, rec.Body.String(), "password")
			require.NotEmpty(t, c.token)

			hall := decode(t, c.do(http.MethodGet, "/v1/halls/kievan-rus", ""))
			assert.Equal(t, true, hall["isFavorite"])

			rec = c.do(http.MethodPost, "/v1/favorites/halls/kievan-rus/toggle", "")
			assert.JSONEq(t, `{"success":true,"isFavorite":false}`, rec.Body.String())
			rec = c.do(http.MethodPost, "/v1/favorites/halls/kievan-rus/toggle", "")
			assert.JSONEq(t, `{"success":true,"isFavorite":true}`, rec.Body.String())

			rec = c.do(http.MethodGet, "/v1/me/favorites", "")
			require.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"halls":["kievan-rus"],"exhibits":["baptism-of-rus"]}`, rec.Body.String())

			rec = c.do(http.MethodPost, "/v1/auth/signout", "")
			assert.Equal(t, http.StatusNoContent, rec.Code)
			assert.Empty(t, c.token)

			rec = c.do(http.MethodGet, "/v1/me", "")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestSignOutRevokesJWTEvenIfClientKeepsIt(t *testing.T) {
	c := &client{t: t, e: newServer(t, jwtCodec())}
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/v1/auth/signin", `{"email":"user@museum.ru","password":"user123"}`).Code)
	kept := c.token

	c.do(http.MethodPost, "/v1/auth/signout", "")
	c.token = kept
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/v1/me", "").Code)
}

func TestSignInFailures(t *testing.T) {
	c := &client{t: t, e: newServer(t, jwtCodec())}

	rec := c.do(http.MethodPost, "/v1/auth/signin", `{"email":"admin@museum.ru","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Неверный email или пароль"}`, rec.Body.String())
	assert.Empty(t, c.token)

	rec = c.do(http.MethodPost, "/v1/auth/signin", `{"email":"","password":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodPost, "/v1/auth/signin", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignUpFlow(t *testing.T) {
	c := &client{t: t, e: newServer(t, jwtCodec())}

	rec := c.do(http.MethodPost, "/v1/auth/signup",
		`{"email":"new@museum.ru","password":"secret1","confirmPassword":"secret1","firstName":"Пётр","lastName":"Смирнов"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	user := decode(t, rec)["user"].(map[string]any)
	assert.Equal(t, "new@museum.ru", user["email"])
	assert.NotContains(t, user, "patronymic")
	require.NotEmpty(t, c.token)

	rec = c.do(http.MethodGet, "/v1/me/favorites", "")
	assert.JSONEq(t, `{"halls":[],"exhibits":[]}`, rec.Body.String())

	c.token = ""
	rec = c.do(http.MethodPost, "/v1/auth/signup",
		`{"email":"admin@museum.ru","password":"secret1","firstName":"A","lastName":"B"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Пользователь с таким email уже существует", decode(t, rec)["error"])
	assert.Empty(t, c.token)

	rec = c.do(http.MethodPost, "/v1/auth/signup",
		`{"email":"x@museum.ru","password":"secret1","confirmPassword":"secret2","firstName":"A","lastName":"B"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Пароли не совпадают", decode(t, rec)["error"])

	rec = c.do(http.MethodPost, "/v1/auth/signup",
		`{"email":"x@museum.ru","password":"12345","firstName":"A","lastName":"B"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Пароль должен содержать минимум 6 символов", decode(t, rec)["error"])

	rec = c.do(http.MethodPost, "/v1/auth/signup",
		`{"email":"x@museum.ru","password":"`+strings.Repeat("пароль", 7)+`","firstName":"A","lastName":"B"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Пароль слишком длинный", decode(t, rec)["error"])

	rec = c.do(http.MethodPost, "/v1/auth/signup", `{"email":"x@museum.ru","password":"secret1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Заполните все обязательные поля", decode(t, rec)["error"])
}

func TestProfileUpdate(t *testing.T) {
	c := &client{t: t, e: newServer(t, jwtCodec())}

	rec := c.do(http.MethodPatch, "/v1/me", `{"firstName":"X"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Не авторизован"}`, rec.Body.String())

	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/v1/auth/signin", `{"email":"user@museum.ru","password":"user123"}`).Code)

	rec = c.do(http.MethodPatch, "/v1/me", `{"email":"admin@museum.ru"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Этот email уже используется", decode(t, rec)["error"])

	rec = c.do(http.MethodPatch, "/v1/me", `{"patronymic":"Павловна"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	user := decode(t, rec)["user"].(map[string]any)
	assert.Equal(t, "Павловна", user["patronymic"])
	assert.Equal(t, "Мария", user["firstName"])

	rec = c.do(http.MethodGet, "/v1/me", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Павловна", decode(t, rec)["user"].(map[string]any)["patronymic"])
}

func TestAnonymousToggleAnswersSuccessFalse(t *testing.T) {
	c := &client{t: t, e: newServer(t, jwtCodec())}

	rec := c.do(http.MethodPost, "/v1/favorites/exhibits/gagarin-flight/toggle", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":false,"isFavorite":false}`, rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/v1/me/favorites", "").Code)
}

func TestBearerHeaderCarriesSession(t *testing.T) {
	e := newServer(t, jwtCodec())
	c := &client{t: t, e: e}
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/v1/auth/signin", `{"email":"admin@museum.ru","password":"admin123"}`).Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+c.token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
