package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civic-portal/internal/models"
	"civic-portal/internal/utils"
)

const secret = "test-secret"

func echoCaller() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, role := Caller(r.Context())
		utils.JSON(w, http.StatusOK, map[string]string{"uid": uid, "role": role})
	})
}

func chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func token(t *testing.T, uid, role string) string {
	t.Helper()
	tok, err := utils.SignJWT(secret, uid, role, time.Hour)
	require.NoError(t, err)
	return tok
}

func TestWithAuth_BearerAndCookie(t *testing.T) {
	h := chain(echoCaller(), WithAuth(zerolog.Nop(), secret))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, "u-1", models.RoleCitizen))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.JSONEq(t, `{"uid":"u-1","role":"citizen"}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token(t, "a-1", models.RoleAdmin)})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.JSONEq(t, `{"uid":"a-1","role":"admin"}`, rec.Body.String())
}

func TestWithAuth_InvalidCookieIsCleared(t *testing.T) {
	h := chain(echoCaller(), WithAuth(zerolog.Nop(), secret))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "garbage"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"uid":"","role":""}`, rec.Body.String())
	require.Len(t, rec.Result().Cookies(), 1)
	assert.Equal(t, -1, rec.Result().Cookies()[0].MaxAge)
}

func TestWithAuth_BadCookieFallsBackToBearer(t *testing.T) {
	h := chain(echoCaller(), WithAuth(zerolog.Nop(), secret))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "expired-or-garbage"})
	req.Header.Set("Authorization", "Bearer "+token(t, "u-2", models.RoleCitizen))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.JSONEq(t, `{"uid":"u-2","role":"citizen"}`, rec.Body.String())
	require.Len(t, rec.Result().Cookies(), 1)
	assert.Equal(t, -1, rec.Result().Cookies()[0].MaxAge)
}

func TestWithAuth_ValidCookieWinsOverBearer(t *testing.T) {
	h := chain(echoCaller(), WithAuth(zerolog.Nop(), secret))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token(t, "a-1", models.RoleAdmin)})
	req.Header.Set("Authorization", "Bearer "+token(t, "u-2", models.RoleCitizen))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.JSONEq(t, `{"uid":"a-1","role":"admin"}`, rec.Body.String())
	assert.Empty(t, rec.Result().Cookies())
}

func TestWithAuth_InvalidBearerIsAnonymous(t *testing.T) {
	h := chain(echoCaller(), WithAuth(zerolog.Nop(), secret))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"uid":"","role":""}`, rec.Body.String())
}

func TestRequireRoles(t *testing.T) {
	h := chain(echoCaller(), WithAuth(zerolog.Nop(), secret), RequireRoles(models.RoleAdmin))

	cases := []struct {
		name string
		tok  string
		want int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"citizen", token(t, "u-1", models.RoleCitizen), http.StatusForbidden},
		{"admin", token(t, "a-1", models.RoleAdmin), http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.tok != "" {
				req.Header.Set("Authorization", "Bearer "+tc.tok)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestRequireAuth(t *testing.T) {
	h := chain(echoCaller(), WithAuth(zerolog.Nop(), secret), RequireAuth)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRecoverer(t *testing.T) {
	boom := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
	h := chain(boom, RequestLogger(zerolog.Nop()), Recoverer(zerolog.Nop()))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())
}
