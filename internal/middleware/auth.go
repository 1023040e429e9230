package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"civic-portal/internal/utils"
)

type ctxKey string

const (
	CtxUserID ctxKey = "uid"
	CtxRole   ctxKey = "role"
)

// SessionCookie carries the signed JWT for browser clients.
const SessionCookie = "session"

// WithAuth puts the caller's id and role into the request context when a
// valid token is present. It never rejects; RequireAuth does that. The
// session cookie is tried first and the Authorization: Bearer header second,
// so a stale cookie does not hide a good header.
func WithAuth(log zerolog.Logger, secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var claims *utils.Claims
			if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
				claims, err = utils.ParseJWT(secret, c.Value)
				if err != nil {
					log.Debug().Err(err).Msg("dropping invalid session cookie")
					// clear broken/expired cookie so it stops being sent
					http.SetCookie(w, &http.Cookie{
						Name:     SessionCookie,
						Value:    "",
						Path:     "/",
						HttpOnly: true,
						MaxAge:   -1,
					})
				}
			}
			if claims == nil {
				if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
					var err error
					claims, err = utils.ParseJWT(secret, strings.TrimPrefix(h, "Bearer "))
					if err != nil {
						log.Debug().Err(err).Msg("ignoring invalid bearer token")
					}
				}
			}

			if claims == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), CtxUserID, claims.UserID)
			ctx = context.WithValue(ctx, CtxRole, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Caller returns the authenticated user id and role, if any.
func Caller(ctx context.Context) (uid, role string) {
	uid, _ = utils.GetString(ctx, CtxUserID)
	role, _ = utils.GetString(ctx, CtxRole)
	return uid, role
}
