package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"civic-portal/internal/middleware"
	"civic-portal/internal/models"
	"civic-portal/internal/repository"
	"civic-portal/internal/service"
	"civic-portal/internal/utils"
)

type AuthHTTP struct {
	svc    *service.AuthService
	users  repository.UserRepository
	secure bool // set Secure on cookies (HTTPS deployments)
	log    zerolog.Logger
}

func NewAuthHTTP(s *service.AuthService, users repository.UserRepository, secure bool, log zerolog.Logger) *AuthHTTP {
	return &AuthHTTP{svc: s, users: users, secure: secure, log: log}
}

func profile(u *models.User) map[string]any {
	return map[string]any{
		"id":        u.ID,
		"name":      u.Name,
		"email":     u.Email,
		"role":      u.Role,
		"createdAt": u.CreatedAt,
		"updatedAt": u.UpdatedAt,
	}
}

func (h *AuthHTTP) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Email    string `json:"email"`
			Name     string `json:"name"`
			Password string `json:"password"`
		}
		if err := decode(r, &in); err != nil {
			writeErr(w, h.log, err)
			return
		}
		u, err := h.svc.Register(r.Context(), in.Email, in.Name, in.Password)
		if err != nil {
			writeErr(w, h.log, err)
			return
		}
		utils.JSON(w, http.StatusCreated, profile(u))
	}
}

func (h *AuthHTTP) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := decode(r, &in); err != nil {
			writeErr(w, h.log, err)
			return
		}

		token, u, err := h.svc.Login(r.Context(), in.Email, in.Password)
		if errors.Is(err, service.ErrInvalidCredentials) {
			utils.Error(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		if err != nil {
			writeErr(w, h.log, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     middleware.SessionCookie,
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Secure:   h.secure,
			Expires:  time.Now().Add(service.SessionTTL),
		})

		body := profile(u)
		body["token"] = token // for non-browser clients using Authorization: Bearer
		utils.JSON(w, http.StatusOK, body)
	}
}

func (h *AuthHTTP) Logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{
			Name:     middleware.SessionCookie,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Secure:   h.secure,
			MaxAge:   -1,              // expire immediately
			Expires:  time.Unix(0, 0), // for older browsers
		})
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *AuthHTTP) Me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, _ := middleware.Caller(r.Context())
		u, err := h.users.GetByID(r.Context(), uid)
		if err != nil {
			writeErr(w, h.log, err)
			return
		}
		utils.JSON(w, http.StatusOK, profile(u))
	}
}
