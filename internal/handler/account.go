package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/accountkit/accountkit/internal/model"
	"github.com/accountkit/accountkit/internal/repository"
	"github.com/accountkit/accountkit/internal/service"
	"github.com/accountkit/accountkit/internal/validation"
)

type accountHandler struct {
	lifecycle *service.AccountLifecycle
	users     repository.UserRepository
}

func NewAccountHandler(lifecycle *service.AccountLifecycle, users repository.UserRepository) *accountHandler {
	return &accountHandler{
		lifecycle: lifecycle,
		users:     users,
	}
}

func (h *accountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username             string `json:"username"`
		Email                string `json:"email"`
		Password             string `json:"password"`
		PasswordConfirmation string `json:"password_confirmation"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	user := &model.User{
		Username:             strings.TrimSpace(req.Username),
		Email:                strings.TrimSpace(strings.ToLower(req.Email)),
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
	}

	err := h.lifecycle.Save(r.Context(), user, nil)
	if err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			respondValidationErrors(w, verrs)
			return
		}
		slog.Error("registration failed", "error", err, "email", user.Email)
		respondError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	slog.Info("user registered", "user_id", user.ID, "email", user.Email)
	respondJSON(w, http.StatusCreated, user)
}

func (h *accountHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	user, err := h.lifecycle.ConfirmByCode(r.Context(), code)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "invalid confirmation code")
			return
		}
		slog.Error("confirmation failed", "error", err)
		respondError(w, http.StatusInternalServerError, "confirmation failed")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

func (h *accountHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))

	user, err := h.users.ByEmail(r.Context(), email)
	if err != nil {
		// Always report success so the endpoint cannot be used to
		// enumerate registered addresses.
		if !errors.Is(err, repository.ErrUserNotFound) {
			slog.Error("forgot password lookup failed", "error", err)
		}
		respondJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
		return
	}

	_, err = h.lifecycle.ForgotPassword(r.Context(), user)
	if err != nil {
		slog.Error("forgot password failed", "error", err, "user_id", user.ID)
	}

	respondJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

func (h *accountHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token                string `json:"token"`
		Password             string `json:"password"`
		PasswordConfirmation string `json:"password_confirmation"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	_, err := h.lifecycle.ResetPasswordByToken(r.Context(), req.Token, req.Password, req.PasswordConfirmation)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPasswordMismatch):
			respondError(w, http.StatusUnprocessableEntity, "password confirmation does not match")
		case errors.Is(err, repository.ErrTokenNotFound):
			respondError(w, http.StatusBadRequest, "invalid or expired reset token")
		default:
			slog.Error("password reset failed", "error", err)
			respondError(w, http.StatusInternalServerError, "password reset failed")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "password updated"})
}

func (h *accountHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
